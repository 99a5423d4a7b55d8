package assets

import "github.com/goopsie/xfileTools/xstream"

type rawPhysPreset struct { // PhysPreset, 44 bytes
	Name                  xstream.XString
	Type                  int32
	Mass                  float32
	Bounce                float32
	Friction              float32
	BulletForceScale      float32
	ExplosiveForceScale   float32
	SndAliasPrefix        xstream.XString
	PiecesSpreadFraction  float32
	PiecesUpwardVelocity  float32
	TempDefaultToCylinder bool
	_                     [3]byte // padding
}

type PhysPreset struct {
	Name                  string
	Type                  int32
	Mass                  float32
	Bounce                float32
	Friction              float32
	BulletForceScale      float32
	ExplosiveForceScale   float32
	SndAliasPrefix        string
	PiecesSpreadFraction  float32
	PiecesUpwardVelocity  float32
	TempDefaultToCylinder bool
}

func (p *PhysPreset) AssetType() AssetType { return AssetPhysPreset }
func (p *PhysPreset) AssetName() string    { return p.Name }

func (raw rawPhysPreset) convert(r *xstream.Reader) (PhysPreset, error) {
	p := PhysPreset{
		Type:                  raw.Type,
		Mass:                  raw.Mass,
		Bounce:                raw.Bounce,
		Friction:              raw.Friction,
		BulletForceScale:      raw.BulletForceScale,
		ExplosiveForceScale:   raw.ExplosiveForceScale,
		PiecesSpreadFraction:  raw.PiecesSpreadFraction,
		PiecesUpwardVelocity:  raw.PiecesUpwardVelocity,
		TempDefaultToCylinder: raw.TempDefaultToCylinder,
	}
	var err error
	if p.Name, err = raw.Name.Resolve(r, "PhysPreset.name"); err != nil {
		return p, err
	}
	if p.SndAliasPrefix, err = raw.SndAliasPrefix.Resolve(r, "PhysPreset.sndAliasPrefix"); err != nil {
		return p, err
	}
	return p, nil
}

func (p *PhysPreset) encode(w *xstream.Writer) error {
	raw := rawPhysPreset{
		Name:                  xstream.StringPtr(p.Name),
		Type:                  p.Type,
		Mass:                  p.Mass,
		Bounce:                p.Bounce,
		Friction:              p.Friction,
		BulletForceScale:      p.BulletForceScale,
		ExplosiveForceScale:   p.ExplosiveForceScale,
		SndAliasPrefix:        xstream.StringPtr(p.SndAliasPrefix),
		PiecesSpreadFraction:  p.PiecesSpreadFraction,
		PiecesUpwardVelocity:  p.PiecesUpwardVelocity,
		TempDefaultToCylinder: p.TempDefaultToCylinder,
	}
	if err := w.StoreFixed(raw, "PhysPreset"); err != nil {
		return err
	}
	w.StoreString(p.Name)
	w.StoreString(p.SndAliasPrefix)
	return nil
}
