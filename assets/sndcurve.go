package assets

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/goopsie/xfileTools/xstream"
)

const maxSndCurveKnots = 8

type rawSndCurve struct { // SndCurve, 72 bytes
	Filename  xstream.XString
	KnotCount int32
	Knots     [maxSndCurveKnots][2]float32
}

type SndCurve struct {
	Filename string
	Knots    []mgl32.Vec2
}

func (c *SndCurve) AssetType() AssetType { return AssetSoundCurve }
func (c *SndCurve) AssetName() string    { return c.Filename }

func (raw rawSndCurve) convert(r *xstream.Reader) (SndCurve, error) {
	var c SndCurve
	n, err := xstream.Count(r, raw.KnotCount, "SndCurve.knotCount")
	if err != nil {
		return c, err
	}
	if n > maxSndCurveKnots {
		return c, xstream.Errorf(xstream.KindBadLength, "SndCurve.knotCount", r.Origin(), "%d knots", n)
	}
	if n > 0 {
		c.Knots = make([]mgl32.Vec2, n)
		for i := range c.Knots {
			c.Knots[i] = mgl32.Vec2(raw.Knots[i])
		}
	}
	c.Filename, err = raw.Filename.Resolve(r, "SndCurve.filename")
	return c, err
}

func (c *SndCurve) encode(w *xstream.Writer) error {
	if len(c.Knots) > maxSndCurveKnots {
		return xstream.Errorf(xstream.KindBadLength, "SndCurve.knotCount", w.Len(), "%d knots", len(c.Knots))
	}
	raw := rawSndCurve{
		Filename:  xstream.StringPtr(c.Filename),
		KnotCount: int32(len(c.Knots)),
	}
	for i, k := range c.Knots {
		raw.Knots[i] = k
	}
	if err := w.StoreFixed(raw, "SndCurve"); err != nil {
		return err
	}
	w.StoreString(c.Filename)
	return nil
}
