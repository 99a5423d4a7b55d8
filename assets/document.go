package assets

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// NewHeader returns an empty owned value of type t for reading a document
// back. It reports false for types that cannot be encoded.
func NewHeader(t AssetType) (Header, bool) {
	switch t {
	case AssetPhysPreset:
		return &PhysPreset{}, true
	case AssetXAnimParts:
		return &XAnimParts{}, true
	case AssetSoundCurve:
		return &SndCurve{}, true
	case AssetMapEnts:
		return &MapEnts{}, true
	case AssetLocalizeEntry:
		return &LocalizeEntry{}, true
	case AssetRawFile:
		return &RawFile{}, true
	case AssetStringTable:
		return &StringTable{}, true
	}
	return nil, false
}

// The delta part variants are told apart by which fields a document carries:
// a static track has frame0, an animated one has indices and frames.
type deltaPartDoc struct {
	Trans *transDoc
	Quat  *quatDoc
}

type transDoc struct {
	Frame0     *mgl32.Vec3
	Mins       mgl32.Vec3
	Size       mgl32.Vec3
	SmallTrans bool
	Indices    []uint16
	Frames     [][3]uint16
}

type quatDoc struct {
	Frame0  *[2]int16
	Indices []uint16
	Frames  [][2]int16
}

func (d *XAnimDeltaPart) fromDoc(doc deltaPartDoc) {
	*d = XAnimDeltaPart{}
	if t := doc.Trans; t != nil {
		if t.Frame0 != nil {
			d.Trans = &XAnimTransStatic{Frame0: *t.Frame0}
		} else {
			d.Trans = &XAnimTransFrames{Mins: t.Mins, Size: t.Size, SmallTrans: t.SmallTrans, Indices: t.Indices, Frames: t.Frames}
		}
	}
	if q := doc.Quat; q != nil {
		if q.Frame0 != nil {
			d.Quat = &XAnimQuatStatic{Frame0: *q.Frame0}
		} else {
			d.Quat = &XAnimQuatFrames{Indices: q.Indices, Frames: q.Frames}
		}
	}
}

func (d *XAnimDeltaPart) UnmarshalJSON(b []byte) error {
	var doc deltaPartDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	d.fromDoc(doc)
	return nil
}

func (d *XAnimDeltaPart) UnmarshalYAML(n *yaml.Node) error {
	var doc deltaPartDoc
	if err := n.Decode(&doc); err != nil {
		return err
	}
	d.fromDoc(doc)
	return nil
}
