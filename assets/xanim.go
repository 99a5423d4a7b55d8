package assets

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/goopsie/xfileTools/xstream"
)

// PartType indexes XAnimParts.BoneCount.
type PartType int

const (
	PartTypeNoQuat PartType = iota
	PartTypeHalfQuat
	PartTypeFullQuat
	PartTypeHalfQuatNoSize
	PartTypeFullQuatNoSize
	PartTypeSmallTrans
	PartTypeTrans
	PartTypeTransNoSize
	PartTypeNoTrans
	PartTypeAll
	partTypeCount
)

type rawXAnimParts struct { // XAnimParts, 88 bytes
	Name                 xstream.XString
	DataByteCount        uint16
	DataShortCount       uint16
	DataIntCount         uint16
	RandomDataByteCount  uint16
	RandomDataIntCount   uint16
	NumFrames            uint16
	Loop                 bool
	Delta                bool
	BoneCount            [partTypeCount]uint8
	NotifyCount          uint8
	AssetType            uint8
	IsDefault            bool
	_                    [1]byte // padding
	RandomDataShortCount uint32
	IndexCount           uint32
	Framerate            float32
	Frequency            float32
	Names                xstream.Ptr32[xstream.ScriptString] // boneCount[PART_TYPE_ALL]
	DataByte             xstream.Ptr32[uint8]
	DataShort            xstream.Ptr32[int16]
	DataInt              xstream.Ptr32[int32]
	RandomDataShort      xstream.Ptr32[int16]
	RandomDataByte       xstream.Ptr32[uint8]
	RandomDataInt        xstream.Ptr32[int32]
	Indices              xstream.Ptr32[byte] // XAnimIndices: uint8 below 256 frames, else uint16
	Notify               xstream.Ptr32[rawXAnimNotify]
	DeltaPart            xstream.Ptr32[rawXAnimDeltaPart]
}

type rawXAnimNotify struct { // XAnimNotifyInfo, 8 bytes
	Name xstream.ScriptString
	_    [2]byte // padding
	Time float32
}

type rawXAnimDeltaPart struct { // XAnimDeltaPart
	Trans xstream.Ptr32[rawXAnimPartTrans]
	Quat  xstream.Ptr32[rawXAnimDeltaPartQuat]
}

// rawXAnimPartTrans is followed inline by frame0 when Size is 0, and by
// rawXAnimPartTransFrames otherwise.
type rawXAnimPartTrans struct { // XAnimPartTrans
	Size       uint16
	SmallTrans uint8
	_          [1]byte // padding
}

// rawXAnimPartTransFrames is followed inline by Size+1 frame indices.
type rawXAnimPartTransFrames struct { // XAnimPartTransFrames
	Mins   [3]float32
	Size   [3]float32
	Frames xstream.Ptr32[byte] // XAnimDynamicFrames: [3]uint8 when smallTrans, else [3]uint16
}

// rawXAnimDeltaPartQuat is followed inline by frame0 when Size is 0, and by
// a frames pointer and Size+1 frame indices otherwise.
type rawXAnimDeltaPartQuat struct { // XAnimDeltaPartQuat
	Size uint16
	_    [2]byte // padding
}

type XAnimParts struct {
	Name            string
	NumFrames       uint16
	Loop            bool
	Delta           bool
	BoneCount       [partTypeCount]uint8
	AnimAssetType   uint8
	IsDefault       bool
	Framerate       float32
	Frequency       float32
	BoneNames       []string
	DataByte        []uint8
	DataShort       []int16
	DataInt         []int32
	RandomDataShort []int16
	RandomDataByte  []uint8
	RandomDataInt   []int32
	Indices         []uint16
	Notify          []XAnimNotify
	DeltaPart       *XAnimDeltaPart
}

type XAnimNotify struct {
	Name string
	Time float32
}

type XAnimDeltaPart struct {
	Trans XAnimTrans // nil when absent
	Quat  XAnimQuat  // nil when absent
}

// XAnimTrans is *XAnimTransStatic or *XAnimTransFrames.
type XAnimTrans interface {
	xanimTrans()
}

type XAnimTransStatic struct {
	Frame0 mgl32.Vec3
}

type XAnimTransFrames struct {
	Mins       mgl32.Vec3
	Size       mgl32.Vec3
	SmallTrans bool
	Indices    []uint16
	Frames     [][3]uint16
}

func (*XAnimTransStatic) xanimTrans() {}
func (*XAnimTransFrames) xanimTrans() {}

// XAnimQuat is *XAnimQuatStatic or *XAnimQuatFrames.
type XAnimQuat interface {
	xanimQuat()
}

type XAnimQuatStatic struct {
	Frame0 [2]int16
}

type XAnimQuatFrames struct {
	Indices []uint16
	Frames  [][2]int16
}

func (*XAnimQuatStatic) xanimQuat() {}
func (*XAnimQuatFrames) xanimQuat() {}

func (a *XAnimParts) AssetType() AssetType { return AssetXAnimParts }
func (a *XAnimParts) AssetName() string    { return a.Name }

func (raw rawXAnimParts) convert(r *xstream.Reader) (XAnimParts, error) {
	a := XAnimParts{
		NumFrames:     raw.NumFrames,
		Loop:          raw.Loop,
		Delta:         raw.Delta,
		BoneCount:     raw.BoneCount,
		AnimAssetType: raw.AssetType,
		IsDefault:     raw.IsDefault,
		Framerate:     raw.Framerate,
		Frequency:     raw.Frequency,
	}
	var err error
	if a.Name, err = raw.Name.Resolve(r, "XAnimParts.name"); err != nil {
		return a, err
	}
	if a.BoneNames, err = xstream.ConvertArray(r, raw.Names, int(raw.BoneCount[PartTypeAll]), "XAnimParts.names", resolveScriptString("XAnimParts.names")); err != nil {
		return a, err
	}
	if a.DataByte, err = xstream.ResolveArray(r, raw.DataByte, int(raw.DataByteCount), "XAnimParts.dataByte"); err != nil {
		return a, err
	}
	if a.DataShort, err = xstream.ResolveArray(r, raw.DataShort, int(raw.DataShortCount), "XAnimParts.dataShort"); err != nil {
		return a, err
	}
	if a.DataInt, err = xstream.ResolveArray(r, raw.DataInt, int(raw.DataIntCount), "XAnimParts.dataInt"); err != nil {
		return a, err
	}
	n, err := xstream.Count(r, raw.RandomDataShortCount, "XAnimParts.randomDataShortCount")
	if err != nil {
		return a, err
	}
	if a.RandomDataShort, err = xstream.ResolveArray(r, raw.RandomDataShort, n, "XAnimParts.randomDataShort"); err != nil {
		return a, err
	}
	if a.RandomDataByte, err = xstream.ResolveArray(r, raw.RandomDataByte, int(raw.RandomDataByteCount), "XAnimParts.randomDataByte"); err != nil {
		return a, err
	}
	if a.RandomDataInt, err = xstream.ResolveArray(r, raw.RandomDataInt, int(raw.RandomDataIntCount), "XAnimParts.randomDataInt"); err != nil {
		return a, err
	}
	if n, err = xstream.Count(r, raw.IndexCount, "XAnimParts.indexCount"); err != nil {
		return a, err
	}
	if a.Indices, err = resolveIndices(r, raw.Indices, n, raw.NumFrames, "XAnimParts.indices"); err != nil {
		return a, err
	}
	if a.Notify, err = xstream.ConvertArray(r, raw.Notify, int(raw.NotifyCount), "XAnimParts.notify", rawXAnimNotify.convert); err != nil {
		return a, err
	}
	a.DeltaPart, err = xstream.ConvertPtr(r, raw.DeltaPart, "XAnimParts.deltaPart", convertDeltaPart(raw.NumFrames))
	return a, err
}

func (raw rawXAnimNotify) convert(r *xstream.Reader) (XAnimNotify, error) {
	name, err := raw.Name.Resolve(r, "XAnimNotifyInfo.name")
	return XAnimNotify{Name: name, Time: raw.Time}, err
}

func convertDeltaPart(numFrames uint16) func(rawXAnimDeltaPart, *xstream.Reader) (XAnimDeltaPart, error) {
	return func(raw rawXAnimDeltaPart, r *xstream.Reader) (XAnimDeltaPart, error) {
		var d XAnimDeltaPart
		trans, err := xstream.ConvertPtr(r, raw.Trans, "XAnimDeltaPart.trans", convertTrans(numFrames))
		if err != nil {
			return d, err
		}
		if trans != nil {
			d.Trans = *trans
		}
		quat, err := xstream.ConvertPtr(r, raw.Quat, "XAnimDeltaPart.quat", convertQuat(numFrames))
		if err != nil {
			return d, err
		}
		if quat != nil {
			d.Quat = *quat
		}
		return d, nil
	}
}

func convertTrans(numFrames uint16) func(rawXAnimPartTrans, *xstream.Reader) (XAnimTrans, error) {
	return func(raw rawXAnimPartTrans, r *xstream.Reader) (XAnimTrans, error) {
		if raw.Size == 0 {
			frame0, err := xstream.ReadFixed[[3]float32](r, "XAnimPartTrans.u.frame0")
			if err != nil {
				return nil, err
			}
			return &XAnimTransStatic{Frame0: frame0}, nil
		}
		hdr, err := xstream.ReadFixed[rawXAnimPartTransFrames](r, "XAnimPartTrans.u.frames")
		if err != nil {
			return nil, err
		}
		n := int(raw.Size) + 1
		t := &XAnimTransFrames{
			Mins:       hdr.Mins,
			Size:       hdr.Size,
			SmallTrans: raw.SmallTrans != 0,
		}
		if t.Indices, err = readIndices(r, n, numFrames, "XAnimPartTransFrames.indices"); err != nil {
			return nil, err
		}
		if !t.SmallTrans {
			t.Frames, err = xstream.ResolveArray(r, xstream.Ptr32[[3]uint16](hdr.Frames), n, "XAnimPartTransFrames.frames")
			return t, err
		}
		small, err := xstream.ResolveArray(r, xstream.Ptr32[[3]uint8](hdr.Frames), n, "XAnimPartTransFrames.frames")
		if err != nil {
			return nil, err
		}
		if small != nil {
			t.Frames = make([][3]uint16, len(small))
			for i, f := range small {
				t.Frames[i] = [3]uint16{uint16(f[0]), uint16(f[1]), uint16(f[2])}
			}
		}
		return t, nil
	}
}

func convertQuat(numFrames uint16) func(rawXAnimDeltaPartQuat, *xstream.Reader) (XAnimQuat, error) {
	return func(raw rawXAnimDeltaPartQuat, r *xstream.Reader) (XAnimQuat, error) {
		if raw.Size == 0 {
			frame0, err := xstream.ReadFixed[[2]int16](r, "XAnimDeltaPartQuat.u.frame0")
			if err != nil {
				return nil, err
			}
			return &XAnimQuatStatic{Frame0: frame0}, nil
		}
		frames, err := xstream.ReadFixed[xstream.Ptr32[[2]int16]](r, "XAnimDeltaPartQuat.u.frames")
		if err != nil {
			return nil, err
		}
		n := int(raw.Size) + 1
		q := &XAnimQuatFrames{}
		if q.Indices, err = readIndices(r, n, numFrames, "XAnimDeltaPartQuatDataFrames.indices"); err != nil {
			return nil, err
		}
		if q.Frames, err = xstream.ResolveArray(r, frames, n, "XAnimDeltaPartQuatDataFrames.frames"); err != nil {
			return nil, err
		}
		return q, nil
	}
}

func wideIndices(numFrames uint16) bool { return numFrames >= 256 }

func readIndices(r *xstream.Reader, n int, numFrames uint16, where string) ([]uint16, error) {
	if wideIndices(numFrames) {
		return xstream.ReadArray[uint16](r, n, where)
	}
	b, err := xstream.ReadArray[uint8](r, n, where)
	return widen(b), err
}

func resolveIndices(r *xstream.Reader, p xstream.Ptr32[byte], n int, numFrames uint16, where string) ([]uint16, error) {
	if wideIndices(numFrames) {
		return xstream.ResolveArray(r, xstream.Ptr32[uint16](p), n, where)
	}
	b, err := xstream.ResolveArray(r, p, n, where)
	return widen(b), err
}

func widen(b []uint8) []uint16 {
	if b == nil {
		return nil
	}
	out := make([]uint16, len(b))
	for i, v := range b {
		out[i] = uint16(v)
	}
	return out
}

func storeIndices(w *xstream.Writer, idx []uint16, numFrames uint16, where string) error {
	if wideIndices(numFrames) {
		return w.StoreFixed(idx, where)
	}
	b := make([]uint8, len(idx))
	for i, v := range idx {
		if v > math.MaxUint8 {
			return xstream.Errorf(xstream.KindBadLength, where, w.Len(), "index %d needs 16 bits with %d frames", v, numFrames)
		}
		b[i] = uint8(v)
	}
	return w.StoreFixed(b, where)
}

func (a *XAnimParts) encode(w *xstream.Writer) error {
	if len(a.BoneNames) != 0 && len(a.BoneNames) != int(a.BoneCount[PartTypeAll]) {
		return xstream.Errorf(xstream.KindBadLength, "XAnimParts.names", w.Len(),
			"%d names for %d bones", len(a.BoneNames), a.BoneCount[PartTypeAll])
	}
	for _, c := range []struct {
		n     int
		max   int
		where string
	}{
		{len(a.DataByte), math.MaxUint16, "XAnimParts.dataByteCount"},
		{len(a.DataShort), math.MaxUint16, "XAnimParts.dataShortCount"},
		{len(a.DataInt), math.MaxUint16, "XAnimParts.dataIntCount"},
		{len(a.RandomDataByte), math.MaxUint16, "XAnimParts.randomDataByteCount"},
		{len(a.RandomDataInt), math.MaxUint16, "XAnimParts.randomDataIntCount"},
		{len(a.Notify), math.MaxUint8, "XAnimParts.notifyCount"},
	} {
		if c.n > c.max {
			return xstream.Errorf(xstream.KindBadLength, c.where, w.Len(), "%d elements", c.n)
		}
	}

	names, err := w.InternAll(a.BoneNames, "XAnimParts.names")
	if err != nil {
		return err
	}
	notify := make([]rawXAnimNotify, len(a.Notify))
	for i, n := range a.Notify {
		idx, ok := w.Intern(n.Name)
		if !ok {
			return xstream.Errorf(xstream.KindStringTableOverflow, "XAnimNotifyInfo.name", w.Len(), "more than %d distinct strings", xstream.MaxScriptStrings)
		}
		notify[i] = rawXAnimNotify{Name: idx, Time: n.Time}
	}

	raw := rawXAnimParts{
		Name:                 xstream.StringPtr(a.Name),
		DataByteCount:        uint16(len(a.DataByte)),
		DataShortCount:       uint16(len(a.DataShort)),
		DataIntCount:         uint16(len(a.DataInt)),
		RandomDataByteCount:  uint16(len(a.RandomDataByte)),
		RandomDataIntCount:   uint16(len(a.RandomDataInt)),
		NumFrames:            a.NumFrames,
		Loop:                 a.Loop,
		Delta:                a.Delta,
		BoneCount:            a.BoneCount,
		NotifyCount:          uint8(len(a.Notify)),
		AssetType:            a.AnimAssetType,
		IsDefault:            a.IsDefault,
		RandomDataShortCount: uint32(len(a.RandomDataShort)),
		IndexCount:           uint32(len(a.Indices)),
		Framerate:            a.Framerate,
		Frequency:            a.Frequency,
		Names:                xstream.PtrIf[xstream.ScriptString](len(names) > 0),
		DataByte:             xstream.PtrIf[uint8](len(a.DataByte) > 0),
		DataShort:            xstream.PtrIf[int16](len(a.DataShort) > 0),
		DataInt:              xstream.PtrIf[int32](len(a.DataInt) > 0),
		RandomDataShort:      xstream.PtrIf[int16](len(a.RandomDataShort) > 0),
		RandomDataByte:       xstream.PtrIf[uint8](len(a.RandomDataByte) > 0),
		RandomDataInt:        xstream.PtrIf[int32](len(a.RandomDataInt) > 0),
		Indices:              xstream.PtrIf[byte](len(a.Indices) > 0),
		Notify:               xstream.PtrIf[rawXAnimNotify](len(notify) > 0),
		DeltaPart:            xstream.PtrIf[rawXAnimDeltaPart](a.DeltaPart != nil),
	}
	if err := w.StoreFixed(raw, "XAnimParts"); err != nil {
		return err
	}
	w.StoreString(a.Name)

	for _, arr := range []struct {
		v     any
		n     int
		where string
	}{
		{names, len(names), "XAnimParts.names"},
		{a.DataByte, len(a.DataByte), "XAnimParts.dataByte"},
		{a.DataShort, len(a.DataShort), "XAnimParts.dataShort"},
		{a.DataInt, len(a.DataInt), "XAnimParts.dataInt"},
		{a.RandomDataShort, len(a.RandomDataShort), "XAnimParts.randomDataShort"},
		{a.RandomDataByte, len(a.RandomDataByte), "XAnimParts.randomDataByte"},
		{a.RandomDataInt, len(a.RandomDataInt), "XAnimParts.randomDataInt"},
	} {
		if arr.n == 0 {
			continue
		}
		if err := w.StoreFixed(arr.v, arr.where); err != nil {
			return err
		}
	}
	if len(a.Indices) > 0 {
		if err := storeIndices(w, a.Indices, a.NumFrames, "XAnimParts.indices"); err != nil {
			return err
		}
	}
	if len(notify) > 0 {
		if err := w.StoreFixed(notify, "XAnimParts.notify"); err != nil {
			return err
		}
	}
	if a.DeltaPart != nil {
		return a.DeltaPart.encode(w, a.NumFrames)
	}
	return nil
}

func (d *XAnimDeltaPart) encode(w *xstream.Writer, numFrames uint16) error {
	raw := rawXAnimDeltaPart{
		Trans: xstream.PtrIf[rawXAnimPartTrans](d.Trans != nil),
		Quat:  xstream.PtrIf[rawXAnimDeltaPartQuat](d.Quat != nil),
	}
	if err := w.StoreFixed(raw, "XAnimDeltaPart"); err != nil {
		return err
	}
	if d.Trans != nil {
		if err := storeTrans(w, d.Trans, numFrames); err != nil {
			return err
		}
	}
	if d.Quat != nil {
		return storeQuat(w, d.Quat, numFrames)
	}
	return nil
}

// frameCount validates an indices/frames pair and returns the stored size.
func frameCount(w *xstream.Writer, indices, frames int, where string) (uint16, error) {
	if indices == 0 || indices-1 > math.MaxUint16 || (frames != 0 && frames != indices) {
		return 0, xstream.Errorf(xstream.KindBadLength, where, w.Len(), "%d indices, %d frames", indices, frames)
	}
	return uint16(indices - 1), nil
}

func storeTrans(w *xstream.Writer, t XAnimTrans, numFrames uint16) error {
	switch t := t.(type) {
	case *XAnimTransStatic:
		if err := w.StoreFixed(rawXAnimPartTrans{}, "XAnimPartTrans"); err != nil {
			return err
		}
		return w.StoreFixed([3]float32(t.Frame0), "XAnimPartTrans.u.frame0")
	case *XAnimTransFrames:
		size, err := frameCount(w, len(t.Indices), len(t.Frames), "XAnimPartTransFrames")
		if err != nil {
			return err
		}
		hdr := rawXAnimPartTrans{Size: size, SmallTrans: uint8(boolToInt(t.SmallTrans))}
		if err := w.StoreFixed(hdr, "XAnimPartTrans"); err != nil {
			return err
		}
		frames := rawXAnimPartTransFrames{
			Mins:   t.Mins,
			Size:   t.Size,
			Frames: xstream.PtrIf[byte](len(t.Frames) > 0),
		}
		if err := w.StoreFixed(frames, "XAnimPartTrans.u.frames"); err != nil {
			return err
		}
		if err := storeIndices(w, t.Indices, numFrames, "XAnimPartTransFrames.indices"); err != nil {
			return err
		}
		if len(t.Frames) == 0 {
			return nil
		}
		if !t.SmallTrans {
			return w.StoreFixed(t.Frames, "XAnimPartTransFrames.frames")
		}
		small := make([][3]uint8, len(t.Frames))
		for i, f := range t.Frames {
			for j, v := range f {
				if v > math.MaxUint8 {
					return xstream.Errorf(xstream.KindBadLength, "XAnimPartTransFrames.frames", w.Len(), "component %d does not fit a small frame", v)
				}
				small[i][j] = uint8(v)
			}
		}
		return w.StoreFixed(small, "XAnimPartTransFrames.frames")
	}
	return xstream.Errorf(xstream.KindBadEnum, "XAnimDeltaPart.trans", w.Len(), "unknown variant %T", t)
}

func storeQuat(w *xstream.Writer, q XAnimQuat, numFrames uint16) error {
	switch q := q.(type) {
	case *XAnimQuatStatic:
		if err := w.StoreFixed(rawXAnimDeltaPartQuat{}, "XAnimDeltaPartQuat"); err != nil {
			return err
		}
		return w.StoreFixed(q.Frame0, "XAnimDeltaPartQuat.u.frame0")
	case *XAnimQuatFrames:
		size, err := frameCount(w, len(q.Indices), len(q.Frames), "XAnimDeltaPartQuatDataFrames")
		if err != nil {
			return err
		}
		if err := w.StoreFixed(rawXAnimDeltaPartQuat{Size: size}, "XAnimDeltaPartQuat"); err != nil {
			return err
		}
		if err := w.StoreFixed(xstream.PtrIf[[2]int16](len(q.Frames) > 0), "XAnimDeltaPartQuat.u.frames"); err != nil {
			return err
		}
		if err := storeIndices(w, q.Indices, numFrames, "XAnimDeltaPartQuatDataFrames.indices"); err != nil {
			return err
		}
		if len(q.Frames) == 0 {
			return nil
		}
		return w.StoreFixed(q.Frames, "XAnimDeltaPartQuatDataFrames.frames")
	}
	return xstream.Errorf(xstream.KindBadEnum, "XAnimDeltaPart.quat", w.Len(), "unknown variant %T", q)
}
