package assets

import (
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/xfileTools/xstream"
)

// store appends fixed values and C strings to w.
func store(t *testing.T, w *xstream.Writer, vs ...any) {
	t.Helper()
	for _, v := range vs {
		if s, ok := v.(string); ok {
			w.StoreCString(s)
			continue
		}
		require.NoError(t, w.StoreFixed(v, "test"))
	}
}

func deferredAsset(t AssetType) RawAsset {
	return RawAsset{Type: t, Header: xstream.Ptr32[struct{}](xstream.Deferred)}
}

func TestPhysPresetFollowedByName(t *testing.T) {
	w := xstream.NewWriter(binary.LittleEndian)
	store(t, w, rawPhysPreset{Name: xstream.XString(xstream.Deferred), Mass: 2.5}, "rock", uint32(0xCAFEF00D))

	r := xstream.NewReader(w.Bytes(), binary.LittleEndian)
	a, err := Decode(r, deferredAsset(AssetPhysPreset))
	require.NoError(t, err)

	p, ok := a.Header.(*PhysPreset)
	require.True(t, ok)
	assert.Equal(t, "rock", p.Name)
	assert.Equal(t, "rock", a.Name())
	assert.Equal(t, float32(2.5), p.Mass)
	assert.Equal(t, "", p.SndAliasPrefix)
	assert.Equal(t, int64(0), a.Offset)
	assert.Equal(t, int64(44+5), r.Pos())
}

func TestDecodeTags(t *testing.T) {
	r := xstream.NewReader(make([]byte, 64), binary.LittleEndian)

	_, err := Decode(r, deferredAsset(AssetTypeCount))
	assert.True(t, errors.Is(err, xstream.ErrUnknownAssetType))

	_, err = Decode(r, deferredAsset(AssetXModel))
	assert.True(t, errors.Is(err, xstream.ErrUnsupportedAssetType))
	assert.False(t, errors.Is(err, xstream.ErrUnknownAssetType))

	a, err := Decode(r, RawAsset{Type: AssetXModel})
	require.NoError(t, err)
	assert.Nil(t, a.Header)
	assert.Equal(t, int64(-1), a.Offset)

	a, err = Decode(r, RawAsset{Type: AssetRawFile, Header: 0x00401000})
	require.NoError(t, err)
	assert.Nil(t, a.Header)
	assert.Equal(t, int64(0), r.Pos())
}

func TestParseAssetType(t *testing.T) {
	for i := AssetType(0); i < AssetTypeCount; i++ {
		got, ok := ParseAssetType(i.String())
		require.True(t, ok, i.String())
		assert.Equal(t, i, got)
	}
	_, ok := ParseAssetType("nope")
	assert.False(t, ok)
	assert.Equal(t, "AssetType(40)", AssetType(40).String())
}

func roundTripHeaders() []Header {
	return []Header{
		&PhysPreset{Name: "rock", Type: 2, Mass: 1.5, Friction: 0.25, TempDefaultToCylinder: true},
		&PhysPreset{Name: "glass", SndAliasPrefix: "glass_break"},
		&SndCurve{Filename: "default", Knots: []mgl32.Vec2{{0, 1}, {1, 0}}},
		&SndCurve{Filename: "flat"},
		&MapEnts{Name: "maps/mp/mp_crash.d3dbsp", EntityString: "{\n\"classname\" \"worldspawn\"\n}\n"},
		&MapEnts{Name: "maps/empty.d3dbsp"},
		&LocalizeEntry{Value: "Hello", Name: "MENU_HELLO"},
		&RawFile{Name: "maps/mp/gametypes/dm.gsc", Contents: []byte("main()\n{\n}\n")},
		&RawFile{Name: "empty.cfg", Contents: []byte{}},
		&RawFile{Name: "missing.cfg"},
		&StringTable{Name: "mp/rank.csv", ColumnCount: 2, RowCount: 2, Values: []string{"0", "", "1", "rank_pvt"}},
		&XAnimParts{
			Name:            "pb_stand_alert",
			NumFrames:       10,
			Loop:            true,
			BoneCount:       [partTypeCount]uint8{PartTypeAll: 2},
			AnimAssetType:   1,
			Framerate:       30,
			Frequency:       3,
			BoneNames:       []string{"tag_origin", "j_head"},
			DataByte:        []uint8{1, 2, 3},
			DataShort:       []int16{-1, 5},
			RandomDataShort: []int16{7},
			Indices:         []uint16{0, 4, 9},
			Notify:          []XAnimNotify{{Name: "end", Time: 1}, {Name: "tag_origin", Time: 0.5}},
			DeltaPart: &XAnimDeltaPart{
				Trans: &XAnimTransFrames{
					Mins:       mgl32.Vec3{-1, -2, -3},
					Size:       mgl32.Vec3{2, 4, 6},
					SmallTrans: true,
					Indices:    []uint16{0, 9},
					Frames:     [][3]uint16{{1, 2, 3}, {255, 0, 7}},
				},
				Quat: &XAnimQuatStatic{Frame0: [2]int16{100, -100}},
			},
		},
		&XAnimParts{
			Name:          "viewmodel_long",
			NumFrames:     300,
			Delta:         true,
			DataInt:       []int32{1 << 20},
			RandomDataInt: []int32{-7, 8},
			Indices:       []uint16{0, 299},
			DeltaPart: &XAnimDeltaPart{
				Trans: &XAnimTransStatic{Frame0: mgl32.Vec3{1, 2, 3}},
				Quat: &XAnimQuatFrames{
					Indices: []uint16{0, 150, 299},
					Frames:  [][2]int16{{1, 2}, {3, 4}, {5, 6}},
				},
			},
		},
		&XAnimParts{
			Name:      "idle",
			NumFrames: 300,
			DeltaPart: &XAnimDeltaPart{
				Trans: &XAnimTransFrames{Indices: []uint16{0, 280}, Frames: [][3]uint16{{1000, 2, 3}, {4, 5, 65535}}},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		for _, h := range roundTripHeaders() {
			t.Run(order.String()+"/"+h.AssetType().String()+"/"+h.AssetName(), func(t *testing.T) {
				w := xstream.NewWriter(order)
				require.NoError(t, Encode(w, h))

				r := xstream.NewReader(w.Bytes(), order)
				r.SetScriptStrings(w.ScriptStrings())
				a, err := Decode(r, deferredAsset(h.AssetType()))
				require.NoError(t, err)
				assert.Equal(t, h, a.Header)
				assert.Equal(t, r.Len(), r.Pos(), "decode must consume exactly what encode wrote")
			})
		}
	}
}

func TestEncodeInternsScriptStringsOnce(t *testing.T) {
	w := xstream.NewWriter(binary.LittleEndian)
	require.NoError(t, Encode(w, roundTripHeaders()[11]))
	assert.Equal(t, []string{"tag_origin", "j_head", "end"}, w.ScriptStrings())
}

func TestEncodableMatchesEncoders(t *testing.T) {
	all := append(roundTripHeaders(), &Material{}, &TechniqueSet{}, &Image{}, &Font{})
	for _, h := range all {
		_, ok := h.(encoder)
		assert.Equal(t, Encodable(h.AssetType()), ok, h.AssetType().String())
	}

	err := Encode(xstream.NewWriter(binary.LittleEndian), &Material{Name: "mc/mtl_rock"})
	assert.True(t, errors.Is(err, xstream.ErrUnsupportedAssetType))
}

func TestEncodeLengthChecks(t *testing.T) {
	w := xstream.NewWriter(binary.LittleEndian)

	err := Encode(w, &StringTable{ColumnCount: 2, RowCount: 2, Values: []string{"a"}})
	assert.True(t, errors.Is(err, xstream.ErrBadLength))

	err = Encode(w, &SndCurve{Knots: make([]mgl32.Vec2, maxSndCurveKnots+1)})
	assert.True(t, errors.Is(err, xstream.ErrBadLength))

	err = Encode(w, &XAnimParts{NumFrames: 10, Indices: []uint16{0, 300}})
	assert.True(t, errors.Is(err, xstream.ErrBadLength))

	err = Encode(w, &XAnimParts{BoneCount: [partTypeCount]uint8{PartTypeAll: 3}, BoneNames: []string{"a"}})
	assert.True(t, errors.Is(err, xstream.ErrBadLength))

	err = Encode(w, &XAnimParts{DeltaPart: &XAnimDeltaPart{Quat: &XAnimQuatFrames{}}})
	assert.True(t, errors.Is(err, xstream.ErrBadLength))
}

func TestSndCurveTooManyKnots(t *testing.T) {
	w := xstream.NewWriter(binary.LittleEndian)
	store(t, w, uint32(0), rawSndCurve{KnotCount: maxSndCurveKnots + 1})

	r := xstream.NewReader(w.Bytes(), binary.LittleEndian)
	require.NoError(t, r.Skip(4, "lead"))
	_, err := Decode(r, deferredAsset(AssetSoundCurve))
	require.True(t, errors.Is(err, xstream.ErrBadLength))

	var xerr *xstream.Error
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, int64(4), xerr.Offset)
}

func TestStringTableNullValues(t *testing.T) {
	w := xstream.NewWriter(binary.LittleEndian)
	store(t, w, rawStringTable{ColumnCount: 3, RowCount: 1}, uint32(0xDEADBEEF))

	r := xstream.NewReader(w.Bytes(), binary.LittleEndian)
	a, err := Decode(r, deferredAsset(AssetStringTable))
	require.NoError(t, err)
	st := a.Header.(*StringTable)
	assert.Nil(t, st.Values)
	assert.Equal(t, "", st.Cell(0, 1))
	assert.Equal(t, int64(16), r.Pos())
}

func TestStringTableCell(t *testing.T) {
	st := &StringTable{ColumnCount: 2, RowCount: 2, Values: []string{"a", "b", "c", "d"}}
	assert.Equal(t, "c", st.Cell(1, 0))
	assert.Equal(t, "b", st.Cell(0, 1))
	assert.Equal(t, "", st.Cell(0, 2))
	assert.Equal(t, "", st.Cell(2, 0))
	assert.Equal(t, "", st.Cell(-1, 0))
}

func TestXAnimPartsHeader(t *testing.T) {
	var h Header = &XAnimParts{Name: "pb_stand_alert", AnimAssetType: 1}
	assert.Equal(t, AssetXAnimParts, h.AssetType())
	assert.Equal(t, "pb_stand_alert", h.AssetName())
}

func TestMapEntsKeepsEmbeddedNul(t *testing.T) {
	in := &MapEnts{Name: "maps/mp/mp_crash.d3dbsp", EntityString: "{\n}\x00{\n\"origin\" \"0 0 0\"\n}\n"}
	w := xstream.NewWriter(binary.BigEndian)
	require.NoError(t, Encode(w, in))

	r := xstream.NewReader(w.Bytes(), binary.BigEndian)
	a, err := Decode(r, deferredAsset(AssetMapEnts))
	require.NoError(t, err)
	assert.Equal(t, in, a.Header)
	assert.Equal(t, r.Len(), r.Pos())
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(AssetMaterial))
	assert.True(t, Supported(AssetStringTable))
	assert.False(t, Supported(AssetWeapon))
	assert.False(t, Supported(AssetXModel))
}
