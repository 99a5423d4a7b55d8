package xfile

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/xfileTools/assets"
	"github.com/goopsie/xfileTools/xstream"
)

func quiet() Option { return WithLogger(log.New(io.Discard)) }

func sampleAssets() []assets.Asset {
	return []assets.Asset{
		{Type: assets.AssetPhysPreset, Header: &assets.PhysPreset{Name: "rock", Mass: 3}},
		{Type: assets.AssetXModel},
		{Type: assets.AssetLocalizeEntry, Header: &assets.LocalizeEntry{Value: "Ready", Name: "MP_READY"}},
		{Type: assets.AssetXAnimParts, Header: &assets.XAnimParts{
			Name:      "pt_run",
			NumFrames: 20,
			BoneCount: [10]uint8{assets.PartTypeAll: 1},
			BoneNames: []string{"tag_origin"},
			Notify:    []assets.XAnimNotify{{Name: "footstep", Time: 0.25}},
		}},
		{Type: assets.AssetRawFile, Header: &assets.RawFile{Name: "maps/mp/x.gsc", Contents: []byte("main(){}")}},
		{Type: assets.AssetStringTable, Header: &assets.StringTable{Name: "t.csv", ColumnCount: 1, RowCount: 1, Values: []string{"x"}}},
	}
}

func headers(list []assets.Asset) []assets.Header {
	out := make([]assets.Header, len(list))
	for i, a := range list {
		out[i] = a.Header
	}
	return out
}

func TestEncodeDecode(t *testing.T) {
	for _, p := range []Platform{PlatformPC, PlatformMacOS, PlatformXbox360, PlatformPS3} {
		t.Run(p.String(), func(t *testing.T) {
			data, err := Encode(p, sampleAssets())
			require.NoError(t, err)
			assert.Equal(t, p.Magic(), [8]byte(data[:8]))

			d, err := NewDecoder(data, WithPlatform(p), quiet())
			require.NoError(t, err)
			assert.Equal(t, []string{"tag_origin", "footstep"}, d.ScriptStrings())

			got, err := d.All()
			require.NoError(t, err)
			assert.Equal(t, headers(sampleAssets()), headers(got))
			assert.Equal(t, Stats{Deserialized: 6, NonNull: 5, Total: 6}, d.Stats())
			assert.Equal(t, uint32(d.Pos()-36), d.Framing().Size)

			_, err = d.Next()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	payload, err := EncodePayload(PlatformPC, sampleAssets())
	require.NoError(t, err)

	var runs [2][]assets.Asset
	for i := range runs {
		d, err := DecodePayload(payload, quiet())
		require.NoError(t, err)
		runs[i], err = d.All()
		require.NoError(t, err)
	}
	assert.Equal(t, runs[0], runs[1])
}

// physPresetPayload lays out one PhysPreset asset whose name follows it.
func physPresetPayload(t *testing.T) []byte {
	w := xstream.NewWriter(binary.LittleEndian)
	require.NoError(t, w.StoreFixed(Framing{}, "XFile"))
	require.NoError(t, w.StoreFixed(rawAssetList{Assets: xstream.CountFirst[assets.RawAsset](1)}, "list"))
	require.NoError(t, w.StoreFixed(assets.RawAsset{Type: assets.AssetPhysPreset, Header: xstream.PtrIf[struct{}](true)}, "entry"))
	require.NoError(t, w.StoreFixed(make([]byte, 44), "PhysPreset"))
	b := w.Bytes()
	binary.LittleEndian.PutUint32(b[len(b)-44:], xstream.Deferred) // name
	w.StoreCString("rock")
	return w.Bytes()
}

func TestPhysPresetEndToEnd(t *testing.T) {
	payload := physPresetPayload(t)
	d, err := DecodePayload(payload, quiet())
	require.NoError(t, err)

	a, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "rock", a.Name())
	assert.Equal(t, int64(36+16+8), a.Offset)
	assert.Equal(t, int64(len(payload)), d.Pos())
	assert.Equal(t, int64(36+16+8+44+5), d.Pos())
}

func TestFailurePoisonsDecoder(t *testing.T) {
	list := sampleAssets()[:1]
	payload, err := EncodePayload(PlatformPC, list)
	require.NoError(t, err)

	// Append a second entry with an invalid tag and a third valid one by
	// rewriting the asset count and entry table.
	w := xstream.NewWriter(binary.LittleEndian)
	require.NoError(t, w.StoreFixed(Framing{}, "XFile"))
	require.NoError(t, w.StoreFixed(rawAssetList{Assets: xstream.CountFirst[assets.RawAsset](3)}, "list"))
	require.NoError(t, w.StoreFixed([]assets.RawAsset{
		{Type: assets.AssetPhysPreset, Header: xstream.PtrIf[struct{}](true)},
		{Type: 99, Header: xstream.PtrIf[struct{}](true)},
		{Type: assets.AssetPhysPreset, Header: xstream.PtrIf[struct{}](true)},
	}, "entries"))
	w.StoreBytes(payload[36+16+8:]) // the encoded PhysPreset body

	d, err := DecodePayload(w.Bytes(), quiet())
	require.NoError(t, err)

	got, err := d.All()
	require.Error(t, err)
	assert.True(t, errors.Is(err, xstream.ErrUnknownAssetType))
	require.Len(t, got, 1)
	assert.Equal(t, "rock", got[0].Name())

	_, again := d.Next()
	assert.Equal(t, err, again)
	assert.Equal(t, err, d.Err())
	assert.Equal(t, Stats{Deserialized: 1, NonNull: 1, Total: 3}, d.Stats())
}

func TestUnsupportedAssetWithPayload(t *testing.T) {
	w := xstream.NewWriter(binary.LittleEndian)
	require.NoError(t, w.StoreFixed(Framing{}, "XFile"))
	require.NoError(t, w.StoreFixed(rawAssetList{Assets: xstream.CountFirst[assets.RawAsset](1)}, "list"))
	require.NoError(t, w.StoreFixed(assets.RawAsset{Type: assets.AssetWeapon, Header: xstream.PtrIf[struct{}](true)}, "entry"))

	d, err := DecodePayload(w.Bytes(), quiet())
	require.NoError(t, err)
	assert.Equal(t, 1, d.Stats().Unsupported)
	_, err = d.Next()
	assert.True(t, errors.Is(err, xstream.ErrUnsupportedAssetType))
}

func TestTruncatedAssetList(t *testing.T) {
	w := xstream.NewWriter(binary.LittleEndian)
	require.NoError(t, w.StoreFixed(Framing{}, "XFile"))
	require.NoError(t, w.StoreFixed(rawAssetList{Assets: xstream.CountFirst[assets.RawAsset](4)}, "list"))

	_, err := DecodePayload(w.Bytes(), quiet())
	assert.True(t, errors.Is(err, xstream.ErrTruncated))

	_, err = DecodePayload(make([]byte, 20), quiet())
	assert.True(t, errors.Is(err, xstream.ErrTruncated))
}

func TestEncodeRejectsMismatchedType(t *testing.T) {
	_, err := EncodePayload(PlatformPC, []assets.Asset{{Type: assets.AssetRawFile, Header: &assets.MapEnts{}}})
	assert.Error(t, err)

	_, err = EncodePayload(PlatformPC, []assets.Asset{{Type: assets.AssetFont, Header: &assets.Font{}}})
	assert.True(t, errors.Is(err, xstream.ErrUnsupportedAssetType))
}

func TestOpen(t *testing.T) {
	data, err := Encode(PlatformPC, sampleAssets())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "common.ff")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	d, err := Open(path, quiet())
	require.NoError(t, err)
	got, err := d.All()
	require.NoError(t, err)
	assert.Len(t, got, 6)

	_, err = Open(filepath.Join(t.TempDir(), "missing.ff"), quiet())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
