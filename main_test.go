package main

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopsie/xfileTools/assets"
	"github.com/goopsie/xfileTools/config"
	"github.com/goopsie/xfileTools/export"
	"github.com/goopsie/xfileTools/logging"
	"github.com/goopsie/xfileTools/xfile"
)

func writeZone(t *testing.T, dir string, p xfile.Platform) string {
	t.Helper()
	data, err := xfile.Encode(p, []assets.Asset{
		{Type: assets.AssetRawFile, Header: &assets.RawFile{Name: "maps/mp/_load.gsc", Contents: []byte("init(){}")}},
		{Type: assets.AssetLocalizeEntry, Header: &assets.LocalizeEntry{Name: "MENU_OK", Value: "OK"}},
		{Type: assets.AssetXModel},
	})
	require.NoError(t, err)
	path := filepath.Join(dir, "common.ff")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func useConfig(t *testing.T, c config.Config) {
	t.Helper()
	saved := cfg
	cfg = c
	t.Cleanup(func() { cfg = saved })
	require.NoError(t, logging.SetLevel("error"))
}

func TestExtractZone(t *testing.T) {
	dir := t.TempDir()
	c := config.Default()
	c.Platform = xfile.PlatformPS3
	c.OutputDir = filepath.Join(dir, "out")
	useConfig(t, c)

	require.NoError(t, extractZone(writeZone(t, dir, xfile.PlatformPS3)))

	body, err := os.ReadFile(filepath.Join(c.OutputDir, "common", "raw", "maps", "mp", "_load.gsc"))
	require.NoError(t, err)
	assert.Equal(t, "init(){}", string(body))

	b, err := os.ReadFile(filepath.Join(c.OutputDir, "common", export.ManifestName))
	require.NoError(t, err)
	var m export.Manifest
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "common", m.Zone)
	assert.Len(t, m.Files, 3)
}

func TestExtractZoneWrongPlatform(t *testing.T) {
	dir := t.TempDir()
	c := config.Default()
	c.OutputDir = filepath.Join(dir, "out")
	useConfig(t, c)

	assert.Error(t, extractZone(writeZone(t, dir, xfile.PlatformXbox360)))
	assert.NoDirExists(t, c.OutputDir)
}

func TestOpenZoneFromPayloadDump(t *testing.T) {
	dir := t.TempDir()
	useConfig(t, config.Default())

	data, err := os.ReadFile(writeZone(t, dir, xfile.PlatformPC))
	require.NoError(t, err)
	payload, err := xfile.Inflate(data)
	require.NoError(t, err)
	dump := filepath.Join(dir, "common.zst")
	require.NoError(t, export.WritePayload(dump, payload, cfg.ZstdLevel))

	d, err := openZone(dump, true)
	require.NoError(t, err)
	list, err := d.All()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "MENU_OK", list[1].Name())
}

func TestZoneName(t *testing.T) {
	assert.Equal(t, "mp_crash", zoneName("/zone/english/mp_crash.ff"))
	assert.Equal(t, "ui", zoneName("ui"))
}

func TestExtractZoneNonFiniteFloat(t *testing.T) {
	dir := t.TempDir()
	c := config.Default()
	c.OutputDir = filepath.Join(dir, "out")
	useConfig(t, c)

	data, err := xfile.Encode(xfile.PlatformPC, []assets.Asset{
		{Type: assets.AssetPhysPreset, Header: &assets.PhysPreset{Name: "rock", Mass: float32(math.NaN())}},
		{Type: assets.AssetLocalizeEntry, Header: &assets.LocalizeEntry{Name: "MENU_OK", Value: "OK"}},
	})
	require.NoError(t, err)
	path := filepath.Join(dir, "physic.ff")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.NoError(t, extractZone(path))
	assert.FileExists(t, filepath.Join(c.OutputDir, "physic", "physpreset", "rock.yaml"))
	assert.FileExists(t, filepath.Join(c.OutputDir, "physic", "localize", "MENU_OK.json"))
	assert.FileExists(t, filepath.Join(c.OutputDir, "physic", export.ManifestName))
}

func TestBuildFromExtractedZone(t *testing.T) {
	dir := t.TempDir()
	c := config.Default()
	c.Platform = xfile.PlatformXbox360
	c.OutputDir = filepath.Join(dir, "out")
	useConfig(t, c)

	require.NoError(t, extractZone(writeZone(t, dir, xfile.PlatformXbox360)))
	edited := []byte("init(){ thread edited(); }")
	require.NoError(t, os.WriteFile(filepath.Join(c.OutputDir, "common", "raw", "maps", "mp", "_load.gsc"), edited, 0o644))

	out := filepath.Join(dir, "rebuilt.ff")
	require.NoError(t, rebuildZone(filepath.Join(c.OutputDir, "common"), out))

	d, err := xfile.Open(out, cfg.DecoderOptions()...)
	require.NoError(t, err)
	list, err := d.All()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, edited, list[0].Header.(*assets.RawFile).Contents)
	assert.Equal(t, &assets.LocalizeEntry{Name: "MENU_OK", Value: "OK"}, list[1].Header)
}
