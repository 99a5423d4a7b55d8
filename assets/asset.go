// Package assets holds the raw (on-disk) and owned (runtime) form of every
// asset kind the loader understands, and the conversions between them.
//
// Raw structs are byte-exact mirrors of the zone layout and are named after
// the engine struct they mirror. Each raw struct has a convert method that
// resolves its deferred fields in declaration order against the shared
// cursor; owned structs that can be written back have an encode method that
// does the reverse.
package assets

import (
	"fmt"

	"github.com/goopsie/xfileTools/xstream"
)

// AssetType is the tag of an entry in the zone's asset list.
type AssetType uint32

const (
	AssetXModelPieces AssetType = iota
	AssetPhysPreset
	AssetXAnimParts
	AssetXModel
	AssetMaterial
	AssetTechniqueSet
	AssetImage
	AssetSound
	AssetSoundCurve
	AssetLoadedSound
	AssetClipMap
	AssetClipMapPVS
	AssetComWorld
	AssetGameWorldSp
	AssetGameWorldMp
	AssetMapEnts
	AssetGfxWorld
	AssetLightDef
	AssetUIMap
	AssetFont
	AssetMenuList
	AssetMenu
	AssetLocalizeEntry
	AssetWeapon
	AssetSndDriverGlobals
	AssetFx
	AssetImpactFx
	AssetAIType
	AssetMPType
	AssetCharacter
	AssetXModelAlias
	AssetRawFile
	AssetStringTable
	AssetTypeCount
)

var assetTypeNames = [AssetTypeCount]string{
	"xmodelpieces", "physpreset", "xanim", "xmodel", "material", "techset",
	"image", "sound", "sndcurve", "loaded_sound", "col_map_sp", "col_map_mp",
	"com_map", "game_map_sp", "game_map_mp", "map_ents", "gfx_map", "lightdef",
	"ui_map", "font", "menufile", "menu", "localize", "weapon",
	"snddriverglobals", "fx", "impactfx", "aitype", "mptype", "character",
	"xmodelalias", "rawfile", "stringtable",
}

func (t AssetType) IsValid() bool { return t < AssetTypeCount }

func (t AssetType) String() string {
	if t.IsValid() {
		return assetTypeNames[t]
	}
	return fmt.Sprintf("AssetType(%d)", uint32(t))
}

// ParseAssetType maps an asset type name back to its tag.
func ParseAssetType(name string) (AssetType, bool) {
	for i, n := range assetTypeNames {
		if n == name {
			return AssetType(i), true
		}
	}
	return 0, false
}

// Header is the owned form of an asset's payload.
type Header interface {
	AssetType() AssetType
	AssetName() string
}

// Asset is one decoded entry of the asset list. Header is nil when the entry
// had no payload in this zone.
type Asset struct {
	Type   AssetType
	Offset int64 // payload offset in the inflated zone, -1 when absent
	Header Header
}

func (a Asset) Name() string {
	if a.Header == nil {
		return ""
	}
	return a.Header.AssetName()
}

// RawAsset is an XAsset entry of the asset list.
type RawAsset struct { // XAsset
	Type   AssetType
	Header xstream.Ptr32[struct{}]
}

type decodeFunc func(r *xstream.Reader) (Header, error)

func decodeAsset[R, O any, PO interface {
	*O
	Header
}](where string, conv func(R, *xstream.Reader) (O, error)) decodeFunc {
	return func(r *xstream.Reader) (Header, error) {
		v, err := xstream.ReadConvert(r, where, conv)
		if err != nil {
			return nil, err
		}
		return PO(&v), nil
	}
}

var decoders = map[AssetType]decodeFunc{
	AssetPhysPreset:    decodeAsset("PhysPreset", rawPhysPreset.convert),
	AssetXAnimParts:    decodeAsset("XAnimParts", rawXAnimParts.convert),
	AssetMaterial:      decodeAsset("Material", rawMaterial.convert),
	AssetTechniqueSet:  decodeAsset("MaterialTechniqueSet", rawTechniqueSet.convert),
	AssetImage:         decodeAsset("GfxImage", rawImage.convert),
	AssetSoundCurve:    decodeAsset("SndCurve", rawSndCurve.convert),
	AssetMapEnts:       decodeAsset("MapEnts", rawMapEnts.convert),
	AssetFont:          decodeAsset("Font_s", rawFont.convert),
	AssetLocalizeEntry: decodeAsset("LocalizeEntry", rawLocalizeEntry.convert),
	AssetRawFile:       decodeAsset("RawFile", rawRawFile.convert),
	AssetStringTable:   decodeAsset("StringTable", rawStringTable.convert),
}

// Supported reports whether t can be decoded.
func Supported(t AssetType) bool {
	_, ok := decoders[t]
	return ok
}

// Decode converts the payload of an asset list entry, which starts at the
// cursor. A null or unexpected header pointer yields an Asset with no Header.
func Decode(r *xstream.Reader, entry RawAsset) (Asset, error) {
	asset := Asset{Type: entry.Type, Offset: -1}
	if !entry.Type.IsValid() {
		return asset, xstream.Errorf(xstream.KindUnknownAssetType, "XAsset.type", r.Pos(), "tag %d", uint32(entry.Type))
	}
	if entry.Header.Kind() != xstream.PtrDeferred {
		return asset, nil
	}
	decode, ok := decoders[entry.Type]
	if !ok {
		return asset, xstream.Errorf(xstream.KindUnsupportedAssetType, "XAsset.type", r.Pos(), "%s", entry.Type)
	}
	asset.Offset = r.Pos()
	h, err := decode(r)
	if err != nil {
		return asset, err
	}
	asset.Header = h
	return asset, nil
}
