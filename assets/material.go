package assets

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/goopsie/xfileTools/xstream"
)

// TextureSemantic is what a material samples a texture for.
type TextureSemantic uint8

const (
	TextureSemantic2D TextureSemantic = iota
	TextureSemanticFunction
	TextureSemanticColorMap
	TextureSemanticUnused1
	TextureSemanticUnused2
	TextureSemanticNormalMap
	TextureSemanticUnused3
	TextureSemanticUnused4
	TextureSemanticSpecularMap
	TextureSemanticUnused5
	TextureSemanticUnused6
	TextureSemanticWaterMap
)

var textureSemanticNames = [...]string{
	"2d", "function", "colormap", "unused1", "unused2", "normalmap",
	"unused3", "unused4", "specularmap", "unused5", "unused6", "watermap",
}

func (s TextureSemantic) IsValid() bool { return int(s) < len(textureSemanticNames) }

func (s TextureSemantic) String() string {
	if s.IsValid() {
		return textureSemanticNames[s]
	}
	return fmt.Sprintf("TextureSemantic(%d)", uint8(s))
}

const materialStateBitsEntryCount = 34

type rawMaterialInfo struct { // MaterialInfo, 24 bytes
	Name                    xstream.XString
	GameFlags               uint8
	SortKey                 uint8
	TextureAtlasRowCount    uint8
	TextureAtlasColumnCount uint8
	DrawSurf                uint64 // GfxDrawSurf
	SurfaceTypeBits         uint32
	_                       [4]byte // padding
}

type rawMaterial struct { // Material, 80 bytes
	Info           rawMaterialInfo
	StateBitsEntry [materialStateBitsEntryCount]uint8
	TextureCount   uint8
	ConstantCount  uint8
	StateBitsCount uint8
	StateFlags     uint8
	CameraRegion   uint8
	_              [1]byte // padding
	TechniqueSet   xstream.Ptr32[rawTechniqueSet]
	TextureTable   xstream.Ptr32[rawMaterialTextureDef]
	ConstantTable  xstream.Ptr32[rawMaterialConstantDef]
	StateBitsTable xstream.Ptr32[GfxStateBits]
}

type rawMaterialTextureDef struct { // MaterialTextureDef, 12 bytes
	NameHash     uint32
	NameStart    uint8
	NameEnd      uint8
	SamplerState uint8
	Semantic     TextureSemantic
	Info         uint32 // MaterialTextureDefInfo: water_t * when semantic is watermap, else GfxImage *
}

type rawWater struct { // water_t, 68 bytes
	FloatTime    float32
	H0           xstream.Ptr32[[2]float32] // complex_s, M*N
	WTerm        xstream.Ptr32[float32]    // M*N
	M            int32
	N            int32
	Lx           float32
	Lz           float32
	Gravity      float32
	WindVel      float32
	WindDir      [2]float32
	Amplitude    float32
	CodeConstant [4]float32
	Image        xstream.Ptr32[rawImage]
}

type rawMaterialConstantDef struct { // MaterialConstantDef, 32 bytes
	NameHash uint32
	Name     [12]byte
	Literal  [4]float32
}

// GfxStateBits is a pair of packed render state words, loadBits[2].
type GfxStateBits [2]uint32

type Material struct {
	Name                    string
	GameFlags               uint8
	SortKey                 uint8
	TextureAtlasRowCount    uint8
	TextureAtlasColumnCount uint8
	DrawSurf                uint64
	SurfaceTypeBits         uint32
	StateBitsEntry          [materialStateBitsEntryCount]uint8
	StateFlags              uint8
	CameraRegion            uint8
	TechniqueSet            *TechniqueSet
	Textures                []MaterialTextureDef
	Constants               []MaterialConstant
	StateBits               []GfxStateBits
}

// TextureSource is the texture a MaterialTextureDef points at: *Image or *Water.
type TextureSource interface {
	textureSource()
}

func (*Image) textureSource() {}
func (*Water) textureSource() {}

type MaterialTextureDef struct {
	NameHash     uint32
	NameStart    uint8
	NameEnd      uint8
	SamplerState uint8
	Semantic     TextureSemantic
	Source       TextureSource // nil when absent
}

type Water struct {
	FloatTime    float32
	H0           ComplexSlice
	WTerm        []float32
	M            int32
	N            int32
	Lx           float32
	Lz           float32
	Gravity      float32
	WindVel      float32
	WindDir      mgl32.Vec2
	Amplitude    float32
	CodeConstant mgl32.Vec4
	Image        *Image
}

// ComplexSlice marshals as [real, imag] pairs.
type ComplexSlice []complex64

func (c ComplexSlice) pairs() [][2]float32 {
	if c == nil {
		return nil
	}
	out := make([][2]float32, len(c))
	for i, v := range c {
		out[i] = [2]float32{real(v), imag(v)}
	}
	return out
}

func (c ComplexSlice) MarshalJSON() ([]byte, error) { return json.Marshal(c.pairs()) }

func (c ComplexSlice) MarshalYAML() (interface{}, error) { return c.pairs(), nil }

type MaterialConstant struct {
	NameHash uint32
	Name     string
	Literal  mgl32.Vec4
}

func (m *Material) AssetType() AssetType { return AssetMaterial }
func (m *Material) AssetName() string    { return m.Name }

func (raw rawMaterial) convert(r *xstream.Reader) (Material, error) {
	m := Material{
		GameFlags:               raw.Info.GameFlags,
		SortKey:                 raw.Info.SortKey,
		TextureAtlasRowCount:    raw.Info.TextureAtlasRowCount,
		TextureAtlasColumnCount: raw.Info.TextureAtlasColumnCount,
		DrawSurf:                raw.Info.DrawSurf,
		SurfaceTypeBits:         raw.Info.SurfaceTypeBits,
		StateBitsEntry:          raw.StateBitsEntry,
		StateFlags:              raw.StateFlags,
		CameraRegion:            raw.CameraRegion,
	}
	var err error
	if m.Name, err = raw.Info.Name.Resolve(r, "Material.info.name"); err != nil {
		return m, err
	}
	if m.TechniqueSet, err = xstream.ConvertPtr(r, raw.TechniqueSet, "Material.techniqueSet", rawTechniqueSet.convert); err != nil {
		return m, err
	}
	if m.Textures, err = xstream.ConvertArray(r, raw.TextureTable, int(raw.TextureCount), "Material.textureTable", rawMaterialTextureDef.convert); err != nil {
		return m, err
	}
	if m.Constants, err = xstream.ConvertArray(r, raw.ConstantTable, int(raw.ConstantCount), "Material.constantTable", rawMaterialConstantDef.convert); err != nil {
		return m, err
	}
	m.StateBits, err = xstream.ResolveArray(r, raw.StateBitsTable, int(raw.StateBitsCount), "Material.stateBitsTable")
	return m, err
}

func (raw rawMaterialTextureDef) convert(r *xstream.Reader) (MaterialTextureDef, error) {
	def := MaterialTextureDef{
		NameHash:     raw.NameHash,
		NameStart:    raw.NameStart,
		NameEnd:      raw.NameEnd,
		SamplerState: raw.SamplerState,
	}
	var err error
	if def.Semantic, err = xstream.CheckEnum(r, raw.Semantic, "MaterialTextureDef.semantic"); err != nil {
		return def, err
	}
	if def.Semantic == TextureSemanticWaterMap {
		water, err := xstream.ConvertPtr(r, xstream.Ptr32[rawWater](raw.Info), "MaterialTextureDef.u.water", rawWater.convert)
		if err != nil {
			return def, err
		}
		if water != nil {
			def.Source = water
		}
		return def, nil
	}
	img, err := xstream.ConvertPtr(r, xstream.Ptr32[rawImage](raw.Info), "MaterialTextureDef.u.image", rawImage.convert)
	if err != nil {
		return def, err
	}
	if img != nil {
		def.Source = img
	}
	return def, nil
}

func (raw rawWater) convert(r *xstream.Reader) (Water, error) {
	w := Water{
		FloatTime:    raw.FloatTime,
		M:            raw.M,
		N:            raw.N,
		Lx:           raw.Lx,
		Lz:           raw.Lz,
		Gravity:      raw.Gravity,
		WindVel:      raw.WindVel,
		WindDir:      raw.WindDir,
		Amplitude:    raw.Amplitude,
		CodeConstant: raw.CodeConstant,
	}
	n, err := xstream.CountProduct(r, raw.M, raw.N, "water_t.M*N")
	if err != nil {
		return w, err
	}
	h0, err := xstream.ResolveArray(r, raw.H0, n, "water_t.H0")
	if err != nil {
		return w, err
	}
	if h0 != nil {
		w.H0 = make(ComplexSlice, len(h0))
		for i, c := range h0 {
			w.H0[i] = complex(c[0], c[1])
		}
	}
	if w.WTerm, err = xstream.ResolveArray(r, raw.WTerm, n, "water_t.wTerm"); err != nil {
		return w, err
	}
	w.Image, err = xstream.ConvertPtr(r, raw.Image, "water_t.image", rawImage.convert)
	return w, err
}

func (raw rawMaterialConstantDef) convert(*xstream.Reader) (MaterialConstant, error) {
	return MaterialConstant{
		NameHash: raw.NameHash,
		Name:     trimNul(raw.Name[:]),
		Literal:  raw.Literal,
	}, nil
}
