package assets

import (
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/goopsie/xfileTools/xstream"
)

const (
	techniqueCount    = 34 // TECHNIQUE_COUNT
	vertexStreamCount = 16
)

type rawTechniqueSet struct { // MaterialTechniqueSet, 148 bytes
	Name            xstream.XString
	WorldVertFormat uint8
	HasBeenUploaded bool
	Unused          [1]uint8
	_               [1]byte // padding
	Remapped        xstream.Ptr32[rawTechniqueSet]
	Techniques      [techniqueCount]xstream.Ptr32[rawTechnique]
}

type TechniqueSet struct {
	Name            string
	WorldVertFormat uint8
	HasBeenUploaded bool
	Remapped        *TechniqueSet
	Techniques      [techniqueCount]*Technique
}

func (s *TechniqueSet) AssetType() AssetType { return AssetTechniqueSet }
func (s *TechniqueSet) AssetName() string    { return s.Name }

func (raw rawTechniqueSet) convert(r *xstream.Reader) (TechniqueSet, error) {
	s := TechniqueSet{
		WorldVertFormat: raw.WorldVertFormat,
		HasBeenUploaded: raw.HasBeenUploaded,
	}
	var err error
	if s.Name, err = raw.Name.Resolve(r, "MaterialTechniqueSet.name"); err != nil {
		return s, err
	}
	if s.Remapped, err = xstream.ConvertPtr(r, raw.Remapped, "MaterialTechniqueSet.remappedTechniqueSet", rawTechniqueSet.convert); err != nil {
		return s, err
	}
	for i, p := range raw.Techniques {
		where := fmt.Sprintf("MaterialTechniqueSet.techniques[%d]", i)
		if s.Techniques[i], err = xstream.ConvertPtr(r, p, where, convertTechnique); err != nil {
			return s, err
		}
	}
	return s, nil
}

// TechniqueFlags are MaterialTechnique.flags. The engine leaves the bits unnamed.
type TechniqueFlags uint16

const (
	TechniqueFlag1 TechniqueFlags = 1 << iota
	TechniqueFlag2
	TechniqueFlag4
	TechniqueFlag8
	TechniqueFlag10
	TechniqueFlag20
	TechniqueFlag40
	TechniqueFlag80
	TechniqueFlag100
	TechniqueFlag200

	techniqueFlagMask TechniqueFlags = 0x3FF
)

type rawTechnique struct { // MaterialTechnique, 8 bytes + passCount MaterialPass
	Name      xstream.XString
	Flags     TechniqueFlags
	PassCount uint16
}

type Technique struct {
	Name   string
	Flags  TechniqueFlags
	Passes []MaterialPass
}

// convertTechnique reads the inline pass array that trails the header, then
// resolves the name, then each pass.
func convertTechnique(raw rawTechnique, r *xstream.Reader) (Technique, error) {
	var (
		t   Technique
		err error
	)
	if t.Flags, err = xstream.CheckFlags(r, raw.Flags, techniqueFlagMask, "MaterialTechnique.flags"); err != nil {
		return t, err
	}
	base := r.Pos()
	passes, err := xstream.ReadArray[rawPass](r, int(raw.PassCount), "MaterialTechnique.passArray")
	if err != nil {
		return t, err
	}
	if t.Name, err = raw.Name.Resolve(r, "MaterialTechnique.name"); err != nil {
		return t, err
	}
	t.Passes, err = xstream.ConvertEach(r, passes, base, rawPass.convert)
	return t, err
}

type rawPass struct { // MaterialPass, 20 bytes
	VertexDecl         xstream.Ptr32[rawVertexDecl]
	VertexShader       xstream.Ptr32[rawShader]
	PixelShader        xstream.Ptr32[rawShader]
	PerPrimArgCount    uint8
	PerObjArgCount     uint8
	StableArgCount     uint8
	CustomSamplerFlags uint8
	Args               xstream.Ptr32[rawShaderArgument] // perPrim+perObj+stable
}

type MaterialPass struct {
	VertexDecl         *VertexDecl
	VertexShader       *Shader
	PixelShader        *Shader
	PerPrimArgCount    uint8
	PerObjArgCount     uint8
	StableArgCount     uint8
	CustomSamplerFlags uint8
	Args               []ShaderArgument
}

func (raw rawPass) convert(r *xstream.Reader) (MaterialPass, error) {
	p := MaterialPass{
		PerPrimArgCount:    raw.PerPrimArgCount,
		PerObjArgCount:     raw.PerObjArgCount,
		StableArgCount:     raw.StableArgCount,
		CustomSamplerFlags: raw.CustomSamplerFlags,
	}
	var err error
	if p.VertexDecl, err = xstream.ConvertPtr(r, raw.VertexDecl, "MaterialPass.vertexDecl", rawVertexDecl.convert); err != nil {
		return p, err
	}
	if p.VertexShader, err = xstream.ConvertPtr(r, raw.VertexShader, "MaterialPass.vertexShader", rawShader.convert); err != nil {
		return p, err
	}
	if p.PixelShader, err = xstream.ConvertPtr(r, raw.PixelShader, "MaterialPass.pixelShader", rawShader.convert); err != nil {
		return p, err
	}
	n := int(raw.PerPrimArgCount) + int(raw.PerObjArgCount) + int(raw.StableArgCount)
	p.Args, err = xstream.ConvertArray(r, raw.Args, n, "MaterialPass.args", rawShaderArgument.convert)
	return p, err
}

// StreamRouting maps a vertex stream source onto a shader input.
type StreamRouting struct { // MaterialStreamRouting
	Source uint8
	Dest   uint8
}

type rawVertexDecl struct { // MaterialVertexDeclaration, 100 bytes
	StreamCount       uint8
	HasOptionalSource bool
	IsLoaded          bool
	_                 [1]byte // padding
	Routing           [vertexStreamCount]StreamRouting
	Decl              [vertexStreamCount]uint32 // IDirect3DVertexDeclaration9 *, runtime only
}

type VertexDecl struct {
	StreamCount       uint8
	HasOptionalSource bool
	IsLoaded          bool
	Routing           []StreamRouting
}

func (raw rawVertexDecl) convert(r *xstream.Reader) (VertexDecl, error) {
	d := VertexDecl{
		StreamCount:       raw.StreamCount,
		HasOptionalSource: raw.HasOptionalSource,
		IsLoaded:          raw.IsLoaded,
	}
	if int(raw.StreamCount) > vertexStreamCount {
		return d, xstream.Errorf(xstream.KindBadLength, "MaterialVertexDeclaration.streamCount", r.Origin(), "%d streams", raw.StreamCount)
	}
	if raw.StreamCount > 0 {
		d.Routing = append([]StreamRouting(nil), raw.Routing[:raw.StreamCount]...)
	}
	return d, nil
}

type rawShader struct { // MaterialVertexShader / MaterialPixelShader, 16 bytes
	Name            xstream.XString
	Handle          uint32 // IDirect3D*Shader9 *, runtime only
	Program         xstream.Ptr32[uint32]
	ProgramSize     uint16 // in dwords
	LoadForRenderer uint16
}

type Shader struct {
	Name            string
	Program         []uint32
	LoadForRenderer uint16
}

func (raw rawShader) convert(r *xstream.Reader) (Shader, error) {
	s := Shader{LoadForRenderer: raw.LoadForRenderer}
	var err error
	if s.Name, err = raw.Name.Resolve(r, "MaterialShader.name"); err != nil {
		return s, err
	}
	s.Program, err = xstream.ResolveArray(r, raw.Program, int(raw.ProgramSize), "MaterialShader.program")
	return s, err
}

// ShaderArgType selects the meaning of a shader argument's payload.
type ShaderArgType uint16

const (
	ShaderArgMaterialVertexConst ShaderArgType = iota
	ShaderArgLiteralVertexConst
	ShaderArgMaterialPixelSampler
	ShaderArgCodeVertexConst
	ShaderArgCodePixelSampler
	ShaderArgCodePixelConst
	ShaderArgMaterialPixelConst
	ShaderArgLiteralPixelConst
)

var shaderArgTypeNames = [...]string{
	"material_vertex_const", "literal_vertex_const", "material_pixel_sampler",
	"code_vertex_const", "code_pixel_sampler", "code_pixel_const",
	"material_pixel_const", "literal_pixel_const",
}

func (t ShaderArgType) IsValid() bool { return int(t) < len(shaderArgTypeNames) }

func (t ShaderArgType) String() string {
	if t.IsValid() {
		return shaderArgTypeNames[t]
	}
	return fmt.Sprintf("ShaderArgType(%d)", uint16(t))
}

type rawShaderArgument struct { // MaterialShaderArgument, 8 bytes
	Type ShaderArgType
	Dest uint16
	U    uint32 // MaterialArgumentDef
}

// ShaderArgValue is one of ShaderLiteral, ShaderCodeConst, ShaderCodeSampler
// or ShaderNameHash.
type ShaderArgValue interface {
	shaderArgValue()
}

// ShaderLiteral is a literal constant stored out of line.
type ShaderLiteral struct {
	Value mgl32.Vec4
}

// ShaderCodeConst names rows of an engine-supplied constant.
type ShaderCodeConst struct {
	Index    uint16
	FirstRow uint8
	RowCount uint8
}

type ShaderCodeSampler uint32

// ShaderNameHash refers to a material constant or texture by name hash.
type ShaderNameHash uint32

func (*ShaderLiteral) shaderArgValue()    {}
func (ShaderCodeConst) shaderArgValue()   {}
func (ShaderCodeSampler) shaderArgValue() {}
func (ShaderNameHash) shaderArgValue()    {}

type ShaderArgument struct {
	Type  ShaderArgType
	Dest  uint16
	Value ShaderArgValue // nil for a literal with no data
}

func (raw rawShaderArgument) convert(r *xstream.Reader) (ShaderArgument, error) {
	arg := ShaderArgument{Dest: raw.Dest}
	var err error
	if arg.Type, err = xstream.CheckEnum(r, raw.Type, "MaterialShaderArgument.type"); err != nil {
		return arg, err
	}
	switch arg.Type {
	case ShaderArgLiteralVertexConst, ShaderArgLiteralPixelConst:
		lit, err := xstream.Resolve(r, xstream.Ptr32[[4]float32](raw.U), "MaterialShaderArgument.u.literalConst")
		if err != nil {
			return arg, err
		}
		if lit != nil {
			arg.Value = &ShaderLiteral{Value: *lit}
		}
	case ShaderArgCodeVertexConst, ShaderArgCodePixelConst:
		arg.Value = splitCodeConst(r.Order(), raw.U)
	case ShaderArgCodePixelSampler:
		arg.Value = ShaderCodeSampler(raw.U)
	default:
		arg.Value = ShaderNameHash(raw.U)
	}
	return arg, nil
}

// splitCodeConst recovers the {index u16, firstRow u8, rowCount u8} view of
// the argument union, which was decoded as a single word in order.
func splitCodeConst(order binary.ByteOrder, u uint32) ShaderCodeConst {
	var b [4]byte
	order.PutUint32(b[:], u)
	return ShaderCodeConst{
		Index:    order.Uint16(b[:2]),
		FirstRow: b[2],
		RowCount: b[3],
	}
}
