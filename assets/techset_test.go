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

func techniqueSetPayload(t *testing.T, order binary.ByteOrder, flags TechniqueFlags) []byte {
	set := rawTechniqueSet{Name: xstream.XString(deferred), WorldVertFormat: 1}
	set.Techniques[0] = xstream.Ptr32[rawTechnique](deferred)
	set.Techniques[1] = 0x0DDBA11 // left for the engine to patch

	codeConst := make([]byte, 4)
	order.PutUint16(codeConst, 0x0102)
	codeConst[2], codeConst[3] = 3, 4

	w := xstream.NewWriter(order)
	store(t, w,
		set,
		"default",
		rawTechnique{Name: xstream.XString(deferred), Flags: flags, PassCount: 1},
		rawPass{
			VertexDecl:      xstream.Ptr32[rawVertexDecl](deferred),
			VertexShader:    xstream.Ptr32[rawShader](deferred),
			PerPrimArgCount: 1,
			StableArgCount:  1,
			Args:            xstream.Ptr32[rawShaderArgument](deferred),
		},
		"depth prepass",
		rawVertexDecl{StreamCount: 2, Routing: [vertexStreamCount]StreamRouting{{0, 0}, {1, 5}}},
		rawShader{Name: xstream.XString(deferred), Program: xstream.Ptr32[uint32](deferred), ProgramSize: 2},
		"vs_3_0",
		[]uint32{0xFFFE0300, 0x0000FFFF},
		[]rawShaderArgument{
			{Type: ShaderArgLiteralPixelConst, Dest: 7, U: deferred},
			{Type: ShaderArgCodePixelConst, Dest: 8, U: order.Uint32(codeConst)},
		},
		[4]float32{0, 0.5, 1, 2},
	)
	return w.Bytes()
}

func TestTechniqueSetDepthFirst(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			buf := techniqueSetPayload(t, order, TechniqueFlag4|TechniqueFlag200)
			r := xstream.NewReader(buf, order)
			a, err := Decode(r, deferredAsset(AssetTechniqueSet))
			require.NoError(t, err)
			assert.Equal(t, r.Len(), r.Pos())

			set := a.Header.(*TechniqueSet)
			assert.Equal(t, "default", set.Name)
			assert.Nil(t, set.Remapped)
			assert.Nil(t, set.Techniques[1])

			tech := set.Techniques[0]
			require.NotNil(t, tech)
			assert.Equal(t, "depth prepass", tech.Name)
			assert.Equal(t, TechniqueFlag4|TechniqueFlag200, tech.Flags)
			require.Len(t, tech.Passes, 1)

			pass := tech.Passes[0]
			require.NotNil(t, pass.VertexDecl)
			assert.Equal(t, []StreamRouting{{0, 0}, {1, 5}}, pass.VertexDecl.Routing)
			require.NotNil(t, pass.VertexShader)
			assert.Equal(t, "vs_3_0", pass.VertexShader.Name)
			assert.Equal(t, []uint32{0xFFFE0300, 0x0000FFFF}, pass.VertexShader.Program)
			assert.Nil(t, pass.PixelShader)

			require.Len(t, pass.Args, 2)
			assert.Equal(t, &ShaderLiteral{Value: mgl32.Vec4{0, 0.5, 1, 2}}, pass.Args[0].Value)
			assert.Equal(t, ShaderCodeConst{Index: 0x0102, FirstRow: 3, RowCount: 4}, pass.Args[1].Value)
			assert.Equal(t, uint16(8), pass.Args[1].Dest)
		})
	}
}

func TestTechniqueBadFlags(t *testing.T) {
	buf := techniqueSetPayload(t, binary.LittleEndian, 0x400)
	_, err := Decode(xstream.NewReader(buf, binary.LittleEndian), deferredAsset(AssetTechniqueSet))
	require.True(t, errors.Is(err, xstream.ErrBadFlags))

	var xerr *xstream.Error
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, "MaterialTechnique.flags", xerr.Where)
	assert.Equal(t, int64(148+8), xerr.Offset)
}

func TestShaderArgumentVariants(t *testing.T) {
	r := xstream.NewReader(nil, binary.LittleEndian)
	for _, tc := range []struct {
		raw  rawShaderArgument
		want ShaderArgValue
	}{
		{rawShaderArgument{Type: ShaderArgMaterialVertexConst, U: 0xABCD}, ShaderNameHash(0xABCD)},
		{rawShaderArgument{Type: ShaderArgMaterialPixelSampler, U: 0x1234}, ShaderNameHash(0x1234)},
		{rawShaderArgument{Type: ShaderArgCodePixelSampler, U: 5}, ShaderCodeSampler(5)},
		{rawShaderArgument{Type: ShaderArgLiteralVertexConst}, nil},
	} {
		arg, err := tc.raw.convert(r)
		require.NoError(t, err)
		assert.Equal(t, tc.want, arg.Value, tc.raw.Type.String())
	}

	_, err := rawShaderArgument{Type: 8}.convert(r)
	assert.True(t, errors.Is(err, xstream.ErrBadEnum))
}
