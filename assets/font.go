package assets

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/goopsie/xfileTools/xstream"
)

type rawFont struct { // Font_s, 24 bytes
	FontName     xstream.XString
	PixelHeight  int32
	GlyphCount   int32
	Material     xstream.Ptr32[rawMaterial]
	GlowMaterial xstream.Ptr32[rawMaterial]
	Glyphs       xstream.Ptr32[rawGlyph]
}

type rawGlyph struct { // Glyph, 24 bytes
	Letter      uint16
	X0          int8
	Y0          int8
	Dx          uint8
	PixelWidth  uint8
	PixelHeight uint8
	_           [1]byte // padding
	S0          float32
	T0          float32
	S1          float32
	T1          float32
}

type Font struct {
	Name         string
	PixelHeight  int32
	Material     *Material
	GlowMaterial *Material
	Glyphs       []Glyph
}

type Glyph struct {
	Letter      uint16
	X0          int8
	Y0          int8
	Dx          uint8
	PixelWidth  uint8
	PixelHeight uint8
	ST0         mgl32.Vec2 // top-left texture coordinate
	ST1         mgl32.Vec2
}

func (f *Font) AssetType() AssetType { return AssetFont }
func (f *Font) AssetName() string    { return f.Name }

// Glyph returns the glyph for letter, or nil.
func (f *Font) Glyph(letter rune) *Glyph {
	for i := range f.Glyphs {
		if rune(f.Glyphs[i].Letter) == letter {
			return &f.Glyphs[i]
		}
	}
	return nil
}

func (raw rawFont) convert(r *xstream.Reader) (Font, error) {
	f := Font{PixelHeight: raw.PixelHeight}
	var err error
	if f.Name, err = raw.FontName.Resolve(r, "Font_s.fontName"); err != nil {
		return f, err
	}
	if f.Material, err = xstream.ConvertPtr(r, raw.Material, "Font_s.material", rawMaterial.convert); err != nil {
		return f, err
	}
	if f.GlowMaterial, err = xstream.ConvertPtr(r, raw.GlowMaterial, "Font_s.glowMaterial", rawMaterial.convert); err != nil {
		return f, err
	}
	n, err := xstream.Count(r, raw.GlyphCount, "Font_s.glyphCount")
	if err != nil {
		return f, err
	}
	f.Glyphs, err = xstream.ConvertArray(r, raw.Glyphs, n, "Font_s.glyphs", rawGlyph.convert)
	return f, err
}

func (raw rawGlyph) convert(*xstream.Reader) (Glyph, error) {
	return Glyph{
		Letter:      raw.Letter,
		X0:          raw.X0,
		Y0:          raw.Y0,
		Dx:          raw.Dx,
		PixelWidth:  raw.PixelWidth,
		PixelHeight: raw.PixelHeight,
		ST0:         mgl32.Vec2{raw.S0, raw.T0},
		ST1:         mgl32.Vec2{raw.S1, raw.T1},
	}, nil
}
