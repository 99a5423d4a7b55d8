package assets

import (
	"fmt"

	"github.com/goopsie/xfileTools/xstream"
)

// MapType is the dimensionality of a GfxImage.
type MapType int32

const (
	MapTypeNone MapType = iota
	MapTypeInvalid1
	MapTypeInvalid2
	MapType2D
	MapType3D
	MapTypeCube
)

var mapTypeNames = [...]string{"none", "invalid1", "invalid2", "2d", "3d", "cube"}

func (m MapType) IsValid() bool { return m >= 0 && int(m) < len(mapTypeNames) }

func (m MapType) String() string {
	if m.IsValid() {
		return mapTypeNames[m]
	}
	return fmt.Sprintf("MapType(%d)", int32(m))
}

// ImageCategory says where an image's pixels come from.
type ImageCategory uint8

const (
	ImageCategoryUnknown ImageCategory = iota
	ImageCategoryAutoGenerated
	ImageCategoryLoadFromFile
	ImageCategoryRaw
	ImageCategoryWater
	ImageCategoryRenderTarget
	ImageCategoryTemp
)

var imageCategoryNames = [...]string{"unknown", "auto_generated", "load_from_file", "raw", "water", "render_target", "temp"}

func (c ImageCategory) IsValid() bool { return int(c) < len(imageCategoryNames) }

func (c ImageCategory) String() string {
	if c.IsValid() {
		return imageCategoryNames[c]
	}
	return fmt.Sprintf("ImageCategory(%d)", uint8(c))
}

// ImageFlags are the load-def flags of a GfxImage.
type ImageFlags uint8

const (
	ImageFlagNoPicmip ImageFlags = 1 << iota
	ImageFlagNoMipmaps
	ImageFlagCubeMap
	ImageFlagVolMap
	ImageFlagStreaming
	ImageFlagLegacyNormals

	imageFlagMask = ImageFlagNoPicmip | ImageFlagNoMipmaps | ImageFlagCubeMap |
		ImageFlagVolMap | ImageFlagStreaming | ImageFlagLegacyNormals
)

type rawImage struct { // GfxImage, 32 bytes
	MapType         MapType
	Texture         xstream.Ptr32[rawImageLoadDef]
	Semantic        TextureSemantic
	_               [3]byte // padding
	CardMemory      [2]int32 // platform[PICMIP_PLATFORM_COUNT]
	Width           uint16
	Height          uint16
	Depth           uint16
	Category        ImageCategory
	DelayLoadPixels bool
	Name            xstream.XString
}

type rawImageLoadDef struct { // GfxImageLoadDef, 16 bytes + resourceSize bytes of data
	LevelCount   uint8
	Flags        ImageFlags
	Dimensions   [3]int16
	Format       int32 // D3DFORMAT
	ResourceSize int32
}

type Image struct {
	Name            string
	MapType         MapType
	Semantic        TextureSemantic
	CardMemory      [2]int32
	Width           uint16
	Height          uint16
	Depth           uint16
	Category        ImageCategory
	DelayLoadPixels bool
	LoadDef         *ImageLoadDef
}

type ImageLoadDef struct {
	LevelCount uint8
	Flags      ImageFlags
	Dimensions [3]int16
	Format     int32
	Data       []byte
}

func (img *Image) AssetType() AssetType { return AssetImage }
func (img *Image) AssetName() string    { return img.Name }

func (raw rawImage) convert(r *xstream.Reader) (Image, error) {
	img := Image{
		CardMemory:      raw.CardMemory,
		Width:           raw.Width,
		Height:          raw.Height,
		Depth:           raw.Depth,
		DelayLoadPixels: raw.DelayLoadPixels,
	}
	var err error
	if img.MapType, err = xstream.CheckEnum(r, raw.MapType, "GfxImage.mapType"); err != nil {
		return img, err
	}
	if img.Semantic, err = xstream.CheckEnum(r, raw.Semantic, "GfxImage.semantic"); err != nil {
		return img, err
	}
	if img.Category, err = xstream.CheckEnum(r, raw.Category, "GfxImage.category"); err != nil {
		return img, err
	}
	if img.LoadDef, err = xstream.ConvertPtr(r, raw.Texture, "GfxImage.texture", rawImageLoadDef.convert); err != nil {
		return img, err
	}
	img.Name, err = raw.Name.Resolve(r, "GfxImage.name")
	return img, err
}

func (raw rawImageLoadDef) convert(r *xstream.Reader) (ImageLoadDef, error) {
	def := ImageLoadDef{
		LevelCount: raw.LevelCount,
		Dimensions: raw.Dimensions,
		Format:     raw.Format,
	}
	var err error
	if def.Flags, err = xstream.CheckFlags(r, raw.Flags, imageFlagMask, "GfxImageLoadDef.flags"); err != nil {
		return def, err
	}
	n, err := xstream.Count(r, raw.ResourceSize, "GfxImageLoadDef.resourceSize")
	if err != nil {
		return def, err
	}
	def.Data, err = xstream.ReadArray[byte](r, n, "GfxImageLoadDef.data")
	return def, err
}
