package assets

import "github.com/goopsie/xfileTools/xstream"

type encoder interface {
	encode(w *xstream.Writer) error
}

// Encodable reports whether assets of type t can be written back.
func Encodable(t AssetType) bool {
	switch t {
	case AssetPhysPreset, AssetXAnimParts, AssetSoundCurve, AssetMapEnts,
		AssetLocalizeEntry, AssetRawFile, AssetStringTable:
		return true
	}
	return false
}

// Encode appends h and everything it points to in the order Decode reads it
// back.
func Encode(w *xstream.Writer, h Header) error {
	e, ok := h.(encoder)
	if !ok {
		return xstream.Errorf(xstream.KindUnsupportedAssetType, "encode", w.Len(), "%s", h.AssetType())
	}
	return e.encode(w)
}
