package xfile

import (
	"github.com/pkg/errors"

	"github.com/goopsie/xfileTools/assets"
	"github.com/goopsie/xfileTools/xstream"
)

// Encode builds a complete zone file for p. Entries with a nil Header are
// written as empty asset list entries.
func Encode(p Platform, list []assets.Asset) ([]byte, error) {
	payload, err := EncodePayload(p, list)
	if err != nil {
		return nil, err
	}
	body, err := deflate(payload)
	if err != nil {
		return nil, errors.Wrap(err, "deflate payload")
	}
	out := appendHeader(make([]byte, 0, headerSize+len(body)), p)
	return append(out, body...), nil
}

// EncodePayload builds the inflated payload Decoder reads: framing, asset
// list, script strings, asset entries and then each asset body in order.
func EncodePayload(p Platform, list []assets.Asset) ([]byte, error) {
	if !p.IsValid() {
		return nil, errors.Errorf("invalid platform %d", int(p))
	}
	order := p.ByteOrder()

	// Bodies are encoded first; the script string table they fill is written
	// ahead of them.
	bodies := xstream.NewWriter(order)
	entries := make([]assets.RawAsset, len(list))
	for i, a := range list {
		entries[i] = assets.RawAsset{Type: a.Type}
		if a.Header == nil {
			continue
		}
		if a.Header.AssetType() != a.Type {
			return nil, errors.Errorf("asset %d: type %s does not match header %s", i, a.Type, a.Header.AssetType())
		}
		entries[i].Header = xstream.PtrIf[struct{}](true)
		if err := assets.Encode(bodies, a.Header); err != nil {
			return nil, errors.Wrapf(err, "encode asset %d (%s %q)", i, a.Type, a.Name())
		}
	}
	strs := bodies.ScriptStrings()

	w := xstream.NewWriter(order)
	listHdr := rawAssetList{
		StringList: xstream.CountFirst[xstream.XString](len(strs)),
		Assets:     xstream.CountFirst[assets.RawAsset](len(entries)),
	}
	if err := w.StoreFixed(listHdr, "XAssetList"); err != nil {
		return nil, err
	}
	if len(strs) > 0 {
		ptrs := make([]xstream.XString, len(strs))
		for i, s := range strs {
			ptrs[i] = xstream.StringPtr(s)
		}
		if err := w.StoreFixed(ptrs, "XAssetList.stringList"); err != nil {
			return nil, err
		}
		for _, s := range strs {
			w.StoreString(s)
		}
	}
	if len(entries) > 0 {
		if err := w.StoreFixed(entries, "XAssetList.assets"); err != nil {
			return nil, err
		}
	}
	w.StoreBytes(bodies.Bytes())

	out := xstream.NewWriter(order)
	if err := out.StoreFixed(Framing{Size: uint32(w.Len())}, "XFile"); err != nil {
		return nil, err
	}
	out.StoreBytes(w.Bytes())
	return out.Bytes(), nil
}
