// Package xfile opens XFile zones: it checks the header, inflates the body,
// reads the asset list and then hands out decoded assets one at a time.
package xfile

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/goopsie/xfileTools/assets"
	"github.com/goopsie/xfileTools/logging"
	"github.com/goopsie/xfileTools/xstream"
)

const blockCount = 7 // XFILE_BLOCK_COUNT

// Framing is the record at the head of an inflated payload.
type Framing struct { // XFile, 36 bytes
	Size         uint32
	ExternalSize uint32
	BlockSize    [blockCount]uint32
}

type rawAssetList struct { // XAssetList, 16 bytes
	StringList xstream.FatPtrCountFirstU32[xstream.XString] // ScriptStringList
	Assets     xstream.FatPtrCountFirstU32[assets.RawAsset]
}

// Stats counts what a Decoder has produced so far.
type Stats struct {
	Deserialized int // entries decoded without error, empty or not
	NonNull      int // entries that carried a payload
	Total        int // entries in the asset list
	Unsupported  int // entries with a payload of a type that has no decoder
}

type options struct {
	platform    Platform
	logger      *log.Logger
	maxInflated int64
}

type Option func(*options)

func WithPlatform(p Platform) Option {
	return func(o *options) { o.platform = p }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMaxInflatedSize(n int64) Option {
	return func(o *options) { o.maxInflated = n }
}

func newOptions(opts []Option) options {
	o := options{
		platform:    PlatformPC,
		maxInflated: DefaultMaxInflatedSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Logger()
	}
	return o
}

// Decoder is one decode session over one zone. It is not safe for concurrent
// use; decode separate zones with separate Decoders.
type Decoder struct {
	r       *xstream.Reader
	log     *log.Logger
	framing Framing
	queue   []assets.RawAsset
	next    int
	stats   Stats
	err     error
}

// Open reads and opens the zone at path.
func Open(path string, opts ...Option) (*Decoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	d, err := NewDecoder(data, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return d, nil
}

// NewDecoder validates and inflates a complete zone file.
func NewDecoder(data []byte, opts ...Option) (*Decoder, error) {
	o := newOptions(opts)
	payload, err := o.inflate(data)
	if err != nil {
		return nil, err
	}
	return newDecoder(payload, o)
}

// Inflate checks the header of a complete zone file and returns its inflated
// payload without decoding anything.
func Inflate(data []byte, opts ...Option) ([]byte, error) {
	return newOptions(opts).inflate(data)
}

func (o options) inflate(data []byte) ([]byte, error) {
	if !o.platform.IsValid() {
		return nil, errors.Errorf("invalid platform %d", int(o.platform))
	}
	if err := checkHeader(data, o.platform); err != nil {
		return nil, err
	}
	r := xstream.NewReader(data, o.platform.ByteOrder())
	if err := r.Skip(headerSize, "header"); err != nil {
		return nil, err
	}
	payload, err := inflate(r.Rest(), o.maxInflated)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("inflated zone", "platform", o.platform, "compressed", len(data)-headerSize, "inflated", len(payload))
	return payload, nil
}

// DecodePayload opens an already inflated payload.
func DecodePayload(payload []byte, opts ...Option) (*Decoder, error) {
	o := newOptions(opts)
	if !o.platform.IsValid() {
		return nil, errors.Errorf("invalid platform %d", int(o.platform))
	}
	return newDecoder(payload, o)
}

func newDecoder(payload []byte, o options) (*Decoder, error) {
	l := o.logger.With("session", uuid.NewString())
	r := xstream.NewReader(payload, o.platform.ByteOrder())
	r.SetLogger(l)

	d := &Decoder{r: r, log: l}
	if err := r.ReadFixed(&d.framing, "XFile"); err != nil {
		return nil, err
	}
	list, err := xstream.ReadFixed[rawAssetList](r, "XAssetList")
	if err != nil {
		return nil, err
	}
	strs, err := xstream.ConvertFat[xstream.XString, string](r, list.StringList, "XAssetList.stringList", func(s xstream.XString, r *xstream.Reader) (string, error) {
		return s.Resolve(r, "XAssetList.stringList")
	})
	if err != nil {
		return nil, errors.Wrap(err, "read script strings")
	}
	r.SetScriptStrings(strs)

	if d.queue, err = xstream.ResolveFat[assets.RawAsset](r, list.Assets, "XAssetList.assets"); err != nil {
		return nil, errors.Wrap(err, "read asset list")
	}
	d.stats.Total = len(d.queue)
	for _, e := range d.queue {
		if e.Type.IsValid() && e.Header.Kind() == xstream.PtrDeferred && !assets.Supported(e.Type) {
			d.stats.Unsupported++
		}
	}
	if d.stats.Unsupported > 0 {
		l.Warn("zone holds assets without a decoder", "count", d.stats.Unsupported)
	}

	l.Debug("opened zone",
		"platform", o.platform,
		"payload", len(payload),
		"size", d.framing.Size,
		"strings", len(strs),
		"assets", len(d.queue))
	return d, nil
}

// Next decodes the next entry of the asset list. It returns io.EOF after the
// last entry. After a failure every call returns that same error.
func (d *Decoder) Next() (assets.Asset, error) {
	if d.err != nil {
		return assets.Asset{}, d.err
	}
	if d.next >= len(d.queue) {
		if d.next == len(d.queue) {
			d.next++
			d.finish()
		}
		return assets.Asset{}, io.EOF
	}

	i := d.next
	entry := d.queue[i]
	d.next++
	a, err := assets.Decode(d.r, entry)
	if err != nil {
		d.err = errors.Wrapf(err, "asset %d of %d (%s)", i, len(d.queue), entry.Type)
		d.log.Error("decode failed", "index", i, "type", entry.Type, "err", err)
		return assets.Asset{}, d.err
	}

	d.stats.Deserialized++
	if a.Header != nil {
		d.stats.NonNull++
		d.log.Debug("decoded asset", "index", i, "type", a.Type, "name", a.Name(), "offset", a.Offset)
	}
	return a, nil
}

func (d *Decoder) finish() {
	if n := d.r.Remaining(); n > 0 {
		d.log.Warn("trailing bytes after last asset", "count", n, "offset", d.r.Pos())
	}
	d.log.Debug("zone done",
		"deserialized", d.stats.Deserialized,
		"non_null", d.stats.NonNull,
		"total", d.stats.Total)
}

// All decodes every remaining entry. On failure it returns the assets decoded
// before the failing one along with the error.
func (d *Decoder) All() ([]assets.Asset, error) {
	var out []assets.Asset
	for {
		a, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, a)
	}
}

// ScriptStrings is the zone's script string table.
func (d *Decoder) ScriptStrings() []string { return d.r.ScriptStrings() }

func (d *Decoder) Stats() Stats { return d.stats }

func (d *Decoder) Framing() Framing { return d.framing }

// Pos is the cursor offset into the inflated payload.
func (d *Decoder) Pos() int64 { return d.r.Pos() }

// Err is the error that stopped the session, if any.
func (d *Decoder) Err() error { return d.err }
