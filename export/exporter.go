// Package export writes decoded assets to disk as JSON or YAML documents,
// together with a manifest of content digests, and reads and writes ZSTD
// dumps of inflated payloads.
package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"github.com/goopsie/xfileTools/assets"
	"github.com/goopsie/xfileTools/logging"
)

// Format is the document format assets are written in.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("unknown format %q (want json or yaml)", s)
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f Format) marshal(v any) ([]byte, error) {
	if f == FormatYAML {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "\t")
}

const ManifestName = "manifest.json"

// ManifestEntry describes one written file.
type ManifestEntry struct {
	Path   string `json:"path"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Blake3 string `json:"blake3"`
}

type Manifest struct {
	Zone  string          `json:"zone"`
	Files []ManifestEntry `json:"files"`
}

// Exporter writes the assets of one zone under a directory. It is not safe
// for concurrent use.
type Exporter struct {
	dir      string
	format   Format
	log      *log.Logger
	manifest Manifest
	seen     map[string]int
}

type Option func(*Exporter)

func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

func New(dir, zone string, format Format, opts ...Option) *Exporter {
	e := &Exporter{
		dir:      dir,
		format:   format,
		manifest: Manifest{Zone: zone},
		seen:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logging.Logger()
	}
	return e
}

// Export writes one asset. Entries without a payload are skipped.
func (e *Exporter) Export(a assets.Asset) error {
	if a.Header == nil {
		return nil
	}
	name := e.unique(a.Type, SafeName(a.Name()))

	format := e.format
	doc, err := format.marshal(a.Header)
	var unsupported *json.UnsupportedValueError
	if errors.As(err, &unsupported) {
		// JSON has no NaN or Inf.
		e.log.Warn("writing asset as yaml", "type", a.Type, "name", a.Name(), "value", unsupported.Str)
		format = FormatYAML
		doc, err = format.marshal(a.Header)
	}
	if err != nil {
		return errors.Wrapf(err, "marshal %s %q", a.Type, a.Name())
	}
	if err := e.write(path.Join(a.Type.String(), name+"."+string(format)), a, doc); err != nil {
		return err
	}

	if f, ok := a.Header.(*assets.RawFile); ok && f.Contents != nil {
		if err := e.write(path.Join("raw", name), a, f.Contents); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) write(rel string, a assets.Asset, b []byte) error {
	full := filepath.Join(e.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", rel)
	}
	if err := os.WriteFile(full, b, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", rel)
	}
	sum := blake3.Sum256(b)
	e.manifest.Files = append(e.manifest.Files, ManifestEntry{
		Path:   rel,
		Type:   a.Type.String(),
		Name:   a.Name(),
		Size:   len(b),
		Blake3: hex.EncodeToString(sum[:]),
	})
	e.log.Debug("wrote asset", "path", rel, "bytes", len(b))
	return nil
}

// unique disambiguates repeated names of the same type within a zone.
func (e *Exporter) unique(t assets.AssetType, name string) string {
	key := t.String() + "/" + name
	n := e.seen[key]
	e.seen[key] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s~%d", name, n)
}

func (e *Exporter) Manifest() Manifest { return e.manifest }

// Close writes the manifest.
func (e *Exporter) Close() error {
	b, err := json.MarshalIndent(e.manifest, "", "\t")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", e.dir)
	}
	return errors.Wrapf(os.WriteFile(filepath.Join(e.dir, ManifestName), b, 0o644), "write %s", ManifestName)
}

// SafeName turns an asset name into a relative slash path that stays inside
// the output directory.
func SafeName(name string) string {
	name = strings.TrimLeft(name, ",") // engine marks some names with a leading comma
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, strings.ContainsRune(`:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "unnamed"
	}
	return name
}
