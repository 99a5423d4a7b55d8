package export

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/xfileTools/assets"
	"github.com/goopsie/xfileTools/logging"
)

// Import reads back a directory written by an Exporter, in manifest order.
// Documents of types that cannot be encoded are skipped. A RawFile takes its
// contents from raw/<name> when that file is listed, so an edited body wins
// over the copy inside the document.
func Import(dir string, opts ...Option) (Manifest, []assets.Asset, error) {
	e := &Exporter{}
	for _, opt := range opts {
		opt(e)
	}
	l := e.log
	if l == nil {
		l = logging.Logger()
	}

	var m Manifest
	b, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, nil, errors.Wrapf(err, "read %s", ManifestName)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, nil, errors.Wrapf(err, "parse %s", ManifestName)
	}

	var list []assets.Asset
	for _, f := range m.Files {
		if strings.HasPrefix(f.Path, "raw/") {
			if err := readRawBody(dir, f, list); err != nil {
				return m, nil, err
			}
			continue
		}
		t, ok := assets.ParseAssetType(f.Type)
		if !ok {
			return m, nil, errors.Errorf("%s: unknown asset type %q", f.Path, f.Type)
		}
		h, ok := assets.NewHeader(t)
		if !ok {
			l.Warn("skipping asset that cannot be encoded", "path", f.Path, "type", f.Type)
			continue
		}
		if err := readDocument(dir, f.Path, h); err != nil {
			return m, nil, err
		}
		list = append(list, assets.Asset{Type: t, Offset: -1, Header: h})
	}
	return m, list, nil
}

func readDocument(dir, rel string, h assets.Header) error {
	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return errors.Wrapf(err, "read %s", rel)
	}
	switch path.Ext(rel) {
	case ".json":
		err = json.Unmarshal(b, h)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, h)
	default:
		return errors.Errorf("%s: not a json or yaml document", rel)
	}
	return errors.Wrapf(err, "parse %s", rel)
}

func readRawBody(dir string, f ManifestEntry, list []assets.Asset) error {
	if len(list) == 0 {
		return errors.Errorf("%s: raw body without a preceding document", f.Path)
	}
	rf, ok := list[len(list)-1].Header.(*assets.RawFile)
	if !ok {
		return errors.Errorf("%s: raw body does not follow a rawfile document", f.Path)
	}
	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Path)))
	if err != nil {
		return errors.Wrapf(err, "read %s", f.Path)
	}
	rf.Contents = b
	return nil
}
