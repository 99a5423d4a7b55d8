package assets

import (
	"bytes"

	"github.com/goopsie/xfileTools/xstream"
)

// resolveString adapts XString.Resolve to the array conversion signature.
func resolveString(where string) func(xstream.XString, *xstream.Reader) (string, error) {
	return func(s xstream.XString, r *xstream.Reader) (string, error) {
		return s.Resolve(r, where)
	}
}

func resolveScriptString(where string) func(xstream.ScriptString, *xstream.Reader) (string, error) {
	return func(s xstream.ScriptString, r *xstream.Reader) (string, error) {
		return s.Resolve(r, where)
	}
}

// storeStrings writes an array of string pointers followed by each string.
func storeStrings(w *xstream.Writer, strs []string, where string) error {
	if len(strs) == 0 {
		return nil
	}
	ptrs := make([]xstream.XString, len(strs))
	for i, s := range strs {
		ptrs[i] = xstream.StringPtr(s)
	}
	if err := w.StoreFixed(ptrs, where); err != nil {
		return err
	}
	for _, s := range strs {
		w.StoreString(s)
	}
	return nil
}

func trimNul(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
