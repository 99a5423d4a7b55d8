package xstream

import "encoding/binary"

// MaxScriptStrings is the number of distinct script strings a zone can index.
const MaxScriptStrings = 0xFFFF

// Writer is the mirror of Reader: it appends raw structs and their deferred
// payloads in the order a Reader will consume them, and interns script
// strings as it goes.
type Writer struct {
	buf   []byte
	order binary.ByteOrder
	strs  []string
	index map[string]ScriptString
}

func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{
		order: order,
		index: make(map[string]ScriptString),
	}
}

func (w *Writer) Order() binary.ByteOrder { return w.order }

func (w *Writer) Len() int64 { return int64(len(w.buf)) }

func (w *Writer) Bytes() []byte { return w.buf }

// StoreFixed appends a fixed-size value, or a slice of them.
func (w *Writer) StoreFixed(v any, where string) error {
	b, err := binary.Append(w.buf, w.order, v)
	if err != nil {
		return Errorf(KindBadLength, where, w.Len(), "%v", err)
	}
	w.buf = b
	return nil
}

// StoreBytes appends b verbatim.
func (w *Writer) StoreBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// StoreCString appends s and its terminator.
func (w *Writer) StoreCString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// StoreString writes the payload for a field stored with StringPtr(s).
func (w *Writer) StoreString(s string) {
	if s != "" {
		w.StoreCString(s)
	}
}

// Intern returns the table index for s, adding it if needed. It reports
// false once the table is full.
func (w *Writer) Intern(s string) (ScriptString, bool) {
	if idx, ok := w.index[s]; ok {
		return idx, true
	}
	if len(w.strs) >= MaxScriptStrings {
		return 0, false
	}
	idx := ScriptString(len(w.strs))
	w.strs = append(w.strs, s)
	w.index[s] = idx
	return idx, true
}

// InternAll interns each of strs, failing with ErrStringTableOverflow.
func (w *Writer) InternAll(strs []string, where string) ([]ScriptString, error) {
	if len(strs) == 0 {
		return nil, nil
	}
	out := make([]ScriptString, len(strs))
	for i, s := range strs {
		idx, ok := w.Intern(s)
		if !ok {
			return nil, Errorf(KindStringTableOverflow, where, w.Len(), "more than %d distinct strings", MaxScriptStrings)
		}
		out[i] = idx
	}
	return out, nil
}

// ScriptStrings is the table in index order.
func (w *Writer) ScriptStrings() []string { return w.strs }
