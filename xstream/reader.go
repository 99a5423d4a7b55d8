// Package xstream is the sequential cursor the XFile engine decodes from, the
// deferred pointer primitives built on it, and the mirror writer used to
// produce the same layout.
//
// Every read advances one shared forward-only position. Deferred data is
// laid out immediately after the struct that references it, in field
// declaration order, so callers must resolve fields in that order.
package xstream

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/charmbracelet/log"
)

// Reader is a forward-only cursor over an inflated XFile payload.
type Reader struct {
	buf    []byte
	pos    int64
	origin int64 // start of the raw struct currently being converted
	order  binary.ByteOrder
	strs   []string
	log    *log.Logger
}

func NewReader(buf []byte, order binary.ByteOrder) *Reader {
	return &Reader{
		buf:    buf,
		origin: -1,
		order:  order,
		log:    log.Default(),
	}
}

func (r *Reader) SetLogger(l *log.Logger) {
	if l != nil {
		r.log = l
	}
}

func (r *Reader) Order() binary.ByteOrder { return r.order }

// Pos is the number of bytes consumed so far.
func (r *Reader) Pos() int64 { return r.pos }

// Len is the total length of the underlying buffer.
func (r *Reader) Len() int64 { return int64(len(r.buf)) }

func (r *Reader) Remaining() int64 { return int64(len(r.buf)) - r.pos }

// Origin is the offset of the raw struct whose conversion is in progress.
func (r *Reader) Origin() int64 { return r.origin }

// Skip moves the cursor forward by n bytes. Only the outer framing uses it:
// the zone header ahead of the compressed body.
func (r *Reader) Skip(n int64, where string) error {
	if n < 0 {
		return Errorf(KindBadLength, where, r.pos, "negative skip %d", n)
	}
	if n > r.Remaining() {
		return r.truncated(where, n)
	}
	r.pos += n
	return nil
}

// Rest consumes and returns everything after the cursor.
func (r *Reader) Rest() []byte {
	b := r.buf[r.pos:]
	r.pos = int64(len(r.buf))
	return b
}

// ReadFixed decodes a fixed-size value (a pointer to one) at the cursor.
func (r *Reader) ReadFixed(v any, where string) error {
	n := binary.Size(v)
	if n < 0 {
		return Errorf(KindBadLength, where, r.pos, "%T is not a fixed-size value", v)
	}
	if int64(n) > r.Remaining() {
		return r.truncated(where, int64(n))
	}
	if _, err := binary.Decode(r.buf[r.pos:r.pos+int64(n)], r.order, v); err != nil {
		return Errorf(KindTruncated, where, r.pos, "%v", err)
	}
	r.pos += int64(n)
	return nil
}

// ReadFixed reads one T at the cursor.
func ReadFixed[T any](r *Reader, where string) (T, error) {
	var v T
	err := r.ReadFixed(&v, where)
	return v, err
}

// ReadArray reads count contiguous T values at the cursor. The bounds are
// checked before anything is allocated.
func ReadArray[T any](r *Reader, count int, where string) ([]T, error) {
	if count < 0 {
		return nil, Errorf(KindBadLength, where, r.pos, "negative element count %d", count)
	}
	if count == 0 {
		return nil, nil
	}
	var zero T
	size := int64(binary.Size(zero))
	if size <= 0 {
		return nil, Errorf(KindBadLength, where, r.pos, "%T is not a fixed-size value", zero)
	}
	if int64(count) > r.Remaining()/size {
		return nil, r.truncated(where, int64(count)*size)
	}
	out := make([]T, count)
	n := int64(count) * size
	if _, err := binary.Decode(r.buf[r.pos:r.pos+n], r.order, out); err != nil {
		return nil, Errorf(KindTruncated, where, r.pos, "%v", err)
	}
	r.pos += n
	return out, nil
}

// ReadCString reads a NUL-terminated string and consumes the terminator.
func (r *Reader) ReadCString(where string) (string, error) {
	idx := bytes.IndexByte(r.buf[r.pos:], 0)
	if idx < 0 {
		return "", Errorf(KindTruncated, where, r.pos, "unterminated string")
	}
	s := string(r.buf[r.pos : r.pos+int64(idx)])
	r.pos += int64(idx) + 1
	return s, nil
}

// SetScriptStrings installs the zone's script string table. It is set once,
// before any asset is decoded.
func (r *Reader) SetScriptStrings(strs []string) { r.strs = strs }

func (r *Reader) ScriptStrings() []string { return r.strs }

// ScriptString looks an index up in the table; it never touches the cursor.
func (r *Reader) ScriptString(index uint16, where string) (string, error) {
	if int(index) >= len(r.strs) {
		return "", Errorf(KindScriptString, where, r.origin,
			"index %d out of range (table has %d entries)", index, len(r.strs))
	}
	return r.strs[index], nil
}

// follow reports whether a pointer's payload is at the cursor.
func (r *Reader) follow(v uint32, where string) bool {
	switch Classify(v) {
	case PtrDeferred:
		return true
	case PtrUnexpected:
		r.log.Warn("not following unexpected pointer",
			"where", where, "value", fmt.Sprintf("0x%08x", v), "offset", r.pos)
	}
	return false
}

func (r *Reader) truncated(where string, need int64) error {
	return Errorf(KindTruncated, where, r.pos, "need %d bytes, %d remain", need, r.Remaining())
}
