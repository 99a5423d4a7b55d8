package xstream

// PtrKind classifies the 32-bit value of a pointer field in a raw struct.
type PtrKind uint8

const (
	PtrNull       PtrKind = iota // nothing follows
	PtrDeferred                  // payload follows at the cursor
	PtrUnexpected                // a runtime address the engine patches at load; never followed
)

func (k PtrKind) String() string {
	switch k {
	case PtrNull:
		return "null"
	case PtrDeferred:
		return "deferred"
	default:
		return "unexpected"
	}
}

// The two sentinels mean the same thing to the loader.
const (
	Deferred    uint32 = 0xFFFFFFFF
	DeferredAlt uint32 = 0xFFFFFFFE
)

func Classify(v uint32) PtrKind {
	switch v {
	case 0:
		return PtrNull
	case Deferred, DeferredAlt:
		return PtrDeferred
	default:
		return PtrUnexpected
	}
}

// Ptr32 is a pointer field whose payload, when deferred, is a raw T.
type Ptr32[T any] uint32

func (p Ptr32[T]) Kind() PtrKind { return Classify(uint32(p)) }

// PtrIf is the pointer an encoder stores for a field that is present or not.
func PtrIf[T any](present bool) Ptr32[T] {
	if present {
		return Ptr32[T](Deferred)
	}
	return 0
}

// Resolve reads the T a deferred pointer refers to. Null and unexpected
// pointers resolve to nil without reading.
func Resolve[T any](r *Reader, p Ptr32[T], where string) (*T, error) {
	if !r.follow(uint32(p), where) {
		return nil, nil
	}
	v, err := ReadFixed[T](r, where)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ResolveArray reads count contiguous T values for a deferred pointer. A zero
// count never reads, whatever the pointer says.
func ResolveArray[T any](r *Reader, p Ptr32[T], count int, where string) ([]T, error) {
	if count < 0 {
		return nil, Errorf(KindBadLength, where, r.origin, "negative element count %d", count)
	}
	if count == 0 || !r.follow(uint32(p), where) {
		return nil, nil
	}
	return ReadArray[T](r, count, where)
}

// XString is a `const char *` field.
type XString uint32

func (s XString) Kind() PtrKind { return Classify(uint32(s)) }

// Resolve reads the NUL-terminated string for a deferred pointer. Null and
// unexpected pointers resolve to "".
func (s XString) Resolve(r *Reader, where string) (string, error) {
	if !r.follow(uint32(s), where) {
		return "", nil
	}
	return r.ReadCString(where)
}

// StringPtr is the pointer an encoder stores for s; "" is stored as null.
func StringPtr(s string) XString {
	if s == "" {
		return 0
	}
	return XString(Deferred)
}

// ScriptString is an index into the zone's script string table.
type ScriptString uint16

func (s ScriptString) Resolve(r *Reader, where string) (string, error) {
	return r.ScriptString(uint16(s), where)
}
