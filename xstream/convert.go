package xstream

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// ReadConvert reads a raw R at the cursor and converts it. conv runs before
// anything else is read, so R's own deferred fields are resolved depth-first
// from the bytes that follow it.
func ReadConvert[R, O any](r *Reader, where string, conv func(R, *Reader) (O, error)) (O, error) {
	start := r.pos
	raw, err := ReadFixed[R](r, where)
	if err != nil {
		var zero O
		return zero, err
	}
	prev := r.origin
	r.origin = start
	defer func() { r.origin = prev }()
	return conv(raw, r)
}

// ConvertPtr resolves a deferred pointer to a raw R and converts it. Null and
// unexpected pointers yield nil.
func ConvertPtr[R, O any](r *Reader, p Ptr32[R], where string, conv func(R, *Reader) (O, error)) (*O, error) {
	if !r.follow(uint32(p), where) {
		return nil, nil
	}
	v, err := ReadConvert(r, where, conv)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ConvertArray reads all count raw elements first and then converts them in
// order; each element's deferred data follows the whole array.
func ConvertArray[R, O any](r *Reader, p Ptr32[R], count int, where string, conv func(R, *Reader) (O, error)) ([]O, error) {
	base := r.pos
	raws, err := ResolveArray(r, p, count, where)
	if err != nil {
		return nil, err
	}
	return ConvertEach(r, raws, base, conv)
}

// ConvertEach converts raws that were read contiguously starting at base.
func ConvertEach[R, O any](r *Reader, raws []R, base int64, conv func(R, *Reader) (O, error)) ([]O, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	size := int64(binary.Size(raws[0]))
	prev := r.origin
	defer func() { r.origin = prev }()

	out := make([]O, len(raws))
	for i, raw := range raws {
		r.origin = base + int64(i)*size
		var err error
		if out[i], err = conv(raw, r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Enum is a raw discriminant with a closed set of known values.
type Enum interface {
	constraints.Integer
	IsValid() bool
}

// CheckEnum fails with ErrBadEnum when v is outside its known values.
func CheckEnum[E Enum](r *Reader, v E, where string) (E, error) {
	if !v.IsValid() {
		return v, Errorf(KindBadEnum, where, r.origin, "value %#x", uint64(v))
	}
	return v, nil
}

// CheckFlags fails with ErrBadFlags when v has bits outside mask.
func CheckFlags[F constraints.Unsigned](r *Reader, v, mask F, where string) (F, error) {
	if v&^mask != 0 {
		return v, Errorf(KindBadFlags, where, r.origin, "value %#x has unknown bits %#x", uint64(v), uint64(v&^mask))
	}
	return v, nil
}

// maxCount bounds element counts computed from raw fields.
const maxCount = 1 << 30

// Count turns a raw count field into an element count.
func Count[T constraints.Integer](r *Reader, n T, where string) (int, error) {
	if n < 0 || uint64(n) > maxCount {
		return 0, Errorf(KindBadLength, where, r.origin, "element count %d", n)
	}
	return int(n), nil
}

// CountProduct is Count for arrays sized by the product of two fields.
func CountProduct[T constraints.Integer](r *Reader, a, b T, where string) (int, error) {
	x, err := Count(r, a, where)
	if err != nil {
		return 0, err
	}
	y, err := Count(r, b, where)
	if err != nil {
		return 0, err
	}
	if y != 0 && x > maxCount/y {
		return 0, Errorf(KindBadLength, where, r.origin, "element count %d*%d", x, y)
	}
	return x * y, nil
}
