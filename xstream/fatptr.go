package xstream

// FatPointer is a counted array field: an element count paired with a
// deferred pointer to the elements.
type FatPointer[T any] interface {
	Len() int
	Ptr() Ptr32[T]
}

// FatPtrCountFirstU32 is laid out as { uint32 count; T *data; }.
type FatPtrCountFirstU32[T any] struct {
	Count uint32
	Data  Ptr32[T]
}

func (f FatPtrCountFirstU32[T]) Len() int      { return int(f.Count) }
func (f FatPtrCountFirstU32[T]) Ptr() Ptr32[T] { return f.Data }

// FatPtrCountLastU32 is laid out as { T *data; uint32 count; }.
type FatPtrCountLastU32[T any] struct {
	Data  Ptr32[T]
	Count uint32
}

func (f FatPtrCountLastU32[T]) Len() int      { return int(f.Count) }
func (f FatPtrCountLastU32[T]) Ptr() Ptr32[T] { return f.Data }

// FatPtrCountFirstU16 is laid out as { uint16 count; T *data; } with no
// padding between the two.
type FatPtrCountFirstU16[T any] struct {
	Count uint16
	Data  Ptr32[T]
}

func (f FatPtrCountFirstU16[T]) Len() int      { return int(f.Count) }
func (f FatPtrCountFirstU16[T]) Ptr() Ptr32[T] { return f.Data }

// ResolveFat reads the raw elements of a counted array.
func ResolveFat[T any](r *Reader, f FatPointer[T], where string) ([]T, error) {
	return ResolveArray(r, f.Ptr(), f.Len(), where)
}

// ConvertFat reads and converts the elements of a counted array.
func ConvertFat[R, O any](r *Reader, f FatPointer[R], where string, conv func(R, *Reader) (O, error)) ([]O, error) {
	return ConvertArray(r, f.Ptr(), f.Len(), where, conv)
}

// CountFirst builds the fat pointer an encoder stores for n elements.
func CountFirst[T any](n int) FatPtrCountFirstU32[T] {
	return FatPtrCountFirstU32[T]{Count: uint32(n), Data: PtrIf[T](n > 0)}
}

func CountLast[T any](n int) FatPtrCountLastU32[T] {
	return FatPtrCountLastU32[T]{Data: PtrIf[T](n > 0), Count: uint32(n)}
}

func CountFirstU16[T any](n int) FatPtrCountFirstU16[T] {
	return FatPtrCountFirstU16[T]{Count: uint16(n), Data: PtrIf[T](n > 0)}
}
