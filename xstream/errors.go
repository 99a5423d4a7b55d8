package xstream

import "fmt"

// Kind classifies a decode or encode failure.
type Kind int

const (
	KindTruncated Kind = iota + 1
	KindDecompress
	KindBadMagic
	KindPlatformMismatch
	KindBadVersion
	KindEndianness
	KindBadEnum
	KindBadFlags
	KindBadLength
	KindScriptString
	KindStringTableOverflow
	KindUnknownAssetType
	KindUnsupportedAssetType
)

var kindNames = map[Kind]string{
	KindTruncated:            "truncated input",
	KindDecompress:           "decompression failed",
	KindBadMagic:             "bad magic",
	KindPlatformMismatch:     "platform mismatch",
	KindBadVersion:           "bad version",
	KindEndianness:           "endianness mismatch",
	KindBadEnum:              "invalid enum value",
	KindBadFlags:             "invalid flags",
	KindBadLength:            "invalid length",
	KindScriptString:         "invalid script string",
	KindStringTableOverflow:  "script string table overflow",
	KindUnknownAssetType:     "unknown asset type",
	KindUnsupportedAssetType: "unsupported asset type",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type produced by the engine. Offset is a byte
// offset into the inflated payload, or -1 when there is none.
type Error struct {
	Kind   Kind
	Where  string
	Offset int64
	Detail string
}

func (e *Error) Error() string {
	msg := "xstream: " + e.Kind.String()
	if e.Where != "" {
		msg += " in " + e.Where
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset 0x%x", e.Offset)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of location.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrTruncated            = &Error{Kind: KindTruncated, Offset: -1}
	ErrDecompress           = &Error{Kind: KindDecompress, Offset: -1}
	ErrBadMagic             = &Error{Kind: KindBadMagic, Offset: -1}
	ErrPlatformMismatch     = &Error{Kind: KindPlatformMismatch, Offset: -1}
	ErrBadVersion           = &Error{Kind: KindBadVersion, Offset: -1}
	ErrEndianness           = &Error{Kind: KindEndianness, Offset: -1}
	ErrBadEnum              = &Error{Kind: KindBadEnum, Offset: -1}
	ErrBadFlags             = &Error{Kind: KindBadFlags, Offset: -1}
	ErrBadLength            = &Error{Kind: KindBadLength, Offset: -1}
	ErrScriptString         = &Error{Kind: KindScriptString, Offset: -1}
	ErrStringTableOverflow  = &Error{Kind: KindStringTableOverflow, Offset: -1}
	ErrUnknownAssetType     = &Error{Kind: KindUnknownAssetType, Offset: -1}
	ErrUnsupportedAssetType = &Error{Kind: KindUnsupportedAssetType, Offset: -1}
)

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, where string, offset int64, format string, args ...any) *Error {
	return &Error{Kind: kind, Where: where, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
