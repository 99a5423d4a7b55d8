package xfile

import (
	"math/bits"

	"github.com/goopsie/xfileTools/xstream"
)

// Version is the only zone version this loader reads.
const Version = 5

const headerSize = 12 // magic[8], version

// checkHeader validates the uncompressed header for p. Each failure has its
// own kind so a wrong --platform is distinguishable from a corrupt file.
func checkHeader(data []byte, p Platform) error {
	if len(data) < headerSize {
		return xstream.Errorf(xstream.KindTruncated, "header", int64(len(data)), "need %d bytes, have %d", headerSize, len(data))
	}
	var magic [8]byte
	copy(magic[:], data)
	switch magic {
	case p.Magic():
	case magicLittle, magicBig:
		return xstream.Errorf(xstream.KindPlatformMismatch, "header.magic", 0, "%q is not a %s zone", magic[:], p)
	default:
		return xstream.Errorf(xstream.KindBadMagic, "header.magic", 0, "%q", magic[:])
	}

	v := p.ByteOrder().Uint32(data[8:headerSize])
	switch {
	case v == Version:
		return nil
	case bits.ReverseBytes32(v) == Version:
		return xstream.Errorf(xstream.KindEndianness, "header.version", 8, "version stored in the wrong byte order for %s", p)
	default:
		return xstream.Errorf(xstream.KindBadVersion, "header.version", 8, "version %d, want %d", v, Version)
	}
}

func appendHeader(dst []byte, p Platform) []byte {
	magic := p.Magic()
	dst = append(dst, magic[:]...)
	var v [4]byte
	p.ByteOrder().PutUint32(v[:], Version)
	return append(dst, v[:]...)
}
