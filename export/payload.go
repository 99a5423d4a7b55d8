package export

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// DefaultCompressionLevel is used when a caller passes level 0.
const DefaultCompressionLevel = zstd.BestSpeed

// CompressedHeader prefixes a payload dump.
type CompressedHeader struct {
	Magic            [4]byte
	HeaderSize       uint32
	UncompressedSize uint64
	CompressedSize   uint64
}

var zstdMagic = [4]byte{0x5A, 0x53, 0x54, 0x44} // Z S T D

// CompressPayload wraps an inflated payload as a ZSTD dump.
func CompressPayload(b []byte, level int) ([]byte, error) {
	if level == 0 {
		level = DefaultCompressionLevel
	}
	zstdBytes, err := zstd.CompressLevel(nil, b, level)
	if err != nil {
		return nil, errors.Wrap(err, "zstd compress")
	}

	cHeader := CompressedHeader{
		Magic:            zstdMagic,
		HeaderSize:       uint32(binary.Size(CompressedHeader{})),
		UncompressedSize: uint64(len(b)),
		CompressedSize:   uint64(len(zstdBytes)),
	}
	fBuf := bytes.NewBuffer(make([]byte, 0, int(cHeader.HeaderSize)+len(zstdBytes)))
	if err := binary.Write(fBuf, binary.LittleEndian, cHeader); err != nil {
		return nil, err
	}
	fBuf.Write(zstdBytes)
	return fBuf.Bytes(), nil
}

// DecompressPayload reverses CompressPayload, checking the header against
// what is actually there.
func DecompressPayload(b []byte) ([]byte, error) {
	var cHeader CompressedHeader
	hdrSize := binary.Size(cHeader)
	if len(b) < hdrSize {
		return nil, errors.Errorf("payload dump is %d bytes, shorter than its header", len(b))
	}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &cHeader); err != nil {
		return nil, errors.Wrap(err, "read dump header")
	}
	if cHeader.Magic != zstdMagic || int(cHeader.HeaderSize) != hdrSize {
		return nil, errors.Errorf("not a payload dump (magic %q, header size %d)", cHeader.Magic[:], cHeader.HeaderSize)
	}

	body := b[hdrSize:]
	if uint64(len(body)) != cHeader.CompressedSize {
		return nil, errors.Errorf("dump header says %d compressed bytes, found %d", cHeader.CompressedSize, len(body))
	}
	decomp, err := zstd.Decompress(nil, body)
	if err != nil {
		return nil, errors.Wrap(err, "zstd decompress")
	}
	if uint64(len(decomp)) != cHeader.UncompressedSize {
		return nil, errors.Errorf("dump header says %d uncompressed bytes, got %d", cHeader.UncompressedSize, len(decomp))
	}
	return decomp, nil
}

// WritePayload writes a ZSTD dump of an inflated payload to path.
func WritePayload(path string, payload []byte, level int) error {
	b, err := CompressPayload(payload, level)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o644), "write %s", path)
}

// ReadPayload reads a dump written by WritePayload.
func ReadPayload(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	payload, err := DecompressPayload(b)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return payload, nil
}
