package xfile

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/goopsie/xfileTools/xstream"
)

// DefaultMaxInflatedSize caps how large a payload inflate will produce.
const DefaultMaxInflatedSize = 512 << 20

func inflate(body []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, xstream.Errorf(xstream.KindDecompress, "zlib", headerSize, "%v", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, xstream.Errorf(xstream.KindDecompress, "zlib", headerSize, "%v", err)
	}
	if int64(len(out)) > limit {
		return nil, xstream.Errorf(xstream.KindDecompress, "zlib", headerSize, "inflated payload exceeds %d bytes", limit)
	}
	return out, nil
}

func deflate(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
