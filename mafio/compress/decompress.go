package compress

import (
	"bytes"
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// sniffLen is the number of leading bytes read to identify a codec by
// magic number; every signature below fits well within it.
const sniffLen = 512

var signatures = []struct {
	codec  codec
	prefix []byte
}{
	{codecBzip2, []byte{0x42, 0x5A, 0x68}},
	{codecGzip, []byte{0x1F, 0x8B}},
	{codecLZ4, []byte{0x04, 0x22, 0x4D, 0x18}},
	{codecXZ, []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
	{codecZstd, []byte{0x28, 0xB5, 0x2F, 0xFD}},
	// zlib has no single fixed magic number: the first byte encodes the
	// window size and the second is a parity-checked flag byte, so three
	// common CM/FLEVEL combinations are sniffed individually.
	{codecZlib, []byte{0x78, 0x01}},
	{codecZlib, []byte{0x78, 0x9C}},
	{codecZlib, []byte{0x78, 0xDA}},
}

func sniff(buf []byte) codec {
	for _, sig := range signatures {
		if bytes.HasPrefix(buf, sig.prefix) {
			return sig.codec
		}
	}
	return codecNone
}

type autoDecompressingReadCloser struct {
	io.Reader
	close func() error
}

func (r *autoDecompressingReadCloser) Close() error {
	if r.close != nil {
		return r.close()
	}
	return nil
}

// Decompress wraps r in a ReadCloser that transparently decompresses based
// on the leading bytes of the stream, falling back to passing r through
// unmodified when no known signature is found.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	buf = buf[:n]
	r = io.MultiReader(bytes.NewReader(buf), r)

	switch sniff(buf) {
	case codecBzip2:
		return &autoDecompressingReadCloser{Reader: bzip2.NewReader(r)}, nil
	case codecGzip:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &autoDecompressingReadCloser{Reader: gzReader, close: gzReader.Close}, nil
	case codecLZ4:
		return &autoDecompressingReadCloser{Reader: lz4.NewReader(r)}, nil
	case codecXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &autoDecompressingReadCloser{Reader: xzReader}, nil
	case codecZlib:
		zlibReader, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &autoDecompressingReadCloser{Reader: zlibReader, close: zlibReader.Close}, nil
	case codecZstd:
		zstdReader, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &autoDecompressingReadCloser{
			Reader: zstdReader,
			close: func() error {
				zstdReader.Close()
				return nil
			},
		}, nil
	default:
		return &autoDecompressingReadCloser{Reader: r}, nil
	}
}
