// Package compress provides transparent, content- and suffix-driven
// (de)compression for MAF files, which are routinely shipped gzipped,
// zstd-compressed, or otherwise squeezed for transport.
package compress

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// codec names a compression scheme recognized by suffix on write and by
// magic-byte signature on read.
type codec int

const (
	codecNone codec = iota
	codecGzip
	codecBzip2
	codecLZ4
	codecXZ
	codecZlib
	codecZstd
)

// writerSuffixes maps a filename suffix to the codec used when writing.
// Order matters: longer/more specific suffixes are checked first so
// ".tar.gz"-style names never fall through to a shorter match.
var writerSuffixes = []struct {
	suffix string
	codec  codec
}{
	{".zst", codecZstd},
	{".xz", codecXZ},
	{".lz4", codecLZ4},
	{".bgz", codecGzip},
	{".gz", codecGzip},
}

// codecForName returns the codec implied by name's suffix, or codecNone for
// a plain ".maf" (or otherwise unrecognized) name. Unlike a "default to
// gzip" policy, an unsuffixed or ".maf"-suffixed path is written uncompressed:
// a MAF-join run given a plain outMaf path must produce plain text, not a
// silently gzipped file the caller never asked for.
func codecForName(name string) codec {
	for _, e := range writerSuffixes {
		if strings.HasSuffix(name, e.suffix) {
			return e.codec
		}
	}
	return codecNone
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Compress returns a WriteCloser over w that applies the compression
// implied by name's suffix, or no compression at all when name carries no
// recognized suffix (notably, a plain ".maf" path).
func Compress(name string, w io.Writer) (io.WriteCloser, error) {
	switch codecForName(name) {
	case codecZstd:
		return zstd.NewWriter(w)
	case codecXZ:
		return xz.NewWriter(w)
	case codecLZ4:
		return lz4.NewWriter(w), nil
	case codecGzip:
		return gzip.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}
