package compress_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentearl/maftools-go/mafio/compress"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	names := []string{
		"test.gz",
		"test.bgz",
		"test.lz4",
		"test.xz",
		"test.zst",
	}

	dir := t.TempDir()
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			f, err := os.Create(path)
			require.NoError(t, err)

			w, err := compress.Compress(name, f)
			require.NoError(t, err)

			_, err = w.Write([]byte("##maf version=1\n"))
			require.NoError(t, err)

			require.NoError(t, w.Close())
			require.NoError(t, f.Close())

			f, err = os.Open(path)
			require.NoError(t, err)

			dr, err := compress.Decompress(f)
			require.NoError(t, err)

			buf, err := io.ReadAll(dr)
			require.NoError(t, err)

			require.NoError(t, dr.Close())

			assert.Equal(t, "##maf version=1\n", string(buf))
		})
	}
}

func TestCompressPlainMafNameWritesUncompressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.maf")

	f, err := os.Create(path)
	require.NoError(t, err)

	w, err := compress.Compress(path, f)
	require.NoError(t, err)
	_, err = w.Write([]byte("##maf version=1\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "##maf version=1\n", string(raw), "a plain .maf path must not be silently compressed")
}

func TestDecompressPassesThroughUncompressedInput(t *testing.T) {
	dr, err := compress.Decompress(strings.NewReader("##maf version=1\n"))
	require.NoError(t, err)
	buf, err := io.ReadAll(dr)
	require.NoError(t, err)
	require.NoError(t, dr.Close())
	assert.Equal(t, "##maf version=1\n", string(buf))
}
