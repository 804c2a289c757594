package mafio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentearl/maftools-go/blockset"
	"github.com/dentearl/maftools-go/genome"
	"github.com/dentearl/maftools-go/mafio"
)

func TestWriteDumpIncludesLocationAndTree(t *testing.T) {
	reg := genome.NewRegistry()
	blocks, err := mafio.Read(strings.NewReader(scenarioAMaf), reg, mafio.ReadOptions{})
	require.NoError(t, err)

	bs := blockset.NewBlockSet(reg, "test")
	for _, b := range blocks {
		bs.Add(b)
	}

	var buf bytes.Buffer
	require.NoError(t, mafio.WriteDump(&buf, bs))
	out := buf.String()

	assert.Contains(t, out, "width=10")
	assert.Contains(t, out, "tree=(mm:0.1,hg:0);")
	assert.Contains(t, out, "hg.chr1 + 0-10 0-10 [AAAAAAAAAA] root")
	assert.Contains(t, out, "mm.chr5 + 0-10 0-10 [CCCCCCCCCC] leaf")
}

func TestWriteDumpSkipsDeletedBlocks(t *testing.T) {
	reg := genome.NewRegistry()
	blocks, err := mafio.Read(strings.NewReader(scenarioAMaf), reg, mafio.ReadOptions{})
	require.NoError(t, err)
	blocks[0].MarkDeleted()

	bs := blockset.NewBlockSet(reg, "test")
	for _, b := range blocks {
		bs.Add(b)
	}

	var buf bytes.Buffer
	require.NoError(t, mafio.WriteDump(&buf, bs))
	assert.Empty(t, buf.String())
}
