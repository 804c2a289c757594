package blockset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/blockset"
	"github.com/dentearl/maftools-go/genome"
)

func newBlock(t *testing.T, reg *genome.Registry, hgOrgSeq string, hgStart, hgEnd int64, mmOrgSeq string) *align.Block {
	t.Helper()
	hgSeq, err := reg.ObtainSequenceForOrgSeq(hgOrgSeq, 1000)
	require.NoError(t, err)
	mmSeq, err := reg.ObtainSequenceForOrgSeq(mmOrgSeq, 1000)
	require.NoError(t, err)

	hg, err := align.NewComponentFromAlignment(hgSeq, align.Plus, hgStart, hgEnd, "ACGT")
	require.NoError(t, err)
	mm, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 0, 4, "ACGT")
	require.NoError(t, err)

	b := align.NewEmptyBlock()
	b.AddComponent(hg)
	b.AddComponent(mm)
	tree, err := align.ConstructFromNewick(`(mm:.1,hg:0);`, []*align.Component{hg, mm})
	require.NoError(t, err)
	b.SetTree(tree)
	require.NoError(t, b.Finish())
	return b
}

func TestBlockSetAddAndGetOverlapping(t *testing.T) {
	reg := genome.NewRegistry()
	b1 := newBlock(t, reg, "hg.chr1", 0, 4, "mm.chr1")
	b2 := newBlock(t, reg, "hg.chr1", 10, 14, "mm.chr2")

	bs := blockset.NewBlockSet(reg, "test")
	bs.Add(b1)
	bs.Add(b2)
	assert.Equal(t, 2, bs.Len())

	hgSeq, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 1000)
	require.NoError(t, err)
	hits := bs.GetOverlapping(hgSeq, 0, 4, blockset.LocationRoot)
	require.Len(t, hits, 1)
	assert.Equal(t, b1, hits[0].Block)

	none := bs.GetOverlapping(hgSeq, 5, 10, blockset.LocationRoot)
	assert.Empty(t, none)

	adjacent := bs.GetOverlappingAdjacent(hgSeq, 4, 10, blockset.LocationRoot)
	assert.Len(t, adjacent, 2)
}

func TestBlockSetMarkForDeletionAndSweep(t *testing.T) {
	reg := genome.NewRegistry()
	b1 := newBlock(t, reg, "hg.chr1", 0, 4, "mm.chr1")
	bs := blockset.NewBlockSet(reg, "test")
	bs.Add(b1)

	bs.MarkForDeletion(b1)
	assert.True(t, b1.Deleted)
	require.Len(t, bs.Blocks(), 1)

	bs.SweepDeleted()
	assert.Equal(t, 0, bs.Len())
}

func TestBlockSetLocationFiltering(t *testing.T) {
	reg := genome.NewRegistry()
	b1 := newBlock(t, reg, "hg.chr1", 0, 4, "mm.chr1")
	bs := blockset.NewBlockSet(reg, "test")
	bs.Add(b1)

	mmSeq, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 1000)
	require.NoError(t, err)

	leafHits := bs.GetOverlapping(mmSeq, 0, 4, blockset.LocationLeaf)
	require.Len(t, leafHits, 1)

	rootHits := bs.GetOverlapping(mmSeq, 0, 4, blockset.LocationRoot)
	assert.Empty(t, rootHits)
}
