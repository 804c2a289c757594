package genome_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentearl/maftools-go/genome"
)

func TestObtainSequenceForOrgSeq(t *testing.T) {
	reg := genome.NewRegistry()

	s1, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 100)
	require.NoError(t, err)
	assert.Equal(t, "hg.chr1", s1.OrgSeq())
	assert.Equal(t, int64(100), s1.Size)

	s2, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 100)
	require.NoError(t, err)
	assert.Same(t, s1, s2, "same org.seq must return the same Sequence")

	_, err = reg.ObtainSequenceForOrgSeq("hg.chr1", 200)
	assert.ErrorIs(t, err, genome.ErrInconsistentSize)
}

func TestSplitOrgSeq(t *testing.T) {
	g, s, err := genome.SplitOrgSeq("hg.chr1")
	require.NoError(t, err)
	assert.Equal(t, "hg", g)
	assert.Equal(t, "chr1", s)

	_, _, err = genome.SplitOrgSeq("hgchr1")
	assert.ErrorIs(t, err, genome.ErrMissingDot)
}

func TestObtainSequenceForOrgSeqMissingDot(t *testing.T) {
	reg := genome.NewRegistry()
	_, err := reg.ObtainSequenceForOrgSeq("hgchr1", 100)
	assert.ErrorIs(t, err, genome.ErrMissingDot)
}

func TestObtainSequenceUnknownSizeThenResolved(t *testing.T) {
	reg := genome.NewRegistry()
	s, err := reg.ObtainSequence("hg", "chr1", genome.SizeUnknown)
	require.NoError(t, err)
	assert.Equal(t, genome.SizeUnknown, s.Size)

	s2, err := reg.ObtainSequence("hg", "chr1", 500)
	require.NoError(t, err)
	assert.Same(t, s, s2)
	assert.Equal(t, int64(500), s.Size)
}

func TestGenomesAndSequencesOrder(t *testing.T) {
	reg := genome.NewRegistry()
	_, err := reg.ObtainSequenceForOrgSeq("hg.chr2", 10)
	require.NoError(t, err)
	_, err = reg.ObtainSequenceForOrgSeq("mm.chr1", 10)
	require.NoError(t, err)
	_, err = reg.ObtainSequenceForOrgSeq("hg.chr1", 10)
	require.NoError(t, err)

	genomes := reg.Genomes()
	require.Len(t, genomes, 2)
	assert.Equal(t, "hg", genomes[0].Name)
	assert.Equal(t, "mm", genomes[1].Name)

	seqs := genomes[0].Sequences()
	require.Len(t, seqs, 2)
	assert.Equal(t, "chr2", seqs[0].Name)
	assert.Equal(t, "chr1", seqs[1].Name)
}

func TestSequenceLess(t *testing.T) {
	reg := genome.NewRegistry()
	a, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 10)
	require.NoError(t, err)
	b, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 10)
	require.NoError(t, err)
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}
