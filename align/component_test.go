package align_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/genome"
)

func mustSeq(t *testing.T, orgSeq string, size int64) *genome.Sequence {
	t.Helper()
	reg := genome.NewRegistry()
	s, err := reg.ObtainSequenceForOrgSeq(orgSeq, size)
	require.NoError(t, err)
	return s
}

func TestNewComponentFromAlignmentRoundTrip(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c, err := align.NewComponentFromAlignment(seq, align.Plus, 10, 16, "AC--GTGA")
	require.NoError(t, err)
	assert.Equal(t, int64(10), c.Start)
	assert.Equal(t, int64(16), c.End)
	assert.Equal(t, int64(8), c.AlnWidth)
	assert.Equal(t, "AC--GTGA", c.AlignedString())
	assert.True(t, c.AnyAligned())
}

func TestNewComponentFromAlignmentMismatchedLength(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	_, err := align.NewComponentFromAlignment(seq, align.Plus, 10, 20, "AC--GTGA")
	assert.ErrorIs(t, err, align.ErrMalformedRow)
}

func TestComponentMinusStrandChromRange(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c, err := align.NewComponentFromAlignment(seq, align.Minus, 10, 16, "ACGTGA")
	require.NoError(t, err)
	assert.Equal(t, int64(84), c.ChromStart)
	assert.Equal(t, int64(90), c.ChromEnd)
}

func TestComponentSubrange(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c, err := align.NewComponentFromAlignment(seq, align.Plus, 0, 6, "AC--GT--GA")
	require.NoError(t, err)
	require.Equal(t, int64(10), c.AlnWidth)

	sub := c.Subrange(2, 8)
	require.NotNil(t, sub)
	assert.Equal(t, "--GT--", sub.AlignedString())
	assert.Equal(t, int64(2), sub.Start)
	assert.Equal(t, int64(4), sub.End)

	assert.Nil(t, c.Subrange(2, 2))
}

func TestComponentReverseComplementRoundTrip(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c, err := align.NewComponentFromAlignment(seq, align.Plus, 10, 16, "ACGTGA")
	require.NoError(t, err)

	rc := c.ReverseComplement()
	assert.Equal(t, align.Minus, rc.Strand)
	assert.Equal(t, c.ChromStart, rc.ChromStart)
	assert.Equal(t, c.ChromEnd, rc.ChromEnd)
	assert.Equal(t, "TCACGT", rc.AlignedString())

	rc2 := rc.ReverseComplement()
	assert.Equal(t, align.Plus, rc2.Strand)
	assert.Equal(t, c.AlignedString(), rc2.AlignedString())
	assert.Equal(t, c.Start, rc2.Start)
	assert.Equal(t, c.End, rc2.End)
}

func TestSeqRangeToAlnRangeAndBack(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c, err := align.NewComponentFromAlignment(seq, align.Plus, 0, 6, "AC--GT--GA")
	require.NoError(t, err)

	lo, hi, ok := c.SeqRangeToAlnRange(2, 4)
	require.True(t, ok)
	assert.Equal(t, int64(4), lo)
	assert.Equal(t, int64(6), hi)

	seqLo, seqHi, ok := c.AlnRangeToSeqRange(lo, hi)
	require.True(t, ok)
	assert.Equal(t, int64(2), seqLo)
	assert.Equal(t, int64(4), seqHi)
}

func TestCursorWalksColumns(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c, err := align.NewComponentFromAlignment(seq, align.Plus, 0, 4, "AC--GT")
	require.NoError(t, err)

	cur := align.NewCursor(c)
	var bases []byte
	for cur.Advance() {
		if cur.IsAligned() {
			bases = append(bases, cur.Base())
		}
	}
	assert.Equal(t, "ACGT", string(bases))
}

func TestCursorSetSeqPos(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c, err := align.NewComponentFromAlignment(seq, align.Plus, 0, 4, "AC--GT")
	require.NoError(t, err)

	cur := align.NewCursor(c)
	require.NoError(t, cur.SetSeqPos(2))
	assert.True(t, cur.IsAligned())
	assert.Equal(t, byte('G'), cur.Base())
}

func TestAppendColumnGrowsComponent(t *testing.T) {
	seq := mustSeq(t, "hg.chr1", 100)
	c := align.NewEmptyComponent(seq, align.Plus, 5)
	c.AppendColumn('A')
	c.AppendGapColumn()
	c.AppendColumn('C')
	assert.Equal(t, int64(3), c.AlnWidth)
	assert.Equal(t, int64(7), c.End)
	assert.Equal(t, "A-C", c.AlignedString())
}
