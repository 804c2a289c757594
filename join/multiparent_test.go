package join_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/blockset"
	"github.com/dentearl/maftools-go/genome"
	"github.com/dentearl/maftools-go/join"
)

func TestCheckMultiParentDetectsOverlap(t *testing.T) {
	reg := genome.NewRegistry()
	hgSeq, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 1000)
	require.NoError(t, err)
	mmSeq, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 1000)
	require.NoError(t, err)

	hg1, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 0, 10, "AAAAAAAAAA")
	require.NoError(t, err)
	mm1, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 0, 10, "CCCCCCCCCC")
	require.NoError(t, err)
	b1 := buildTreeBlock(t, `(mm:.1,hg:0);`, []*align.Component{hg1, mm1})

	hg2, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 100, 110, "GGGGGGGGGG")
	require.NoError(t, err)
	mm2, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 5, 15, "TTTTTTTTTT")
	require.NoError(t, err)
	b2 := buildTreeBlock(t, `(mm:.1,hg:0);`, []*align.Component{hg2, mm2})

	bs := blockset.NewBlockSet(reg, "s")
	bs.Add(b1)
	bs.Add(b2)

	err = join.CheckMultiParent(bs)
	assert.ErrorIs(t, err, join.ErrMultiParent)
}

func TestCheckMultiParentPassesWithoutOverlap(t *testing.T) {
	reg := genome.NewRegistry()
	hgSeq, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 1000)
	require.NoError(t, err)
	mmSeq, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 1000)
	require.NoError(t, err)

	hg1, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 0, 10, "AAAAAAAAAA")
	require.NoError(t, err)
	mm1, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 0, 10, "CCCCCCCCCC")
	require.NoError(t, err)
	b1 := buildTreeBlock(t, `(mm:.1,hg:0);`, []*align.Component{hg1, mm1})

	hg2, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 100, 110, "GGGGGGGGGG")
	require.NoError(t, err)
	mm2, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 50, 60, "TTTTTTTTTT")
	require.NoError(t, err)
	b2 := buildTreeBlock(t, `(mm:.1,hg:0);`, []*align.Component{hg2, mm2})

	bs := blockset.NewBlockSet(reg, "s")
	bs.Add(b1)
	bs.Add(b2)

	assert.NoError(t, join.CheckMultiParent(bs))
}
