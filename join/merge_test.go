package join_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/genome"
	"github.com/dentearl/maftools-go/join"
)

func TestMergeComponentsSplicesContiguousPair(t *testing.T) {
	reg := genome.NewRegistry()
	hgSeq, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 1000)
	require.NoError(t, err)
	mmSeq, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 1000)
	require.NoError(t, err)

	hg, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 0, 20, "AAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	mmEarlier, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 0, 10, "CCCCCCCCCC")
	require.NoError(t, err)
	mmLater, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 10, 20, "----------GGGGGGGGGG")
	require.NoError(t, err)

	b := align.NewEmptyBlock()
	b.AddComponent(hg)
	b.AddComponent(mmEarlier)
	b.AddComponent(mmLater)
	tree := align.ConstructFromAlignment([]*align.Component{hg, mmEarlier, mmLater}, hg, 0.1)
	b.SetTree(tree)
	require.NoError(t, b.Finish())
	require.Len(t, b.Components, 3)

	require.NoError(t, join.MergeComponents(b))
	require.Len(t, b.Components, 2)

	merged := b.FindBySequence(mmSeq)
	require.NotNil(t, merged)
	assert.Equal(t, int64(0), merged.Start)
	assert.Equal(t, int64(20), merged.End)
	assert.Equal(t, "CCCCCCCCCCGGGGGGGGGG", merged.AlignedString())
}

func TestMergeComponentsNoOpWhenInterleaved(t *testing.T) {
	reg := genome.NewRegistry()
	hgSeq, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 1000)
	require.NoError(t, err)
	mmSeq, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 1000)
	require.NoError(t, err)

	hg, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 0, 20, "AAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	// mmA and mmB overlap in sequence coordinates (5-10): neither is
	// entirely before the other, so MergeComponents must leave both alone.
	mmA, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 0, 10, "CCCCCCCCCC----------")
	require.NoError(t, err)
	mmB, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 5, 15, "-----GGGGGGGGGG-----")
	require.NoError(t, err)

	b := align.NewEmptyBlock()
	b.AddComponent(hg)
	b.AddComponent(mmA)
	b.AddComponent(mmB)
	tree := align.ConstructFromAlignment([]*align.Component{hg, mmA, mmB}, hg, 0.1)
	b.SetTree(tree)
	require.NoError(t, b.Finish())

	require.NoError(t, join.MergeComponents(b))
	assert.Len(t, b.Components, 3)
}
