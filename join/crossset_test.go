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

func TestCrossSetJoinFusesSharedGuideCoverage(t *testing.T) {
	reg := genome.NewRegistry()
	hgSeq, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 1000)
	require.NoError(t, err)
	mmSeq, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 1000)
	require.NoError(t, err)
	rnSeq, err := reg.ObtainSequenceForOrgSeq("rn.chr1", 1000)
	require.NoError(t, err)
	guideGenome := reg.ObtainGenome("hg")

	hgA, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 0, 10, "AAAAAAAAAA")
	require.NoError(t, err)
	mm, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 0, 10, "CCCCCCCCCC")
	require.NoError(t, err)
	blockA := buildTreeBlock(t, `(mm:.1,hg:0);`, []*align.Component{hgA, mm})

	hgB, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 0, 10, "AAAAAAAAAA")
	require.NoError(t, err)
	rn, err := align.NewComponentFromAlignment(rnSeq, align.Plus, 0, 10, "TTTTTTTTTT")
	require.NoError(t, err)
	blockB := buildTreeBlock(t, `(rn:.1,hg:0);`, []*align.Component{hgB, rn})

	setA := blockset.NewBlockSet(reg, "A")
	setA.Add(blockA)
	setB := blockset.NewBlockSet(reg, "B")
	setB.Add(blockB)

	joined, err := join.CrossSetJoin(reg, guideGenome, setA, setB, "joined")
	require.NoError(t, err)
	blocks := joined.Blocks()
	require.Len(t, blocks, 1)

	root := blocks[0].GetRootComponent()
	assert.Equal(t, hgSeq, root.Seq)
	assert.NotNil(t, blocks[0].FindBySequence(mmSeq))
	assert.NotNil(t, blocks[0].FindBySequence(rnSeq))
}

func TestCrossSetJoinPassesThroughUnmatchedBlocks(t *testing.T) {
	reg := genome.NewRegistry()
	hgSeq, err := reg.ObtainSequenceForOrgSeq("hg.chr1", 1000)
	require.NoError(t, err)
	mmSeq, err := reg.ObtainSequenceForOrgSeq("mm.chr1", 1000)
	require.NoError(t, err)
	guideGenome := reg.ObtainGenome("hg")

	hgA, err := align.NewComponentFromAlignment(hgSeq, align.Plus, 0, 10, "AAAAAAAAAA")
	require.NoError(t, err)
	blockA := align.NewEmptyBlock()
	blockA.AddComponent(hgA)
	treeA := align.ConstructFromAlignment([]*align.Component{hgA}, hgA, 0.1)
	blockA.SetTree(treeA)
	require.NoError(t, blockA.Finish())

	mmB, err := align.NewComponentFromAlignment(mmSeq, align.Plus, 100, 110, "GGGGGGGGGG")
	require.NoError(t, err)
	blockB := align.NewEmptyBlock()
	blockB.AddComponent(mmB)
	treeB := align.ConstructFromAlignment([]*align.Component{mmB}, mmB, 0.1)
	blockB.SetTree(treeB)
	require.NoError(t, blockB.Finish())

	setA := blockset.NewBlockSet(reg, "A")
	setA.Add(blockA)
	setB := blockset.NewBlockSet(reg, "B")
	setB.Add(blockB)

	joined, err := join.CrossSetJoin(reg, guideGenome, setA, setB, "joined")
	require.NoError(t, err)
	assert.Len(t, joined.Blocks(), 2)
}
