package align

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/dentearl/maftools-go/genome"
)

// Errors returned by Block validation.
var (
	ErrBlockWidthMismatch = errors.New("component width does not match block width")
	ErrRootOverlap        = errors.New("root component overlaps another component on the same sequence")
)

var blockIDCounter uint64

// Block is a multiple alignment: an ordered list of Components sharing a
// common alignment width, plus the BlockTree that links them.
type Block struct {
	id         uint64
	Components []*Component
	Tree       *BlockTree
	AlnWidth   int64
	Deleted    bool
}

// NewEmptyBlock returns a Block with no Components and aln_width 0. Every
// Block is assigned a unique, monotonically increasing id so that
// ordering never depends on pointer identity.
func NewEmptyBlock() *Block {
	return &Block{id: atomic.AddUint64(&blockIDCounter, 1)}
}

// ID returns the Block's unique object id.
func (b *Block) ID() uint64 { return b.id }

// AddComponent appends c to the Block, binds c.Block, and widens the
// Block's aln_width to fit c.
func (b *Block) AddComponent(c *Component) {
	b.Components = append(b.Components, c)
	c.Block = b
	if c.AlnWidth > b.AlnWidth {
		b.AlnWidth = c.AlnWidth
	}
}

// SetTree attaches tree once every Component has been added.
func (b *Block) SetTree(tree *BlockTree) {
	b.Tree = tree
}

// Finish sorts Components into tree order, pads every row with trailing
// gaps to aln_width, and validates the result.
func (b *Block) Finish() error {
	if b.Tree != nil {
		order := make(map[*Component]int, len(b.Components))
		for _, c := range b.Tree.PostOrderComponents() {
			order[c] = len(order)
		}
		sort.SliceStable(b.Components, func(i, j int) bool {
			return order[b.Components[i]] < order[b.Components[j]]
		})
	}
	for _, c := range b.Components {
		for c.AlnWidth < b.AlnWidth {
			c.AppendColumn(gapByte)
		}
	}
	return b.Validate()
}

// Validate checks that every Component's width equals the Block's
// aln_width, and that the root Component does not overlap any other
// Component sharing its Sequence.
func (b *Block) Validate() error {
	for _, c := range b.Components {
		if c.AlnWidth != b.AlnWidth {
			return fmt.Errorf("%w: %s has width %d, block width %d", ErrBlockWidthMismatch, c.Seq.OrgSeq(), c.AlnWidth, b.AlnWidth)
		}
	}
	root := b.GetRootComponent()
	if root == nil {
		return nil
	}
	for _, c := range b.Components {
		if c == root || c.Seq != root.Seq {
			continue
		}
		if c.ChromStart < root.ChromEnd && root.ChromStart < c.ChromEnd {
			return fmt.Errorf("%w: %s overlaps %s", ErrRootOverlap, root.Seq.OrgSeq(), c.Seq.OrgSeq())
		}
	}
	return nil
}

// GetRootComponent returns the last Component in tree order, the Block's
// distinguished root, or nil for an empty Block.
func (b *Block) GetRootComponent() *Component {
	if len(b.Components) == 0 {
		return nil
	}
	return b.Components[len(b.Components)-1]
}

// ReverseComplement returns a new Block with every Component reverse
// complemented and the tree cloned onto the new Components.
func (b *Block) ReverseComplement() *Block {
	nb := NewEmptyBlock()
	mapping := make(map[*Component]*Component, len(b.Components))
	for _, c := range b.Components {
		nc := c.ReverseComplement()
		mapping[c] = nc
		nb.AddComponent(nc)
	}
	if b.Tree != nil {
		if nt, err := b.Tree.SubrangeClone(mapping); err == nil {
			nb.Tree = nt
		}
	}
	return nb
}

// Subrange returns a new Block covering [alnStart, alnEnd): Components
// with zero aligned bases in that range are omitted and their tree nodes
// pruned.
func (b *Block) Subrange(alnStart, alnEnd int64) (*Block, error) {
	nb := NewEmptyBlock()
	mapping := make(map[*Component]*Component)
	for _, c := range b.Components {
		if nc := c.Subrange(alnStart, alnEnd); nc != nil {
			mapping[c] = nc
			nb.AddComponent(nc)
		}
	}
	if b.Tree != nil && len(mapping) > 0 {
		nt, err := b.Tree.SubrangeClone(mapping)
		if err != nil {
			return nil, err
		}
		nb.Tree = nt
		order := make(map[*Component]int, len(mapping))
		for _, c := range nt.PostOrderComponents() {
			order[c] = len(order)
		}
		sort.SliceStable(nb.Components, func(i, j int) bool {
			return order[nb.Components[i]] < order[nb.Components[j]]
		})
	}
	return nb, nil
}

// FindBySequenceStart linearly scans for the Component on seq whose
// strand-specific range begins at start.
func (b *Block) FindBySequenceStart(seq *genome.Sequence, start int64) *Component {
	for _, c := range b.Components {
		if c.Seq == seq && c.Start == start {
			return c
		}
	}
	return nil
}

// FindBySequence linearly scans for the first Component referencing seq.
func (b *Block) FindBySequence(seq *genome.Sequence) *Component {
	for _, c := range b.Components {
		if c.Seq == seq {
			return c
		}
	}
	return nil
}

// FindByChromRange linearly scans for Components on seq overlapping the
// always-forward range [chromStart, chromEnd).
func (b *Block) FindByChromRange(seq *genome.Sequence, chromStart, chromEnd int64) []*Component {
	var out []*Component
	for _, c := range b.Components {
		if c.Seq == seq && c.ChromStart < chromEnd && chromStart < c.ChromEnd {
			out = append(out, c)
		}
	}
	return out
}

// MarkDeleted flags the Block as deleted and releases its Components and
// tree; the Block retains its id for deferred reclamation in a BlockSet.
func (b *Block) MarkDeleted() {
	b.Deleted = true
	b.Components = nil
	b.Tree = nil
}
