package blockset

import (
	"sort"

	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/genome"
)

// TreeLocation is a bitset selecting Components by their position in
// their Block's tree.
type TreeLocation int

const (
	LocationRoot TreeLocation = 1 << iota
	LocationInternal
	LocationLeaf

	LocationAny = LocationRoot | LocationInternal | LocationLeaf
)

func treeLocation(c *align.Component) TreeLocation {
	node := c.Node
	if node == nil {
		return 0
	}
	if node.Parent == nil {
		return LocationRoot
	}
	if len(node.Children) == 0 {
		return LocationLeaf
	}
	return LocationInternal
}

// BlockSet is a collection of Blocks keyed by object id, with an optional
// source filename and a lazily built genome-range index over its
// Components.
type BlockSet struct {
	Registry *genome.Registry
	Source   string

	blocks          map[uint64]*align.Block
	order           []uint64
	pendingDeletion map[uint64]bool
	index           *RangeIndex
}

// NewBlockSet returns an empty BlockSet backed by reg.
func NewBlockSet(reg *genome.Registry, source string) *BlockSet {
	return &BlockSet{
		Registry:        reg,
		Source:          source,
		blocks:          make(map[uint64]*align.Block),
		pendingDeletion: make(map[uint64]bool),
	}
}

// Add inserts b into the set, and into the range index if it has already
// been built.
func (bs *BlockSet) Add(b *align.Block) {
	if _, exists := bs.blocks[b.ID()]; !exists {
		bs.order = append(bs.order, b.ID())
	}
	bs.blocks[b.ID()] = b
	if bs.index != nil {
		for _, c := range b.Components {
			bs.index.Add(c)
		}
	}
}

func (bs *BlockSet) ensureIndex() *RangeIndex {
	if bs.index == nil {
		bs.index = NewRangeIndex()
		for _, id := range bs.order {
			if bs.pendingDeletion[id] {
				continue
			}
			b, ok := bs.blocks[id]
			if !ok {
				continue
			}
			for _, c := range b.Components {
				bs.index.Add(c)
			}
		}
	}
	return bs.index
}

// Remove physically removes b from the set and the range index.
func (bs *BlockSet) Remove(b *align.Block) {
	delete(bs.blocks, b.ID())
	delete(bs.pendingDeletion, b.ID())
	if bs.index != nil {
		for _, c := range b.Components {
			bs.index.Remove(c)
		}
	}
}

// MarkForDeletion flags b as deleted without removing it from the set.
// Idempotent.
func (bs *BlockSet) MarkForDeletion(b *align.Block) {
	if bs.pendingDeletion[b.ID()] {
		return
	}
	bs.pendingDeletion[b.ID()] = true
	b.Deleted = true
}

// SweepDeleted physically removes every Block marked for deletion,
// releasing its Components from the range index and its own storage.
func (bs *BlockSet) SweepDeleted() {
	if len(bs.pendingDeletion) == 0 {
		return
	}
	for id := range bs.pendingDeletion {
		b, ok := bs.blocks[id]
		if !ok {
			continue
		}
		if bs.index != nil {
			for _, c := range b.Components {
				bs.index.Remove(c)
			}
		}
		b.MarkDeleted()
		delete(bs.blocks, id)
	}
	bs.pendingDeletion = make(map[uint64]bool)

	newOrder := bs.order[:0]
	for _, id := range bs.order {
		if _, ok := bs.blocks[id]; ok {
			newOrder = append(newOrder, id)
		}
	}
	bs.order = newOrder
}

// Blocks returns the set's non-removed Blocks in insertion order.
func (bs *BlockSet) Blocks() []*align.Block {
	out := make([]*align.Block, 0, len(bs.blocks))
	for _, id := range bs.order {
		if b, ok := bs.blocks[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of Blocks currently in the set.
func (bs *BlockSet) Len() int { return len(bs.blocks) }

func (bs *BlockSet) filterSort(hits []*align.Component, locations TreeLocation) []*align.Component {
	out := make([]*align.Component, 0, len(hits))
	for _, c := range hits {
		if c.Block == nil || c.Block.Deleted {
			continue
		}
		if locations != 0 && treeLocation(c)&locations == 0 {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := out[i].Block, out[j].Block
		if bi.AlnWidth != bj.AlnWidth {
			return bi.AlnWidth < bj.AlnWidth
		}
		return out[i].Node.Order() < out[j].Node.Order()
	})
	return out
}

// GetOverlapping returns every non-deleted Component on seq overlapping
// [chromStart, chromEnd) whose tree location is in locations (0 means
// any), sorted by (block aln_width ascending, component order).
func (bs *BlockSet) GetOverlapping(seq *genome.Sequence, chromStart, chromEnd int64, locations TreeLocation) []*align.Component {
	idx := bs.ensureIndex()
	return bs.filterSort(idx.Query(seq.OrgSeq(), chromStart, chromEnd), locations)
}

// GetOverlappingAdjacent is GetOverlapping with the query interval widened
// by one base on each side, to also catch immediately adjacent rows.
func (bs *BlockSet) GetOverlappingAdjacent(seq *genome.Sequence, chromStart, chromEnd int64, locations TreeLocation) []*align.Component {
	idx := bs.ensureIndex()
	return bs.filterSort(idx.Query(seq.OrgSeq(), chromStart-1, chromEnd+1), locations)
}
