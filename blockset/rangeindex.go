// Package blockset provides BlockSet, a collection of align.Blocks backed
// by an id-keyed set and a lazily built genome-range index.
package blockset

import (
	"sync/atomic"

	"github.com/Workiva/go-datastructures/augmentedtree"

	"github.com/dentearl/maftools-go/align"
)

var intervalIDCounter uint64

// componentInterval adapts a Component's always-forward chromosome range
// to augmentedtree.Interval, directly modeled on the chain-file interval
// tree entries this package's range index is grounded on.
type componentInterval struct {
	id        uint64
	low, high int64
	comp      *align.Component
}

func newComponentInterval(low, high int64, comp *align.Component) *componentInterval {
	return &componentInterval{id: atomic.AddUint64(&intervalIDCounter, 1), low: low, high: high, comp: comp}
}

func (e *componentInterval) LowAtDimension(uint64) int64  { return e.low }
func (e *componentInterval) HighAtDimension(uint64) int64 { return e.high }
func (e *componentInterval) OverlapsAtDimension(augmentedtree.Interval, uint64) bool {
	return true
}
func (e *componentInterval) ID() uint64 { return e.id }

type queryInterval struct {
	low, high int64
}

func (q *queryInterval) LowAtDimension(uint64) int64  { return q.low }
func (q *queryInterval) HighAtDimension(uint64) int64 { return q.high }
func (q *queryInterval) OverlapsAtDimension(augmentedtree.Interval, uint64) bool {
	return true
}
func (q *queryInterval) ID() uint64 { return 0 }

// RangeIndex maps (org.seq, chrom_start, chrom_end) to the Components
// occupying that interval, one augmentedtree.Tree per org.seq.
type RangeIndex struct {
	trees       map[string]augmentedtree.Tree
	byComponent map[*align.Component]*componentInterval
}

// NewRangeIndex returns an empty RangeIndex.
func NewRangeIndex() *RangeIndex {
	return &RangeIndex{
		trees:       make(map[string]augmentedtree.Tree),
		byComponent: make(map[*align.Component]*componentInterval),
	}
}

// Add inserts c's chromosome interval into the tree for its Sequence.
func (ri *RangeIndex) Add(c *align.Component) {
	key := c.Seq.OrgSeq()
	tree, ok := ri.trees[key]
	if !ok {
		tree = augmentedtree.New(1)
		ri.trees[key] = tree
	}
	entry := newComponentInterval(c.ChromStart, c.ChromEnd, c)
	tree.Add(entry)
	ri.byComponent[c] = entry
}

// Remove clears c's entry from the index, if present.
func (ri *RangeIndex) Remove(c *align.Component) {
	entry, ok := ri.byComponent[c]
	if !ok {
		return
	}
	if tree, ok := ri.trees[c.Seq.OrgSeq()]; ok {
		tree.Delete(entry)
	}
	delete(ri.byComponent, c)
}

// Query returns the Components indexed under orgSeq whose chromosome
// interval overlaps [chromStart, chromEnd).
func (ri *RangeIndex) Query(orgSeq string, chromStart, chromEnd int64) []*align.Component {
	tree, ok := ri.trees[orgSeq]
	if !ok {
		return nil
	}
	hits := tree.Query(&queryInterval{low: chromStart, high: chromEnd})
	out := make([]*align.Component, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*componentInterval).comp)
	}
	return out
}
