// Package align implements the in-memory alignment model: components
// (rows), their segment-run storage and cursors, block trees, and blocks.
package align

import (
	"errors"
	"fmt"

	"github.com/dentearl/maftools-go/genome"
)

// Strand is the orientation of a Component relative to its Sequence.
type Strand byte

const (
	Plus  Strand = '+'
	Minus Strand = '-'
)

func (s Strand) String() string { return string(s) }

// Opposite returns the other strand.
func (s Strand) Opposite() Strand {
	if s == Plus {
		return Minus
	}
	return Plus
}

// ErrMalformedRow is returned when an alignment string's base count does
// not match the expected ungapped length of a row.
var ErrMalformedRow = errors.New("malformed alignment row")

// ErrIncompatibleComponent is returned when two components that must
// share a Sequence, strand, or contiguous coordinate range do not.
var ErrIncompatibleComponent = errors.New("incompatible component")

const gapByte = '-'

func isBaseByte(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

// Segment is a maximal run of aligned bases within a Component: Length
// consecutive bases starting at SeqStart in the sequence and at AlnStart
// in the block's alignment columns.
type Segment struct {
	SeqStart int64
	AlnStart int64
	Length   int64
	Bases    string
}

// Component is one aligned row within a Block.
type Component struct {
	Seq    *genome.Sequence
	Strand Strand

	// Start, End are the strand-specific half-open ungapped range: the
	// coordinates as they appear in the MAF row itself.
	Start, End int64

	// ChromStart, ChromEnd are the always-forward-strand half-open range.
	ChromStart, ChromEnd int64

	// Segments are ordered by AlnStart, non-overlapping, and contiguous
	// in SeqStart.
	Segments []Segment

	// AlnWidth is the number of alignment columns this row spans.
	AlnWidth int64

	// Block and Node are back-references maintained by their owners; a
	// freestanding Component (not yet added to a Block) has both nil.
	Block *Block
	Node  *TreeNode
}

// reflectRange converts a half-open range between the strand-specific
// frame and the always-forward chromosome frame, and back again: the
// transform is its own inverse.
func reflectRange(seq *genome.Sequence, strand Strand, a, b int64) (int64, int64) {
	if strand == Plus {
		return a, b
	}
	return seq.Size - b, seq.Size - a
}

// NewEmptyComponent returns a Component with no aligned bases yet, ready
// to be grown with AppendColumn.
func NewEmptyComponent(seq *genome.Sequence, strand Strand, pos int64) *Component {
	c := &Component{Seq: seq, Strand: strand, Start: pos, End: pos}
	c.ChromStart, c.ChromEnd = reflectRange(seq, strand, pos, pos)
	return c
}

// NewComponentFromAlignment builds a Component from an alignment string:
// maximal runs of base characters become Segments, and runs of any other
// character are implicit gaps. The number of bases found must equal
// seqEnd-seqStart, or ErrMalformedRow is returned.
func NewComponentFromAlignment(seq *genome.Sequence, strand Strand, seqStart, seqEnd int64, alnText string) (*Component, error) {
	var segments []Segment
	seqPos := seqStart
	for i := 0; i < len(alnText); i++ {
		ch := alnText[i]
		if !isBaseByte(ch) {
			continue
		}
		if n := len(segments); n > 0 {
			last := &segments[n-1]
			if last.SeqStart+last.Length == seqPos && last.AlnStart+last.Length == int64(i) {
				last.Length++
				last.Bases += string(ch)
				seqPos++
				continue
			}
		}
		segments = append(segments, Segment{SeqStart: seqPos, AlnStart: int64(i), Length: 1, Bases: string(ch)})
		seqPos++
	}
	if seqPos != seqEnd {
		return nil, fmt.Errorf("row for %s: %w: found %d bases, expected %d", seq.OrgSeq(), ErrMalformedRow, seqPos-seqStart, seqEnd-seqStart)
	}
	c := &Component{
		Seq:      seq,
		Strand:   strand,
		Start:    seqStart,
		End:      seqEnd,
		Segments: segments,
		AlnWidth: int64(len(alnText)),
	}
	c.ChromStart, c.ChromEnd = reflectRange(seq, strand, seqStart, seqEnd)
	return c, nil
}

// AlignedString reconstructs the full alignment-width row: aligned bases
// from Segments, '-' in every other column.
func (c *Component) AlignedString() string {
	buf := make([]byte, c.AlnWidth)
	for i := range buf {
		buf[i] = gapByte
	}
	for _, seg := range c.Segments {
		copy(buf[seg.AlnStart:seg.AlnStart+seg.Length], seg.Bases)
	}
	return string(buf)
}

// AnyAligned reports whether the Component has at least one aligned base.
func (c *Component) AnyAligned() bool {
	return len(c.Segments) > 0
}

// AppendColumn extends a growing Component by one alignment column. ch is
// treated as a gap unless it is a letter.
func (c *Component) AppendColumn(ch byte) {
	if !isBaseByte(ch) {
		c.AlnWidth++
		return
	}
	if n := len(c.Segments); n > 0 {
		last := &c.Segments[n-1]
		if last.SeqStart+last.Length == c.End && last.AlnStart+last.Length == c.AlnWidth {
			last.Length++
			last.Bases += string(ch)
			c.bumpEnd()
			c.AlnWidth++
			return
		}
	}
	c.Segments = append(c.Segments, Segment{SeqStart: c.End, AlnStart: c.AlnWidth, Length: 1, Bases: string(ch)})
	c.bumpEnd()
	c.AlnWidth++
}

// AppendGapColumn extends the Component by one unaligned (gap) column.
func (c *Component) AppendGapColumn() {
	c.AppendColumn(gapByte)
}

func (c *Component) bumpEnd() {
	c.End++
	if c.Strand == Plus {
		c.ChromEnd++
	} else {
		c.ChromStart--
	}
}

// AppendFromCursor copies the aligned bases and implicit gaps from src,
// starting just after src's current column, up to but not including
// alnEnd. src must refer to the same Sequence and strand, and the
// sequence position of src's next base must equal c.End.
func (c *Component) AppendFromCursor(src *Cursor, alnEnd int64) error {
	if src.comp.Seq != c.Seq || src.comp.Strand != c.Strand {
		return fmt.Errorf("append_from_cursor: %w: sequence/strand mismatch", ErrIncompatibleComponent)
	}
	if src.NextBasePos() != c.End {
		return fmt.Errorf("append_from_cursor: %w: source next base at %d, want %d", ErrIncompatibleComponent, src.NextBasePos(), c.End)
	}
	for src.alnIdx+1 < alnEnd {
		src.Advance()
		if src.IsAligned() {
			c.AppendColumn(src.Base())
		} else {
			c.AppendColumn(gapByte)
		}
	}
	return nil
}

var complementTable = map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'U': 'A',
	'R': 'Y', 'Y': 'R', 'S': 'S', 'W': 'W', 'K': 'M', 'M': 'K',
	'B': 'V', 'V': 'B', 'D': 'H', 'H': 'D', 'N': 'N',
	'a': 't', 't': 'a', 'c': 'g', 'g': 'c', 'u': 'a',
	'r': 'y', 'y': 'r', 's': 's', 'w': 'w', 'k': 'm', 'm': 'k',
	'b': 'v', 'v': 'b', 'd': 'h', 'h': 'd', 'n': 'n',
}

func complement(ch byte) byte {
	if c, ok := complementTable[ch]; ok {
		return c
	}
	return ch
}

func reverseComplementBases(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[len(s)-1-i] = complement(s[i])
	}
	return string(out)
}

// ReverseComplement returns a new Component on the opposite strand with
// reflected segment coordinates and complemented bases.
func (c *Component) ReverseComplement() *Component {
	newStrand := c.Strand.Opposite()
	n := len(c.Segments)
	newSegs := make([]Segment, n)
	for i, seg := range c.Segments {
		newAlnStart := c.AlnWidth - (seg.AlnStart + seg.Length)
		newSeqStart := c.Seq.Size - (seg.SeqStart + seg.Length)
		newSegs[n-1-i] = Segment{
			SeqStart: newSeqStart,
			AlnStart: newAlnStart,
			Length:   seg.Length,
			Bases:    reverseComplementBases(seg.Bases),
		}
	}
	nc := &Component{
		Seq:      c.Seq,
		Strand:   newStrand,
		Segments: newSegs,
		AlnWidth: c.AlnWidth,
	}
	nc.ChromStart, nc.ChromEnd = c.ChromStart, c.ChromEnd
	nc.Start, nc.End = reflectRange(c.Seq, newStrand, c.ChromStart, c.ChromEnd)
	return nc
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Subrange returns a new Component covering the intersection of c with
// [alnStart, alnEnd), or nil if no base of c falls in that range.
func (c *Component) Subrange(alnStart, alnEnd int64) *Component {
	alnStart = max64(alnStart, 0)
	alnEnd = min64(alnEnd, c.AlnWidth)
	if alnStart >= alnEnd {
		return nil
	}
	var segs []Segment
	for _, seg := range c.Segments {
		segEnd := seg.AlnStart + seg.Length
		lo := max64(seg.AlnStart, alnStart)
		hi := min64(segEnd, alnEnd)
		if lo >= hi {
			continue
		}
		offset := lo - seg.AlnStart
		segs = append(segs, Segment{
			SeqStart: seg.SeqStart + offset,
			AlnStart: lo - alnStart,
			Length:   hi - lo,
			Bases:    seg.Bases[offset : offset+(hi-lo)],
		})
	}
	if len(segs) == 0 {
		return nil
	}
	newStart := segs[0].SeqStart
	last := segs[len(segs)-1]
	newEnd := last.SeqStart + last.Length
	nc := &Component{
		Seq:      c.Seq,
		Strand:   c.Strand,
		Start:    newStart,
		End:      newEnd,
		Segments: segs,
		AlnWidth: alnEnd - alnStart,
	}
	nc.ChromStart, nc.ChromEnd = reflectRange(c.Seq, c.Strand, newStart, newEnd)
	return nc
}

// AlnRangeToSeqRange returns the ungapped sequence range ([lo, hi)) spanned
// by the aligned bases within [alnStart, alnEnd), and false if none exist.
func (c *Component) AlnRangeToSeqRange(alnStart, alnEnd int64) (int64, int64, bool) {
	var lo, hi int64
	found := false
	for _, seg := range c.Segments {
		segEnd := seg.AlnStart + seg.Length
		a := max64(seg.AlnStart, alnStart)
		b := min64(segEnd, alnEnd)
		if a >= b {
			continue
		}
		segLo := seg.SeqStart + (a - seg.AlnStart)
		segHi := seg.SeqStart + (b - seg.AlnStart)
		if !found {
			lo = segLo
			found = true
		}
		hi = segHi
	}
	return lo, hi, found
}

// SeqRangeToAlnRange returns the alignment column range ([lo, hi)) spanned
// by the bases in [seqStart, seqEnd), and false if none exist.
func (c *Component) SeqRangeToAlnRange(seqStart, seqEnd int64) (int64, int64, bool) {
	if seqStart >= seqEnd || seqStart < c.Start || seqEnd > c.End {
		return 0, 0, false
	}
	var lo, hi int64
	found := false
	for _, seg := range c.Segments {
		segSeqEnd := seg.SeqStart + seg.Length
		a := max64(seg.SeqStart, seqStart)
		b := min64(segSeqEnd, seqEnd)
		if a >= b {
			continue
		}
		aLo := seg.AlnStart + (a - seg.SeqStart)
		aHi := seg.AlnStart + (b - seg.SeqStart)
		if !found {
			lo = aLo
			found = true
		}
		hi = aHi
	}
	return lo, hi, found
}

// SeqChromRangeToAlnRange converts an always-forward chromosome range to
// this Component's strand-specific frame and delegates to
// SeqRangeToAlnRange.
func (c *Component) SeqChromRangeToAlnRange(chromStart, chromEnd int64) (int64, int64, bool) {
	start, end := reflectRange(c.Seq, c.Strand, chromStart, chromEnd)
	if start > end {
		start, end = end, start
	}
	return c.SeqRangeToAlnRange(start, end)
}

// Cursor walks a Component column by column, tracking the segment that
// contains (or immediately follows) the current position.
type Cursor struct {
	comp   *Component
	alnIdx int64
	segIdx int
}

// NewCursor returns a Cursor positioned before the first column of c.
func NewCursor(c *Component) *Cursor {
	return &Cursor{comp: c, alnIdx: -1, segIdx: 0}
}

// Component returns the Cursor's underlying Component.
func (cur *Cursor) Component() *Component { return cur.comp }

// AlnIdx returns the current column, or -1 before the first Advance.
func (cur *Cursor) AlnIdx() int64 { return cur.alnIdx }

func (cur *Cursor) segAt(alnIdx int64) (Segment, bool) {
	if cur.segIdx < len(cur.comp.Segments) {
		seg := cur.comp.Segments[cur.segIdx]
		if alnIdx >= seg.AlnStart && alnIdx < seg.AlnStart+seg.Length {
			return seg, true
		}
	}
	return Segment{}, false
}

func (cur *Cursor) advanceSegIdxTo(alnIdx int64) {
	for cur.segIdx < len(cur.comp.Segments) {
		seg := cur.comp.Segments[cur.segIdx]
		if alnIdx < seg.AlnStart+seg.Length {
			break
		}
		cur.segIdx++
	}
}

// IsAligned reports whether the current column holds a base.
func (cur *Cursor) IsAligned() bool {
	if cur.alnIdx < 0 {
		return false
	}
	_, ok := cur.segAt(cur.alnIdx)
	return ok
}

// Base returns the base at the current column. Only valid when IsAligned.
func (cur *Cursor) Base() byte {
	seg, _ := cur.segAt(cur.alnIdx)
	return seg.Bases[cur.alnIdx-seg.AlnStart]
}

// SeqPos returns the sequence position of the current column if aligned,
// or the position the next base will occupy otherwise.
func (cur *Cursor) SeqPos() int64 {
	if seg, ok := cur.segAt(cur.alnIdx); ok {
		return seg.SeqStart + (cur.alnIdx - seg.AlnStart)
	}
	return cur.NextBasePos()
}

// NextBasePos returns the sequence position that the next aligned base
// encountered by this Cursor will occupy, or Component.End if none remain.
func (cur *Cursor) NextBasePos() int64 {
	for i := cur.segIdx; i < len(cur.comp.Segments); i++ {
		seg := cur.comp.Segments[i]
		if cur.alnIdx < seg.AlnStart+seg.Length {
			if cur.alnIdx < seg.AlnStart {
				return seg.SeqStart
			}
			return seg.SeqStart + (cur.alnIdx - seg.AlnStart) + 1
		}
	}
	return cur.comp.End
}

// Advance moves the Cursor forward by one column. It reports false (and
// leaves the Cursor at end-of-row) once past the last column.
func (cur *Cursor) Advance() bool {
	if cur.alnIdx+1 >= cur.comp.AlnWidth {
		cur.alnIdx = cur.comp.AlnWidth
		return false
	}
	cur.alnIdx++
	cur.advanceSegIdxTo(cur.alnIdx)
	return true
}

// AdvanceToAligned moves forward to the next aligned column, or to
// end-of-row (reporting false) if none remains.
func (cur *Cursor) AdvanceToAligned() bool {
	for cur.alnIdx+1 < cur.comp.AlnWidth {
		cur.alnIdx++
		cur.advanceSegIdxTo(cur.alnIdx)
		if cur.IsAligned() {
			return true
		}
	}
	cur.alnIdx = cur.comp.AlnWidth
	return false
}

// SetAlignCol seeks the Cursor to alignment column alnIdx. Seeking
// backward restarts the Cursor's segment scan; seeking forward is O(the
// number of segments skipped).
func (cur *Cursor) SetAlignCol(alnIdx int64) error {
	if alnIdx < -1 || alnIdx > cur.comp.AlnWidth {
		return fmt.Errorf("set_align_col: column %d out of range [-1, %d]", alnIdx, cur.comp.AlnWidth)
	}
	if alnIdx < cur.alnIdx {
		cur.segIdx = 0
	}
	cur.alnIdx = alnIdx
	if alnIdx >= 0 {
		cur.advanceSegIdxTo(alnIdx)
	}
	return nil
}

// SetSeqPos seeks the Cursor to the column holding sequence position
// seqPos, which must lie in [Component.Start, Component.End]. Because
// segments are contiguous in sequence coordinates, every position in that
// range maps to exactly one column (or, at seqPos == End, to end-of-row).
func (cur *Cursor) SetSeqPos(seqPos int64) error {
	if seqPos < cur.comp.Start || seqPos > cur.comp.End {
		return fmt.Errorf("set_seq_pos: position %d out of range [%d, %d]", seqPos, cur.comp.Start, cur.comp.End)
	}
	if seqPos < cur.SeqPos() {
		cur.segIdx = 0
	}
	for cur.segIdx < len(cur.comp.Segments) {
		seg := cur.comp.Segments[cur.segIdx]
		if seqPos < seg.SeqStart+seg.Length {
			break
		}
		cur.segIdx++
	}
	if cur.segIdx < len(cur.comp.Segments) {
		seg := cur.comp.Segments[cur.segIdx]
		if seqPos >= seg.SeqStart {
			cur.alnIdx = seg.AlnStart + (seqPos - seg.SeqStart)
			return nil
		}
	}
	cur.alnIdx = cur.comp.AlnWidth
	return nil
}
