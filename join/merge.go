package join

import "github.com/dentearl/maftools-go/align"

func lastSegmentEnd(c *align.Component) (seqEnd, alnEnd int64, ok bool) {
	if len(c.Segments) == 0 {
		return 0, 0, false
	}
	s := c.Segments[len(c.Segments)-1]
	return s.SeqStart + s.Length, s.AlnStart + s.Length, true
}

func firstSegmentStart(c *align.Component) (seqStart, alnStart int64, ok bool) {
	if len(c.Segments) == 0 {
		return 0, 0, false
	}
	s := c.Segments[0]
	return s.SeqStart, s.AlnStart, true
}

// spliceLaterInto appends later's segments onto earlier and extends
// earlier's sequence and chromosome bounds to cover later.
func spliceLaterInto(earlier, later *align.Component) {
	earlier.Segments = append(earlier.Segments, later.Segments...)
	earlier.End = later.End
	if earlier.Strand == align.Plus {
		earlier.ChromEnd = later.ChromEnd
	} else {
		earlier.ChromStart = later.ChromStart
	}
}

func removeComponent(b *align.Block, c *align.Component) error {
	if b.Tree != nil && c.Node != nil {
		if err := b.Tree.PruneNode(c.Node); err != nil {
			return err
		}
	}
	for i, x := range b.Components {
		if x == c {
			b.Components = append(b.Components[:i], b.Components[i+1:]...)
			break
		}
	}
	return nil
}

// MergeComponents splices together any pair of Components in b sharing a
// Sequence and strand whose coverage is contiguous and non-interleaved,
// dropping the later Component and its tree node. It repeats until no
// further pair qualifies. It never reorders columns or changes b's
// aln_width.
func MergeComponents(b *align.Block) error {
	for {
		merged := false
		for i, earlier := range b.Components {
			for j, later := range b.Components {
				if i == j || earlier.Seq != later.Seq || earlier.Strand != later.Strand {
					continue
				}
				seqEnd, alnEnd, ok1 := lastSegmentEnd(earlier)
				seqStart, alnStart, ok2 := firstSegmentStart(later)
				if !ok1 || !ok2 {
					continue
				}
				if seqEnd <= seqStart && alnEnd <= alnStart {
					spliceLaterInto(earlier, later)
					if err := removeComponent(b, later); err != nil {
						return err
					}
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
		if !merged {
			return nil
		}
	}
}
