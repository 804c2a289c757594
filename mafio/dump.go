package mafio

import (
	"fmt"
	"io"

	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/blockset"
)

func componentLocation(c *align.Component) string {
	switch {
	case c.Node == nil:
		return "unbound"
	case c.Node.Parent == nil:
		return "root"
	case len(c.Node.Children) == 0:
		return "leaf"
	default:
		return "internal"
	}
}

// WriteDump renders bs in the join engine's human-readable dump format:
// one paragraph per Block, a "#<objId> width=<W> tree=<newick>" header
// followed by one "org.seq strand start-end chrom_start-chrom_end
// [aligned_bases] loc" line per Component. The format carries no
// stability guarantee and exists only to make join runs inspectable.
func WriteDump(w io.Writer, bs *blockset.BlockSet) error {
	for _, b := range bs.Blocks() {
		if b.Deleted {
			continue
		}
		treeStr := ""
		if b.Tree != nil {
			treeStr = b.Tree.ToNewick()
		}
		if _, err := fmt.Fprintf(w, "#%d width=%d tree=%s\n", b.ID(), b.AlnWidth, treeStr); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
		for _, c := range b.Components {
			if _, err := fmt.Fprintf(w, "%s %c %d-%d %d-%d [%s] %s\n",
				c.Seq.OrgSeq(), byte(c.Strand), c.Start, c.End, c.ChromStart, c.ChromEnd, c.AlignedString(), componentLocation(c)); err != nil {
				return fmt.Errorf("write dump: %w", err)
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
	}
	return nil
}
