package mafio

import (
	"fmt"
	"io"

	"github.com/dentearl/maftools-go/align"
)

// WriteOptions controls the MAF header emitted by Write.
type WriteOptions struct {
	Scoring string // written as the header's scoring= attribute, if non-empty
}

// Write renders blocks as a MAF file: a "##maf" header followed by one
// "a"/"s..." paragraph per Block, separated by blank lines.
func Write(w io.Writer, blocks []*align.Block, opts WriteOptions) error {
	if opts.Scoring != "" {
		if _, err := fmt.Fprintf(w, "##maf version=1 scoring=%s\n", opts.Scoring); err != nil {
			return fmt.Errorf("write maf header: %w", err)
		}
	} else {
		if _, err := fmt.Fprintln(w, "##maf version=1"); err != nil {
			return fmt.Errorf("write maf header: %w", err)
		}
	}

	for _, b := range blocks {
		if b.Deleted {
			continue
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write maf block: %w", err)
		}
		treeStr := ""
		if b.Tree != nil {
			treeStr = b.Tree.ToNewick()
		}
		if _, err := fmt.Fprintf(w, "a tree=%q\n", treeStr); err != nil {
			return fmt.Errorf("write maf block: %w", err)
		}
		for _, c := range b.Components {
			if _, err := fmt.Fprintf(w, "s %s %d %d %c %d %s\n",
				c.Seq.OrgSeq(), c.Start, c.End-c.Start, byte(c.Strand), c.Seq.Size, c.AlignedString()); err != nil {
				return fmt.Errorf("write maf row: %w", err)
			}
		}
	}
	return nil
}
