// Package mafio reads and writes the MAF (Multiple Alignment Format) text
// format and the join engine's human-readable block-set dump format.
package mafio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/genome"
)

// ErrMalformedMaf is returned when a line cannot be parsed as a MAF
// header, block, or row.
var ErrMalformedMaf = errors.New("malformed maf line")

// ErrMissingTree is returned when a block has no "tree=" attribute and no
// treeless root genome was configured to infer one.
var ErrMissingTree = errors.New("block has no tree and no treeless root genome configured")

var treeAttrRegexp = regexp.MustCompile(`tree="([^"]*)"`)

// ReadOptions controls how Read handles blocks without a "tree=" attribute.
type ReadOptions struct {
	// TreelessRootGenome, if non-empty, is the genome treated as the tree
	// root for any block in this input that arrives without a tree.
	TreelessRootGenome string
	// DefaultBranchLength is used for every edge of an inferred tree.
	DefaultBranchLength float64
}

// Read parses every block of a MAF stream, interning Genomes and
// Sequences into reg. Rows other than "s" are parsed enough to be
// recognized and are otherwise ignored.
func Read(r io.Reader, reg *genome.Registry, opts ReadOptions) ([]*align.Block, error) {
	br := bufio.NewReader(r)

	var blocks []*align.Block
	var curComps []*align.Component
	var curTree string
	inBlock := false

	flush := func() error {
		if !inBlock {
			return nil
		}
		b, err := buildBlock(curComps, curTree, opts)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
		curComps = nil
		curTree = ""
		inBlock = false
		return nil
	}

	for {
		line, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMaf, err)
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			if err := flush(); err != nil {
				return nil, err
			}
		case strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "a"):
			if err := flush(); err != nil {
				return nil, err
			}
			inBlock = true
			if m := treeAttrRegexp.FindStringSubmatch(trimmed); m != nil {
				curTree = m[1]
			}
		case strings.HasPrefix(trimmed, "s"):
			if !inBlock {
				return nil, fmt.Errorf("%w: row outside block", ErrMalformedMaf)
			}
			c, err := parseRow(trimmed, reg)
			if err != nil {
				return nil, err
			}
			curComps = append(curComps, c)
		case strings.HasPrefix(trimmed, "i"), strings.HasPrefix(trimmed, "e"), strings.HasPrefix(trimmed, "q"):
			continue
		default:
			return nil, fmt.Errorf("%w: unrecognized line %q", ErrMalformedMaf, trimmed)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// readLine returns one logical line, transparently joining continuations
// that bufio.Reader.ReadLine splits because they exceed its buffer.
func readLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		sb.Write(chunk)
		if !isPrefix {
			return sb.String(), nil
		}
	}
}

func parseRow(line string, reg *genome.Registry) (*align.Component, error) {
	fields := strings.Fields(line)
	if len(fields) != 7 {
		return nil, fmt.Errorf("%w: row %q: expected 7 fields, got %d", ErrMalformedMaf, line, len(fields))
	}
	name, startStr, sizeStr, strandStr, srcSizeStr, seqText := fields[1], fields[2], fields[3], fields[4], fields[5], fields[6]

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: row %q: bad start: %v", ErrMalformedMaf, line, err)
	}
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: row %q: bad size: %v", ErrMalformedMaf, line, err)
	}
	srcSize, err := strconv.ParseInt(srcSizeStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: row %q: bad srcSize: %v", ErrMalformedMaf, line, err)
	}
	if strandStr != "+" && strandStr != "-" {
		return nil, fmt.Errorf("%w: row %q: bad strand %q", ErrMalformedMaf, line, strandStr)
	}

	seq, err := reg.ObtainSequenceForOrgSeq(name, srcSize)
	if err != nil {
		return nil, fmt.Errorf("row %q: %w", line, err)
	}
	comp, err := align.NewComponentFromAlignment(seq, align.Strand(strandStr[0]), start, start+size, seqText)
	if err != nil {
		return nil, fmt.Errorf("row %q: %w", line, err)
	}
	return comp, nil
}

func buildBlock(comps []*align.Component, treeStr string, opts ReadOptions) (*align.Block, error) {
	b := align.NewEmptyBlock()
	for _, c := range comps {
		b.AddComponent(c)
	}
	var tree *align.BlockTree
	var err error
	switch {
	case treeStr != "":
		tree, err = align.ConstructFromNewick(treeStr, comps)
		if err != nil {
			return nil, err
		}
	case opts.TreelessRootGenome != "":
		var root *align.Component
		for _, c := range comps {
			if c.Seq.Genome.Name == opts.TreelessRootGenome {
				root = c
				break
			}
		}
		if root == nil {
			return nil, fmt.Errorf("%w: genome %s not found in treeless block", ErrMissingTree, opts.TreelessRootGenome)
		}
		tree = align.ConstructFromAlignment(comps, root, opts.DefaultBranchLength)
	default:
		return nil, ErrMissingTree
	}
	b.SetTree(tree)
	if err := b.Finish(); err != nil {
		return nil, err
	}
	return b, nil
}
