package mafjoin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/blockset"
	"github.com/dentearl/maftools-go/join"
	"github.com/dentearl/maftools-go/mafio"
)

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// splitWideBlocks splits every Block wider than maxWidth columns into
// adjacent pieces of at most maxWidth columns via repeated Block.Subrange.
// A piece left with no aligned base of the original root Component is
// folded into its predecessor (or, for leading pieces, into the first
// following piece that has one) instead of being emitted on its own, so
// that splitting never produces a block lacking guide coverage. maxWidth
// <= 0 disables splitting.
func splitWideBlocks(blocks []*align.Block, maxWidth int64) ([]*align.Block, error) {
	if maxWidth <= 0 {
		return blocks, nil
	}
	type span struct{ start, end int64 }

	var out []*align.Block
	for _, b := range blocks {
		if b.AlnWidth <= maxWidth {
			out = append(out, b)
			continue
		}
		root := b.GetRootComponent()

		var spans []span
		for start := int64(0); start < b.AlnWidth; start += maxWidth {
			spans = append(spans, span{start, min64(start+maxWidth, b.AlnWidth)})
		}

		var merged []span
		leadStart := int64(-1)
		for _, s := range spans {
			piece, err := b.Subrange(s.start, s.end)
			if err != nil {
				return nil, err
			}
			rootPiece := piece != nil && func() bool {
				rc := piece.FindBySequence(root.Seq)
				return rc != nil && rc.AnyAligned()
			}()
			if !rootPiece {
				if len(merged) > 0 {
					merged[len(merged)-1].end = s.end
				} else if leadStart < 0 {
					leadStart = s.start
				}
				continue
			}
			if leadStart >= 0 {
				s.start, leadStart = leadStart, -1
			}
			merged = append(merged, s)
		}
		if leadStart >= 0 { // no piece holds a root base: keep the block whole
			merged = append(merged, span{leadStart, b.AlnWidth})
		}
		for _, s := range merged {
			piece, err := b.Subrange(s.start, s.end)
			if err != nil {
				return nil, err
			}
			if piece != nil {
				out = append(out, piece)
			}
		}
	}
	return out, nil
}

func (ctx *Context) load(r io.Reader, source, treelessRoot string) (*blockset.BlockSet, error) {
	blocks, err := mafio.Read(r, ctx.Registry, mafio.ReadOptions{
		TreelessRootGenome:  treelessRoot,
		DefaultBranchLength: ctx.Config.BranchLength,
	})
	if err != nil {
		return nil, err
	}
	blocks, err = splitWideBlocks(blocks, ctx.Config.MaxInputBlkWidth)
	if err != nil {
		return nil, err
	}
	bs := blockset.NewBlockSet(ctx.Registry, source)
	for _, b := range blocks {
		bs.Add(b)
	}
	return bs, nil
}

func (ctx *Context) dumpState(bs *blockset.BlockSet, setName, step string) error {
	if ctx.Config.DumpDir == "" {
		return nil
	}
	path := filepath.Join(ctx.Config.DumpDir, fmt.Sprintf("%s-%s.dmp", setName, step))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mafjoin: dump %s: %w", path, err)
	}
	defer f.Close()
	return mafio.WriteDump(f, bs)
}

const pipelineStepCount = 9

func (ctx *Context) step(name string) {
	ctx.logStep(name)
	if ctx.Progress != nil {
		ctx.Progress.Increment()
	}
}

// Run drives one full mafJoin pipeline to completion: LoadA, JoinDupsA,
// LoadB, JoinDupsB, CrossJoin, OverlapAdjacentJoin, MergeComponents,
// MultiParentCheck, Write. It aborts at the first error and never writes
// partial output: out is only touched by the final Write step.
func (ctx *Context) Run(in1, in2 io.Reader, out io.Writer) error {
	if ctx.Config.ShowProgress {
		ctx.Progress = pb.StartNew(pipelineStepCount)
		defer ctx.Progress.Finish()
	}

	if ctx.Config.GuideGenome == "" {
		return fmt.Errorf("mafjoin: guide genome is required")
	}
	guideGenome := ctx.Registry.ObtainGenome(ctx.Config.GuideGenome)

	if ctx.Config.SpeciesTreeNewick != "" {
		st, err := align.NewSpeciesTree(ctx.Config.SpeciesTreeNewick)
		if err != nil {
			return fmt.Errorf("mafjoin: species tree: %w", err)
		}
		ctx.Species = st
	}

	ctx.step("LoadA")
	setA, err := ctx.load(in1, "A", ctx.Config.TreelessRoot1)
	if err != nil {
		return fmt.Errorf("mafjoin: load A: %w", err)
	}
	if err := ctx.dumpState(setA, "A", "LoadA"); err != nil {
		return err
	}

	ctx.step("JoinDupsA")
	if err := join.JoinWithinSetDuplicates(setA); err != nil {
		return fmt.Errorf("mafjoin: join dups A: %w", err)
	}
	if err := ctx.dumpState(setA, "A", "JoinDupsA"); err != nil {
		return err
	}

	ctx.step("LoadB")
	setB, err := ctx.load(in2, "B", ctx.Config.TreelessRoot2)
	if err != nil {
		return fmt.Errorf("mafjoin: load B: %w", err)
	}
	if err := ctx.dumpState(setB, "B", "LoadB"); err != nil {
		return err
	}

	ctx.step("JoinDupsB")
	if err := join.JoinWithinSetDuplicates(setB); err != nil {
		return fmt.Errorf("mafjoin: join dups B: %w", err)
	}
	if err := ctx.dumpState(setB, "B", "JoinDupsB"); err != nil {
		return err
	}

	ctx.step("CrossJoin")
	joined, err := join.CrossSetJoin(ctx.Registry, guideGenome, setA, setB, "joined")
	if err != nil {
		return fmt.Errorf("mafjoin: cross join: %w", err)
	}
	if err := ctx.dumpState(joined, "joined", "CrossJoin"); err != nil {
		return err
	}

	ctx.step("OverlapAdjacentJoin")
	if err := join.JoinOverlapAdjacent(joined, ctx.Config.MaxBlkWidth); err != nil {
		return fmt.Errorf("mafjoin: overlap-adjacent join: %w", err)
	}
	if err := ctx.dumpState(joined, "joined", "OverlapAdjacentJoin"); err != nil {
		return err
	}

	ctx.step("MergeComponents")
	for _, b := range joined.Blocks() {
		if err := join.MergeComponents(b); err != nil {
			return fmt.Errorf("mafjoin: merge components: %w", err)
		}
	}
	if err := ctx.dumpState(joined, "joined", "MergeComponents"); err != nil {
		return err
	}

	if ctx.Species != nil {
		for _, b := range joined.Blocks() {
			if b.Tree == nil {
				continue
			}
			if err := b.Tree.VerifyAgainstSpeciesTree(ctx.Species); err != nil {
				return fmt.Errorf("mafjoin: species tree assertion: %w", err)
			}
		}
	}

	ctx.step("MultiParentCheck")
	if err := join.CheckMultiParent(joined); err != nil {
		return fmt.Errorf("mafjoin: multi-parent check: %w", err)
	}

	ctx.step("Write")
	if err := mafio.Write(out, joined.Blocks(), mafio.WriteOptions{}); err != nil {
		return fmt.Errorf("mafjoin: write: %w", err)
	}
	return nil
}
