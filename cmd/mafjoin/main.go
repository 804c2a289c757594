// Command mafjoin merges two MAF alignment files against a shared guide
// genome, producing a single MAF file with duplicate, cross-set, and
// overlap-adjacent alignments fused together.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dentearl/maftools-go/mafio/compress"
	"github.com/dentearl/maftools-go/mafjoin"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: mafjoin [options] guideGenome inMaf1 inMaf2 outMaf\n\n")
	flag.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("mafjoin", flag.ContinueOnError)
	fs.Usage = usage

	branchLength := fs.Float64("branchLength", 0.1, "branch length used when inferring trees for treeless blocks")
	treelessRoot1 := fs.String("treelessRoot1", "", "genome to treat as tree root for treeless blocks in inMaf1")
	treelessRoot2 := fs.String("treelessRoot2", "", "genome to treat as tree root for treeless blocks in inMaf2")
	maxInputBlkWidth := fs.Int64("maxInputBlkWidth", 0, "split input blocks wider than this into adjacent pieces (0 disables)")
	maxBlkWidth := fs.Int64("maxBlkWidth", 0, "cap on the width of any block produced by the overlap-adjacent joiner (0 disables)")
	speciesTreeAssert := fs.String("speciesTreeAssert", "", "verify every block tree against this species tree (Newick file)")
	dumpDir := fs.String("dumpDir", "", "write a dump of every block set to this directory on every state transition")
	logLevel := fs.String("logLevel", "info", "log level: debug, info, warn, error")
	progress := fs.Bool("progress", false, "show progress bars on long-running steps")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 4 {
		usage()
		return 2
	}
	guideGenome, inPath1, inPath2, outPath := fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := mafjoin.DefaultConfig()
	cfg.GuideGenome = guideGenome
	cfg.BranchLength = *branchLength
	cfg.TreelessRoot1 = *treelessRoot1
	cfg.TreelessRoot2 = *treelessRoot2
	cfg.MaxInputBlkWidth = *maxInputBlkWidth
	cfg.MaxBlkWidth = *maxBlkWidth
	cfg.DumpDir = *dumpDir
	cfg.ShowProgress = *progress

	if *speciesTreeAssert != "" {
		data, err := os.ReadFile(*speciesTreeAssert)
		if err != nil {
			logger.Error("could not read species tree", "path", *speciesTreeAssert, "error", err)
			return 1
		}
		cfg.SpeciesTreeNewick = string(data)
	}

	if *dumpDir != "" {
		if err := os.MkdirAll(*dumpDir, 0o755); err != nil {
			logger.Error("could not create dump directory", "path", *dumpDir, "error", err)
			return 1
		}
	}

	if err := runJoin(logger, cfg, inPath1, inPath2, outPath); err != nil {
		logger.Error("mafjoin failed", "error", err)
		return 1
	}
	return 0
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unrecognized -logLevel %q", s)
	}
}

// runJoin opens inputs (transparently decompressing) and stages output to
// a temporary file so that a failed run never leaves a partial outMaf
// behind.
func runJoin(logger *slog.Logger, cfg mafjoin.Config, inPath1, inPath2, outPath string) error {
	in1, closeIn1, err := openInput(inPath1)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPath1, err)
	}
	defer closeIn1()

	in2, closeIn2, err := openInput(inPath2)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPath2, err)
	}
	defer closeIn2()

	tmpPath := outPath + ".tmp"
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmpPath, err)
	}
	succeeded := false
	defer func() {
		outFile.Close()
		if !succeeded {
			os.Remove(tmpPath)
		}
	}()

	outWriter, err := compress.Compress(outPath, outFile)
	if err != nil {
		return fmt.Errorf("compress %s: %w", outPath, err)
	}

	ctx := mafjoin.NewContext(logger, cfg)
	if err := ctx.Run(in1, in2, outWriter); err != nil {
		return err
	}
	if err := outWriter.Close(); err != nil {
		return fmt.Errorf("close %s: %w", outPath, err)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, outPath, err)
	}
	succeeded = true
	return nil
}

func openInput(path string) (r io.Reader, closeFn func(), err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dr, err := compress.Decompress(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return dr, func() {
		dr.Close()
		f.Close()
	}, nil
}
