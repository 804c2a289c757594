// Package mafjoin wires the genome, align, blockset, join, and mafio
// packages into the end-to-end MAF-join pipeline: load, duplicate-join
// each input, cross-set join, overlap-adjacent join, merge, validate,
// write.
package mafjoin

import (
	"log/slog"

	"github.com/cheggaaa/pb/v3"
	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/genome"
)

// Config collects every tunable the mafJoin CLI exposes.
type Config struct {
	GuideGenome string

	BranchLength float64

	TreelessRoot1 string
	TreelessRoot2 string

	MaxInputBlkWidth int64
	MaxBlkWidth      int64

	SpeciesTreeNewick string // empty disables -speciesTreeAssert

	DumpDir string

	ShowProgress bool
}

// DefaultConfig returns a Config with the CLI's documented defaults.
func DefaultConfig() Config {
	return Config{BranchLength: 0.1}
}

// Context carries the logger and optional progress reporting used
// throughout a single join run, replacing the ambient globals of a
// non-Go implementation with explicit, passed-down state.
type Context struct {
	Logger   *slog.Logger
	Progress *pb.ProgressBar // nil when progress reporting is disabled

	Config   Config
	Registry *genome.Registry
	Species  *align.SpeciesTree // nil unless Config.SpeciesTreeNewick is set
}

// NewContext returns a Context ready to drive Run.
func NewContext(logger *slog.Logger, cfg Config) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Logger:   logger,
		Config:   cfg,
		Registry: genome.NewRegistry(),
	}
}

func (c *Context) logStep(name string, detail ...any) {
	c.Logger.Info("mafjoin step", append([]any{"step", name}, detail...)...)
}
