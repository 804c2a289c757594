// Package genome provides an interned registry of genomes and their
// sequences, keyed by the "org.seq" naming convention used throughout MAF
// files and indexes.
package genome

import (
	"errors"
	"fmt"
	"strings"
)

// SizeUnknown marks a Sequence whose length has not yet been observed.
const SizeUnknown int64 = -1

// ErrInconsistentSize is returned when a Sequence is re-observed with a
// different, already-known length.
var ErrInconsistentSize = errors.New("inconsistent sequence size")

// ErrMissingDot is returned when an org.seq key has no "." separator.
var ErrMissingDot = errors.New("missing genome/sequence separator")

// Genome is a named collection of Sequences. Genomes are created lazily by
// a Registry the first time one of their sequences is referenced.
type Genome struct {
	Name string

	seqIndex map[string]*Sequence
	seqOrder []*Sequence
}

// Sequences returns the Genome's sequences in the order they were first
// observed.
func (g *Genome) Sequences() []*Sequence {
	out := make([]*Sequence, len(g.seqOrder))
	copy(out, g.seqOrder)
	return out
}

// Sequence belongs to exactly one Genome and has a name and a length that,
// once known, is fixed.
type Sequence struct {
	Genome *Genome
	Name   string
	Size   int64
}

// OrgSeq returns the canonical "genome_name.sequence_name" key used for MAF
// row names and for all cross-genome indexing.
func (s *Sequence) OrgSeq() string {
	return s.Genome.Name + "." + s.Name
}

// Less orders sequences by (genome name, sequence name) lexicographically.
func (s *Sequence) Less(o *Sequence) bool {
	if s.Genome.Name != o.Genome.Name {
		return s.Genome.Name < o.Genome.Name
	}
	return s.Name < o.Name
}

// Registry interns Genomes and Sequences for one join run. It is the
// exclusive owner of every Sequence it returns.
type Registry struct {
	genomes map[string]*Genome
	order   []*Genome
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{genomes: make(map[string]*Genome)}
}

// Genomes returns the registered Genomes in first-use order.
func (r *Registry) Genomes() []*Genome {
	out := make([]*Genome, len(r.order))
	copy(out, r.order)
	return out
}

// ObtainGenome returns the Genome with the given name, creating it if this
// is the first reference.
func (r *Registry) ObtainGenome(name string) *Genome {
	if g, ok := r.genomes[name]; ok {
		return g
	}
	g := &Genome{Name: name, seqIndex: make(map[string]*Sequence)}
	r.genomes[name] = g
	r.order = append(r.order, g)
	return g
}

// ObtainSequence returns the named Sequence within genomeName, creating it
// if needed. size may be SizeUnknown; once a Sequence's size is known, a
// later call that disagrees fails with ErrInconsistentSize.
func (r *Registry) ObtainSequence(genomeName, seqName string, size int64) (*Sequence, error) {
	g := r.ObtainGenome(genomeName)
	if s, ok := g.seqIndex[seqName]; ok {
		if size != SizeUnknown {
			if s.Size == SizeUnknown {
				s.Size = size
			} else if s.Size != size {
				return nil, fmt.Errorf("sequence %s: %w (have %d, got %d)", s.OrgSeq(), ErrInconsistentSize, s.Size, size)
			}
		}
		return s, nil
	}
	s := &Sequence{Genome: g, Name: seqName, Size: size}
	g.seqIndex[seqName] = s
	g.seqOrder = append(g.seqOrder, s)
	return s, nil
}

// SplitOrgSeq splits an org.seq key at its first "." into a genome name and
// a sequence name.
func SplitOrgSeq(orgSeq string) (genomeName, seqName string, err error) {
	i := strings.IndexByte(orgSeq, '.')
	if i < 0 {
		return "", "", fmt.Errorf("%q: %w", orgSeq, ErrMissingDot)
	}
	return orgSeq[:i], orgSeq[i+1:], nil
}

// ObtainSequenceForOrgSeq splits orgSeq at its first "." into a genome name
// and a sequence name and delegates to ObtainSequence.
func (r *Registry) ObtainSequenceForOrgSeq(orgSeq string, size int64) (*Sequence, error) {
	genomeName, seqName, err := SplitOrgSeq(orgSeq)
	if err != nil {
		return nil, err
	}
	return r.ObtainSequence(genomeName, seqName, size)
}
