// Package similarity scores candidate orthologs against a query sequence.
// Higher scores mean more similar; every method yields values in [0,1].
package similarity

import (
	"context"
	"fmt"

	"github.com/yumyai/orthogroup/pkg/model"
)

type Method string

const (
	GoogleDistance Method = "alfpy_google_distance"
	MSAByOrganism  Method = "msa_by_organism"
	MSA            Method = "msa"
	Pairwise       Method = "pairwise"
)

var Methods = []Method{GoogleDistance, MSAByOrganism, MSA, Pairwise}

// ParseMethod validates a configured method name.
func ParseMethod(name string) (Method, error) {
	for _, m := range Methods {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q, must be one of %v", model.ErrUnsupportedMethod, name, Methods)
}

type Options struct {
	WordSize  int
	GapOpen   float64
	GapExtend float64
}

func DefaultOptions() Options {
	return Options{WordSize: 2, GapOpen: 10, GapExtend: 0.5}
}

// Aligner produces a multiple sequence alignment, rows in input order.
type Aligner interface {
	Align(ctx context.Context, seqs []model.Sequence) ([]model.Sequence, error)
}

// Estimator scores every member of the organism groups against the query.
// Rows follow group order, then member order.
type Estimator interface {
	Estimate(ctx context.Context, query model.Sequence, groups []model.OrganismGroup) (model.SimilarityTable, error)
}

// New returns the estimator for method. The aligner is only needed by the
// MSA based methods.
func New(method Method, opts Options, aligner Aligner) (Estimator, error) {
	switch method {
	case GoogleDistance:
		if opts.WordSize < 1 {
			return nil, fmt.Errorf("%w: word size %d", model.ErrInvalidInput, opts.WordSize)
		}
		return &wordEstimator{wordSize: opts.WordSize}, nil
	case MSAByOrganism, MSA:
		if aligner == nil {
			return nil, fmt.Errorf("%w: method %s needs an aligner", model.ErrInvalidInput, method)
		}
		return &msaEstimator{aligner: aligner, byOrganism: method == MSAByOrganism}, nil
	case Pairwise:
		if opts.GapOpen < 0 || opts.GapExtend < 0 {
			return nil, fmt.Errorf("%w: gap penalties must not be negative", model.ErrInvalidInput)
		}
		return &pairwiseEstimator{gapOpen: opts.GapOpen, gapExtend: opts.GapExtend}, nil
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedMethod, method)
}

func checkInput(query model.Sequence, groups []model.OrganismGroup) error {
	if query.Residues == "" {
		return fmt.Errorf("%w: query %s has no residues", model.ErrInvalidInput, query.ID)
	}
	for _, g := range groups {
		if len(g.Members) > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: no candidates to score", model.ErrInvalidInput)
}

// withQuery returns the members plus the query when it is not already one of them.
func withQuery(members []model.Sequence, query model.Sequence) []model.Sequence {
	for _, s := range members {
		if s.ID == query.ID {
			return members
		}
	}
	out := make([]model.Sequence, 0, len(members)+1)
	out = append(out, members...)
	return append(out, query)
}
