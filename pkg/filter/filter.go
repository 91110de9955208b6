// Package filter removes unsuitable sequences from an ortholog group before
// the least divergent orthologs are chosen. The query always survives.
package filter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
)

const DefaultProhibitedResidues = "Xx*JBZU"

// Report summarises one filter pass for the run record.
type Report struct {
	Filter       string         `json:"filter"`
	Before       int            `json:"before"`
	Removed      int            `json:"removed"`
	After        int            `json:"after"`
	RemovedIDs   []string       `json:"removed_ids,omitempty"`
	QueryReadded bool           `json:"query_readded"`
	Parameters   map[string]any `json:"parameters"`
}

// NonStandardResidues drops every sequence holding one of the prohibited
// characters. An empty prohibited set falls back to DefaultProhibitedResidues.
func NonStandardResidues(candidates *model.CandidateSet, query model.Sequence, prohibited string) (*model.CandidateSet, Report) {
	if prohibited == "" {
		prohibited = DefaultProhibitedResidues
	}
	kept, report := apply(candidates, query, func(s model.Sequence) bool {
		return !strings.ContainsAny(s.Residues, prohibited)
	})
	report.Filter = "non_standard_residues"
	report.Parameters = map[string]any{"prohibited_residues": prohibited}
	logReport(report)
	return kept, report
}

// MinLength drops sequences shorter than minFraction times the query length.
func MinLength(candidates *model.CandidateSet, query model.Sequence, minFraction float64) (*model.CandidateSet, Report, error) {
	if minFraction < 0 || minFraction > 1 {
		return nil, Report{}, fmt.Errorf("%w: min fraction %v not within [0,1]", model.ErrInvalidInput, minFraction)
	}
	threshold := minFraction * float64(query.Len())
	kept, report := apply(candidates, query, func(s model.Sequence) bool {
		return float64(s.Len()) >= threshold
	})
	report.Filter = "min_length"
	report.Parameters = map[string]any{
		"min_fraction_shorter_than_query": minFraction,
		"min_length":                      threshold,
	}
	logReport(report)
	return kept, report, nil
}

// apply keeps the members accepted by keep, then puts the query back at its
// original position, or at the end when it was never a member.
func apply(candidates *model.CandidateSet, query model.Sequence, keep func(model.Sequence) bool) (*model.CandidateSet, Report) {
	report := Report{Before: candidates.Len()}

	var out []model.Sequence
	queryKept := false
	for _, s := range candidates.Sequences() {
		switch {
		case s.ID == query.ID:
			if !keep(s) {
				report.QueryReadded = true
			}
			out = append(out, s)
			queryKept = true
		case keep(s):
			out = append(out, s)
		default:
			report.RemovedIDs = append(report.RemovedIDs, s.ID)
		}
	}
	if !queryKept {
		report.QueryReadded = true
		out = append(out, query)
	}

	kept := model.NewCandidateSet(out...)
	report.Removed = len(report.RemovedIDs)
	report.After = kept.Len()
	return kept, report
}

func logReport(r Report) {
	logger.Debug("Filtered sequences",
		zap.String("filter", r.Filter),
		zap.Int("before", r.Before),
		zap.Int("removed", r.Removed),
		zap.Int("after", r.After))
	if r.QueryReadded {
		logger.Info("Query kept despite filter", zap.String("filter", r.Filter))
	}
}
