// Package dedup collapses near identical least divergent orthologs so only one
// representative per sequence cluster goes into the alignment.
package dedup

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
)

// Clusterer groups sequences by similarity, e.g. cd-hit.
type Clusterer interface {
	Cluster(ctx context.Context, seqs []model.Sequence) (model.ClusterAssignment, error)
}

type Reducer struct {
	Clusterer Clusterer
	// PriorityIDs are preferred as representatives after the query, in order.
	PriorityIDs []string
}

type Result struct {
	Sequences []model.Sequence
	Clusters  model.ClusterAssignment
}

// IDs of the surviving sequences, in order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Sequences))
	for i, s := range r.Sequences {
		ids[i] = s.ID
	}
	return ids
}

// Reduce clusters seqs and keeps one sequence per cluster. The representative
// is the first of the query and the priority ids found among the members,
// otherwise the clusterer's choice. Output follows the order of seqs.
func (r *Reducer) Reduce(ctx context.Context, query model.Sequence, seqs []model.Sequence) (*Result, error) {
	clusters, err := r.Clusterer.Cluster(ctx, seqs)
	if err != nil {
		return nil, fmt.Errorf("cluster sequences: %w", err)
	}
	if err := Validate(clusters, seqs); err != nil {
		return nil, err
	}
	clusters = addUnreported(clusters, seqs)

	priority := append([]string{query.ID}, r.PriorityIDs...)
	representatives := make(map[string]bool, len(clusters))
	for _, name := range sortedNames(clusters) {
		c := clusters[name]
		if rep := firstMember(c.Members, priority); rep != "" && rep != c.Representative {
			logger.Debug("Representative overridden",
				zap.String("cluster", name),
				zap.String("from", c.Representative),
				zap.String("to", rep))
			c.Representative = rep
		}
		representatives[c.Representative] = true
	}

	out := make([]model.Sequence, 0, len(clusters))
	for _, s := range seqs {
		if representatives[s.ID] {
			out = append(out, s)
		}
	}

	logger.Debug("Reduced redundancy", zap.Int("before", len(seqs)), zap.Int("after", len(out)))
	return &Result{Sequences: out, Clusters: clusters}, nil
}

// Validate checks that no sequence sits in two clusters, that no cluster names
// an unknown id and that each representative is a member. Sequences missing
// from every cluster are allowed: cd-hit leaves out those shorter than its -l.
func Validate(clusters model.ClusterAssignment, seqs []model.Sequence) error {
	known := make(map[string]bool, len(seqs))
	for _, s := range seqs {
		known[s.ID] = true
	}

	seen := make(map[string]string, len(seqs))
	for _, name := range sortedNames(clusters) {
		c := clusters[name]
		isMember := false
		for _, id := range c.Members {
			if !known[id] {
				return fmt.Errorf("%w: cluster %s holds unknown id %s", model.ErrExternalTool, name, id)
			}
			if other, dup := seen[id]; dup {
				return fmt.Errorf("%w: %s is in clusters %s and %s", model.ErrExternalTool, id, other, name)
			}
			seen[id] = name
			if id == c.Representative {
				isMember = true
			}
		}
		if !isMember {
			return fmt.Errorf("%w: representative %q of cluster %s is not a member", model.ErrExternalTool, c.Representative, name)
		}
	}
	return nil
}

// addUnreported gives every sequence the clusterer left out a cluster of its
// own, named "unclustered-<id>".
func addUnreported(clusters model.ClusterAssignment, seqs []model.Sequence) model.ClusterAssignment {
	if clusters == nil {
		clusters = model.ClusterAssignment{}
	}
	assigned := make(map[string]bool, len(seqs))
	for _, c := range clusters {
		for _, id := range c.Members {
			assigned[id] = true
		}
	}
	for _, s := range seqs {
		if assigned[s.ID] {
			continue
		}
		name := "unclustered-" + s.ID
		for clusters[name] != nil {
			name += "_"
		}
		logger.Warn("Sequence missing from clustering, kept as its own cluster",
			zap.String("id", s.ID), zap.Int("length", s.Len()))
		clusters[name] = &model.Cluster{Members: []string{s.ID}, Representative: s.ID}
		assigned[s.ID] = true
	}
	return clusters
}

func firstMember(members, priority []string) string {
	in := make(map[string]bool, len(members))
	for _, m := range members {
		in[m] = true
	}
	for _, id := range priority {
		if in[id] {
			return id
		}
	}
	return ""
}

func sortedNames(clusters model.ClusterAssignment) []string {
	names := make([]string, 0, len(clusters))
	for name := range clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
