// Package config holds the pipeline parameters and the environment the
// pipeline runs in.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/filter"
	"github.com/yumyai/orthogroup/pkg/model"
	"github.com/yumyai/orthogroup/pkg/ogselect"
	"github.com/yumyai/orthogroup/pkg/similarity"
)

type FilterParams struct {
	MinFractionShorterThanQuery *float64 `json:"min_fraction_shorter_than_query,omitempty"`
	ProhibitedResidues          string   `json:"prohibited_residues,omitempty"`
}

type OGSelectParams struct {
	Method                string `json:"og_selection_method,omitempty"`
	LevelName             string `json:"og_level_name,omitempty"`
	TargetNumberOfSpecies int    `json:"target_number_of_species,omitempty"`
}

type LDOSelectParams struct {
	Method    string   `json:"ldo_selection_method,omitempty"`
	WordSize  int      `json:"word_size,omitempty"`
	GapOpen   *float64 `json:"gap_open,omitempty"`
	GapExtend *float64 `json:"gap_extend,omitempty"`
}

type AlignParams struct {
	Align    *bool `json:"align,omitempty"`
	NThreads int   `json:"n_align_threads,omitempty"`
	Fast     bool  `json:"fast"`
}

type ClusterParams struct {
	PriorityIDs []string `json:"priority_ids"`
}

// Params is the JSON parameter file. Pointers tell an explicit zero apart from
// an absent key.
type Params struct {
	Filter          FilterParams    `json:"filter_params"`
	OGSelect        OGSelectParams  `json:"og_select_params"`
	LDOSelect       LDOSelectParams `json:"ldo_select_params"`
	Align           AlignParams     `json:"align_params"`
	Cluster         ClusterParams   `json:"cluster_params"`
	MainOutputDir   string          `json:"main_output_folder,omitempty"`
	WriteFiles      *bool           `json:"write_files,omitempty"`
	DuplicateAction string          `json:"duplicate_action,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// Defaults returns a fully populated parameter set.
func Defaults() Params {
	p := Params{}
	p.fillDefaults()
	return p
}

// fillDefaults sets every absent field and returns the names it set.
func (p *Params) fillDefaults() []string {
	var filled []string
	set := func(name string, missing bool, apply func()) {
		if missing {
			apply()
			filled = append(filled, name)
		}
	}

	set("filter_params.min_fraction_shorter_than_query", p.Filter.MinFractionShorterThanQuery == nil,
		func() { p.Filter.MinFractionShorterThanQuery = ptr(0.5) })
	set("filter_params.prohibited_residues", p.Filter.ProhibitedResidues == "",
		func() { p.Filter.ProhibitedResidues = filter.DefaultProhibitedResidues })
	set("og_select_params.og_selection_method", p.OGSelect.Method == "",
		func() { p.OGSelect.Method = string(ogselect.ByLevelName) })
	set("og_select_params.og_level_name", p.OGSelect.LevelName == "",
		func() { p.OGSelect.LevelName = "Eukaryota" })

	opts := similarity.DefaultOptions()
	set("ldo_select_params.ldo_selection_method", p.LDOSelect.Method == "",
		func() { p.LDOSelect.Method = string(similarity.GoogleDistance) })
	set("ldo_select_params.word_size", p.LDOSelect.WordSize == 0,
		func() { p.LDOSelect.WordSize = opts.WordSize })
	set("ldo_select_params.gap_open", p.LDOSelect.GapOpen == nil,
		func() { p.LDOSelect.GapOpen = ptr(opts.GapOpen) })
	set("ldo_select_params.gap_extend", p.LDOSelect.GapExtend == nil,
		func() { p.LDOSelect.GapExtend = ptr(opts.GapExtend) })

	set("align_params.align", p.Align.Align == nil, func() { p.Align.Align = ptr(true) })
	set("align_params.n_align_threads", p.Align.NThreads == 0, func() { p.Align.NThreads = 8 })
	set("cluster_params.priority_ids", p.Cluster.PriorityIDs == nil, func() { p.Cluster.PriorityIDs = []string{} })
	set("main_output_folder", p.MainOutputDir == "", func() { p.MainOutputDir = "./orthoDB_analysis" })
	set("write_files", p.WriteFiles == nil, func() { p.WriteFiles = ptr(true) })
	set("duplicate_action", p.DuplicateAction == "", func() { p.DuplicateAction = string(db.DuplicateLongest) })
	return filled
}

// LoadParams reads a parameter file. Unknown keys are rejected, missing ones
// take their defaults. An empty path yields the defaults.
func LoadParams(path string) (Params, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params: %w", err)
	}
	return ParseParams(data)
}

func ParseParams(data []byte) (Params, error) {
	var p Params
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Params{}, fmt.Errorf("%w: params: %v", model.ErrInvalidInput, err)
	}

	if filled := p.fillDefaults(); len(filled) > 0 {
		logger.Info("Parameters not set, using defaults", zap.Strings("params", filled))
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", model.ErrInvalidInput, fmt.Sprintf(format, args...))
	}

	if f := p.MinFraction(); f < 0 || f > 1 {
		return invalid("min_fraction_shorter_than_query %v not within [0,1]", f)
	}
	if _, err := similarity.ParseMethod(p.LDOSelect.Method); err != nil {
		return err
	}
	if p.LDOSelect.WordSize < 1 {
		return invalid("word_size must be positive")
	}
	if p.Options().GapOpen < 0 || p.Options().GapExtend < 0 {
		return invalid("gap penalties must not be negative")
	}
	switch ogselect.Method(p.OGSelect.Method) {
	case ogselect.ByLevelName, ogselect.ByMostSpecies:
	case ogselect.ByTargetSpecies:
		if p.OGSelect.TargetNumberOfSpecies <= 0 {
			return invalid("target_number_of_species is required for %s", p.OGSelect.Method)
		}
	default:
		return fmt.Errorf("%w: og_selection_method %q", model.ErrUnsupportedMethod, p.OGSelect.Method)
	}
	if p.Align.NThreads < 1 {
		return invalid("n_align_threads must be positive")
	}
	switch db.DuplicateAction(p.DuplicateAction) {
	case db.DuplicateFirst, db.DuplicateLongest:
	default:
		return invalid("duplicate_action %q, must be first or longest", p.DuplicateAction)
	}
	return nil
}

func (p Params) MinFraction() float64 {
	if p.Filter.MinFractionShorterThanQuery == nil {
		return 0.5
	}
	return *p.Filter.MinFractionShorterThanQuery
}

func (p Params) Method() similarity.Method {
	return similarity.Method(p.LDOSelect.Method)
}

func (p Params) Options() similarity.Options {
	opts := similarity.DefaultOptions()
	if p.LDOSelect.WordSize > 0 {
		opts.WordSize = p.LDOSelect.WordSize
	}
	if p.LDOSelect.GapOpen != nil {
		opts.GapOpen = *p.LDOSelect.GapOpen
	}
	if p.LDOSelect.GapExtend != nil {
		opts.GapExtend = *p.LDOSelect.GapExtend
	}
	return opts
}

func (p Params) Criteria() ogselect.Criteria {
	return ogselect.Criteria{
		Method:                ogselect.Method(p.OGSelect.Method),
		LevelName:             p.OGSelect.LevelName,
		TargetNumberOfSpecies: p.OGSelect.TargetNumberOfSpecies,
	}
}

func (p Params) AlignEnabled() bool {
	return p.Align.Align == nil || *p.Align.Align
}

func (p Params) WriteEnabled() bool {
	return p.WriteFiles == nil || *p.WriteFiles
}

// Save writes the effective parameters as indented JSON.
func (p Params) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
