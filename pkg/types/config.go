// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "drugtargets/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ChEMBLConfig holds settings for the cohort-selection and
// target-resolution stages.
type ChEMBLConfig struct {
	HTTPConfig `yaml:",inline"`

	// CutoffYear retains only drugs first approved at or after this year.
	CutoffYear int `json:"cutoff_year" yaml:"cutoff_year"`

	// PageSize is the ChEMBL collection page size (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// TargetWorkers bounds the per-drug target resolution pool (default 4).
	TargetWorkers int `json:"target_workers" yaml:"target_workers"`
}

// UniProtConfig holds settings for the keyword-extraction stage.
type UniProtConfig struct {
	HTTPConfig `yaml:",inline"`

	// Pace is the minimum interval between consecutive proteins-API
	// requests, shared across all keyword workers (default 200ms).
	Pace time.Duration `json:"pace" yaml:"pace"`

	// KeywordWorkers bounds the keyword resolution pool (default 1).
	KeywordWorkers int `json:"keyword_workers" yaml:"keyword_workers"`
}

// OutputConfig holds settings for result emission.
type OutputConfig struct {
	// Dir is the directory the two CSV tables are written into (default ".").
	Dir string `json:"dir" yaml:"dir"`

	// DatabasePath, when set, additionally persists both finished tables
	// into a SQLite database at this path.
	DatabasePath string `json:"database_path,omitempty" yaml:"database_path,omitempty"`

	// ReportPath, when set, writes a YAML run report with phase counts.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	ChEMBL  ChEMBLConfig  `json:"chembl" yaml:"chembl"`
	UniProt UniProtConfig `json:"uniprot" yaml:"uniprot"`
	Output  OutputConfig  `json:"output" yaml:"output"`
}

// RunReport summarizes one pipeline run for the optional YAML report.
type RunReport struct {
	CutoffYear     int       `json:"cutoff_year" yaml:"cutoff_year"`
	CohortSize     int       `json:"cohort_size" yaml:"cohort_size"`
	UniqueTargets  int       `json:"unique_targets" yaml:"unique_targets"`
	DrugFailures   int       `json:"drug_failures" yaml:"drug_failures"`
	KeywordErrors  int       `json:"keyword_errors" yaml:"keyword_errors"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time `json:"finished_at" yaml:"finished_at"`
}
