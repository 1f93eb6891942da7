package pipeline

import "time"

// State is the orchestrator's position in a run
type State string

const (
	StateIdle                State = "idle"
	StateLoadingSources      State = "loading_sources"
	StatePurging             State = "purging"
	StateImportingCatalog    State = "importing_catalog"
	StateImportingEntities   State = "importing_entities"
	StateGeneratingSynthetic State = "generating_synthetic"
	StateImportingSales      State = "importing_sales"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

// Stage names one population step
type Stage string

const (
	StageCatalog   Stage = "catalog"
	StageEntities  Stage = "entities"
	StageSynthetic Stage = "synthetic"
	StageSales     Stage = "sales"
)

// RowStatus is the outcome of one source row
type RowStatus string

const (
	StatusImported  RowStatus = "imported"
	StatusDuplicate RowStatus = "duplicate"
	StatusSkipped   RowStatus = "skipped"
)

// SkipReason explains a skipped row
type SkipReason string

const (
	ReasonMissingField        SkipReason = "missing_field"
	ReasonInvalidIdentifier   SkipReason = "invalid_identifier"
	ReasonParseError          SkipReason = "parse_error"
	ReasonConstraintViolation SkipReason = "constraint_violation"
	ReasonUnresolvedReference SkipReason = "unresolved_reference"
)

// RowResult is the typed outcome of processing one row
type RowResult struct {
	Line   int        `json:"line"`
	Status RowStatus  `json:"status"`
	Reason SkipReason `json:"reason,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// StageReport accumulates row outcomes for one stage
type StageReport struct {
	Stage      Stage          `json:"stage"`
	Processed  int            `json:"processed"`
	Imported   int            `json:"imported"`
	Duplicates int            `json:"duplicates"`
	Skipped    int            `json:"skipped"`
	Created    map[string]int `json:"created"`
	Skips      []RowResult    `json:"skips,omitempty"`
	Note       string         `json:"note,omitempty"`
	DurationMs int64          `json:"durationMs"`
}

func newStageReport(stage Stage) *StageReport {
	return &StageReport{Stage: stage, Created: map[string]int{}}
}

func (r *StageReport) add(result RowResult, created []string) {
	r.Processed++
	switch result.Status {
	case StatusImported:
		r.Imported++
	case StatusDuplicate:
		r.Duplicates++
	case StatusSkipped:
		r.Skipped++
		r.Skips = append(r.Skips, result)
	}
	for _, kind := range created {
		r.Created[kind]++
	}
}

// SkippedFor counts the skipped rows with the given reason
func (r *StageReport) SkippedFor(reason SkipReason) int {
	n := 0
	for _, s := range r.Skips {
		if s.Reason == reason {
			n++
		}
	}
	return n
}

// Report summarises a whole run
type Report struct {
	RunID      string           `json:"runId"`
	Trigger    string           `json:"trigger"`
	State      State            `json:"state"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Purged     map[string]int64 `json:"purged,omitempty"`
	Stages     []*StageReport   `json:"stages"`
	Error      string           `json:"error,omitempty"`
}

// Stage returns the report of a stage, or nil when it did not run
func (r *Report) Stage(stage Stage) *StageReport {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s
		}
	}
	return nil
}

// TotalSkipped counts skipped rows across all stages
func (r *Report) TotalSkipped() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Skipped
	}
	return n
}

// Duration is the wall time of the run
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
