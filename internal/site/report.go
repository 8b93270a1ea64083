package site

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// ReportSchemaVersion is bumped on incompatible JSON changes.
const ReportSchemaVersion = 1

// BuildOutcome is the final result of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// StageCount aggregates the results recorded for one stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// PageEntry records one written page.
type PageEntry struct {
	Route       string `json:"route"`
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// BuildReport captures what one build did. It is written outside the output
// directory, so it never affects the generated site.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Mode            string
	Output          string
	Start           time.Time
	End             time.Time
	Outcome         BuildOutcome
	Errors          []string
	Warnings        []string
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Posts           int
	Projects        int
	PagesByKind     map[PageKind]int
	Pages           []PageEntry
	Assets          int
	BrokenLinks     []linkverify.BrokenLink
}

func newBuildReport(mode, output string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   ReportSchemaVersion,
		BuildID:         uuid.NewString(),
		Mode:            mode,
		Output:          output,
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		PagesByKind:     make(map[PageKind]int),
	}
}

func (r *BuildReport) recordStage(name StageName, se *StageError) {
	sc := r.StageCounts[name]
	if se == nil {
		sc.Success++
		r.StageCounts[name] = sc
		return
	}
	r.StageErrorKinds[name] = se.Kind
	switch se.Kind {
	case StageErrorWarning:
		sc.Warning++
	case StageErrorCanceled:
		sc.Canceled++
	default:
		sc.Fatal++
	}
	r.StageCounts[name] = sc
}

func (r *BuildReport) addPage(p Page) {
	r.PagesByKind[p.Kind]++
	r.Pages = append(r.Pages, PageEntry{
		Route:       p.Route,
		Kind:        string(p.Kind),
		Source:      p.Source,
		Fingerprint: p.Fingerprint,
	})
}

// RenderedPages is the total number of pages written.
func (r *BuildReport) RenderedPages() int {
	return len(r.Pages)
}

func (r *BuildReport) finish() {
	r.End = time.Now()
	r.deriveOutcome()
}

func (r *BuildReport) deriveOutcome() {
	switch {
	case slices.Contains(mapValues(r.StageErrorKinds), StageErrorCanceled):
		r.Outcome = OutcomeCanceled
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

func mapValues(m map[StageName]StageErrorKind) []StageErrorKind {
	out := make([]StageErrorKind, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// MetricsOutcome maps the outcome onto the metrics label set.
func (r *BuildReport) MetricsOutcome() metrics.BuildOutcomeLabel {
	switch r.Outcome {
	case OutcomeSuccess:
		return metrics.BuildOutcomeSuccess
	case OutcomeWarning:
		return metrics.BuildOutcomeWarning
	default:
		return metrics.BuildOutcomeFailed
	}
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("build=%s mode=%s posts=%d projects=%d pages=%d assets=%d broken_links=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.Mode, r.Posts, r.Projects, r.RenderedPages(), r.Assets, len(r.BrokenLinks),
		dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// reportJSON is the persisted form of a BuildReport.
type reportJSON struct {
	SchemaVersion    int                     `json:"schema_version"`
	BuildID          string                  `json:"build_id"`
	Mode             string                  `json:"mode"`
	Output           string                  `json:"output"`
	Start            time.Time               `json:"start"`
	End              time.Time               `json:"end"`
	DurationMS       int64                   `json:"duration_ms"`
	Outcome          BuildOutcome            `json:"outcome"`
	Errors           []string                `json:"errors"`
	Warnings         []string                `json:"warnings"`
	StageDurationsMS map[string]int64        `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string       `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount   `json:"stage_counts"`
	Posts            int                     `json:"posts"`
	Projects         int                     `json:"projects"`
	RenderedPages    int                     `json:"rendered_pages"`
	PagesByKind      map[string]int          `json:"pages_by_kind"`
	Pages            []PageEntry             `json:"pages"`
	Assets           int                     `json:"assets"`
	BrokenLinks      []linkverify.BrokenLink `json:"broken_links"`
}

func (r *BuildReport) serializable() reportJSON {
	out := reportJSON{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Mode:             r.Mode,
		Output:           r.Output,
		Start:            r.Start,
		End:              r.End,
		DurationMS:       r.End.Sub(r.Start).Milliseconds(),
		Outcome:          r.Outcome,
		Errors:           nonNil(r.Errors),
		Warnings:         nonNil(r.Warnings),
		StageDurationsMS: make(map[string]int64, len(r.StageDurations)),
		StageErrorKinds:  make(map[string]string, len(r.StageErrorKinds)),
		StageCounts:      make(map[string]StageCount, len(r.StageCounts)),
		Posts:            r.Posts,
		Projects:         r.Projects,
		RenderedPages:    r.RenderedPages(),
		PagesByKind:      make(map[string]int, len(r.PagesByKind)),
		Pages:            nonNil(r.Pages),
		Assets:           r.Assets,
		BrokenLinks:      nonNil(r.BrokenLinks),
	}
	for k, v := range r.StageDurations {
		out.StageDurationsMS[string(k)] = v.Milliseconds()
	}
	for k, v := range r.StageErrorKinds {
		out.StageErrorKinds[string(k)] = string(v)
	}
	for k, v := range r.StageCounts {
		out.StageCounts[string(k)] = v
	}
	for k, v := range r.PagesByKind {
		out.PagesByKind[string(k)] = v
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// MarshalJSON encodes the persisted form.
func (r *BuildReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.serializable())
}

// Persist writes the report as indented JSON to path, atomically.
func (r *BuildReport) Persist(path string) error {
	if r.End.IsZero() {
		r.finish()
	}
	data, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "cannot encode build report").Build()
	}
	if err := fsutil.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot write build report").
			WithContext("path", path).
			Build()
	}
	return nil
}
