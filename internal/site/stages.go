package site

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// StageName identifies a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageAssemble      StageName = "assemble"
	StageWritePages    StageName = "write_pages"
	StageCopyAssets    StageName = "copy_assets"
	StageSitemap       StageName = "sitemap"
	StageRobots        StageName = "robots"
	StageVerifyLinks   StageName = "verify_links"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageErrorKind classifies a stage failure.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError carries the failing stage and its classification.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// Pipeline builds an ordered stage list.
type Pipeline struct {
	stages []StageDef
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Add appends a stage.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.stages = append(p.stages, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only when cond holds.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		return p.Add(name, fn)
	}
	return p
}

// Build returns a copy of the stage list.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.stages))
	copy(out, p.stages)
	return out
}

// runStages executes stages in order, recording timings and results. Warnings
// are recorded and the build continues; the first fatal error stops it.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	rec := bs.recorder()
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(st.Name, err)
			bs.Report.recordStage(st.Name, se)
			bs.Report.Errors = append(bs.Report.Errors, se.Error())
			return se
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.Name] = dur
		rec.ObserveStageDuration(string(st.Name), dur)

		log := bs.logger().With(logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Microseconds())/1000))
		if err == nil {
			bs.Report.recordStage(st.Name, nil)
			rec.IncStageResult(string(st.Name), metrics.ResultSuccess)
			log.Debug("Stage complete")
			continue
		}

		var se *StageError
		if !stderrors.As(err, &se) {
			se = newFatalStageError(st.Name, err)
		}
		bs.Report.recordStage(st.Name, se)

		switch se.Kind {
		case StageErrorWarning:
			rec.IncStageResult(string(st.Name), metrics.ResultWarning)
			bs.Report.Warnings = append(bs.Report.Warnings, se.Error())
			log.Warn("Stage completed with warnings", logfields.Error(se.Err))
		default:
			rec.IncStageResult(string(st.Name), metrics.ResultFatal)
			bs.Report.Errors = append(bs.Report.Errors, se.Error())
			log.Error("Stage failed", slog.String("kind", string(se.Kind)), logfields.Error(se.Err))
			return se
		}
	}
	return nil
}
