package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// beginStaging creates a fresh sibling staging directory, <output>_stage.
func (g *Generator) beginStaging() error {
	stage := g.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("remove stale staging directory %s: %w", stage, err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return fmt.Errorf("create staging directory %s: %w", stage, err)
	}
	g.stageDir = stage
	g.logger.Debug("Initialized staging directory", logfields.Path(stage), slog.String("final", g.outputDir))
	return nil
}

// finalizeStaging promotes the staging directory to the output location:
// the old output moves to <output>.prev, staging is renamed into place, and
// the backup is removed.
func (g *Generator) finalizeStaging() error {
	if g.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	if _, err := os.Stat(g.stageDir); err != nil {
		return fmt.Errorf("staging directory missing: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(g.outputDir), 0o755); err != nil {
		return fmt.Errorf("create output parent: %w", err)
	}

	prev := g.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup %s: %w", prev, err)
	}
	hadOutput := false
	if _, err := os.Stat(g.outputDir); err == nil {
		if err := os.Rename(g.outputDir, prev); err != nil {
			return fmt.Errorf("backup previous output: %w", err)
		}
		hadOutput = true
	}
	if err := os.Rename(g.stageDir, g.outputDir); err != nil {
		if hadOutput {
			_ = os.Rename(prev, g.outputDir)
		}
		return fmt.Errorf("promote staging: %w", err)
	}
	g.stageDir = ""
	if hadOutput {
		if err := os.RemoveAll(prev); err != nil {
			g.logger.Warn("Failed to remove previous output backup", logfields.Path(prev), logfields.Error(err))
		}
	}
	g.logger.Debug("Promoted staging directory", logfields.Path(g.outputDir))
	return nil
}

// abortStaging removes the staging directory after a failed build.
func (g *Generator) abortStaging() {
	if g.stageDir == "" {
		return
	}
	if err := os.RemoveAll(g.stageDir); err != nil {
		g.logger.Warn("Failed to remove staging directory", logfields.Path(g.stageDir), logfields.Error(err))
	}
	g.stageDir = ""
}

// buildRoot is where stages write: the staging directory during a build.
func (g *Generator) buildRoot() string {
	if g.stageDir != "" {
		return g.stageDir
	}
	return g.outputDir
}
