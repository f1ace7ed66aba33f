package check

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// modelTimeout bounds a model validation run; large IFC files take a while.
const modelTimeout = 5 * time.Minute

// ModelChecker invokes an external IFC model checker that evaluates a model
// against an IDS file and prints a report on stdout.
type ModelChecker struct {
	path string
}

// NewModelChecker wraps the configured checker binary path. An empty path
// means the feature is unavailable.
func NewModelChecker(path string) *ModelChecker {
	return &ModelChecker{path: path}
}

// Available reports whether a checker binary is configured.
func (m *ModelChecker) Available() bool { return m.path != "" }

// Run validates the model at modelPath against the IDS file at idsPath and
// returns the checker's report in the requested format (console, json, or
// html).
func (m *ModelChecker) Run(ctx context.Context, idsPath, modelPath, format string) (string, error) {
	if !m.Available() {
		return "", fmt.Errorf("no IFC model checker configured")
	}

	ctx, cancel := context.WithTimeout(ctx, modelTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.path, idsPath, modelPath, "--report", format)
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("model validation timed out after %s", modelTimeout)
	}
	if err != nil {
		var detail string
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = string(exitErr.Stderr)
		}
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("model checker failed: %s", detail)
	}
	return string(out), nil
}
