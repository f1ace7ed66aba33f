// Package check shells out to the external IDS and IFC tooling that backs
// the third validation tier and model checking. Both tools are optional;
// absence degrades the feature instead of failing the server.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/config"
)

// auditBinary is the name looked up when no explicit path is configured.
const auditBinary = "ids-tool"

// auditTimeout bounds a single audit run.
const auditTimeout = 30 * time.Second

// AuditReport is the outcome of one external audit run. ExitCode -1 means
// the tool never ran or was cut short.
type AuditReport struct {
	Valid    bool     `json:"valid"`
	ExitCode int      `json:"exit_code"`
	Output   string   `json:"output"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func auditFailure(msg string) AuditReport {
	return AuditReport{
		Valid:    false,
		ExitCode: -1,
		Output:   msg,
		Errors:   []string{msg},
		Warnings: []string{},
	}
}

// Auditor runs the buildingSMART IDS-Audit-tool against exported documents.
type Auditor struct {
	cfg config.AuditTool
}

// NewAuditor wraps the audit tool configuration.
func NewAuditor(cfg config.AuditTool) *Auditor {
	return &Auditor{cfg: cfg}
}

// Enabled reports whether the audit tier participates in validation.
func (a *Auditor) Enabled() bool { return a.cfg.Enabled }

// resolve locates the tool binary. A configured path may point at the binary
// itself or at its directory.
func (a *Auditor) resolve() (string, error) {
	if a.cfg.Path != "" {
		info, err := os.Stat(a.cfg.Path)
		if err == nil {
			if info.IsDir() {
				candidate := filepath.Join(a.cfg.Path, auditBinary)
				if _, err := os.Stat(candidate); err == nil {
					return candidate, nil
				}
			} else {
				return a.cfg.Path, nil
			}
		}
	}
	return exec.LookPath(auditBinary)
}

// Run audits the IDS file at path. Failures to locate or execute the tool
// come back as a failed report, never as a Go error: the caller folds the
// report into a larger validation result either way.
func (a *Auditor) Run(ctx context.Context, path string) AuditReport {
	tool, err := a.resolve()
	if err != nil {
		return auditFailure("IDS-Audit-tool executable not found")
	}
	if _, err := os.Stat(path); err != nil {
		return auditFailure("IDS file not found: " + path)
	}

	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tool, "audit", path)
	cmd.Dir = filepath.Dir(tool)
	combined, err := cmd.CombinedOutput()
	output := string(combined)

	if ctx.Err() == context.DeadlineExceeded {
		return auditFailure("Audit tool execution timed out after 30 seconds")
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return auditFailure("Error executing audit tool: " + err.Error())
		}
	}

	return parseAuditOutput(exitCode, output)
}

// parseAuditOutput maps the tool's exit code and line output onto a report.
// Exit code 0 is a pass; anything else is a failure with the offending
// lines extracted best-effort.
func parseAuditOutput(exitCode int, output string) AuditReport {
	report := AuditReport{
		ExitCode: exitCode,
		Output:   output,
		Errors:   []string{},
		Warnings: []string{},
	}

	if exitCode == 0 {
		report.Valid = true
		if strings.Contains(strings.ToLower(output), "warning") {
			report.Warnings = append(report.Warnings,
				"Audit tool reported warnings (see output)")
		}
		return report
	}

	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "error") || strings.Contains(lower, "failed"):
			report.Errors = append(report.Errors, strings.TrimSpace(line))
		case strings.Contains(lower, "warning"):
			report.Warnings = append(report.Warnings, strings.TrimSpace(line))
		}
	}
	if len(report.Errors) == 0 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("Audit tool exited with code %d", exitCode))
	}
	return report
}
