package check

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/config"
)

// writeStub drops an executable shell script posing as ids-tool and returns
// its directory.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "ids-tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}
	return dir
}

func writeIDSFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.ids")
	if err := os.WriteFile(path, []byte("<ids/>"), 0o644); err != nil {
		t.Fatalf("writing ids file: %v", err)
	}
	return path
}

func TestAuditorPassingRun(t *testing.T) {
	dir := writeStub(t, `echo "audit completed"; exit 0`)
	a := NewAuditor(config.AuditTool{Enabled: true, Path: dir})

	report := a.Run(context.Background(), writeIDSFile(t))
	if !report.Valid {
		t.Fatalf("report = %+v, want valid", report)
	}
	if report.ExitCode != 0 || len(report.Errors) != 0 {
		t.Errorf("report = %+v, want clean pass", report)
	}
}

func TestAuditorPassWithWarnings(t *testing.T) {
	dir := writeStub(t, `echo "Warning: date format deprecated"; exit 0`)
	a := NewAuditor(config.AuditTool{Enabled: true, Path: dir})

	report := a.Run(context.Background(), writeIDSFile(t))
	if !report.Valid {
		t.Fatalf("report = %+v, want valid with warnings", report)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", report.Warnings)
	}
}

func TestAuditorFailingRunExtractsLines(t *testing.T) {
	dir := writeStub(t, `echo "Error 103: schema violation"; echo "Warning: check ifcVersion"; exit 2`)
	a := NewAuditor(config.AuditTool{Enabled: true, Path: dir})

	report := a.Run(context.Background(), writeIDSFile(t))
	if report.Valid {
		t.Fatal("report valid despite exit code 2")
	}
	if report.ExitCode != 2 {
		t.Errorf("exit code = %d, want 2", report.ExitCode)
	}
	if len(report.Errors) != 1 || report.Errors[0] != "Error 103: schema violation" {
		t.Errorf("errors = %v, want the error line", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("warnings = %v, want the warning line", report.Warnings)
	}
}

func TestAuditorFailingRunWithoutErrorLines(t *testing.T) {
	dir := writeStub(t, `exit 3`)
	a := NewAuditor(config.AuditTool{Enabled: true, Path: dir})

	report := a.Run(context.Background(), writeIDSFile(t))
	if report.Valid {
		t.Fatal("report valid despite exit code 3")
	}
	if len(report.Errors) != 1 || report.Errors[0] != "Audit tool exited with code 3" {
		t.Errorf("errors = %v, want exit code fallback", report.Errors)
	}
}

func TestAuditorDirectBinaryPath(t *testing.T) {
	dir := writeStub(t, `exit 0`)
	a := NewAuditor(config.AuditTool{Enabled: true, Path: filepath.Join(dir, "ids-tool")})

	report := a.Run(context.Background(), writeIDSFile(t))
	if !report.Valid {
		t.Fatalf("report = %+v, want valid", report)
	}
}

func TestAuditorMissingIDSFile(t *testing.T) {
	dir := writeStub(t, `exit 0`)
	a := NewAuditor(config.AuditTool{Enabled: true, Path: dir})

	report := a.Run(context.Background(), filepath.Join(t.TempDir(), "absent.ids"))
	if report.Valid || report.ExitCode != -1 {
		t.Fatalf("report = %+v, want -1 failure", report)
	}
}

func TestAuditorMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	a := NewAuditor(config.AuditTool{Enabled: true, Path: filepath.Join(t.TempDir(), "nowhere")})

	report := a.Run(context.Background(), writeIDSFile(t))
	if report.Valid || report.ExitCode != -1 {
		t.Fatalf("report = %+v, want not-found failure", report)
	}
	if len(report.Errors) != 1 || report.Errors[0] != "IDS-Audit-tool executable not found" {
		t.Errorf("errors = %v, want not-found message", report.Errors)
	}
}

func TestModelCheckerUnavailable(t *testing.T) {
	m := NewModelChecker("")
	if m.Available() {
		t.Fatal("empty path reported available")
	}
	if _, err := m.Run(context.Background(), "a.ids", "b.ifc", "json"); err == nil {
		t.Fatal("Run succeeded without a configured checker")
	}
}

func TestModelCheckerRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "ifc-check")
	script := "#!/bin/sh\necho \"{\\\"status\\\": \\\"ok\\\", \\\"args\\\": \\\"$*\\\"}\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}

	m := NewModelChecker(path)
	out, err := m.Run(context.Background(), "doc.ids", "model.ifc", "json")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, want := range []string{"doc.ids", "model.ifc", "--report json"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
