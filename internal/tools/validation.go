package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/check"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/session"
)

// ValidateTool handles validate_ids: the three-tier validation of the
// session's document. Tier one is the structural pre-flight, tier two the
// XSD check of the serialized form, tier three the external audit tool when
// configured.
type ValidateTool struct {
	store      *session.Store
	auditor    *check.Auditor
	logger     *zap.SugaredLogger
	maskErrors bool
}

func NewValidateTool(store *session.Store, auditor *check.Auditor, logger *zap.SugaredLogger, maskErrors bool) *ValidateTool {
	return &ValidateTool{store: store, auditor: auditor, logger: logger, maskErrors: maskErrors}
}

func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_ids",
		mcp.WithDescription(
			"Validate the session's IDS document: structural checks (title, specifications, "+
				"applicability), XSD schema compliance, and the buildingSMART IDS-Audit-tool "+
				"when available. Returns combined errors and warnings.",
		),
	)
}

func (t *ValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		report    ids.StructureReport
		data      []byte
		specCount int
		hasTitle  bool
	)
	err := t.store.With(sessionID(ctx), func(doc *ids.Document) error {
		report = ids.ValidateStructure(doc)
		specCount = len(doc.Specifications)
		hasTitle = doc.Title != ""
		var err error
		data, err = ids.Marshal(doc)
		return err
	})
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "validate_ids", err)
	}

	errs := append([]string{}, report.Errors...)
	warnings := append([]string{}, report.Warnings...)

	xsdValid := true
	msgs, err := ids.ValidateXML(data)
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "validate_ids", err)
	}
	for _, msg := range msgs {
		xsdValid = false
		errs = append(errs, "XSD validation failed: "+msg)
	}

	structureValid := len(errs) == 0

	result := map[string]any{
		"specifications_count": specCount,
		"details": map[string]any{
			"has_title":          hasTitle,
			"has_specifications": specCount > 0,
			"xsd_valid":          xsdValid,
		},
	}

	auditValid := true
	if t.auditor.Enabled() {
		audit := t.runAudit(ctx, data)
		auditValid = audit.Valid
		for _, e := range audit.Errors {
			errs = append(errs, "Audit tool: "+e)
		}
		for _, w := range audit.Warnings {
			warnings = append(warnings, "Audit tool: "+w)
		}
		result["audit_tool"] = audit
	}

	result["valid"] = structureValid && auditValid
	result["errors"] = errs
	result["warnings"] = warnings

	t.logger.Infow("validated IDS document",
		"valid", result["valid"],
		"errors", len(errs),
		"warnings", len(warnings))
	return jsonResult(result)
}

// runAudit round-trips the serialized document through a temp file, which is
// the only interface the external tool offers.
func (t *ValidateTool) runAudit(ctx context.Context, data []byte) check.AuditReport {
	tmp, err := os.CreateTemp("", "ids-*.ids")
	if err != nil {
		return check.AuditReport{
			Valid:    false,
			ExitCode: -1,
			Output:   "Error running audit tool: " + err.Error(),
			Errors:   []string{"Error running audit tool: " + err.Error()},
			Warnings: []string{},
		}
	}
	path := tmp.Name()
	defer os.Remove(path)

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		err := writeErr
		if err == nil {
			err = closeErr
		}
		return check.AuditReport{
			Valid:    false,
			ExitCode: -1,
			Output:   "Error running audit tool: " + err.Error(),
			Errors:   []string{"Error running audit tool: " + err.Error()},
			Warnings: []string{},
		}
	}

	return t.auditor.Run(ctx, path)
}

// ModelValidateTool handles validate_ifc_model: it exports the session's
// document to a temp file and hands it, with the model path, to the external
// IFC checker.
type ModelValidateTool struct {
	store      *session.Store
	checker    *check.ModelChecker
	logger     *zap.SugaredLogger
	maskErrors bool
}

func NewModelValidateTool(store *session.Store, checker *check.ModelChecker, logger *zap.SugaredLogger, maskErrors bool) *ModelValidateTool {
	return &ModelValidateTool{store: store, checker: checker, logger: logger, maskErrors: maskErrors}
}

func (t *ModelValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_ifc_model",
		mcp.WithDescription(
			"Validate an IFC model file against the session's IDS specifications using the "+
				"configured external checker. Requires IDS_MODEL_CHECKER_PATH to be set.",
		),
		mcp.WithString("ifc_file_path",
			mcp.Required(),
			mcp.Description("Path to the IFC model file"),
		),
		mcp.WithString("report_format",
			mcp.Description("Report format (default 'json')"),
			mcp.DefaultString("json"),
			mcp.Enum("console", "json", "html"),
		),
	)
}

func (t *ModelValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modelPath := req.GetString("ifc_file_path", "")
	if modelPath == "" {
		return mcp.NewToolResultError("'ifc_file_path' is required"), nil
	}
	format := req.GetString("report_format", "json")

	if !t.checker.Available() {
		return mcp.NewToolResultError(
			"No IFC model checker configured. Set IDS_MODEL_CHECKER_PATH to enable model validation.",
		), nil
	}
	if _, err := os.Stat(modelPath); err != nil {
		return mcp.NewToolResultError("IFC file not found: " + modelPath), nil
	}

	// snapshot the document under the session lock; the checker runs outside
	var data []byte
	err := t.store.With(sessionID(ctx), func(doc *ids.Document) error {
		if len(doc.Specifications) == 0 {
			return ids.ErrNoSpecifications()
		}
		var err error
		data, err = ids.Marshal(doc)
		return err
	})
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "validate_ifc_model", err)
	}

	tmpDir, err := os.MkdirTemp("", "ids-model-validate")
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "validate_ifc_model", err)
	}
	defer os.RemoveAll(tmpDir)

	idsPath := filepath.Join(tmpDir, "session.ids")
	if err := os.WriteFile(idsPath, data, 0o644); err != nil {
		return errorResult(t.logger, t.maskErrors, "validate_ifc_model", err)
	}

	t.logger.Infow("validating IFC model", "model", modelPath, "format", format)
	output, err := t.checker.Run(ctx, idsPath, modelPath, format)
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "validate_ifc_model", err)
	}

	payload := map[string]any{
		"status":        "validation_complete",
		"report_format": format,
	}
	if format == "json" {
		var parsed any
		if jsonErr := json.Unmarshal([]byte(output), &parsed); jsonErr == nil {
			payload["report"] = parsed
		} else {
			payload["report"] = output
		}
	} else {
		payload["report"] = output
	}
	return jsonResult(payload)
}
