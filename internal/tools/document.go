package tools

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/session"
)

// specSummary is the per-specification element of listing payloads.
type specSummary struct {
	Identifier          string   `json:"identifier"`
	Name                string   `json:"name"`
	IfcVersions         []string `json:"ifc_versions"`
	ApplicabilityFacets int      `json:"applicability_facets"`
	RequirementFacets   int      `json:"requirement_facets"`
}

func summarize(doc *ids.Document) []specSummary {
	out := make([]specSummary, 0, len(doc.Specifications))
	for _, s := range doc.Specifications {
		out = append(out, specSummary{
			Identifier:          s.Identifier,
			Name:                s.Name,
			IfcVersions:         s.IfcVersions,
			ApplicabilityFacets: len(s.Applicability),
			RequirementFacets:   len(s.Requirements),
		})
	}
	return out
}

// CreateTool handles create_ids: it starts a fresh document in the caller's
// session, discarding whatever draft was there.
type CreateTool struct {
	store      *session.Store
	logger     *zap.SugaredLogger
	maskErrors bool
}

func NewCreateTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *CreateTool {
	return &CreateTool{store: store, logger: logger, maskErrors: maskErrors}
}

func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("create_ids",
		mcp.WithDescription(
			"Create a new IDS (Information Delivery Specification) document for this session. "+
				"Replaces any document the session already holds.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Document title"),
		),
		mcp.WithString("author", mcp.Description("Author email or name")),
		mcp.WithString("version", mcp.Description("Version string, e.g. 1.0.0")),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format")),
		mcp.WithString("description", mcp.Description("Document description")),
		mcp.WithString("copyright", mcp.Description("Copyright notice")),
		mcp.WithString("milestone", mcp.Description("Project milestone this IDS applies to")),
		mcp.WithString("purpose", mcp.Description("Purpose of this IDS")),
	)
}

func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	doc := ids.NewDocument(ids.Info{
		Title:       title,
		Author:      req.GetString("author", ""),
		Version:     req.GetString("version", ""),
		Date:        req.GetString("date", ""),
		Description: req.GetString("description", ""),
		Copyright:   req.GetString("copyright", ""),
		Milestone:   req.GetString("milestone", ""),
		Purpose:     req.GetString("purpose", ""),
	})

	id := sessionID(ctx)
	t.store.Replace(id, doc)
	t.logger.Infow("created IDS document", "session", id, "title", title)

	return jsonResult(map[string]any{
		"status":     "created",
		"session_id": id,
		"title":      title,
	})
}

// LoadTool handles load_ids: it parses an existing IDS file or XML string
// into the session, replacing the current draft.
type LoadTool struct {
	store      *session.Store
	logger     *zap.SugaredLogger
	maskErrors bool
}

func NewLoadTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *LoadTool {
	return &LoadTool{store: store, logger: logger, maskErrors: maskErrors}
}

func (t *LoadTool) Definition() mcp.Tool {
	return mcp.NewTool("load_ids",
		mcp.WithDescription(
			"Load an existing IDS document into the current session, replacing any draft. "+
				"Source is either a file path or raw XML.",
		),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("File path or XML string, depending on source_type"),
		),
		mcp.WithString("source_type",
			mcp.Description("'file' to read source as a path, 'string' to parse it as XML"),
			mcp.DefaultString("file"),
			mcp.Enum("file", "string"),
		),
	)
}

func (t *LoadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := req.GetString("source", "")
	if source == "" {
		return mcp.NewToolResultError("'source' is required"), nil
	}

	var data []byte
	switch req.GetString("source_type", "file") {
	case "file":
		raw, err := os.ReadFile(source)
		if err != nil {
			if os.IsNotExist(err) {
				return mcp.NewToolResultError("File not found: " + source), nil
			}
			return errorResult(t.logger, t.maskErrors, "load_ids", err)
		}
		data = raw
	case "string":
		data = []byte(source)
	default:
		return mcp.NewToolResultError("'source_type' must be 'file' or 'string'"), nil
	}

	doc, err := ids.Unmarshal(data)
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "load_ids", err)
	}

	id := sessionID(ctx)
	t.store.Replace(id, doc)
	t.logger.Infow("loaded IDS document",
		"session", id,
		"title", doc.Title,
		"specifications", len(doc.Specifications))

	return jsonResult(map[string]any{
		"status":              "loaded",
		"title":               doc.Title,
		"author":              doc.Author,
		"specification_count": len(doc.Specifications),
		"specifications":      summarize(doc),
	})
}

// ExportTool handles export_ids: it serializes the session's document to
// XML, optionally schema-validating and writing it to a file.
type ExportTool struct {
	store      *session.Store
	logger     *zap.SugaredLogger
	maskErrors bool
}

func NewExportTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *ExportTool {
	return &ExportTool{store: store, logger: logger, maskErrors: maskErrors}
}

func (t *ExportTool) Definition() mcp.Tool {
	return mcp.NewTool("export_ids",
		mcp.WithDescription(
			"Export the session's IDS document as XML. Returns the XML string, or writes "+
				"it to output_path when given. Schema validation runs by default.",
		),
		mcp.WithString("output_path",
			mcp.Description("File path to write to; omit to get the XML back directly"),
		),
		mcp.WithBoolean("validate",
			mcp.Description("Validate the result against the IDS 1.0 XSD (default true)"),
		),
	)
}

func (t *ExportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outputPath := req.GetString("output_path", "")
	validate := boolArg(req, "validate", true)

	var (
		data   []byte
		report ids.StructureReport
	)
	err := t.store.With(sessionID(ctx), func(doc *ids.Document) error {
		if validate {
			report = ids.ValidateStructure(doc)
		}
		var err error
		data, err = ids.Marshal(doc)
		return err
	})
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "export_ids", err)
	}

	// The structural checks catch what the schema cannot express, such as a
	// document with no specifications; both verdicts feed the same result.
	validation := map[string]any{"valid": true, "errors": []string{}}
	if validate {
		errs := append([]string{}, report.Errors...)
		msgs, err := ids.ValidateXML(data)
		if err != nil {
			return errorResult(t.logger, t.maskErrors, "export_ids", err)
		}
		errs = append(errs, msgs...)
		if len(errs) > 0 {
			validation["valid"] = false
			validation["errors"] = errs
		}
	}

	if outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return errorResult(t.logger, t.maskErrors, "export_ids", err)
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return errorResult(t.logger, t.maskErrors, "export_ids", err)
		}
		t.logger.Infow("exported IDS document", "path", outputPath)
		return jsonResult(map[string]any{
			"status":     "exported",
			"file_path":  outputPath,
			"validation": validation,
		})
	}

	return jsonResult(map[string]any{
		"status":     "exported",
		"xml":        string(data),
		"validation": validation,
	})
}

// InfoTool handles get_ids_info: a read-only summary of the session's draft.
type InfoTool struct {
	store      *session.Store
	logger     *zap.SugaredLogger
	maskErrors bool
}

func NewInfoTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *InfoTool {
	return &InfoTool{store: store, logger: logger, maskErrors: maskErrors}
}

func (t *InfoTool) Definition() mcp.Tool {
	return mcp.NewTool("get_ids_info",
		mcp.WithDescription(
			"Get the current session's IDS document structure: metadata plus a summary "+
				"of every specification and its facet counts.",
		),
	)
}

func (t *InfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var payload map[string]any
	err := t.store.With(sessionID(ctx), func(doc *ids.Document) error {
		payload = map[string]any{
			"title":               doc.Title,
			"author":              doc.Author,
			"version":             doc.Version,
			"description":         doc.Description,
			"specification_count": len(doc.Specifications),
			"specifications":      summarize(doc),
		}
		return nil
	})
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "get_ids_info", err)
	}
	return jsonResult(payload)
}
