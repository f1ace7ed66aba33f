package tools

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/session"
)

// SpecificationTool handles add_specification.
type SpecificationTool struct {
	store      *session.Store
	logger     *zap.SugaredLogger
	maskErrors bool
}

func NewSpecificationTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *SpecificationTool {
	return &SpecificationTool{store: store, logger: logger, maskErrors: maskErrors}
}

func (t *SpecificationTool) Definition() mcp.Tool {
	return mcp.NewTool("add_specification",
		mcp.WithDescription(
			"Add a specification to the session's IDS document. A specification pairs "+
				"applicability facets (which elements it targets) with requirement facets "+
				"(what must hold for them). Facets are added afterwards with the add_*_facet tools.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Specification name, e.g. 'Wall fire rating'"),
		),
		mcp.WithArray("ifc_versions",
			mcp.Required(),
			mcp.Description("IFC schema versions this applies to: IFC2X3, IFC4, IFC4X3"),
		),
		mcp.WithString("identifier",
			mcp.Description("Unique identifier; auto-assigned (S1, S2, ...) when omitted"),
		),
		mcp.WithString("description", mcp.Description("Why this information is required")),
		mcp.WithString("instructions", mcp.Description("How to fulfill the requirements")),
		mcp.WithNumber("min_occurs",
			mcp.Description("Minimum number of matching elements the model must contain (default 0)"),
		),
		mcp.WithString("max_occurs",
			mcp.Description("Maximum number of matching elements, or 'unbounded' (default)"),
		),
	)
}

func (t *SpecificationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	// max_occurs is declared as a string but a bare number is accepted too
	maxOccurs := req.GetString("max_occurs", "")
	if maxOccurs == "" {
		if v, ok := req.GetArguments()["max_occurs"].(float64); ok {
			maxOccurs = strconv.Itoa(int(v))
		}
	}

	params := ids.SpecificationParams{
		Name:         name,
		Identifier:   req.GetString("identifier", ""),
		Description:  req.GetString("description", ""),
		Instructions: req.GetString("instructions", ""),
		IfcVersions:  stringSliceArg(req, "ifc_versions"),
		MinOccurs:    intArg(req, "min_occurs", 0),
		MaxOccurs:    maxOccurs,
	}

	var spec *ids.Specification
	err := t.store.With(sessionID(ctx), func(doc *ids.Document) error {
		var err error
		spec, err = doc.AddSpecification(params)
		return err
	})
	if err != nil {
		return errorResult(t.logger, t.maskErrors, "add_specification", err)
	}

	t.logger.Infow("added specification", "spec_id", spec.DisplayID(), "name", name)
	return jsonResult(map[string]any{
		"status":       "added",
		"spec_id":      spec.DisplayID(),
		"ifc_versions": spec.IfcVersions,
	})
}
