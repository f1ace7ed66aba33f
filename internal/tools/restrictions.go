package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/session"
)

// restrictionDef describes one add_*_restriction tool: its extra parameters,
// how to build the restriction, and the kind-specific payload fields echoed
// back on success.
type restrictionDef struct {
	toolName        string
	restrictionType string
	description     string
	params          []mcp.ToolOption
	build           func(req mcp.CallToolRequest, base ids.BaseType) (*ids.Restriction, error)
	echo            func(req mcp.CallToolRequest, payload map[string]any)
}

// RestrictionTool is the generic handler behind the four add_*_restriction
// tools. A restriction replaces the scalar value of one facet parameter,
// addressed by specification, location, facet index, and parameter name.
type RestrictionTool struct {
	def        restrictionDef
	store      *session.Store
	logger     *zap.SugaredLogger
	maskErrors bool
}

func newRestrictionTool(def restrictionDef, store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *RestrictionTool {
	return &RestrictionTool{def: def, store: store, logger: logger, maskErrors: maskErrors}
}

func (t *RestrictionTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.def.description),
		mcp.WithString("spec_id",
			mcp.Required(),
			mcp.Description("Specification identifier or name"),
		),
		mcp.WithNumber("facet_index",
			mcp.Required(),
			mcp.Description("Zero-based index of the facet within its location list, as returned by the add_*_facet tools"),
		),
		mcp.WithString("parameter_name",
			mcp.Required(),
			mcp.Description("Facet parameter to restrict, e.g. 'value', 'name', 'propertySet', 'baseName'"),
		),
		mcp.WithString("base_type",
			mcp.Required(),
			mcp.Description("XSD base type: string, integer, double, boolean, date, time, dateTime"),
		),
		mcp.WithString("location",
			mcp.Description("Which facet list to address (default 'requirements')"),
			mcp.DefaultString("requirements"),
			mcp.Enum("applicability", "requirements"),
		),
	}
	opts = append(opts, t.def.params...)
	return mcp.NewTool(t.def.toolName, opts...)
}

func (t *RestrictionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := ids.ParseLocation(req.GetString("location", "requirements"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	base, err := ids.ParseBaseType(req.GetString("base_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parameter := req.GetString("parameter_name", "")
	if parameter == "" {
		return mcp.NewToolResultError("'parameter_name' is required"), nil
	}
	facetIndex := intArg(req, "facet_index", -1)

	restriction, err := t.def.build(req, base)
	if err != nil {
		return errorResult(t.logger, t.maskErrors, t.def.toolName, err)
	}

	specID := req.GetString("spec_id", "")
	err = t.store.With(sessionID(ctx), func(doc *ids.Document) error {
		spec, err := doc.FindSpecification(specID)
		if err != nil {
			return err
		}
		return ids.ApplyRestriction(spec, loc, facetIndex, parameter, restriction)
	})
	if err != nil {
		return errorResult(t.logger, t.maskErrors, t.def.toolName, err)
	}

	t.logger.Infow("added restriction",
		"restriction_type", t.def.restrictionType,
		"spec_id", specID,
		"facet_index", facetIndex,
		"parameter", parameter)

	payload := map[string]any{
		"status":           "added",
		"restriction_type": t.def.restrictionType,
		"spec_id":          specID,
		"facet_index":      facetIndex,
		"parameter":        parameter,
	}
	if t.def.echo != nil {
		t.def.echo(req, payload)
	}
	return jsonResult(payload)
}

func NewEnumerationRestrictionTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *RestrictionTool {
	return newRestrictionTool(restrictionDef{
		toolName:        "add_enumeration_restriction",
		restrictionType: "enumeration",
		description: "Restrict a facet parameter to a list of allowed values, " +
			"e.g. FireRating in [REI30, REI60, REI90].",
		params: []mcp.ToolOption{
			mcp.WithArray("values",
				mcp.Required(),
				mcp.Description("Allowed values, in order"),
			),
		},
		build: func(req mcp.CallToolRequest, base ids.BaseType) (*ids.Restriction, error) {
			return ids.NewEnumerationRestriction(base, stringSliceArg(req, "values"))
		},
		echo: func(req mcp.CallToolRequest, payload map[string]any) {
			payload["value_count"] = len(stringSliceArg(req, "values"))
		},
	}, store, logger, maskErrors)
}

func NewPatternRestrictionTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *RestrictionTool {
	return newRestrictionTool(restrictionDef{
		toolName:        "add_pattern_restriction",
		restrictionType: "pattern",
		description: "Restrict a facet parameter with an XSD regular expression, " +
			"e.g. 'FR[0-9]{2}'. The pattern is stored verbatim; a malformed " +
			"expression surfaces at export-time validation.",
		params: []mcp.ToolOption{
			mcp.WithString("pattern",
				mcp.Required(),
				mcp.Description("XSD regular expression the value must match"),
			),
		},
		build: func(req mcp.CallToolRequest, base ids.BaseType) (*ids.Restriction, error) {
			return ids.NewPatternRestriction(base, req.GetString("pattern", ""))
		},
		echo: func(req mcp.CallToolRequest, payload map[string]any) {
			payload["pattern"] = req.GetString("pattern", "")
		},
	}, store, logger, maskErrors)
}

func NewBoundsRestrictionTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *RestrictionTool {
	return newRestrictionTool(restrictionDef{
		toolName:        "add_bounds_restriction",
		restrictionType: "bounds",
		description: "Restrict a numeric facet parameter with inclusive/exclusive bounds. " +
			"At least one bound is required.",
		params: []mcp.ToolOption{
			mcp.WithNumber("min_inclusive", mcp.Description("Value must be >= this")),
			mcp.WithNumber("max_inclusive", mcp.Description("Value must be <= this")),
			mcp.WithNumber("min_exclusive", mcp.Description("Value must be > this")),
			mcp.WithNumber("max_exclusive", mcp.Description("Value must be < this")),
		},
		build: func(req mcp.CallToolRequest, base ids.BaseType) (*ids.Restriction, error) {
			return ids.NewBoundsRestriction(base, ids.Bounds{
				MinInclusive: floatPtrArg(req, "min_inclusive"),
				MaxInclusive: floatPtrArg(req, "max_inclusive"),
				MinExclusive: floatPtrArg(req, "min_exclusive"),
				MaxExclusive: floatPtrArg(req, "max_exclusive"),
			})
		},
		echo: func(req mcp.CallToolRequest, payload map[string]any) {
			bounds := map[string]any{}
			for _, key := range []string{"min_inclusive", "max_inclusive", "min_exclusive", "max_exclusive"} {
				if v := floatPtrArg(req, key); v != nil {
					bounds[key] = *v
				}
			}
			payload["bounds"] = bounds
		},
	}, store, logger, maskErrors)
}

func NewLengthRestrictionTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *RestrictionTool {
	return newRestrictionTool(restrictionDef{
		toolName:        "add_length_restriction",
		restrictionType: "length",
		description: "Restrict a string facet parameter's length: either an exact length " +
			"or a min/max range, not both.",
		params: []mcp.ToolOption{
			mcp.WithNumber("length", mcp.Description("Exact length; mutually exclusive with min/max")),
			mcp.WithNumber("min_length", mcp.Description("Minimum length")),
			mcp.WithNumber("max_length", mcp.Description("Maximum length")),
		},
		build: func(req mcp.CallToolRequest, base ids.BaseType) (*ids.Restriction, error) {
			return ids.NewLengthRestriction(base, ids.LengthBounds{
				Length:    intPtrArg(req, "length"),
				MinLength: intPtrArg(req, "min_length"),
				MaxLength: intPtrArg(req, "max_length"),
			})
		},
		echo: func(req mcp.CallToolRequest, payload map[string]any) {
			constraints := map[string]any{}
			for _, key := range []string{"length", "min_length", "max_length"} {
				if v := intPtrArg(req, key); v != nil {
					constraints[key] = *v
				}
			}
			payload["constraints"] = constraints
		},
	}, store, logger, maskErrors)
}
