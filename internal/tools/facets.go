package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/session"
)

// facetDef describes one add_*_facet tool: its schema beyond the shared
// spec_id/location/cardinality parameters and how to build the facet from
// the request. The six tools share one handler because only the facet
// construction differs.
type facetDef struct {
	toolName    string
	facetType   string
	description string
	params      []mcp.ToolOption
	build       func(req mcp.CallToolRequest) (ids.Facet, *mcp.CallToolResult)
}

// FacetTool is the generic handler behind the six add_*_facet tools.
type FacetTool struct {
	def        facetDef
	store      *session.Store
	logger     *zap.SugaredLogger
	maskErrors bool
}

func newFacetTool(def facetDef, store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *FacetTool {
	return &FacetTool{def: def, store: store, logger: logger, maskErrors: maskErrors}
}

func (t *FacetTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.def.description),
		mcp.WithString("spec_id",
			mcp.Required(),
			mcp.Description("Specification identifier or name"),
		),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("'applicability' (which elements) or 'requirements' (what must hold)"),
			mcp.Enum("applicability", "requirements"),
		),
	}
	opts = append(opts, t.def.params...)
	opts = append(opts, mcp.WithString("cardinality",
		mcp.Description("'required', 'optional', or 'prohibited'; requirements only (default 'required')"),
		mcp.DefaultString("required"),
		mcp.Enum("required", "optional", "prohibited"),
	))
	return mcp.NewTool(t.def.toolName, opts...)
}

func (t *FacetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := ids.ParseLocation(req.GetString("location", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := ids.ParseCardinality(req.GetString("cardinality", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	facet, errResult := t.def.build(req)
	if errResult != nil {
		return errResult, nil
	}

	specID := req.GetString("spec_id", "")
	var facetIndex int
	err = t.store.With(sessionID(ctx), func(doc *ids.Document) error {
		spec, err := doc.FindSpecification(specID)
		if err != nil {
			return err
		}
		facetIndex, err = spec.AddFacet(loc, facet, card)
		return err
	})
	if err != nil {
		return errorResult(t.logger, t.maskErrors, t.def.toolName, err)
	}

	t.logger.Infow("added facet",
		"facet_type", t.def.facetType,
		"spec_id", specID,
		"location", loc,
		"index", facetIndex)
	return jsonResult(map[string]any{
		"status":      "added",
		"facet_type":  t.def.facetType,
		"spec_id":     specID,
		"facet_index": facetIndex,
	})
}

// requireString fetches a required string argument, or returns the error
// result to hand back.
func requireString(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v := req.GetString(key, "")
	if v == "" {
		return "", mcp.NewToolResultError("'" + key + "' is required")
	}
	return v, nil
}

func NewEntityFacetTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *FacetTool {
	return newFacetTool(facetDef{
		toolName:  "add_entity_facet",
		facetType: "entity",
		description: "Add an entity facet (IFC class filter) to a specification. " +
			"IDS 1.0 allows only ONE entity facet per applicability section; " +
			"use one specification per entity type.",
		params: []mcp.ToolOption{
			mcp.WithString("entity_name",
				mcp.Required(),
				mcp.Description("IFC entity name, e.g. IFCWALL (case-insensitive)"),
			),
			mcp.WithString("predefined_type",
				mcp.Description("Predefined type filter, e.g. SHEAR"),
			),
		},
		build: func(req mcp.CallToolRequest) (ids.Facet, *mcp.CallToolResult) {
			name, errResult := requireString(req, "entity_name")
			if errResult != nil {
				return nil, errResult
			}
			return ids.NewEntity(name, req.GetString("predefined_type", "")), nil
		},
	}, store, logger, maskErrors)
}

func NewPropertyFacetTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *FacetTool {
	return newFacetTool(facetDef{
		toolName:  "add_property_facet",
		facetType: "property",
		description: "Add a property facet to a specification. The property_set parameter " +
			"is required for valid IDS export.",
		params: []mcp.ToolOption{
			mcp.WithString("property_name",
				mcp.Required(),
				mcp.Description("Property name, e.g. FireRating"),
			),
			mcp.WithString("property_set",
				mcp.Required(),
				mcp.Description("Property set name, e.g. Pset_WallCommon"),
			),
			mcp.WithString("data_type",
				mcp.Description("IFC data type, e.g. IFCLABEL"),
			),
			mcp.WithString("value",
				mcp.Description("Required value; leave empty to only require presence"),
			),
			mcp.WithString("property_location",
				mcp.Description("Where to look for the property: 'instance', 'type', or 'any' (default)"),
				mcp.DefaultString("any"),
				mcp.Enum("instance", "type", "any"),
			),
		},
		build: func(req mcp.CallToolRequest) (ids.Facet, *mcp.CallToolResult) {
			name, errResult := requireString(req, "property_name")
			if errResult != nil {
				return nil, errResult
			}
			propLoc, err := ids.ParsePropertyLocation(req.GetString("property_location", ""))
			if err != nil {
				return nil, mcp.NewToolResultError(err.Error())
			}
			return ids.NewProperty(
				req.GetString("property_set", ""),
				name,
				req.GetString("data_type", ""),
				req.GetString("value", ""),
				propLoc,
			), nil
		},
	}, store, logger, maskErrors)
}

func NewAttributeFacetTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *FacetTool {
	return newFacetTool(facetDef{
		toolName:    "add_attribute_facet",
		facetType:   "attribute",
		description: "Add an attribute facet (direct IFC attribute check) to a specification.",
		params: []mcp.ToolOption{
			mcp.WithString("attribute_name",
				mcp.Required(),
				mcp.Description("Attribute name, e.g. Name, Description"),
			),
			mcp.WithString("value",
				mcp.Description("Required value; leave empty to only require presence"),
			),
		},
		build: func(req mcp.CallToolRequest) (ids.Facet, *mcp.CallToolResult) {
			name, errResult := requireString(req, "attribute_name")
			if errResult != nil {
				return nil, errResult
			}
			return ids.NewAttribute(name, req.GetString("value", "")), nil
		},
	}, store, logger, maskErrors)
}

func NewClassificationFacetTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *FacetTool {
	return newFacetTool(facetDef{
		toolName:    "add_classification_facet",
		facetType:   "classification",
		description: "Add a classification facet (classification system reference) to a specification.",
		params: []mcp.ToolOption{
			mcp.WithString("classification_value",
				mcp.Required(),
				mcp.Description("Classification code, e.g. EF_25_10"),
			),
			mcp.WithString("classification_system",
				mcp.Description("Classification system name or URI, e.g. Uniclass"),
			),
		},
		build: func(req mcp.CallToolRequest) (ids.Facet, *mcp.CallToolResult) {
			value, errResult := requireString(req, "classification_value")
			if errResult != nil {
				return nil, errResult
			}
			return ids.NewClassification(value, req.GetString("classification_system", "")), nil
		},
	}, store, logger, maskErrors)
}

func NewMaterialFacetTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *FacetTool {
	return newFacetTool(facetDef{
		toolName:    "add_material_facet",
		facetType:   "material",
		description: "Add a material facet to a specification.",
		params: []mcp.ToolOption{
			mcp.WithString("material_value",
				mcp.Required(),
				mcp.Description("Material name, category, or URI, e.g. concrete"),
			),
		},
		build: func(req mcp.CallToolRequest) (ids.Facet, *mcp.CallToolResult) {
			value, errResult := requireString(req, "material_value")
			if errResult != nil {
				return nil, errResult
			}
			return ids.NewMaterial(value), nil
		},
	}, store, logger, maskErrors)
}

func NewPartOfFacetTool(store *session.Store, logger *zap.SugaredLogger, maskErrors bool) *FacetTool {
	return newFacetTool(facetDef{
		toolName:    "add_partof_facet",
		facetType:   "partof",
		description: "Add a partOf facet (spatial or aggregation relationship) to a specification.",
		params: []mcp.ToolOption{
			mcp.WithString("relation",
				mcp.Required(),
				mcp.Description("Relationship type, e.g. IFCRELCONTAINEDINSPATIALSTRUCTURE"),
			),
			mcp.WithString("parent_entity",
				mcp.Required(),
				mcp.Description("Parent entity name, e.g. IFCSPACE"),
			),
			mcp.WithString("parent_predefined_type",
				mcp.Description("Predefined type filter for the parent entity"),
			),
		},
		build: func(req mcp.CallToolRequest) (ids.Facet, *mcp.CallToolResult) {
			relation, errResult := requireString(req, "relation")
			if errResult != nil {
				return nil, errResult
			}
			parent, errResult := requireString(req, "parent_entity")
			if errResult != nil {
				return nil, errResult
			}
			return ids.NewPartOf(relation, parent, req.GetString("parent_predefined_type", "")), nil
		},
	}, store, logger, maskErrors)
}
