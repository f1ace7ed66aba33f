// Package server wires all components and creates the MCP server instance.
//
// This is the composition root: it builds the logger, the session store and
// its sweeper, the external checkers, and registers every tool. No business
// logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/check"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/config"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/session"
	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function stops the session sweeper and flushes the
// logger; it must be called on shutdown and is always non-nil.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, func() {}, fmt.Errorf("creating logger: %w", err)
	}
	sugar := logger.Sugar()

	store := session.NewStore()
	auditor := check.NewAuditor(cfg.AuditTool)
	checker := check.NewModelChecker(cfg.ModelCheckerPath)

	s := server.NewMCPServer(
		"ifc-ids-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	mask := cfg.MaskErrors

	createTool := tools.NewCreateTool(store, sugar, mask)
	s.AddTool(createTool.Definition(), createTool.Handle)

	loadTool := tools.NewLoadTool(store, sugar, mask)
	s.AddTool(loadTool.Definition(), loadTool.Handle)

	exportTool := tools.NewExportTool(store, sugar, mask)
	s.AddTool(exportTool.Definition(), exportTool.Handle)

	infoTool := tools.NewInfoTool(store, sugar, mask)
	s.AddTool(infoTool.Definition(), infoTool.Handle)

	specTool := tools.NewSpecificationTool(store, sugar, mask)
	s.AddTool(specTool.Definition(), specTool.Handle)

	for _, facetTool := range []*tools.FacetTool{
		tools.NewEntityFacetTool(store, sugar, mask),
		tools.NewPropertyFacetTool(store, sugar, mask),
		tools.NewAttributeFacetTool(store, sugar, mask),
		tools.NewClassificationFacetTool(store, sugar, mask),
		tools.NewMaterialFacetTool(store, sugar, mask),
		tools.NewPartOfFacetTool(store, sugar, mask),
	} {
		s.AddTool(facetTool.Definition(), facetTool.Handle)
	}

	for _, restrictionTool := range []*tools.RestrictionTool{
		tools.NewEnumerationRestrictionTool(store, sugar, mask),
		tools.NewPatternRestrictionTool(store, sugar, mask),
		tools.NewBoundsRestrictionTool(store, sugar, mask),
		tools.NewLengthRestrictionTool(store, sugar, mask),
	} {
		s.AddTool(restrictionTool.Definition(), restrictionTool.Handle)
	}

	validateTool := tools.NewValidateTool(store, auditor, sugar, mask)
	s.AddTool(validateTool.Definition(), validateTool.Handle)

	modelTool := tools.NewModelValidateTool(store, checker, sugar, mask)
	s.AddTool(modelTool.Definition(), modelTool.Handle)

	sweeper := session.NewSweeper(store, cfg.SessionTimeout, cfg.CleanupInterval, sugar)
	sweeper.Start()

	cleanup := func() {
		sweeper.Stop()
		_ = logger.Sync()
	}

	sugar.Infow("server configured",
		"version", Version,
		"session_timeout", cfg.SessionTimeout,
		"audit_tool", cfg.AuditTool.Enabled,
		"model_checker", checker.Available())

	return s, cleanup, nil
}

// newLogger builds a production zap logger writing to stderr. Stdout belongs
// to the MCP stdio transport and must stay clean.
func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = parsed

	return cfg.Build()
}

// serverInstructions teaches calling agents the rules that trip them up
// most: the single-entity constraint and the mandatory property set.
func serverInstructions() string {
	return `This server builds buildingSMART IDS 1.0 documents incrementally.
Each conversation works on its own draft; export_ids produces the final XML.

Typical flow:
  1. create_ids - start a document with a title
  2. add_specification - one per requirement group
  3. add_*_facet - applicability facets select elements, requirement facets state what must hold
  4. add_*_restriction - replace a facet parameter's fixed value with an allowed-values list, pattern, bounds, or length constraint
  5. validate_ids, then export_ids

Rules that matter:
- IDS 1.0 allows only ONE entity facet per specification's applicability. One specification per entity type.
- Property facets need a property_set (e.g. Pset_WallCommon) or the export will not validate.
- Facet indexes returned by add_*_facet address facets in restriction calls; they are per-location and stable.
- Cardinality (required/optional/prohibited) applies to requirement facets only.`
}
