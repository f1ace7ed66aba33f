package ids

import "fmt"

// Early validators: pure, synchronous checks that catch schema-shape
// violations at the offending call instead of as an opaque XSD failure at
// export time. They run strictly before any mutation and never touch the
// serialization layer.

// ValidateSingleEntityInApplicability rejects adding a second entity facet
// to a specification's applicability list. The IDS 1.0 XSD allows at most
// one entity per applicability; a second one would produce XML that fails
// schema validation downstream.
func ValidateSingleEntityInApplicability(spec *Specification, proposed FacetKind, loc Location) error {
	if loc != LocationApplicability || proposed != FacetEntity {
		return nil
	}
	if CountFacetsByKind(spec.Applicability, FacetEntity) >= 1 {
		return newErrorWithHint(KindDuplicateEntityInApplicability,
			"WORKAROUND: create a separate specification for each entity type, e.g.\n"+
				"  - Specification 1: applicability = IFCWALL\n"+
				"  - Specification 2: applicability = IFCDOOR",
			"IDS 1.0 allows only ONE entity facet per specification's applicability section; "+
				"specification %q already has one", spec.DisplayID())
	}
	return nil
}

// commonPropertySets is the hint list offered when a property facet arrives
// without a property set.
const commonPropertySets = "COMMON PROPERTY SETS:\n" +
	"  - Pset_WallCommon (walls)\n" +
	"  - Pset_DoorCommon (doors)\n" +
	"  - Pset_WindowCommon (windows)\n" +
	"  - Pset_SpaceCommon (spaces)\n" +
	"  - Pset_SlabCommon (slabs)\n" +
	"  - Pset_BeamCommon (beams)\n" +
	"  - Pset_ColumnCommon (columns)\n" +
	"For custom properties use Pset_Common or an organization-specific set."

// ValidatePropertySetRequired rejects a property facet without a property
// set. The abstract IDS standard technically permits an absent property set;
// this is a constraint imposed by the authoring engine, whose serializer
// requires one for schema-valid output. Catching it here keeps the failure
// at the offending call.
func ValidatePropertySetRequired(propertySet, baseName string) error {
	if isBlank(propertySet) {
		return newErrorWithHint(KindMissingPropertySet, commonPropertySets,
			"property %q must belong to a property set: 'property_set' is required for valid IDS export",
			baseName)
	}
	return nil
}

// CountFacetsByKind counts facets of one kind in a list.
func CountFacetsByKind(facets []Facet, kind FacetKind) int {
	n := 0
	for _, f := range facets {
		if f.Kind() == kind {
			n++
		}
	}
	return n
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// StructureReport is the result of the cheap structural pre-flight, distinct
// from XSD validation.
type StructureReport struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateStructure runs local document checks only: title present, at least
// one specification, and each specification carrying at least one
// applicability facet. It never invokes the schema validator.
func ValidateStructure(doc *Document) StructureReport {
	var report StructureReport

	if doc.Title == "" {
		report.Errors = append(report.Errors, "IDS must have a title")
	}
	if len(doc.Specifications) == 0 {
		report.Errors = append(report.Errors, "IDS must have at least one specification")
	}

	for i, spec := range doc.Specifications {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("Specification %d", i)
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("specification at index %d has no name", i))
		}
		if len(spec.Applicability) == 0 {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"specification %q (index %d) has no applicability facets; at least one is required",
				name, i))
		}
		// loaded documents may carry versions the authoring surface rejects
		for _, v := range spec.IfcVersions {
			if !recognizedIfcVersions[v] {
				report.Warnings = append(report.Warnings, fmt.Sprintf(
					"specification %q uses non-standard IFC version: %s", name, v))
			}
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}
