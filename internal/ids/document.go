package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTitle is assigned when a document is created without one.
const DefaultTitle = "Untitled"

// MaxOccursUnbounded is the sentinel for an unlimited specification cardinality.
const MaxOccursUnbounded = "unbounded"

// recognized IFC schema version tokens, normalized form.
var recognizedIfcVersions = map[string]bool{
	"IFC2X3": true,
	"IFC4":   true,
	"IFC4X3": true,
}

// Info is the document metadata block. Title is the only required field.
type Info struct {
	Title       string
	Author      string
	Version     string
	Date        string
	Description string
	Copyright   string
	Milestone   string
	Purpose     string
}

// Document is one logical IDS file under construction. Specification order
// is significant: it drives export order and sequential identifier
// assignment.
type Document struct {
	Info
	Specifications []*Specification
}

// NewDocument creates a document, defaulting the title when unset.
func NewDocument(info Info) *Document {
	if info.Title == "" {
		info.Title = DefaultTitle
	}
	return &Document{Info: info}
}

// Specification is one named requirement unit: an applicability facet list
// selecting elements and a requirements facet list stating what must hold
// for them.
type Specification struct {
	Name         string
	Identifier   string
	Description  string
	Instructions string
	IfcVersions  []string
	MinOccurs    int
	MaxOccurs    string // decimal text or MaxOccursUnbounded

	Applicability []Facet
	Requirements  []Facet
}

// DisplayID returns the token the specification is addressed by: its
// identifier when assigned, otherwise its name.
func (s *Specification) DisplayID() string {
	if s.Identifier != "" {
		return s.Identifier
	}
	return s.Name
}

// Facets returns the facet list at loc.
func (s *Specification) Facets(loc Location) []Facet {
	if loc == LocationRequirements {
		return s.Requirements
	}
	return s.Applicability
}

// AddFacet appends a facet to the list at loc after running the early
// validators against the proposed addition. Cardinality applies only to
// requirements-positioned facets (and never to entity facets); for
// applicability it is silently dropped because the field is not meaningful
// there. Returns the appended facet's index within the list, its only
// addressable identity.
func (s *Specification) AddFacet(loc Location, f Facet, card Cardinality) (int, error) {
	if err := ValidateSingleEntityInApplicability(s, f.Kind(), loc); err != nil {
		return 0, err
	}
	if p, ok := f.(*Property); ok && p.PropertySet.Restriction == nil {
		if err := ValidatePropertySetRequired(p.PropertySet.Simple, p.BaseName.Simple); err != nil {
			return 0, err
		}
	}

	if loc == LocationRequirements {
		if c, ok := f.(cardinal); ok {
			if card == "" {
				card = CardinalityRequired
			}
			c.setCardinality(card)
		}
	}

	switch loc {
	case LocationApplicability:
		s.Applicability = append(s.Applicability, f)
		return len(s.Applicability) - 1, nil
	case LocationRequirements:
		s.Requirements = append(s.Requirements, f)
		return len(s.Requirements) - 1, nil
	}
	return 0, newError(KindInvalidLocation,
		"invalid location: %q. Must be 'applicability' or 'requirements'", loc)
}

// SpecificationParams is the flat input AddSpecification builds from.
type SpecificationParams struct {
	Name         string
	Identifier   string
	Description  string
	Instructions string
	IfcVersions  []string
	MinOccurs    int
	MaxOccurs    string // empty means unbounded
}

// AddSpecification validates, normalizes, and appends a new specification.
// An unset identifier receives the next free sequential token ("S1", "S2",
// ...). IFC version tokens are matched case-insensitively and stored
// uppercase.
func (d *Document) AddSpecification(p SpecificationParams) (*Specification, error) {
	versions, err := NormalizeIfcVersions(p.IfcVersions)
	if err != nil {
		return nil, err
	}

	if p.MinOccurs < 0 {
		return nil, newError(KindInvalidCardinalityBounds,
			"min_occurs must be >= 0, got %d", p.MinOccurs)
	}
	maxOccurs := p.MaxOccurs
	if maxOccurs == "" {
		maxOccurs = MaxOccursUnbounded
	}
	if maxOccurs != MaxOccursUnbounded {
		n, convErr := strconv.Atoi(maxOccurs)
		if convErr != nil {
			return nil, newError(KindInvalidCardinalityBounds,
				"max_occurs must be a non-negative integer or %q, got %q", MaxOccursUnbounded, maxOccurs)
		}
		if n < p.MinOccurs {
			return nil, newError(KindInvalidCardinalityBounds,
				"max_occurs (%d) must be >= min_occurs (%d)", n, p.MinOccurs)
		}
	}

	identifier := p.Identifier
	if identifier == "" {
		identifier = d.nextIdentifier()
	}

	spec := &Specification{
		Name:         p.Name,
		Identifier:   identifier,
		Description:  p.Description,
		Instructions: p.Instructions,
		IfcVersions:  versions,
		MinOccurs:    p.MinOccurs,
		MaxOccurs:    maxOccurs,
	}
	d.Specifications = append(d.Specifications, spec)
	return spec, nil
}

// nextIdentifier returns the first "S{n}" token not already taken by an
// explicitly assigned identifier, starting from the specification count.
func (d *Document) nextIdentifier() string {
	taken := make(map[string]bool, len(d.Specifications))
	for _, s := range d.Specifications {
		taken[s.Identifier] = true
	}
	for n := len(d.Specifications) + 1; ; n++ {
		candidate := fmt.Sprintf("S%d", n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// FindSpecification resolves a specification by identifier first, then by
// exact name. Identifiers and names share a lookup namespace; the identifier
// scan runs over the whole document before the name scan, so a name that
// collides with another specification's identifier resolves to the
// identifier's owner. That tie-break is deliberate and stable.
func (d *Document) FindSpecification(specID string) (*Specification, error) {
	for _, s := range d.Specifications {
		if s.Identifier == specID {
			return s, nil
		}
	}
	for _, s := range d.Specifications {
		if s.Name == specID {
			return s, nil
		}
	}
	return nil, newErrorWithHint(KindSpecificationNotFound,
		"Use get_ids_info to list the current specifications and their identifiers.",
		"specification not found: %q", specID)
}

// NormalizeIfcVersions uppercases and validates version tokens against the
// recognized set {IFC2X3, IFC4, IFC4X3}. All offending tokens are reported,
// not just the first.
func NormalizeIfcVersions(versions []string) ([]string, error) {
	if len(versions) == 0 {
		return nil, newError(KindInvalidIfcVersion,
			"at least one IFC version is required. Valid versions: IFC2X3, IFC4, IFC4X3")
	}
	normalized := make([]string, 0, len(versions))
	var invalid []string
	for _, v := range versions {
		upper := strings.ToUpper(strings.TrimSpace(v))
		if !recognizedIfcVersions[upper] {
			invalid = append(invalid, v)
			continue
		}
		normalized = append(normalized, upper)
	}
	if len(invalid) > 0 {
		return nil, newError(KindInvalidIfcVersion,
			"invalid IFC version(s): %s. Valid versions: IFC2X3, IFC4, IFC4X3",
			strings.Join(invalid, ", "))
	}
	return normalized, nil
}
