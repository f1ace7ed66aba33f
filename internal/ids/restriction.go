package ids

import "strings"

// BaseType is the XSD base type a restriction constrains.
type BaseType string

const (
	BaseString   BaseType = "string"
	BaseInteger  BaseType = "integer"
	BaseDouble   BaseType = "double"
	BaseBoolean  BaseType = "boolean"
	BaseDate     BaseType = "date"
	BaseTime     BaseType = "time"
	BaseDateTime BaseType = "dateTime"
)

// ParseBaseType validates a base type token, stripping an "xs:" prefix if
// present (callers tend to pass either "string" or "xs:string").
func ParseBaseType(s string) (BaseType, error) {
	s = strings.TrimPrefix(s, "xs:")
	switch BaseType(s) {
	case BaseString, BaseInteger, BaseDouble, BaseBoolean, BaseDate, BaseTime, BaseDateTime:
		return BaseType(s), nil
	}
	return "", newError(KindInvalidBaseType,
		"invalid base type: %q. Must be one of string, integer, double, boolean, date, time, dateTime (an 'xs:' prefix is accepted)", s)
}

// RestrictionKind identifies the single constraint a restriction carries.
type RestrictionKind string

const (
	RestrictionEnumeration RestrictionKind = "enumeration"
	RestrictionPattern     RestrictionKind = "pattern"
	RestrictionBounds      RestrictionKind = "bounds"
	RestrictionLength      RestrictionKind = "length"
)

// Bounds holds numeric bound facets. At least one must be set; internal
// consistency (min vs max) is deferred to export-time schema validation.
type Bounds struct {
	MinInclusive *float64
	MaxInclusive *float64
	MinExclusive *float64
	MaxExclusive *float64
}

// IsZero reports whether no bound is set.
func (b Bounds) IsZero() bool {
	return b.MinInclusive == nil && b.MaxInclusive == nil &&
		b.MinExclusive == nil && b.MaxExclusive == nil
}

// LengthBounds holds string-length facets. Length is mutually exclusive with
// the Min/Max pair.
type LengthBounds struct {
	Length    *int
	MinLength *int
	MaxLength *int
}

// IsZero reports whether no length constraint is set.
func (l LengthBounds) IsZero() bool {
	return l.Length == nil && l.MinLength == nil && l.MaxLength == nil
}

// Restriction is a constrained-value descriptor usable wherever a facet
// expects a scalar value. Each instance carries exactly one constraint kind.
//
// Pattern syntax is stored verbatim and never checked here: a malformed
// regex surfaces as an XsdValidationFailed at export time, matching the
// authoring pipeline's deliberate late-failure behavior.
type Restriction struct {
	Base        BaseType
	Kind        RestrictionKind
	Enumeration []string
	Pattern     string
	Bounds      Bounds
	Length      LengthBounds
}

// RestrictionSpec is the flat input a restriction is built from. Supplying
// parameters of more than one kind is rejected rather than silently picking
// one.
type RestrictionSpec struct {
	Enumeration []string
	Pattern     string
	Bounds      Bounds
	Length      LengthBounds
}

// NewRestriction builds a restriction from flat input, enforcing the
// exactly-one-kind invariant.
func NewRestriction(base BaseType, spec RestrictionSpec) (*Restriction, error) {
	var kinds []RestrictionKind
	if len(spec.Enumeration) > 0 {
		kinds = append(kinds, RestrictionEnumeration)
	}
	if spec.Pattern != "" {
		kinds = append(kinds, RestrictionPattern)
	}
	if !spec.Bounds.IsZero() {
		kinds = append(kinds, RestrictionBounds)
	}
	if !spec.Length.IsZero() {
		kinds = append(kinds, RestrictionLength)
	}

	switch len(kinds) {
	case 0:
		return nil, newError(KindEmptyRestriction,
			"restriction has no constraint: supply enumeration values, a pattern, at least one bound, or a length constraint")
	case 1:
	default:
		tokens := make([]string, len(kinds))
		for i, k := range kinds {
			tokens[i] = string(k)
		}
		return nil, newError(KindConflictingRestrictionKinds,
			"restriction mixes constraint kinds (%s): each restriction carries exactly one kind",
			strings.Join(tokens, ", "))
	}

	r := &Restriction{Base: base, Kind: kinds[0]}
	switch kinds[0] {
	case RestrictionEnumeration:
		// Duplicates are permitted; order is preserved because it affects
		// the serialized enumeration order.
		r.Enumeration = append([]string(nil), spec.Enumeration...)
	case RestrictionPattern:
		r.Pattern = spec.Pattern
	case RestrictionBounds:
		r.Bounds = spec.Bounds
	case RestrictionLength:
		if spec.Length.Length != nil && (spec.Length.MinLength != nil || spec.Length.MaxLength != nil) {
			return nil, newError(KindConflictingLengthConstraint,
				"length restriction supplies both an exact length and a min/max pair: use one form")
		}
		r.Length = spec.Length
	}
	return r, nil
}

// NewEnumerationRestriction builds an enumeration restriction. Values must be
// non-empty.
func NewEnumerationRestriction(base BaseType, values []string) (*Restriction, error) {
	if len(values) == 0 {
		return nil, newError(KindEmptyEnumeration,
			"enumeration restriction requires at least one value")
	}
	return NewRestriction(base, RestrictionSpec{Enumeration: values})
}

// NewPatternRestriction builds a pattern restriction.
func NewPatternRestriction(base BaseType, pattern string) (*Restriction, error) {
	if pattern == "" {
		return nil, newError(KindEmptyPatternRestriction,
			"pattern restriction requires a non-empty pattern")
	}
	return NewRestriction(base, RestrictionSpec{Pattern: pattern})
}

// NewBoundsRestriction builds a numeric bounds restriction. At least one
// bound must be present.
func NewBoundsRestriction(base BaseType, b Bounds) (*Restriction, error) {
	if b.IsZero() {
		return nil, newError(KindEmptyBoundsRestriction,
			"bounds restriction requires at least one of min_inclusive, max_inclusive, min_exclusive, max_exclusive")
	}
	return NewRestriction(base, RestrictionSpec{Bounds: b})
}

// NewLengthRestriction builds a string-length restriction. At least one of
// length or the min/max pair must be present, and the two forms are mutually
// exclusive.
func NewLengthRestriction(base BaseType, l LengthBounds) (*Restriction, error) {
	if l.IsZero() {
		return nil, newError(KindEmptyLengthRestriction,
			"length restriction requires at least one of length, min_length, max_length")
	}
	return NewRestriction(base, RestrictionSpec{Length: l})
}

// ApplyRestriction attaches a restriction to a named parameter of the facet
// at facetIndex within the specification's location list, replacing any
// scalar value previously present.
func ApplyRestriction(spec *Specification, loc Location, facetIndex int, parameter string, r *Restriction) error {
	facets := spec.Facets(loc)
	if facetIndex < 0 || facetIndex >= len(facets) {
		return newError(KindFacetNotFound,
			"facet index %d out of range: location %q of specification %q has %d facet(s)",
			facetIndex, loc, spec.DisplayID(), len(facets))
	}
	facet := facets[facetIndex]
	field := facet.valueField(parameter)
	if field == nil {
		return newError(KindUnknownParameter,
			"parameter %q does not name a value-bearing field on a %s facet", parameter, facet.Kind())
	}
	*field = Value{Restriction: r}
	return nil
}
