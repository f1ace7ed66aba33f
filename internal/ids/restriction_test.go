package ids

import (
	"testing"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestParseBaseType(t *testing.T) {
	tests := []struct {
		in      string
		want    BaseType
		wantErr bool
	}{
		{in: "string", want: BaseString},
		{in: "xs:double", want: BaseDouble},
		{in: "dateTime", want: BaseDateTime},
		{in: "float", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseBaseType(tt.in)
		if tt.wantErr {
			if KindOf(err) != KindInvalidBaseType {
				t.Errorf("ParseBaseType(%q) err = %v, want kind %s", tt.in, err, KindInvalidBaseType)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseBaseType(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestNewRestrictionExactlyOneKind(t *testing.T) {
	_, err := NewRestriction(BaseString, RestrictionSpec{})
	if KindOf(err) != KindEmptyRestriction {
		t.Errorf("empty spec err = %v, want kind %s", err, KindEmptyRestriction)
	}

	_, err = NewRestriction(BaseString, RestrictionSpec{
		Enumeration: []string{"A"},
		Pattern:     "B.*",
	})
	if KindOf(err) != KindConflictingRestrictionKinds {
		t.Errorf("mixed spec err = %v, want kind %s", err, KindConflictingRestrictionKinds)
	}

	r, err := NewRestriction(BaseInteger, RestrictionSpec{
		Bounds: Bounds{MinInclusive: floatPtr(0), MaxExclusive: floatPtr(10)},
	})
	if err != nil {
		t.Fatalf("bounds spec: %v", err)
	}
	if r.Kind != RestrictionBounds || r.Base != BaseInteger {
		t.Errorf("restriction = %+v, want bounds on integer", r)
	}
}

func TestNewEnumerationRestriction(t *testing.T) {
	_, err := NewEnumerationRestriction(BaseString, nil)
	if KindOf(err) != KindEmptyEnumeration {
		t.Errorf("empty enumeration err = %v, want kind %s", err, KindEmptyEnumeration)
	}

	r, err := NewEnumerationRestriction(BaseString, []string{"FIRE", "ACOUSTIC"})
	if err != nil {
		t.Fatalf("NewEnumerationRestriction: %v", err)
	}
	if len(r.Enumeration) != 2 || r.Enumeration[0] != "FIRE" {
		t.Errorf("enumeration = %v, want order preserved", r.Enumeration)
	}
}

// The kind tag of an empty-input failure must name the constraint family of
// the constructor that produced it.
func TestEmptyRestrictionKindsMatchConstraintFamily(t *testing.T) {
	_, err := NewPatternRestriction(BaseString, "")
	if KindOf(err) != KindEmptyPatternRestriction {
		t.Errorf("empty pattern err = %v, want kind %s", err, KindEmptyPatternRestriction)
	}

	_, err = NewBoundsRestriction(BaseDouble, Bounds{})
	if KindOf(err) != KindEmptyBoundsRestriction {
		t.Errorf("empty bounds err = %v, want kind %s", err, KindEmptyBoundsRestriction)
	}
}

func TestNewLengthRestriction(t *testing.T) {
	_, err := NewLengthRestriction(BaseString, LengthBounds{})
	if KindOf(err) != KindEmptyLengthRestriction {
		t.Errorf("empty length err = %v, want kind %s", err, KindEmptyLengthRestriction)
	}

	_, err = NewLengthRestriction(BaseString, LengthBounds{
		Length: intPtr(5), MaxLength: intPtr(8),
	})
	if KindOf(err) != KindConflictingLengthConstraint {
		t.Errorf("exact+max err = %v, want kind %s", err, KindConflictingLengthConstraint)
	}

	r, err := NewLengthRestriction(BaseString, LengthBounds{
		MinLength: intPtr(2), MaxLength: intPtr(8),
	})
	if err != nil {
		t.Fatalf("NewLengthRestriction: %v", err)
	}
	if r.Kind != RestrictionLength {
		t.Errorf("kind = %q, want length", r.Kind)
	}
}

func TestApplyRestriction(t *testing.T) {
	spec := &Specification{Name: "s"}
	prop := NewProperty("Pset_WallCommon", "FireRating", "IFCLABEL", "placeholder", PropertyAnywhere)
	idx, err := spec.AddFacet(LocationRequirements, prop, "")
	if err != nil {
		t.Fatalf("AddFacet: %v", err)
	}

	r, err := NewEnumerationRestriction(BaseString, []string{"REI30", "REI60"})
	if err != nil {
		t.Fatalf("NewEnumerationRestriction: %v", err)
	}

	if err := ApplyRestriction(spec, LocationRequirements, idx, "value", r); err != nil {
		t.Fatalf("ApplyRestriction: %v", err)
	}
	got := spec.Requirements[idx].(*Property).Value
	if got.Restriction != r {
		t.Errorf("value restriction not attached")
	}
	if got.Simple != "" {
		t.Errorf("scalar value %q not cleared by restriction", got.Simple)
	}

	err = ApplyRestriction(spec, LocationRequirements, 7, "value", r)
	if KindOf(err) != KindFacetNotFound {
		t.Errorf("out-of-range err = %v, want kind %s", err, KindFacetNotFound)
	}
	err = ApplyRestriction(spec, LocationRequirements, idx, "dataType", r)
	if KindOf(err) != KindUnknownParameter {
		t.Errorf("bad parameter err = %v, want kind %s", err, KindUnknownParameter)
	}
}

func TestApplyRestrictionPartOfTargetsParentEntity(t *testing.T) {
	spec := &Specification{Name: "s"}
	idx, err := spec.AddFacet(LocationApplicability,
		NewPartOf("ifcrelaggregates", "IFCBUILDINGSTOREY", ""), "")
	if err != nil {
		t.Fatalf("AddFacet: %v", err)
	}

	r, err := NewPatternRestriction(BaseString, "IFCBUILDING.*")
	if err != nil {
		t.Fatalf("NewPatternRestriction: %v", err)
	}
	if err := ApplyRestriction(spec, LocationApplicability, idx, "name", r); err != nil {
		t.Fatalf("ApplyRestriction: %v", err)
	}

	partOf := spec.Applicability[idx].(*PartOf)
	if partOf.Parent.Name.Restriction != r {
		t.Errorf("restriction not routed to parent entity name")
	}
	if partOf.Relation != "IFCRELAGGREGATES" {
		t.Errorf("relation = %q, want uppercase", partOf.Relation)
	}
}
