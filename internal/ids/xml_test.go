package ids

import (
	"bytes"
	"strings"
	"testing"
)

// buildSampleDocument assembles a document exercising every facet kind and
// every restriction kind.
func buildSampleDocument(t *testing.T) *Document {
	t.Helper()

	doc := NewDocument(Info{
		Title:       "Fire safety requirements",
		Author:      "reviewer@example.com",
		Version:     "1.2.0",
		Date:        "2026-08-26",
		Description: "Wall & door <checks>",
	})

	spec, err := doc.AddSpecification(SpecificationParams{
		Name:         "Load bearing walls",
		Description:  "All load bearing walls",
		Instructions: "Model walls as IfcWall",
		IfcVersions:  []string{"IFC4", "IFC4X3"},
		MinOccurs:    1,
	})
	if err != nil {
		t.Fatalf("AddSpecification: %v", err)
	}

	mustAdd := func(loc Location, f Facet, card Cardinality) int {
		t.Helper()
		idx, err := spec.AddFacet(loc, f, card)
		if err != nil {
			t.Fatalf("AddFacet(%s): %v", f.Kind(), err)
		}
		return idx
	}

	mustAdd(LocationApplicability, NewEntity("IfcWall", "SHEAR"), "")
	mustAdd(LocationApplicability, NewPartOf("IFCRELAGGREGATES", "IFCBUILDINGSTOREY", ""), "")
	mustAdd(LocationApplicability, NewAttribute("Name", ""), "")

	propIdx := mustAdd(LocationRequirements,
		NewProperty("Pset_WallCommon", "FireRating", "IFCLABEL", "", PropertyOnInstance),
		CardinalityRequired)
	mustAdd(LocationRequirements, NewClassification("", "Uniclass"), CardinalityOptional)
	mustAdd(LocationRequirements, NewMaterial("concrete"), CardinalityProhibited)
	attrIdx := mustAdd(LocationRequirements, NewAttribute("LoadBearing", "TRUE"), "")

	enum, err := NewEnumerationRestriction(BaseString, []string{"REI30", "REI60", "REI90"})
	if err != nil {
		t.Fatalf("NewEnumerationRestriction: %v", err)
	}
	if err := ApplyRestriction(spec, LocationRequirements, propIdx, "value", enum); err != nil {
		t.Fatalf("ApplyRestriction(enum): %v", err)
	}

	bounds, err := NewBoundsRestriction(BaseDouble, Bounds{
		MinInclusive: floatPtr(0.05), MaxExclusive: floatPtr(1),
	})
	if err != nil {
		t.Fatalf("NewBoundsRestriction: %v", err)
	}
	if err := ApplyRestriction(spec, LocationRequirements, attrIdx, "value", bounds); err != nil {
		t.Fatalf("ApplyRestriction(bounds): %v", err)
	}

	length, err := NewLengthRestriction(BaseString, LengthBounds{MinLength: intPtr(1), MaxLength: intPtr(64)})
	if err != nil {
		t.Fatalf("NewLengthRestriction: %v", err)
	}
	if err := ApplyRestriction(spec, LocationRequirements, attrIdx, "name", length); err != nil {
		t.Fatalf("ApplyRestriction(length): %v", err)
	}

	pattern, err := NewPatternRestriction(BaseString, "IFCBUILDINGSTOREY|IFCBUILDING")
	if err != nil {
		t.Fatalf("NewPatternRestriction: %v", err)
	}
	if err := ApplyRestriction(spec, LocationApplicability, 1, "name", pattern); err != nil {
		t.Fatalf("ApplyRestriction(pattern): %v", err)
	}

	return doc
}

func TestMarshalShape(t *testing.T) {
	doc := buildSampleDocument(t)
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	xml := string(data)

	for _, want := range []string{
		`xmlns="http://standards.buildingsmart.org/IDS"`,
		`xmlns:xs="http://www.w3.org/2001/XMLSchema"`,
		"<title>Fire safety requirements</title>",
		"Wall &amp; door &lt;checks&gt;",
		`ifcVersion="IFC4 IFC4X3"`,
		`identifier="S1"`,
		`<applicability minOccurs="1" maxOccurs="unbounded">`,
		`<xs:restriction base="xs:string">`,
		`<xs:restriction base="xs:double">`,
		`<xs:enumeration value="REI30"/>`,
		`<xs:pattern value="IFCBUILDINGSTOREY|IFCBUILDING"/>`,
		`<xs:minInclusive value="0.05"/>`,
		`<xs:maxExclusive value="1"/>`,
		`<xs:minLength value="1"/>`,
		`<xs:maxLength value="64"/>`,
		`<property dataType="IFCLABEL" location="instance" cardinality="required">`,
		`<classification cardinality="optional">`,
		`<material cardinality="prohibited">`,
		`<simpleValue>IFCWALL</simpleValue>`,
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("marshaled document missing %q", want)
		}
	}

	// applicability facets never carry cardinality and entity facets never
	// carry one anywhere
	applicability := xml[strings.Index(xml, "<applicability"):strings.Index(xml, "</applicability>")]
	if strings.Contains(applicability[1:], "cardinality=") {
		t.Errorf("applicability section carries cardinality:\n%s", applicability)
	}
	if strings.Contains(xml, "<entity cardinality") {
		t.Errorf("entity facet carries cardinality")
	}
}

func TestMarshalGroupsFacetsInSchemaOrder(t *testing.T) {
	doc := NewDocument(Info{Title: "t"})
	spec, err := doc.AddSpecification(SpecificationParams{
		Name: "s", IfcVersions: []string{"IFC4"},
	})
	if err != nil {
		t.Fatalf("AddSpecification: %v", err)
	}
	// append in reverse of the schema order
	for _, f := range []Facet{
		NewMaterial("steel"),
		NewProperty("Pset_X", "Y", "", "", PropertyAnywhere),
		NewAttribute("Name", ""),
		NewClassification("EF_25_10", "Uniclass"),
		NewPartOf("IFCRELAGGREGATES", "IFCSITE", ""),
		NewEntity("IFCWALL", ""),
	} {
		if _, err := spec.AddFacet(LocationRequirements, f, ""); err != nil {
			t.Fatalf("AddFacet(%s): %v", f.Kind(), err)
		}
	}

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	xml := string(data)
	last := -1
	for _, tag := range []string{"<entity>", "<partOf", "<classification", "<attribute", "<property", "<material"} {
		pos := strings.Index(xml, tag)
		if pos < 0 {
			t.Fatalf("marshaled document missing %q", tag)
		}
		if pos < last {
			t.Errorf("%q serialized out of schema order", tag)
		}
		last = pos
	}
}

func TestRoundTrip(t *testing.T) {
	doc := buildSampleDocument(t)
	first, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	parsed, err := Unmarshal(first)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if parsed.Title != doc.Title {
		t.Errorf("title = %q, want %q", parsed.Title, doc.Title)
	}
	if len(parsed.Specifications) != 1 {
		t.Fatalf("specifications = %d, want 1", len(parsed.Specifications))
	}
	spec := parsed.Specifications[0]
	if spec.MinOccurs != 1 || spec.MaxOccurs != MaxOccursUnbounded {
		t.Errorf("occurs = %d/%q, want 1/unbounded", spec.MinOccurs, spec.MaxOccurs)
	}
	if len(spec.Applicability) != 3 || len(spec.Requirements) != 4 {
		t.Fatalf("facet counts = %d/%d, want 3/4",
			len(spec.Applicability), len(spec.Requirements))
	}

	second, err := Marshal(parsed)
	if err != nil {
		t.Fatalf("Marshal(parsed): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip not stable:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestUnmarshalForeignDocument(t *testing.T) {
	// documents authored elsewhere: prefixed elements, extension IFC
	// version, no identifiers
	const raw = `<?xml version="1.0" encoding="UTF-8"?>
<ids:ids xmlns:ids="http://standards.buildingsmart.org/IDS" xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <ids:info><ids:title>External</ids:title></ids:info>
  <ids:specifications>
    <ids:specification name="Doors" ifcVersion="IFC4X3_ADD2 ifc4">
      <ids:applicability minOccurs="0" maxOccurs="unbounded">
        <ids:entity><ids:name><ids:simpleValue>IFCDOOR</ids:simpleValue></ids:name></ids:entity>
      </ids:applicability>
      <ids:requirements>
        <ids:property dataType="IFCLABEL">
          <ids:propertySet><ids:simpleValue>Pset_DoorCommon</ids:simpleValue></ids:propertySet>
          <ids:baseName><ids:simpleValue>FireRating</ids:simpleValue></ids:baseName>
          <ids:value>
            <xs:restriction base="xs:string">
              <xs:enumeration value="A"/>
              <xs:enumeration value="B"/>
            </xs:restriction>
          </ids:value>
        </ids:property>
      </ids:requirements>
    </ids:specification>
  </ids:specifications>
</ids:ids>`

	doc, err := Unmarshal([]byte(raw))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	spec := doc.Specifications[0]
	if got := strings.Join(spec.IfcVersions, ","); got != "IFC4X3_ADD2,IFC4" {
		t.Errorf("IfcVersions = %q, want lenient uppercase tokens", got)
	}
	prop := spec.Requirements[0].(*Property)
	if prop.Cardinality != CardinalityRequired {
		t.Errorf("cardinality = %q, want required default", prop.Cardinality)
	}
	r := prop.Value.Restriction
	if r == nil || r.Kind != RestrictionEnumeration || len(r.Enumeration) != 2 {
		t.Fatalf("value restriction = %+v, want 2-value enumeration", r)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not xml at all"))
	if KindOf(err) != KindParseFailed {
		t.Fatalf("err = %v, want kind %s", err, KindParseFailed)
	}
}
