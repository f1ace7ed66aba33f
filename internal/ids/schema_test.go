package ids

import (
	"strings"
	"testing"
)

func TestValidateXMLAcceptsAuthoredDocument(t *testing.T) {
	doc := buildSampleDocument(t)
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	msgs, err := ValidateXML(data)
	if err != nil {
		t.Fatalf("ValidateXML: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("schema violations on authored document:\n%s", strings.Join(msgs, "\n"))
	}
}

func TestValidateXMLAcceptsMinimalDocument(t *testing.T) {
	doc := NewDocument(Info{Title: "minimal"})
	spec, err := doc.AddSpecification(SpecificationParams{
		Name: "Walls", IfcVersions: []string{"IFC2X3"},
	})
	if err != nil {
		t.Fatalf("AddSpecification: %v", err)
	}
	if _, err := spec.AddFacet(LocationApplicability, NewEntity("IFCWALL", ""), ""); err != nil {
		t.Fatalf("AddFacet: %v", err)
	}

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	msgs, err := ValidateXML(data)
	if err != nil {
		t.Fatalf("ValidateXML: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("schema violations on minimal document:\n%s", strings.Join(msgs, "\n"))
	}
}

func TestValidateXMLRejectsEmptyDocument(t *testing.T) {
	data, err := Marshal(NewDocument(Info{Title: "empty"}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	msgs, err := ValidateXML(data)
	if err != nil {
		t.Fatalf("ValidateXML: %v", err)
	}
	if len(msgs) == 0 {
		t.Fatal("document without specifications produced no schema violations")
	}
}

func TestValidateXMLReportsViolations(t *testing.T) {
	// specification without the required name attribute and with an entity
	// missing its name element
	const raw = `<?xml version="1.0" encoding="UTF-8"?>
<ids xmlns="http://standards.buildingsmart.org/IDS">
  <info><title>bad</title></info>
  <specifications>
    <specification ifcVersion="IFC4">
      <applicability minOccurs="0" maxOccurs="unbounded">
        <entity></entity>
      </applicability>
    </specification>
  </specifications>
</ids>`

	msgs, err := ValidateXML([]byte(raw))
	if err != nil {
		t.Fatalf("ValidateXML: %v", err)
	}
	if len(msgs) == 0 {
		t.Fatal("invalid document produced no schema violations")
	}
}

func TestValidateXMLRejectsUnknownVersionToken(t *testing.T) {
	const raw = `<?xml version="1.0" encoding="UTF-8"?>
<ids xmlns="http://standards.buildingsmart.org/IDS">
  <info><title>bad</title></info>
  <specifications>
    <specification name="s" ifcVersion="IFC99">
      <applicability minOccurs="0" maxOccurs="unbounded">
        <entity><name><simpleValue>IFCWALL</simpleValue></name></entity>
      </applicability>
    </specification>
  </specifications>
</ids>`

	msgs, err := ValidateXML([]byte(raw))
	if err != nil {
		t.Fatalf("ValidateXML: %v", err)
	}
	if len(msgs) == 0 {
		t.Fatal("unknown ifcVersion token produced no schema violations")
	}
}
