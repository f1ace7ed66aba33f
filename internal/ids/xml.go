package ids

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Wire format constants. The document shape is fixed by the buildingSMART
// IDS 1.0 XSD; facet values serialize as either a simpleValue or an
// xs:restriction element.
const (
	idsNamespace      = "http://standards.buildingsmart.org/IDS"
	xsNamespace       = "http://www.w3.org/2001/XMLSchema"
	xsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"
	idsSchemaLocation = idsNamespace + " http://standards.buildingsmart.org/IDS/1.0/ids.xsd"
)

// facetKindOrder is the serialization order the schema imposes on each facet
// list. In-memory lists keep append order; the codec groups by kind.
var facetKindOrder = []FacetKind{
	FacetEntity, FacetPartOf, FacetClassification,
	FacetAttribute, FacetProperty, FacetMaterial,
}

// Marshal serializes the document to IDS 1.0 XML. Output is deterministic:
// element order follows the schema and list order is preserved within each
// facet kind.
func Marshal(doc *Document) ([]byte, error) {
	w := &xmlWriter{}
	w.b.WriteString(xml.Header)

	w.open("ids",
		attr{"xmlns", idsNamespace},
		attr{"xmlns:xs", xsNamespace},
		attr{"xmlns:xsi", xsiNamespace},
		attr{"xsi:schemaLocation", idsSchemaLocation},
	)

	w.open("info")
	w.leaf("title", doc.Title)
	w.optLeaf("copyright", doc.Copyright)
	w.optLeaf("version", doc.Version)
	w.optLeaf("description", doc.Description)
	w.optLeaf("author", doc.Author)
	w.optLeaf("date", doc.Date)
	w.optLeaf("purpose", doc.Purpose)
	w.optLeaf("milestone", doc.Milestone)
	w.close("info")

	w.open("specifications")
	for _, spec := range doc.Specifications {
		writeSpecification(w, spec)
	}
	w.close("specifications")

	w.close("ids")
	return w.b.Bytes(), nil
}

func writeSpecification(w *xmlWriter, spec *Specification) {
	attrs := []attr{
		{"name", spec.Name},
		{"ifcVersion", strings.Join(spec.IfcVersions, " ")},
	}
	attrs = appendOptAttr(attrs, "identifier", spec.Identifier)
	attrs = appendOptAttr(attrs, "description", spec.Description)
	attrs = appendOptAttr(attrs, "instructions", spec.Instructions)
	w.open("specification", attrs...)

	maxOccurs := spec.MaxOccurs
	if maxOccurs == "" {
		maxOccurs = MaxOccursUnbounded
	}
	w.open("applicability",
		attr{"minOccurs", strconv.Itoa(spec.MinOccurs)},
		attr{"maxOccurs", maxOccurs},
	)
	writeFacetList(w, spec.Applicability, false)
	w.close("applicability")

	if len(spec.Requirements) > 0 {
		w.open("requirements")
		writeFacetList(w, spec.Requirements, true)
		w.close("requirements")
	}

	w.close("specification")
}

func writeFacetList(w *xmlWriter, facets []Facet, withCardinality bool) {
	for _, kind := range facetKindOrder {
		for _, f := range facets {
			if f.Kind() == kind {
				writeFacet(w, f, withCardinality)
			}
		}
	}
}

func writeFacet(w *xmlWriter, f Facet, withCardinality bool) {
	switch facet := f.(type) {
	case *Entity:
		w.open("entity")
		writeValue(w, "name", facet.Name)
		writeValue(w, "predefinedType", facet.PredefinedType)
		w.close("entity")

	case *PartOf:
		attrs := []attr{{"relation", facet.Relation}}
		if withCardinality {
			attrs = appendOptAttr(attrs, "cardinality", string(facet.Cardinality))
		}
		w.open("partOf", attrs...)
		w.open("entity")
		writeValue(w, "name", facet.Parent.Name)
		writeValue(w, "predefinedType", facet.Parent.PredefinedType)
		w.close("entity")
		w.close("partOf")

	case *Classification:
		var attrs []attr
		if withCardinality {
			attrs = appendOptAttr(attrs, "cardinality", string(facet.Cardinality))
		}
		w.open("classification", attrs...)
		writeValue(w, "value", facet.Value)
		writeValue(w, "system", facet.System)
		w.close("classification")

	case *Attribute:
		var attrs []attr
		if withCardinality {
			attrs = appendOptAttr(attrs, "cardinality", string(facet.Cardinality))
		}
		w.open("attribute", attrs...)
		writeValue(w, "name", facet.Name)
		writeValue(w, "value", facet.Value)
		w.close("attribute")

	case *Property:
		var attrs []attr
		attrs = appendOptAttr(attrs, "dataType", facet.DataType)
		if facet.Location != "" && facet.Location != PropertyAnywhere {
			attrs = append(attrs, attr{"location", string(facet.Location)})
		}
		if withCardinality {
			attrs = appendOptAttr(attrs, "cardinality", string(facet.Cardinality))
		}
		w.open("property", attrs...)
		writeValue(w, "propertySet", facet.PropertySet)
		writeValue(w, "baseName", facet.BaseName)
		writeValue(w, "value", facet.Value)
		w.close("property")

	case *Material:
		var attrs []attr
		if withCardinality {
			attrs = appendOptAttr(attrs, "cardinality", string(facet.Cardinality))
		}
		w.open("material", attrs...)
		writeValue(w, "value", facet.Value)
		w.close("material")
	}
}

func writeValue(w *xmlWriter, name string, v Value) {
	if v.IsZero() {
		return
	}
	w.open(name)
	if v.Restriction != nil {
		writeRestriction(w, v.Restriction)
	} else {
		w.leaf("simpleValue", v.Simple)
	}
	w.close(name)
}

func writeRestriction(w *xmlWriter, r *Restriction) {
	w.open("xs:restriction", attr{"base", "xs:" + string(r.Base)})
	switch r.Kind {
	case RestrictionEnumeration:
		for _, v := range r.Enumeration {
			w.empty("xs:enumeration", attr{"value", v})
		}
	case RestrictionPattern:
		w.empty("xs:pattern", attr{"value", r.Pattern})
	case RestrictionBounds:
		writeBound(w, "xs:minInclusive", r.Bounds.MinInclusive)
		writeBound(w, "xs:maxInclusive", r.Bounds.MaxInclusive)
		writeBound(w, "xs:minExclusive", r.Bounds.MinExclusive)
		writeBound(w, "xs:maxExclusive", r.Bounds.MaxExclusive)
	case RestrictionLength:
		writeLength(w, "xs:length", r.Length.Length)
		writeLength(w, "xs:minLength", r.Length.MinLength)
		writeLength(w, "xs:maxLength", r.Length.MaxLength)
	}
	w.close("xs:restriction")
}

func writeBound(w *xmlWriter, name string, v *float64) {
	if v != nil {
		w.empty(name, attr{"value", strconv.FormatFloat(*v, 'g', -1, 64)})
	}
}

func writeLength(w *xmlWriter, name string, v *int) {
	if v != nil {
		w.empty(name, attr{"value", strconv.Itoa(*v)})
	}
}

// --- writer ---

type attr struct{ name, value string }

func appendOptAttr(attrs []attr, name, value string) []attr {
	if value == "" {
		return attrs
	}
	return append(attrs, attr{name, value})
}

// xmlWriter emits indented XML with escaping. A hand-rolled writer keeps the
// namespace prefixes and element order under direct control, which
// encoding/xml's marshaler does not offer for prefixed output.
type xmlWriter struct {
	b     bytes.Buffer
	depth int
}

func (w *xmlWriter) indent() {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString("  ")
	}
}

func (w *xmlWriter) writeAttrs(attrs []attr) {
	for _, a := range attrs {
		w.b.WriteByte(' ')
		w.b.WriteString(a.name)
		w.b.WriteString(`="`)
		_ = xml.EscapeText(&w.b, []byte(a.value))
		w.b.WriteByte('"')
	}
}

func (w *xmlWriter) open(name string, attrs ...attr) {
	w.indent()
	w.b.WriteByte('<')
	w.b.WriteString(name)
	w.writeAttrs(attrs)
	w.b.WriteString(">\n")
	w.depth++
}

func (w *xmlWriter) close(name string) {
	w.depth--
	w.indent()
	w.b.WriteString("</")
	w.b.WriteString(name)
	w.b.WriteString(">\n")
}

func (w *xmlWriter) leaf(name, text string) {
	w.indent()
	w.b.WriteByte('<')
	w.b.WriteString(name)
	w.b.WriteByte('>')
	_ = xml.EscapeText(&w.b, []byte(text))
	w.b.WriteString("</")
	w.b.WriteString(name)
	w.b.WriteString(">\n")
}

func (w *xmlWriter) optLeaf(name, text string) {
	if text != "" {
		w.leaf(name, text)
	}
}

func (w *xmlWriter) empty(name string, attrs ...attr) {
	w.indent()
	w.b.WriteByte('<')
	w.b.WriteString(name)
	w.writeAttrs(attrs)
	w.b.WriteString("/>\n")
}

// --- decoding ---

type xmlDocument struct {
	XMLName        xml.Name           `xml:"ids"`
	Info           xmlInfo            `xml:"info"`
	Specifications []xmlSpecification `xml:"specifications>specification"`
}

type xmlInfo struct {
	Title       string `xml:"title"`
	Copyright   string `xml:"copyright"`
	Version     string `xml:"version"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	Date        string `xml:"date"`
	Purpose     string `xml:"purpose"`
	Milestone   string `xml:"milestone"`
}

type xmlSpecification struct {
	Name          string        `xml:"name,attr"`
	IfcVersion    string        `xml:"ifcVersion,attr"`
	Identifier    string        `xml:"identifier,attr"`
	Description   string        `xml:"description,attr"`
	Instructions  string        `xml:"instructions,attr"`
	Applicability *xmlFacetList `xml:"applicability"`
	Requirements  *xmlFacetList `xml:"requirements"`
}

type xmlFacetList struct {
	MinOccurs       string              `xml:"minOccurs,attr"`
	MaxOccurs       string              `xml:"maxOccurs,attr"`
	Entities        []xmlEntity         `xml:"entity"`
	PartOfs         []xmlPartOf         `xml:"partOf"`
	Classifications []xmlClassification `xml:"classification"`
	Attributes      []xmlAttribute      `xml:"attribute"`
	Properties      []xmlProperty       `xml:"property"`
	Materials       []xmlMaterial       `xml:"material"`
}

type xmlEntity struct {
	Name           *xmlValueNode `xml:"name"`
	PredefinedType *xmlValueNode `xml:"predefinedType"`
}

type xmlPartOf struct {
	Relation    string     `xml:"relation,attr"`
	Cardinality string     `xml:"cardinality,attr"`
	Entity      *xmlEntity `xml:"entity"`
}

type xmlClassification struct {
	Cardinality string        `xml:"cardinality,attr"`
	Value       *xmlValueNode `xml:"value"`
	System      *xmlValueNode `xml:"system"`
}

type xmlAttribute struct {
	Cardinality string        `xml:"cardinality,attr"`
	Name        *xmlValueNode `xml:"name"`
	Value       *xmlValueNode `xml:"value"`
}

type xmlProperty struct {
	DataType    string        `xml:"dataType,attr"`
	Location    string        `xml:"location,attr"`
	Cardinality string        `xml:"cardinality,attr"`
	PropertySet *xmlValueNode `xml:"propertySet"`
	BaseName    *xmlValueNode `xml:"baseName"`
	Value       *xmlValueNode `xml:"value"`
}

type xmlMaterial struct {
	Cardinality string        `xml:"cardinality,attr"`
	Value       *xmlValueNode `xml:"value"`
}

// xmlValueNode decodes the simpleValue | xs:restriction union. encoding/xml
// matches the restriction element by local name regardless of its prefix.
type xmlValueNode struct {
	SimpleValue *string         `xml:"simpleValue"`
	Restriction *xmlRestriction `xml:"restriction"`
}

type xmlRestriction struct {
	Base         string           `xml:"base,attr"`
	Enumerations []xmlFacetValue  `xml:"enumeration"`
	Pattern      *xmlFacetValue   `xml:"pattern"`
	MinInclusive *xmlFacetValue   `xml:"minInclusive"`
	MaxInclusive *xmlFacetValue   `xml:"maxInclusive"`
	MinExclusive *xmlFacetValue   `xml:"minExclusive"`
	MaxExclusive *xmlFacetValue   `xml:"maxExclusive"`
	Length       *xmlFacetValue   `xml:"length"`
	MinLength    *xmlFacetValue   `xml:"minLength"`
	MaxLength    *xmlFacetValue   `xml:"maxLength"`
}

type xmlFacetValue struct {
	Value string `xml:"value,attr"`
}

// Unmarshal parses IDS 1.0 XML into a document. It is lenient about IFC
// version tokens (documents authored elsewhere may carry extensions like
// IFC4X3_ADD2); strict version validation applies only when specifications
// are added through the operation surface.
func Unmarshal(data []byte) (*Document, error) {
	var raw xmlDocument
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, newError(KindParseFailed, "parsing IDS XML: %v", err)
	}

	doc := &Document{Info: Info{
		Title:       raw.Info.Title,
		Copyright:   raw.Info.Copyright,
		Version:     raw.Info.Version,
		Description: raw.Info.Description,
		Author:      raw.Info.Author,
		Date:        raw.Info.Date,
		Purpose:     raw.Info.Purpose,
		Milestone:   raw.Info.Milestone,
	}}
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}

	for _, rawSpec := range raw.Specifications {
		spec := &Specification{
			Name:         rawSpec.Name,
			Identifier:   rawSpec.Identifier,
			Description:  rawSpec.Description,
			Instructions: rawSpec.Instructions,
			MaxOccurs:    MaxOccursUnbounded,
		}
		for _, v := range strings.Fields(rawSpec.IfcVersion) {
			spec.IfcVersions = append(spec.IfcVersions, strings.ToUpper(v))
		}
		if rawSpec.Applicability != nil {
			if rawSpec.Applicability.MinOccurs != "" {
				n, err := strconv.Atoi(rawSpec.Applicability.MinOccurs)
				if err != nil {
					return nil, newError(KindParseFailed,
						"specification %q: invalid minOccurs %q", rawSpec.Name, rawSpec.Applicability.MinOccurs)
				}
				spec.MinOccurs = n
			}
			if rawSpec.Applicability.MaxOccurs != "" {
				spec.MaxOccurs = rawSpec.Applicability.MaxOccurs
			}
			facets, err := decodeFacetList(rawSpec.Applicability, false)
			if err != nil {
				return nil, fmt.Errorf("specification %q applicability: %w", rawSpec.Name, err)
			}
			spec.Applicability = facets
		}
		if rawSpec.Requirements != nil {
			facets, err := decodeFacetList(rawSpec.Requirements, true)
			if err != nil {
				return nil, fmt.Errorf("specification %q requirements: %w", rawSpec.Name, err)
			}
			spec.Requirements = facets
		}
		doc.Specifications = append(doc.Specifications, spec)
	}
	return doc, nil
}

func decodeFacetList(raw *xmlFacetList, withCardinality bool) ([]Facet, error) {
	var facets []Facet
	appendFacet := func(f Facet, card string) error {
		if withCardinality {
			if c, ok := f.(cardinal); ok {
				parsed, err := ParseCardinality(card)
				if err != nil {
					return err
				}
				c.setCardinality(parsed)
			}
		}
		facets = append(facets, f)
		return nil
	}

	for _, e := range raw.Entities {
		entity, err := decodeEntity(&e)
		if err != nil {
			return nil, err
		}
		if err := appendFacet(entity, ""); err != nil {
			return nil, err
		}
	}
	for _, p := range raw.PartOfs {
		partOf := &PartOf{Relation: strings.ToUpper(p.Relation)}
		if p.Entity != nil {
			parent, err := decodeEntity(p.Entity)
			if err != nil {
				return nil, err
			}
			partOf.Parent = *parent
		}
		if err := appendFacet(partOf, p.Cardinality); err != nil {
			return nil, err
		}
	}
	for _, c := range raw.Classifications {
		value, err := decodeValue(c.Value)
		if err != nil {
			return nil, err
		}
		system, err := decodeValue(c.System)
		if err != nil {
			return nil, err
		}
		if err := appendFacet(&Classification{Value: value, System: system}, c.Cardinality); err != nil {
			return nil, err
		}
	}
	for _, a := range raw.Attributes {
		name, err := decodeValue(a.Name)
		if err != nil {
			return nil, err
		}
		value, err := decodeValue(a.Value)
		if err != nil {
			return nil, err
		}
		if err := appendFacet(&Attribute{Name: name, Value: value}, a.Cardinality); err != nil {
			return nil, err
		}
	}
	for _, p := range raw.Properties {
		pset, err := decodeValue(p.PropertySet)
		if err != nil {
			return nil, err
		}
		baseName, err := decodeValue(p.BaseName)
		if err != nil {
			return nil, err
		}
		value, err := decodeValue(p.Value)
		if err != nil {
			return nil, err
		}
		loc, err := ParsePropertyLocation(p.Location)
		if err != nil {
			return nil, err
		}
		prop := &Property{
			PropertySet: pset,
			BaseName:    baseName,
			Value:       value,
			DataType:    strings.ToUpper(p.DataType),
			Location:    loc,
		}
		if err := appendFacet(prop, p.Cardinality); err != nil {
			return nil, err
		}
	}
	for _, m := range raw.Materials {
		value, err := decodeValue(m.Value)
		if err != nil {
			return nil, err
		}
		if err := appendFacet(&Material{Value: value}, m.Cardinality); err != nil {
			return nil, err
		}
	}
	return facets, nil
}

func decodeEntity(raw *xmlEntity) (*Entity, error) {
	name, err := decodeValue(raw.Name)
	if err != nil {
		return nil, err
	}
	predefined, err := decodeValue(raw.PredefinedType)
	if err != nil {
		return nil, err
	}
	if name.Restriction == nil {
		name.Simple = strings.ToUpper(name.Simple)
	}
	return &Entity{Name: name, PredefinedType: predefined}, nil
}

func decodeValue(raw *xmlValueNode) (Value, error) {
	if raw == nil {
		return Value{}, nil
	}
	if raw.Restriction != nil {
		r, err := decodeRestriction(raw.Restriction)
		if err != nil {
			return Value{}, err
		}
		return Value{Restriction: r}, nil
	}
	if raw.SimpleValue != nil {
		return SimpleValue(*raw.SimpleValue), nil
	}
	return Value{}, nil
}

func decodeRestriction(raw *xmlRestriction) (*Restriction, error) {
	base, err := ParseBaseType(raw.Base)
	if err != nil {
		return nil, err
	}

	spec := RestrictionSpec{}
	for _, e := range raw.Enumerations {
		spec.Enumeration = append(spec.Enumeration, e.Value)
	}
	if raw.Pattern != nil {
		spec.Pattern = raw.Pattern.Value
	}
	if spec.Bounds.MinInclusive, err = decodeBound(raw.MinInclusive, "minInclusive"); err != nil {
		return nil, err
	}
	if spec.Bounds.MaxInclusive, err = decodeBound(raw.MaxInclusive, "maxInclusive"); err != nil {
		return nil, err
	}
	if spec.Bounds.MinExclusive, err = decodeBound(raw.MinExclusive, "minExclusive"); err != nil {
		return nil, err
	}
	if spec.Bounds.MaxExclusive, err = decodeBound(raw.MaxExclusive, "maxExclusive"); err != nil {
		return nil, err
	}
	if spec.Length.Length, err = decodeLength(raw.Length, "length"); err != nil {
		return nil, err
	}
	if spec.Length.MinLength, err = decodeLength(raw.MinLength, "minLength"); err != nil {
		return nil, err
	}
	if spec.Length.MaxLength, err = decodeLength(raw.MaxLength, "maxLength"); err != nil {
		return nil, err
	}

	return NewRestriction(base, spec)
}

func decodeBound(raw *xmlFacetValue, name string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw.Value, 64)
	if err != nil {
		return nil, newError(KindParseFailed, "invalid %s value %q", name, raw.Value)
	}
	return &v, nil
}

func decodeLength(raw *xmlFacetValue, name string) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(raw.Value)
	if err != nil || v < 0 {
		return nil, newError(KindParseFailed, "invalid %s value %q", name, raw.Value)
	}
	return &v, nil
}
