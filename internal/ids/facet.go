// Package ids holds the in-memory model of a buildingSMART IDS 1.0 document
// under construction: metadata, an ordered list of specifications, the six
// facet variants, and the restriction grammar for constrained values.
//
// The model is pure data plus invariants. It knows nothing about sessions or
// transports; serialization and XSD validation live in xml.go and schema.go.
package ids

import "strings"

// FacetKind identifies one of the six IDS facet variants.
type FacetKind string

const (
	FacetEntity         FacetKind = "entity"
	FacetAttribute      FacetKind = "attribute"
	FacetProperty       FacetKind = "property"
	FacetClassification FacetKind = "classification"
	FacetMaterial       FacetKind = "material"
	FacetPartOf         FacetKind = "partof"
)

// Location names the facet list a facet is added to.
type Location string

const (
	LocationApplicability Location = "applicability"
	LocationRequirements  Location = "requirements"
)

// ParseLocation validates a location token.
func ParseLocation(s string) (Location, error) {
	switch Location(s) {
	case LocationApplicability, LocationRequirements:
		return Location(s), nil
	}
	return "", newError(KindInvalidLocation,
		"invalid location: %q. Must be 'applicability' or 'requirements'", s)
}

// Cardinality states whether a requirement facet's condition must, may, or
// must not hold. It is meaningless for applicability facets, which never
// carry one.
type Cardinality string

const (
	CardinalityRequired   Cardinality = "required"
	CardinalityOptional   Cardinality = "optional"
	CardinalityProhibited Cardinality = "prohibited"
)

// ParseCardinality validates a cardinality token, defaulting to "required"
// for the empty string.
func ParseCardinality(s string) (Cardinality, error) {
	if s == "" {
		return CardinalityRequired, nil
	}
	switch Cardinality(s) {
	case CardinalityRequired, CardinalityOptional, CardinalityProhibited:
		return Cardinality(s), nil
	}
	return "", newError(KindInvalidCardinality,
		"invalid cardinality: %q. Must be 'required', 'optional', or 'prohibited'", s)
}

// PropertyLocation scopes where a property facet looks for the property.
type PropertyLocation string

const (
	PropertyOnInstance PropertyLocation = "instance"
	PropertyOnType     PropertyLocation = "type"
	PropertyAnywhere   PropertyLocation = "any"
)

// ParsePropertyLocation validates a property location token, defaulting to
// "any" for the empty string.
func ParsePropertyLocation(s string) (PropertyLocation, error) {
	if s == "" {
		return PropertyAnywhere, nil
	}
	switch PropertyLocation(s) {
	case PropertyOnInstance, PropertyOnType, PropertyAnywhere:
		return PropertyLocation(s), nil
	}
	return "", newError(KindInvalidLocation,
		"invalid property location: %q. Must be 'instance', 'type', or 'any'", s)
}

// Value is a scalar facet parameter that a Restriction may substitute for.
// Exactly one of Simple and Restriction is meaningful; both zero means the
// parameter is unset.
type Value struct {
	Simple      string
	Restriction *Restriction
}

// SimpleValue wraps a plain string as a Value.
func SimpleValue(s string) Value { return Value{Simple: s} }

// IsZero reports whether the parameter is unset.
func (v Value) IsZero() bool { return v.Simple == "" && v.Restriction == nil }

// Facet is the tagged union over the six variants. Each variant carries only
// its own field set, so "which fields are valid for which kind" is enforced
// by the type system.
type Facet interface {
	Kind() FacetKind

	// valueField returns the restrictable value field named by an ifctester
	// parameter name ("value", "propertySet", "baseName", ...), or nil when
	// the facet kind has no such parameter.
	valueField(parameter string) *Value
}

// cardinal is implemented by facet kinds that carry a cardinality when
// positioned in a requirements list. Entity does not: IDS 1.0 gives entity
// facets no cardinality attribute anywhere.
type cardinal interface {
	setCardinality(Cardinality)
}

// Entity constrains the IFC class of an element. Names are normalized to
// uppercase on construction.
type Entity struct {
	Name           Value
	PredefinedType Value
}

// NewEntity builds an entity facet, uppercasing the IFC class name.
func NewEntity(name, predefinedType string) *Entity {
	e := &Entity{Name: SimpleValue(strings.ToUpper(name))}
	if predefinedType != "" {
		e.PredefinedType = SimpleValue(predefinedType)
	}
	return e
}

func (e *Entity) Kind() FacetKind { return FacetEntity }

func (e *Entity) valueField(parameter string) *Value {
	switch parameter {
	case "name":
		return &e.Name
	case "predefinedType":
		return &e.PredefinedType
	}
	return nil
}

// Attribute constrains a direct IFC attribute such as Name or Description.
type Attribute struct {
	Name        Value
	Value       Value
	Cardinality Cardinality
}

// NewAttribute builds an attribute facet.
func NewAttribute(name, value string) *Attribute {
	a := &Attribute{Name: SimpleValue(name)}
	if value != "" {
		a.Value = SimpleValue(value)
	}
	return a
}

func (a *Attribute) Kind() FacetKind { return FacetAttribute }
func (a *Attribute) setCardinality(c Cardinality) { a.Cardinality = c }

func (a *Attribute) valueField(parameter string) *Value {
	switch parameter {
	case "name":
		return &a.Name
	case "value":
		return &a.Value
	}
	return nil
}

// Property constrains a property within a property set. DataType is stored
// uppercased; a property without a property set cannot be exported, which
// ValidatePropertySetRequired enforces before the facet is attached.
type Property struct {
	PropertySet Value
	BaseName    Value
	Value       Value
	DataType    string
	Location    PropertyLocation
	Cardinality Cardinality
}

// NewProperty builds a property facet.
func NewProperty(propertySet, baseName, dataType, value string, loc PropertyLocation) *Property {
	p := &Property{
		BaseName: SimpleValue(baseName),
		DataType: strings.ToUpper(dataType),
		Location: loc,
	}
	if p.Location == "" {
		p.Location = PropertyAnywhere
	}
	if propertySet != "" {
		p.PropertySet = SimpleValue(propertySet)
	}
	if value != "" {
		p.Value = SimpleValue(value)
	}
	return p
}

func (p *Property) Kind() FacetKind { return FacetProperty }
func (p *Property) setCardinality(c Cardinality) { p.Cardinality = c }

func (p *Property) valueField(parameter string) *Value {
	switch parameter {
	case "propertySet":
		return &p.PropertySet
	case "baseName":
		return &p.BaseName
	case "value":
		return &p.Value
	}
	return nil
}

// Classification constrains a classification system reference.
type Classification struct {
	Value       Value
	System      Value
	Cardinality Cardinality
}

// NewClassification builds a classification facet.
func NewClassification(value, system string) *Classification {
	c := &Classification{Value: SimpleValue(value)}
	if system != "" {
		c.System = SimpleValue(system)
	}
	return c
}

func (c *Classification) Kind() FacetKind { return FacetClassification }
func (c *Classification) setCardinality(cd Cardinality) { c.Cardinality = cd }

func (c *Classification) valueField(parameter string) *Value {
	switch parameter {
	case "value":
		return &c.Value
	case "system":
		return &c.System
	}
	return nil
}

// Material constrains an element's material name or category.
type Material struct {
	Value       Value
	Cardinality Cardinality
}

// NewMaterial builds a material facet.
func NewMaterial(value string) *Material {
	m := &Material{}
	if value != "" {
		m.Value = SimpleValue(value)
	}
	return m
}

func (m *Material) Kind() FacetKind { return FacetMaterial }
func (m *Material) setCardinality(c Cardinality) { m.Cardinality = c }

func (m *Material) valueField(parameter string) *Value {
	switch parameter {
	case "value":
		return &m.Value
	}
	return nil
}

// PartOf constrains the spatial or aggregation relationship to a parent
// element. It is the one facet with a nested entity describing that parent.
type PartOf struct {
	Relation    string
	Parent      Entity
	Cardinality Cardinality
}

// NewPartOf builds a partOf facet; relation and parent entity name are
// uppercased like entity names.
func NewPartOf(relation, parentEntity, parentPredefinedType string) *PartOf {
	return &PartOf{
		Relation: strings.ToUpper(relation),
		Parent:   *NewEntity(parentEntity, parentPredefinedType),
	}
}

func (p *PartOf) Kind() FacetKind { return FacetPartOf }
func (p *PartOf) setCardinality(c Cardinality) { p.Cardinality = c }

func (p *PartOf) valueField(parameter string) *Value {
	// Restrictions address the nested parent entity's fields.
	return p.Parent.valueField(parameter)
}
