package ir

// UnitName is the reserved name denoting "no payload" in function
// contracts. It behaves like an implicitly declared empty composite and
// never needs to appear in a schema document's types section.
const UnitName = "Unit"

// FieldDef is a single field of a composite. Declaration order is
// significant: it defines generation order and wire key order.
type FieldDef struct {
	// Name is the field identifier, unique within the owning composite.
	Name string

	// Type is the field's type reference.
	Type TypeRef
}

// NamedType is the sealed interface over user-declared types.
type NamedType interface {
	// TypeName returns the declared name.
	TypeName() string

	// Ensure only types in this package can implement NamedType.
	sealedType()
}

// Composite is a struct-like type with ordered named fields.
// An empty field list is legal.
type Composite struct {
	// Name is the type identifier.
	Name string

	// Fields in declaration order.
	Fields []FieldDef
}

// TypeName returns the composite's name.
func (c *Composite) TypeName() string { return c.Name }

func (*Composite) sealedType() {}

// Field looks up a field by name. Returns nil if absent.
func (c *Composite) Field(name string) *FieldDef {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// Enum is a closed set of bare variant names, no associated payloads.
// Variants serialize as their declared name; order is preserved.
type Enum struct {
	// Name is the type identifier.
	Name string

	// Variants in declaration order.
	Variants []string
}

// TypeName returns the enum's name.
func (e *Enum) TypeName() string { return e.Name }

func (*Enum) sealedType() {}

// FunctionContract describes one callable operation across the native
// boundary: a name plus input and output type references. Either side may
// be Unit to denote no payload.
type FunctionContract struct {
	Name   string
	Input  TypeRef
	Output TypeRef
}

// Warning is a non-fatal issue noticed while building or consuming a schema.
type Warning struct {
	// Code is a machine-readable identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// TypeName is the construct that triggered the warning, if applicable.
	TypeName string
}

// Schema is the parsed form of one schema document: declared types and
// function contracts, both in declaration order. A Schema is built once
// per compilation, is immutable after resolution, and is only ever read
// by generators.
type Schema struct {
	// Types in declaration order.
	Types []NamedType

	// Functions in declaration order.
	Functions []FunctionContract

	// Warnings collected while parsing.
	Warnings []Warning
}

// AddType appends a named type declaration.
func (s *Schema) AddType(t NamedType) {
	s.Types = append(s.Types, t)
}

// AddFunction appends a function contract.
func (s *Schema) AddFunction(f FunctionContract) {
	s.Functions = append(s.Functions, f)
}

// AddWarning records a non-fatal issue.
func (s *Schema) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FindType looks up a declared type by name. Returns nil if not found.
// The reserved Unit name is not a declared type and returns nil here.
func (s *Schema) FindType(name string) NamedType {
	for _, t := range s.Types {
		if t.TypeName() == name {
			return t
		}
	}
	return nil
}
