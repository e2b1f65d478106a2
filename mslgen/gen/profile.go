package gen

import "github.com/msl-lang/mslc/mslgen/ir"

// Profile describes a target language's conventions: how primitives map
// to its type names, which casing its identifiers use, and which schema
// constructs it supports. Generators consult the profile instead of
// branching on language identity.
type Profile struct {
	// Target is the profile's target identifier.
	Target string

	// Primitives maps each primitive kind to the target's type name.
	Primitives map[ir.PrimitiveKind]string

	// TypeCase and FieldCase select identifier casing:
	// "preserve", "camel", "pascal", or "snake".
	TypeCase  string
	FieldCase string

	// Unsupported lists schema constructs the target cannot express.
	// Hitting one aborts generation for this target only.
	Unsupported map[ir.RefKind]bool
}

// Supports reports whether the target can express the given construct.
func (p Profile) Supports(k ir.RefKind) bool {
	return !p.Unsupported[k]
}

// TypeName applies the profile's type casing.
func (p Profile) TypeName(name string) string {
	return applyCase(name, p.TypeCase)
}

// FieldName applies the profile's field casing.
func (p Profile) FieldName(name string) string {
	return applyCase(name, p.FieldCase)
}
