package ir

// RefKind identifies the category of a type reference.
type RefKind int

const (
	KindPrimitive RefKind = iota // built-in scalar
	KindNamed                    // reference to a declared type
	KindOptional                 // value may be absent
	KindList                     // ordered sequence
	KindMap                      // keyed mapping with primitive keys
)

// String returns the string representation of the ref kind.
func (k RefKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindNamed:
		return "Named"
	case KindOptional:
		return "Optional"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// TypeRef is the sealed interface over all type reference shapes.
// A TypeRef appears as a field type or a function input/output and may
// nest arbitrarily (e.g. map<string,[Node?]>).
type TypeRef interface {
	// Kind returns the reference kind for type switching.
	Kind() RefKind

	// Ensure only types in this package can implement TypeRef.
	sealed()
}

type refBase struct{}

func (refBase) sealed() {}

// PrimitiveRef references a built-in scalar type.
type PrimitiveRef struct {
	refBase
	Primitive PrimitiveKind
}

// Kind returns KindPrimitive.
func (*PrimitiveRef) Kind() RefKind { return KindPrimitive }

// NamedRef references a declared composite or enum by name.
// Whether the name actually resolves is the resolver's concern.
type NamedRef struct {
	refBase
	Name string
}

// Kind returns KindNamed.
func (*NamedRef) Kind() RefKind { return KindNamed }

// OptionalRef wraps a type whose value may be absent. Optional introduces
// indirection: recursion through an Optional is legal.
type OptionalRef struct {
	refBase
	Inner TypeRef
}

// Kind returns KindOptional.
func (*OptionalRef) Kind() RefKind { return KindOptional }

// ListRef is an ordered sequence of an element type. Lists introduce
// indirection the same way Optional does.
type ListRef struct {
	refBase
	Element TypeRef
}

// Kind returns KindList.
func (*ListRef) Kind() RefKind { return KindList }

// MapRef is a keyed mapping. Keys are restricted to primitives with a
// canonical text form (see PrimitiveKind.ValidMapKey).
type MapRef struct {
	refBase
	Key   PrimitiveKind
	Value TypeRef
}

// Kind returns KindMap.
func (*MapRef) Kind() RefKind { return KindMap }

// Convenience constructors.

// Primitive returns a PrimitiveRef for the given kind.
func Primitive(k PrimitiveKind) *PrimitiveRef {
	return &PrimitiveRef{Primitive: k}
}

// Named returns a NamedRef for a declared type.
func Named(name string) *NamedRef {
	return &NamedRef{Name: name}
}

// Optional wraps inner in an OptionalRef.
func Optional(inner TypeRef) *OptionalRef {
	return &OptionalRef{Inner: inner}
}

// List returns a ListRef over element.
func List(element TypeRef) *ListRef {
	return &ListRef{Element: element}
}

// Map returns a MapRef with a primitive key and arbitrary value type.
func Map(key PrimitiveKind, value TypeRef) *MapRef {
	return &MapRef{Key: key, Value: value}
}

// WalkRefs calls fn for ref and every reference nested within it,
// outermost first.
func WalkRefs(ref TypeRef, fn func(TypeRef)) {
	if ref == nil {
		return
	}
	fn(ref)
	switch r := ref.(type) {
	case *OptionalRef:
		WalkRefs(r.Inner, fn)
	case *ListRef:
		WalkRefs(r.Element, fn)
	case *MapRef:
		WalkRefs(r.Value, fn)
	}
}
