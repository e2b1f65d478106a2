package resolve

import "fmt"

// ErrorKind classifies resolution failures.
type ErrorKind int

const (
	// KindUnknownType means a named reference does not match any declared type.
	KindUnknownType ErrorKind = iota

	// KindInvalidCycle means a composite embeds itself by value with no
	// Optional/List/Map indirection anywhere on the chain.
	KindInvalidCycle

	// KindDuplicateTypeName means two top-level types share a name.
	KindDuplicateTypeName

	// KindDuplicateFunctionName means two functions share a name.
	KindDuplicateFunctionName
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnknownType:
		return "unknown type"
	case KindInvalidCycle:
		return "invalid cycle"
	case KindDuplicateTypeName:
		return "duplicate type name"
	case KindDuplicateFunctionName:
		return "duplicate function name"
	default:
		return "unknown"
	}
}

// Error describes a schema resolution failure. Name identifies the
// offending construct; Context locates it (owning type and field, or the
// cycle path) so the author can find it without reading internals.
type Error struct {
	Kind    ErrorKind
	Name    string
	Context string
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %q (%s)", e.Kind, e.Name, e.Context)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Name)
}
