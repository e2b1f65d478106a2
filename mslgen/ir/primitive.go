// Package ir defines the in-memory schema model for the MSL compiler.
// These types are language-agnostic representations of schema constructs
// that target generators transform into source code.
package ir

// PrimitiveKind identifies one of the closed set of built-in scalar types.
type PrimitiveKind int

const (
	PrimitiveBool PrimitiveKind = iota
	PrimitiveI32
	PrimitiveI64
	PrimitiveU32
	PrimitiveU64
	PrimitiveF32
	PrimitiveF64
	PrimitiveString
	PrimitiveBytes     // base64 text on the wire
	PrimitiveUUID      // canonical hyphenated lowercase hex text
	PrimitiveTimestamp // RFC 3339 UTC text
)

// String returns the schema-language spelling of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBool:
		return "bool"
	case PrimitiveI32:
		return "i32"
	case PrimitiveI64:
		return "i64"
	case PrimitiveU32:
		return "u32"
	case PrimitiveU64:
		return "u64"
	case PrimitiveF32:
		return "f32"
	case PrimitiveF64:
		return "f64"
	case PrimitiveString:
		return "string"
	case PrimitiveBytes:
		return "bytes"
	case PrimitiveUUID:
		return "uuid"
	case PrimitiveTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// primitivesByName maps schema spellings back to kinds.
var primitivesByName = map[string]PrimitiveKind{
	"bool":      PrimitiveBool,
	"i32":       PrimitiveI32,
	"i64":       PrimitiveI64,
	"u32":       PrimitiveU32,
	"u64":       PrimitiveU64,
	"f32":       PrimitiveF32,
	"f64":       PrimitiveF64,
	"string":    PrimitiveString,
	"bytes":     PrimitiveBytes,
	"uuid":      PrimitiveUUID,
	"timestamp": PrimitiveTimestamp,
}

// PrimitiveByName looks up a primitive kind by its schema spelling.
func PrimitiveByName(name string) (PrimitiveKind, bool) {
	k, ok := primitivesByName[name]
	return k, ok
}

// IsInteger reports whether the kind is a signed or unsigned integer.
func (k PrimitiveKind) IsInteger() bool {
	switch k {
	case PrimitiveI32, PrimitiveI64, PrimitiveU32, PrimitiveU64:
		return true
	}
	return false
}

// Is64Bit reports whether the kind is a 64-bit integer. These are carried
// as decimal strings on the wire so decoders limited to double-precision
// numbers cannot lose low bits.
func (k PrimitiveKind) Is64Bit() bool {
	return k == PrimitiveI64 || k == PrimitiveU64
}

// ValidMapKey reports whether the kind may be used as a map key.
// Only text-representable kinds with unambiguous canonical forms qualify.
func (k PrimitiveKind) ValidMapKey() bool {
	switch k {
	case PrimitiveString, PrimitiveUUID, PrimitiveI32, PrimitiveI64, PrimitiveU32, PrimitiveU64:
		return true
	}
	return false
}
