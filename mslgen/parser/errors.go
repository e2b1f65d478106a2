package parser

import "fmt"

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	// KindSyntax means the document or a type expression could not be
	// tokenized into the expected shape.
	KindSyntax ErrorKind = iota

	// KindDuplicateField means a composite listed the same field name twice.
	KindDuplicateField
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindDuplicateField:
		return "duplicate field"
	default:
		return "unknown"
	}
}

// ParseError describes a failure to parse a schema document. Line and
// Column point at the offending YAML node so the schema author can locate
// the construct without reading compiler internals.
type ParseError struct {
	Kind   ErrorKind
	Line   int
	Column int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Detail)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Detail)
}

func syntaxErr(line, col int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   KindSyntax,
		Line:   line,
		Column: col,
		Detail: fmt.Sprintf(format, args...),
	}
}

func duplicateFieldErr(line, col int, typeName, fieldName string) *ParseError {
	return &ParseError{
		Kind:   KindDuplicateField,
		Line:   line,
		Column: col,
		Detail: fmt.Sprintf("type %q declares field %q more than once", typeName, fieldName),
	}
}
