package parser

import (
	"fmt"
	"strings"

	"github.com/msl-lang/mslc/mslgen/ir"
)

// parseTypeExpr parses one type-expression string into a TypeRef.
//
// Grammar:
//
//	expr := base "?"?
//	base := ident | "[" expr "]" | "map<" ident "," expr ">"
//
// A bare identifier is a primitive if it matches a primitive spelling,
// otherwise a named reference left for the resolver to check.
func parseTypeExpr(src string) (ir.TypeRef, error) {
	s := &exprScanner{src: src}
	ref, err := s.parseExpr()
	if err != nil {
		return nil, err
	}
	s.skipSpaces()
	if s.pos != len(s.src) {
		return nil, fmt.Errorf("unexpected %q after type expression %q", s.src[s.pos:], src)
	}
	return ref, nil
}

type exprScanner struct {
	src string
	pos int
}

func (s *exprScanner) parseExpr() (ir.TypeRef, error) {
	base, err := s.parseBase()
	if err != nil {
		return nil, err
	}
	s.skipSpaces()
	if s.peek() == '?' {
		s.pos++
		return ir.Optional(base), nil
	}
	return base, nil
}

func (s *exprScanner) parseBase() (ir.TypeRef, error) {
	s.skipSpaces()
	switch {
	case s.peek() == '[':
		s.pos++
		elem, err := s.parseExpr()
		if err != nil {
			return nil, err
		}
		s.skipSpaces()
		if s.peek() != ']' {
			return nil, fmt.Errorf("expected ']' in %q", s.src)
		}
		s.pos++
		return ir.List(elem), nil

	case strings.HasPrefix(s.src[s.pos:], "map<"):
		s.pos += len("map<")
		keyName, err := s.parseIdent()
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		key, ok := ir.PrimitiveByName(keyName)
		if !ok {
			return nil, fmt.Errorf("map key %q is not a primitive", keyName)
		}
		if !key.ValidMapKey() {
			return nil, fmt.Errorf("map key type %q is not allowed; keys must be strings, integers, or uuids", keyName)
		}
		s.skipSpaces()
		if s.peek() != ',' {
			return nil, fmt.Errorf("expected ',' after map key in %q", s.src)
		}
		s.pos++
		value, err := s.parseExpr()
		if err != nil {
			return nil, err
		}
		s.skipSpaces()
		if s.peek() != '>' {
			return nil, fmt.Errorf("expected '>' in %q", s.src)
		}
		s.pos++
		return ir.Map(key, value), nil

	default:
		name, err := s.parseIdent()
		if err != nil {
			return nil, err
		}
		if k, ok := ir.PrimitiveByName(name); ok {
			return ir.Primitive(k), nil
		}
		return ir.Named(name), nil
	}
}

func (s *exprScanner) parseIdent() (string, error) {
	s.skipSpaces()
	start := s.pos
	for s.pos < len(s.src) && isIdentChar(s.src[s.pos], s.pos == start) {
		s.pos++
	}
	if s.pos == start {
		if s.pos < len(s.src) {
			return "", fmt.Errorf("expected identifier, found %q", s.src[s.pos:])
		}
		return "", fmt.Errorf("expected identifier at end of %q", s.src)
	}
	return s.src[start:s.pos], nil
}

func (s *exprScanner) skipSpaces() {
	for s.pos < len(s.src) && s.src[s.pos] == ' ' {
		s.pos++
	}
}

func (s *exprScanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func isIdentChar(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// isValidIdentifier checks type, field, variant, and function names.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i], i == 0) {
			return false
		}
	}
	return true
}
