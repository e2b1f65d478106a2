// Package parser reads MSL schema documents into the in-memory model.
// It handles syntax and structural normalization only; whether named
// references actually exist is the resolver's concern.
package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/msl-lang/mslc/mslgen/ir"
)

// ParseFile parses a schema document from a file.
func ParseFile(path string) (*ir.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a schema document from YAML bytes. The document has two
// recognized top-level sections, "types" and "functions"; other sections
// are tolerated with a warning so forward-looking schema extensions do
// not break older compilers.
func Parse(data []byte) (*ir.Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, syntaxErr(0, 0, "invalid yaml: %v", err)
	}

	schema := &ir.Schema{}
	if len(doc.Content) == 0 {
		// Empty document parses to an empty schema.
		return schema, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, syntaxErr(root.Line, root.Column, "document root must be a mapping with types and functions sections")
	}

	for i := 0; i < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "types":
			if err := parseTypes(schema, value); err != nil {
				return nil, err
			}
		case "functions":
			if err := parseFunctions(schema, value); err != nil {
				return nil, err
			}
		default:
			schema.AddWarning(ir.Warning{
				Code:    "unknown_section",
				Message: fmt.Sprintf("ignoring unrecognized top-level section %q at line %d", key.Value, key.Line),
			})
		}
	}

	return schema, nil
}

func parseTypes(schema *ir.Schema, node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return syntaxErr(node.Line, node.Column, "types section must be a mapping of type name to definition")
	}

	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := key.Value

		if !isValidIdentifier(name) {
			return syntaxErr(key.Line, key.Column, "type name %q is not a valid identifier", name)
		}
		if name == ir.UnitName {
			return syntaxErr(key.Line, key.Column, "%q is reserved and cannot be declared", ir.UnitName)
		}

		t, err := parseNamedType(name, value)
		if err != nil {
			return err
		}
		schema.AddType(t)
	}
	return nil
}

// parseNamedType interprets one type entry: a mapping whose single key is
// "enum" with a sequence value declares an enum; any other mapping is a
// composite of field-name to type-expression pairs.
func parseNamedType(name string, node *yaml.Node) (ir.NamedType, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		// A bare "Name:" entry is an empty composite.
		return &ir.Composite{Name: name}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, syntaxErr(node.Line, node.Column, "type %q must be a mapping of fields or an enum declaration", name)
	}

	if isEnumNode(node) {
		return parseEnum(name, node.Content[1])
	}

	c := &ir.Composite{Name: name}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		fieldName := key.Value

		if fieldName == "enum" {
			return nil, syntaxErr(key.Line, key.Column, "type %q mixes an enum marker with fields", name)
		}
		if !isValidIdentifier(fieldName) {
			return nil, syntaxErr(key.Line, key.Column, "field name %q in type %q is not a valid identifier", fieldName, name)
		}
		if seen[fieldName] {
			return nil, duplicateFieldErr(key.Line, key.Column, name, fieldName)
		}
		seen[fieldName] = true

		if value.Kind != yaml.ScalarNode {
			return nil, syntaxErr(value.Line, value.Column, "field %q of type %q must be a type-expression string", fieldName, name)
		}
		ref, err := parseTypeExpr(value.Value)
		if err != nil {
			return nil, syntaxErr(value.Line, value.Column, "field %q of type %q: %v", fieldName, name, err)
		}
		c.Fields = append(c.Fields, ir.FieldDef{Name: fieldName, Type: ref})
	}
	return c, nil
}

// isEnumNode reports whether a type mapping is the enum form: exactly one
// key named "enum" whose value is a sequence.
func isEnumNode(node *yaml.Node) bool {
	return len(node.Content) == 2 &&
		node.Content[0].Value == "enum" &&
		node.Content[1].Kind == yaml.SequenceNode
}

func parseEnum(name string, seq *yaml.Node) (ir.NamedType, error) {
	e := &ir.Enum{Name: name}
	seen := make(map[string]bool, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, syntaxErr(item.Line, item.Column, "enum %q variants must be bare names", name)
		}
		variant := item.Value
		if !isValidIdentifier(variant) {
			return nil, syntaxErr(item.Line, item.Column, "enum %q variant %q is not a valid identifier", name, variant)
		}
		if seen[variant] {
			return nil, syntaxErr(item.Line, item.Column, "enum %q declares variant %q more than once", name, variant)
		}
		seen[variant] = true
		e.Variants = append(e.Variants, variant)
	}
	return e, nil
}

func parseFunctions(schema *ir.Schema, node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return syntaxErr(node.Line, node.Column, "functions section must be a mapping of function name to contract")
	}

	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := key.Value

		if !isValidIdentifier(name) {
			return syntaxErr(key.Line, key.Column, "function name %q is not a valid identifier", name)
		}

		fn, err := parseContract(name, value)
		if err != nil {
			return err
		}
		schema.AddFunction(fn)
	}
	return nil
}

// parseContract reads one function entry. Both input and output default
// to Unit when omitted.
func parseContract(name string, node *yaml.Node) (ir.FunctionContract, error) {
	fn := ir.FunctionContract{
		Name:   name,
		Input:  ir.Named(ir.UnitName),
		Output: ir.Named(ir.UnitName),
	}

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return fn, nil
	}
	if node.Kind != yaml.MappingNode {
		return fn, syntaxErr(node.Line, node.Column, "function %q must be a mapping with input and output", name)
	}

	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fn, syntaxErr(value.Line, value.Column, "function %q %s must be a type-expression string", name, key.Value)
		}
		ref, err := parseTypeExpr(value.Value)
		if err != nil {
			return fn, syntaxErr(value.Line, value.Column, "function %q %s: %v", name, key.Value, err)
		}
		switch key.Value {
		case "input":
			fn.Input = ref
		case "output":
			fn.Output = ref
		default:
			return fn, syntaxErr(key.Line, key.Column, "function %q has unrecognized key %q", name, key.Value)
		}
	}
	return fn, nil
}
