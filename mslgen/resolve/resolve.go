// Package resolve validates a parsed schema and orders it for generation.
// It rejects unknown references, duplicate names, and unindirected
// recursion, then computes a deterministic topological generation order.
package resolve

import (
	"fmt"
	"strings"

	"github.com/msl-lang/mslc/mslgen/ir"
)

// ResolvedSchema is a validated schema plus a generation order over its
// named types: any type embedded by value appears before the type that
// embeds it, with ties broken by declaration order. Resolving the same
// schema twice yields the same order.
type ResolvedSchema struct {
	*ir.Schema

	// Ordered holds the named types in generation order.
	Ordered []ir.NamedType
}

// Resolve validates schema and computes its generation order. The input
// schema is not mutated.
func Resolve(schema *ir.Schema) (*ResolvedSchema, error) {
	types, err := indexTypes(schema)
	if err != nil {
		return nil, err
	}
	if err := checkFunctions(schema, types); err != nil {
		return nil, err
	}
	if err := checkFieldRefs(schema, types); err != nil {
		return nil, err
	}
	if err := checkValueCycles(schema, types); err != nil {
		return nil, err
	}

	return &ResolvedSchema{
		Schema:  schema,
		Ordered: generationOrder(schema, types),
	}, nil
}

// indexTypes builds the declared-name set, rejecting duplicates.
func indexTypes(schema *ir.Schema) (map[string]ir.NamedType, error) {
	types := make(map[string]ir.NamedType, len(schema.Types))
	for _, t := range schema.Types {
		name := t.TypeName()
		if _, dup := types[name]; dup {
			return nil, &Error{Kind: KindDuplicateTypeName, Name: name}
		}
		types[name] = t
	}
	return types, nil
}

func checkFunctions(schema *ir.Schema, types map[string]ir.NamedType) error {
	seen := make(map[string]bool, len(schema.Functions))
	for _, fn := range schema.Functions {
		if seen[fn.Name] {
			return &Error{Kind: KindDuplicateFunctionName, Name: fn.Name}
		}
		seen[fn.Name] = true

		if err := checkRefs(fn.Input, types, true, fmt.Sprintf("function %q input", fn.Name)); err != nil {
			return err
		}
		if err := checkRefs(fn.Output, types, true, fmt.Sprintf("function %q output", fn.Name)); err != nil {
			return err
		}
	}
	return nil
}

func checkFieldRefs(schema *ir.Schema, types map[string]ir.NamedType) error {
	for _, t := range schema.Types {
		c, ok := t.(*ir.Composite)
		if !ok {
			continue
		}
		for _, f := range c.Fields {
			ctx := fmt.Sprintf("type %q field %q", c.Name, f.Name)
			if err := checkRefs(f.Type, types, false, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkRefs verifies every named reference nested in ref. The reserved
// Unit name resolves only where allowUnit is set: it denotes an absent
// function payload, not a declarable field type.
func checkRefs(ref ir.TypeRef, types map[string]ir.NamedType, allowUnit bool, context string) error {
	var resolveErr error
	ir.WalkRefs(ref, func(r ir.TypeRef) {
		if resolveErr != nil {
			return
		}
		named, ok := r.(*ir.NamedRef)
		if !ok {
			return
		}
		if named.Name == ir.UnitName {
			if allowUnit && r == ref {
				return
			}
			resolveErr = &Error{Kind: KindUnknownType, Name: named.Name, Context: context}
			return
		}
		if _, ok := types[named.Name]; !ok {
			resolveErr = &Error{Kind: KindUnknownType, Name: named.Name, Context: context}
		}
	})
	return resolveErr
}

// valueEdges returns the names a composite embeds by value: only a bare
// named field creates an edge, since Optional, List, and Map all break
// the infinite-size chain.
func valueEdges(c *ir.Composite) []string {
	var edges []string
	for _, f := range c.Fields {
		if named, ok := f.Type.(*ir.NamedRef); ok {
			edges = append(edges, named.Name)
		}
	}
	return edges
}

// checkValueCycles rejects composites that reach themselves through
// value embedding alone. DFS in declaration order keeps the reported
// cycle stable.
func checkValueCycles(schema *ir.Schema, types map[string]ir.NamedType) error {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if inStack[name] {
			return &Error{
				Kind:    KindInvalidCycle,
				Name:    name,
				Context: "value embedding cycle: " + strings.Join(append(path, name), " -> "),
			}
		}
		if visited[name] {
			return nil
		}
		visited[name] = true
		inStack[name] = true
		defer func() { inStack[name] = false }()

		if c, ok := types[name].(*ir.Composite); ok {
			for _, dep := range valueEdges(c) {
				if err := visit(dep, append(path, name)); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, t := range schema.Types {
		if err := visit(t.TypeName(), nil); err != nil {
			return err
		}
	}
	return nil
}

// generationOrder emits value dependencies before their dependents via
// postorder DFS in declaration order. The graph is acyclic by the time
// this runs.
func generationOrder(schema *ir.Schema, types map[string]ir.NamedType) []ir.NamedType {
	ordered := make([]ir.NamedType, 0, len(schema.Types))
	emitted := make(map[string]bool, len(schema.Types))

	var emit func(name string)
	emit = func(name string) {
		t, ok := types[name]
		if !ok || emitted[name] {
			return
		}
		emitted[name] = true
		if c, ok := t.(*ir.Composite); ok {
			for _, dep := range valueEdges(c) {
				emit(dep)
			}
		}
		ordered = append(ordered, t)
	}

	for _, t := range schema.Types {
		emit(t.TypeName())
	}
	return ordered
}
