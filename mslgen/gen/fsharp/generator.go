// Package fsharp generates F# type definitions and wire codecs from a
// resolved schema, targeting System.Text.Json with the
// FSharp.SystemTextJson converters. Function call wrappers are not
// emitted for this target; the wire contract is carried entirely by the
// codecs.
package fsharp

import (
	"context"
	"fmt"

	"github.com/msl-lang/mslc/mslgen/gen"
	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
)

func init() {
	gen.Register(New())
}

// profile maps schema primitives onto the F# types the generated code
// uses. 64-bit integers and timestamps get custom JsonConverters so
// their wire text matches the other targets; Guid and byte[] already
// serialize to the canonical forms. Map keys are always the key's
// canonical wire text.
var profile = gen.Profile{
	Target: "fsharp",
	Primitives: map[ir.PrimitiveKind]string{
		ir.PrimitiveBool:      "bool",
		ir.PrimitiveI32:       "int",
		ir.PrimitiveI64:       "int64",
		ir.PrimitiveU32:       "uint32",
		ir.PrimitiveU64:       "uint64",
		ir.PrimitiveF32:       "float32",
		ir.PrimitiveF64:       "float",
		ir.PrimitiveString:    "string",
		ir.PrimitiveBytes:     "byte[]",
		ir.PrimitiveUUID:      "Guid",
		ir.PrimitiveTimestamp: "DateTimeOffset",
	},
	TypeCase:  "pascal",
	FieldCase: "pascal",
}

// Generator emits F# source for a resolved schema.
type Generator struct{}

// New creates an F# generator.
func New() *Generator { return &Generator{} }

// Name returns the target identifier.
func (g *Generator) Name() string { return "fsharp" }

// Generate emits a single Types.gen.fs holding type declarations and
// serialize/deserialize pairs.
func (g *Generator) Generate(ctx context.Context, resolved *resolve.ResolvedSchema, opts gen.Options) (*gen.Result, error) {
	if err := gen.CheckSupported(resolved.Ordered, resolved.Functions, profile); err != nil {
		return nil, err
	}
	if err := gen.CheckCollisions(resolved.Ordered, profile); err != nil {
		return nil, err
	}

	e := newEmitter(resolved)
	content := e.emit()

	const path = "Types.gen.fs"
	if err := opts.Sink.WriteFile(ctx, path, content); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &gen.Result{
		Files:          []gen.OutputFile{{Path: path, Size: int64(len(content))}},
		TypesGenerated: len(resolved.Ordered),
	}, nil
}
