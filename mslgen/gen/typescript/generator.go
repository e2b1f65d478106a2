// Package typescript generates TypeScript type definitions, wire codecs,
// and call wrappers from a resolved schema.
package typescript

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

// profile maps schema primitives onto TypeScript types. 64-bit integers
// are bigint so the full range is representable; their wire form is a
// decimal string. Map keys are always the key's canonical wire text.
var profile = gen.Profile{
	Target: "typescript",
	Primitives: map[ir.PrimitiveKind]string{
		ir.PrimitiveBool:      "boolean",
		ir.PrimitiveI32:       "number",
		ir.PrimitiveI64:       "bigint",
		ir.PrimitiveU32:       "number",
		ir.PrimitiveU64:       "bigint",
		ir.PrimitiveF32:       "number",
		ir.PrimitiveF64:       "number",
		ir.PrimitiveString:    "string",
		ir.PrimitiveBytes:     "Uint8Array",
		ir.PrimitiveUUID:      "string",
		ir.PrimitiveTimestamp: "Date",
	},
	TypeCase:  "pascal",
	FieldCase: "preserve",
}

// Generator emits TypeScript source for a resolved schema.
type Generator struct{}

// New creates a TypeScript generator.
func New() *Generator { return &Generator{} }

// Name returns the target identifier.
func (g *Generator) Name() string { return "typescript" }

// Generate emits a single types.gen.ts holding type declarations, wire
// codecs, and (when the schema declares functions) call wrappers.
func (g *Generator) Generate(ctx context.Context, resolved *resolve.ResolvedSchema, opts gen.Options) (*gen.Result, error) {
	if err := gen.CheckSupported(resolved.Ordered, resolved.Functions, profile); err != nil {
		return nil, err
	}
	if err := gen.CheckCollisions(resolved.Ordered, profile); err != nil {
		return nil, err
	}

	e := newEmitter(resolved)
	content := e.emit()

	const path = "types.gen.ts"
	if err := opts.Sink.WriteFile(ctx, path, content); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &gen.Result{
		Files:          []gen.OutputFile{{Path: path, Size: int64(len(content))}},
		TypesGenerated: len(resolved.Ordered),
	}, nil
}
