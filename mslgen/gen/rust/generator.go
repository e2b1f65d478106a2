// Package rust generates serde type definitions and wire codecs from a
// resolved schema. Function call wrappers are not emitted for this
// target; the wire contract is carried entirely by the codecs.
package rust

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

// profile maps schema primitives onto the Rust types the generated code
// uses. 64-bit integers and binary data use newtypes whose serde
// implementations produce the canonical wire text.
var profile = gen.Profile{
	Target: "rust",
	Primitives: map[ir.PrimitiveKind]string{
		ir.PrimitiveBool:      "bool",
		ir.PrimitiveI32:       "i32",
		ir.PrimitiveI64:       "I64Str",
		ir.PrimitiveU32:       "u32",
		ir.PrimitiveU64:       "U64Str",
		ir.PrimitiveF32:       "f32",
		ir.PrimitiveF64:       "f64",
		ir.PrimitiveString:    "String",
		ir.PrimitiveBytes:     "Bytes",
		ir.PrimitiveUUID:      "uuid::Uuid",
		ir.PrimitiveTimestamp: "chrono::DateTime<chrono::Utc>",
	},
	TypeCase:  "pascal",
	FieldCase: "snake",
}

// Generator emits Rust source for a resolved schema.
type Generator struct{}

// New creates a Rust generator.
func New() *Generator { return &Generator{} }

// Name returns the target identifier.
func (g *Generator) Name() string { return "rust" }

// Generate emits a single types.gen.rs holding type declarations and
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

	const path = "types.gen.rs"
	if err := opts.Sink.WriteFile(ctx, path, content); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &gen.Result{
		Files:          []gen.OutputFile{{Path: path, Size: int64(len(content))}},
		TypesGenerated: len(resolved.Ordered),
	}, nil
}
