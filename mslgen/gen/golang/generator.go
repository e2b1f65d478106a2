// Package golang generates Go type definitions, wire codecs, and call
// wrappers from a resolved schema.
package golang

import (
	"context"
	"fmt"

	"golang.org/x/tools/imports"

	"github.com/msl-lang/mslc/mslgen/gen"
	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
	"github.com/msl-lang/mslc/mslgen/sink"
)

func init() {
	gen.Register(New())
}

// profile maps schema primitives onto the Go types the generated code
// uses. 64-bit integers use string-encoded newtypes so their values
// survive decoders that read JSON numbers as doubles.
var profile = gen.Profile{
	Target: "go",
	Primitives: map[ir.PrimitiveKind]string{
		ir.PrimitiveBool:      "bool",
		ir.PrimitiveI32:       "int32",
		ir.PrimitiveI64:       "Int64String",
		ir.PrimitiveU32:       "uint32",
		ir.PrimitiveU64:       "Uint64String",
		ir.PrimitiveF32:       "float32",
		ir.PrimitiveF64:       "float64",
		ir.PrimitiveString:    "string",
		ir.PrimitiveBytes:     "[]byte",
		ir.PrimitiveUUID:      "uuid.UUID",
		ir.PrimitiveTimestamp: "time.Time",
	},
	TypeCase:  "pascal",
	FieldCase: "pascal",
}

// Generator emits Go source for a resolved schema.
type Generator struct {
	// PackageName is the package clause of the generated files.
	PackageName string
}

// New creates a Go generator with the default package name.
func New() *Generator {
	return &Generator{PackageName: "schema"}
}

// Name returns the target identifier.
func (g *Generator) Name() string { return "go" }

// Generate emits types.gen.go, codec.gen.go, and (when the schema
// declares functions) calls.gen.go. Output is gofmt-stable.
func (g *Generator) Generate(ctx context.Context, resolved *resolve.ResolvedSchema, opts gen.Options) (*gen.Result, error) {
	if err := gen.CheckSupported(resolved.Ordered, resolved.Functions, profile); err != nil {
		return nil, err
	}
	if err := gen.CheckCollisions(resolved.Ordered, profile); err != nil {
		return nil, err
	}

	e := newEmitter(g.PackageName, resolved)

	files := map[string][]byte{
		"types.gen.go": e.typesFile(),
		"codec.gen.go": e.codecFile(),
	}
	if len(resolved.Functions) > 0 {
		files["calls.gen.go"] = e.callsFile()
	}

	result := &gen.Result{TypesGenerated: len(resolved.Ordered)}
	for _, name := range [...]string{"types.gen.go", "codec.gen.go", "calls.gen.go"} {
		src, ok := files[name]
		if !ok {
			continue
		}
		formatted, err := imports.Process(name, src, nil)
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		if err := writeFile(ctx, opts.Sink, name, formatted, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func writeFile(ctx context.Context, s sink.OutputSink, path string, content []byte, result *gen.Result) error {
	if err := s.WriteFile(ctx, path, content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	result.Files = append(result.Files, gen.OutputFile{Path: path, Size: int64(len(content))})
	return nil
}
