// Package gen defines the interface between the generation driver and the
// per-target code generators, plus the LanguageProfile configuration that
// keeps language-specific rules out of generator control flow.
package gen

import (
	"context"

	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
	"github.com/msl-lang/mslc/mslgen/sink"
)

// Generator transforms a resolved schema into target language source code.
// Implementations are pure: generating the same resolved schema twice
// produces byte-identical output.
type Generator interface {
	// Name returns the target identifier (e.g. "go", "typescript", "rust").
	Name() string

	// Generate emits type definitions, codecs, and (optionally) call
	// wrappers for the schema into opts.Sink.
	Generate(ctx context.Context, resolved *resolve.ResolvedSchema, opts Options) (*Result, error)
}

// Options configures one generation pass.
type Options struct {
	// Sink receives generated output files.
	Sink sink.OutputSink
}

// Result contains generation output metadata.
type Result struct {
	// Files lists all files that were written.
	Files []OutputFile

	// TypesGenerated counts types successfully emitted.
	TypesGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []ir.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the sink-relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}
