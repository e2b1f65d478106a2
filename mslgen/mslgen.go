// Package mslgen drives schema compilation: parse, resolve, then fan out
// to the registered code generators. It is the library entry point; the
// CLI in cmd/mslc is a thin shell around Run and Watch.
package mslgen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/msl-lang/mslc/mslgen/gen"
	_ "github.com/msl-lang/mslc/mslgen/gen/fsharp"
	_ "github.com/msl-lang/mslc/mslgen/gen/golang"
	_ "github.com/msl-lang/mslc/mslgen/gen/rust"
	_ "github.com/msl-lang/mslc/mslgen/gen/typescript"
	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/parser"
	"github.com/msl-lang/mslc/mslgen/resolve"
	"github.com/msl-lang/mslc/mslgen/sink"
)

var validate = validator.New()

// Options configures one compilation run.
type Options struct {
	// SchemaPath is the schema document to compile.
	SchemaPath string `validate:"required"`

	// OutputRoot is the directory that receives per-target subdirectories.
	OutputRoot string `validate:"required"`

	// Targets selects the generators to run. Unknown names are reported
	// as per-target failures, not option errors.
	Targets []string `validate:"min=1,dive,required"`

	// Verify regenerates into memory and diffs against OutputRoot
	// instead of writing.
	Verify bool

	// Logger receives per-target progress. Nil disables logging.
	Logger *zerolog.Logger
}

// TargetResult is one target's successful generation outcome.
type TargetResult struct {
	Target         string
	Files          []gen.OutputFile
	TypesGenerated int
	Elapsed        time.Duration
}

// TargetFailure is one target's failure. Other targets are unaffected.
type TargetFailure struct {
	Target string
	Err    error
}

// Report summarizes a compilation run.
type Report struct {
	PerTarget []TargetResult
	Failures  []TargetFailure
	Warnings  []ir.Warning
}

// Failed reports whether any target failed or drifted.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// DriftError reports a generated file that no longer matches the
// reference tree under the output root.
type DriftError struct {
	Target string
	File   string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("target %q: %s is out of date", e.Target, e.File)
}

// Run compiles the schema at opts.SchemaPath for every requested target.
// Parse and resolve failures abort the run; per-target generation
// failures are collected in the report and do not block other targets.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	log := logger(opts)

	schema, err := parser.ParseFile(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	resolved, err := resolve.Resolve(schema)
	if err != nil {
		return nil, err
	}

	report := &Report{Warnings: schema.Warnings}
	seen := make(map[string]bool, len(opts.Targets))
	for _, target := range opts.Targets {
		if seen[target] {
			continue
		}
		seen[target] = true

		g, ok := gen.Get(target)
		if !ok {
			report.Failures = append(report.Failures, TargetFailure{
				Target: target,
				Err:    fmt.Errorf("unknown target %q", target),
			})
			continue
		}

		start := time.Now()
		if opts.Verify {
			verifyTarget(ctx, g, resolved, opts, report, log)
		} else {
			generateTarget(ctx, g, resolved, opts, report, log, start)
		}
	}
	return report, nil
}

func generateTarget(ctx context.Context, g gen.Generator, resolved *resolve.ResolvedSchema, opts Options, report *Report, log zerolog.Logger, start time.Time) {
	out := sink.NewFilesystemSink(filepath.Join(opts.OutputRoot, g.Name()))
	result, err := g.Generate(ctx, resolved, gen.Options{Sink: out})
	if err != nil {
		log.Error().Str("target", g.Name()).Err(err).Msg("generation failed")
		report.Failures = append(report.Failures, TargetFailure{Target: g.Name(), Err: err})
		return
	}

	elapsed := time.Since(start)
	report.PerTarget = append(report.PerTarget, TargetResult{
		Target:         g.Name(),
		Files:          result.Files,
		TypesGenerated: result.TypesGenerated,
		Elapsed:        elapsed,
	})
	report.Warnings = append(report.Warnings, result.Warnings...)
	log.Info().
		Str("target", g.Name()).
		Int("files", len(result.Files)).
		Int("types", result.TypesGenerated).
		Dur("elapsed", elapsed).
		Msg("generated")
}

// verifyTarget regenerates into memory and compares byte-for-byte against
// the files under the output root. Nothing is written.
func verifyTarget(ctx context.Context, g gen.Generator, resolved *resolve.ResolvedSchema, opts Options, report *Report, log zerolog.Logger) {
	mem := sink.NewMemorySink()
	result, err := g.Generate(ctx, resolved, gen.Options{Sink: mem})
	if err != nil {
		report.Failures = append(report.Failures, TargetFailure{Target: g.Name(), Err: err})
		return
	}

	targetRoot := filepath.Join(opts.OutputRoot, g.Name())
	clean := true
	for _, f := range result.Files {
		want := mem.Get(f.Path)
		got, err := os.ReadFile(filepath.Join(targetRoot, filepath.FromSlash(f.Path)))
		if err != nil || !bytes.Equal(got, want) {
			clean = false
			drift := &DriftError{Target: g.Name(), File: f.Path}
			log.Warn().Str("target", g.Name()).Str("file", f.Path).Msg("drift detected")
			report.Failures = append(report.Failures, TargetFailure{Target: g.Name(), Err: drift})
		}
	}
	if clean {
		report.PerTarget = append(report.PerTarget, TargetResult{
			Target:         g.Name(),
			Files:          result.Files,
			TypesGenerated: result.TypesGenerated,
		})
		log.Info().Str("target", g.Name()).Int("files", len(result.Files)).Msg("up to date")
	}
}

func logger(opts Options) zerolog.Logger {
	if opts.Logger != nil {
		return *opts.Logger
	}
	return zerolog.Nop()
}
