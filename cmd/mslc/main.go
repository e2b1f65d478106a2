package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/msl-lang/mslc/mslgen"
)

type CLI struct {
	Verbose bool `help:"Enable debug logging." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Compile CompileCmd `cmd:"" help:"Compile a schema into generated sources."`
	Verify  VerifyCmd  `cmd:"" help:"Check generated sources against the schema without writing."`
}

type runContext struct {
	ctx context.Context
	log zerolog.Logger
}

type VersionCmd struct{}

func (c *VersionCmd) Run(*runContext) error {
	fmt.Println(Version())
	return nil
}

type CompileCmd struct {
	Schema  string   `arg:"" help:"Schema document to compile." type:"existingfile"`
	Out     string   `help:"Output root directory." short:"o" required:""`
	Targets []string `help:"Targets to generate." name:"target" short:"t" default:"go,typescript,rust,fsharp"`
	Watch   bool     `help:"Recompile when the schema changes." short:"w"`
}

func (c *CompileCmd) Run(rc *runContext) error {
	opts := mslgen.Options{
		SchemaPath: c.Schema,
		OutputRoot: c.Out,
		Targets:    c.Targets,
		Logger:     &rc.log,
	}
	if c.Watch {
		return mslgen.Watch(rc.ctx, opts)
	}
	report, err := mslgen.Run(rc.ctx, opts)
	if err != nil {
		return err
	}
	return failureErr(report)
}

type VerifyCmd struct {
	Schema  string   `arg:"" help:"Schema document to verify against." type:"existingfile"`
	Out     string   `help:"Reference output root directory." short:"o" required:""`
	Targets []string `help:"Targets to verify." name:"target" short:"t" default:"go,typescript,rust,fsharp"`
}

func (c *VerifyCmd) Run(rc *runContext) error {
	report, err := mslgen.Run(rc.ctx, mslgen.Options{
		SchemaPath: c.Schema,
		OutputRoot: c.Out,
		Targets:    c.Targets,
		Verify:     true,
		Logger:     &rc.log,
	})
	if err != nil {
		return err
	}
	return failureErr(report)
}

func failureErr(report *mslgen.Report) error {
	if !report.Failed() {
		return nil
	}
	var b strings.Builder
	for i, f := range report.Failures {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %v", f.Target, f.Err)
	}
	return errors.New(b.String())
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("mslc"),
		kong.Description("Schema compiler: typed definitions, wire codecs, and call wrappers for Go, TypeScript, Rust, and F#."),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if cli.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := kctx.Run(&runContext{ctx: ctx, log: log})
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	kctx.FatalIfErrorf(err)
}
