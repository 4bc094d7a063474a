// Package driver wires the compiler stages into the single pipeline spec
// section 2 describes: lex, parse, analyze, generate, optimize. It is the
// only package that imports every stage package directly, generalizing
// the teacher's own `TranslateUnit.Translate` (main.go) — parseSource,
// generateGoStubs, compile, TranslateAssembly run in a fixed sequence,
// each short-circuiting on the previous step's error — into an
// accumulate-diagnostics pipeline. Each stage collects every diagnostic it
// can; the pipeline stops after lexing, parsing, analysis or code
// generation as soon as the sink holds an error, so optimization only runs
// on a module generated without errors.
package driver

import (
	"fmt"

	"github.com/thrushlang/thrushc/internal/codegen"
	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/ir"
	"github.com/thrushlang/thrushc/internal/lexer"
	"github.com/thrushlang/thrushc/internal/optdriver"
	"github.com/thrushlang/thrushc/internal/parser"
	"github.com/thrushlang/thrushc/internal/sema"
	"github.com/thrushlang/thrushc/internal/target"
)

// Options controls one compilation run (spec section 6.1's flags that
// reach the pipeline rather than the CLI layer itself).
type Options struct {
	ModuleName string
	GOOS       string
	Arch       string
	Passes     string // --modificator-passes value, "" for none
}

// Result is everything a caller (cmd/thrushc, or a test) needs out of one
// run: the emitted module (nil if compilation failed before codegen) and
// the full diagnostic sink.
type Result struct {
	Module *ir.Module
	Sink   *diagnostics.Sink
}

// Compile runs source through every stage in order, returning as much of
// Result as was reachable before diagnostics forced a stop.
func Compile(source []byte, opts Options) (Result, error) {
	sink := diagnostics.NewSink()

	tokens := lexer.Lex(source, sink)
	if sink.HasErrors() {
		return Result{Sink: sink}, nil
	}

	p := parser.New(tokens, sink)
	program := p.Parse()
	if sink.HasErrors() {
		return Result{Sink: sink}, nil
	}

	analyzer := sema.New(sink, p.Table(), p.ResolvedStructs())
	analyzer.Analyze(program.Declarations)
	if sink.HasErrors() {
		return Result{Sink: sink}, nil
	}

	tgt, err := target.Lookup(opts.Arch)
	if err != nil {
		return Result{Sink: sink}, fmt.Errorf("resolving target: %w", err)
	}

	gen := codegen.New(sink, tgt, p.ResolvedStructs())
	mod := gen.Generate(opts.ModuleName, opts.GOOS, program)
	if sink.HasErrors() {
		return Result{Module: mod, Sink: sink}, nil
	}

	if opts.Passes != "" {
		pipeline, err := optdriver.Parse(opts.Passes)
		if err != nil {
			return Result{Module: mod, Sink: sink}, fmt.Errorf("parsing optimization passes: %w", err)
		}
		pipeline.Run(mod, 4)
	}

	return Result{Module: mod, Sink: sink}, nil
}

// ExitCode maps a Result's diagnostics onto the process exit code spec
// section 7 specifies: 0 for a clean run, 1 for user errors, 2 for an
// internal frontend/backend bug report.
func ExitCode(sink *diagnostics.Sink) int {
	for _, d := range sink.All() {
		if d.Severity == diagnostics.SeverityFrontendBug || d.Severity == diagnostics.SeverityBackendBug {
			return 2
		}
	}
	if sink.HasErrors() {
		return 1
	}
	return 0
}
