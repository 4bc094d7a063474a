// Command thrushc is the compiler's CLI entry point (spec section 6.1),
// generalizing the teacher's own cobra command (`main.go`'s `command` var
// and `init()` flag registration) from "translate one C source file into
// Go assembly stubs" into the full flag surface this compiler's pipeline
// needs, with the same PersistentFlags-on-one-command shape.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/driver"
	"github.com/thrushlang/thrushc/internal/ir"
	"github.com/thrushlang/thrushc/internal/optdriver"
	"github.com/thrushlang/thrushc/internal/target"
)

var verbose bool

var command = &cobra.Command{
	Use:  "thrushc source [-o output]",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.PersistentFlags().GetString("output")
		emitIR, _ := cmd.PersistentFlags().GetBool("emit-ir")
		arch, _ := cmd.PersistentFlags().GetString("target")
		goos, _ := cmd.PersistentFlags().GetString("target-os")
		passes, _ := cmd.PersistentFlags().GetString("modificator-passes")
		listPasses, _ := cmd.PersistentFlags().GetBool("list-passes")
		listTargets, _ := cmd.PersistentFlags().GetBool("list-targets")

		if listPasses {
			for _, n := range optdriver.Names() {
				fmt.Println(n)
			}
			return
		}
		if listTargets {
			for _, n := range target.List() {
				fmt.Println(n)
			}
			return
		}

		source, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		result, err := driver.Compile(source, driver.Options{
			ModuleName: args[0], GOOS: goos, Arch: arch, Passes: passes,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		printDiagnostics(result.Sink, args[0], verbose)

		code := driver.ExitCode(result.Sink)
		if code != 0 {
			os.Exit(code)
		}

		text := ""
		if result.Module != nil {
			text = ir.Print(result.Module)
		}
		if emitIR || output == "" {
			fmt.Print(text)
			return
		}
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// printDiagnostics renders every recorded diagnostic to stderr, colorizing
// by severity the way the teacher renders its own clang/assembler error
// output verbatim (main.go's runCommand), generalized here since this
// compiler owns its diagnostics instead of shelling out for them.
func printDiagnostics(sink *diagnostics.Sink, filename string, verbose bool) {
	errorColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	bugColor := color.New(color.FgMagenta, color.Bold)

	for _, d := range sink.All() {
		var c *color.Color
		switch d.Severity {
		case diagnostics.SeverityWarning:
			c = warnColor
		case diagnostics.SeverityFrontendBug, diagnostics.SeverityBackendBug:
			c = bugColor
		default:
			c = errorColor
		}
		c.Fprintf(os.Stderr, "%s", d.Severity.String())
		fmt.Fprintf(os.Stderr, " [%s] %s:%d:%d: %s\n", d.Code, filename, d.Span.Line, d.Span.Start, d.Message)
		if d.Note != "" {
			fmt.Fprintf(os.Stderr, "  note: %s\n", d.Note)
		}
		if verbose && d.ReportFile != "" {
			fmt.Fprintf(os.Stderr, "  (detected at %s:%d)\n", d.ReportFile, d.ReportLine)
		}
	}
}

func init() {
	command.PersistentFlags().StringP("output", "o", "", "output file for the emitted IR (stdout if omitted)")
	command.PersistentFlags().Bool("emit-ir", false, "print the generated IR to stdout regardless of -o")
	command.PersistentFlags().StringP("target", "t", runtime.GOARCH, "target architecture (amd64, arm64, loong64, riscv64)")
	command.PersistentFlags().String("target-os", runtime.GOOS, "target operating system (darwin, linux, windows)")
	command.PersistentFlags().String("modificator-passes", "", "comma-separated optimization pass pipeline")
	command.PersistentFlags().Bool("list-passes", false, "list every available optimization pass and exit")
	command.PersistentFlags().Bool("list-targets", false, "list every supported target architecture and exit")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, increase diagnostic verbosity")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
