// Package diagnostics implements the error sink shared by every compiler
// stage (spec section 7). It accumulates user errors, warnings, and internal
// "bug" reports without halting the owning pass, so a single run can surface
// many problems at once.
package diagnostics

import (
	"fmt"

	"github.com/thrushlang/thrushc/internal/span"
)

// Severity classifies a Diagnostic per spec section 7's taxonomy.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityFrontendBug
	SeverityBackendBug
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityFrontendBug:
		return "frontend bug"
	case SeverityBackendBug:
		return "backend bug"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported problem: a stable code, a human message,
// an optional note, the span it refers to, and — for internal bugs — the
// compiler source location that detected the invariant violation.
type Diagnostic struct {
	Code       string
	Message    string
	Note       string
	Span       span.Span
	Severity   Severity
	ReportFile string // set only for Severity >= SeverityFrontendBug
	ReportLine int
}

// Error satisfies the error interface so a Diagnostic can be returned or
// wrapped directly by stage functions that need a single representative
// error value (the sink itself remains the source of truth for all of them).
func (d Diagnostic) Error() string {
	if d.Note != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Note)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Sink is the append-only, mutable-by-reference diagnostic collector passed
// to every stage. It is the only cross-stage mutable state in the pipeline
// (spec section 5's "shared-resource policy").
type Sink struct {
	items []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) push(d Diagnostic) {
	s.items = append(s.items, d)
}

// Errorf records a user error (Severity error) with the given code, span,
// and formatted message.
func (s *Sink) Errorf(code string, sp span.Span, format string, args ...any) {
	s.push(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: sp, Severity: SeverityError})
}

// ErrorNote is like Errorf but additionally attaches a note line.
func (s *Sink) ErrorNote(code string, sp span.Span, note string, format string, args ...any) {
	s.push(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Note: note, Span: sp, Severity: SeverityError})
}

// Warnf records a user warning (never fatal).
func (s *Sink) Warnf(code string, sp span.Span, format string, args ...any) {
	s.push(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: sp, Severity: SeverityWarning})
}

// FrontendBugf records an internal invariant violation detected by the
// lexer, parser, semantic analyzer, or type checker, with the compiler
// source location that detected it (spec section 7, item 3).
func (s *Sink) FrontendBugf(sp span.Span, reportFile string, reportLine int, format string, args ...any) {
	s.push(Diagnostic{
		Code: "E9000", Message: fmt.Sprintf(format, args...), Span: sp,
		Severity: SeverityFrontendBug, ReportFile: reportFile, ReportLine: reportLine,
	})
}

// BackendBugf is FrontendBugf's codegen-side counterpart (spec section 7,
// item 4).
func (s *Sink) BackendBugf(sp span.Span, reportFile string, reportLine int, format string, args ...any) {
	s.push(Diagnostic{
		Code: "E9100", Message: fmt.Sprintf(format, args...), Span: sp,
		Severity: SeverityBackendBug, ReportFile: reportFile, ReportLine: reportLine,
	})
}

// All returns every diagnostic recorded so far, in report order.
func (s *Sink) All() []Diagnostic {
	return s.items
}

// HasErrors reports whether any recorded diagnostic is fatal to the overall
// compilation (error or either bug severity; warnings never are).
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity != SeverityWarning {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics whose severity exactly matches
// sev; callers typically want Errors()/Warnings().
func (s *Sink) Count(sev Severity) int {
	n := 0
	for _, d := range s.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Errors returns only the error-severity diagnostics (excludes warnings and
// internal bugs).
func (s *Sink) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.items {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only the warning-severity diagnostics.
func (s *Sink) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.items {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
