package report

import (
	"fmt"
	"sync"
)

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during compilation.  The reporter respects the set log
// level and is synchronized: its methods can be safely called from multiple
// goroutines (the binder's import fan-out reports through it concurrently).
// It implements Handler.
type Reporter struct {
	// The mutex used to synchronize the reporting methods.
	m sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels above.
	logLevel int

	// fset is used to resolve positions attached to diagnostics.
	fset *FileSet

	// sources optionally maps file names to their contents for source echo.
	sources map[string][]byte

	// The diagnostics recorded so far, in report order.
	diags []Diagnostic

	errorCount int
	warnCount  int
}

// NewReporter creates a new reporter with the given log level and file set.
func NewReporter(logLevel int, fset *FileSet) *Reporter {
	return &Reporter{
		logLevel: logLevel,
		fset:     fset,
		sources:  make(map[string][]byte),
	}
}

// AddSource registers the contents of a file so diagnostics within it can
// echo the offending source line.
func (r *Reporter) AddSource(name string, text []byte) {
	r.m.Lock()
	defer r.m.Unlock()

	r.sources[name] = text
}

// Report records and displays a diagnostic.  This is the Handler entry point.
func (r *Reporter) Report(diag Diagnostic) {
	r.m.Lock()
	defer r.m.Unlock()

	r.diags = append(r.diags, diag)

	switch diag.Severity {
	case SevError:
		r.errorCount++
		if r.logLevel >= LogLevelError {
			r.display(diag)
		}
	case SevWarn:
		r.warnCount++
		if r.logLevel >= LogLevelWarn {
			r.display(diag)
		}
	default:
		if r.logLevel >= LogLevelVerbose {
			r.display(diag)
		}
	}
}

// -----------------------------------------------------------------------------

// ErrorAt reports an error of the given kind at a position.
func (r *Reporter) ErrorAt(kind ErrorKind, pos Pos, msg string, args ...interface{}) {
	r.Report(Diagnostic{
		Severity: SevError,
		Kind:     kind,
		Position: r.Position(pos),
		Message:  fmt.Sprintf(msg, args...),
	})
}

// WarnAt reports a warning with an optional diagnostic code at a position.
func (r *Reporter) WarnAt(kind ErrorKind, code string, pos Pos, msg string, args ...interface{}) {
	r.Report(Diagnostic{
		Severity: SevWarn,
		Kind:     kind,
		Position: r.Position(pos),
		Message:  fmt.Sprintf(msg, args...),
		Code:     code,
	})
}

// InfoAt reports an informational message at a position.
func (r *Reporter) InfoAt(code string, pos Pos, msg string, args ...interface{}) {
	r.Report(Diagnostic{
		Severity: SevInfo,
		Position: r.Position(pos),
		Message:  fmt.Sprintf(msg, args...),
		Code:     code,
	})
}

// Position resolves a position through the reporter's file set.
func (r *Reporter) Position(pos Pos) TextPosition {
	if r.fset == nil {
		return TextPosition{}
	}
	return r.fset.Position(pos)
}

// -----------------------------------------------------------------------------

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount
}

// WarningCount returns the number of warnings reported so far.
func (r *Reporter) WarningCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.warnCount
}

// ShouldProceed indicates whether or not there have been any errors that
// should cause compilation to stop at the current phase.
func (r *Reporter) ShouldProceed() bool {
	return r.ErrorCount() == 0
}

// Diagnostics returns a snapshot of all diagnostics recorded so far.
func (r *Reporter) Diagnostics() []Diagnostic {
	r.m.Lock()
	defer r.m.Unlock()

	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}
