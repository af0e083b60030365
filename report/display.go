package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

var (
	errorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	warnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	infoStyleBG  = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	errorColorFG = pterm.FgRed
	warnColorFG  = pterm.FgYellow
	posColorFG   = pterm.FgGray
)

// display prints a diagnostic to the console.  The caller holds the
// reporter's mutex.
func (r *Reporter) display(diag Diagnostic) {
	switch diag.Severity {
	case SevError:
		errorStyleBG.Print(strings.Title(diag.Kind.String()) + " Error")
	case SevWarn:
		warnStyleBG.Print("Warning")
	default:
		infoStyleBG.Print("Info")
	}

	fmt.Print(" ")
	if diag.Position.Line > 0 {
		posColorFG.Print(diag.Position.String() + ": ")
	}
	fmt.Println(diag.Message)

	if diag.Position.Line > 0 {
		r.displaySourceLine(diag)
	}
}

// displaySourceLine echoes the offending source line with a caret marker
// under the diagnostic's column.
func (r *Reporter) displaySourceLine(diag Diagnostic) {
	text, ok := r.sources[diag.Position.Filename]
	if !ok {
		return
	}

	lines := bytes.Split(text, []byte{'\n'})
	if diag.Position.Line > len(lines) {
		return
	}

	line := strings.ReplaceAll(string(lines[diag.Position.Line-1]), "\t", "    ")
	lineNum := fmt.Sprintf("%d | ", diag.Position.Line)

	fmt.Println(lineNum + line)

	col := diag.Position.Col
	if col < 1 {
		col = 1
	}

	fmt.Print(strings.Repeat(" ", len(lineNum)+col-1))
	if diag.Severity == SevError {
		errorColorFG.Println("^")
	} else {
		warnColorFG.Println("^")
	}
	fmt.Println()
}

// DisplayFatal prints a fatal, non-positional error banner.  It does not
// exit: the driver decides how to terminate.
func DisplayFatal(msg string, args ...interface{}) {
	errorStyleBG.Print("Fatal Error")
	fmt.Printf(" %s\n", fmt.Sprintf(msg, args...))
}
