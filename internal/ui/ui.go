// Package ui holds the terminal palette and symbols for xenwrap
// diagnostics. The relay prints exactly one result to stdout; anything
// styled here goes to stderr.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ColorError is the failure color, plain ANSI for terminal
// compatibility.
const ColorError lipgloss.Color = "1" // Red

// SymbolFail marks a failed invocation.
const SymbolFail = "✗"

// RenderError writes a failure diagnostic to w. Structured errors
// already carry the failure symbol in their first line; it gets the
// error color, the rest stays unstyled so causes and suggestions remain
// copy-pasteable.
func RenderError(w io.Writer, err error) {
	style := lipgloss.NewStyle().Foreground(ColorError)
	msg := err.Error()

	// Style only the leading symbol when present.
	if strings.HasPrefix(msg, SymbolFail) {
		fmt.Fprintf(w, "%s%s", style.Render(SymbolFail), strings.TrimPrefix(msg, SymbolFail))
		if !strings.HasSuffix(msg, "\n") {
			fmt.Fprintln(w)
		}
		return
	}
	fmt.Fprintf(w, "%s %s\n", style.Render(SymbolFail), msg)
}
