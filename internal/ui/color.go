package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	genStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	skpStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	asyncStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func GenLine(w io.Writer, path string, tests int) {
	fmt.Fprintf(w, "%s  %s (%d tests)\n", genStyle.Render("gen"), path, tests)
}

func SkpLine(w io.Writer, path string) {
	fmt.Fprintln(w, skpStyle.Render("skp")+"  "+path)
}

func OkLine(w io.Writer, path string, tests int) {
	fmt.Fprintf(w, "%s   %s (%d tests)\n", genStyle.Render("ok"), path, tests)
}

// ErrLine prints a diagnostic. Multi-line messages are indented under the
// first line.
func ErrLine(w io.Writer, msg string) {
	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")
	fmt.Fprintln(w, errStyle.Render("err")+"  "+lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintln(w, "     "+l)
	}
}

func SummaryLine(w io.Writer, files, tests int) {
	fmt.Fprintf(w, "generated %d files, %d tests\n", files, tests)
}

func CheckSummaryLine(w io.Writer, files, tests, failed int) {
	fmt.Fprintf(w, "checked %d files, %d tests, %d errors\n", files, tests, failed)
}

func ListRow(w io.Writer, spec, scope, name string, async bool, specWidth, scopeWidth int) {
	mode := ""
	if async {
		mode = "  " + asyncStyle.Render("async")
	}
	fmt.Fprintf(w, "%-*s  %-*s  %s%s\n", specWidth, spec, scopeWidth, scope, name, mode)
}
