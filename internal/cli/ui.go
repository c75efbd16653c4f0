package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/overlaysmith/pkg/tree"
)

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorFail   = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")  // light blue
	colorText   = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)

	styleText        = lipgloss.NewStyle().Foreground(colorText)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// status icons
var (
	markOK   = lipgloss.NewStyle().Foreground(colorOK).Render("✓")
	markFail = lipgloss.NewStyle().Foreground(colorFail).Render("✗")
	markInfo = lipgloss.NewStyle().Foreground(colorLabel).Render("›")
)

// uiOut receives every status line.
var uiOut io.Writer = os.Stdout

func statusLine(mark, format string, args ...any) {
	fmt.Fprintln(uiOut, mark+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { statusLine(markOK, format, args...) }
func printError(format string, args ...any)   { statusLine(markFail, format, args...) }
func printInfo(format string, args ...any)    { statusLine(markInfo, format, args...) }

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written output file.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+styleText.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleLabel.Render(key)+" "+styleText.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(uiOut) }

// printReport summarizes a tree pass: one line of counts, then every
// removed or retained orphan package.
func printReport(rep *tree.Report) {
	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, StyleHighlight.Render(fmt.Sprint(n))+StyleDim.Render(" "+label))
		}
	}
	add(len(rep.Generated), "generated")
	add(len(rep.Refreshed), "refreshed")
	add(len(rep.Scrubbed), "scrubbed")
	add(len(rep.Removed), "removed")
	add(len(rep.Retained), "kept")
	add(len(rep.Digested), "digested")
	if parts == nil {
		parts = []string{StyleDim.Render("nothing to do")}
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))

	for _, cp := range rep.Removed {
		printDetail("removed %s", cp)
	}
	for _, cp := range rep.Retained {
		printDetail("kept orphan %s", cp)
	}
}
