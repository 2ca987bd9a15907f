package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/attachments/attach"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pushStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	popStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const defaultWidth = 80

// terminalWidth returns the width of stdout, or defaultWidth when stdout is
// not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// bytesPerRow fits a hex dump row ("0000  xx xx ...") into width.
func bytesPerRow(width int) int {
	n := (width - 6) / 3
	switch {
	case n >= 16:
		return 16
	case n >= 8:
		return 8
	default:
		return 4
	}
}

func renderTrace(t *trace, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Attachment trace"))
	b.WriteString(" ")
	b.WriteString(t.carrier)
	b.WriteString("\n\n")

	b.WriteString("input:   " + strings.Join(t.input, " ") + "\n")
	b.WriteString("decoded: " + resultStyle.Render(strings.Join(t.decoded, " ")) + "\n\n")

	b.WriteString(fmt.Sprintf("wire (%d bytes):\n", len(t.wire)))
	b.WriteString(hexDump(t.wire, bytesPerRow(width)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("events (%d):\n", len(t.events)))
	for i, e := range t.events {
		b.WriteString(renderEvent(i, e))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEvent(i int, e attach.Event) string {
	op := pushStyle.Render(fmt.Sprintf("%-4s", e.Op))
	if e.Op == attach.OpPop {
		op = popStyle.Render(fmt.Sprintf("%-4s", e.Op))
	}
	indent := strings.Repeat("  ", max(e.Depth-1, 0))
	return fmt.Sprintf("%3d %s%s %s depth=%d store=%s",
		i, indent, op, keyStyle.Render(e.Key), e.Depth, e.Store.String()[:8])
}

func hexDump(p []byte, perRow int) string {
	var b strings.Builder
	for off := 0; off < len(p); off += perRow {
		end := min(off+perRow, len(p))
		b.WriteString(offsetStyle.Render(fmt.Sprintf("%04x", off)))
		b.WriteString(" ")
		for _, c := range p[off:end] {
			b.WriteString(fmt.Sprintf(" %02x", c))
		}
		b.WriteString("\n")
	}
	return b.String()
}
