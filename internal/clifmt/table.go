// Package clifmt renders operator-facing CLI output.
package clifmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultTableWidth   = 100
	defaultMinLastWidth = 24
	columnGap           = "  "
)

// Table is a fixed set of columns. Every column but the last is padded to its
// widest cell; the last one is word-wrapped to the remaining terminal width.
type Table struct {
	Title        string
	Headers      []string
	Rows         [][]string
	EmptyText    string
	DefaultWidth int
	MinLastWidth int
}

func (t Table) Print(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if title := strings.TrimSpace(t.Title); title != "" {
		fmt.Fprintln(out, Headerf("%s (%d)", title, len(t.Rows)))
	}
	if len(t.Rows) == 0 || len(t.Headers) == 0 {
		empty := strings.TrimSpace(t.EmptyText)
		if empty == "" {
			empty = "Nothing to show."
		}
		fmt.Fprintln(out, Warn(empty))
		return
	}

	last := len(t.Headers) - 1
	widths := make([]int, last)
	for i := range widths {
		widths[i] = utf8.RuneCountInString(t.Headers[i])
		for _, row := range t.Rows {
			if w := utf8.RuneCountInString(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	lastWidth := t.lastColumnWidth(out, widths)

	head := make([]string, 0, len(t.Headers))
	rule := make([]string, 0, len(t.Headers))
	for i, w := range widths {
		head = append(head, Key(padRightRunes(t.Headers[i], w)))
		rule = append(rule, Dim(strings.Repeat("-", w)))
	}
	head = append(head, Key(t.Headers[last]))
	rule = append(rule, Dim(strings.Repeat("-", lastWidth)))
	fmt.Fprintln(out, strings.Join(head, columnGap))
	fmt.Fprintln(out, strings.Join(rule, columnGap))

	indent := strings.Repeat(" ", sum(widths)+len(widths)*len(columnGap))
	for _, row := range t.Rows {
		cells := make([]string, 0, len(t.Headers))
		for i, w := range widths {
			c := padRightRunes(cell(row, i), w)
			if i == 0 {
				c = Success(c)
			}
			cells = append(cells, c)
		}
		lines := wrapTextRunes(cell(row, last), lastWidth)
		cells = append(cells, lines[0])
		fmt.Fprintln(out, strings.Join(cells, columnGap))
		for _, line := range lines[1:] {
			fmt.Fprintln(out, indent+line)
		}
	}
}

func (t Table) lastColumnWidth(out io.Writer, widths []int) int {
	width := t.DefaultWidth
	if width <= 0 {
		width = defaultTableWidth
	}
	minLast := t.MinLastWidth
	if minLast <= 0 {
		minLast = defaultMinLastWidth
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	rest := width - sum(widths) - len(widths)*len(columnGap)
	return max(rest, minLast)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

func padRightRunes(s string, width int) string {
	if missing := width - utf8.RuneCountInString(s); missing > 0 {
		return s + strings.Repeat(" ", missing)
	}
	return s
}

// wrapTextRunes splits text on spaces into lines of at most width runes,
// hard-breaking words that are longer than a line.
func wrapTextRunes(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 {
		return []string{strings.TrimSpace(text)}
	}
	var lines []string
	var current string
	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			r := []rune(word)
			lines = append(lines, string(r[:width]))
			word = string(r[width:])
		}
		switch {
		case word == "":
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
