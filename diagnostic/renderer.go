// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// tabWidth is the number of columns a tab occupies in a rendered snippet.
const tabWidth = 4

// Renderer formats diagnostics as annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	// Width wraps messages and notes longer than Width columns.  Zero
	// disables wrapping.
	Width int
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	bw := bufio.NewWriter(w)
	out := &output{
		w:       bw,
		p:       choosePalette(r.Color, fileFromWriter(w)),
		sources: make(map[string][]string),
	}
	r.writeHeader(out, d)
	for _, span := range d.Spans {
		r.writeSpan(out, span)
	}
	for _, note := range d.Notes {
		out.printf("   %s=%s note: %s\n", out.p.boldCyan, out.p.reset, r.wrap(note, len("   = note: ")))
	}
	if out.err != nil {
		return out.err
	}
	return bw.Flush()
}

// output accumulates the first write error and caches the lines of source
// files read while rendering.
type output struct {
	w       io.Writer
	p       palette
	err     error
	sources map[string][]string
}

func (o *output) printf(format string, a ...interface{}) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, format, a...)
}

// gutter writes the line number column followed by text.
func (o *output) gutter(number string, width int, text string) {
	o.printf(" %s%*s |%s%s\n", o.p.boldBlue, width, number, o.p.reset, text)
}

var severityColor = map[Severity]func(palette) string{
	SeverityError:   func(p palette) string { return p.boldRed },
	SeverityWarning: func(p palette) string { return p.yellow },
	SeverityNote:    func(p palette) string { return p.boldCyan },
}

func (r *Renderer) writeHeader(out *output, d Diagnostic) {
	label := d.Severity.String()
	if d.Condition != "" {
		label += "[" + d.Condition + "]"
	}
	color := ""
	if fn, ok := severityColor[d.Severity]; ok {
		color = fn(out.p)
	}
	out.printf("%s%s%s%s: %s%s%s\n",
		color, out.p.bold, label, out.p.reset,
		out.p.bold, r.wrap(d.Message, len(label)+2), out.p.reset)
}

func (r *Renderer) writeSpan(out *output, span Span) {
	loc := span.File
	if span.Line > 0 {
		loc += ":" + strconv.Itoa(span.Line)
		if span.Col > 0 {
			loc += ":" + strconv.Itoa(span.Col)
		}
	}
	out.printf("  %s-->%s %s\n", out.p.boldBlue, out.p.reset, loc)

	source, ok := r.sourceLine(out, span.File, span.Line)
	if !ok {
		out.printf("   %s|%s\n", out.p.boldBlue, out.p.reset)
		return
	}
	number := strconv.Itoa(span.Line)
	width := len(number)
	out.gutter("", width, "")
	out.gutter(number, width, "  "+strings.ReplaceAll(source, "\t", strings.Repeat(" ", tabWidth)))

	pad, marks := underline(source, span.Col, span.EndCol)
	mark := "  " + pad + out.p.boldRed + marks + out.p.reset
	if span.Label != "" {
		mark += " " + out.p.boldRed + span.Label + out.p.reset
	}
	out.gutter("", width, mark)
	out.gutter("", width, "")
}

// underline returns the padding preceding the highlighted columns of source
// and the carets marking them.  An endCol of zero extends the mark to the
// end of the token starting at col.
func underline(source string, col, endCol int) (string, string) {
	if col <= 0 {
		col = 1
	}
	if endCol <= 0 {
		endCol = tokenEnd(source, col)
	}
	if endCol < col {
		endCol = col
	}
	prefix := ""
	if col-1 <= len(source) {
		prefix = source[:col-1]
	}
	return strings.Repeat(" ", displayWidth(prefix)), strings.Repeat("^", endCol-col+1)
}

// tokenEnd returns the 1-based column of the last byte of the token at col.
func tokenEnd(source string, col int) int {
	if col > len(source) {
		return col
	}
	end := col - 1
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if strings.ContainsRune(" \t()[]{}", ch) {
			break
		}
		end += size
	}
	if end == col-1 {
		return col
	}
	return end
}

func (r *Renderer) sourceLine(out *output, file string, line int) (string, bool) {
	if line <= 0 || file == "" {
		return "", false
	}
	lines, cached := out.sources[file]
	if !cached {
		lines = r.readLines(file)
		out.sources[file] = lines
	}
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func (r *Renderer) readLines(file string) []string {
	read := r.SourceReader
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(file)
	if err != nil {
		return nil
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// wrap breaks s at r.Width and indents continuation lines by hang columns.
func (r *Renderer) wrap(s string, hang int) string {
	if r.Width <= 0 || len(s)+hang <= r.Width {
		return s
	}
	width := r.Width - hang
	if width < 20 {
		width = 20
	}
	first, rest, ok := strings.Cut(wordwrap.String(s, width), "\n")
	if !ok {
		return first
	}
	return first + "\n" + indent.String(rest, uint(hang))
}

// displayWidth returns the display width of a string with tabs expanded.
func displayWidth(s string) int {
	return utf8.RuneCountInString(s) + strings.Count(s, "\t")*(tabWidth-1)
}

func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
