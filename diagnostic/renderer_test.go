// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, errors.New("not found: " + name)
			}
			return []byte(s), nil
		},
	}
}

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.clv": "(def x (+ 1 :a))",
	})
	got := render(t, r, Diagnostic{
		Severity:  SeverityError,
		Condition: "type-error",
		Message:   "+: argument is not a number: keyword",
		Spans: []Span{
			{File: "test.clv", Line: 1, Col: 8, EndCol: 15, Label: "in this call"},
		},
	})
	assert.Contains(t, got, "error[type-error]: +: argument is not a number: keyword")
	assert.Contains(t, got, "--> test.clv:1:8")
	assert.Contains(t, got, "(def x (+ 1 :a))")
	assert.Contains(t, got, "^^^^^^^^ in this call")
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.clv": "(def x 1)\n(def x 2)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "redefinition of x",
		Spans:    []Span{{File: "test.clv", Line: 2, Col: 1, EndCol: 9}},
	})
	assert.Contains(t, got, "warning: redefinition of x")
	assert.Contains(t, got, "--> test.clv:2:1")
	assert.Contains(t, got, " 2 |  (def x 2)")
}

func TestRenderNoSource(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{File: "stdin", Line: 5, Col: 3}},
	})
	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> stdin:5:3")
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "unresolved symbol: my-fn",
		Notes: []string{
			"in user/main at main.clv:10:5",
			"data: {:x 1}",
		},
	})
	assert.Contains(t, got, "= note: in user/main at main.clv:10:5")
	assert.Contains(t, got, "= note: data: {:x 1}")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.clv": "(defn true [] 42)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "cannot rebind constant: true",
		Spans:    []Span{{File: "test.clv", Line: 1, Col: 7}},
	})
	assert.Contains(t, got, " ^^^^\n")
}

func TestRenderNoSpans(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "module not found: missing",
	})
	assert.Equal(t, "error: module not found: missing\n", got)
}

func TestRenderWrap(t *testing.T) {
	r := testRenderer(nil)
	r.Width = 40
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "the quick brown fox jumps over the lazy dog and keeps on running",
	})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.True(t, len(lines) > 1, got)
	assert.True(t, strings.HasPrefix(lines[0], "error: the quick"), got)
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "       "), "continuation not indented: %q", line)
	}
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityError, Message: "boom"})
	assert.Contains(t, got, "\033[1;31m")
	assert.Contains(t, got, "boom")
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "note", SeverityNote.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
