// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luthersystems/clove/diagnostic"
)

// errSilent is returned by commands which have already reported their
// failure.
type errSilent struct {
	code int
}

func (e *errSilent) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func parseColorMode(s string) (diagnostic.ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return diagnostic.ColorAuto, nil
	case "always":
		return diagnostic.ColorAlways, nil
	case "never":
		return diagnostic.ColorNever, nil
	}
	return diagnostic.ColorAuto, fmt.Errorf("invalid color mode: %q", s)
}

// renderError writes err to w as a diagnostic.
func renderError(w io.Writer, err error) {
	mode, perr := parseColorMode(colorFlag)
	if perr != nil {
		mode = diagnostic.ColorAuto
	}
	r := &diagnostic.Renderer{Color: mode, Width: 100}
	if rerr := r.Render(w, diagnostic.FromError(err)); rerr != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck // last resort
	}
}
