// Copyright © 2018 The ELPS authors

package token

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from source text.  A Scanner
// tracks byte offsets, lines and columns so every emitted token carries a
// precise Location.
type Scanner struct {
	file string
	path string
	text string

	start     int // byte offset of the current token
	startLine int
	startCol  int

	next int // byte offset of the next unscanned rune
	line int
	col  int // column of the next unscanned rune
}

// NewScanner initializes and returns a new Scanner over text.
func NewScanner(file string, text string) *Scanner {
	return &Scanner{
		file:      file,
		text:      text,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
}

// SetPath associates a physical location (e.g. filesystem path) with s.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
}

// Text returns the text scanned since the last call to either EmitToken or
// Ignore.
func (s *Scanner) Text() string {
	return s.text[s.start:s.next]
}

// Peek returns the next rune to be scanned.  Peek returns false at the end of
// the input.
func (s *Scanner) Peek() (rune, bool) {
	if s.next >= len(s.text) {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s.text[s.next:])
	return c, true
}

// PeekAt returns the rune n runes beyond the next rune.
func (s *Scanner) PeekAt(n int) (rune, bool) {
	pos := s.next
	for i := 0; ; i++ {
		if pos >= len(s.text) {
			return 0, false
		}
		c, size := utf8.DecodeRuneInString(s.text[pos:])
		if i == n {
			return c, true
		}
		pos += size
	}
}

// ScanRune includes the next rune in the current token.  ScanRune returns
// false at the end of the input.
func (s *Scanner) ScanRune() bool {
	if s.next >= len(s.text) {
		return false
	}
	c, size := utf8.DecodeRuneInString(s.text[s.next:])
	s.next += size
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return true
}

// EOF returns true when all input has been scanned.
func (s *Scanner) EOF() bool {
	return s.next >= len(s.text)
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok || !fn(peek) {
		return false
	}
	return s.ScanRune()
}

func (s *Scanner) AcceptRune(c rune) bool {
	peek, ok := s.Peek()
	if !ok || peek != c {
		return false
	}
	return s.ScanRune()
}

func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

func (s *Scanner) AcceptAny(charset string) bool {
	peek, ok := s.Peek()
	if !ok || !strings.ContainsRune(charset, peek) {
		return false
	}
	return s.ScanRune()
}

func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqSpace() int {
	return s.AcceptSeq(unicode.IsSpace)
}

// AcceptString accepts literal only if the input continues with all of it.
func (s *Scanner) AcceptString(literal string) bool {
	if !strings.HasPrefix(s.text[s.next:], literal) {
		return false
	}
	for range literal {
		s.ScanRune()
	}
	return true
}

// HasPrefix reports whether the unscanned input begins with prefix.
func (s *Scanner) HasPrefix(prefix string) bool {
	return strings.HasPrefix(s.text[s.next:], prefix)
}

// LocStart returns a Location referencing the beginning of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.next,
		Line: s.line,
		Col:  s.col,
	}
}
