// Copyright © 2018 The ELPS authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScannerLocation(t *testing.T) {
	s := NewScanner("test", "ab\ncd")
	assert.True(t, s.ScanRune())
	assert.True(t, s.ScanRune())
	tok := s.EmitToken(ATOM)
	assert.Equal(t, "ab", tok.Text)
	assert.Equal(t, &Location{File: "test", Pos: 0, Line: 1, Col: 1}, tok.Source)

	assert.True(t, s.AcceptSpace())
	s.Ignore()
	assert.Equal(t, 2, s.AcceptSeq(func(c rune) bool { return c != ' ' }))
	tok = s.EmitToken(ATOM)
	assert.Equal(t, "cd", tok.Text)
	assert.Equal(t, 3, tok.Source.Pos)
	assert.Equal(t, 2, tok.Source.Line)
	assert.Equal(t, 1, tok.Source.Col)
	assert.True(t, s.EOF())
	assert.False(t, s.ScanRune())
}

func TestScannerMultibyte(t *testing.T) {
	s := NewScanner("test", "λx y")
	assert.Equal(t, 2, s.AcceptSeq(func(c rune) bool { return c != ' ' }))
	s.EmitToken(ATOM)
	s.AcceptSpace()
	s.Ignore()
	s.ScanRune()
	tok := s.EmitToken(ATOM)
	assert.Equal(t, "y", tok.Text)
	assert.Equal(t, 4, tok.Source.Pos)
	assert.Equal(t, 4, tok.Source.Col)
}

func TestScannerAcceptString(t *testing.T) {
	s := NewScanner("test", `"""abc"""`)
	assert.True(t, s.HasPrefix(`"""`))
	assert.False(t, s.AcceptString(`""""`))
	assert.True(t, s.AcceptString(`"""`))
	c, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, 'a', c)
	c, ok = s.PeekAt(2)
	assert.True(t, ok)
	assert.Equal(t, 'c', c)
	_, ok = s.PeekAt(20)
	assert.False(t, ok)
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "f:2:3", (&Location{File: "f", Line: 2, Col: 3}).String())
	assert.Equal(t, "f:2", (&Location{File: "f", Line: 2}).String())
	assert.Equal(t, "f[7]", (&Location{File: "f", Pos: 7}).String())
	assert.Equal(t, "native", Native("native").String())
}
