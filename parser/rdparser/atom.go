// Copyright © 2018 The ELPS authors

package rdparser

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/clove/lisp"
	"github.com/luthersystems/clove/parser/token"
	parsec "github.com/prataprc/goparsec"
	"github.com/shopspring/decimal"
)

type numberKind uint8

const (
	numNone numberKind = iota
	numLong
	numHex
	numBigInt
	numDouble
	numDecimal
)

// numberTerms are tried in order.  A term classifies an atom only when it
// matches the whole atom.
var numberTerms = []struct {
	kind numberKind
	term parsec.Parser
}{
	{numHex, parsec.Token(`[+-]?0[xX][0-9a-fA-F]+`, "HEX")},
	{numBigInt, parsec.Token(`[+-]?[0-9]+N`, "BIGINT")},
	{numLong, parsec.Token(`[+-]?[0-9]+`, "LONG")},
	{numDouble, parsec.Token(`[+-]?[0-9]+(?:\.[0-9]*(?:[eE][+-]?[0-9]+)?|[eE][+-]?[0-9]+)`, "DOUBLE")},
	{numDecimal, parsec.Token(`[+-]?[0-9]+(?:\.[0-9]+)?M`, "DECIMAL")},
}

// classifyNumber returns the kind of numeric literal text spells.
func classifyNumber(text string) numberKind {
	for _, t := range numberTerms {
		node, _ := t.term(parsec.NewScanner([]byte(text)))
		term, ok := node.(*parsec.Terminal)
		if ok && term.Value == text {
			return t.kind
		}
	}
	return numNone
}

// charNames are the named character literals.
var charNames = map[string]rune{
	"newline":   '\n',
	"space":     ' ',
	"tab":       '\t',
	"return":    '\r',
	"backspace": '\b',
	"formfeed":  '\f',
}

// readAtom classifies the text of an ATOM token.
func readAtom(tok *token.Token) (*lisp.LVal, error) {
	text := tok.Text
	switch classifyNumber(text) {
	case numLong:
		x, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return lisp.Long(x).WithSource(tok.Source), nil
		}
		// Integer literals too large for a long are read as bigints.
		return readBigInt(tok, text)
	case numHex:
		neg := strings.HasPrefix(text, "-")
		digits := strings.TrimLeft(text, "+-")[2:]
		x, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			return nil, token.Errorf(token.InvalidLiteral, tok.Source, "hex literal overflows long: %s", text)
		}
		if neg {
			x = -x
		}
		return lisp.Long(x).WithSource(tok.Source), nil
	case numBigInt:
		return readBigInt(tok, strings.TrimSuffix(text, "N"))
	case numDouble:
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, token.Errorf(token.InvalidLiteral, tok.Source, "invalid double literal: %s", text)
		}
		return lisp.Double(x).WithSource(tok.Source), nil
	case numDecimal:
		d, err := decimal.NewFromString(strings.TrimSuffix(text, "M"))
		if err != nil {
			return nil, token.Errorf(token.InvalidLiteral, tok.Source, "invalid decimal literal: %s", text)
		}
		return lisp.Decimal(d).WithSource(tok.Source), nil
	}
	switch text {
	case "nil":
		return lisp.Nil(), nil
	case "true":
		return lisp.Bool(true), nil
	case "false":
		return lisp.Bool(false), nil
	}
	switch {
	case strings.HasPrefix(text, ":"):
		return readKeyword(tok)
	case strings.HasPrefix(text, `#\`):
		return readChar(tok)
	case strings.HasPrefix(text, "#"):
		return nil, token.Errorf(token.InvalidLiteral, tok.Source, "unsupported dispatch macro: %s", text)
	}
	c, _ := utf8.DecodeRuneInString(text)
	if c >= '0' && c <= '9' || (len(text) > 1 && (c == '+' || c == '-') && text[1] >= '0' && text[1] <= '9') {
		return nil, token.Errorf(token.InvalidLiteral, tok.Source, "invalid number literal: %s", text)
	}
	return lisp.Symbol(text).WithSource(tok.Source), nil
}

func readBigInt(tok *token.Token, digits string) (*lisp.LVal, error) {
	x, ok := new(big.Int).SetString(strings.TrimPrefix(digits, "+"), 10)
	if !ok {
		return nil, token.Errorf(token.InvalidLiteral, tok.Source, "invalid integer literal: %s", tok.Text)
	}
	return lisp.BigInt(x).WithSource(tok.Source), nil
}

func readKeyword(tok *token.Token) (*lisp.LVal, error) {
	name := tok.Text[1:]
	if name == "" || strings.HasPrefix(name, ":") || strings.HasSuffix(name, "/") {
		return nil, token.Errorf(token.InvalidLiteral, tok.Source, "invalid keyword: %s", tok.Text)
	}
	return lisp.Keyword(name), nil
}

func readChar(tok *token.Token) (*lisp.LVal, error) {
	name := tok.Text[2:]
	if c, ok := charNames[name]; ok {
		return lisp.Char(c).WithSource(tok.Source), nil
	}
	if len(name) >= 5 && len(name) <= 7 && name[0] == 'u' {
		x, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil && x <= unicode.MaxRune {
			return lisp.Char(rune(x)).WithSource(tok.Source), nil
		}
	}
	c, size := utf8.DecodeRuneInString(name)
	if size == 0 || size != len(name) || c == utf8.RuneError {
		return nil, token.Errorf(token.InvalidLiteral, tok.Source, "invalid character literal: %s", tok.Text)
	}
	return lisp.Char(c).WithSource(tok.Source), nil
}

// unquote returns the contents of a STRING token with escapes replaced.
func unquote(tok *token.Token) (string, error) {
	text := tok.Text
	switch {
	case len(text) >= 6 && strings.HasPrefix(text, `"""`) && strings.HasSuffix(text, `"""`):
		text = text[3 : len(text)-3]
	case len(text) >= 2:
		text = text[1 : len(text)-1]
	default:
		return "", token.Errorf(token.UnbalancedQuotes, tok.Source, "malformed string literal")
	}
	if !strings.ContainsRune(text, '\\') {
		return text, nil
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(text) {
			return "", token.Errorf(token.UnexpectedEOF, tok.Source, "unexpected end of string in escape sequence")
		}
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0':
			b.WriteByte(0)
		case '"', '\\', '\'':
			b.WriteByte(text[i])
		case 'u':
			if i+4 >= len(text) {
				return "", token.Errorf(token.InvalidLiteral, tok.Source, "short unicode escape")
			}
			x, err := strconv.ParseUint(text[i+1:i+5], 16, 32)
			if err != nil {
				return "", token.Errorf(token.InvalidLiteral, tok.Source, "invalid unicode escape: \\u%s", text[i+1:i+5])
			}
			b.WriteRune(rune(x))
			i += 4
		default:
			return "", token.Errorf(token.InvalidLiteral, tok.Source, "invalid escape sequence: \\%c", text[i])
		}
	}
	return b.String(), nil
}
