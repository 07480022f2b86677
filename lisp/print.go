// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// writeValue renders v into b.  When readable is true the output can be read
// back by the reader (for values which have a literal syntax).
func writeValue(b *strings.Builder, v *LVal, readable bool) {
	switch v.Type {
	case LNil:
		b.WriteString("nil")
	case LBool:
		if v.Int != 0 {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case LLong:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case LDouble:
		b.WriteString(formatDouble(v.Float))
	case LDecimal:
		b.WriteString(v.DecimalValue().String())
		b.WriteString("M")
	case LBigInt:
		b.WriteString(v.BigIntValue().String())
		b.WriteString("N")
	case LString:
		if readable {
			b.WriteString(quoteString(v.Str))
		} else {
			b.WriteString(v.Str)
		}
	case LChar:
		if readable {
			writeChar(b, rune(v.Int))
		} else {
			b.WriteRune(rune(v.Int))
		}
	case LKeyword:
		b.WriteString(":")
		b.WriteString(v.QualifiedName())
	case LSymbol:
		b.WriteString(v.QualifiedName())
	case LList:
		writeSeq(b, v.Items(), "(", ")", readable)
	case LVector:
		writeSeq(b, v.Items(), "[", "]", readable)
	case LSet:
		writeSeq(b, v.SetData().Items(), "#{", "}", readable)
	case LMap:
		b.WriteString("{")
		for i, e := range v.MapData().Entries() {
			if i > 0 {
				b.WriteString(" ")
			}
			writeValue(b, e.Key, readable)
			b.WriteString(" ")
			writeValue(b, e.Val, readable)
		}
		b.WriteString("}")
	case LFun:
		fd := v.FunData()
		kind := "function"
		if v.IsMacro() {
			kind = "macro"
		} else if fd != nil && fd.Builtin != nil {
			kind = "builtin"
		}
		name := "anonymous"
		if fd != nil && fd.Name != "" {
			name = fd.QualifiedName()
		}
		fmt.Fprintf(b, "#<%s %s>", kind, name)
	case LMultiFn:
		fmt.Fprintf(b, "#<multi-function %s>", v.MultiFnData().Name)
	case LAtom:
		b.WriteString("#<atom ")
		writeValue(b, v.AtomData().Deref(), readable)
		b.WriteString(">")
	case LNative:
		fmt.Fprintf(b, "#<native %T>", v.Native)
	case LTaggedVal:
		fmt.Fprintf(b, "#%s", v.Str)
		if v.UserData().Type != LMap {
			b.WriteString(" ")
		}
		writeValue(b, v.UserData(), readable)
	case LError:
		b.WriteString(GoError(v).Error())
	case LException:
		fmt.Fprintf(b, "#<exception :%s %s>", v.Str, quoteString(v.ErrorMessage()))
	default:
		fmt.Fprintf(b, "#<%s>", v.Type)
	}
}

func writeSeq(b *strings.Builder, items []*LVal, left, right string, readable bool) {
	b.WriteString(left)
	for i, x := range items {
		if i > 0 {
			b.WriteString(" ")
		}
		writeValue(b, x, readable)
	}
	b.WriteString(right)
}

// formatDouble renders f so that it reads back as a double, never as a long.
func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// charNames are the characters written by name.
var charNames = map[rune]string{
	'\n': "newline",
	' ':  "space",
	'\t': "tab",
	'\r': "return",
	'\b': "backspace",
	'\f': "formfeed",
}

// writeChar writes c as a character literal.  Named characters use their
// name and other whitespace or unprintable runes use the \uXXXX form.
func writeChar(b *strings.Builder, c rune) {
	b.WriteString(`#\`)
	if name, ok := charNames[c]; ok {
		b.WriteString(name)
		return
	}
	if unicode.IsSpace(c) || !unicode.IsPrint(c) {
		fmt.Fprintf(b, "u%04X", c)
		return
	}
	b.WriteRune(c)
}
