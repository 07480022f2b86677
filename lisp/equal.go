// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Equal returns true if v and other are logically equal under the rules of
// the = function.  Numbers are equal only within the same category, lists and
// vectors compare element-wise, and maps and sets compare by content
// regardless of their kind.
func (v *LVal) Equal(other *LVal) bool {
	if v == other {
		return true
	}
	if v.IsSeq() && other.IsSeq() {
		return equalSeq(v, other)
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LNil:
		return true
	case LBool, LLong, LChar:
		return v.Int == other.Int
	case LDouble:
		return v.Float == other.Float
	case LDecimal:
		return v.DecimalValue().Equal(other.DecimalValue())
	case LBigInt:
		return v.BigIntValue().Cmp(other.BigIntValue()) == 0
	case LString:
		return v.Str == other.Str
	case LKeyword, LSymbol:
		return v.Str == other.Str && v.Ns == other.Ns
	case LMap:
		m1, m2 := v.MapData(), other.MapData()
		if m1.Len() != m2.Len() {
			return false
		}
		for _, e := range m1.Entries() {
			x, ok := m2.Get(e.Key)
			if !ok || !x.Equal(e.Val) {
				return false
			}
		}
		return true
	case LSet:
		s1, s2 := v.SetData(), other.SetData()
		if s1.Len() != s2.Len() {
			return false
		}
		for _, x := range s1.Items() {
			if !s2.Contains(x) {
				return false
			}
		}
		return true
	case LTaggedVal:
		return v.Str == other.Str && v.UserData().Equal(other.UserData())
	case LException, LError:
		return v.Str == other.Str && v.ErrorMessage() == other.ErrorMessage() && v.ErrorData().Equal(other.ErrorData())
	case LNative:
		return v.Native == other.Native
	}
	// functions, atoms and multi-functions have identity semantics.
	return false
}

func equalSeq(a, b *LVal) bool {
	if a.Len() != b.Len() {
		return false
	}
	if a.Type == LList && b.Type == LList {
		ca, cb := a.listCell(), b.listCell()
		for ca != nil {
			if !ca.head.Equal(cb.head) {
				return false
			}
			ca, cb = ca.tail, cb.tail
		}
		return true
	}
	xs, ys := a.Items(), b.Items()
	for i := range xs {
		if !xs[i].Equal(ys[i]) {
			return false
		}
	}
	return true
}

// EqualNum compares two numbers numerically across categories, the semantics
// of the == function.
func (v *LVal) EqualNum(other *LVal) (bool, error) {
	c, err := compareNum(v, other)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// Hash returns a hash code consistent with Equal.
func (v *LVal) Hash() uint32 {
	h := fnv.New32a()
	writeHash(h, v)
	return h.Sum32()
}

type hashWriter interface {
	Write([]byte) (int, error)
}

func writeHash(h hashWriter, v *LVal) {
	fmt.Fprintf(h, "%d:", hashClass(v))
	switch v.Type {
	case LNil:
	case LBool, LLong, LChar:
		fmt.Fprint(h, v.Int)
	case LDouble:
		fmt.Fprint(h, math.Float64bits(v.Float))
	case LDecimal:
		fmt.Fprint(h, v.DecimalValue().String())
	case LBigInt:
		fmt.Fprint(h, v.BigIntValue().String())
	case LString, LKeyword, LSymbol, LTaggedVal, LError, LException:
		fmt.Fprint(h, v.Ns, "/", v.Str)
		if v.Type == LTaggedVal {
			writeHash(h, v.UserData())
		}
	case LList, LVector:
		for _, x := range v.Items() {
			writeHash(h, x)
			fmt.Fprint(h, ",")
		}
	case LMap:
		// entry hashes are summed so iteration order does not matter.
		var sum uint32
		for _, e := range v.MapData().Entries() {
			sum += e.Key.Hash()*31 ^ e.Val.Hash()
		}
		fmt.Fprint(h, sum)
	case LSet:
		var sum uint32
		for _, x := range v.SetData().Items() {
			sum += x.Hash()
		}
		fmt.Fprint(h, sum)
	default:
		fmt.Fprintf(h, "%p", v.Native)
	}
}

func hashClass(v *LVal) LType {
	if v.Type == LVector {
		return LList
	}
	return v.Type
}

// valueHasher implements immutable.Hasher for lisp values.
type valueHasher struct{}

func (valueHasher) Hash(v *LVal) uint32 {
	return v.Hash()
}

func (valueHasher) Equal(a, b *LVal) bool {
	return a.Equal(b)
}

// valueComparer implements immutable.Comparer for lisp values.
type valueComparer struct{}

func (valueComparer) Compare(a, b *LVal) int {
	return CompareValues(a, b)
}

// typeRank orders values of unrelated types in sorted collections.
func typeRank(v *LVal) int {
	switch v.Type {
	case LNil:
		return 0
	case LBool:
		return 1
	case LLong, LDouble, LDecimal, LBigInt:
		return 2
	case LChar:
		return 3
	case LString:
		return 4
	case LKeyword:
		return 5
	case LSymbol:
		return 6
	case LList, LVector:
		return 7
	}
	return 8 + int(v.Type)
}

// CompareValues is a total order over lisp values consistent with Equal.
// Numbers compare numerically with ties between categories broken by type.
func CompareValues(a, b *LVal) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch a.Type {
	case LNil:
		return 0
	case LBool, LChar:
		return cmpInt(int(a.Int), int(b.Int))
	case LLong, LDouble, LDecimal, LBigInt:
		c, _ := compareNum(a, b)
		if c == 0 {
			return cmpInt(int(a.Type), int(b.Type))
		}
		return c
	case LString:
		return strings.Compare(a.Str, b.Str)
	case LKeyword, LSymbol:
		if c := strings.Compare(a.Ns, b.Ns); c != 0 {
			return c
		}
		return strings.Compare(a.Str, b.Str)
	case LList, LVector:
		xs, ys := a.Items(), b.Items()
		for i := 0; i < len(xs) && i < len(ys); i++ {
			if c := CompareValues(xs[i], ys[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(xs), len(ys))
	}
	if a.Equal(b) {
		return 0
	}
	return strings.Compare(fmt.Sprintf("%p", a), fmt.Sprintf("%p", b))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// numRank orders numeric categories for contagion: the result of mixed
// arithmetic takes the category of the higher ranked operand.
func numRank(t LType) int {
	switch t {
	case LLong:
		return 0
	case LBigInt:
		return 1
	case LDecimal:
		return 2
	case LDouble:
		return 3
	}
	return -1
}

func toBigInt(v *LVal) *big.Int {
	if v.Type == LBigInt {
		return v.BigIntValue()
	}
	return big.NewInt(v.Int)
}

func toDecimal(v *LVal) decimal.Decimal {
	switch v.Type {
	case LDecimal:
		return v.DecimalValue()
	case LBigInt:
		return decimal.NewFromBigInt(v.BigIntValue(), 0)
	case LDouble:
		return decimal.NewFromFloat(v.Float)
	}
	return decimal.NewFromInt(v.Int)
}

func toDouble(v *LVal) float64 {
	switch v.Type {
	case LDouble:
		return v.Float
	case LDecimal:
		return v.DecimalValue().InexactFloat64()
	case LBigInt:
		f, _ := new(big.Float).SetInt(v.BigIntValue()).Float64()
		return f
	}
	return float64(v.Int)
}

func compareNum(a, b *LVal) (int, error) {
	if !a.IsNumeric() {
		return 0, fmt.Errorf("not a number: %v", a.Type)
	}
	if !b.IsNumeric() {
		return 0, fmt.Errorf("not a number: %v", b.Type)
	}
	rank := numRank(a.Type)
	if r := numRank(b.Type); r > rank {
		rank = r
	}
	switch rank {
	case 0:
		return cmpInt64(a.Int, b.Int), nil
	case 1:
		return toBigInt(a).Cmp(toBigInt(b)), nil
	case 2:
		return toDecimal(a).Cmp(toDecimal(b)), nil
	}
	x, y := toDouble(a), toDouble(b)
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
