// Copyright © 2018 The ELPS authors

package lisp

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// DecimalDivisionPrecision is the number of decimal places kept by decimal
// division.
const DecimalDivisionPrecision = 16

func mathBuiltins() BuiltinTable {
	return BuiltinTable{
		pureBuiltin("+", 0, -1, builtinAdd, "Returns the sum of the arguments."),
		pureBuiltin("-", 1, -1, builtinSub,
			"Returns the first argument minus the remaining arguments, or the negation of a single argument."),
		pureBuiltin("*", 0, -1, builtinMul, "Returns the product of the arguments."),
		pureBuiltin("/", 1, -1, builtinDiv,
			"Returns the first argument divided by the remaining arguments.  Division of longs truncates."),
		pureBuiltin("mod", 2, 2, builtinMod, "Returns the floored modulus of two integers."),
		pureBuiltin("rem", 2, 2, builtinRem, "Returns the remainder of truncated division of two integers."),
		pureBuiltin("inc", 1, 1, builtinInc, "Returns x plus one."),
		pureBuiltin("dec", 1, 1, builtinDec, "Returns x minus one."),
		pureBuiltin("abs", 1, 1, builtinAbs, "Returns the absolute value of x."),
		pureBuiltin("max", 1, -1, builtinMax, "Returns the greatest argument."),
		pureBuiltin("min", 1, -1, builtinMin, "Returns the least argument."),
		pureBuiltin("<", 1, -1, compareBuiltin("<", func(c int) bool { return c < 0 }),
			"Returns true if the arguments are in increasing order."),
		pureBuiltin("<=", 1, -1, compareBuiltin("<=", func(c int) bool { return c <= 0 }),
			"Returns true if the arguments are in non-decreasing order."),
		pureBuiltin(">", 1, -1, compareBuiltin(">", func(c int) bool { return c > 0 }),
			"Returns true if the arguments are in decreasing order."),
		pureBuiltin(">=", 1, -1, compareBuiltin(">=", func(c int) bool { return c >= 0 }),
			"Returns true if the arguments are in non-increasing order."),
		pureBuiltin("==", 1, -1, compareBuiltin("==", func(c int) bool { return c == 0 }),
			"Returns true if the arguments are numerically equal regardless of category."),
		pureBuiltin("zero?", 1, 1, signBuiltin("zero?", func(s int) bool { return s == 0 }),
			"Returns true if x is zero."),
		pureBuiltin("pos?", 1, 1, signBuiltin("pos?", func(s int) bool { return s > 0 }),
			"Returns true if x is greater than zero."),
		pureBuiltin("neg?", 1, 1, signBuiltin("neg?", func(s int) bool { return s < 0 }),
			"Returns true if x is less than zero."),
		pureBuiltin("even?", 1, 1, builtinIsEven, "Returns true if the integer x is even."),
		pureBuiltin("odd?", 1, 1, builtinIsOdd, "Returns true if the integer x is odd."),
		pureBuiltin("number?", 1, 1, builtinIsNumber, "Returns true if x is a number."),
		pureBuiltin("long", 1, 1, builtinToLong, "Converts x to a long."),
		pureBuiltin("double", 1, 1, builtinToDouble, "Converts x to a double."),
		pureBuiltin("decimal", 1, 1, builtinToDecimal, "Converts x to a decimal."),
		pureBuiltin("bigint", 1, 1, builtinToBigInt, "Converts x to a big integer."),
	}
}

func (env *LEnv) numericArgs(form string, args []*LVal) *LVal {
	for _, x := range args {
		if !x.IsNumeric() {
			return env.ErrorConditionf(CondTypeError, "%s: argument is not a number: %v", form, GetType(x))
		}
	}
	return nil
}

type arithOp byte

const (
	opAdd arithOp = '+'
	opSub arithOp = '-'
	opMul arithOp = '*'
	opDiv arithOp = '/'
)

// arith applies op to two numbers.  The result has the category of the
// widest operand: long, then bigint, then decimal, then double.
func (env *LEnv) arith(op arithOp, a, b *LVal) *LVal {
	rank := numRank(a.Type)
	if r := numRank(b.Type); r > rank {
		rank = r
	}
	switch rank {
	case 0:
		return env.arithLong(op, a.Int, b.Int)
	case 1:
		x, y := toBigInt(a), toBigInt(b)
		z := new(big.Int)
		switch op {
		case opAdd:
			z.Add(x, y)
		case opSub:
			z.Sub(x, y)
		case opMul:
			z.Mul(x, y)
		case opDiv:
			if y.Sign() == 0 {
				return env.divideByZero()
			}
			z.Quo(x, y)
		}
		return BigInt(z)
	case 2:
		x, y := toDecimal(a), toDecimal(b)
		switch op {
		case opAdd:
			return Decimal(x.Add(y))
		case opSub:
			return Decimal(x.Sub(y))
		case opMul:
			return Decimal(x.Mul(y))
		}
		if y.IsZero() {
			return env.divideByZero()
		}
		return Decimal(x.DivRound(y, DecimalDivisionPrecision))
	}
	x, y := toDouble(a), toDouble(b)
	switch op {
	case opAdd:
		return Double(x + y)
	case opSub:
		return Double(x - y)
	case opMul:
		return Double(x * y)
	}
	return Double(x / y)
}

func (env *LEnv) arithLong(op arithOp, x, y int64) *LVal {
	switch op {
	case opAdd:
		if (y > 0 && x > math.MaxInt64-y) || (y < 0 && x < math.MinInt64-y) {
			return env.overflow("+")
		}
		return Long(x + y)
	case opSub:
		if (y < 0 && x > math.MaxInt64+y) || (y > 0 && x < math.MinInt64+y) {
			return env.overflow("-")
		}
		return Long(x - y)
	case opMul:
		if x == 0 || y == 0 {
			return Long(0)
		}
		z := x * y
		if z/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return env.overflow("*")
		}
		return Long(z)
	}
	if y == 0 {
		return env.divideByZero()
	}
	if x == math.MinInt64 && y == -1 {
		return env.overflow("/")
	}
	return Long(x / y)
}

func (env *LEnv) overflow(form string) *LVal {
	return env.ErrorConditionf(CondArithmetic, "%s: long overflow", form)
}

func (env *LEnv) divideByZero() *LVal {
	return env.ErrorConditionf(CondArithmetic, "divide by zero")
}

func (env *LEnv) fold(form string, op arithOp, acc *LVal, args []*LVal) *LVal {
	if lerr := env.numericArgs(form, args); lerr != nil {
		return lerr
	}
	for _, x := range args {
		acc = env.arith(op, acc, x)
		if acc.Type == LError {
			return acc
		}
	}
	return acc
}

func builtinAdd(env *LEnv, args []*LVal) *LVal {
	return env.fold("+", opAdd, Long(0), args)
}

func builtinMul(env *LEnv, args []*LVal) *LVal {
	return env.fold("*", opMul, Long(1), args)
}

func builtinSub(env *LEnv, args []*LVal) *LVal {
	if len(args) == 1 {
		return env.fold("-", opSub, Long(0), args)
	}
	if lerr := env.numericArgs("-", args[:1]); lerr != nil {
		return lerr
	}
	return env.fold("-", opSub, args[0], args[1:])
}

func builtinDiv(env *LEnv, args []*LVal) *LVal {
	if len(args) == 1 {
		return env.fold("/", opDiv, Long(1), args)
	}
	if lerr := env.numericArgs("/", args[:1]); lerr != nil {
		return lerr
	}
	return env.fold("/", opDiv, args[0], args[1:])
}

func (env *LEnv) integerArgs(form string, args []*LVal) *LVal {
	for _, x := range args {
		if x.Type != LLong && x.Type != LBigInt {
			return env.ErrorConditionf(CondTypeError, "%s: argument is not an integer: %v", form, GetType(x))
		}
	}
	return nil
}

func builtinMod(env *LEnv, args []*LVal) *LVal {
	if lerr := env.integerArgs("mod", args); lerr != nil {
		return lerr
	}
	if args[0].Type == LLong && args[1].Type == LLong {
		x, y := args[0].Int, args[1].Int
		if y == 0 {
			return env.divideByZero()
		}
		m := x % y
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return Long(m)
	}
	y := toBigInt(args[1])
	if y.Sign() == 0 {
		return env.divideByZero()
	}
	m := new(big.Int).Rem(toBigInt(args[0]), y)
	if m.Sign() != 0 && (m.Sign() < 0) != (y.Sign() < 0) {
		m.Add(m, y)
	}
	return BigInt(m)
}

func builtinRem(env *LEnv, args []*LVal) *LVal {
	if lerr := env.integerArgs("rem", args); lerr != nil {
		return lerr
	}
	if args[0].Type == LLong && args[1].Type == LLong {
		if args[1].Int == 0 {
			return env.divideByZero()
		}
		if args[1].Int == -1 {
			return Long(0)
		}
		return Long(args[0].Int % args[1].Int)
	}
	y := toBigInt(args[1])
	if y.Sign() == 0 {
		return env.divideByZero()
	}
	return BigInt(new(big.Int).Rem(toBigInt(args[0]), y))
}

func builtinInc(env *LEnv, args []*LVal) *LVal {
	if lerr := env.numericArgs("inc", args); lerr != nil {
		return lerr
	}
	return env.arith(opAdd, args[0], Long(1))
}

func builtinDec(env *LEnv, args []*LVal) *LVal {
	if lerr := env.numericArgs("dec", args); lerr != nil {
		return lerr
	}
	return env.arith(opSub, args[0], Long(1))
}

func numSign(v *LVal) int {
	switch v.Type {
	case LLong:
		return cmpInt64(v.Int, 0)
	case LBigInt:
		return v.BigIntValue().Sign()
	case LDecimal:
		return v.DecimalValue().Sign()
	}
	switch {
	case v.Float < 0:
		return -1
	case v.Float > 0:
		return 1
	}
	return 0
}

func builtinAbs(env *LEnv, args []*LVal) *LVal {
	if lerr := env.numericArgs("abs", args); lerr != nil {
		return lerr
	}
	x := args[0]
	if numSign(x) >= 0 {
		return x
	}
	switch x.Type {
	case LDouble:
		return Double(math.Abs(x.Float))
	case LDecimal:
		return Decimal(x.DecimalValue().Abs())
	case LBigInt:
		return BigInt(new(big.Int).Abs(x.BigIntValue()))
	}
	return env.arith(opSub, Long(0), x)
}

func (env *LEnv) extremum(form string, args []*LVal, better func(int) bool) *LVal {
	if lerr := env.numericArgs(form, args); lerr != nil {
		return lerr
	}
	best := args[0]
	for _, x := range args[1:] {
		c, err := compareNum(x, best)
		if err != nil {
			return env.ErrorConditionf(CondTypeError, "%s: %v", form, err)
		}
		if better(c) {
			best = x
		}
	}
	return best
}

func builtinMax(env *LEnv, args []*LVal) *LVal {
	return env.extremum("max", args, func(c int) bool { return c > 0 })
}

func builtinMin(env *LEnv, args []*LVal) *LVal {
	return env.extremum("min", args, func(c int) bool { return c < 0 })
}

func compareBuiltin(form string, ok func(int) bool) LBuiltin {
	return func(env *LEnv, args []*LVal) *LVal {
		if lerr := env.numericArgs(form, args); lerr != nil {
			return lerr
		}
		for i := 1; i < len(args); i++ {
			c, err := compareNum(args[i-1], args[i])
			if err != nil {
				return env.ErrorConditionf(CondTypeError, "%s: %v", form, err)
			}
			if !ok(c) {
				return Bool(false)
			}
		}
		return Bool(true)
	}
}

func signBuiltin(form string, ok func(int) bool) LBuiltin {
	return func(env *LEnv, args []*LVal) *LVal {
		if lerr := env.numericArgs(form, args); lerr != nil {
			return lerr
		}
		return Bool(ok(numSign(args[0])))
	}
}

func builtinIsEven(env *LEnv, args []*LVal) *LVal {
	if lerr := env.integerArgs("even?", args); lerr != nil {
		return lerr
	}
	return Bool(toBigInt(args[0]).Bit(0) == 0)
}

func builtinIsOdd(env *LEnv, args []*LVal) *LVal {
	if lerr := env.integerArgs("odd?", args); lerr != nil {
		return lerr
	}
	return Bool(toBigInt(args[0]).Bit(0) == 1)
}

func builtinIsNumber(env *LEnv, args []*LVal) *LVal {
	return Bool(args[0].IsNumeric())
}

func builtinToLong(env *LEnv, args []*LVal) *LVal {
	x := args[0]
	switch x.Type {
	case LLong:
		return x
	case LChar:
		return Long(x.Int)
	case LDouble:
		return Long(int64(x.Float))
	case LDecimal:
		return Long(x.DecimalValue().IntPart())
	case LBigInt:
		if !x.BigIntValue().IsInt64() {
			return env.overflow("long")
		}
		return Long(x.BigIntValue().Int64())
	}
	return env.ErrorConditionf(CondTypeError, "long: cannot convert %v", GetType(x))
}

func builtinToDouble(env *LEnv, args []*LVal) *LVal {
	if lerr := env.numericArgs("double", args); lerr != nil {
		return lerr
	}
	return Double(toDouble(args[0]))
}

func builtinToDecimal(env *LEnv, args []*LVal) *LVal {
	x := args[0]
	if x.Type == LString {
		d, err := decimal.NewFromString(x.Str)
		if err != nil {
			return env.ErrorConditionf(CondTypeError, "decimal: %v", err)
		}
		return Decimal(d)
	}
	if lerr := env.numericArgs("decimal", args); lerr != nil {
		return lerr
	}
	return Decimal(toDecimal(x))
}

func builtinToBigInt(env *LEnv, args []*LVal) *LVal {
	x := args[0]
	switch x.Type {
	case LString:
		z, ok := new(big.Int).SetString(x.Str, 10)
		if !ok {
			return env.ErrorConditionf(CondTypeError, "bigint: invalid integer: %q", x.Str)
		}
		return BigInt(z)
	case LDouble:
		if math.IsNaN(x.Float) || math.IsInf(x.Float, 0) {
			return env.ErrorConditionf(CondArithmetic, "bigint: cannot convert %v", x)
		}
		z, _ := big.NewFloat(x.Float).Int(nil)
		return BigInt(z)
	case LDecimal:
		return BigInt(x.DecimalValue().BigInt())
	}
	if lerr := env.integerArgs("bigint", args); lerr != nil {
		return lerr
	}
	return BigInt(toBigInt(x))
}
