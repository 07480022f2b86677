// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/clove/clovetest"
)

func TestMath(t *testing.T) {
	tests := clovetest.TestSuite{
		{"arithmetic", clovetest.TestSequence{
			{"(+)", "0", ""},
			{"(*)", "1", ""},
			{"(+ 1 2 3)", "6", ""},
			{"(- 5)", "-5", ""},
			{"(- 10 1 2)", "7", ""},
			{"(* 2 3.0)", "6.0", ""},
			{"(/ 7 2)", "3", ""},
			{"(/ 7.0 2)", "3.5", ""},
			{"(/ 2)", "0", ""},
			{"(inc 1)", "2", ""},
			{"(dec 1.5)", "0.5", ""},
			{`(+ 1 "a")`, "!type-error", ""},
			{"(-)", "!arity-error", ""},
		}},
		{"division by zero", clovetest.TestSequence{
			{"(/ 1 0)", "!arithmetic-error", ""},
			{"(/ 1N 0)", "!arithmetic-error", ""},
			{"(/ 1M 0)", "!arithmetic-error", ""},
			{"(/ 1.0 0)", "+Inf", ""},
			{"(try (/ 1 0) (catch :arithmetic-error e (ex-message e)))", `"divide by zero"`, ""},
		}},
		{"overflow", clovetest.TestSequence{
			{"(+ 9223372036854775807 1)", "!arithmetic-error", ""},
			{"(* 9223372036854775807 2)", "!arithmetic-error", ""},
			{"(- -9223372036854775808 1)", "!arithmetic-error", ""},
			{"(abs -9223372036854775808)", "!arithmetic-error", ""},
			{"(try (inc 9223372036854775807) (catch :error e (ex-message e)))", `"+: long overflow"`, ""},
			{"(+ 9223372036854775807N 1)", "9223372036854775808N", ""},
		}},
		{"contagion", clovetest.TestSequence{
			{"(+ 1N 2)", "3N", ""},
			{"(+ 1.5M 1)", "2.5M", ""},
			{"(+ 1.5M 1N)", "2.5M", ""},
			{"(+ 1.5M 1.0)", "2.5", ""},
			{"(+ 1N 0.5)", "1.5", ""},
			{"(/ 7N 2)", "3N", ""},
			{"(/ 1M 3)", "0.3333333333333333M", ""},
		}},
		{"mod and rem", clovetest.TestSequence{
			{"(mod 7 3)", "1", ""},
			{"(mod -7 3)", "2", ""},
			{"(mod 7 -3)", "-2", ""},
			{"(rem -7 3)", "-1", ""},
			{"(rem 7 -3)", "1", ""},
			{"(mod -7N 3)", "2N", ""},
			{"(mod 7 0)", "!arithmetic-error", ""},
			{"(rem 7 0)", "!arithmetic-error", ""},
			{"(mod 7.0 2)", "!type-error", ""},
		}},
		{"comparison", clovetest.TestSequence{
			{"(< 1 2 3)", "true", ""},
			{"(< 1 3 2)", "false", ""},
			{"(<= 1 1 2)", "true", ""},
			{"(> 3 2.5)", "true", ""},
			{"(>= 2 2N 1.5M)", "true", ""},
			{"(== 1 1.0)", "true", ""},
			{"(== 1N 1)", "true", ""},
			{"(= 1 1)", "true", ""},
			{"(= 1 1.0)", "false", ""},
			{"(= 1N 1)", "false", ""},
			{"(not= 1 2)", "true", ""},
			{"(< 1 :a)", "!type-error", ""},
			{"(max 1 3.5 2)", "3.5", ""},
			{"(min 3 1N 2)", "1N", ""},
		}},
		{"predicates", clovetest.TestSequence{
			{"(zero? 0.0)", "true", ""},
			{"(pos? -1)", "false", ""},
			{"(neg? -1M)", "true", ""},
			{"(even? 4)", "true", ""},
			{"(odd? 3N)", "true", ""},
			{"(even? 1.0)", "!type-error", ""},
			{"(number? 1M)", "true", ""},
			{`(number? "1")`, "false", ""},
			{"(long? 1)", "true", ""},
			{"(double? 1)", "false", ""},
			{"(decimal? 1M)", "true", ""},
			{"(bigint? 1N)", "true", ""},
		}},
		{"conversions", clovetest.TestSequence{
			{"(long 3.9)", "3", ""},
			{`(long #\a)`, "97", ""},
			{"(long 1.5M)", "1", ""},
			{"(long 99999999999999999999N)", "!arithmetic-error", ""},
			{`(long "1")`, "!type-error", ""},
			{"(double 1)", "1.0", ""},
			{`(decimal "1.25")`, "1.25M", ""},
			{"(decimal 2)", "2M", ""},
			{`(decimal "x")`, "!type-error", ""},
			{`(bigint "123")`, "123N", ""},
			{"(bigint 2.7)", "2N", ""},
			{"(bigint 5)", "5N", ""},
			{"(abs -5)", "5", ""},
			{"(abs -2.5)", "2.5", ""},
		}},
	}
	clovetest.RunTestSuite(t, tests)
}
