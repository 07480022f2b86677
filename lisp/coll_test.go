// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/clove/clovetest"
	"github.com/luthersystems/clove/lisp"
	"github.com/stretchr/testify/require"
)

func TestCollections(t *testing.T) {
	tests := clovetest.TestSuite{
		{"count", clovetest.TestSequence{
			{"(count [1 2 3])", "3", ""},
			{"(count nil)", "0", ""},
			{`(count "abc")`, "3", ""},
			{"(count {:a 1})", "1", ""},
			{"(count #{1 2})", "2", ""},
			{"(count 1)", "!type-error", ""},
			{"(empty? [])", "true", ""},
			{"(empty? nil)", "true", ""},
			{"(empty? '(1))", "false", ""},
		}},
		{"construction", clovetest.TestSequence{
			{"(list 1 2)", "(1 2)", ""},
			{"(list)", "()", ""},
			{"(list* 1 [2 3])", "(1 2 3)", ""},
			{"(vector 1 2)", "[1 2]", ""},
			{"(vec '(1 2))", "[1 2]", ""},
			{"(count (set [1 1 2]))", "2", ""},
			{"(sorted-set 3 1 2)", "#{1 2 3}", ""},
			{"(hash-map :a)", "!arity-error", ""},
		}},
		{"conj", clovetest.TestSequence{
			{"(conj [1 2] 3)", "[1 2 3]", ""},
			{"(conj '(1 2) 0)", "(0 1 2)", ""},
			{"(conj nil 1)", "(1)", ""},
			{"(conj #{1} 1)", "#{1}", ""},
			{"(conj [] 1 2 3)", "[1 2 3]", ""},
			{"(get (conj {} [:a 1]) :a)", "1", ""},
			{"(conj {} 1)", "!error", ""},
			{"(conj 1 2)", "!type-error", ""},
			{"(cons 0 [1 2])", "(0 1 2)", ""},
			{"(cons 0 nil)", "(0)", ""},
		}},
		{"access", clovetest.TestSequence{
			{"(first [1 2])", "1", ""},
			{"(first nil)", "nil", ""},
			{"(second [1 2])", "2", ""},
			{"(last [1 2 3])", "3", ""},
			{"(rest [1 2 3])", "(2 3)", ""},
			{"(rest nil)", "()", ""},
			{"(next [1])", "nil", ""},
			{"(nth [1 2 3] 1)", "2", ""},
			{"(nth [1 2 3] 5)", "!type-error", ""},
			{"(nth [1 2 3] 5 :none)", ":none", ""},
			{"(nth [1 2 3] :a)", "!type-error", ""},
			{"(get {:a 1} :a)", "1", ""},
			{"(get {:a 1} :b)", "nil", ""},
			{"(get {:a 1} :b 0)", "0", ""},
			{"(get [10 20] 1)", "20", ""},
			{"(get #{:x} :x)", ":x", ""},
			{"(get-in {:a {:b 2}} [:a :b])", "2", ""},
			{"(get-in {:a {:b 2}} [:a :c] :missing)", ":missing", ""},
			{"(contains? {:a nil} :a)", "true", ""},
			{"(contains? {:a nil} :b)", "false", ""},
		}},
		{"assoc", clovetest.TestSequence{
			{"(assoc [1 2] 2 3)", "[1 2 3]", ""},
			{"(assoc [1 2] 0 :x)", "[:x 2]", ""},
			{"(assoc [1 2] 5 3)", "!type-error", ""},
			{"(assoc {:a 1} :a 2)", "{:a 2}", ""},
			{"(assoc nil :a 1)", "{:a 1}", ""},
			{"(assoc {} :a)", "!arity-error", ""},
			{"(assoc 1 :a 1)", "!type-error", ""},
			{"(dissoc {:a 1} :a)", "{}", ""},
			{"(dissoc nil :a)", "nil", ""},
			{"(dissoc [1] 0)", "!type-error", ""},
			{"(def m {:a 1})", "user/m", ""},
			{"(assoc m :a 5)", "{:a 5}", ""},
			{"m", "{:a 1}", ""},
		}},
		{"map kinds", clovetest.TestSequence{
			{"(sorted-map :b 2 :a 1)", "{:a 1 :b 2}", ""},
			{"(keys (sorted-map :b 2 :a 1 :c 3))", "(:a :b :c)", ""},
			{"(vals (sorted-map :b 2 :a 1 :c 3))", "(1 2 3)", ""},
			{"(assoc (sorted-map :b 2) :a 1)", "{:a 1 :b 2}", ""},
			{"(ordered-map :b 2 :a 1)", "{:b 2 :a 1}", ""},
			{"(assoc (ordered-map :b 2 :a 1) :c 3)", "{:b 2 :a 1 :c 3}", ""},
			{"(dissoc (ordered-map :b 2 :a 1 :c 3) :a)", "{:b 2 :c 3}", ""},
			{"(merge (sorted-map :a 1) {:b 2} nil)", "{:a 1 :b 2}", ""},
			{"(= (sorted-map :a 1) {:a 1})", "true", ""},
		}},
		{"mutable map", clovetest.TestSequence{
			{"(def mm (mutable-map))", "user/mm", ""},
			{"(assoc! mm :a 1)", "{:a 1}", ""},
			{"(get mm :a)", "1", ""},
			{"(assoc mm :b 2)", "!type-error", ""},
			{"(assoc! {} :a 1)", "!type-error", ""},
			{"(dissoc! mm :a)", "{}", ""},
			{"(count mm)", "0", ""},
		}},
		{"sequences", clovetest.TestSequence{
			{"(map inc [1 2 3])", "(2 3 4)", ""},
			{"(map + [1 2] [10 20 30])", "(11 22)", ""},
			{"(mapv inc [1 2])", "[2 3]", ""},
			{"(filter odd? (range 6))", "(1 3 5)", ""},
			{"(filterv odd? (range 6))", "[1 3 5]", ""},
			{"(remove odd? (range 6))", "(0 2 4)", ""},
			{"(reduce + [1 2 3])", "6", ""},
			{"(reduce + 10 [1 2 3])", "16", ""},
			{"(reduce + [])", "0", ""},
			{"(every? odd? [1 3])", "true", ""},
			{"(some even? [1 3])", "nil", ""},
			{"(some #{2} [1 2 3])", "2", ""},
			{"(range 3)", "(0 1 2)", ""},
			{"(range 1 10 3)", "(1 4 7)", ""},
			{"(range 3 0 -1)", "(3 2 1)", ""},
			{"(range 0 1 0)", "!type-error", ""},
			{"(take 2 [1 2 3])", "(1 2)", ""},
			{"(take 5 [1 2])", "(1 2)", ""},
			{"(drop 2 [1 2 3])", "(3)", ""},
			{"(concat [1] '(2) nil)", "(1 2)", ""},
			{"(reverse [1 2 3])", "(3 2 1)", ""},
			{"(seq [])", "nil", ""},
			{"(map inc 1)", "!type-error", ""},
		}},
		{"sort", clovetest.TestSequence{
			{"(sort [3 1 2])", "(1 2 3)", ""},
			{"(sort > [3 1 2])", "(3 2 1)", ""},
			{`(sort compare ["b" "a"])`, `("a" "b")`, ""},
			{`(sort [:b :a])`, "(:a :b)", ""},
		}},
		{"into", clovetest.TestSequence{
			{"(into [] '(1 2))", "[1 2]", ""},
			{"(into '() [1 2])", "(2 1)", ""},
			{"(into (sorted-map) [[:b 2] [:a 1]])", "{:a 1 :b 2}", ""},
			{"(into (sorted-set) [2 1 2])", "#{1 2}", ""},
		}},
		{"core library", clovetest.TestSequence{
			{"(get (frequencies [:a :b :a]) :a)", "2", ""},
			{"(get (group-by odd? [1 2 3]) true)", "[1 3]", ""},
			{"(get (zipmap [:a :b] [1 2]) :b)", "2", ""},
			{"(update {:a 1} :a inc)", "{:a 2}", ""},
			{"(assoc-in {} [:a :b] 1)", "{:a {:b 1}}", ""},
			{"(update-in {:a {:b 1}} [:a :b] + 10)", "{:a {:b 11}}", ""},
			{"(not-empty [])", "nil", ""},
		}},
	}
	clovetest.RunTestSuite(t, tests)
}

func TestSortedMapOrder(t *testing.T) {
	env, err := clovetest.NewEnv(t)
	require.NoError(t, err)
	v := env.EvalString(`(sorted-map "b" 2 "a" 1 "c" 3)`, "test")
	require.Equal(t, lisp.LMap, v.Type, v.String())
	clovetest.AssertSortedMap(t, v.MapData())
}
