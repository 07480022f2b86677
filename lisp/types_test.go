// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/clove/clovetest"
)

func TestTypes(t *testing.T) {
	tests := clovetest.TestSuite{
		{"records", clovetest.TestSequence{
			{"(deftype :point [x :long y :long])", ":user/point", ""},
			{"(point. 1 2)", "#user/point{:x 1 :y 2}", ""},
			{"(:x (point. 1 2))", "1", ""},
			{"(get (point. 1 2) :y)", "2", ""},
			{"(point? (point. 1 2))", "true", ""},
			{"(point? {:x 1 :y 2})", "false", ""},
			{"(custom-type? (point. 1 2))", "true", ""},
			{"(type (point. 1 2))", ":user/point", ""},
			{"(type 1)", ":long", ""},
			{`(point. 1 "a")`, "!type-error", ""},
			{"(point. 1)", "!arity-error", ""},
			{"(.: :point 3 4)", "#user/point{:x 3 :y 4}", ""},
			{"(.: :user/point 3 4)", "#user/point{:x 3 :y 4}", ""},
			{"(.: :nothing 1)", "!type-error", ""},
			{"(deftype? :point)", "true", ""},
			{"(deftype? :nothing)", "false", ""},
			{"(assoc (point. 1 2) :x 5)", "#user/point{:x 5 :y 2}", ""},
			{"(= (point. 1 2) (point. 1 2))", "true", ""},
			{"(deftype :any-field [v :any])", ":user/any-field", ""},
			{`(any-field. "x")`, `#user/any-field{:v "x"}`, ""},
		}},
		{"invalid definitions", clovetest.TestSequence{
			{"(deftype :long [x :long])", "!type-error", ""},
			{"(deftype :core/thing [])", "!security-violation", ""},
			{"(deftype :p [x])", "!arity-error", ""},
			{"(deftype :p [x long])", "!type-error", ""},
			{"(deftype :p (x :long))", "!type-error", ""},
			{"(deftype p [x :long])", "!type-error", ""},
			{"(deftype :p [x :long] 1)", "!type-error", ""},
		}},
		{"validators", clovetest.TestSequence{
			{"(deftype :pos [n :long] (fn [m] (pos? (:n m))))", ":user/pos", ""},
			{"(pos. 1)", "#user/pos{:n 1}", ""},
			{"(pos. -1)", "!assertion-failure", ""},
			{"(deftype-of :age :long (fn [n] (>= n 0)))", ":user/age", ""},
			{"(age. 5)", "#user/age 5", ""},
			{"(age. -1)", "!assertion-failure", ""},
			{`(age. "x")`, "!type-error", ""},
			{"(age? (age. 5))", "true", ""},
			{"(deftype-of :amount :number)", ":user/amount", ""},
			{"(amount. 1.5M)", "#user/amount 1.5M", ""},
		}},
		{"choices", clovetest.TestSequence{
			{"(deftype-or :color :red :green)", ":user/color", ""},
			{"(color. :red)", "#user/color :red", ""},
			{"(color. :blue)", "!type-error", ""},
			{"(deftype-or :id :long :string)", ":user/id", ""},
			{`(id. "x")`, `#user/id "x"`, ""},
			{"(id. 7)", "#user/id 7", ""},
			{"(id. :k)", "!type-error", ""},
			{"(deftype-or :shade :color :black)", ":user/shade", ""},
			{"(shade. (color. :green))", "#user/shade #user/color :green", ""},
			{"(shade. :black)", "#user/shade :black", ""},
		}},
	}
	clovetest.RunTestSuite(t, tests)
}

func TestMultiFunctions(t *testing.T) {
	tests := clovetest.TestSuite{
		{"keyword dispatch", clovetest.TestSequence{
			{"(defmulti area :shape)", "user/area", ""},
			{"(defmethod area :circle [s] (* 3 (:r s) (:r s)))", "#<multi-function area>", ""},
			{"(defmethod area :square [s] (* (:side s) (:side s)))", "#<multi-function area>", ""},
			{"(area {:shape :circle :r 2})", "12", ""},
			{"(area {:shape :square :side 3})", "9", ""},
			{"(area {:shape :hex})", "!error", ""},
			{"(defmethod area :default [s] 0)", "#<multi-function area>", ""},
			{"(area {:shape :hex})", "0", ""},
			{"(multi-fn? area)", "true", ""},
			{"(fn? area)", "false", ""},
			{"(map area [{:shape :circle :r 1} {:shape :square :side 2}])", "(3 4)", ""},
		}},
		{"function dispatch", clovetest.TestSequence{
			{`(defmulti speak "Describes x." (fn [x] (type x)))`, "user/speak", ""},
			{`(defmethod speak :long [x] "number")`, "#<multi-function speak>", ""},
			{`(defmethod speak :string [x] (str "text " x))`, "#<multi-function speak>", ""},
			{"(speak 1)", `"number"`, ""},
			{`(speak "a")`, `"text a"`, ""},
			{"(speak :k)", "!error", ""},
			{"(defmulti combine (fn [a b] [(type a) (type b)]))", "user/combine", ""},
			{"(defmethod combine [:long :long] [a b] (+ a b))", "#<multi-function combine>", ""},
			{"(combine 1 2)", "3", ""},
		}},
		{"errors", clovetest.TestSequence{
			{"(defmethod nope :a [x] x)", "!unresolved-symbol", ""},
			{"(defmulti bad 1)", "!type-error", ""},
			{"(def plain 1)", "user/plain", ""},
			{"(defmethod plain :a [x] x)", "!type-error", ""},
			{"(defmulti)", "!arity-error", ""},
		}},
	}
	clovetest.RunTestSuite(t, tests)
}
