// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/luthersystems/clove/clovetest"
)

func TestNamespaces(t *testing.T) {
	tests := clovetest.TestSuite{
		{"switching", clovetest.TestSequence{
			{"(namespace)", "user", ""},
			{"(ns geo)", "geo", ""},
			{"(namespace)", "geo", ""},
			{"(defn area [r] (* r r))", "geo/area", ""},
			{"(defn- helper [] 1)", "geo/helper", ""},
			{"(helper)", "1", ""},
			{"(ns user)", "user", ""},
			{"(geo/area 3)", "9", ""},
			{"(area 3)", "!unresolved-symbol", ""},
			{"(geo/helper)", "!unresolved-symbol", ""},
			{"(resolve 'geo/helper)", "nil", ""},
			{"(namespace 'a/b)", `"a"`, ""},
			{"(namespace 'b)", "nil", ""},
			{"(namespace map)", `"core"`, ""},
			{"(namespace geo/area)", `"geo"`, ""},
			{"(namespace 1)", "!type-error", ""},
			{"(ns a/b)", "!type-error", ""},
		}},
		{"unmap and remove", clovetest.TestSequence{
			{"(ns geo)", "geo", ""},
			{"(def pi 3)", "geo/pi", ""},
			{"(ns user)", "user", ""},
			{"geo/pi", "3", ""},
			{"(ns-unmap 'geo 'pi)", "nil", ""},
			{"geo/pi", "!unresolved-symbol", ""},
			{"(ns-unmap 'nowhere 'pi)", "!error", ""},
			{"(ns-remove 'geo)", "nil", ""},
			{"(ns-remove 'geo)", "nil", ""},
		}},
		{"sealed core", clovetest.TestSequence{
			{"(ns core)", "!security-violation", ""},
			{"(namespace)", "user", ""},
			{"(ns-remove 'core)", "!security-violation", ""},
			{"(ns-unmap 'core 'inc)", "!security-violation", ""},
			{"(def core/x 1)", "!security-violation", ""},
			{"(def load-module 1)", "!security-violation", ""},
			{"(derive-condition :a :error)", ":a", ""},
		}},
		{"shadowing core", clovetest.TestSequence{
			{"(def inc 1)", "user/inc", ""},
			{"inc", "1", ""},
			{"(core/inc 1)", "2", ""},
			{"core/inc", "#<builtin core/inc>", ""},
			{"(map core/inc [1 2])", "(2 3)", ""},
		}},
		{"imports", clovetest.TestSequence{
			{"(imports)", "[]", ""},
			{"(import java.util.List other/thing)", "nil", ""},
			{"(imports)", "[:java.util.List :other/thing]", ""},
			{"(import java.util.List)", "nil", ""},
			{"(imports 'user)", "[:java.util.List :other/thing]", ""},
			{"(imports 'nowhere)", "!error", ""},
			{"(import 1)", "!type-error", ""},
		}},
	}
	clovetest.RunTestSuite(t, tests)
}

func TestAtoms(t *testing.T) {
	tests := clovetest.TestSuite{
		{"atoms", clovetest.TestSequence{
			{"(def a (atom 0))", "user/a", ""},
			{"(atom? a)", "true", ""},
			{"(swap! a inc)", "1", ""},
			{"(swap! a + 10)", "11", ""},
			{"@a", "11", ""},
			{"(deref a)", "11", ""},
			{"(reset! a 5)", "5", ""},
			{"(compare-and-set! a 5 6)", "true", ""},
			{"(compare-and-set! a 5 7)", "false", ""},
			{"a", "#<atom 6>", ""},
			{`(swap! a (fn [x] (throw (ex :oops "x"))))`, "!oops", ""},
			{"@a", "6", ""},
			{"(swap! 1 inc)", "!type-error", ""},
			{"(deref 1)", "!type-error", ""},
		}},
	}
	clovetest.RunTestSuite(t, tests)
}
