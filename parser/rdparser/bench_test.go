// Copyright © 2018 The ELPS authors

package rdparser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/clove/parser/rdparser"
)

func benchSource(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "(defn f%d [x & more] {:n %d :s \"s%d\" :v [1.5 2N 3.25M]} (apply + x more))\n", i, i, i)
	}
	return b.String()
}

func BenchmarkParser(b *testing.B) {
	src := benchSource(200)
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rdparser.ReadAll("bench", src); err != nil {
			b.Fatalf("Parse failure: %v", err)
		}
	}
}
