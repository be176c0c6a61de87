package compiler

import (
	"fmt"
	"strings"
	"testing"
)

func benchSource(funcs int) string {
	var sb strings.Builder
	for i := 0; i < funcs; i++ {
		fmt.Fprintf(&sb, `
func f%d(int n) {
    int s = 0;
    int i;
    for (i = 0; i < n; i = i + 1) {
        if (i %% 2 == 0) { s = s + i; } elif (i > 10) { break; } else { continue; }
    }
    print(s);
}
f%d(%d);
`, i, i, i)
	}
	return sb.String()
}

func BenchmarkLex(b *testing.B) {
	src := benchSource(50)
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		Lex(src)
	}
}

func BenchmarkCompile(b *testing.B) {
	src := benchSource(50)
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		if r := Compile(src); !r.OK() {
			b.Fatal(r.Err())
		}
	}
}
