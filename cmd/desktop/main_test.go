package main

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tabs []tab) []string {
	out := make([]string, len(tabs))
	for i, t := range tabs {
		out[i] = t.title
	}
	return out
}

func failed(tabs []tab) []bool {
	out := make([]bool, len(tabs))
	for i, t := range tabs {
		out[i] = t.failed
	}
	return out
}

func TestBuildTabs(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		failed []bool
		want   map[int]string
	}{
		{
			name:   "success",
			src:    "int x = 5;\nprint(x);",
			failed: []bool{false, false, false, false, false},
			want: map[int]string{
				0: "   2  print(x);",
				1: "INT_LITERAL",
				2: "Syntax OK",
				3: "Semantic Analysis OK",
				4: "print",
			},
		},
		{
			name:   "lexical error",
			src:    "int @x;",
			failed: []bool{false, true, false, false, false},
			want: map[int]string{
				1: "Lexical Error at line 1: illegal sequence @x",
				2: "Skipped: lexical analysis failed.",
				4: "Skipped: lexical analysis failed.",
			},
		},
		{
			name:   "syntax error",
			src:    "int x = ;",
			failed: []bool{false, false, true, false, false},
			want: map[int]string{
				2: "Syntax Error at line 1: unexpected token ';'",
				3: "Skipped: parsing failed.",
			},
		},
		{
			name:   "semantic error",
			src:    "int x; int x;",
			failed: []bool{false, false, false, true, false},
			want: map[int]string{
				3: "Semantic Error: redeclaration of 'x'",
				4: "Skipped: semantic analysis failed.",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tabs, _ := buildTabs(tt.src)
			assert.Equal(t, tabTitles, titles(tabs))
			assert.Equal(t, tt.failed, failed(tabs))
			for i, want := range tt.want {
				assert.Contains(t, strings.Join(tabs[i].lines, "\n"), want, tabs[i].title)
			}
		})
	}
}

func TestViewerScrolling(t *testing.T) {
	var src strings.Builder
	for i := 0; i < 30; i++ {
		src.WriteString("print(1);\n")
	}
	v := viewer{rows: 10}
	v.load(src.String())

	require.Len(t, v.tabs[0].lines, 30)
	assert.Equal(t, "   1  print(1);", v.visible()[0])

	v.scrollBy(25)
	assert.Equal(t, 20, v.scroll, "clamped to the last page")
	assert.Len(t, v.visible(), 10)

	v.scrollBy(-100)
	assert.Zero(t, v.scroll)

	v.scrollBy(5)
	v.nextTab()
	assert.Equal(t, 1, v.current)
	assert.Zero(t, v.scroll, "switching tabs scrolls to the top")

	v.selectTab(4)
	v.nextTab()
	assert.Zero(t, v.current, "wraps around")

	v.selectTab(9)
	assert.Zero(t, v.current, "out of range is ignored")
	assert.Equal(t, "OK: 60 instructions", v.status())
}

func TestGameReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.src")
	require.NoError(t, os.WriteFile(path, []byte("int x = 1;"), 0644))

	g := newGame(path)
	require.NoError(t, g.reload())
	g.view.selectTab(4)
	assert.Equal(t, "OK: 2 instructions", g.view.status())

	require.NoError(t, os.WriteFile(path, []byte("int x = 1;\nint x = 2;"), 0644))
	require.NoError(t, g.reload())
	assert.Equal(t, 4, g.view.current, "reload keeps the selected tab")
	assert.Equal(t, "semantic analysis failed: Semantic Error: redeclaration of 'x'", g.view.status())

	g.path = filepath.Join(t.TempDir(), "missing.src")
	assert.Error(t, g.reload())
}

func TestRender(t *testing.T) {
	g := newGame("")
	g.view.load("int x = 1;\nbool b = x;")
	render(g.canvas, &g.view)

	assert.Equal(t, background, g.canvas.RGBAAt(screenWidth-1, tabHeight+100))
	assert.Equal(t, tabActive, g.canvas.RGBAAt(tabRect(0).Min.X+1, tabRect(0).Min.Y+1))
	assert.Equal(t, tabIdle, g.canvas.RGBAAt(tabRect(1).Min.X+1, tabRect(1).Min.Y+1))

	var lit int
	for x := 0; x < screenWidth; x++ {
		for y := tabHeight; y < statusTop-4; y++ {
			if g.canvas.RGBAAt(x, y) == textColor {
				lit++
			}
		}
	}
	assert.NotZero(t, lit, "source lines drawn")

	var red bool
	for x := 0; x < screenWidth && !red; x++ {
		for y := statusTop; y < screenHeight; y++ {
			if g.canvas.RGBAAt(x, y) == errorColor {
				red = true
			}
		}
	}
	assert.True(t, red, "failed status drawn in red")
}

func TestTabAt(t *testing.T) {
	assert.Equal(t, 0, tabAt(image.Pt(textLeft+1, 5), 5))
	assert.Equal(t, 2, tabAt(tabRect(2).Min, 5))
	assert.Equal(t, -1, tabAt(image.Pt(textLeft+1, tabHeight+1), 5))
	assert.Equal(t, -1, tabAt(tabRect(4).Min, 3))
}
