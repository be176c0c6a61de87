package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	screenWidth  = 800
	screenHeight = 600

	lineHeight = 14
	tabHeight  = 22
	statusTop  = screenHeight - lineHeight - 6
	textLeft   = 8
	tabWidth   = 96
)

var (
	background = color.RGBA{0x1e, 0x1e, 0x24, 0xff}
	tabIdle    = color.RGBA{0x32, 0x32, 0x3c, 0xff}
	tabActive  = color.RGBA{0x4a, 0x5a, 0x8a, 0xff}
	textColor  = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	errorColor = color.RGBA{0xff, 0x6b, 0x6b, 0xff}
	okColor    = color.RGBA{0x7c, 0xd9, 0x7c, 0xff}
)

// visibleRows is the number of text lines between the tab bar and the
// status line.
const visibleRows = (statusTop - tabHeight - 10) / lineHeight

func tabRect(i int) image.Rectangle {
	x := textLeft + i*(tabWidth+4)
	return image.Rect(x, 2, x+tabWidth, tabHeight)
}

// tabAt returns the tab under pt, or -1.
func tabAt(pt image.Point, n int) int {
	for i := 0; i < n; i++ {
		if pt.In(tabRect(i)) {
			return i
		}
	}
	return -1
}

func fillRect(dst draw.Image, r image.Rectangle, clr color.Color) {
	draw.Draw(dst, r, image.NewUniform(clr), image.Point{}, draw.Src)
}

// drawText draws s with its top left corner at x, y.
func drawText(dst draw.Image, s string, x, y int, clr color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+basicfont.Face7x13.Ascent),
	}
	d.DrawString(s)
}

// render draws the whole window: tab bar, the visible lines of the current
// tab and the status line.
func render(dst draw.Image, v *viewer) {
	fillRect(dst, dst.Bounds(), background)

	for i, t := range v.tabs {
		r := tabRect(i)
		bg := tabIdle
		if i == v.current {
			bg = tabActive
		}
		fillRect(dst, r, bg)
		clr := textColor
		if t.failed {
			clr = errorColor
		}
		drawText(dst, fmt.Sprintf("%d %s", i+1, t.title), r.Min.X+6, r.Min.Y+4, clr)
	}

	y := tabHeight + 6
	for _, line := range v.visible() {
		drawText(dst, line, textLeft, y, textColor)
		y += lineHeight
	}

	fillRect(dst, image.Rect(0, statusTop-4, screenWidth, screenHeight), tabIdle)
	clr := okColor
	if !v.result.OK() {
		clr = errorColor
	}
	drawText(dst, v.status(), textLeft, statusTop, clr)
}
