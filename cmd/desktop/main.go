package main

import (
	"fmt"
	"image"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gotac/pkg/log"
	"gotac/pkg/utils"
)

var tabKeys = []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5}

type Game struct {
	path string
	view viewer
	log  log.Logger

	canvas    *image.RGBA
	screenImg *ebiten.Image // reused screen-sized canvas
}

func newGame(path string) *Game {
	g := &Game{
		path:   path,
		log:    log.New("module", "desktop"),
		canvas: image.NewRGBA(image.Rect(0, 0, screenWidth, screenHeight)),
	}
	g.view.rows = visibleRows
	return g
}

// reload reads the source file again and recompiles it.
func (g *Game) reload() error {
	_, src, err := utils.ReadSource(g.path)
	if err != nil {
		return err
	}
	current := g.view.current
	g.view.load(src)
	g.view.selectTab(current)
	g.log.Info("Compiled", "file", g.path, "status", g.view.status())
	return nil
}

func (g *Game) Update() error {
	for i, key := range tabKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.view.selectTab(i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.view.nextTab()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) || inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.reload(); err != nil {
			g.log.Warn("Reload failed", "file", g.path, "err", err)
		}
	}

	switch {
	case repeating(ebiten.KeyArrowDown):
		g.view.scrollBy(1)
	case repeating(ebiten.KeyArrowUp):
		g.view.scrollBy(-1)
	case repeating(ebiten.KeyPageDown):
		g.view.scrollBy(g.view.rows)
	case repeating(ebiten.KeyPageUp):
		g.view.scrollBy(-g.view.rows)
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.view.scrollBy(-int(dy * 3))
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if i := tabAt(image.Pt(ebiten.CursorPosition()), len(g.view.tabs)); i >= 0 {
			g.view.selectTab(i)
		}
	}
	return nil
}

// repeating reports a key press, repeating while the key is held.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d > 20 && d%3 == 0)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(screenWidth, screenHeight)
	}
	render(g.canvas, &g.view)
	g.screenImg.WritePixels(g.canvas.Pix)
	screen.DrawImage(g.screenImg, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: desktop <file>")
		os.Exit(2)
	}

	game := newGame(os.Args[1])
	if err := game.reload(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read source file: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("gotac - " + game.path)
	if err := ebiten.RunGame(game); err != nil {
		game.log.Crit("Window closed with error", "err", err)
		os.Exit(1)
	}
}
