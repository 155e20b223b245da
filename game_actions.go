package main

import (
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
)

// InputActions implementation

func (g *Game) Exit() {
	g.exiting = true
}

func (g *Game) ToggleHelp() {
	g.showHelp = !g.showHelp
}

func (g *Game) ToggleInfo() {
	g.showInfo = !g.showInfo
}

func (g *Game) ToggleFullscreen() {
	g.fullscreen = !g.fullscreen
	if g.fullscreen {
		g.savedWinW, g.savedWinH = ebiten.WindowSize()
		ebiten.SetFullscreen(true)
		return
	}

	ebiten.SetFullscreen(false)
	if g.savedWinW > 0 && g.savedWinH > 0 {
		ebiten.SetWindowSize(g.savedWinW, g.savedWinH)
	}
}

func (g *Game) EnterAngleInputMode() {
	if g.session.Count() == 0 || g.session.IsLoading() || g.session.IsPlaying() {
		return
	}
	g.angleInputMode = true
	g.angleInputBuffer = ""
}

func (g *Game) ExitAngleInputMode() {
	g.angleInputMode = false
	g.angleInputBuffer = ""
}

// ProcessAngleInput rotates the current image by the typed angle.
func (g *Game) ProcessAngleInput() {
	if g.angleInputBuffer == "" {
		return
	}
	degrees, err := strconv.ParseFloat(g.angleInputBuffer, 64)
	if err != nil {
		g.ShowOverlayMessage("Invalid angle: " + g.angleInputBuffer)
		return
	}
	g.session.RotateBy(degrees)
}

func (g *Game) UpdateAngleInputBuffer(buffer string) {
	g.angleInputBuffer = buffer
}

func (g *Game) CycleSortMethod() {
	g.session.CycleSortMethod()
}

func (g *Game) CancelLoading() {
	g.session.CancelLoading()
}

// Navigation

func (g *Game) StartNavigate(dir int) {
	g.session.KeyPress(dir)
}

func (g *Game) StopNavigate(dir int) {
	g.session.KeyRelease(dir)
}

// NavigateNext steps once, as a press immediately followed by a release.
func (g *Game) NavigateNext() {
	g.session.KeyPress(1)
	g.session.KeyRelease(1)
}

func (g *Game) NavigatePrevious() {
	g.session.KeyPress(-1)
	g.session.KeyRelease(-1)
}

func (g *Game) NavigateFirst() {
	g.session.NavigateFirst()
}

func (g *Game) NavigateLast() {
	g.session.NavigateLast()
}

func (g *Game) TogglePlay() {
	g.session.TogglePlay()
}

func (g *Game) StopPlayback() {
	g.session.StopPlayback()
}

// Transformations. Positive angles turn counterclockwise.

func (g *Game) RotateLeft() {
	g.session.RotateBy(90)
}

func (g *Game) RotateRight() {
	g.session.RotateBy(-90)
}

func (g *Game) Rotate180() {
	g.session.RotateBy(180)
}

func (g *Game) FlipHorizontal() {
	g.session.FlipHorizontal()
}

func (g *Game) FlipVertical() {
	g.session.FlipVertical()
}

// Zoom and pan

func (g *Game) ZoomIn() {
	g.session.ZoomIn()
}

func (g *Game) ZoomOut() {
	g.session.ZoomOut()
}

func (g *Game) ZoomReset() {
	g.session.ZoomReset()
}

func (g *Game) ZoomAt(x, y float64, zoomIn bool) {
	g.session.ZoomWheel(x, y, zoomIn)
}

func (g *Game) PanUp() {
	g.session.PanBy(0, panStep)
}

func (g *Game) PanDown() {
	g.session.PanBy(0, -panStep)
}

func (g *Game) PanLeft() {
	g.session.PanBy(panStep, 0)
}

func (g *Game) PanRight() {
	g.session.PanBy(-panStep, 0)
}

func (g *Game) BeginDrag(x, y float64) {
	g.session.BeginDrag(x, y)
}

func (g *Game) DragTo(x, y float64) {
	g.session.DragTo(x, y)
}

func (g *Game) EndDrag() {
	g.session.EndDrag()
}

func (g *Game) ShowOverlayMessage(message string) {
	g.session.ShowOverlayMessage(message)
}

func (g *Game) GetTotalImagesCount() int {
	return g.session.Count()
}

// InputState implementation

func (g *Game) IsDragging() bool {
	return g.session.IsDragging()
}
