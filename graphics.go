package main

import (
	"bytes"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// newFontSource loads the bundled Go Regular face
func newFontSource() (*text.GoTextFaceSource, error) {
	return text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// DrawFrame draws a border of the given thickness inside the rectangle
func DrawFrame(screen *ebiten.Image, x, y, w, h, thickness float64, c color.RGBA) {
	DrawFilledRect(screen, x, y, w, thickness, c)
	DrawFilledRect(screen, x, y+h-thickness, w, thickness, c)
	DrawFilledRect(screen, x, y, thickness, h, c)
	DrawFilledRect(screen, x+w-thickness, y, thickness, h, c)
}

// FrameCanvas receives rendered frames and keeps the latest one as a GPU
// image for the draw loop.
type FrameCanvas struct {
	img     *ebiten.Image
	version uint64
}

// Draw implements RenderSink. A nil frame clears the canvas.
func (c *FrameCanvas) Draw(frame *image.RGBA, w, h int) {
	c.version++
	if frame == nil || w <= 0 || h <= 0 {
		c.release()
		return
	}

	if c.img == nil || c.img.Bounds().Dx() != w || c.img.Bounds().Dy() != h {
		c.release()
		c.img = ebiten.NewImage(w, h)
	}
	c.img.WritePixels(frame.Pix)
}

func (c *FrameCanvas) release() {
	if c.img != nil {
		c.img.Deallocate()
		c.img = nil
	}
}

func (c *FrameCanvas) Image() *ebiten.Image {
	return c.img
}

func (c *FrameCanvas) Version() uint64 {
	return c.version
}

// drawErrorPanel draws a placeholder for an image that cannot be shown
func drawErrorPanel(screen *ebiten.Image, source *text.GoTextFaceSource, filename, reason string) {
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	w, h := min(480, sw-20), min(140, sh-20)
	if w <= 0 || h <= 0 {
		return
	}
	x, y := (sw-w)/2, (sh-h)/2

	DrawFilledRect(screen, x, y, w, h, colorErrorPanel)
	DrawFrame(screen, x, y, w, h, 3, colorWhite)

	font := &text.GoTextFace{Source: source, Size: 20}
	maxChars := int(w-20) / 10
	DrawText(screen, "ERROR", font, x+10, y+15, colorWhite)
	DrawText(screen, truncateText("File: "+filename, maxChars), font, x+10, y+50, colorWhite)
	DrawText(screen, truncateText("Reason: "+reason, maxChars), font, x+10, y+85, colorWhite)
}

// truncateText shortens s to maxChars runes with a trailing ellipsis
func truncateText(s string, maxChars int) string {
	r := []rune(s)
	if maxChars < 4 || len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars-3]) + "..."
}
