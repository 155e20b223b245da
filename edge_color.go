package main

import (
	"image"
	"image/color"
	"time"
)

const (
	backgroundSteps    = 20
	backgroundDuration = 500 * time.Millisecond
	maxEdgeSamples     = 4000
)

// DominantEdgeColor returns the most common colour along the border of img,
// bucketed at 4 bits per channel and averaged within the winning bucket.
func DominantEdgeColor(img *image.RGBA) color.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.RGBA{A: 0xff}
	}

	perimeter := 2*w + 2*h
	step := max(1, perimeter/maxEdgeSamples)

	type bucket struct {
		count   int
		r, g, b int
	}
	buckets := make(map[uint16]*bucket)
	sample := func(x, y int) {
		i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
		r, g, bl := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		key := uint16(r>>4)<<8 | uint16(g>>4)<<4 | uint16(bl>>4)
		bk := buckets[key]
		if bk == nil {
			bk = &bucket{}
			buckets[key] = bk
		}
		bk.count++
		bk.r += int(r)
		bk.g += int(g)
		bk.b += int(bl)
	}

	for x := 0; x < w; x += step {
		sample(x, 0)
		sample(x, h-1)
	}
	for y := 0; y < h; y += step {
		sample(0, y)
		sample(w-1, y)
	}

	var best *bucket
	var bestKey uint16
	for key, bk := range buckets {
		if best == nil || bk.count > best.count || (bk.count == best.count && key < bestKey) {
			best, bestKey = bk, key
		}
	}
	return color.RGBA{
		R: uint8(best.r / best.count),
		G: uint8(best.g / best.count),
		B: uint8(best.b / best.count),
		A: 0xff,
	}
}

// BackgroundAnimator fades the canvas background towards a target colour
// in fixed steps.
type BackgroundAnimator struct {
	timer   *Timer
	from    color.RGBA
	to      color.RGBA
	current color.RGBA
	step    int
	enabled bool
}

func NewBackgroundAnimator(d *Dispatcher, enabled bool) *BackgroundAnimator {
	black := color.RGBA{A: 0xff}
	return &BackgroundAnimator{
		timer:   d.NewTimer(),
		from:    black,
		to:      black,
		current: black,
		step:    backgroundSteps,
		enabled: enabled,
	}
}

func (a *BackgroundAnimator) Color() color.RGBA {
	return a.current
}

// SetTarget starts a fade from the current colour to c.
func (a *BackgroundAnimator) SetTarget(c color.RGBA) {
	if !a.enabled || c == a.to {
		return
	}
	a.from = a.current
	a.to = c
	a.step = 0
	a.timer.Schedule(backgroundDuration/backgroundSteps, a.advance)
}

func (a *BackgroundAnimator) advance() {
	a.step++
	a.current = lerpColor(a.from, a.to, float64(a.step)/backgroundSteps)
	if a.step < backgroundSteps {
		a.timer.Schedule(backgroundDuration/backgroundSteps, a.advance)
	}
}

// Stop freezes the fade at its current colour.
func (a *BackgroundAnimator) Stop() {
	a.timer.Stop()
	a.to = a.current
	a.step = backgroundSteps
}

func lerpColor(from, to color.RGBA, t float64) color.RGBA {
	if t >= 1 {
		return to
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 0xff}
}
