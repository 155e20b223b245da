package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDominantEdgeColor(t *testing.T) {
	red := color.RGBA{R: 200, G: 10, B: 10, A: 255}
	blue := color.RGBA{R: 10, G: 10, B: 200, A: 255}

	framed := solidImage(20, 20, blue)
	for i := 0; i < 20; i++ {
		framed.SetRGBA(i, 0, red)
		framed.SetRGBA(i, 19, red)
		framed.SetRGBA(0, i, red)
		framed.SetRGBA(19, i, red)
	}

	// Mostly green border with a short red run.
	green := color.RGBA{G: 180, A: 255}
	mixed := solidImage(30, 10, green)
	for x := 0; x < 5; x++ {
		mixed.SetRGBA(x, 0, red)
	}

	tests := []struct {
		name string
		img  *image.RGBA
		want color.RGBA
	}{
		{"solid", solidImage(8, 8, blue), blue},
		{"border only counts", framed, red},
		{"majority wins", mixed, green},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0)), color.RGBA{A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DominantEdgeColor(tt.img))
		})
	}
}

func TestLerpColor(t *testing.T) {
	from := color.RGBA{A: 255}
	to := color.RGBA{R: 200, G: 100, B: 50, A: 255}

	assert.Equal(t, from, lerpColor(from, to, 0))
	assert.Equal(t, color.RGBA{R: 100, G: 50, B: 25, A: 255}, lerpColor(from, to, 0.5))
	assert.Equal(t, to, lerpColor(from, to, 1))
	assert.Equal(t, to, lerpColor(from, to, 2))
}

func TestBackgroundAnimator(t *testing.T) {
	target := color.RGBA{R: 90, G: 60, B: 30, A: 255}

	t.Run("fades to target", func(t *testing.T) {
		d := NewDispatcher(16)
		defer d.Close()
		a := NewBackgroundAnimator(d, true)

		a.SetTarget(target)
		drainUntil(t, d, func() bool { return a.Color() == target })
	})

	t.Run("disabled keeps black", func(t *testing.T) {
		d := NewDispatcher(16)
		defer d.Close()
		a := NewBackgroundAnimator(d, false)

		a.SetTarget(target)
		assert.Equal(t, color.RGBA{A: 255}, a.Color())
		assert.False(t, a.timer.Pending())
	})

	t.Run("stop freezes", func(t *testing.T) {
		d := NewDispatcher(16)
		defer d.Close()
		a := NewBackgroundAnimator(d, true)

		a.SetTarget(target)
		a.Stop()
		assert.False(t, a.timer.Pending())
		assert.Equal(t, color.RGBA{A: 255}, a.Color())
	})
}
