package main

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	timeoutShort = 2 * time.Second
	pollShort    = 2 * time.Millisecond
)

// fakeDecoder produces solid images without touching the disk. Paths not
// listed in sizes decode to 10x10.
type fakeDecoder struct {
	mu    sync.Mutex
	sizes map[string]image.Point
	fail  map[string]bool
	calls map[string]int

	// gate, when set, blocks decodes until it is closed: every decode, or
	// only the paths in gated when that is non-empty.
	gate  chan struct{}
	gated map[string]bool
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		sizes: make(map[string]image.Point),
		fail:  make(map[string]bool),
		calls: make(map[string]int),
		gated: make(map[string]bool),
	}
}

func (d *fakeDecoder) Decode(p ImagePath) (*image.RGBA, error) {
	d.mu.Lock()
	d.calls[p.Path]++
	size, ok := d.sizes[p.Path]
	fail := d.fail[p.Path]
	gate := d.gate
	if len(d.gated) > 0 && !d.gated[p.Path] {
		gate = nil
	}
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return nil, &DecodeError{Path: p.Path, Err: errors.New("corrupt")}
	}
	if !ok {
		size = image.Pt(10, 10)
	}
	return solidImage(size.X, size.Y, color.RGBA{R: 200, G: 100, B: 50, A: 255}), nil
}

func (d *fakeDecoder) Calls(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[path]
}

// fakeProbe reports a fixed amount of available memory.
type fakeProbe struct {
	available uint64
	err       error
}

func (p fakeProbe) Available() (uint64, error) {
	return p.available, p.err
}

// recordingSink counts the frames it receives.
type recordingSink struct {
	mu     sync.Mutex
	frames []*image.RGBA
}

func (s *recordingSink) Draw(frame *image.RGBA, w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *recordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *recordingSink) Last() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// writePNG writes a solid w x h PNG to path.
func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	writeImage(t, path, solidImage(w, h, c))
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// makeImageDir writes one small PNG per name into a new temp directory.
func makeImageDir(t *testing.T, names ...string) string {
	t.Helper()
	return makeSizedImageDir(t, 8, 6, color.RGBA{R: 10, G: 20, B: 30, A: 255}, names...)
}

func makeSizedImageDir(t *testing.T, w, h int, c color.RGBA, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		writePNG(t, filepath.Join(dir, name), w, h, c)
	}
	return dir
}

// drainUntil runs dispatcher callbacks until cond holds or the timeout
// expires.
func drainUntil(t *testing.T, d *Dispatcher, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		d.Drain()
		return cond()
	}, timeoutShort, pollShort)
}
