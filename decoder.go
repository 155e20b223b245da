package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder turns an image path into opaque RGB pixels.
type Decoder interface {
	Decode(p ImagePath) (*image.RGBA, error)
}

// FileDecoder reads plain files and archive members from disk.
type FileDecoder struct{}

func (FileDecoder) Decode(p ImagePath) (*image.RGBA, error) {
	data, err := readImageBytes(p)
	if err != nil {
		return nil, &DecodeError{Path: p.Path, Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Path: p.Path, Err: err}
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, &DecodeError{Path: p.Path, Err: fmt.Errorf("empty image %dx%d", bounds.Dx(), bounds.Dy())}
	}

	return toOpaqueRGBA(img), nil
}

func readImageBytes(p ImagePath) ([]byte, error) {
	if p.InArchive() {
		return readArchiveEntry(p)
	}
	return os.ReadFile(p.Path)
}

// toOpaqueRGBA converts src to RGB by dropping its alpha channel. Colour
// values are kept as stored (non-premultiplied); transparent pixels keep
// their colour instead of turning black.
func toOpaqueRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())

	n := image.NewNRGBA(rect)
	draw.Draw(n, rect, src, b.Min, draw.Src)
	for i := 3; i < len(n.Pix); i += 4 {
		n.Pix[i] = 0xff
	}

	// Opaque NRGBA and RGBA share the same memory layout.
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}

// ByteSize returns the cache accounting size of a w x h RGB image.
func ByteSize(w, h int) int64 {
	return int64(w) * int64(h) * 3
}

// imageByteSize is ByteSize for a decoded image.
func imageByteSize(img *image.RGBA) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return ByteSize(b.Dx(), b.Dy())
}
