package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/dustin/go-humanize"
)

// ImageInfo describes an image file without decoding its pixels.
type ImageInfo struct {
	Name       string
	Path       string
	Format     string
	Width      int
	Height     int
	ColorModel string
	FileSize   int64
}

// ProbeImageInfo reads the header of p.
func ProbeImageInfo(p ImagePath) (ImageInfo, error) {
	info := ImageInfo{Name: p.Name(), Path: p.Path}

	var cfg image.Config
	var format string
	if p.InArchive() {
		data, err := readArchiveEntry(p)
		if err != nil {
			return info, err
		}
		info.FileSize = int64(len(data))
		cfg, format, err = image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return info, &DecodeError{Path: p.Path, Err: err}
		}
	} else {
		f, err := os.Open(p.Path)
		if err != nil {
			return info, err
		}
		defer f.Close()
		if st, err := f.Stat(); err == nil {
			info.FileSize = st.Size()
		}
		cfg, format, err = image.DecodeConfig(f)
		if err != nil {
			return info, &DecodeError{Path: p.Path, Err: err}
		}
	}

	info.Format = format
	info.Width = cfg.Width
	info.Height = cfg.Height
	info.ColorModel = colorModelName(cfg.ColorModel)
	return info, nil
}

func colorModelName(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "Paletted"
	}
	switch m {
	case color.RGBAModel:
		return "RGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.GrayModel:
		return "Gray"
	case color.Gray16Model:
		return "Gray16"
	case color.YCbCrModel:
		return "YCbCr"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "Alpha"
	}
	return "Unknown"
}

// Lines formats the info for the overlay.
func (i ImageInfo) Lines() []string {
	lines := []string{
		fmt.Sprintf("Name: %s", i.Name),
		fmt.Sprintf("Path: %s", i.Path),
	}
	if i.Format != "" {
		lines = append(lines,
			fmt.Sprintf("Format: %s", i.Format),
			fmt.Sprintf("Size: %d x %d", i.Width, i.Height),
			fmt.Sprintf("Color: %s", i.ColorModel),
		)
	}
	if i.FileSize > 0 {
		lines = append(lines, fmt.Sprintf("File: %s", humanize.IBytes(uint64(i.FileSize))))
	}
	return lines
}
