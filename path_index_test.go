package main

import (
	"archive/zip"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedExt(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"PNG file", "test.png", true},
		{"JPG file", "test.jpg", true},
		{"JPEG file", "test.jpeg", true},
		{"WebP file", "test.webp", true},
		{"BMP file", "test.bmp", true},
		{"GIF file", "test.gif", true},
		{"TIFF file", "test.tiff", true},
		{"TIF file", "test.tif", true},
		{"PNG uppercase", "test.PNG", true},
		{"JPG uppercase", "test.JPG", true},
		{"Text file", "test.txt", false},
		{"Archive", "test.zip", false},
		{"No extension", "test", false},
		{"Empty string", "", false},
		{"Multiple dots", "test.backup.jpg", true},
		{"Path with directory", "/path/to/test.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSupportedExt(tt.path))
		})
	}
}

func TestIsArchiveExt(t *testing.T) {
	assert.True(t, isArchiveExt("book.zip"))
	assert.True(t, isArchiveExt("book.RAR"))
	assert.True(t, isArchiveExt("book.7z"))
	assert.False(t, isArchiveExt("book.tar"))
	assert.False(t, isArchiveExt("book.png"))
}

func TestScanDirectory(t *testing.T) {
	dir := makeImageDir(t, "img10.png", "img2.png", "img1.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	paths, err := Scan(dir, SortNatural)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, p.Name())
		assert.True(t, filepath.IsAbs(p.Path))
		assert.False(t, p.InArchive())
	}
	assert.Equal(t, []string{"img1.png", "img2.png", "img10.png"}, names)

	paths, err = Scan(dir, SortSimple)
	require.NoError(t, err)
	assert.Equal(t, "img1.png", paths[0].Name())
	assert.Equal(t, "img10.png", paths[1].Name())
}

func TestScanFollowsSymlinks(t *testing.T) {
	dir := makeImageDir(t, "real.png")
	require.NoError(t, os.Symlink(filepath.Join(dir, "real.png"), filepath.Join(dir, "link.png")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.png"), filepath.Join(dir, "broken.png")))

	paths, err := Scan(dir, SortNatural)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "link.png", paths[0].Name())
	assert.Equal(t, "real.png", paths[1].Name())
}

func TestScanEmptyDirectory(t *testing.T) {
	paths, err := Scan(t.TempDir(), SortNatural)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestScanErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope")},
		{"regular file", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.path, SortNatural)
			var dirErr *DirectoryError
			require.ErrorAs(t, err, &dirErr)
			assert.Contains(t, err.Error(), "cannot read directory")
		})
	}
}

// writeZip stores one PNG per name, in the given order, plus a text file.
func writeZip(t *testing.T, path string, names ...string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		require.NoError(t, png.Encode(w, solidImage(4, 3, color.RGBA{G: 255, A: 255})))
	}
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestScanZipArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "book.zip")
	writeZip(t, archive, "b/02.png", "b/10.png", "b/01.png")

	paths, err := Scan(archive, SortEntryOrder)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	assert.Equal(t, "b/02.png", paths[0].EntryPath)
	assert.Equal(t, archive+":b/02.png", paths[0].Path)
	assert.Equal(t, archive, paths[0].ArchivePath)
	assert.Equal(t, "02.png", paths[0].Name())
	assert.True(t, paths[0].InArchive())

	paths, err = Scan(archive, SortNatural)
	require.NoError(t, err)
	assert.Equal(t, "b/01.png", paths[0].EntryPath)
	assert.Equal(t, "b/10.png", paths[2].EntryPath)

	img, err := FileDecoder{}.Decode(paths[0])
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())

	_, err = FileDecoder{}.Decode(archiveMember(archive, "b/99.png"))
	assert.True(t, IsDecodeError(err))
}

func TestScanCorruptArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(archive, []byte("not a zip"), 0o644))

	_, err := Scan(archive, SortNatural)
	var dirErr *DirectoryError
	assert.ErrorAs(t, err, &dirErr)
}

func TestResolveTarget(t *testing.T) {
	dir := makeImageDir(t, "a.png")
	archive := filepath.Join(dir, "book.zip")
	writeZip(t, archive, "x.png")

	tests := []struct {
		name     string
		arg      string
		dir      string
		selected string
		wantErr  bool
	}{
		{"directory", dir, dir, "", false},
		{"image file", filepath.Join(dir, "a.png"), dir, filepath.Join(dir, "a.png"), false},
		{"archive", archive, archive, "", false},
		{"missing", filepath.Join(dir, "nope.png"), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDir, gotSelected, err := ResolveTarget(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dir, gotDir)
			assert.Equal(t, tt.selected, gotSelected)
		})
	}
}

func TestIndexOf(t *testing.T) {
	paths := pathsOf("a", "b", "c")
	assert.Equal(t, 1, IndexOf(paths, "b"))
	assert.Equal(t, -1, IndexOf(paths, "z"))
	assert.Equal(t, -1, IndexOf(nil, "a"))
}
