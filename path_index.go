package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ImagePath identifies one image. Path is the cache key: the absolute,
// cleaned file path, or archive:entry for archive members.
type ImagePath struct {
	Path        string // Local file path or archive:entry format
	ArchivePath string // Empty for regular files, path to archive for entries
	EntryPath   string // Empty for regular files, path within archive for entries
}

// Name returns the display name of the image.
func (p ImagePath) Name() string {
	if p.EntryPath != "" {
		return filepath.Base(p.EntryPath)
	}
	return filepath.Base(p.Path)
}

// InArchive reports whether the image is read from an archive.
func (p ImagePath) InArchive() bool {
	return p.ArchivePath != ""
}

func isArchiveExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

func isSupportedExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

// normalizePath returns the absolute, cleaned form of path.
func normalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// Scan lists the images directly inside dir and returns them in the order
// of the given sort method. An archive file is listed as if it were a
// directory. Entries that cannot be inspected are skipped.
func Scan(dir string, sortMethod int) ([]ImagePath, error) {
	root, err := normalizePath(dir)
	if err != nil {
		return nil, &DirectoryError{Path: dir, Err: err}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, &DirectoryError{Path: root, Err: err}
	}

	if !info.IsDir() {
		if !isArchiveExt(root) {
			return nil, &DirectoryError{Path: root, Err: errors.New("not a directory")}
		}
		images, err := listArchive(root)
		if err != nil {
			return nil, &DirectoryError{Path: root, Err: err}
		}
		return sortImagePaths(images, sortMethod), nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &DirectoryError{Path: root, Err: err}
	}

	images := make([]ImagePath, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isSupportedExt(entry.Name()) {
			continue
		}

		fullPath := filepath.Join(root, entry.Name())
		if !isReadableFile(fullPath, entry) {
			debugLog("Skipping unreadable entry %s", fullPath)
			continue
		}

		images = append(images, ImagePath{Path: fullPath})
	}

	return sortImagePaths(images, sortMethod), nil
}

// isReadableFile resolves symlinks and rejects anything that is not a
// regular file.
func isReadableFile(path string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	info, err := entry.Info()
	return err == nil && info.Mode().IsRegular()
}

// sortImagePaths sorts the given image paths using the specified sort strategy.
// Returns a new sorted slice without modifying the original.
func sortImagePaths(images []ImagePath, sortMethod int) []ImagePath {
	strategy := GetSortStrategy(sortMethod)
	return strategy.Sort(images)
}

// IndexOf returns the position of path in paths, or -1.
func IndexOf(paths []ImagePath, path string) int {
	for i, p := range paths {
		if p.Path == path {
			return i
		}
	}
	return -1
}

// ResolveTarget splits a command line argument into the directory (or
// archive) to scan and, for a plain image file, the file to select.
func ResolveTarget(arg string) (dir string, selected string, err error) {
	abs, err := normalizePath(arg)
	if err != nil {
		return "", "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", err
	}
	if info.IsDir() || isArchiveExt(abs) {
		return abs, "", nil
	}
	return filepath.Dir(abs), abs, nil
}
