// Package library scans a local media folder into a tree of directories
// and video files.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotDirectory = errors.New("not a directory")

var videoExtensions = map[string]bool{
	"mp4": true, "avi": true, "mov": true, "mkv": true,
	"wmv": true, "flv": true, "webm": true, "vob": true,
	"ogv": true, "m4v": true, "3gp": true, "3g2": true,
}

// Directory is one folder of the library. Files holds video file names,
// Subdirectories the nested folders; both are sorted by name.
type Directory struct {
	Name           string      `json:"name"`
	Path           string      `json:"path"`
	Files          []string    `json:"files"`
	Subdirectories []Directory `json:"subdirectories"`
}

// IsVideo reports whether name has one of the known video extensions
func IsVideo(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return videoExtensions[strings.ToLower(ext)]
}

// Scan walks root, following symbolic links and skipping entries whose name
// starts with a dot. Non-video files are ignored. A directory reached twice
// through links is only listed the first time.
func Scan(root string) (Directory, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Directory{}, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return Directory{}, fmt.Errorf("scan %s: %w", root, ErrNotDirectory)
	}

	s := &scanner{seen: make(map[string]bool)}
	return s.scan(filepath.Clean(root))
}

type scanner struct {
	seen map[string]bool
}

func (s *scanner) scan(path string) (Directory, error) {
	dir := Directory{
		Name:           filepath.Base(path),
		Path:           path,
		Files:          []string{},
		Subdirectories: []Directory{},
	}

	if real, err := filepath.EvalSymlinks(path); err == nil {
		if s.seen[real] {
			return dir, nil
		}
		s.seen[real] = true
	}

	// os.ReadDir returns entries sorted by name
	entries, err := os.ReadDir(path)
	if err != nil {
		return Directory{}, fmt.Errorf("scan %s: %w", path, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(path, name)

		// Stat follows links so linked folders and files count as their targets
		info, err := os.Stat(full)
		if err != nil {
			// Dangling link
			continue
		}

		switch {
		case info.IsDir():
			sub, err := s.scan(full)
			if err != nil {
				return Directory{}, err
			}
			dir.Subdirectories = append(dir.Subdirectories, sub)
		case info.Mode().IsRegular() && IsVideo(name):
			dir.Files = append(dir.Files, name)
		}
	}
	return dir, nil
}

// Count returns the number of video files in d and below
func (d Directory) Count() int {
	n := len(d.Files)
	for _, sub := range d.Subdirectories {
		n += sub.Count()
	}
	return n
}

// Lines renders d as an indented outline, directories with a trailing slash
func (d Directory) Lines() []string {
	var out []string
	d.render(0, &out)
	return out
}

func (d Directory) render(depth int, out *[]string) {
	indent := strings.Repeat("  ", depth)
	*out = append(*out, indent+d.Name+"/")
	for _, sub := range d.Subdirectories {
		sub.render(depth+1, out)
	}
	for _, f := range d.Files {
		*out = append(*out, indent+"  "+f)
	}
}
