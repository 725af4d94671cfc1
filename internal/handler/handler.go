package handler

import (
	"os"
	"path/filepath"
	"strings"
)

// TrashDir is the directory, relative to the notes dir, that removed note
// files are moved into.
const TrashDir = "trash"

type FileHandler struct {
	notesDir string
}

func NewFileHandler(notesDir string) *FileHandler {
	return &FileHandler{notesDir: notesDir}
}

func (h *FileHandler) NotesDir() string {
	return h.notesDir
}

// Trash moves a note file to the trash subdirectory, keeping its relative
// location. Files outside the notes dir are trashed by base name.
func (h *FileHandler) Trash(path string) error {
	subDir, err := filepath.Rel(h.notesDir, filepath.Dir(path))
	if err != nil || strings.HasPrefix(subDir, "..") {
		subDir = ""
	}

	trashDir := filepath.Join(h.notesDir, TrashDir, subDir)
	if err := os.MkdirAll(trashDir, os.ModePerm); err != nil {
		return err
	}

	return os.Rename(path, filepath.Join(trashDir, filepath.Base(path)))
}

// IsExcluded reports whether path lies in the trash or a hidden directory.
func (h *FileHandler) IsExcluded(path string) bool {
	rel, err := filepath.Rel(h.notesDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == TrashDir || (strings.HasPrefix(part, ".") && part != ".") {
			return true
		}
	}
	return false
}

// WalkFiles lists the markdown files of the notes dir. Hidden entries, the
// trash and excludeDirs are skipped.
func (h *FileHandler) WalkFiles(excludeDirs ...string) ([]string, error) {
	var files []string

	excludePaths := []string{filepath.Clean(filepath.Join(h.notesDir, TrashDir))}
	for _, d := range excludeDirs {
		excludePaths = append(excludePaths, filepath.Clean(filepath.Join(h.notesDir, d)))
	}

	err := filepath.WalkDir(h.notesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		cleaned := filepath.Clean(path)
		name := d.Name()

		if d.IsDir() {
			for _, excluded := range excludePaths {
				if cleaned == excluded {
					return filepath.SkipDir
				}
			}
			if strings.HasPrefix(name, ".") && cleaned != filepath.Clean(h.notesDir) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || filepath.Ext(name) != ".md" {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, err
}
