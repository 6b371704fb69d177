package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func TempPath(path string) string {
	return path + TempSuffix
}

// AtomicWriteFile writes data next to path and renames it into place, so
// readers only ever see a complete file.
func AtomicWriteFile(path string, data []byte) error {
	tempPath := TempPath(path)
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("error renaming (finalizing) %s: %w", path, err)
	}
	return nil
}

// CleanTempFiles removes leftover partial downloads from dir and returns the
// number of files removed. A missing dir is not an error.
func CleanTempFiles(dir string) (int, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), TempSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
