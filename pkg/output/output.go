// Package output names result files and writes them without leaving partial artifacts.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileNames returns one output name per url. With a given name, the first
// file uses it as is and later ones get a _1, _2... suffix; otherwise each name
// is the last path segment of its url.
func FileNames(urls []string, given, extension string) []string {
	names := make([]string, 0, len(urls))
	for i, url := range urls {
		name := given
		if name == "" {
			name = slug(url)
		}
		if i > 0 && given != "" {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		names = append(names, name+"."+extension)
	}
	return names
}

func slug(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// WriteFile runs write against a temp file next to path and renames it into
// place once write succeeds. On failure nothing is left behind.
func WriteFile(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				err = errors.Join(err, rmErr)
			}
		}
	}()

	if err = write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
