package layout

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

func GetBinaryPath() string {
	//nolint:dogsled
	_, b, _, _ := runtime.Caller(0)

	// Root folder of this project
	fp := filepath.Join(filepath.Dir(b), "..")

	return fp
}

// ResolvePath makes relative paths relative to the project root.
func ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(GetBinaryPath(), path)
}

func OpenPath(path string) (*os.File, error) {
	resolved := ResolvePath(path)
	slog.DebugContext(logCtx, "Opening layout file", "path", path, "resolved", resolved)

	file, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}

	return file, nil
}

// Parse validates and decodes a layout document.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read layout: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return &doc, nil
}

func LoadFile(path string) (*Document, error) {
	file, err := OpenPath(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("could not parse layout file %s: %w", path, err)
	}

	slog.InfoContext(logCtx, "Loaded layout", "path", path, "keyboards", doc.Names())

	return doc, nil
}
