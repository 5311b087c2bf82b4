// Package security validates user-supplied file paths such as the weights
// file and the local SQLite database.
package security

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath wraps every path rejection.
var ErrInvalidPath = errors.New("invalid file path")

// MaxReadSize caps SafeReadFile. Config files are a few hundred bytes.
const MaxReadSize = 1 << 20

// forbiddenChars never appear in a sane config path.
const forbiddenChars = ";&|$`<>!\n\r\x00"

// CleanPath returns path cleaned and made absolute. Symlinks are left
// unresolved so a watched link keeps pointing at whatever it is swapped to.
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("%w: forbidden character %q in %q", ErrInvalidPath, path[i], path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	return abs, nil
}

// SafeReadFile reads a validated path, refusing files over MaxReadSize.
func SafeReadFile(path string) ([]byte, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(clean) // #nosec G304 -- validated by CleanPath
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxReadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxReadSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", clean, MaxReadSize)
	}
	return data, nil
}
