// Package security confines file access to a configured directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for an empty path argument
	ErrEmptyPath = errors.New("path cannot be empty")
	// ErrOutsideRoot is returned for paths that escape the root directory
	ErrOutsideRoot = errors.New("path is outside the allowed directory")
)

// PathValidator resolves user supplied paths against a root directory and
// rejects anything that escapes it, including through symlinks
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute root directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns path into an absolute path inside the root. Relative paths
// are taken relative to the root. The file does not have to exist.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	clean := filepath.Clean(path)

	if !within(v.root, clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	// Compare real locations too so a symlink inside the root cannot point
	// outside of it
	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}
	if resolved, err := filepath.EvalSymlinks(clean); err == nil {
		if !within(realRoot, resolved) {
			return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideRoot, path, resolved)
		}
	}

	return clean, nil
}

// ValidatePath reports whether path lies inside the root
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.Resolve(path)
	return err
}

// ResolveFile resolves path and checks that it names a regular file no
// larger than maxSize bytes. A maxSize of zero or less disables the check.
func (v *PathValidator) ResolveFile(path string, maxSize int64) (string, os.FileInfo, error) {
	resolved, err := v.Resolve(path)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("path is a directory: %s", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), maxSize)
	}
	return resolved, info, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
