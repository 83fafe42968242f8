// Package security confines tool-supplied file paths to the work directory.
package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideWorkDir is returned for paths that escape the work directory
var ErrOutsideWorkDir = errors.New("path is outside the work directory")

// PathValidator resolves paths against a work directory and rejects escapes
type PathValidator struct {
	workDir string
}

// NewPathValidator creates a validator rooted at workDir. The directory
// does not need to exist yet.
func NewPathValidator(workDir string) (*PathValidator, error) {
	if workDir == "" {
		return nil, errors.New("work directory cannot be empty")
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory: %w", err)
	}
	return &PathValidator{workDir: filepath.Clean(abs)}, nil
}

// WorkDir returns the absolute work directory
func (v *PathValidator) WorkDir() string {
	return v.workDir
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the work directory. Null bytes are stripped.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.workDir, path)
	}
	abs := filepath.Clean(path)

	if !v.contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkDir, path)
	}
	return abs, nil
}

// contains reports whether path lies inside the work directory both as
// written and once every symlink along it is resolved
func (v *PathValidator) contains(path string) bool {
	dirs := []string{v.workDir}
	if real, err := resolveExisting(v.workDir); err == nil && real != v.workDir {
		dirs = append(dirs, real)
	}

	if !within(path, dirs) {
		return false
	}

	real, err := resolveExisting(path)
	if err != nil {
		return false
	}
	return within(real, dirs)
}

// resolveExisting evaluates the symlinks of the deepest existing ancestor of
// path and appends the components that do not exist yet. A dangling symlink
// is an error, since its target could be created outside later.
func resolveExisting(path string) (string, error) {
	var rest []string
	cur := path
	for {
		_, err := os.Lstat(cur)
		if err == nil {
			real, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return "", err
			}
			return filepath.Join(append([]string{real}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

func within(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir {
			return true
		}
		prefix := dir
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
