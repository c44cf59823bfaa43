package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileOptions configures document file discovery.
type FileOptions struct {
	// Glob keeps only files whose path relative to the walked directory
	// matches. A pattern without a slash is matched against the base name.
	Glob     string
	NoIgnore bool // skip .gitignore processing
	Hidden   bool // include hidden files and directories
}

// ErrBadGlob reports a malformed --glob pattern.
var ErrBadGlob = errors.New("bad glob pattern")

// Files expands roots into document file paths. A root naming a file is
// used as given; directories are walked recursively, honouring .gitignore,
// skipping hidden entries, VCS directories and binary extensions, and
// filtering by opts.Glob. Paths come back in walk order. Per-path failures
// are joined into the returned error alongside the files that were found.
func Files(roots []string, opts FileOptions) ([]string, error) {
	if opts.Glob != "" && !doublestar.ValidatePattern(opts.Glob) {
		return nil, fmt.Errorf("%w: %q", ErrBadGlob, opts.Glob)
	}

	var files []string
	var errs []error
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			errs = append(errs, &WalkError{Path: root, Err: err})
			continue
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		found, err := walkDir(root, opts)
		files = append(files, found...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return files, errors.Join(errs...)
}

func walkDir(root string, opts FileOptions) ([]string, error) {
	var files []string
	var errs []error
	layers := map[string][]ignoreLayer{}
	if !opts.NoIgnore {
		layers["."] = loadIgnoreLayers(nil, root)
	}

	err := fs.WalkDir(os.DirFS(root), ".", func(rel string, d fs.DirEntry, err error) error {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err != nil {
			errs = append(errs, &WalkError{Path: full, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if rel == "." {
			return nil
		}
		parent := layers[path.Dir(rel)]
		name := d.Name()

		if d.IsDir() {
			if skipDir(name, opts.Hidden) || ignored(parent, full, true) {
				return fs.SkipDir
			}
			if !opts.NoIgnore {
				layers[rel] = loadIgnoreLayers(parent, full)
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(full)
			if err != nil || !target.Mode().IsRegular() {
				return nil // broken or non-file links
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if !opts.Hidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if binaryExtension(name) || ignored(parent, full, false) {
			return nil
		}
		if opts.Glob != "" && !matchGlob(opts.Glob, rel) {
			return nil
		}
		files = append(files, full)
		return nil
	})
	if err != nil {
		errs = append(errs, &WalkError{Path: root, Err: err})
	}
	return files, errors.Join(errs...)
}

func matchGlob(pattern, rel string) bool {
	if !strings.Contains(pattern, "/") {
		rel = path.Base(rel)
	}
	ok, _ := doublestar.Match(pattern, rel)
	return ok
}

// skipDir returns true for directories that should be skipped.
// VCS directories are always skipped, other hidden ones unless hidden is set.
func skipDir(name string, hidden bool) bool {
	switch name {
	case ".git", ".svn", ".hg":
		return true
	}
	return !hidden && strings.HasPrefix(name, ".")
}

// WalkError represents an error during directory traversal.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return "walk " + e.Path + ": " + e.Err.Error()
}

func (e *WalkError) Unwrap() error {
	return e.Err
}
