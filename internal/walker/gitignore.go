package walker

import (
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreLayer holds the .gitignore rules of one directory.
type ignoreLayer struct {
	dir    string
	parser *ignore.GitIgnore
}

// loadIgnoreLayers returns parent extended with dir's .gitignore, or parent
// itself when dir has none. parent is never modified.
func loadIgnoreLayers(parent []ignoreLayer, dir string) []ignoreLayer {
	parser, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return parent
	}
	layers := make([]ignoreLayer, len(parent)+1)
	copy(layers, parent)
	layers[len(parent)] = ignoreLayer{dir: dir, parser: parser}
	return layers
}

// ignored checks path against every layer, each relative to its own
// directory. Directories are matched with a trailing slash so "build/"
// rules apply to them only.
func ignored(layers []ignoreLayer, path string, isDir bool) bool {
	for _, layer := range layers {
		rel, err := filepath.Rel(layer.dir, path)
		if err != nil {
			continue
		}
		if isDir {
			rel += "/"
		}
		if layer.parser.MatchesPath(rel) {
			return true
		}
	}
	return false
}
