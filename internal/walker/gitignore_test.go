package walker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreLayers_BasicMatching(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\nbuild/\n!important.log\n"), 0644)

	layers := loadIgnoreLayers(nil, dir)

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{"matches glob", filepath.Join(dir, "app.log"), false, true},
		{"no match", filepath.Join(dir, "app.html"), false, false},
		{"dir pattern matches dir", filepath.Join(dir, "build"), true, true},
		{"dir pattern skips file", filepath.Join(dir, "build"), false, false},
		{"negation", filepath.Join(dir, "important.log"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ignored(layers, tt.path, tt.isDir); got != tt.want {
				t.Errorf("ignored(%q, isDir=%v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestIgnoreLayers_Nested(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	os.Mkdir(sub, 0755)
	os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.tmp\n"), 0644)
	os.WriteFile(filepath.Join(sub, ".gitignore"), []byte("*.dat\n"), 0644)

	rootLayers := loadIgnoreLayers(nil, root)
	subLayers := loadIgnoreLayers(rootLayers, sub)

	if !ignored(subLayers, filepath.Join(root, "test.tmp"), false) {
		t.Error("expected root .gitignore to stay in effect")
	}
	if !ignored(subLayers, filepath.Join(sub, "test.dat"), false) {
		t.Error("expected sub .gitignore to match *.dat")
	}
	if ignored(rootLayers, filepath.Join(root, "test.dat"), false) {
		t.Error("sub rules leaked into the root layers")
	}
	if ignored(subLayers, filepath.Join(sub, "test.txt"), false) {
		t.Error("expected test.txt to not be ignored")
	}
}

func TestIgnoreLayers_NoGitignore(t *testing.T) {
	dir := t.TempDir()
	if layers := loadIgnoreLayers(nil, dir); len(layers) != 0 {
		t.Errorf("got %d layers without a .gitignore, want 0", len(layers))
	}
}
