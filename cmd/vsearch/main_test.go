package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "page.html")
	os.WriteFile(doc, []byte("<p>hello world</p>"), 0644)

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr string
	}{
		{"match", []string{"--color=never", "--count", "world", doc}, 0, ""},
		{"no match", []string{"--color=never", "--count", "absent", doc}, 1, ""},
		{"missing keyword", nil, 2, "requires at least 1 arg"},
		{"unknown flag", []string{"--nope", "x"}, 2, "unknown flag"},
		{"bad color", []string{"--color=sometimes", "x", doc}, 2, "invalid color mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			got := execute(context.Background(), tt.args, &stderr)
			if got != tt.want {
				t.Errorf("execute(%v) = %d, want %d (stderr: %s)", tt.args, got, tt.want, stderr.String())
			}
			if tt.wantErr != "" && !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want containing %q", stderr.String(), tt.wantErr)
			}
		})
	}
}
