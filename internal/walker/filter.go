package walker

import (
	"bytes"
	"path/filepath"
	"strings"
)

// IsBinary reports whether data looks binary: a NUL byte in the first 8KB.
// Binary files are never loaded as documents.
func IsBinary(data []byte) bool {
	limit := min(len(data), 8192)
	return bytes.IndexByte(data[:limit], 0) >= 0
}

// binaryExtension reports whether name has an extension that is never a
// searchable document, so the walk can skip it without reading it.
func binaryExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := binaryExts[ext]
	return ok || strings.Contains(name, ".so.")
}

var binaryExts = map[string]struct{}{
	".a": {}, ".o": {}, ".so": {}, ".dylib": {}, ".dll": {}, ".exe": {},
	".bin": {}, ".class": {}, ".pyc": {}, ".wasm": {},
	".gz": {}, ".bz2": {}, ".xz": {}, ".zst": {}, ".zip": {}, ".tar": {},
	".7z": {}, ".jar": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {},
	".webp": {}, ".tif": {}, ".tiff": {},
	".mp3": {}, ".mp4": {}, ".ogg": {}, ".wav": {}, ".mkv": {}, ".webm": {},
	".mov": {},
	".ttf": {}, ".otf": {}, ".woff": {}, ".woff2": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".db": {}, ".sqlite": {},
}
