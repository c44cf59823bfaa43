package watch

import (
	"errors"
	"fmt"

	"github.com/dl/vsearch/internal/document"
	"github.com/dl/vsearch/internal/input"
	"github.com/dl/vsearch/internal/walker"
)

// ErrBinary is returned by Reload when the file no longer looks like text.
var ErrBinary = errors.New("file looks binary")

// Reload reads path again and morphs doc into the new content. Nodes whose
// text did not change are kept, so matches inside them survive the reload.
func Reload(doc *document.Document, path string, maxSize int64) error {
	res, err := input.ForPath(path, maxSize).Read(path)
	if err != nil {
		return err
	}
	defer res.Closer()

	if walker.IsBinary(res.Data) {
		return fmt.Errorf("%s: %w", path, ErrBinary)
	}
	fresh, err := document.Load(path, res.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	doc.Sync(fresh)
	return nil
}
