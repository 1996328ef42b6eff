package fetch

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/mediatype"
)

// File is an upload payload passed to the transport untouched.
type File struct {
	Name      string
	MediaType mediatype.MediaType
	open      func() (io.ReadCloser, error)
}

// NewFile wraps an opener. The opener is called once per started request.
func NewFile(name string, mt mediatype.MediaType, open func() (io.ReadCloser, error)) *File {
	return &File{Name: name, MediaType: mt, open: open}
}

// OpenFile describes a file on disk; the media type is guessed from the
// extension.
func OpenFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("fetch: %s is a directory", path)
	}
	mt := mediatype.ByteStream
	if guess := mime.TypeByExtension(filepath.Ext(path)); guess != "" {
		mt = mediatype.Parse(guess)
	}
	return NewFile(filepath.Base(path), mt, func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// Open returns a fresh reader over the content.
func (f *File) Open() (io.ReadCloser, error) {
	if f == nil || f.open == nil {
		return nil, fmt.Errorf("fetch: file has no content")
	}
	return f.open()
}
