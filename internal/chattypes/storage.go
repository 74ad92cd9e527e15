package chattypes

import (
	"context"
	"io"
)

// FileInfo describes a stored upload.
type FileInfo struct {
	URL      string `json:"url"`
	Path     string `json:"-"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// StorageService abstracts where uploaded files end up. The only shipping
// implementation writes to the local filesystem; a blob-store backend plugs
// in behind the same interface.
type StorageService interface {
	UploadFile(ctx context.Context, reader io.Reader, size int64, fileName string, mimeType string) (*FileInfo, error)
}
