package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"studyhub/internal/chattypes"
	"studyhub/internal/config"
)

// LocalStorageService stores uploads on the local filesystem and serves them
// under a static URL prefix.
type LocalStorageService struct {
	basePath string
	baseURL  string
}

// NewLocalStorageService creates a LocalStorageService rooted at the
// configured path.
func NewLocalStorageService(cfg config.StorageConfig) (chattypes.StorageService, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %q: %w", cfg.LocalPath, err)
	}
	return &LocalStorageService{
		basePath: cfg.LocalPath,
		baseURL:  cfg.BaseURL,
	}, nil
}

// UploadFile writes the file under a generated name, keeping the original
// extension, and returns its public URL.
func (s *LocalStorageService) UploadFile(ctx context.Context, reader io.Reader, size int64, fileName string, mimeType string) (*chattypes.FileInfo, error) {
	ext := filepath.Ext(fileName)
	if ext == "" {
		if extensions, _ := mime.ExtensionsByType(mimeType); len(extensions) > 0 {
			ext = extensions[0]
		}
	}
	uniqueName := uuid.New().String() + ext
	dstPath := filepath.Join(s.basePath, uniqueName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("create upload file %q: %w", dstPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if written != size {
		os.Remove(dstPath)
		return nil, fmt.Errorf("upload size mismatch: expected %d, wrote %d", size, written)
	}

	fileURL := strings.TrimSuffix(s.baseURL, "/") + "/" + url.PathEscape(uniqueName)
	return &chattypes.FileInfo{
		URL:      fileURL,
		Path:     dstPath,
		FileName: fileName,
		Size:     size,
		MimeType: mimeType,
	}, nil
}
