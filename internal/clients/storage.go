package clients

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrFileNotFound = errors.New("file not found")

// StorageClient keeps generated reports on local disk when no object store is configured.
type StorageClient struct {
	BaseDir      string
	PublicPrefix string // e.g. "/files"
	BaseURL      string // optional scheme+host used to build absolute links
}

func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}
	if !strings.HasPrefix(publicPrefix, "/") {
		publicPrefix = "/" + publicPrefix
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{
		BaseDir:      baseDir,
		PublicPrefix: strings.TrimSuffix(publicPrefix, "/"),
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes data under "<uuid>_<fileName>" and returns that stored name.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := uuid.NewString() + "_" + filepath.Base(fileName)
	path := filepath.Join(s.BaseDir, stored)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return stored, nil
}

func (s *StorageClient) GetURL(stored string) string {
	return s.BaseURL + s.PublicPrefix + "/" + stored
}

// Resolve maps a stored name to its path on disk and the name a download should use.
func (s *StorageClient) Resolve(stored string) (path, downloadName string, err error) {
	clean := filepath.Base(stored)
	if clean != stored || clean == "." || clean == string(filepath.Separator) {
		return "", "", ErrFileNotFound
	}

	path = filepath.Join(s.BaseDir, clean)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", "", ErrFileNotFound
	}

	downloadName = clean
	if idx := strings.IndexByte(clean, '_'); idx >= 0 {
		downloadName = clean[idx+1:]
	}
	return path, downloadName, nil
}

// CleanupOlderThan removes files whose modification time is older than d and returns how many went.
func (s *StorageClient) CleanupOlderThan(d time.Duration) (int, error) {
	cutoff := time.Now().Add(-d)
	removed := 0

	err := filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})

	return removed, err
}
