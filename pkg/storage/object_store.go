package storage

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Key prefixes partitioning the blob namespace per artifact kind.
const (
	KindTranscript = "transcripts"
	KindExcel      = "excel"
	KindExport     = "exports"
)

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore is a key-addressed blob store.
type ObjectStore interface {
	Put(key string, data []byte, contentType string) error
	Open(key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(key string) error
}

// BuildKey constructs a namespaced storage key. The millisecond timestamp keeps
// keys unique in practice; the original filename is kept for download naming.
func BuildKey(kind, resourceID, filename string) string {
	return fmt.Sprintf("%s/%s-%d-%s", kind, resourceID, time.Now().UnixMilli(), sanitizeFilename(filename))
}

// PublicURL joins the configured public base URL with a key, or returns empty
// when no public base is configured (callers fall back to the download endpoint).
func PublicURL(baseURL, key string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + key
}

// FilenameFromKey recovers a download attachment name from a storage key.
func FilenameFromKey(key string) string {
	return path.Base(key)
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	return name
}

// FileStore persists blobs on disk under a base directory.
type FileStore struct {
	baseDir string
}

// NewFileStore ensures the base directory exists and returns a handle.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Put writes the blob under the given key.
func (s *FileStore) Put(key string, data []byte, contentType string) error {
	target := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("prepare storage directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// Open returns a read handle and metadata for a stored blob.
func (s *FileStore) Open(key string) (io.ReadCloser, *ObjectInfo, error) {
	target := s.resolve(key)
	file, err := os.Open(target)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("stat blob: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(target))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return file, &ObjectInfo{Key: key, Size: stat.Size(), ContentType: contentType}, nil
}

// Delete removes a blob if present.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *FileStore) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
