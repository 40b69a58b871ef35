package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

const pdfContentType = "application/pdf"

var pdfMagic = []byte("%PDF-")

// BlobStore persists uploaded documents under caller-built keys.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PublicURL(key string) string
}

// UploadedFile is a document received from a form.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// BytesFile wraps in-memory content as an UploadedFile.
func BytesFile(name, contentType string, data []byte) UploadedFile {
	return UploadedFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// CheckPDF rejects files that are not PDF documents or exceed maxBytes.
// Both the declared content type and the leading magic bytes are checked.
func CheckPDF(f UploadedFile, maxBytes int64) error {
	field := "files"
	if maxBytes > 0 && f.Size > maxBytes {
		return NewValidationError(field, fmt.Sprintf("le fichier %q dépasse la taille maximale autorisée", f.Name))
	}
	if f.ContentType != "" {
		mediaType, _, err := mime.ParseMediaType(f.ContentType)
		if err != nil || mediaType != pdfContentType {
			return NewValidationError(field, fmt.Sprintf("le fichier %q doit être un PDF", f.Name))
		}
	}
	if f.Open == nil {
		return NewValidationError(field, fmt.Sprintf("le fichier %q est illisible", f.Name))
	}

	rc, err := f.Open()
	if err != nil {
		return NewValidationError(field, fmt.Sprintf("le fichier %q est illisible", f.Name))
	}
	defer rc.Close()

	head, err := bufio.NewReader(rc).Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return NewValidationError(field, fmt.Sprintf("le fichier %q doit être un PDF", f.Name))
	}
	return nil
}

// DiskStorage stores blobs on the local filesystem and serves them through
// the static /uploads route.
type DiskStorage struct {
	root    string
	baseURL string
}

// NewDiskStorage creates the root directory if needed.
func NewDiskStorage(root, baseURL string) (*DiskStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStorage{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes body to key atomically.
func (s *DiskStorage) Upload(ctx context.Context, key, _ string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dest, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, dest)
}

// PublicURL returns the URL the blob is served from.
func (s *DiskStorage) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

func (s *DiskStorage) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return p, nil
}
