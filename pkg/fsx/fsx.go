// Package fsx abstracts the file store holding uploads, catalog assets and rendered videos.
package fsx

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// FileReader provides read-only operations
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
	Stat(ctx context.Context, path string) (FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// FileWriter provides write operations
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	WriteFileStream(ctx context.Context, path string, r io.Reader) error
	// Copy duplicates src to dst, overwriting dst.
	Copy(ctx context.Context, src, dst string) error
}

// FileDeleter provides deletion operations
type FileDeleter interface {
	DeleteFile(ctx context.Context, path string) error
}

// FileSystem combines all file operations
type FileSystem interface {
	FileReader
	FileWriter
	FileDeleter
}

// ============================================================================
// Errors
// ============================================================================

var fsxErrors = errx.NewRegistry("FSX")

var (
	ErrFileNotFound = fsxErrors.Register("FILE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "File not found")
	ErrInvalidPath  = fsxErrors.Register("INVALID_PATH", errx.TypeValidation, http.StatusBadRequest, "Invalid file path")
	ErrIO           = fsxErrors.Register("IO", errx.TypeInternal, http.StatusInternalServerError, "File storage operation failed")
)

// NotFound builds the error returned when path does not exist.
func NotFound(p string) *errx.Error {
	return fsxErrors.New(ErrFileNotFound).WithDetail("path", p)
}

// InvalidPath builds the error returned for paths escaping the store root.
func InvalidPath(p string) *errx.Error {
	return fsxErrors.New(ErrInvalidPath).WithDetail("path", p)
}

// IOError wraps a backend failure on path.
func IOError(p string, cause error) *errx.Error {
	return fsxErrors.NewWithCause(ErrIO, cause).WithDetail("path", p)
}

// IsNotFound reports whether err means the file does not exist.
func IsNotFound(err error) bool {
	return errx.IsCode(err, ErrFileNotFound)
}

// ============================================================================
// Paths
// ============================================================================

// Clean normalizes a store-relative path and reports whether it stays inside the root.
func Clean(p string) (string, bool) {
	cleaned := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", false
		}
	}
	return cleaned, true
}

// PublicURL joins a public base (e.g. "/static") with a store-relative path.
func PublicURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

func init() {
	// Not in the builtin table; hosts without /etc/mime.types would miss it.
	_ = mime.AddExtensionType(".mp4", "video/mp4")
}

// ContentTypeFor guesses a MIME type from the path extension.
func ContentTypeFor(p string) string {
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
