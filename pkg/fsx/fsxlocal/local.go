package fsxlocal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Abraxas-365/fittsee/pkg/fsx"
)

// LocalFileSystem implements fsx.FileSystem using local disk
type LocalFileSystem struct {
	basePath string
}

// NewLocalFileSystem creates the base directory if needed and roots the store there.
func NewLocalFileSystem(basePath string) (*LocalFileSystem, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return &LocalFileSystem{basePath: absPath}, nil
}

// GetBasePath returns the absolute root directory
func (s *LocalFileSystem) GetBasePath() string {
	return s.basePath
}

func (s *LocalFileSystem) fullPath(p string) (string, error) {
	cleaned, ok := fsx.Clean(p)
	if !ok {
		return "", fsx.InvalidPath(p)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleaned)), nil
}

func mapErr(p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fsx.NotFound(p)
	}
	return fsx.IOError(p, err)
}

// ============================================================================
// FileReader Implementation
// ============================================================================

func (s *LocalFileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	full, err := s.fullPath(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, mapErr(p, err)
	}
	return data, nil
}

func (s *LocalFileSystem) ReadFileStream(ctx context.Context, p string) (io.ReadCloser, error) {
	full, err := s.fullPath(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, mapErr(p, err)
	}
	return f, nil
}

func (s *LocalFileSystem) Stat(ctx context.Context, p string) (fsx.FileInfo, error) {
	full, err := s.fullPath(p)
	if err != nil {
		return fsx.FileInfo{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return fsx.FileInfo{}, mapErr(p, err)
	}
	if info.IsDir() {
		return fsx.FileInfo{}, fsx.NotFound(p)
	}
	return fsx.FileInfo{
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: fsx.ContentTypeFor(p),
	}, nil
}

func (s *LocalFileSystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.Stat(ctx, p)
	if err == nil {
		return true, nil
	}
	if fsx.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// ============================================================================
// FileWriter Implementation
// ============================================================================

func (s *LocalFileSystem) WriteFile(ctx context.Context, p string, data []byte) error {
	return s.writeAtomic(p, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (s *LocalFileSystem) WriteFileStream(ctx context.Context, p string, r io.Reader) error {
	return s.writeAtomic(p, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

func (s *LocalFileSystem) Copy(ctx context.Context, src, dst string) error {
	in, err := s.ReadFileStream(ctx, src)
	if err != nil {
		return err
	}
	defer in.Close()
	return s.WriteFileStream(ctx, dst, in)
}

// writeAtomic writes into a temp file in the target directory and renames it,
// so readers never observe a partially written file.
func (s *LocalFileSystem) writeAtomic(p string, write func(io.Writer) error) error {
	full, err := s.fullPath(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fsx.IOError(p, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fsx.IOError(p, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fsx.IOError(p, err)
	}
	if err := tmp.Close(); err != nil {
		return fsx.IOError(p, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fsx.IOError(p, err)
	}
	return nil
}

// ============================================================================
// FileDeleter Implementation
// ============================================================================

func (s *LocalFileSystem) DeleteFile(ctx context.Context, p string) error {
	full, err := s.fullPath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fsx.IOError(p, err)
	}
	return nil
}
