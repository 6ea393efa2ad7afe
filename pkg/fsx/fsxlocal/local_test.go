package fsxlocal_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/fsx"
	"github.com/Abraxas-365/fittsee/pkg/fsx/fsxlocal"
)

func newStore(t *testing.T) *fsxlocal.LocalFileSystem {
	t.Helper()
	s, err := fsxlocal.NewLocalFileSystem(filepath.Join(t.TempDir(), "storage"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWriteReadCopy(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.WriteFile(ctx, "templates/template.mp4", []byte("video")); err != nil {
		t.Fatal(err)
	}
	if err := s.Copy(ctx, "templates/template.mp4", "renders/j1.mp4"); err != nil {
		t.Fatal(err)
	}

	data, err := s.ReadFile(ctx, "renders/j1.mp4")
	if err != nil || string(data) != "video" {
		t.Fatalf("expected copied bytes, got %q %v", data, err)
	}

	info, err := s.Stat(ctx, "renders/j1.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if info.ContentType != "video/mp4" || info.Size != 5 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestMissingFile(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.ReadFile(ctx, "nope.mp4")
	if !fsx.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}

	err = s.Copy(ctx, "nope.mp4", "renders/x.mp4")
	if !fsx.IsNotFound(err) {
		t.Errorf("expected copy of missing source to be not found, got %v", err)
	}

	ok, err := s.Exists(ctx, "nope.mp4")
	if err != nil || ok {
		t.Errorf("expected Exists=false, got %v %v", ok, err)
	}

	if err := s.DeleteFile(ctx, "nope.mp4"); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
}

func TestRejectsEscapingPaths(t *testing.T) {
	s := newStore(t)

	err := s.WriteFile(context.Background(), "../outside.txt", []byte("x"))
	if !errx.IsCode(err, fsx.ErrInvalidPath) {
		t.Errorf("expected invalid path, got %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	got := fsx.PublicURL("/static/", "/renders/j1.mp4")
	if got != "/static/renders/j1.mp4" {
		t.Errorf("unexpected url %q", got)
	}
	if !strings.HasSuffix(fsx.PublicURL("https://cdn.example.com", "a.png"), "cdn.example.com/a.png") {
		t.Error("expected absolute base to be preserved")
	}
}
