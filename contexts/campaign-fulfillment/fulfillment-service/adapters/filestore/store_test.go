package filestore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"

	"github.com/spf13/afero"
)

func TestPutObjectWritesBelowRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/var/uploads", nil)

	ref, err := store.PutObject(context.Background(), "tasks/t-1/u-1-cut.mp4", "video/mp4", strings.NewReader("frames"), 6)
	if err != nil {
		t.Fatalf("put object: %v", err)
	}
	if ref != "file:///var/uploads/tasks/t-1/u-1-cut.mp4" {
		t.Fatalf("unexpected ref %q", ref)
	}

	body, err := afero.ReadFile(fs, "/var/uploads/tasks/t-1/u-1-cut.mp4")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(body) != "frames" {
		t.Fatalf("unexpected body %q", body)
	}

	file, err := store.Open("tasks/t-1/u-1-cut.mp4")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	opened, _ := io.ReadAll(file)
	if string(opened) != "frames" {
		t.Fatalf("unexpected opened body %q", opened)
	}
}

func TestPutObjectRejectsEscapingKeys(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/var/uploads", nil)

	for _, key := range []string{"", "  ", "../etc/passwd", "tasks/../../secret"} {
		if _, err := store.PutObject(context.Background(), key, "video/mp4", strings.NewReader("x"), 1); !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("key %q: expected invalid input, got %v", key, err)
		}
	}
}

func TestPutObjectHonoursCancelledContext(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/var/uploads", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.PutObject(ctx, "tasks/t-1/a.mp4", "video/mp4", strings.NewReader("x"), 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestDeleteObjectRemovesBodyAndToleratesMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/var/uploads", nil)
	ctx := context.Background()

	if _, err := store.PutObject(ctx, "tasks/t-1/u-1-cut.mp4", "video/mp4", strings.NewReader("frames"), 6); err != nil {
		t.Fatalf("put object: %v", err)
	}
	if err := store.DeleteObject(ctx, "tasks/t-1/u-1-cut.mp4"); err != nil {
		t.Fatalf("delete object: %v", err)
	}
	if exists, _ := afero.Exists(fs, "/var/uploads/tasks/t-1/u-1-cut.mp4"); exists {
		t.Fatal("object still present after delete")
	}
	if err := store.DeleteObject(ctx, "tasks/t-1/u-1-cut.mp4"); err != nil {
		t.Fatalf("deleting a missing object should succeed, got %v", err)
	}
	if err := store.DeleteObject(ctx, "../etc/passwd"); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected escaping key to be rejected, got %v", err)
	}
}
