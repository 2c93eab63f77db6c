package blob_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mediavault/adapters/blob"
)

func TestLocal_PutMoveDelete(t *testing.T) {
	dir := t.TempDir()
	store := blob.NewLocal(dir)
	ctx := context.Background()

	if err := store.Put(ctx, "media", "u1/photos/cat.jpg", []byte("img")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "media", "u1", "photos", "cat.jpg")); err != nil {
		t.Fatalf("object missing after put: %v", err)
	}

	if err := store.Move(ctx, "media", "u1/photos/cat.jpg", "u1/private/cat.jpg"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "media", "u1", "private", "cat.jpg")); err != nil {
		t.Fatalf("object missing after move: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "media", "u1", "photos", "cat.jpg")); !os.IsNotExist(err) {
		t.Error("old path should be gone after move")
	}

	if err := store.Delete(ctx, "media", "u1/private/cat.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "media", "u1", "private", "cat.jpg")); !os.IsNotExist(err) {
		t.Error("object should be gone after delete")
	}
}

func TestLocal_DeleteMissing(t *testing.T) {
	store := blob.NewLocal(t.TempDir())

	if err := store.Delete(context.Background(), "media", "nope.jpg"); err != nil {
		t.Errorf("delete missing err = %v, want nil", err)
	}
}

func TestLocal_RejectsTraversal(t *testing.T) {
	store := blob.NewLocal(t.TempDir())

	if err := store.Put(context.Background(), "media", "../../escape.txt", []byte("x")); err == nil {
		t.Error("put with traversal key should fail")
	}
	if err := store.Move(context.Background(), "media", "a.txt", "../../escape.txt"); err == nil {
		t.Error("move with traversal key should fail")
	}
}
