package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"summary-backend/internal/shared/storage/object"
)

func TestPutOpenRemove(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), "http://localhost:8080/blobs")

	n, err := store.Put(ctx, "1-ab_hello.txt", "text/plain", bytes.NewReader([]byte("hello world")))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != 11 {
		t.Fatalf("expected 11 bytes written, got %d", n)
	}

	rc, err := store.Open(ctx, "1-ab_hello.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello world" {
		t.Fatalf("unexpected content %q", data)
	}

	removed, err := store.Remove(ctx, []string{"1-ab_hello.txt", "missing.txt"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed) != 1 || removed[0] != "1-ab_hello.txt" {
		t.Fatalf("expected only existing key reported, got %v", removed)
	}

	if _, err := store.Open(ctx, "1-ab_hello.txt"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestPutDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), "")

	if _, err := store.Put(ctx, "k.txt", "", bytes.NewReader([]byte("one"))); err != nil {
		t.Fatalf("first put: %v", err)
	}
	_, err := store.Put(ctx, "k.txt", "", bytes.NewReader([]byte("two")))
	if !errors.Is(err, object.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), "")

	for _, key := range []string{"", "../escape.txt", "/abs.txt"} {
		if _, err := store.Put(ctx, key, "", bytes.NewReader(nil)); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestListAndPublicURL(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), "http://localhost:8080/blobs/")

	objects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(objects) != 0 {
		t.Fatalf("expected empty store, got %d objects", len(objects))
	}

	if _, err := store.Put(ctx, "a.pdf", "", bytes.NewReader([]byte("abc"))); err != nil {
		t.Fatalf("put: %v", err)
	}
	objects, err = store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "a.pdf" || objects[0].Size != 3 {
		t.Fatalf("unexpected listing %+v", objects)
	}

	if got := store.PublicURL("a.pdf"); got != "http://localhost:8080/blobs/a.pdf" {
		t.Fatalf("unexpected public url %q", got)
	}
}

func TestListMissingBaseDir(t *testing.T) {
	store := New(t.TempDir()+"/does-not-exist", "")
	objects, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 0 {
		t.Fatalf("expected no objects, got %d", len(objects))
	}
}
