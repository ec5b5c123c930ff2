package object

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when a key does not resolve to a stored object.
	ErrNotFound = errors.New("object not found")
	// ErrAlreadyExists is returned by Put when the key is already taken.
	ErrAlreadyExists = errors.New("object already exists")
	// ErrInvalidKey is returned for keys the backend cannot address safely.
	ErrInvalidKey = errors.New("invalid storage key")
)

// ObjectInfo describes a stored object as reported by List.
type ObjectInfo struct {
	Key       string
	Size      int64
	CreatedAt time.Time
}

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	// Put stores r under key without overwriting and returns the number of bytes written.
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes keys and reports the ones that actually existed and were removed.
	Remove(ctx context.Context, keys []string) ([]string, error)
	List(ctx context.Context) ([]ObjectInfo, error)
	// PublicURL derives the retrieval URL for key. It does not check existence.
	PublicURL(key string) string
}
