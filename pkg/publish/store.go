// Package publish exports produced rasters as GeoTIFFs and uploads them
// to object storage.
package publish

import (
	"context"
	"errors"
	"io"
)

// ObjectStore is the minimal object-storage surface publishing needs.
type ObjectStore interface {
	// PutObject uploads one object under key.
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error

	// Close releases any resources held by the store.
	Close() error
}

// Sentinel errors for classified store failures.
var (
	ErrAccessDenied       = errors.New("access denied")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrThrottled          = errors.New("request throttled")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// StoreError wraps object store failures with operation context.
type StoreError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *StoreError) Error() string {
	msg := "publish: " + e.Op + " " + e.Bucket
	if e.Key != "" {
		msg += "/" + e.Key
	}
	return msg + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
