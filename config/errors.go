package config

import "errors"

// Validation errors returned by [Load] when required configuration groups
// are incomplete or invalid.
var (
	// ErrInvalidStoreConfig indicates missing object store credentials or
	// addressing (for example, an empty MINIO_ROOT_USER).
	ErrInvalidStoreConfig = errors.New("invalid object store configuration")
	// ErrInvalidEncryptionConfig indicates a missing encryption key or key
	// name.
	ErrInvalidEncryptionConfig = errors.New("invalid encryption configuration")
	// ErrInvalidObjectConfig indicates an empty source or target bucket or
	// key.
	ErrInvalidObjectConfig = errors.New("invalid object configuration")
)
