package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a source document path does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrCorruptDocument indicates a document exists but cannot be
	// opened or parsed.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrEmptyDocument indicates a document parsed but yielded no
	// pages with any content.
	ErrEmptyDocument = errors.New("empty document")

	// ErrConfig indicates invalid chunking or pipeline configuration,
	// e.g. overlap not smaller than chunk size.
	ErrConfig = errors.New("invalid configuration")

	// ErrEmbedding indicates an embedding call failed, whatever the
	// cause. The core never retries; retries belong to the caller.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexNotFound indicates no valid index exists at the
	// configured path.
	ErrIndexNotFound = errors.New("index not found")

	// ErrModelMismatch indicates the query-time embedding model
	// differs from the one the index was built with. Searching with a
	// mismatched model silently corrupts rankings, so it fails fast.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrSynthesizer indicates the answer synthesizer call failed.
	ErrSynthesizer = errors.New("synthesizer failed")
)
