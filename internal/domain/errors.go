package domain

import "errors"

var (
	// ErrMalformedRequest signals a missing or empty required field.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrIngestionFailed signals an unreadable or unsupported uploaded document.
	ErrIngestionFailed = errors.New("ingestion failed")
	// ErrRetrievalFailed signals an index failure during retrieval.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrGenerationFailed signals an answer generation failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCatalogInvalid signals a missing or malformed image catalog entry.
	ErrCatalogInvalid = errors.New("invalid image catalog")
)
