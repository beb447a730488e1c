package domain

// ImageRecord is one entry of the fixed image catalog. The catalog is loaded
// once at startup and treated as read-only for the lifetime of the service.
type ImageRecord struct {
	ID          string
	Filename    string
	Title       string
	Description string
	// Keywords is the comma-joined form of the catalog's keyword list,
	// normalized during catalog parsing.
	Keywords string
	// Extra holds any additional catalog metadata fields verbatim.
	Extra map[string]string
}

// ScoredImage is an image record returned from description similarity search.
type ScoredImage struct {
	ImageRecord
	Score float64
}
