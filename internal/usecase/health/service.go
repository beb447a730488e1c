package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Chunks int // indexed chunk count, 0 when the check is disabled or failing
	Images int // catalog size, 0 when the catalog check is disabled or failing
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	chunks    Counter
	catalog   Counter
}

// New creates a Service. embedding, chunks and catalog can be nil.
func New(db DBPinger, embedding EmbeddingChecker, chunks, catalog Counter) *Service {
	return &Service{db: db, embedding: embedding, chunks: chunks, catalog: catalog}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	chunks := 0
	images := 0

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.chunks != nil {
		n, err := s.chunks.Count(ctx)
		if err != nil {
			checks["chunk_index"] = CheckError
		} else {
			checks["chunk_index"] = CheckOK
			chunks = n
		}
	}

	if s.catalog != nil {
		n, err := s.catalog.Count(ctx)
		if err != nil {
			checks["image_catalog"] = CheckError
		} else {
			checks["image_catalog"] = CheckOK
			images = n
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Chunks: chunks, Images: images}
}
