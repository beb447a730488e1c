// Package chi exposes the tutor API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lessonlab/tutor/internal/domain"
	healthuc "github.com/lessonlab/tutor/internal/usecase/health"
	ingestuc "github.com/lessonlab/tutor/internal/usecase/ingest"
	queryuc "github.com/lessonlab/tutor/internal/usecase/query"
)

// Error codes returned in the JSON error envelope.
const (
	codeBadRequest        = "bad_request"
	codeIngestionFailed   = "ingestion_failed"
	codeRetrievalFailed   = "retrieval_failed"
	codeGenerationFailed  = "generation_failed"
	codeEmbeddingProvider = "embedding_provider_error"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the tutor usecases to their HTTP endpoints.
type Server struct {
	ingest  *ingestuc.Service
	query   *queryuc.Service
	health  *healthuc.Service
	logger  *zap.Logger
	baseURL string
	maxBody int64

	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. baseURL is the public origin
// prepended to image paths; maxBody caps upload size in bytes.
func NewServer(
	ingest *ingestuc.Service,
	query *queryuc.Service,
	health *healthuc.Service,
	baseURL string,
	maxBody int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:  ingest,
		query:   query,
		health:  health,
		logger:  logger,
		baseURL: baseURL,
		maxBody: maxBody,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMalformedRequest, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrCatalogInvalid, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrIngestionFailed, http.StatusInternalServerError, codeIngestionFailed),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusInternalServerError, codeRetrievalFailed),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeGenerationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/upload", s.Upload)
	r.Post("/chat", s.Chat)
	r.Get("/images/{topicID}", s.Images)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type uploadResponse struct {
	TopicID string `json:"topicId"`
}

// Upload handles POST /upload (multipart, field "file").
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(s.maxBody); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, `multipart field "file" is required`)
		return
	}
	defer func() { _ = file.Close() }()

	res, err := s.ingest.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{TopicID: res.TopicID})
}

type chatRequest struct {
	TopicID  string `json:"topicId"`
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string    `json:"answer"`
	Image  *imageRef `json:"image"`
}

type imageRef struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.query.Answer(r.Context(), req.TopicID, req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer: resp.Answer,
		Image:  s.imageRef(resp.Image),
	})
}

type imagesResponse struct {
	Images []*imageRef `json:"images"`
}

// Images handles GET /images/{topicID}. The path segment is used as
// free text for the similarity lookup, so any phrase works, not just
// known topic ids.
func (s *Server) Images(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicID")

	img, err := s.query.FindImage(r.Context(), topicID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// A single slot, null when the catalog is empty.
	writeJSON(w, http.StatusOK, imagesResponse{
		Images: []*imageRef{s.imageRef(img)},
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Chunks int               `json:"chunks,omitempty"`
	Images int               `json:"images,omitempty"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
		Chunks: report.Chunks,
		Images: report.Images,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// imageRef converts a scored image to its wire form, nil staying nil.
func (s *Server) imageRef(img *domain.ScoredImage) *imageRef {
	if img == nil {
		return nil
	}
	return &imageRef{
		ID:          img.ID,
		URL:         s.baseURL + "/images/" + path.Base(img.Filename),
		Filename:    img.Filename,
		Title:       img.Title,
		Description: img.Description,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrMalformedRequest,
		domain.ErrCatalogInvalid,
		domain.ErrIngestionFailed,
		domain.ErrRetrievalFailed,
		domain.ErrGenerationFailed,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
