package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"geminiproxy/metrics"
)

const defaultMaxBodyBytes = 10 << 20

// TextGenerator turns a prompt into generated text using the given model.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// HTTPHandler relays a prompt to a TextGenerator and returns the generated text.
type HTTPHandler struct {
	Generator    TextGenerator
	Model        string
	MaxBodyBytes int64
	Metrics      *metrics.Metrics
}

type Option func(*HTTPHandler)

// WithMaxBodyBytes limits how much of the request body is decoded.
func WithMaxBodyBytes(n int64) Option {
	return func(h *HTTPHandler) {
		if n > 0 {
			h.MaxBodyBytes = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTPHandler) { h.Metrics = m }
}

// NewHTTPHandler creates a new instance of HTTPHandler. model is fixed for
// the lifetime of the handler; callers cannot choose it.
func NewHTTPHandler(gen TextGenerator, model string, opts ...Option) *HTTPHandler {
	h := &HTTPHandler{
		Generator:    gen,
		Model:        model,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements the http.Handler interface for HTTPHandler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := h.serve(w, r)
	h.Metrics.RecordRequest(code)
	logRequest(r, code)
}

func (h *HTTPHandler) serve(w http.ResponseWriter, r *http.Request) int {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		writePreflight(w)
		return http.StatusNoContent
	case http.MethodPost:
	default:
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return http.StatusMethodNotAllowed
	}

	prompt, err := h.readPrompt(w, r)
	if err != nil || prompt == "" {
		logAndReturnError(w, r, msgPromptRequired, http.StatusBadRequest, nil)
		return http.StatusBadRequest
	}

	start := time.Now()
	text, err := h.Generator.Generate(r.Context(), h.Model, prompt)
	h.Metrics.ObserveGeneration(time.Since(start), err)
	if err != nil {
		logAndReturnError(w, r, msgGenerationFailed, http.StatusInternalServerError, err)
		return http.StatusInternalServerError
	}

	writeJSON(w, http.StatusOK, AnalysisResponse{Analysis: text})
	return http.StatusOK
}

// readPrompt decodes the prompt field. Malformed or oversized bodies yield an
// error, which the caller treats the same as a missing prompt.
func (h *HTTPHandler) readPrompt(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	body := http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	defer body.Close()

	var payload RequestPayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Prompt, nil
}
