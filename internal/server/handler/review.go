// Package handler provides HTTP handlers for the review gateway.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/sevigo/review-gateway/internal/core"
)

const (
	// ReviewIDHeader carries the id assigned to every review request.
	ReviewIDHeader = "X-Review-Id"

	msgPromptRequired   = "Prompt is required"
	msgInvalidBody      = "Invalid request body"
	msgBodyTooLarge     = "Request body too large"
	msgGenerationFailed = "Failed to generate content"
	msgInternal         = "Internal server error"
)

// generateRequest accepts both payload variants: {"code": ...} and {"prompt": ...}.
type generateRequest struct {
	Code   string `json:"code"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ReviewHandler adapts HTTP requests to a core.Reviewer.
type ReviewHandler struct {
	reviewer     core.Reviewer
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewReviewHandler creates a handler. maxBodyBytes <= 0 disables the body limit.
func NewReviewHandler(reviewer core.Reviewer, maxBodyBytes int64, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewer:     reviewer,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Generate serves GET and POST /ai/generate.
func (h *ReviewHandler) Generate(w http.ResponseWriter, r *http.Request) {
	reviewID := ulid.Make().String()
	w.Header().Set(ReviewIDHeader, reviewID)
	logger := h.logger.With("review_id", reviewID)

	req, status, err := h.decode(w, r)
	if err != nil {
		logger.Debug("rejecting review request", "status", status, "reason", err.Error())
		writeJSON(w, logger, status, errorResponse{Error: err.Error()})
		return
	}

	text, err := h.reviewer.Review(r.Context(), req.SourceText)
	result := core.ReviewResult{Text: text, Err: err}
	h.respond(w, logger, result)
}

// decode extracts the source text. The query parameter wins over the body.
func (h *ReviewHandler) decode(w http.ResponseWriter, r *http.Request) (core.ReviewRequest, int, error) {
	if prompt := r.URL.Query().Get("prompt"); prompt != "" {
		return core.ReviewRequest{SourceText: prompt}, http.StatusOK, nil
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return core.ReviewRequest{}, http.StatusBadRequest, errors.New(msgPromptRequired)
	}

	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var payload generateRequest
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.ReviewRequest{}, http.StatusBadRequest, errors.New(msgPromptRequired)
		case errors.As(err, &tooLarge):
			return core.ReviewRequest{}, http.StatusRequestEntityTooLarge, errors.New(msgBodyTooLarge)
		default:
			return core.ReviewRequest{}, http.StatusBadRequest, errors.New(msgInvalidBody)
		}
	}

	source := payload.Code
	if source == "" {
		source = payload.Prompt
	}
	if source == "" {
		return core.ReviewRequest{}, http.StatusBadRequest, errors.New(msgPromptRequired)
	}
	return core.ReviewRequest{SourceText: source}, http.StatusOK, nil
}

func (h *ReviewHandler) respond(w http.ResponseWriter, logger *slog.Logger, result core.ReviewResult) {
	switch {
	case result.OK():
		logger.Info("review generated", "bytes", len(result.Text))
		writeJSON(w, logger, http.StatusOK, generateResponse{Response: result.Text})
	case errors.Is(result.Err, core.ErrEmptyPrompt):
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
	case core.IsProviderError(result.Err):
		logger.Error("error generating content", "error", result.Err)
		writeJSON(w, logger, http.StatusInternalServerError, errorResponse{
			Error:   msgGenerationFailed,
			Details: result.Err.Error(),
		})
	default:
		logger.Error("internal error while generating content", "error", result.Err)
		writeJSON(w, logger, http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		logger.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + msgInternal + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
