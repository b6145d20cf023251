package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-gateway/internal/core"
)

type stubReviewer struct {
	text    string
	err     error
	calls   int
	lastSrc string
}

func (s *stubReviewer) Review(_ context.Context, src string) (string, error) {
	s.calls++
	s.lastSrc = src
	return s.text, s.err
}

func newTestHandler(r core.Reviewer, maxBody int64) *ReviewHandler {
	return NewReviewHandler(r, maxBody, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReviewHandler_Generate(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		reviewer   *stubReviewer
		wantStatus int
		wantBody   string
		wantCalls  int
		wantSource string
	}{
		{
			name:       "POST code",
			method:     http.MethodPost,
			target:     "/ai/generate",
			body:       `{"code": "function sum(a,b){return a+b;}"}`,
			reviewer:   &stubReviewer{text: "Looks fine."},
			wantStatus: http.StatusOK,
			wantBody:   `{"response":"Looks fine."}`,
			wantCalls:  1,
			wantSource: "function sum(a,b){return a+b;}",
		},
		{
			name:       "POST prompt variant",
			method:     http.MethodPost,
			target:     "/ai/generate",
			body:       `{"prompt": "x := 1"}`,
			reviewer:   &stubReviewer{text: "ok"},
			wantStatus: http.StatusOK,
			wantBody:   `{"response":"ok"}`,
			wantCalls:  1,
			wantSource: "x := 1",
		},
		{
			name:       "GET query",
			method:     http.MethodGet,
			target:     "/ai/generate?prompt=x%3A%3D1",
			reviewer:   &stubReviewer{text: "ok"},
			wantStatus: http.StatusOK,
			wantBody:   `{"response":"ok"}`,
			wantCalls:  1,
			wantSource: "x:=1",
		},
		{
			name:       "query wins over body",
			method:     http.MethodPost,
			target:     "/ai/generate?prompt=from-query",
			body:       `{"code": "from-body"}`,
			reviewer:   &stubReviewer{text: "ok"},
			wantStatus: http.StatusOK,
			wantBody:   `{"response":"ok"}`,
			wantCalls:  1,
			wantSource: "from-query",
		},
		{
			name:       "empty code",
			method:     http.MethodPost,
			target:     "/ai/generate",
			body:       `{"code": ""}`,
			reviewer:   &stubReviewer{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Prompt is required"}`,
		},
		{
			name:       "missing code",
			method:     http.MethodPost,
			target:     "/ai/generate",
			body:       `{}`,
			reviewer:   &stubReviewer{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Prompt is required"}`,
		},
		{
			name:       "empty body",
			method:     http.MethodPost,
			target:     "/ai/generate",
			reviewer:   &stubReviewer{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Prompt is required"}`,
		},
		{
			name:       "GET without prompt",
			method:     http.MethodGet,
			target:     "/ai/generate",
			reviewer:   &stubReviewer{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Prompt is required"}`,
		},
		{
			name:       "malformed JSON",
			method:     http.MethodPost,
			target:     "/ai/generate",
			body:       `{"code":`,
			reviewer:   &stubReviewer{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:       "provider failure",
			method:     http.MethodPost,
			target:     "/ai/generate",
			body:       `{"code": "x"}`,
			reviewer:   &stubReviewer{err: &core.ProviderError{Attempts: 1, Err: errors.New("API key not valid")}},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to generate content","details":"API key not valid"}`,
			wantCalls:  1,
			wantSource: "x",
		},
		{
			name:       "internal failure hides details",
			method:     http.MethodPost,
			target:     "/ai/generate",
			body:       `{"code": "x"}`,
			reviewer:   &stubReviewer{err: errors.New("template exploded")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
			wantCalls:  1,
			wantSource: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.reviewer, 1<<20)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			rec := httptest.NewRecorder()

			h.Generate(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get(ReviewIDHeader))
			assert.Equal(t, tt.wantCalls, tt.reviewer.calls)
			if tt.wantCalls > 0 {
				assert.Equal(t, tt.wantSource, tt.reviewer.lastSrc)
			}
		})
	}
}

func TestReviewHandler_BodyTooLarge(t *testing.T) {
	r := &stubReviewer{text: "ok"}
	h := newTestHandler(r, 16)

	req := httptest.NewRequest(http.MethodPost, "/ai/generate", strings.NewReader(`{"code": "`+strings.Repeat("a", 64)+`"}`))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, rec.Body.String())
	assert.Zero(t, r.calls)
}

func TestReviewHandler_UniqueReviewIDs(t *testing.T) {
	h := newTestHandler(&stubReviewer{text: "ok"}, 0)

	ids := make(map[string]struct{})
	for range 3 {
		rec := httptest.NewRecorder()
		h.Generate(rec, httptest.NewRequest(http.MethodGet, "/ai/generate?prompt=x", nil))
		ids[rec.Header().Get(ReviewIDHeader)] = struct{}{}
	}
	assert.Len(t, ids, 3)
}
