package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-gateway/internal/config"
	"github.com/sevigo/review-gateway/internal/core"
	"github.com/sevigo/review-gateway/internal/mocks"
	"github.com/sevigo/review-gateway/internal/review"
)

func newTestRouter(t *testing.T, p core.Provider) http.Handler {
	t.Helper()
	return newTimedRouter(t, p, 5*time.Second, review.RetryPolicy{MaxAttempts: 3, BaseDelay: 0})
}

func newTimedRouter(t *testing.T, p core.Provider, requestTimeout time.Duration, policy review.RetryPolicy) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "0",
			RequestTimeout: requestTimeout,
			MaxBodyBytes:   1 << 20,
		},
	}
	client := review.New(p, nil,
		review.WithPolicy(policy),
		review.WithLogger(logger),
	)
	return NewRouter(cfg, client, logger)
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestRouter(t, mocks.NewMockProvider(ctrl))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_GenerateSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Looks fine.", nil).Times(1)

	h := newTestRouter(t, p)
	rec := doJSON(t, h, http.MethodPost, "/ai/generate", `{"code": "function sum(a,b){return a+b;}"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"Looks fine."}`, rec.Body.String())
}

func TestRouter_GenerateValidationSkipsProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().Generate(gomock.Any(), gomock.Any()).Times(0)

	h := newTestRouter(t, p)

	for _, body := range []string{`{"code": ""}`, `{}`} {
		rec := doJSON(t, h, http.MethodPost, "/ai/generate", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Prompt is required"}`, rec.Body.String())
	}
}

func TestRouter_GenerateProviderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return("", errors.New("503 The model is overloaded. Please try again later.")).Times(3)

	h := newTestRouter(t, p)
	rec := doJSON(t, h, http.MethodPost, "/ai/generate", `{"code": "x"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate content","details":"503 The model is overloaded. Please try again later."}`, rec.Body.String())
}

func TestRouter_GenerateTimeoutKeepsProviderMessage(t *testing.T) {
	const overloaded = "The model is overloaded."
	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New(overloaded)).MinTimes(1).MaxTimes(2)

	h := newTimedRouter(t, p, 100*time.Millisecond, review.RetryPolicy{MaxAttempts: 3, BaseDelay: 80 * time.Millisecond})
	rec := doJSON(t, h, http.MethodPost, "/ai/generate", `{"code": "x"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate content","details":"The model is overloaded."}`, rec.Body.String())
}

func TestRouter_GenerateIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs []core.ProviderMessage) (string, error) {
			return "reviewed " + msgs[0].Content, nil
		}).Times(2)

	h := newTestRouter(t, p)
	first := doJSON(t, h, http.MethodPost, "/ai/generate", `{"code": "x := 1"}`)
	second := doJSON(t, h, http.MethodPost, "/ai/generate", `{"code": "x := 1"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestRouter(t, mocks.NewMockProvider(ctrl))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/ai/generate", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
