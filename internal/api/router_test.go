package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ipo-scorecard/internal/analyze"
	"github.com/wonny/ipo-scorecard/internal/api/handlers"
	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/internal/decision"
	"github.com/wonny/ipo-scorecard/pkg/logger"
	"github.com/wonny/ipo-scorecard/pkg/redis"
)

type fakeAnalyzer struct {
	err    error
	panics bool
	got    analyze.Upload
}

func (f *fakeAnalyzer) Run(_ context.Context, up analyze.Upload) (*contracts.Report, error) {
	if f.panics {
		panic("boom")
	}
	f.got = up
	if f.err != nil {
		return nil, f.err
	}
	return &contracts.Report{Slug: "acme", Components: []interface{}{}, Sources: []contracts.Source{}}, nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, redis.RateLimitConfig) (bool, int, error) { return false, 0, nil }

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, redis.RateLimitConfig) (bool, int, error) {
	return false, 0, errors.New("connection refused")
}

const testMaxBytes = 1 << 10

func newTestRouter(a handlers.Analyzer, limiter RateLimiter) http.Handler {
	log := logger.NewNop()
	engine := decision.NewDefaultEngine()
	evaluator := analyze.NewOrchestrator(nil, nil, nil, nil, nil, engine, nil, log)

	return NewRouter(RouterDeps{
		Analyze:     handlers.NewAnalyzeHandler(a, testMaxBytes, log),
		Score:       handlers.NewScoreHandler(evaluator, engine, "default", log),
		Limiter:     limiter,
		AnalyzeRate: 10,
		Logger:      log,
	})
}

func multipartBody(t *testing.T, filename string, content []byte, slug string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if slug != "" {
		require.NoError(t, mw.WriteField("slug", slug))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postAnalyze(t *testing.T, h http.Handler, filename string, content []byte, slug string) *httptest.ResponseRecorder {
	body, ctype := multipartBody(t, filename, content, slug)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_Echoed(t *testing.T) {
	h := newTestRouter(&fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestAnalyze_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		analyzer *fakeAnalyzer
		limiter  RateLimiter
		filename string
		content  []byte
		want     int
	}{
		{"ok", &fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"), "a.pdf", []byte("%PDF"), http.StatusOK},
		{"not pdf", &fakeAnalyzer{err: analyze.ErrNotPDF}, redis.NewRateLimiter(redis.Disabled(), "test"), "a.txt", []byte("x"), http.StatusBadRequest},
		{"empty", &fakeAnalyzer{err: analyze.ErrEmptyUpload}, redis.NewRateLimiter(redis.Disabled(), "test"), "a.pdf", nil, http.StatusBadRequest},
		{"missing file", &fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"), "", nil, http.StatusBadRequest},
		{"too large", &fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"), "a.pdf", bytes.Repeat([]byte("x"), testMaxBytes+1), http.StatusRequestEntityTooLarge},
		{"pipeline failure", &fakeAnalyzer{err: fmt.Errorf("extract statements: %w", errors.New("quota"))}, redis.NewRateLimiter(redis.Disabled(), "test"), "a.pdf", []byte("%PDF"), http.StatusInternalServerError},
		{"rate limited", &fakeAnalyzer{}, denyAll{}, "a.pdf", []byte("%PDF"), http.StatusTooManyRequests},
		{"limiter down fails open", &fakeAnalyzer{}, brokenLimiter{}, "a.pdf", []byte("%PDF"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(tt.analyzer, tt.limiter)
			rec := postAnalyze(t, h, tt.filename, tt.content, "")

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestAnalyze_PassesUploadThrough(t *testing.T) {
	a := &fakeAnalyzer{}
	h := newTestRouter(a, redis.NewRateLimiter(redis.Disabled(), "test"))

	rec := postAnalyze(t, h, "Acme DRHP.pdf", []byte("%PDF-1.7"), "acme")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Acme DRHP.pdf", a.got.Filename)
	assert.Equal(t, "acme", a.got.Slug)
	assert.Equal(t, []byte("%PDF-1.7"), a.got.Content)
}

func TestAnalyze_PanicRecovered(t *testing.T) {
	h := newTestRouter(&fakeAnalyzer{panics: true}, redis.NewRateLimiter(redis.Disabled(), "test"))

	rec := postAnalyze(t, h, "a.pdf", []byte("%PDF"), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestRouter(&fakeAnalyzer{}, denyAll{})

	for _, path := range []string{"/analyze", "/api/score", "/api/scoring/config"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestScore(t *testing.T) {
	h := newTestRouter(&fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"))

	body := `{"financials":[
		{"fy":"FY23","revenue":150,"ebitda":28,"pat":12,"net_worth":250,"debt":60,"cfo":14},
		{"fy":"FY21","revenue":100,"ebitda":15,"pat":5,"net_worth":200,"debt":50,"cfo":4},
		{"fy":"FY22","revenue":120,"ebitda":20,"pat":8,"net_worth":220,"debt":55,"cfo":9}
	]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var card contracts.Scorecard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, contracts.LabelApply, card.Verdict.Label)
	assert.Equal(t, 91.5, card.Verdict.Score)
	assert.Equal(t, 3, card.Metrics.WindowYears)
}

func TestScore_BadJSON(t *testing.T) {
	h := newTestRouter(&fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoringConfig(t *testing.T) {
	h := newTestRouter(&fakeAnalyzer{}, redis.NewRateLimiter(redis.Disabled(), "test"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scoring/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.ScoringConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	def := decision.DefaultConfig()
	want, err := decision.Hash(&def)
	require.NoError(t, err)
	assert.Equal(t, want, resp.Hash)
	assert.Equal(t, "default", resp.Source)
	assert.Equal(t, def.Thresholds, resp.Config.Thresholds)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientKey(req))
}
