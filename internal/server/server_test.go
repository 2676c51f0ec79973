package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/pipeline"
	"github.com/esachdev28/truth-weaver/internal/worker"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, scans JobQueue) (*pipeline.Pipeline, http.Handler) {
	t.Helper()
	p := pipeline.New(pipeline.Components{})
	return p, New(p, scans, model.DefaultConfig().Server, nil).Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func multipartVerify(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/verify", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"Truth Weaver System Online"}`, rec.Body.String())
}

func TestClaims_EmptyIsArray(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/claims", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestVerify_RoundTrip(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, multipartVerify(t, map[string]string{"text": "Chocolate cures colds"}, []byte("png-bytes")))
	require.Equal(t, http.StatusOK, rec.Code)

	var verified struct {
		Claim json.RawMessage     `json:"claim"`
		Score model.ScoreResponse `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verified))
	require.Equal(t, model.FallbackScore(), verified.Score)

	var claim model.Claim
	require.NoError(t, json.Unmarshal(verified.Claim, &claim))
	require.Equal(t, "Chocolate cures colds", claim.Text)
	require.Equal(t, model.StatusUnverified, claim.Status)
	require.Equal(t, "User Image", claim.Evidence[0].Source)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/claims", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, string(verified.Claim), string(listed[0]))
}

func TestVerify_URLEncoded(t *testing.T) {
	_, h := newTestServer(t, nil)

	form := url.Values{"text": {"Water is wet"}}
	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"text":"Water is wet"`)
}

func TestVerify_EmptySubmission(t *testing.T) {
	p, h := newTestServer(t, nil)
	rec := do(t, h, multipartVerify(t, map[string]string{"text": "   "}, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "one of text, link or image is required")
	require.Equal(t, 0, p.Registry().Len())
}

func TestVerify_UploadTooLarge(t *testing.T) {
	p := pipeline.New(pipeline.Components{})
	cfg := model.DefaultConfig().Server
	cfg.MaxUploadBytes = 512
	h := New(p, nil, cfg, nil).Handler()

	rec := do(t, h, multipartVerify(t, map[string]string{"text": "x"}, bytes.Repeat([]byte("a"), 4096)))
	require.GreaterOrEqual(t, rec.Code, 400)
	require.Equal(t, 0, p.Registry().Len())
}

func TestVerify_Concurrent(t *testing.T) {
	p, h := newTestServer(t, nil)
	const n = 12

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			form := url.Values{"text": {fmt.Sprintf("claim number %d", i)}}
			req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		require.Equal(t, http.StatusOK, code)
	}

	claims := p.Claims()
	require.Len(t, claims, n)
	ids := make(map[string]bool)
	texts := make(map[string]bool)
	for _, c := range claims {
		ids[c.ID] = true
		texts[c.Text] = true
	}
	require.Len(t, ids, n)
	require.Len(t, texts, n)
}

func TestScore(t *testing.T) {
	p, h := newTestServer(t, nil)

	body := `{"claim_text":"Sharks are mammals","evidence":[{"source":"Wiki","content":"Sharks are fish","url":""}]}`
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"final_score":0,"source_reliability":0,"evidence_strength":0,"consistency":0,"verdict":"UNVERIFIED"}`, rec.Body.String())
	require.Equal(t, 0, p.Registry().Len())
}

func TestScore_BadInput(t *testing.T) {
	_, h := newTestServer(t, nil)

	for name, body := range map[string]string{
		"not json":         `{`,
		"missing text":     `{"evidence":[]}`,
		"evidence no body": `{"claim_text":"x","evidence":[{"source":"s"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(body)))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestExplain(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/explain",
		strings.NewReader(`{"claim_text":"x","verdict":"false","lang":"es"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"explanation":"Explanation unavailable (No AI Key)."}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/explain",
		strings.NewReader(`{"claim_text":"x","verdict":"maybe"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrisis_EmptyRegistryUsesMockScan(t *testing.T) {
	p, h := newTestServer(t, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/crisis", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.CrisisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.CrisisDetected)
	require.Len(t, resp.Alerts, 1)
	require.Equal(t, []string{"earthquake", "breaking"}, resp.Alerts[0].Keywords)
	require.Equal(t, []string{"Monitor situation", "Verify sources"}, resp.RecommendedActions)
	require.Equal(t, 0, p.Registry().Len())
}

func TestScan_Background(t *testing.T) {
	done := make(chan worker.Result, 1)
	pool := worker.NewPool(1, worker.WithResultHandler(func(r worker.Result) { done <- r }))
	pool.Start()
	defer func() { require.NoError(t, pool.Shutdown(context.Background())) }()

	p, h := newTestServer(t, pool)

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/scan",
		strings.NewReader(`{"source_url":"https://twitter.com/trending"}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"message":"Scan initiated for https://twitter.com/trending"}`, rec.Body.String())

	select {
	case r := <-done:
		require.NoError(t, r.GetError())
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not complete")
	}

	claims := p.Claims()
	require.Len(t, claims, 1)
	require.Equal(t, model.SourceSocialMock, claims[0].Source)
	require.NotEmpty(t, claims[0].ID)
}

func TestScan_Unavailable(t *testing.T) {
	pool := worker.NewPool(1)
	pool.Start()
	require.NoError(t, pool.Shutdown(context.Background()))

	_, h := newTestServer(t, pool)
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"source_url":"x"}`)))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgents(t *testing.T) {
	_, h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader("text=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, do(t, h, req).Code)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report pipeline.AgentReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Agents, 4)
	require.NotEmpty(t, report.ActivityLogs)
}

func TestCORS(t *testing.T) {
	_, h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	rec := do(t, h, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
