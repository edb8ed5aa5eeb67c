package summary_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpH "disclosure-feed/internal/handler/http"
	"disclosure-feed/internal/handler/http/summary"
	"disclosure-feed/internal/infra/pdftext"
	"disclosure-feed/internal/infra/pdftext/pdftest"
	"disclosure-feed/internal/infra/summarizer"
	summaryUC "disclosure-feed/internal/usecase/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	out    string
	err    error
	titles []string
}

func (f *fakeAI) Summarize(_ context.Context, title, _ string) (string, error) {
	f.titles = append(f.titles, title)
	return f.out, f.err
}

func (f *fakeAI) Engine() string { return "Fake (test)" }

// pdfServer serves a generated PDF under /inbs/ and 404 elsewhere.
func pdfServer(t *testing.T) *httptest.Server {
	t.Helper()
	doc := pdftest.Build(
		"Summary of consolidated financial results for the fiscal year",
		"Net sales increased 12.3 percent compared with the previous fiscal year",
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/inbs/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHandler(ai summaryUC.Summarizer) http.Handler {
	fb := summarizer.NewFallback()
	fb.Location = time.UTC
	svc := summaryUC.NewService(
		pdftext.NewDownloader(pdftext.Config{Timeout: 5 * time.Second}),
		pdftext.Extractor{},
		ai,
		fb,
	)
	mux := http.NewServeMux()
	summary.Register(mux, svc, time.Minute, nil)
	return mux
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/summary", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandler_FallbackWithoutAI(t *testing.T) {
	srv := pdfServer(t)

	rr := post(t, newHandler(nil), `{"pdfUrl":"`+srv.URL+`/inbs/140120250611512345.pdf","title":"Annual results"}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "fallback", body["method"])
	assert.Greater(t, body["textLength"], float64(0))
	s := body["summary"].(string)
	assert.True(t, strings.HasPrefix(s, "【Annual results】\n\n"), s)
	assert.Contains(t, s, "■ 文書情報:")
	assert.True(t, strings.HasSuffix(s, "※ より詳細な分析のため、AI API キーを設定してください。"), s)
}

func TestHandler_AISummary(t *testing.T) {
	srv := pdfServer(t)
	ai := &fakeAI{out: "売上高は前年比12.3%増加。"}

	rr := post(t, newHandler(ai), `{"pdfUrl":"`+srv.URL+`/inbs/1.pdf","title":"決算短信"}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, "ai", body["method"])
	s := body["summary"].(string)
	assert.True(t, strings.HasPrefix(s, "売上高は前年比12.3%増加。\n\n──────────────────\n■ 分析情報\n"), s)
	assert.Contains(t, s, "- 分析エンジン: Fake (test)")
	assert.Equal(t, []string{"決算短信"}, ai.titles)
}

func TestHandler_AIFailureFallsBack(t *testing.T) {
	srv := pdfServer(t)

	rr := post(t, newHandler(&fakeAI{err: errors.New("openai api error: 429")}), `{"pdfUrl":"`+srv.URL+`/inbs/1.pdf","title":"t"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "fallback", body["method"])
	assert.True(t, strings.HasSuffix(body["summary"].(string), "※ AI分析に失敗したため、基本的な要約を表示しています。"))
}

func TestHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty body", body: "", want: "PDF URL is required"},
		{name: "invalid json", body: "{", want: "PDF URL is required"},
		{name: "missing pdfUrl", body: `{"title":"t"}`, want: "PDF URL is required"},
		{name: "empty pdfUrl", body: `{"pdfUrl":""}`, want: "PDF URL is required"},
		{name: "relative pdfUrl", body: `{"pdfUrl":"/inbs/1.pdf"}`, want: "PDF URL must be an absolute http or https URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeAI{}
			rr := post(t, newHandler(ai), tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rr.Body.String())
			assert.Empty(t, ai.titles)
		})
	}
}

func TestHandler_DownloadFailure(t *testing.T) {
	srv := pdfServer(t)

	rr := post(t, newHandler(nil), `{"pdfUrl":"`+srv.URL+`/missing.pdf","title":"t"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"PDFのダウンロードに失敗しました。URLが正しいか確認してください。"}`, rr.Body.String())
}

func TestHandler_UnreadablePDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	rr := post(t, newHandler(nil), `{"pdfUrl":"`+srv.URL+`/inbs/1.pdf"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"サマリーの生成に失敗しました。"}`, rr.Body.String())
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rr := httptest.NewRecorder()
	newHandler(nil).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "POST, OPTIONS", rr.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Only POST method is allowed"}`, rr.Body.String())
}

func TestHandler_BodyTooLarge(t *testing.T) {
	h := httpH.Chain(newHandler(nil), httpH.LimitRequestBody(16))

	rr := post(t, h, `{"pdfUrl":"https://www.release.tdnet.info/inbs/1.pdf"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
