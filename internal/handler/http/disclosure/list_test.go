package disclosure_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"disclosure-feed/internal/domain/entity"
	httpH "disclosure-feed/internal/handler/http"
	"disclosure-feed/internal/handler/http/disclosure"
	"disclosure-feed/internal/handler/http/middleware"
	"disclosure-feed/internal/infra/scraper"
	discUC "disclosure-feed/internal/usecase/disclosure"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	records []entity.Disclosure
	err     error
	gotDate string
	calls   int
}

func (s *stubLister) ExtractAll(_ context.Context, date string) ([]entity.Disclosure, error) {
	s.calls++
	s.gotDate = date
	return s.records, s.err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/tdnet", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListHandler_Success(t *testing.T) {
	svc := &stubLister{records: []entity.Disclosure{
		{Time: "15:00", Code: "13010", CompanyName: "極洋", Title: "決算短信", DocumentURL: "https://www.release.tdnet.info/inbs/1.pdf", Exchange: "東"},
	}}

	rr := post(t, disclosure.ListHandler{Svc: svc}, `{"date":"20250611"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "20250611", svc.gotDate)

	var body disclosure.ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "20250611", body.Date)
	if diff := cmp.Diff(svc.records, body.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestListHandler_EmptyResultRendersArray(t *testing.T) {
	rr := post(t, disclosure.ListHandler{Svc: &stubLister{}}, `{"date":"20250611"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0,"date":"20250611"}`, rr.Body.String())
}

func TestListHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty body", body: "", want: `{"error":"Date is required in request body"}`},
		{name: "invalid json", body: `{"date":`, want: `{"error":"Date is required in request body"}`},
		{name: "missing date", body: `{"day":"20250611"}`, want: `{"error":"Date is required in request body"}`},
		{name: "null date", body: `{"date":null}`, want: `{"error":"Date is required in request body"}`},
		{name: "empty date", body: `{"date":""}`, want: `{"error":"Date is required in request body"}`},
		{name: "hyphenated date", body: `{"date":"2025-06-11"}`, want: `{"error":"Date must be in YYYYMMDD format"}`},
		{name: "short date", body: `{"date":"2025611"}`, want: `{"error":"Date must be in YYYYMMDD format"}`},
		{name: "numeric date", body: `{"date":20250611}`, want: `{"error":"Date must be in YYYYMMDD format"}`},
		{name: "letters", body: `{"date":"2025061a"}`, want: `{"error":"Date must be in YYYYMMDD format"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubLister{}
			rr := post(t, disclosure.ListHandler{Svc: svc}, tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, tt.want, rr.Body.String())
			assert.Zero(t, svc.calls, "extraction must not run for invalid input")
		})
	}
}

func TestListHandler_MethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rr := httptest.NewRecorder()
			disclosure.ListHandler{Svc: &stubLister{}}.ServeHTTP(rr, httptest.NewRequest(method, "/api/tdnet", nil))

			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			assert.JSONEq(t, `{"error":"Only POST method is allowed"}`, rr.Body.String())
			assert.Equal(t, "POST, OPTIONS", rr.Header().Get("Allow"))
		})
	}
}

func TestListHandler_InternalFailure(t *testing.T) {
	svc := &stubLister{err: fmt.Errorf("extract disclosures: %w", context.DeadlineExceeded)}

	rr := post(t, disclosure.ListHandler{Svc: svc}, `{"date":"20250611"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"Internal server error","message":"extract disclosures: context deadline exceeded"}`,
		rr.Body.String())
}

func TestListHandler_ServiceRejectsDate(t *testing.T) {
	svc := &stubLister{err: fmt.Errorf("extract disclosures: %w", &entity.ValidationError{Field: "date", Message: "bad"})}

	rr := post(t, disclosure.ListHandler{Svc: svc}, `{"date":"20250611"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// deadlineLister reports whether the handler attached a deadline.
type deadlineLister struct{ hadDeadline bool }

func (d *deadlineLister) ExtractAll(ctx context.Context, _ string) ([]entity.Disclosure, error) {
	_, d.hadDeadline = ctx.Deadline()
	return nil, nil
}

func TestListHandler_Timeout(t *testing.T) {
	svc := &deadlineLister{}
	post(t, disclosure.ListHandler{Svc: svc, Timeout: time.Minute}, `{"date":"20250611"}`)
	assert.True(t, svc.hadDeadline)

	svc = &deadlineLister{}
	post(t, disclosure.ListHandler{Svc: svc}, `{"date":"20250611"}`)
	assert.False(t, svc.hadDeadline)
}

func TestListHandler_BodyTooLarge(t *testing.T) {
	h := httpH.LimitRequestBody(16)(disclosure.ListHandler{Svc: &stubLister{}})

	rr := post(t, h, `{"date":"20250611","padding":"xxxxxxxxxxxxxxxxxxxxxxxx"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestRegister_Routes(t *testing.T) {
	svc := &stubLister{}
	mux := http.NewServeMux()
	disclosure.Register(mux, svc, 0, nil)

	for _, path := range []string{"/api/tdnet", "/api/disclosures"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"date":"20250611"}`))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
	assert.Equal(t, 2, svc.calls)
}

// End to end: CORS + handler + service + fetcher + extractor against a fake listing.
func TestEndToEnd_OneRowThenNotFound(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/inbs/I_list_001_20250611.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><table id="main-list-table">
<tr><td class="kjTime">15:00</td><td class="kjCode">13010</td><td class="kjName">極洋</td>
<td class="kjTitle"><a href="140120250611512345.pdf">2025年3月期 決算短信</a></td>
<td class="kjXbrl"></td><td class="kjPlace">東</td><td class="kjHistroy">東証</td></tr>
</table></body></html>`))
	}))
	defer upstream.Close()

	cfg := scraper.DefaultConfig()
	cfg.BaseURL = upstream.URL
	cfg.Timeout = 5 * time.Second
	extractor, err := scraper.NewTableExtractor(cfg.BaseURL)
	require.NoError(t, err)
	svc := discUC.NewService(scraper.NewListFetcher(cfg), extractor, cfg.MaxPages)

	mux := http.NewServeMux()
	disclosure.Register(mux, svc, time.Minute, nil)
	server := httptest.NewServer(middleware.CORS(middleware.DefaultCORSConfig())(mux))
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/tdnet", "application/json", strings.NewReader(`{"date":"20250611"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body disclosure.ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	want := disclosure.ListResponse{
		Success: true,
		Count:   1,
		Date:    "20250611",
		Data: []entity.Disclosure{{
			Time:        "15:00",
			Code:        "13010",
			CompanyName: "極洋",
			Title:       "2025年3月期 決算短信",
			DocumentURL: upstream.URL + "/inbs/140120250611512345.pdf",
			Place:       "東",
			Exchange:    "東証",
		}},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "page 1 then the 404 on page 2")
}

func TestEndToEnd_PreflightNeverReachesHandler(t *testing.T) {
	svc := &stubLister{}
	mux := http.NewServeMux()
	disclosure.Register(mux, svc, 0, nil)
	h := middleware.CORS(middleware.DefaultCORSConfig())(mux)

	req := httptest.NewRequest(http.MethodOptions, "/api/tdnet", nil)
	req.Header.Set("Origin", "https://viewer.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, svc.calls)
}
