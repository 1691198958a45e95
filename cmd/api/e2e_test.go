package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"utility-kpi/internal/infrastructure/config"
	httpapi "utility-kpi/internal/interface/http"
)

const (
	errUnauthorized = "AUTH_UNAUTHORIZED"
	errForbidden    = "AUTH_FORBIDDEN"
	errInvalidCreds = "AUTH_INVALID_CREDENTIALS"
	errNotFound     = "NOT_FOUND"
)

func newTestServer(t *testing.T) *httptest.Server {
	cfg := config.Config{Auth: config.AuthConfig{Secret: "test-secret"}, Cache: config.CacheConfig{Enabled: true}}
	srv := httpapi.NewServer(cfg, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

// TestReportingE2EFlow 覆蓋登入、篩選選項、KPI 查詢、匯出與重新載入。
func TestReportingE2EFlow(t *testing.T) {
	ts := newTestServer(t)

	viewer := login(t, ts, "viewer@example.com", "password123")
	filters := getJSON(t, ts, "/api/filters", viewer, http.StatusOK)
	var opts struct {
		Filters struct {
			Years []int    `json:"years"`
			Zones []string `json:"zones"`
		} `json:"filters"`
	}
	decode(t, filters.RawBody, &opts)
	if len(opts.Filters.Years) == 0 || opts.Filters.Zones[0] != "All" {
		t.Fatalf("unexpected filter options %+v", opts.Filters)
	}

	year := opts.Filters.Years[0]
	zone := opts.Filters.Zones[1]
	summary := getJSON(t, ts, "/api/kpi/summary?month=3&zone="+strings.ReplaceAll(zone, " ", "%20")+"&year="+itoa(year), viewer, http.StatusOK)
	var body struct {
		Summary struct {
			Filter struct {
				Zone string `json:"zone"`
			} `json:"filter"`
			KPI struct {
				Clients struct {
					Total int `json:"total"`
				} `json:"clients"`
			} `json:"kpi"`
		} `json:"summary"`
	}
	decode(t, summary.RawBody, &body)
	if body.Summary.Filter.Zone != zone || body.Summary.KPI.Clients.Total == 0 {
		t.Fatalf("unexpected summary %+v", body.Summary)
	}

	getJSON(t, ts, "/api/reports/sites?month=3&year="+itoa(year), viewer, http.StatusOK)

	analyst := login(t, ts, "analyst@example.com", "password123")
	export := getJSON(t, ts, "/api/export/csv?month=3&year="+itoa(year), analyst, http.StatusOK)
	if !bytes.HasPrefix(export.RawBody, []byte("year,month,zone")) {
		t.Fatalf("expected csv export")
	}
	empty := getJSON(t, ts, "/api/export/csv?month=3&year=1990", analyst, http.StatusNotFound)
	if empty.ErrorCode != errNotFound || empty.Error != "No data to export." {
		t.Fatalf("unexpected empty export response %+v", empty.apiError)
	}

	admin := login(t, ts, "admin@example.com", "password123")
	reload := postJSON(t, ts, "/api/admin/ingestion/reload", admin, nil, http.StatusOK)
	requireSuccess(t, reload)

	res := getJSON(t, ts, "/api/health", "", http.StatusOK)
	if !res.Success {
		t.Fatalf("health should be success")
	}
}

// TestAuthErrors 檢查未帶 token、錯誤密碼、權限不足的行為。
func TestAuthErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/api/kpi/summary", "", http.StatusUnauthorized)
	if resp.ErrorCode != errUnauthorized {
		t.Fatalf("expected error_code=%s got=%s", errUnauthorized, resp.ErrorCode)
	}

	fail := postJSON(t, ts, "/api/auth/login", "", map[string]string{
		"email":    "viewer@example.com",
		"password": "wrong",
	}, http.StatusUnauthorized)
	if fail.ErrorCode != errInvalidCreds {
		t.Fatalf("expected error_code=%s got=%s", errInvalidCreds, fail.ErrorCode)
	}

	viewer := login(t, ts, "viewer@example.com", "password123")
	forbidden := postJSON(t, ts, "/api/admin/ingestion/reload", viewer, nil, http.StatusForbidden)
	if forbidden.ErrorCode != errForbidden {
		t.Fatalf("expected forbidden for viewer")
	}
	forbidden = getJSON(t, ts, "/api/export/csv", viewer, http.StatusForbidden)
	if forbidden.ErrorCode != errForbidden {
		t.Fatalf("viewer should not export")
	}
}

// --- helpers ---

type apiError struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

type apiResponse struct {
	apiError
	Status  int
	RawBody []byte
}

func login(t *testing.T, ts *httptest.Server, email, password string) string {
	resp := postJSON(t, ts, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK)

	var body struct {
		Success     bool   `json:"success"`
		AccessToken string `json:"access_token"`
	}
	decode(t, resp.RawBody, &body)
	if !body.Success || body.AccessToken == "" {
		t.Fatalf("login failed for %s", email)
	}
	return body.AccessToken
}

func postJSON(t *testing.T, ts *httptest.Server, path, token string, payload interface{}, expect int) apiResponse {
	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(t, req, token, expect)
}

func getJSON(t *testing.T, ts *httptest.Server, path, token string, expect int) apiResponse {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return do(t, req, token, expect)
}

func do(t *testing.T, req *http.Request, token string, expect int) apiResponse {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body apiError
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	if res.StatusCode != expect {
		t.Fatalf("%s %s expected %d got %d (code=%s err=%s)", req.Method, req.URL.Path, expect, res.StatusCode, body.ErrorCode, body.Error)
	}
	return apiResponse{apiError: body, Status: res.StatusCode, RawBody: raw}
}

func decode(t *testing.T, raw []byte, out interface{}) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func requireSuccess(t *testing.T, resp apiResponse) {
	if !resp.Success {
		t.Fatalf("expected success but got error_code=%s err=%s", resp.ErrorCode, resp.Error)
	}
}

func itoa(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}
