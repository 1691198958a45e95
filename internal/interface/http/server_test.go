package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"utility-kpi/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{}
	cfg.Auth.Secret = "test-secret"
	cfg.Cache.Enabled = true
	server := NewServer(cfg, nil)
	t.Cleanup(server.Close)
	return server
}

func tokenFor(t *testing.T, server *Server, email string) string {
	t.Helper()
	user, err := server.authRepo.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	tok, err := server.tokenSvc.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok.AccessToken
}

func doRequest(server *Server, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestServer_InitialLoad(t *testing.T) {
	server := newTestServer(t)
	snap, err := server.Store().Current(context.Background())
	if err != nil {
		t.Fatalf("expected snapshot after NewServer: %v", err)
	}
	if snap.Size() == 0 || snap.Source != "synthetic" {
		t.Fatalf("unexpected snapshot %s size=%d", snap.Source, snap.Size())
	}
}

func TestServer_Metrics(t *testing.T) {
	server := newTestServer(t)
	token := tokenFor(t, server, "viewer@example.com")
	if w := doRequest(server, "GET", "/api/kpi/summary", token); w.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", w.Code, w.Body.String())
	}

	w := doRequest(server, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "utility_kpi_snapshot_records") || !strings.Contains(body, `report="summary"`) {
		t.Fatalf("expected kpi metrics in output")
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	server := newTestServer(t)
	w := doRequest(server, "OPTIONS", "/api/kpi/summary", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
