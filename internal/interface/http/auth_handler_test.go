package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authDomain "utility-kpi/internal/domain/auth"
	authinfra "utility-kpi/internal/infrastructure/auth"
)

func TestAuthHandler_Login(t *testing.T) {
	server := newTestServer(t)

	login := func(email, password string) *httptest.ResponseRecorder {
		jsonBody, _ := json.Marshal(map[string]string{"email": email, "password": password})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		server.Handler().ServeHTTP(w, req)
		return w
	}

	t.Run("LoginSuccess", func(t *testing.T) {
		w := login("admin@example.com", "password123")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d. body: %s", w.Code, w.Body.String())
		}
		resp := decode(t, w)
		if resp["success"] != true || resp["access_token"] == "" || resp["token_type"] != "Bearer" {
			t.Errorf("unexpected login response %v", resp)
		}

		found := false
		for _, c := range w.Result().Cookies() {
			if c.Name == accessCookieName && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Error("expected access_token cookie")
		}

		token, _ := resp["access_token"].(string)
		if w := doRequest(server, "GET", "/api/filters", token); w.Code != http.StatusOK {
			t.Errorf("issued token should read reports, got %d", w.Code)
		}
	})

	t.Run("LoginFailure", func(t *testing.T) {
		w := login("admin@example.com", "wrong-password")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
		if resp := decode(t, w); resp["error_code"] != errCodeInvalidCredentials {
			t.Errorf("unexpected error code %v", resp["error_code"])
		}
	})

	t.Run("DisabledAccount", func(t *testing.T) {
		hash, err := authinfra.HashPassword("pw-disabled")
		if err != nil {
			t.Fatal(err)
		}
		id := server.Store().AddUser("former@example.com", hash, "Former", authDomain.RoleViewer)
		if err := server.Store().DisableUser(id); err != nil {
			t.Fatal(err)
		}
		w := login("former@example.com", "pw-disabled")
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for disabled account, got %d", w.Code)
		}
		if w := login("former@example.com", "wrong"); w.Code != http.StatusUnauthorized {
			t.Fatalf("wrong password should stay 401, got %d", w.Code)
		}
	})

	t.Run("InvalidBody", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		server.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})
}
