package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkozyrev/classauth/internal/common"
	"github.com/dkozyrev/classauth/internal/server/auth"
	"github.com/dkozyrev/classauth/internal/server/models"
)

// echoClaims reports whether claims made it through the middleware chain.
func echoClaims(t *testing.T, got **auth.Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticator(t *testing.T) {
	srv := newTestServer(&fakeSessions{})

	valid, err := srv.access.Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	expired, err := auth.NewCodec("test-access-key", -time.Minute).Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	foreign, err := auth.NewCodec("other-key", time.Hour).Issue("p1", "s12345", models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"no header", "", http.StatusUnauthorized, "missing token"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "missing token"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "missing token"},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized, "invalid token"},
		{"wrong key", "Bearer " + foreign, http.StatusUnauthorized, "invalid token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "token expired"},
		{"valid", "Bearer " + valid, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.Claims
			handler := srv.Authenticator(echoClaims(t, &got))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(common.AuthorizationHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("want %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body)
			}
			if tt.wantStatus == http.StatusNoContent {
				if got == nil || got.PrincipalID != "p1" || got.StudentID != "s12345" {
					t.Fatalf("claims not injected: %+v", got)
				}
			} else if got != nil {
				t.Fatal("claims must not be injected on rejection")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	srv := newTestServer(&fakeSessions{})

	staffToken, err := srv.access.Issue("p1", "s12345", models.RoleStaff)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	var got *auth.Claims
	protected := srv.Authenticator(RequireRole(models.RoleAdmin)(echoClaims(t, &got)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+staffToken)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff hitting an admin route: want 403, got %d", rec.Code)
	}

	adminToken, err := srv.access.Issue("p2", "s0", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin must pass: got %d (%s)", rec.Code, rec.Body)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	var got *auth.Claims
	handler := RequireRole(models.RoleAdmin)(echoClaims(t, &got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without claims, got %d", rec.Code)
	}
}
