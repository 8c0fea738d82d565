package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dkozyrev/classauth/internal/common"
	"github.com/dkozyrev/classauth/internal/server/models"
)

const maxBodySize = 1 << 16

type loginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

type loginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         models.Summary `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}

// refreshTokenFromRequest prefers the httpOnly cookie and falls back to the
// JSON body for clients that do not hold cookies.
func refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	var req refreshRequest
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   int(s.refreshTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[loginRequest](w, r)
	if !ok {
		return
	}
	if req.StudentID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	result, err := s.sessions.Login(r.Context(), req.StudentID, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid student id or password")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.setRefreshCookie(w, result.RefreshToken)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.Principal,
	})
}

// Refresh handles POST /api/auth/refresh. An expired refresh token is
// reported distinctly so clients can force a re-login instead of retrying.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := refreshTokenFromRequest(r)

	pair, err := s.sessions.Refresh(r.Context(), presented)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingToken):
			writeError(w, http.StatusUnauthorized, "no refresh token found")
		case errors.Is(err, common.ErrRefreshTokenExpired):
			writeError(w, http.StatusUnauthorized, "refresh token expired")
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrInvalidOrExpiredToken):
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
		default:
			s.logger.Error(r.Context(), "refresh failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles POST /api/auth/logout. It succeeds with no token, an
// unparseable token, or nothing left to revoke.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	presented := refreshTokenFromRequest(r)

	if err := s.sessions.Logout(r.Context(), presented); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "logout successful"})
}

// Me handles GET /api/auth/me and echoes the verified access-token claims.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, models.Summary{
		ID:        claims.PrincipalID,
		StudentID: claims.StudentID,
		Role:      claims.Role,
	})
}

// Ping handles GET /api/ping.
func (s *Server) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "OK"})
}
