package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/StarsInDmajor/literm/internal/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, badRequest("malformed login payload"))
		return
	}

	log.Debug().Int("password_len", len(req.Password)).Msg("login attempt")

	if err := auth.VerifyPassword(s.state.Config.Auth.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			writeError(w, r, unauthorized("invalid password"))
			return
		}
		writeError(w, r, internalError("invalid password hash", err))
		return
	}

	id, err := s.state.Sessions.Create()
	if err != nil {
		writeError(w, r, internalError("failed to create session", err))
		return
	}

	ttlSeconds := int(s.state.Config.SessionTTL().Seconds())
	setSessionCookie(w, id, ttlSeconds)

	writeJSON(w, http.StatusOK, loginResponse{OK: true})
}

type logoutResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id, ok := readSessionCookie(r); ok {
		s.state.Sessions.Remove(id)
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, logoutResponse{OK: true})
}

type authStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if id, ok := readSessionCookie(r); ok {
		authenticated = s.state.Sessions.Validate(id)
	}
	writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: authenticated})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
