package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-blog-server/auth"
	"github.com/jrsteele09/go-blog-server/users"
)

// RegisterHandler creates a new password account. 201 on success, 400 on
// conflict or weak password.
func (s *Server) RegisterHandler() http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" || req.Username == "" || req.Email == "" {
			writeError(w, http.StatusBadRequest, "name, username and email are required")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		_, err := s.auth.Register(r.Context(), auth.RegisterParams{
			Name:     req.Name,
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		switch {
		case errors.Is(err, auth.DuplicateEmailErr), errors.Is(err, auth.DuplicateUsernameErr):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			s.log.Error().Err(err).Msg("register failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
		}
	}
}

// LoginHandler exchanges credentials for a token pair. 200 or 401.
func (s *Server) LoginHandler() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, auth.InvalidCredentialsErr), auth.IsAccountLocked(err):
			writeError(w, http.StatusUnauthorized, err.Error())
		case err != nil:
			s.log.Error().Err(err).Msg("login failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			writeJSON(w, http.StatusOK, pair)
		}
	}
}

// RefreshHandler rotates a refresh token. 200 or 401.
func (s *Server) RefreshHandler() http.HandlerFunc {
	type request struct {
		RefreshToken string `json:"refreshToken"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "refreshToken is required")
			return
		}

		pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		switch {
		case errors.Is(err, auth.InvalidRefreshTokenErr):
			writeError(w, http.StatusUnauthorized, err.Error())
		case err != nil:
			s.log.Error().Err(err).Msg("refresh failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			writeJSON(w, http.StatusOK, pair)
		}
	}
}

// LogoutHandler deletes the caller's stored refresh token. Requires a valid
// bearer token; idempotent.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(r.Context(), authenticatedUserID(r.Context())); err != nil {
			s.log.Error().Err(err).Msg("logout failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
	}
}

/// ValidateCredentialsHandler backs the interactive login-strategy hook: it
// checks a credential pair without issuing tokens and without counting
// failures toward the lockout threshold.
func (s *Server) ValidateCredentialsHandler() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := s.auth.ValidateCredentials(r.Context(), req.Email, req.Password)
		if err != nil {
			s.log.Error().Err(err).Msg("credential validation failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
