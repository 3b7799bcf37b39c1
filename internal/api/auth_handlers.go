package api

import (
	"net/http"

	"github.com/cardtrackapp/cardtrack-server/internal/http/response"
)

// handleRegister creates a new account and signs it in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	identity, token, err := s.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, tokenResponse{
		SubjectID: identity.SubjectID,
		Token:     token,
		ExpiresIn: int64(s.authService.TokenDuration().Seconds()),
	}, s.logger)
}

// handleLogin verifies credentials and transitions the session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	identity, token, err := s.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tokenResponse{
		SubjectID: identity.SubjectID,
		Token:     token,
		ExpiresIn: int64(s.authService.TokenDuration().Seconds()),
	}, s.logger)
}

// handleLogout returns the session to anonymous.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.authService.SignOut()
	response.NoContent(w)
}

// handleGetSession reports the identity currently in effect.
func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	identity := s.coordinator.Identity()
	response.Success(w, sessionResponse{
		Authenticated: identity.IsAuthenticated,
		SubjectID:     identity.SubjectID,
	}, s.logger)
}
