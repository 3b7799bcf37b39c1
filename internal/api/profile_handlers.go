package api

import (
	"net/http"

	"github.com/cardtrackapp/cardtrack-server/internal/http/response"
)

// handleGetProfile returns the owner's profile document.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Get(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, profile, s.logger)
}

// handleUpdateProfile merge-saves the recovery email.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decode(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	profile, err := s.profiles.SetRecoveryEmail(r.Context(), req.RecoveryEmail)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("profile updated", "subject_id", getSubjectID(r.Context()))
	response.Success(w, profile, s.logger)
}
