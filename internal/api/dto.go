package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
)

// filterPayload is the wire form of a filter set. Colors arrive as a symbol
// array and become the active-color map internally.
type filterPayload struct {
	Term          string   `json:"term" validate:"max=200"`
	TypeFilter    string   `json:"type_filter" validate:"max=100"`
	Colors        []string `json:"colors" validate:"omitempty,dive,oneof=W U B R G"`
	SortKey       string   `json:"sort_key" validate:"omitempty,oneof=released name cmc usd"`
	SortDirection string   `json:"sort_direction" validate:"omitempty,oneof=auto asc desc"`
}

func (p filterPayload) toDomain() domain.FilterSet {
	colors := make(map[string]bool, len(p.Colors))
	for _, c := range p.Colors {
		colors[c] = true
	}
	return domain.FilterSet{
		Term:          p.Term,
		TypeFilter:    p.TypeFilter,
		Colors:        colors,
		SortKey:       domain.SortKey(p.SortKey),
		SortDirection: domain.SortDirection(p.SortDirection),
	}
}

// searchRequest is the request body for a catalog search.
type searchRequest struct {
	filterPayload
}

// createListRequest is the request body for saving a list from a search.
type createListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	filterPayload
}

// registerRequest is the request body for account registration.
type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// loginRequest is the request body for sign-in.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// profileRequest is the request body for updating the profile document.
type profileRequest struct {
	RecoveryEmail string `json:"recovery_email" validate:"omitempty,email,max=254"`
}

// sessionResponse describes the active identity.
type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	SubjectID     string `json:"subject_id,omitempty"`
}

// tokenResponse is returned from register and login.
type tokenResponse struct {
	SubjectID string `json:"subject_id"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// listCardsResponse is returned from the list-detail card fetch.
type listCardsResponse struct {
	Cards    []domain.Card `json:"cards"`
	Total    int           `json:"total"`
	Progress int           `json:"progress"`
	View     string        `json:"view"`
}

// decode unmarshals the request body into dst and validates it.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		return errors.Validation("invalid request body").WithCause(err)
	}
	return s.validator.Validate(dst)
}
