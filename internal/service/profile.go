package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
	"github.com/cardtrackapp/cardtrack-server/internal/session"
)

// ProfileStore is the slice of the remote store that handles the owner's
// profile document.
type ProfileStore interface {
	GetProfile(ctx context.Context) (domain.Profile, error)
	SaveProfile(ctx context.Context, profile domain.Profile) error
}

// ProfileService manages the authenticated owner's profile document. The
// profile lives on the sync service only; anonymous sessions have none.
type ProfileService struct {
	coordinator *session.Coordinator
	logger      *slog.Logger
}

// NewProfileService creates a profile service.
func NewProfileService(coordinator *session.Coordinator, logger *slog.Logger) *ProfileService {
	return &ProfileService{coordinator: coordinator, logger: logger}
}

func (s *ProfileService) store() (ProfileStore, error) {
	store, ok := s.coordinator.ActiveStore().(ProfileStore)
	if !ok {
		return nil, errors.Unauthorized("sign in to manage your profile")
	}
	return store, nil
}

// Get returns the owner's profile. A profile that has never been saved comes
// back empty rather than as an error.
func (s *ProfileService) Get(ctx context.Context) (domain.Profile, error) {
	store, err := s.store()
	if err != nil {
		return domain.Profile{}, err
	}
	return store.GetProfile(ctx)
}

// SetRecoveryEmail merge-saves the recovery email on the profile document.
func (s *ProfileService) SetRecoveryEmail(ctx context.Context, email string) (domain.Profile, error) {
	store, err := s.store()
	if err != nil {
		return domain.Profile{}, err
	}

	profile := domain.Profile{
		RecoveryEmail: email,
		UpdatedAt:     time.Now(),
	}
	if err := store.SaveProfile(ctx, profile); err != nil {
		return domain.Profile{}, err
	}

	s.logger.Info("recovery email updated")
	return profile, nil
}
