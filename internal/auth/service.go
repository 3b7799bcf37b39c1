package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
	"github.com/cardtrackapp/cardtrack-server/internal/id"
)

// IdentityListener is notified whenever the active identity changes. The
// token is empty for the anonymous identity.
type IdentityListener func(identity domain.Identity, token string)

// Service is the identity provider. It owns the single active session:
// anonymous until a successful sign-in, anonymous again after sign-out.
type Service struct {
	accounts *AccountStore
	tokens   *TokenService
	logger   *slog.Logger

	mu        sync.RWMutex
	identity  domain.Identity
	token     string
	listeners map[string]IdentityListener
}

// NewService creates the identity provider. The initial identity is anonymous.
func NewService(accounts *AccountStore, tokens *TokenService, logger *slog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		tokens:    tokens,
		logger:    logger,
		identity:  domain.Anonymous,
		listeners: make(map[string]IdentityListener),
	}
}

// Register creates a new account and signs it in.
func (s *Service) Register(ctx context.Context, email, password string) (domain.Identity, string, error) {
	if err := ctx.Err(); err != nil {
		return domain.Anonymous, "", err
	}

	if _, err := s.accounts.Get(email); err == nil {
		return domain.Anonymous, "", errors.DuplicateID("email already registered")
	} else if !errors.Is(err, errors.ErrNotFound) {
		return domain.Anonymous, "", errors.Wrap(err, errors.CodeInternal, "look up account")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return domain.Anonymous, "", errors.Validation(err.Error())
	}

	subjectID, err := id.Generate("usr")
	if err != nil {
		return domain.Anonymous, "", errors.Wrap(err, errors.CodeInternal, "generate account id")
	}

	account := &Account{
		ID:           subjectID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.accounts.Put(account); err != nil {
		return domain.Anonymous, "", errors.Wrap(err, errors.CodeInternal, "store account")
	}

	s.logger.Info("account registered", "subject_id", subjectID)
	return s.signIn(account)
}

// SignIn verifies credentials and transitions the session to the
// authenticated identity. Returns the identity and a bearer token.
func (s *Service) SignIn(ctx context.Context, email, password string) (domain.Identity, string, error) {
	if err := ctx.Err(); err != nil {
		return domain.Anonymous, "", err
	}

	account, err := s.accounts.Get(email)
	if err != nil {
		// Same response as a wrong password so probes cannot enumerate accounts.
		return domain.Anonymous, "", errors.Unauthorized("invalid email or password")
	}

	if !VerifyPassword(account.PasswordHash, password) {
		return domain.Anonymous, "", errors.Unauthorized("invalid email or password")
	}

	return s.signIn(account)
}

func (s *Service) signIn(account *Account) (domain.Identity, string, error) {
	token, err := s.tokens.GenerateToken(account.ID, account.Email)
	if err != nil {
		return domain.Anonymous, "", errors.Wrap(err, errors.CodeInternal, "issue token")
	}

	identity := domain.Identity{IsAuthenticated: true, SubjectID: account.ID}

	s.mu.Lock()
	s.identity = identity
	s.token = token
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	s.logger.Info("signed in", "subject_id", account.ID)
	for _, fn := range fns {
		fn(identity, token)
	}
	return identity, token, nil
}

// SignOut transitions the session back to the anonymous identity. Signing out
// while already anonymous is a no-op.
func (s *Service) SignOut() {
	s.mu.Lock()
	if !s.identity.IsAuthenticated {
		s.mu.Unlock()
		return
	}
	subjectID := s.identity.SubjectID
	s.identity = domain.Anonymous
	s.token = ""
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	s.logger.Info("signed out", "subject_id", subjectID)
	for _, fn := range fns {
		fn(domain.Anonymous, "")
	}
}

// Current returns the active identity and its token.
func (s *Service) Current() (domain.Identity, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.token
}

// OnIdentityChange registers a listener for identity transitions. The
// returned function unregisters it. Listeners are not called with the
// current identity on registration.
func (s *Service) OnIdentityChange(fn IdentityListener) (func(), error) {
	handle, err := id.Generate("idl")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate listener handle")
	}

	s.mu.Lock()
	s.listeners[handle] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, handle)
		s.mu.Unlock()
	}, nil
}

// TokenDuration returns the configured token lifetime.
func (s *Service) TokenDuration() time.Duration {
	return s.tokens.TokenDuration()
}

// VerifyToken validates a bearer token and returns its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token").WithCause(err)
	}
	return claims, nil
}

// listenerSnapshot copies the listener set. Caller must hold s.mu.
func (s *Service) listenerSnapshot() []IdentityListener {
	fns := make([]IdentityListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}
