package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/cardtrackapp/cardtrack-server/internal/auth"
	"github.com/cardtrackapp/cardtrack-server/internal/config"
)

// ProvideTokenService loads or generates the PASETO symmetric key and builds
// the token service on it.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)

	keyHex, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.TokenKey = keyHex

	return auth.NewTokenService(keyHex, cfg.Auth.TokenDuration)
}

// ProvideAuthService provides the identity provider.
func ProvideAuthService(i do.Injector) (*auth.Service, error) {
	accounts := do.MustInvoke[*AccountStoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*slog.Logger](i)

	return auth.NewService(accounts.AccountStore, tokens, log), nil
}
