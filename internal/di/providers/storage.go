package providers

import (
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/cardtrackapp/cardtrack-server/internal/auth"
	"github.com/cardtrackapp/cardtrack-server/internal/config"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
	"github.com/cardtrackapp/cardtrack-server/internal/liststore"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
)

// LocalStoreHandle wraps the local list store with Shutdownable.
type LocalStoreHandle struct {
	*liststore.LocalStore
}

// Shutdown implements do.Shutdownable.
func (h *LocalStoreHandle) Shutdown() error {
	return h.LocalStore.Close()
}

// ProvideLocalStore provides the local list store. An unopenable database is
// not fatal: the store comes up degraded, viewing works, and the condition
// is reported through the notifier.
func ProvideLocalStore(i do.Injector) (*LocalStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	notifier := do.MustInvoke[*notify.Notifier](i)

	store, err := liststore.OpenLocal(filepath.Join(cfg.Storage.DataPath, "lists"), log)
	if err != nil {
		log.Error("local persistence disabled", "error", err)
		notifier.Error(string(errors.CodeStorageDisabled), "local persistence is disabled; changes will not survive a restart")
	}

	return &LocalStoreHandle{LocalStore: store}, nil
}

// AccountStoreHandle wraps the account store with Shutdownable.
type AccountStoreHandle struct {
	*auth.AccountStore
}

// Shutdown implements do.Shutdownable.
func (h *AccountStoreHandle) Shutdown() error {
	return h.AccountStore.Close()
}

// ProvideAccountStore provides the credential database.
func ProvideAccountStore(i do.Injector) (*AccountStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	store, err := auth.OpenAccountStore(filepath.Join(cfg.Storage.DataPath, "accounts"), log)
	if err != nil {
		return nil, err
	}
	return &AccountStoreHandle{AccountStore: store}, nil
}
