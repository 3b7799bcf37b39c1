package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/cardtrackapp/cardtrack-server/internal/auth"
	"github.com/cardtrackapp/cardtrack-server/internal/config"
	"github.com/cardtrackapp/cardtrack-server/internal/liststore"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
	"github.com/cardtrackapp/cardtrack-server/internal/session"
)

// ProvideNotifier provides the process-scoped notification fan-out.
func ProvideNotifier(i do.Injector) (*notify.Notifier, error) {
	log := do.MustInvoke[*slog.Logger](i)
	return notify.New(log), nil
}

// CoordinatorHandle wraps the session coordinator with Shutdownable.
type CoordinatorHandle struct {
	*session.Coordinator
}

// Shutdown implements do.Shutdownable.
func (h *CoordinatorHandle) Shutdown() error {
	return h.Coordinator.Close()
}

// ProvideCoordinator provides the session coordinator, wired to follow the
// identity provider's transitions. When no sync service is configured,
// authenticated sessions keep using the local store.
func ProvideCoordinator(i do.Injector) (*CoordinatorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	notifier := do.MustInvoke[*notify.Notifier](i)
	local := do.MustInvoke[*LocalStoreHandle](i)
	authService := do.MustInvoke[*auth.Service](i)

	factory := func(subjectID, token string) liststore.Store {
		if cfg.Sync.BaseURL == "" {
			log.Warn("no sync service configured; authenticated session stays on local store")
			return local.LocalStore
		}
		return liststore.NewRemote(liststore.RemoteConfig{
			BaseURL:   cfg.Sync.BaseURL,
			Namespace: cfg.Sync.Namespace,
			SubjectID: subjectID,
			Token:     token,
			Logger:    log,
			Notifier:  notifier,
		})
	}

	coordinator := session.NewCoordinator(local.LocalStore, factory, log)

	if _, err := authService.OnIdentityChange(coordinator.SetIdentity); err != nil {
		return nil, err
	}

	return &CoordinatorHandle{Coordinator: coordinator}, nil
}
