package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/cardtrackapp/cardtrack-server/internal/api"
	"github.com/cardtrackapp/cardtrack-server/internal/auth"
	"github.com/cardtrackapp/cardtrack-server/internal/config"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
	"github.com/cardtrackapp/cardtrack-server/internal/service"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	lists := do.MustInvoke[*service.ListService](i)
	profiles := do.MustInvoke[*service.ProfileService](i)
	authService := do.MustInvoke[*auth.Service](i)
	coordinator := do.MustInvoke[*CoordinatorHandle](i)
	local := do.MustInvoke[*LocalStoreHandle](i)
	notifier := do.MustInvoke[*notify.Notifier](i)

	handler := api.NewServer(lists, profiles, authService, coordinator.Coordinator, local.LocalStore, notifier, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: server}, nil
}
