package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/cardtrackapp/cardtrack-server/internal/catalog"
	"github.com/cardtrackapp/cardtrack-server/internal/config"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
	"github.com/cardtrackapp/cardtrack-server/internal/service"
	"github.com/cardtrackapp/cardtrack-server/internal/tracker"
)

// ProvideCatalogClient provides the card catalog search client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, log), nil
}

// ProvideTracker provides the acquisition tracker.
func ProvideTracker(i do.Injector) (*tracker.Tracker, error) {
	notifier := do.MustInvoke[*notify.Notifier](i)
	log := do.MustInvoke[*slog.Logger](i)

	return tracker.New(notifier, log), nil
}

// ProvideListService provides the list service.
func ProvideListService(i do.Injector) (*service.ListService, error) {
	coordinator := do.MustInvoke[*CoordinatorHandle](i)
	client := do.MustInvoke[*catalog.Client](i)
	acquisitions := do.MustInvoke[*tracker.Tracker](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewListService(coordinator.Coordinator, client, acquisitions, log), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	coordinator := do.MustInvoke[*CoordinatorHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewProfileService(coordinator.Coordinator, log), nil
}
