// Package di provides dependency injection configuration for the CardTrack server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cardtrackapp/cardtrack-server/internal/auth"
	"github.com/cardtrackapp/cardtrack-server/internal/catalog"
	"github.com/cardtrackapp/cardtrack-server/internal/config"
	"github.com/cardtrackapp/cardtrack-server/internal/di/providers"
	"github.com/cardtrackapp/cardtrack-server/internal/logger"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
	"github.com/cardtrackapp/cardtrack-server/internal/service"
	"github.com/cardtrackapp/cardtrack-server/internal/tracker"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideNotifier)

	// Storage layer
	do.Provide(injector, providers.ProvideLocalStore)
	do.Provide(injector, providers.ProvideAccountStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthService)

	// Session layer
	do.Provide(injector, providers.ProvideCoordinator)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalogClient)

	// Business services
	do.Provide(injector, providers.ProvideTracker)
	do.Provide(injector, providers.ProvideListService)
	do.Provide(injector, providers.ProvideProfileService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*notify.Notifier](injector)

	// Storage
	_ = do.MustInvoke[*providers.LocalStoreHandle](injector)
	_ = do.MustInvoke[*providers.AccountStoreHandle](injector)

	// Auth and session
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*auth.Service](injector)
	_ = do.MustInvoke[*providers.CoordinatorHandle](injector)

	// Business services
	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*tracker.Tracker](injector)
	_ = do.MustInvoke[*service.ListService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
