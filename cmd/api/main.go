// Package main provides the entry point for the CardTrack server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/cardtrackapp/cardtrack-server/internal/di"
	"github.com/cardtrackapp/cardtrack-server/internal/di/providers"
	"github.com/cardtrackapp/cardtrack-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The databases use wrapper types, so close them explicitly
	if listsHandle, err := do.Invoke[*providers.LocalStoreHandle](injector); err == nil {
		log.Info("Closing list database...")
		if err := listsHandle.Shutdown(); err != nil {
			log.Error("Failed to close list database", "error", err)
		}
	}

	if accountsHandle, err := do.Invoke[*providers.AccountStoreHandle](injector); err == nil {
		log.Info("Closing account database...")
		if err := accountsHandle.Shutdown(); err != nil {
			log.Error("Failed to close account database", "error", err)
		}
	}

	log.Info("Every card in its sleeve...")
}
