package app

import (
	"context"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
)

// Serve listens on APP_PORT until ctx is cancelled, then drains in-flight
// requests.
func (a *Application) Serve(ctx context.Context) error {
	return server.Start(ctx, ":"+config.AppPort(), a.Handler(ctx))
}
