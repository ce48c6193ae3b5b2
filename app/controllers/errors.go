package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// fail maps a service error onto the admin envelope.
func fail(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, services.ErrInvalidID):
		c.NotFound()
	case errors.Is(err, services.ErrSKUTaken),
		errors.Is(err, services.ErrSlugTaken),
		errors.Is(err, repositories.ErrDuplicate):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrParentNotFound):
		c.Error(http.StatusUnprocessableEntity, err.Error())
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
	}
}

// detail is the error text shown to clients; production hides internals.
func detail(err error) string {
	if config.IsProduction() {
		return "internal error"
	}
	return err.Error()
}
