// Package transport exposes the API over gin. Every response uses the
// {success, message, data} envelope; application errors are mapped to
// HTTP statuses in one place.
package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/broasteria/broasteria/internal/domains/inventory/application"
	inventoryports "github.com/broasteria/broasteria/internal/domains/inventory/ports"
	locationsapp "github.com/broasteria/broasteria/internal/domains/locations/application"
	locationsports "github.com/broasteria/broasteria/internal/domains/locations/ports"
	menuapp "github.com/broasteria/broasteria/internal/domains/menu/application"
	menuports "github.com/broasteria/broasteria/internal/domains/menu/ports"
	ordersapp "github.com/broasteria/broasteria/internal/domains/orders/application"
	promosapp "github.com/broasteria/broasteria/internal/domains/promotions/application"
	promosports "github.com/broasteria/broasteria/internal/domains/promotions/ports"
	usersapp "github.com/broasteria/broasteria/internal/domains/users/application"
	usersports "github.com/broasteria/broasteria/internal/domains/users/ports"
)

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError translates application sentinels into the error envelope.
// State conflicts carry the order's current status so clients can
// resynchronize without a second request.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var conflict *ordersapp.StateConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"success":       false,
			"message":       conflict.Error(),
			"currentStatus": conflict.Current,
		})
		return
	}

	switch {
	case errors.Is(err, ordersapp.ErrValidation),
		errors.Is(err, menuapp.ErrValidation),
		errors.Is(err, promosapp.ErrValidation),
		errors.Is(err, promosapp.ErrNotRedeemable),
		errors.Is(err, locationsapp.ErrValidation),
		errors.Is(err, inventoryapp.ErrValidation),
		errors.Is(err, usersapp.ErrValidation):
		respondFail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usersapp.ErrInvalidCredentials):
		respondFail(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ordersapp.ErrNotFound),
		errors.Is(err, menuports.ErrNotFound),
		errors.Is(err, promosports.ErrNotFound),
		errors.Is(err, locationsports.ErrNotFound),
		errors.Is(err, locationsapp.ErrNoBranches),
		errors.Is(err, inventoryports.ErrNotFound),
		errors.Is(err, usersports.ErrNotFound):
		respondFail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ordersapp.ErrStateConflict):
		respondFail(c, http.StatusConflict, err.Error())
	case errors.Is(err, usersapp.ErrEmailTaken):
		respondFail(c, http.StatusConflict, err.Error())
	default:
		if logger != nil {
			logger.Error("unhandled request error",
				slog.String("path", c.FullPath()),
				slog.String("error", err.Error()))
		}
		respondFail(c, http.StatusInternalServerError, "internal server error")
	}
}
