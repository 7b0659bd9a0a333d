package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/strictdev/contact-relay/internal/types"
)

// Ping is the deployment smoke test: it reports which secrets are present
// without ever echoing their values.
func (h *Handler) Ping(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Ping")
	defer span.End()

	return c.JSON(http.StatusOK, types.PingResponse{
		OK:                    true,
		Time:                  time.Now().UTC().Format(time.RFC3339),
		HasWeb3FormsAccessKey: h.config.HasAccessKey(),
		HasTurnstileSecretKey: h.config.HasTurnstileSecret(),
		Host:                  c.Request().Host,
	})
}
