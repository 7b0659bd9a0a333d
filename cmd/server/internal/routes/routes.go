package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	servermiddleware "github.com/strictdev/contact-relay/cmd/server/internal/middleware"
	"github.com/strictdev/contact-relay/cmd/server/internal/response"
	"github.com/strictdev/contact-relay/internal/types"
	"github.com/strictdev/contact-relay/internal/validator"
)

func BuildEcho(logger *slog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	validate := validator.Create()
	e.Validator = &validate

	e.HTTPErrorHandler = errorHandler

	e.Pre(middleware.AddTrailingSlash())

	e.Use(
		otelecho.Middleware("contact-relay"),
		slogecho.NewWithConfig(logger, slogecho.Config{}),
		servermiddleware.Time("time"),
		middleware.Recover(),
		noStore,
	)

	e.GET("/health/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	return e, nil
}

// Responses reflect a one-time side-effecting action and must never be
// cached by an intermediary.
func noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return next(c)
	}
}

// errorHandler guarantees that every failure, including panics surfaced by
// the recover middleware, leaves the relay as a structured JSON envelope.
// A raw 5xx with no body must never escape.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := types.DetailError(response.MsgInternalError, err.Error())

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch msg := he.Message.(type) {
		case types.Error:
			body = msg
		case string:
			body = types.StringError(msg)
		default:
			body = types.StringError(fmt.Sprint(msg))
		}
	}

	if writeErr := c.JSON(code, body); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
