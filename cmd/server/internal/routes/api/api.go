package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/strictdev/contact-relay/cmd/server/internal/ratelimit"
	"github.com/strictdev/contact-relay/cmd/server/internal/response"
	"github.com/strictdev/contact-relay/internal/audit"
	"github.com/strictdev/contact-relay/internal/config"
	"github.com/strictdev/contact-relay/internal/limiter"
	"github.com/strictdev/contact-relay/internal/logger"
	"github.com/strictdev/contact-relay/internal/turnstile"
	"github.com/strictdev/contact-relay/internal/types"
	"github.com/strictdev/contact-relay/internal/web3forms"
)

const name = "github.com/strictdev/contact-relay/server/routes/api"

var tracer = otel.Tracer(name)

// The one form the site registers with the limiter.
const contactFormID = "contact_form"

type Handler struct {
	config    *config.Config
	verifier  *turnstile.Verifier
	deliverer *web3forms.Client
}

func NewHandler(cfg *config.Config) *Handler {
	h := &Handler{
		config:    cfg,
		deliverer: web3forms.NewClient(cfg.Web3Forms.Endpoint),
	}
	if cfg.HasTurnstileSecret() {
		h.verifier = turnstile.NewVerifier(
			strings.TrimSpace(cfg.Turnstile.SecretKey),
			cfg.Turnstile.Endpoint,
		)
	}
	return h
}

func (h *Handler) AddRoutes(e *echo.Echo) {
	l := logger.Logger

	apiGroup := e.Group("/api")

	if h.config.RateLimit != nil && h.config.RateLimit.RedisHost != "" {
		apiGroup.Use(middleware.RateLimiterWithConfig(h.newRateLimiter()))
	} else {
		l.Warn("not configured to have a server-side rate limit")
	}

	apiGroup.POST("/contact/", h.SubmitContact)
	apiGroup.GET("/ping/", h.Ping)
}

func (h *Handler) newRateLimiter() middleware.RateLimiterConfig {
	rl := h.config.RateLimit

	addr := rl.RedisHost
	if !strings.Contains(addr, ":") {
		addr += ":6379"
	}
	logger.Logger.Debug("setting up rate limiter with redis", "redis", addr)

	store := ratelimit.NewLimiterStore(ratelimit.LimiterConfig{
		Store:       limiter.NewRedisStore(redis.NewClient(&redis.Options{Addr: addr})),
		FormID:      contactFormID,
		Window:      time.Duration(rl.WindowMS) * time.Millisecond,
		MaxAttempts: rl.MaxAttempts,
		FailOpen:    rl.FailOpen,
	})

	deny := func(c echo.Context, identifier string) error {
		remaining := store.TimeRemaining(identifier)
		audit.LogRateLimited(
			audit.Context{RemoteIP: &identifier, FormID: contactFormID},
			remaining,
		)
		c.Response().Header().Set("Retry-After", strconv.Itoa(remaining))
		return c.JSON(http.StatusTooManyRequests, types.Error{
			Message:       response.MsgTooManyAttempts,
			TimeRemaining: remaining,
		})
	}

	return middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method != http.MethodPost
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return deny(c, c.RealIP())
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			return deny(c, identifier)
		},
	}
}
