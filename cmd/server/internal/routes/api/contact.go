package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/strictdev/contact-relay/cmd/server/internal/response"
	"github.com/strictdev/contact-relay/internal/audit"
	"github.com/strictdev/contact-relay/internal/form"
	"github.com/strictdev/contact-relay/internal/security"
	"github.com/strictdev/contact-relay/internal/types"
	"github.com/strictdev/contact-relay/internal/web3forms"
)

const deliverySubject = "Novo pedido via Strict.Dev"

// SubmitContact is the authoritative gate. Client-side checks are a UX
// convenience; everything is re-checked here because the client is
// untrusted. Steps run strictly in order and every outcome is terminal.
func (h *Handler) SubmitContact(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "SubmitContact")
	defer span.End()

	span.AddEvent("received contact submission")

	// Operator error is checked before user input is touched.
	if !h.config.HasAccessKey() {
		span.SetStatus(codes.Ok, "delivery access key not configured")
		span.RecordError(nil)
		return response.MissingAccessKey
	}

	var rdata types.ContactRequest

	span.AddEvent("parsing request body")
	if err := c.Bind(&rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request body")
		span.RecordError(err)
		return response.MalformedBody
	}

	p := form.Normalize(form.Payload{
		Name:         rdata.Name,
		Email:        rdata.Email,
		Company:      rdata.Company,
		Requirements: rdata.Requirements,
		Honeypot:     rdata.Honeypot,
		Token:        rdata.Token,
	})

	// A filled honeypot gets a generic success so the bot cannot learn it
	// was caught; delivery is never attempted. This also covers bots that
	// skip the browser and call the relay directly.
	if !security.ValidateHoneypot(p.Honeypot) {
		span.AddEvent("honeypot filled, silently accepting")
		span.SetStatus(codes.Ok, "bot detected")
		span.RecordError(nil)
		audit.LogBotDetected(auditContext(c))
		return c.JSON(http.StatusOK, types.Ok())
	}

	span.AddEvent("validating fields")
	if errs := form.ValidateForm(p, false); len(errs) > 0 {
		field, msg := form.FirstError(errs)
		span.SetAttributes(attribute.String("validation.field", field))
		span.SetStatus(codes.Ok, "field validation failed")
		span.RecordError(nil)
		audit.LogSubmissionRejected(auditContext(c), field)
		return echo.NewHTTPError(http.StatusBadRequest, types.FieldError(field, msg))
	}

	if err := h.checkVerification(c, p.Token); err != nil {
		span.SetStatus(codes.Ok, "verification failed")
		span.RecordError(err)
		audit.LogVerificationFailed(auditContext(c), verificationReason(err))
		return err
	}

	span.AddEvent("relaying to delivery provider")
	err := h.deliverer.Deliver(ctx, web3forms.Submission{
		AccessKey: strings.TrimSpace(h.config.Web3Forms.AccessKey),
		Subject:   deliverySubject,
		FromName:  p.Name,
		Email:     p.Email,
		Company:   p.Company,
		Message:   p.Requirements,
		ReplyTo:   p.Email,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery provider rejected submission")

		var dErr *web3forms.DeliveryError
		if errors.As(err, &dErr) {
			audit.LogDeliveryFailed(auditContext(c), dErr.StatusCode)
			if dErr.Detail != nil {
				return echo.NewHTTPError(
					http.StatusBadGateway,
					types.DetailError(response.MsgDeliveryFailed, dErr.Detail),
				)
			}
		} else {
			audit.LogDeliveryFailed(auditContext(c), 0)
		}
		return echo.NewHTTPError(
			http.StatusBadGateway,
			types.DetailError(response.MsgDeliveryFailed, err.Error()),
		)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "submission delivered")
	audit.LogSubmissionDelivered(auditContext(c), p.Email, deliverySubject)
	return c.JSON(http.StatusOK, types.Ok())
}

func auditContext(c echo.Context) audit.Context {
	ip := c.RealIP()
	return audit.Context{RemoteIP: &ip, FormID: contactFormID}
}

func verificationReason(err error) string {
	switch err {
	case response.MissingTurnstile:
		return "secret_key_missing"
	default:
		return "token_rejected"
	}
}

// checkVerification applies the conditional bot-verification step. With no
// secret and no token the step is skipped entirely: the site must keep
// accepting submissions when verification infrastructure is absent.
func (h *Handler) checkVerification(c echo.Context, token string) error {
	if token == "" {
		if h.verifier != nil && h.config.Turnstile.Required {
			// Verification is mandated but the client sent nothing.
			return response.VerificationFailed
		}
		return nil
	}

	// A token arrived; verifying it without a secret is an operator error.
	if h.verifier == nil {
		return response.MissingTurnstile
	}

	ok, err := h.verifier.Verify(c.Request().Context(), token, c.RealIP())
	if err != nil || !ok {
		return response.VerificationFailed
	}
	return nil
}
