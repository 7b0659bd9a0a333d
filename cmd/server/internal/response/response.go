package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strictdev/contact-relay/internal/types"
)

// Messages are the product's wire-visible strings; tests and the deployed
// site both depend on them byte for byte.
const (
	MsgMalformedBody        = "Body inválido"
	MsgMissingAccessKey     = "Configuração em falta: WEB3FORMS_ACCESS_KEY"
	MsgMissingTurnstileKey  = "Configuração em falta: TURNSTILE_SECRET_KEY"
	MsgVerificationFailed   = "Falha na validação anti spam"
	MsgDeliveryFailed       = "Falha no serviço de email"
	MsgInternalError        = "Erro interno na Function"
	MsgTooManyAttempts      = "Demasiadas tentativas"
)

var (
	MalformedBody      = echo.NewHTTPError(http.StatusBadRequest, types.StringError(MsgMalformedBody))
	MissingAccessKey   = echo.NewHTTPError(http.StatusInternalServerError, types.StringError(MsgMissingAccessKey))
	MissingTurnstile   = echo.NewHTTPError(http.StatusInternalServerError, types.StringError(MsgMissingTurnstileKey))
	VerificationFailed = echo.NewHTTPError(http.StatusBadRequest, types.StringError(MsgVerificationFailed))
)
