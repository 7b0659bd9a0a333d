// Package audit emits one JSON line per notable submission event. The stream
// is the forensic record for abuse review: who was blocked, why, and when.
// Events go to stdout so log shippers pick them up alongside the app logs.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/strictdev/contact-relay/internal/logger"
	"github.com/strictdev/contact-relay/internal/types"
)

type Context struct {
	RemoteIP *string
	FormID   string
}

func message(c Context, typ EventType, disp Disposition) Message {
	return Message{
		EventID:       uuid.New(),
		RemoteIP:      c.RemoteIP,
		FormID:        c.FormID,
		LogContext:    logContext,
		SchemaVersion: schemaVersion,
		Disposition:   disp,
		Type:          typ,
		Timestamp:     types.UnixMilli(time.Now().UTC().UnixMilli()),
	}
}

func emit(c Context, event any, eventName string) {
	evtStr, err := json.Marshal(event)
	if err != nil {
		var remoteIP string
		if c.RemoteIP != nil {
			remoteIP = *c.RemoteIP
		}
		logger.Logger.Error(
			"could not serialize "+eventName+" event",
			"remoteIp",
			remoteIP,
			"formId",
			c.FormID,
		)
		return
	}

	fmt.Println(string(evtStr))
}

func LogSubmissionDelivered(c Context, email string, subject string) {
	event := SubmissionDelivered{}
	event.Message = message(c, EvtSubmissionDelivered, DispositionGood)

	event.Event.Email = email
	event.Event.Subject = subject

	emit(c, event, "SubmissionDelivered")
}

func LogSubmissionRejected(c Context, field string) {
	event := SubmissionRejected{}
	event.Message = message(c, EvtSubmissionRejected, DispositionNeutral)

	event.Event.Field = field

	emit(c, event, "SubmissionRejected")
}

func LogBotDetected(c Context) {
	event := BotDetected{}
	event.Message = message(c, EvtBotDetected, DispositionBad)

	emit(c, event, "BotDetected")
}

func LogRateLimited(c Context, timeRemaining int) {
	event := RateLimited{}
	event.Message = message(c, EvtRateLimited, DispositionBad)

	event.Event.TimeRemaining = timeRemaining

	emit(c, event, "RateLimited")
}

func LogVerificationFailed(c Context, reason string) {
	event := VerificationFailed{}
	event.Message = message(c, EvtVerificationFailed, DispositionBad)

	event.Event.Reason = reason

	emit(c, event, "VerificationFailed")
}

func LogDeliveryFailed(c Context, statusCode int) {
	event := DeliveryFailed{}
	event.Message = message(c, EvtDeliveryFailed, DispositionBad)

	event.Event.StatusCode = statusCode

	emit(c, event, "DeliveryFailed")
}
