package audit

import (
	"github.com/google/uuid"

	"github.com/strictdev/contact-relay/internal/types"
)

var schemaVersion = "0.1.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type EventType string

const (
	EvtSubmissionDelivered EventType = "submission_delivered"
	EvtSubmissionRejected  EventType = "submission_rejected"
	EvtBotDetected         EventType = "bot_detected"
	EvtRateLimited         EventType = "rate_limited"
	EvtVerificationFailed  EventType = "verification_failed"
	EvtDeliveryFailed      EventType = "delivery_failed"
)

type Message struct {
	EventID       uuid.UUID   `json:"event_id"    validate:"required"`
	RemoteIP      *string     `json:"remote_ip"`
	FormID        string      `json:"form_id"     validate:"required"`
	LogContext    string      `json:"log_context" validate:"required"`
	SchemaVersion string      `json:"version"     validate:"required"`
	Disposition   Disposition `json:"disposition" validate:"required"`
	Type          EventType   `json:"event_type"  validate:"required"`

	Timestamp types.UnixMilli `json:"timestamp" validate:"required"`
}

type SubmissionDeliveredEvent struct {
	Email   string `json:"email"   validate:"required"`
	Subject string `json:"subject" validate:"required"`
}

type SubmissionDelivered struct {
	Event SubmissionDeliveredEvent `json:"event" validate:"required"`
	Message
}

type SubmissionRejectedEvent struct {
	Field string `json:"field" validate:"required"`
}

type SubmissionRejected struct {
	Event SubmissionRejectedEvent `json:"event" validate:"required"`
	Message
}

type BotDetected struct {
	Message
}

type RateLimitedEvent struct {
	TimeRemaining int `json:"time_remaining"`
}

type RateLimited struct {
	Event RateLimitedEvent `json:"event" validate:"required"`
	Message
}

type VerificationFailedEvent struct {
	Reason string `json:"reason"`
}

type VerificationFailed struct {
	Event VerificationFailedEvent `json:"event" validate:"required"`
	Message
}

type DeliveryFailedEvent struct {
	StatusCode int `json:"status_code"`
}

type DeliveryFailed struct {
	Event DeliveryFailedEvent `json:"event" validate:"required"`
	Message
}
