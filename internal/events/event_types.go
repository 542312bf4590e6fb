package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered      EventType = "account_registered"
	EventAccountLoggedIn        EventType = "account_logged_in"
	EventAccountLoginFailed     EventType = "account_login_failed"
	EventAccountUpdated         EventType = "account_updated"
	EventAccountDeleted         EventType = "account_deleted"
	EventAccountPasswordChanged EventType = "account_password_changed"
)

// AllAccountEvents lists every account event type.
var AllAccountEvents = []EventType{
	EventAccountRegistered,
	EventAccountLoggedIn,
	EventAccountLoginFailed,
	EventAccountUpdated,
	EventAccountDeleted,
	EventAccountPasswordChanged,
}

// Actor encapsulates actor metadata for an event. Empty for anonymous callers.
type Actor struct {
	SubjectID string      `json:"subject_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// ActorFrom builds an Actor from an authenticated identity.
func ActorFrom(identity domain.Identity) Actor {
	return Actor{SubjectID: identity.SubjectID, Role: identity.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// AccountUpdatedPayload lists which fields a patch touched.
type AccountUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// LoginFailedPayload describes a rejected login. Email is already normalized.
type LoginFailedPayload struct {
	Email   string `json:"email"`
	Blocked bool   `json:"blocked"`
}
