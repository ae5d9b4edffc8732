package events

import (
	"time"

	"github.com/markvl91/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketLogApplied     EventType = "ticket_log_applied"
	EventTicketEscalated      EventType = "ticket_escalated"
	EventTicketClosed         EventType = "ticket_closed"
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
)

// Event represents a domain event emitted by services. ActorID is the
// employee who triggered the change; empty for system-originated events.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketLogAppliedPayload payload.
type TicketLogAppliedPayload struct {
	LogID     string              `json:"log_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Fulfilled int                 `json:"fulfilled_requests"`
	Cancelled int                 `json:"cancelled_requests"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Redirected  int     `json:"redirected_requests"`
	RecipientID *string `json:"escalation_recipient_id,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	RequestID   string `json:"request_id"`
	RecipientID string `json:"recipient_id"`
	Redirected  int    `json:"redirected_requests"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	RequestID string                     `json:"request_id"`
	OldStatus domain.TicketRequestStatus `json:"old_status"`
	NewStatus domain.TicketRequestStatus `json:"new_status"`
}
