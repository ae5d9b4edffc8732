package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "OPEN"
	TicketStatusClosed    TicketStatus = "CLOSED"
	TicketStatusResolved  TicketStatus = "RESOLVED"
	TicketStatusEscalated TicketStatus = "ESCALATED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityUndefined TicketPriority = "UNDEFINED"
	TicketPriorityLow       TicketPriority = "LOW"
	TicketPriorityMedium    TicketPriority = "MEDIUM"
	TicketPriorityHigh      TicketPriority = "HIGH"
	TicketPriorityCritical  TicketPriority = "CRITICAL"
)

// Ticket is the aggregate for support issues. Logs is the ordered,
// append-only sequence of status-changing events on the ticket.
type Ticket struct {
	ID          string
	CreatedByID string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Logs        []Log
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Creator is resolved by view assembly, never persisted.
	Creator *Employee
}

// Log records one status transition on a ticket: who did it, when, and the
// status that was in effect after the log applied.
type Log struct {
	ID          string
	TicketID    string
	CreatedByID string
	Description string
	NewStatus   TicketStatus
	CreatedAt   time.Time

	Creator *Employee
}
