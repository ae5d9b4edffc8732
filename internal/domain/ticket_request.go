package domain

import "time"

// TicketRequestStatus enumerates the independent lifecycle of a request.
type TicketRequestStatus string

const (
	RequestStatusOpen       TicketRequestStatus = "OPEN"
	RequestStatusAccepted   TicketRequestStatus = "ACCEPTED"
	RequestStatusRejected   TicketRequestStatus = "REJECTED"
	RequestStatusFulfilled  TicketRequestStatus = "FULFILLED"
	RequestStatusRedirected TicketRequestStatus = "REDIRECTED"
	RequestStatusFailed     TicketRequestStatus = "FAILED"
	RequestStatusCancelled  TicketRequestStatus = "CANCELLED"
)

// Pending reports whether the request still awaits a terminal outcome and is
// therefore subject to cascades from the referenced ticket.
func (s TicketRequestStatus) Pending() bool {
	return s == RequestStatusOpen || s == RequestStatusAccepted
}

// TicketRequest asks a specific service-desk employee to act on a ticket.
// Sender and recipient are independent reference roles on Employee; the
// recipient must be service-desk-capable at creation time.
type TicketRequest struct {
	ID          string
	SenderID    string
	RecipientID string
	TicketID    string
	Message     string
	Status      TicketRequestStatus
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Resolved by view assembly, never persisted.
	Sender    *Employee
	Recipient *Employee
	Ticket    *Ticket
}
