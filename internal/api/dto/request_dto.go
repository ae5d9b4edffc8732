package dto

import (
	"time"

	"github.com/markvl91/helpdesk-service/internal/domain"
)

// CreateTicketRequestRequest payload; the recipient is addressed by email.
type CreateTicketRequestRequest struct {
	RecipientEmail string `json:"recipient_email"`
	TicketID       string `json:"ticket_id"`
	Message        string `json:"message"`
}

// TicketRequestResponse is a request with its related records attached.
type TicketRequestResponse struct {
	ID        string                     `json:"id"`
	Message   string                     `json:"message"`
	Status    domain.TicketRequestStatus `json:"status"`
	Archived  bool                       `json:"archived"`
	Sender    *EmployeeSummary           `json:"sender,omitempty"`
	Recipient *EmployeeSummary           `json:"recipient,omitempty"`
	Ticket    *TicketSummary             `json:"ticket,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// RequestViewContextResponse adds the viewer's perspective to a request.
type RequestViewContextResponse struct {
	Request     TicketRequestResponse `json:"request"`
	Perspective string                `json:"perspective"`
}

// NewTicketRequestResponse maps a domain request.
func NewTicketRequestResponse(request *domain.TicketRequest) TicketRequestResponse {
	response := TicketRequestResponse{
		ID:        request.ID,
		Message:   request.Message,
		Status:    request.Status,
		Archived:  request.Archived,
		Sender:    NewEmployeeSummary(request.Sender),
		Recipient: NewEmployeeSummary(request.Recipient),
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
	if request.Ticket != nil {
		ticket := NewTicketSummary(*request.Ticket)
		response.Ticket = &ticket
	}
	return response
}

// NewTicketRequestResponses maps a slice of requests.
func NewTicketRequestResponses(requests []domain.TicketRequest) []TicketRequestResponse {
	result := make([]TicketRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, NewTicketRequestResponse(&requests[i]))
	}
	return result
}
