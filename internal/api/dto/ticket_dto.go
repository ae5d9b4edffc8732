package dto

import (
	"time"

	"github.com/markvl91/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// EditTicketRequest payload for descriptive field edits.
type EditTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// ApplyLogRequest payload for a status change with its log entry.
type ApplyLogRequest struct {
	Description string              `json:"description"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// EditLogRequest payload for rewriting an existing log entry.
type EditLogRequest struct {
	Description string              `json:"description"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// ArchiveRequest payload.
type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

// LogResponse is one entry in a ticket's log sequence.
type LogResponse struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	CreatedBy   *EmployeeSummary    `json:"created_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TicketSummary is the list-view shape of a ticket.
type TicketSummary struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
	Archived  bool                  `json:"archived"`
	LogCount  int                   `json:"log_count"`
	CreatedBy *EmployeeSummary      `json:"created_by,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// TicketDetailResponse carries the full ticket with its log sequence.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Archived    bool                  `json:"archived"`
	CreatedBy   *EmployeeSummary      `json:"created_by,omitempty"`
	Logs        []LogResponse         `json:"logs"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketSummary maps a domain ticket to its list shape.
func NewTicketSummary(ticket domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:        ticket.ID,
		Title:     ticket.Title,
		Status:    ticket.Status,
		Priority:  ticket.Priority,
		Archived:  ticket.Archived,
		LogCount:  len(ticket.Logs),
		CreatedBy: NewEmployeeSummary(ticket.Creator),
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

// NewTicketSummaries maps a slice of tickets.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	result := make([]TicketSummary, 0, len(tickets))
	for _, ticket := range tickets {
		result = append(result, NewTicketSummary(ticket))
	}
	return result
}

// NewTicketDetail maps a domain ticket to its detail shape.
func NewTicketDetail(ticket *domain.Ticket) TicketDetailResponse {
	logs := make([]LogResponse, 0, len(ticket.Logs))
	for _, log := range ticket.Logs {
		logs = append(logs, LogResponse{
			ID:          log.ID,
			Description: log.Description,
			NewStatus:   log.NewStatus,
			CreatedBy:   NewEmployeeSummary(log.Creator),
			CreatedAt:   log.CreatedAt,
		})
	}
	return TicketDetailResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		Archived:    ticket.Archived,
		CreatedBy:   NewEmployeeSummary(ticket.Creator),
		Logs:        logs,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
