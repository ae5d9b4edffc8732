package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/events"
	"github.com/markvl91/helpdesk-service/internal/repository"
	"github.com/markvl91/helpdesk-service/pkg/errorutil"
)

// TicketDependencies wires the ticket service.
type TicketDependencies struct {
	Tickets    repository.TicketRepository
	Employees  repository.EmployeeRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketService covers ticket creation, listing and detail assembly. Status
// changes live in TransitionService.
type TicketService struct {
	tickets    repository.TicketRepository
	employees  repository.EmployeeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.Tickets,
		employees:  deps.Employees,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicketInput carries the fields an employee submits for a new ticket.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// CreateTicket opens a new ticket on behalf of the actor.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Employee, input CreateTicketInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errorutil.NewValidationError("title is required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityUndefined
	}

	ticket := &domain.Ticket{
		CreatedByID: actor.ID,
		Title:       title,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	ticket.Creator = actor

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketCreated,
			TicketID:  ticket.ID,
			ActorID:   actor.ID,
			Timestamp: time.Now().UTC(),
			Payload: events.TicketCreatedPayload{
				Title:    ticket.Title,
				Priority: ticket.Priority,
			},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event publish failed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
	return ticket, nil
}

// ListOwn returns the actor's tickets, newest first.
func (s *TicketService) ListOwn(ctx context.Context, actor *domain.Employee) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	for i := range tickets {
		tickets[i].Creator = actor
	}
	return tickets, nil
}

// ListAll returns every ticket for the service desk overview, with creators
// attached. Archived tickets live behind their own flag.
func (s *TicketService) ListAll(ctx context.Context, actor *domain.Employee, archived bool, sort repository.TicketSort) ([]domain.Ticket, error) {
	if !actor.IsServiceDesk() {
		return nil, errorutil.NewForbidden("only service desk employees can list all tickets")
	}
	tickets, err := s.tickets.ListAll(ctx, archived, sort)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if err := s.attachCreators(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetDetail loads one ticket with its full log sequence and the employees
// behind the ticket and each log entry. Regular employees only see their own.
func (s *TicketService) GetDetail(ctx context.Context, actor *domain.Employee, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if !actor.IsServiceDesk() && ticket.CreatedByID != actor.ID {
		return nil, errorutil.NewForbidden("ticket belongs to another employee")
	}

	ids := []string{ticket.CreatedByID}
	for _, log := range ticket.Logs {
		ids = append(ids, log.CreatedByID)
	}
	lookup, err := s.employeeLookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	ticket.Creator = lookup[ticket.CreatedByID]
	for i := range ticket.Logs {
		ticket.Logs[i].Creator = lookup[ticket.Logs[i].CreatedByID]
	}
	return ticket, nil
}

// DeleteOwn removes a ticket its creator opened, as long as no one has
// worked it yet. A ticket with log entries stays.
func (s *TicketService) DeleteOwn(ctx context.Context, actor *domain.Employee, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return errorutil.MapError(err)
	}
	if ticket.CreatedByID != actor.ID {
		return errorutil.NewForbidden("ticket belongs to another employee")
	}
	if len(ticket.Logs) > 0 {
		return errorutil.NewValidationError("tickets with log entries cannot be deleted", nil)
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}

func (s *TicketService) attachCreators(ctx context.Context, tickets []domain.Ticket) error {
	ids := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.CreatedByID)
	}
	lookup, err := s.employeeLookup(ctx, ids)
	if err != nil {
		return err
	}
	for i := range tickets {
		tickets[i].Creator = lookup[tickets[i].CreatedByID]
	}
	return nil
}

func (s *TicketService) employeeLookup(ctx context.Context, ids []string) (map[string]*domain.Employee, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return map[string]*domain.Employee{}, nil
	}

	employees, err := s.employees.GetByIDs(ctx, unique)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	lookup := make(map[string]*domain.Employee, len(employees))
	for i := range employees {
		lookup[employees[i].ID] = &employees[i]
	}
	return lookup, nil
}
