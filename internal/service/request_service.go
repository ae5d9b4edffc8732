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

// ViewPerspective names the relationship between a viewer and a request.
type ViewPerspective string

const (
	PerspectiveSender    ViewPerspective = "sender"
	PerspectiveRecipient ViewPerspective = "recipient"
	PerspectiveGuest     ViewPerspective = "guest"
)

// RequestViewContext is a request resolved for display: related records
// attached and the viewer's perspective decided.
type RequestViewContext struct {
	Request     *domain.TicketRequest
	Perspective ViewPerspective
}

// RequestDependencies wires the request service.
type RequestDependencies struct {
	Requests   repository.TicketRequestRepository
	Tickets    repository.TicketRepository
	Employees  repository.EmployeeRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RequestService owns the ticket request lifecycle: creation with recipient
// validation, the accept/reject/fail transitions, deletion, and the listing
// and view assembly reads.
type RequestService struct {
	requests   repository.TicketRequestRepository
	tickets    repository.TicketRepository
	employees  repository.EmployeeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewRequestService builds the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.Requests,
		tickets:    deps.Tickets,
		employees:  deps.Employees,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateRequestInput carries the fields for a new request.
type CreateRequestInput struct {
	RecipientEmail string
	TicketID       string
	Message        string
}

// Create sends a new request about a ticket to a service desk colleague.
// The recipient is addressed by email and must be a service desk employee
// other than the sender. Any pending request on the same ticket that was
// addressed to the sender is redirected: the sender is passing the ticket
// on rather than answering.
func (s *RequestService) Create(ctx context.Context, actor *domain.Employee, input CreateRequestInput) (*domain.TicketRequest, error) {
	if actor == nil {
		return nil, errorutil.NewForbidden("request sender is required")
	}
	email := strings.TrimSpace(strings.ToLower(input.RecipientEmail))
	if email == "" {
		return nil, errorutil.NewValidationError("recipient email is required", nil)
	}

	recipient, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errorutil.IsCode(errorutil.MapError(err), "NOT_FOUND") {
			return nil, errorutil.NewValidationError("no employee exists with that email", map[string]any{"email": email})
		}
		return nil, errorutil.MapError(err)
	}
	if !recipient.IsServiceDesk() {
		return nil, errorutil.NewValidationError("requests can only be sent to service desk employees", nil)
	}
	if recipient.ID == actor.ID {
		return nil, errorutil.NewValidationError("requests cannot be addressed to yourself", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	existing, err := s.requests.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	request := &domain.TicketRequest{
		SenderID:    actor.ID,
		RecipientID: recipient.ID,
		TicketID:    ticket.ID,
		Message:     input.Message,
		Status:      domain.RequestStatusOpen,
	}

	ops := []writeOp{{
		name: "insert_request",
		fn: func(ctx context.Context) error {
			return s.requests.Insert(ctx, request)
		},
	}}
	redirected := 0
	for _, prior := range existing {
		if !prior.Status.Pending() || prior.RecipientID != actor.ID {
			continue
		}
		redirected++
		priorID := prior.ID
		ops = append(ops, writeOp{
			name: "redirect_" + priorID,
			fn: func(ctx context.Context) error {
				return s.requests.UpdateStatus(ctx, priorID, domain.RequestStatusRedirected)
			},
		})
	}

	var insertErr error
	for _, failure := range fanOut(ctx, ops) {
		if failure.Name == "insert_request" {
			insertErr = failure.Err
			continue
		}
		s.logger.Error("request redirect failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("op", failure.Name),
			zap.Error(failure.Err))
	}
	if insertErr != nil {
		return nil, errorutil.MapError(insertErr)
	}

	request.Sender = actor
	request.Recipient = recipient
	request.Ticket = ticket

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRequestCreated,
		TicketID:  ticket.ID,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
		Payload: events.RequestCreatedPayload{
			RequestID:   request.ID,
			RecipientID: recipient.ID,
			Redirected:  redirected,
		},
	})
	return request, nil
}

// Accept moves an open request to accepted. Anything past open is left
// untouched: a second accept, or an accept racing a cascade, changes nothing.
func (s *RequestService) Accept(ctx context.Context, actor *domain.Employee, requestID string) (*domain.TicketRequest, error) {
	return s.transition(ctx, actor, requestID, domain.RequestStatusOpen, domain.RequestStatusAccepted)
}

// Reject moves an open request to rejected. Guarded like Accept.
func (s *RequestService) Reject(ctx context.Context, actor *domain.Employee, requestID string) (*domain.TicketRequest, error) {
	return s.transition(ctx, actor, requestID, domain.RequestStatusOpen, domain.RequestStatusRejected)
}

// Fail moves an accepted request to failed, recording that the recipient
// took the work on and could not complete it.
func (s *RequestService) Fail(ctx context.Context, actor *domain.Employee, requestID string) (*domain.TicketRequest, error) {
	return s.transition(ctx, actor, requestID, domain.RequestStatusAccepted, domain.RequestStatusFailed)
}

// transition applies one guarded recipient-side status change. A request
// not in the expected status is returned as-is rather than rejected, so
// repeated calls and cascade races stay quiet.
func (s *RequestService) transition(ctx context.Context, actor *domain.Employee, requestID string, from, to domain.TicketRequestStatus) (*domain.TicketRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if request.RecipientID != actor.ID {
		return nil, errorutil.NewForbidden("request is addressed to another employee")
	}
	if request.Status != from {
		return request, nil
	}

	if err := s.requests.UpdateStatus(ctx, requestID, to); err != nil {
		return nil, errorutil.MapError(err)
	}
	oldStatus := request.Status
	request.Status = to

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRequestStatusChanged,
		TicketID:  request.TicketID,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
		Payload: events.RequestStatusChangedPayload{
			RequestID: requestID,
			OldStatus: oldStatus,
			NewStatus: to,
		},
	})
	return request, nil
}

// Delete removes a request its sender no longer wants answered. Only the
// sender may delete, and only while the request is still open.
func (s *RequestService) Delete(ctx context.Context, actor *domain.Employee, requestID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return errorutil.MapError(err)
	}
	if request.SenderID != actor.ID {
		return errorutil.NewForbidden("only the sender can delete a request")
	}
	if request.Status != domain.RequestStatusOpen {
		return errorutil.NewValidationError("only unaccepted requests can be deleted", nil)
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}

// SetArchived moves a request in or out of the archive.
func (s *RequestService) SetArchived(ctx context.Context, actor *domain.Employee, requestID string, archived bool) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return errorutil.MapError(err)
	}
	if request.SenderID != actor.ID && request.RecipientID != actor.ID {
		return errorutil.NewForbidden("request involves another employee")
	}
	if err := s.requests.SetArchived(ctx, requestID, archived); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}

// GetViewContext loads one request with its sender, recipient and ticket
// attached, and decides which side of it the viewer is on. Anyone who is
// neither sender nor recipient views as a guest.
func (s *RequestService) GetViewContext(ctx context.Context, viewer *domain.Employee, requestID string) (*RequestViewContext, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if err := s.attachRelations(ctx, []domain.TicketRequest{*request}, func(i int, r domain.TicketRequest) {
		*request = r
	}); err != nil {
		return nil, err
	}

	perspective := PerspectiveGuest
	switch viewer.ID {
	case request.SenderID:
		perspective = PerspectiveSender
	case request.RecipientID:
		perspective = PerspectiveRecipient
	}
	return &RequestViewContext{Request: request, Perspective: perspective}, nil
}

// ListReceived returns the requests addressed to the actor, newest first.
func (s *RequestService) ListReceived(ctx context.Context, actor *domain.Employee) ([]domain.TicketRequest, error) {
	requests, err := s.requests.ListByRecipient(ctx, actor.ID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return requests, s.attachRelations(ctx, requests, func(i int, r domain.TicketRequest) {
		requests[i] = r
	})
}

// ListSent returns the requests the actor sent, newest first.
func (s *RequestService) ListSent(ctx context.Context, actor *domain.Employee) ([]domain.TicketRequest, error) {
	requests, err := s.requests.ListBySender(ctx, actor.ID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return requests, s.attachRelations(ctx, requests, func(i int, r domain.TicketRequest) {
		requests[i] = r
	})
}

// ListByTicket returns every request on a ticket, for the service desk view.
func (s *RequestService) ListByTicket(ctx context.Context, actor *domain.Employee, ticketID string) ([]domain.TicketRequest, error) {
	if !actor.IsServiceDesk() {
		return nil, errorutil.NewForbidden("only service desk employees can list a ticket's requests")
	}
	requests, err := s.requests.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return requests, s.attachRelations(ctx, requests, func(i int, r domain.TicketRequest) {
		requests[i] = r
	})
}

// attachRelations resolves the employees and tickets behind a batch of
// requests in two lookups instead of one per row.
func (s *RequestService) attachRelations(ctx context.Context, requests []domain.TicketRequest, assign func(int, domain.TicketRequest)) error {
	if len(requests) == 0 {
		return nil
	}

	employeeIDs := make([]string, 0, len(requests)*2)
	seen := map[string]struct{}{}
	for _, request := range requests {
		for _, id := range []string{request.SenderID, request.RecipientID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				employeeIDs = append(employeeIDs, id)
			}
		}
	}
	employees, err := s.employees.GetByIDs(ctx, employeeIDs)
	if err != nil {
		return errorutil.MapError(err)
	}
	employeeLookup := make(map[string]*domain.Employee, len(employees))
	for i := range employees {
		employeeLookup[employees[i].ID] = &employees[i]
	}

	ticketLookup := map[string]*domain.Ticket{}
	for i, request := range requests {
		ticket, ok := ticketLookup[request.TicketID]
		if !ok {
			ticket, err = s.tickets.GetByID(ctx, request.TicketID)
			if err != nil {
				// a deleted ticket leaves the request visible without it
				s.logger.Warn("request ticket lookup failed",
					zap.String("request_id", request.ID),
					zap.String("ticket_id", request.TicketID),
					zap.Error(err))
				ticket = nil
			}
			ticketLookup[request.TicketID] = ticket
		}
		request.Sender = employeeLookup[request.SenderID]
		request.Recipient = employeeLookup[request.RecipientID]
		request.Ticket = ticket
		assign(i, request)
	}
	return nil
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}
