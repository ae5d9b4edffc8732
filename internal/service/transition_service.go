package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/events"
	"github.com/markvl91/helpdesk-service/internal/repository"
	"github.com/markvl91/helpdesk-service/pkg/errorutil"
)

const escalationResultMessage = "Ticket escalated successfully and request sent to management."

// TransitionDependencies wires the transition service.
type TransitionDependencies struct {
	Tickets    repository.TicketRepository
	Requests   repository.TicketRequestRepository
	Policy     EscalationPolicy
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TransitionService drives status changes on tickets. Most changes are
// recorded as appended log entries; closing and escalating move the status
// directly. Either way, pending requests the change answers or obsoletes
// are resolved alongside it.
type TransitionService struct {
	tickets    repository.TicketRepository
	requests   repository.TicketRequestRepository
	policy     EscalationPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTransitionService builds the service.
func NewTransitionService(deps TransitionDependencies) *TransitionService {
	return &TransitionService{
		tickets:    deps.Tickets,
		requests:   deps.Requests,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// requestTransition is one pending request resolved by a status change.
type requestTransition struct {
	RequestID string
	NewStatus domain.TicketRequestStatus
}

// cascadeForStatusChange decides which pending requests a status change
// resolves. A request addressed to the actor is fulfilled when the actor
// closes or resolves the ticket; a request addressed to someone else is
// cancelled by any change away from open, since the ticket moved on without
// that recipient acting. Reopening a ticket resolves nothing.
func cascadeForStatusChange(requests []domain.TicketRequest, actorID string, newStatus domain.TicketStatus) []requestTransition {
	if newStatus == domain.TicketStatusOpen {
		return nil
	}

	var transitions []requestTransition
	for _, request := range requests {
		if !request.Status.Pending() {
			continue
		}
		switch {
		case request.RecipientID == actorID &&
			(newStatus == domain.TicketStatusClosed || newStatus == domain.TicketStatusResolved):
			transitions = append(transitions, requestTransition{
				RequestID: request.ID,
				NewStatus: domain.RequestStatusFulfilled,
			})
		case request.RecipientID != actorID:
			transitions = append(transitions, requestTransition{
				RequestID: request.ID,
				NewStatus: domain.RequestStatusCancelled,
			})
		}
	}
	return transitions
}

// ApplyLog appends a log entry to the ticket, moves the ticket to the log's
// status, and resolves the pending requests the change answers. The log and
// cascade writes run concurrently; a failed cascade write is logged and the
// remaining writes still land.
func (s *TransitionService) ApplyLog(ctx context.Context, actor *domain.Employee, ticketID, description string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if actor == nil || !actor.IsServiceDesk() {
		return nil, errorutil.NewForbidden("only service desk employees can change ticket status")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	oldStatus := ticket.Status

	requests, err := s.requests.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	transitions := cascadeForStatusChange(requests, actor.ID, newStatus)

	log := &domain.Log{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		CreatedByID: actor.ID,
		Description: description,
		NewStatus:   newStatus,
		CreatedAt:   time.Now().UTC(),
	}

	ops := []writeOp{{
		name: "append_log",
		fn: func(ctx context.Context) error {
			return s.tickets.AppendLog(ctx, ticketID, log)
		},
	}}
	for _, transition := range transitions {
		transition := transition
		ops = append(ops, writeOp{
			name: "cascade_" + transition.RequestID,
			fn: func(ctx context.Context) error {
				return s.requests.UpdateStatus(ctx, transition.RequestID, transition.NewStatus)
			},
		})
	}

	var appendErr error
	for _, failure := range fanOut(ctx, ops) {
		if failure.Name == "append_log" {
			appendErr = failure.Err
			continue
		}
		s.logger.Error("request cascade write failed",
			zap.String("ticket_id", ticketID),
			zap.String("op", failure.Name),
			zap.Error(failure.Err))
	}
	if appendErr != nil {
		return nil, errorutil.MapError(appendErr)
	}

	fulfilled, cancelled := 0, 0
	for _, transition := range transitions {
		switch transition.NewStatus {
		case domain.RequestStatusFulfilled:
			fulfilled++
		case domain.RequestStatusCancelled:
			cancelled++
		}
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketLogApplied,
		TicketID:  ticketID,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
		Payload: events.TicketLogAppliedPayload{
			LogID:     log.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Fulfilled: fulfilled,
			Cancelled: cancelled,
		},
	})

	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return updated, nil
}

// CloseTicket moves the ticket to closed without writing a log entry, with
// the same request cascade a closing ApplyLog would run.
func (s *TransitionService) CloseTicket(ctx context.Context, actor *domain.Employee, ticketID string) (*domain.Ticket, error) {
	if actor == nil || !actor.IsServiceDesk() {
		return nil, errorutil.NewForbidden("only service desk employees can close tickets")
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, errorutil.MapError(err)
	}
	requests, err := s.requests.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	transitions := cascadeForStatusChange(requests, actor.ID, domain.TicketStatusClosed)

	ops := []writeOp{{
		name: "set_status",
		fn: func(ctx context.Context) error {
			return s.tickets.SetStatus(ctx, ticketID, domain.TicketStatusClosed)
		},
	}}
	for _, transition := range transitions {
		transition := transition
		ops = append(ops, writeOp{
			name: "cascade_" + transition.RequestID,
			fn: func(ctx context.Context) error {
				return s.requests.UpdateStatus(ctx, transition.RequestID, transition.NewStatus)
			},
		})
	}

	var statusErr error
	for _, failure := range fanOut(ctx, ops) {
		if failure.Name == "set_status" {
			statusErr = failure.Err
			continue
		}
		s.logger.Error("request cascade write failed",
			zap.String("ticket_id", ticketID),
			zap.String("op", failure.Name),
			zap.Error(failure.Err))
	}
	if statusErr != nil {
		return nil, errorutil.MapError(statusErr)
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketClosed,
		TicketID:  ticketID,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
	})

	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return updated, nil
}

// Escalate flags the ticket for management review. The status moves to
// escalated without a log entry, every pending request on the ticket is
// redirected, and a fresh request is sent to the recipient the policy picks.
// An empty policy result skips the new request but the escalation stands.
func (s *TransitionService) Escalate(ctx context.Context, actor *domain.Employee, ticketID string) (string, error) {
	if actor == nil || !actor.IsServiceDesk() {
		return "", errorutil.NewForbidden("only service desk employees can escalate tickets")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", errorutil.MapError(err)
	}

	requests, err := s.requests.ListByTicket(ctx, ticketID)
	if err != nil {
		return "", errorutil.MapError(err)
	}

	ops := []writeOp{{
		name: "set_status",
		fn: func(ctx context.Context) error {
			return s.tickets.SetStatus(ctx, ticketID, domain.TicketStatusEscalated)
		},
	}}
	redirected := 0
	for _, request := range requests {
		if !request.Status.Pending() {
			continue
		}
		redirected++
		requestID := request.ID
		ops = append(ops, writeOp{
			name: "redirect_" + requestID,
			fn: func(ctx context.Context) error {
				return s.requests.UpdateStatus(ctx, requestID, domain.RequestStatusRedirected)
			},
		})
	}

	var statusErr error
	for _, failure := range fanOut(ctx, ops) {
		if failure.Name == "set_status" {
			statusErr = failure.Err
			continue
		}
		s.logger.Error("request redirect failed",
			zap.String("ticket_id", ticketID),
			zap.String("op", failure.Name),
			zap.Error(failure.Err))
	}
	if statusErr != nil {
		return "", errorutil.MapError(statusErr)
	}

	var recipientID *string
	recipient, err := s.policy.SelectRecipient(ctx, actor.ID)
	if err != nil {
		s.logger.Warn("escalation recipient lookup failed",
			zap.String("ticket_id", ticketID), zap.Error(err))
	} else if recipient != nil {
		request := &domain.TicketRequest{
			SenderID:    actor.ID,
			RecipientID: recipient.ID,
			TicketID:    ticketID,
			Message:     fmt.Sprintf("Ticket '%s' has been escalated for review.", ticket.Title),
			Status:      domain.RequestStatusOpen,
		}
		if err := s.requests.Insert(ctx, request); err != nil {
			s.logger.Error("escalation request insert failed",
				zap.String("ticket_id", ticketID), zap.Error(err))
		} else {
			recipientID = &recipient.ID
		}
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketEscalated,
		TicketID:  ticketID,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
		Payload: events.TicketEscalatedPayload{
			Redirected:  redirected,
			RecipientID: recipientID,
		},
	})
	return escalationResultMessage, nil
}

// EditFields updates the ticket's descriptive fields without touching the
// log sequence or any request. Unchanged input is a no-op.
func (s *TransitionService) EditFields(ctx context.Context, actor *domain.Employee, ticketID, title, description string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if actor == nil || !actor.IsServiceDesk() {
		return nil, errorutil.NewForbidden("only service desk employees can edit tickets")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if ticket.Title == title && ticket.Description == description && ticket.Priority == priority {
		return ticket, nil
	}

	if err := s.tickets.UpdateFields(ctx, ticketID, title, description, priority); err != nil {
		return nil, errorutil.MapError(err)
	}
	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return updated, nil
}

// EditLog rewrites an existing log entry. The ticket's current status only
// follows when the edited entry is the most recent one.
func (s *TransitionService) EditLog(ctx context.Context, actor *domain.Employee, ticketID, logID, description string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if actor == nil || !actor.IsServiceDesk() {
		return nil, errorutil.NewForbidden("only service desk employees can edit ticket logs")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if findLog(ticket.Logs, logID) == nil {
		return nil, errorutil.NewNotFound("ticket log", map[string]any{"log_id": logID})
	}

	if err := s.tickets.EditLog(ctx, ticketID, logID, description, newStatus); err != nil {
		return nil, errorutil.MapError(err)
	}
	if latest := latestLog(ticket.Logs); latest != nil && latest.ID == logID {
		if err := s.tickets.SetStatus(ctx, ticketID, newStatus); err != nil {
			return nil, errorutil.MapError(err)
		}
	}
	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return updated, nil
}

// DeleteLog removes a log entry. Deleting the most recent entry rolls the
// ticket's status back to the previous entry, or to open when none remain.
func (s *TransitionService) DeleteLog(ctx context.Context, actor *domain.Employee, ticketID, logID string) (*domain.Ticket, error) {
	if actor == nil || !actor.IsServiceDesk() {
		return nil, errorutil.NewForbidden("only service desk employees can delete ticket logs")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if findLog(ticket.Logs, logID) == nil {
		return nil, errorutil.NewNotFound("ticket log", map[string]any{"log_id": logID})
	}

	if err := s.tickets.DeleteLog(ctx, ticketID, logID); err != nil {
		return nil, errorutil.MapError(err)
	}

	if latest := latestLog(ticket.Logs); latest != nil && latest.ID == logID {
		rollback := domain.TicketStatusOpen
		if len(ticket.Logs) > 1 {
			rollback = ticket.Logs[len(ticket.Logs)-2].NewStatus
		}
		if err := s.tickets.SetStatus(ctx, ticketID, rollback); err != nil {
			return nil, errorutil.MapError(err)
		}
	}
	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return updated, nil
}

// SetArchived moves a ticket in or out of the archive.
func (s *TransitionService) SetArchived(ctx context.Context, actor *domain.Employee, ticketID string, archived bool) error {
	if actor == nil || !actor.IsServiceDesk() {
		return errorutil.NewForbidden("only service desk employees can archive tickets")
	}
	if err := s.tickets.SetArchived(ctx, ticketID, archived); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}

func (s *TransitionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}

// findLog returns the log with the given id, or nil. Logs are ordered by
// creation time ascending, matching the repository's read order.
func findLog(logs []domain.Log, logID string) *domain.Log {
	for i := range logs {
		if logs[i].ID == logID {
			return &logs[i]
		}
	}
	return nil
}

func latestLog(logs []domain.Log) *domain.Log {
	if len(logs) == 0 {
		return nil
	}
	return &logs[len(logs)-1]
}
