package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/pkg/errorutil"
)

func newTransitionFixture() (*TransitionService, *memTicketRepo, *memRequestRepo, *memEmployeeRepo) {
	tickets := newMemTicketRepo()
	requests := newMemRequestRepo()
	employees := newMemEmployeeRepo()
	svc := NewTransitionService(TransitionDependencies{
		Tickets:  tickets,
		Requests: requests,
		Policy:   NewFirstServiceDeskPolicy(employees),
		Logger:   zap.NewNop(),
	})
	return svc, tickets, requests, employees
}

func TestApplyLogAppendsEntryAndMovesStatus(t *testing.T) {
	svc, tickets, _, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "printer down"})

	updated, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "replaced toner", domain.TicketStatusResolved)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.Len(t, updated.Logs, 1)
	assert.Equal(t, "replaced toner", updated.Logs[0].Description)
	assert.Equal(t, domain.TicketStatusResolved, updated.Logs[0].NewStatus)
	assert.Equal(t, actor.ID, updated.Logs[0].CreatedByID)
}

func TestApplyLogFulfillsRequestsAddressedToActor(t *testing.T) {
	svc, tickets, requests, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	sender := employees.add(serviceDeskEmployee("sender@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "vpn broken"})

	open := requests.add(domain.TicketRequest{
		SenderID: sender.ID, RecipientID: actor.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusOpen,
	})
	accepted := requests.add(domain.TicketRequest{
		SenderID: sender.ID, RecipientID: actor.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusAccepted,
	})

	_, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "fixed", domain.TicketStatusClosed)
	require.NoError(t, err)

	for _, id := range []string{open.ID, accepted.ID} {
		got, err := requests.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusFulfilled, got.Status)
	}
}

func TestApplyLogCancelsRequestsAddressedToOthers(t *testing.T) {
	svc, tickets, requests, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	other := employees.add(serviceDeskEmployee("other@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "laptop slow"})

	pending := requests.add(domain.TicketRequest{
		SenderID: actor.ID, RecipientID: other.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusOpen,
	})
	rejected := requests.add(domain.TicketRequest{
		SenderID: actor.ID, RecipientID: other.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusRejected,
	})

	_, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "handled elsewhere", domain.TicketStatusResolved)
	require.NoError(t, err)

	got, err := requests.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCancelled, got.Status)

	// settled requests stay as they were
	got, err = requests.GetByID(context.Background(), rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, got.Status)
}

func TestApplyLogReopeningResolvesNothing(t *testing.T) {
	svc, tickets, requests, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "monitor flicker", Status: domain.TicketStatusClosed})

	pending := requests.add(domain.TicketRequest{
		SenderID: "someone", RecipientID: actor.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusOpen,
	})

	updated, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "issue is back", domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)

	got, err := requests.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusOpen, got.Status)
}

func TestApplyLogRequiresServiceDesk(t *testing.T) {
	svc, tickets, _, employees := newTransitionFixture()
	actor := employees.add(normalEmployee("user@corp.test"))
	ticket := tickets.add(domain.Ticket{Title: "keyboard broken"})

	_, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "done", domain.TicketStatusClosed)
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "FORBIDDEN"))
}

func TestApplyLogUnknownTicket(t *testing.T) {
	svc, _, _, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))

	_, err := svc.ApplyLog(context.Background(), &actor, "missing", "done", domain.TicketStatusClosed)
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "NOT_FOUND"))
}

func TestEscalateRedirectsAndRequestsReview(t *testing.T) {
	svc, tickets, requests, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	manager := employees.add(serviceDeskEmployee("manager@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "mail outage"})

	pending := requests.add(domain.TicketRequest{
		SenderID: manager.ID, RecipientID: actor.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusAccepted,
	})

	message, err := svc.Escalate(context.Background(), &actor, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ticket escalated successfully and request sent to management.", message)

	updated, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, updated.Status)
	assert.Empty(t, updated.Logs, "escalation does not write a log entry")

	got, err := requests.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRedirected, got.Status)

	created, err := requests.ListByRecipient(context.Background(), manager.ID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	review := created[0]
	assert.Equal(t, actor.ID, review.SenderID)
	assert.Equal(t, domain.RequestStatusOpen, review.Status)
	assert.Equal(t, "Ticket 'mail outage' has been escalated for review.", review.Message)
}

func TestEscalateWithoutEligibleRecipientStillStands(t *testing.T) {
	svc, tickets, requests, employees := newTransitionFixture()
	// the actor is the only service desk employee, so the policy finds no one
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "disk full"})

	message, err := svc.Escalate(context.Background(), &actor, ticket.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, message)

	updated, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, updated.Status)

	all, err := requests.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCloseTicketWritesNoLogButCascades(t *testing.T) {
	svc, tickets, requests, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "projector broken"})

	pending := requests.add(domain.TicketRequest{
		SenderID: "someone", RecipientID: actor.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusOpen,
	})

	updated, err := svc.CloseTicket(context.Background(), &actor, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	assert.Empty(t, updated.Logs)

	got, err := requests.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusFulfilled, got.Status)
}

func TestApplyLogSurvivesCascadeFailure(t *testing.T) {
	tickets := newMemTicketRepo()
	requests := &failingRequestRepo{
		memRequestRepo:  newMemRequestRepo(),
		updateStatusErr: errors.New("connection reset"),
	}
	employees := newMemEmployeeRepo()
	svc := NewTransitionService(TransitionDependencies{
		Tickets:  tickets,
		Requests: requests,
		Policy:   NewFirstServiceDeskPolicy(employees),
		Logger:   zap.NewNop(),
	})
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "vpn broken"})
	pending := requests.add(domain.TicketRequest{
		SenderID: "someone", RecipientID: actor.ID, TicketID: ticket.ID,
		Status: domain.RequestStatusOpen,
	})

	updated, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "fixed", domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	require.Len(t, updated.Logs, 1)

	// the failed cascade write left the request as it was
	got, err := requests.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusOpen, got.Status)
}

func TestApplyLogSurfacesAppendFailure(t *testing.T) {
	tickets := &failingTicketRepo{
		memTicketRepo: newMemTicketRepo(),
		appendLogErr:  errors.New("connection reset"),
	}
	requests := newMemRequestRepo()
	employees := newMemEmployeeRepo()
	svc := NewTransitionService(TransitionDependencies{
		Tickets:  tickets,
		Requests: requests,
		Policy:   NewFirstServiceDeskPolicy(employees),
		Logger:   zap.NewNop(),
	})
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "vpn broken"})

	updated, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "fixed", domain.TicketStatusClosed)
	require.Error(t, err)
	assert.Nil(t, updated)
	assert.True(t, errorutil.IsCode(err, "INTERNAL_ERROR"))
}

func TestSetArchivedRoundTrip(t *testing.T) {
	svc, tickets, _, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	viewer := employees.add(normalEmployee("user@corp.test"))
	ticket := tickets.add(domain.Ticket{Title: "old incident"})

	err := svc.SetArchived(context.Background(), &viewer, ticket.ID, true)
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "FORBIDDEN"))

	require.NoError(t, svc.SetArchived(context.Background(), &actor, ticket.ID, true))
	got, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	require.NoError(t, svc.SetArchived(context.Background(), &actor, ticket.ID, false))
	got, err = tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.False(t, got.Archived)
}

func TestEditFieldsSkipsUnchangedInput(t *testing.T) {
	svc, tickets, _, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{
		Title: "wifi drops", Description: "third floor", Priority: domain.TicketPriorityLow,
	})

	unchanged, err := svc.EditFields(context.Background(), &actor, ticket.ID, "wifi drops", "third floor", domain.TicketPriorityLow)
	require.NoError(t, err)
	assert.Equal(t, ticket.UpdatedAt, unchanged.UpdatedAt)

	updated, err := svc.EditFields(context.Background(), &actor, ticket.ID, "wifi drops", "third floor", domain.TicketPriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
}

func TestDeleteLatestLogRollsStatusBack(t *testing.T) {
	svc, tickets, _, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "slow build agents"})

	first, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "investigating", domain.TicketStatusEscalated)
	require.NoError(t, err)
	second, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "done", domain.TicketStatusResolved)
	require.NoError(t, err)
	require.Len(t, second.Logs, 2)

	updated, err := svc.DeleteLog(context.Background(), &actor, ticket.ID, second.Logs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, first.Logs[0].NewStatus, updated.Status)
	require.Len(t, updated.Logs, 1)

	updated, err = svc.DeleteLog(context.Background(), &actor, ticket.ID, updated.Logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	assert.Empty(t, updated.Logs)
}

func TestEditLatestLogMovesStatus(t *testing.T) {
	svc, tickets, _, employees := newTransitionFixture()
	actor := employees.add(serviceDeskEmployee("agent@desk.test"))
	ticket := tickets.add(domain.Ticket{Title: "license expired"})

	applied, err := svc.ApplyLog(context.Background(), &actor, ticket.ID, "renewed", domain.TicketStatusResolved)
	require.NoError(t, err)

	updated, err := svc.EditLog(context.Background(), &actor, ticket.ID, applied.Logs[0].ID, "renewed and verified", domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	assert.Equal(t, "renewed and verified", updated.Logs[0].Description)
}

func TestCascadeForStatusChangeTable(t *testing.T) {
	actorID := "actor"
	requests := []domain.TicketRequest{
		{ID: "to-actor-open", RecipientID: actorID, Status: domain.RequestStatusOpen},
		{ID: "to-actor-accepted", RecipientID: actorID, Status: domain.RequestStatusAccepted},
		{ID: "to-other", RecipientID: "other", Status: domain.RequestStatusOpen},
		{ID: "settled", RecipientID: actorID, Status: domain.RequestStatusFulfilled},
	}

	cases := []struct {
		name      string
		newStatus domain.TicketStatus
		want      map[string]domain.TicketRequestStatus
	}{
		{
			name:      "closing fulfills own and cancels others",
			newStatus: domain.TicketStatusClosed,
			want: map[string]domain.TicketRequestStatus{
				"to-actor-open":     domain.RequestStatusFulfilled,
				"to-actor-accepted": domain.RequestStatusFulfilled,
				"to-other":          domain.RequestStatusCancelled,
			},
		},
		{
			name:      "escalating only cancels others",
			newStatus: domain.TicketStatusEscalated,
			want: map[string]domain.TicketRequestStatus{
				"to-other": domain.RequestStatusCancelled,
			},
		},
		{
			name:      "reopening touches nothing",
			newStatus: domain.TicketStatusOpen,
			want:      map[string]domain.TicketRequestStatus{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := map[string]domain.TicketRequestStatus{}
			for _, transition := range cascadeForStatusChange(requests, actorID, tc.newStatus) {
				got[transition.RequestID] = transition.NewStatus
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
