package service

import (
	"context"

	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/repository"
)

// EscalationPolicy selects the employee who receives the follow-up request
// when a ticket is escalated. Returning (nil, nil) means no eligible
// recipient exists; escalation then proceeds without a new request.
type EscalationPolicy interface {
	SelectRecipient(ctx context.Context, actorID string) (*domain.Employee, error)
}

// FirstServiceDeskPolicy picks the first active service-desk employee other
// than the escalating actor, in account creation order.
type FirstServiceDeskPolicy struct {
	employees repository.EmployeeRepository
}

// NewFirstServiceDeskPolicy builds the default policy.
func NewFirstServiceDeskPolicy(employees repository.EmployeeRepository) *FirstServiceDeskPolicy {
	return &FirstServiceDeskPolicy{employees: employees}
}

// SelectRecipient implements EscalationPolicy.
func (p *FirstServiceDeskPolicy) SelectRecipient(ctx context.Context, actorID string) (*domain.Employee, error) {
	capability := domain.CapabilityServiceDesk
	status := domain.EmployeeStatusActive
	candidates, err := p.employees.List(ctx, repository.EmployeeFilter{
		Capability: &capability,
		Status:     &status,
	})
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].ID != actorID {
			return &candidates[i], nil
		}
	}
	return nil, nil
}
