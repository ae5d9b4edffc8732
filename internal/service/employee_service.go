package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/markvl91/helpdesk-service/internal/auth"
	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/repository"
	"github.com/markvl91/helpdesk-service/pkg/errorutil"
)

// EmployeeDependencies wires the employee service.
type EmployeeDependencies struct {
	Employees  repository.EmployeeRepository
	BcryptCost int
	Logger     *zap.Logger
}

// EmployeeService manages employee accounts. Account administration is a
// service desk concern; the handlers enforce that, the service enforces the
// data rules.
type EmployeeService struct {
	employees  repository.EmployeeRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewEmployeeService builds the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	return &EmployeeService{
		employees:  deps.Employees,
		bcryptCost: deps.BcryptCost,
		logger:     deps.Logger,
	}
}

// CreateEmployeeInput carries a new account's fields.
type CreateEmployeeInput struct {
	FirstName          string
	LastName           string
	Email              string
	Password           string
	Capability         domain.EmployeeCapability
	ManagedEmployeeIDs []string
}

// UpdateEmployeeInput carries account edits. A nil pointer leaves the
// field as it is; a non-empty Password rehashes.
type UpdateEmployeeInput struct {
	FirstName          *string
	LastName           *string
	Email              *string
	Password           string
	Capability         *domain.EmployeeCapability
	ManagedEmployeeIDs *[]string
}

// Create registers a new employee. Email addresses are unique across
// accounts regardless of status.
func (s *EmployeeService) Create(ctx context.Context, input CreateEmployeeInput) (*domain.Employee, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, errorutil.NewValidationError("email is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, errorutil.NewValidationError("password must be at least 8 characters", nil)
	}
	capability := input.Capability
	if capability == "" {
		capability = domain.CapabilityNormal
	}

	if existing, err := s.employees.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errorutil.NewConflict("an employee with that email already exists", map[string]any{"email": email})
	} else if err != nil && !errorutil.IsCode(errorutil.MapError(err), "NOT_FOUND") {
		return nil, errorutil.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	employee := &domain.Employee{
		FirstName:          strings.TrimSpace(input.FirstName),
		LastName:           strings.TrimSpace(input.LastName),
		Email:              email,
		PasswordHash:       hash,
		Capability:         capability,
		Status:             domain.EmployeeStatusActive,
		ManagedEmployeeIDs: input.ManagedEmployeeIDs,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.logger.Info("employee created",
		zap.String("employee_id", employee.ID),
		zap.String("capability", string(employee.Capability)))
	return employee, nil
}

// Update applies partial edits to an account.
func (s *EmployeeService) Update(ctx context.Context, employeeID string, input UpdateEmployeeInput) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, errorutil.NewValidationError("email cannot be empty", nil)
		}
		if email != employee.Email {
			if existing, err := s.employees.GetByEmail(ctx, email); err == nil && existing != nil {
				return nil, errorutil.NewConflict("an employee with that email already exists", map[string]any{"email": email})
			} else if err != nil && !errorutil.IsCode(errorutil.MapError(err), "NOT_FOUND") {
				return nil, errorutil.MapError(err)
			}
			employee.Email = email
		}
	}
	if input.FirstName != nil {
		employee.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		employee.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Capability != nil {
		employee.Capability = *input.Capability
	}
	if input.ManagedEmployeeIDs != nil {
		employee.ManagedEmployeeIDs = *input.ManagedEmployeeIDs
	}
	if input.Password != "" {
		if len(input.Password) < 8 {
			return nil, errorutil.NewValidationError("password must be at least 8 characters", nil)
		}
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, errorutil.NewInternalError(err)
		}
		employee.PasswordHash = hash
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, errorutil.MapError(err)
	}
	return employee, nil
}

// SetStatus activates, deactivates or archives an account. A deactivated
// account keeps its data but can no longer log in.
func (s *EmployeeService) SetStatus(ctx context.Context, employeeID string, status domain.EmployeeStatus) (*domain.Employee, error) {
	switch status {
	case domain.EmployeeStatusActive, domain.EmployeeStatusDeactivated, domain.EmployeeStatusArchived:
	default:
		return nil, errorutil.NewValidationError("unknown employee status", map[string]any{"status": string(status)})
	}

	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if employee.Status == status {
		return employee, nil
	}
	employee.Status = status
	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, errorutil.MapError(err)
	}
	return employee, nil
}

// GetByID loads one account.
func (s *EmployeeService) GetByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return employee, nil
}

// List returns accounts matching the filter.
func (s *EmployeeService) List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return employees, nil
}

// GetManagedEmployees resolves the accounts a manager is responsible for.
func (s *EmployeeService) GetManagedEmployees(ctx context.Context, managerID string) ([]domain.Employee, error) {
	manager, err := s.employees.GetByID(ctx, managerID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if len(manager.ManagedEmployeeIDs) == 0 {
		return []domain.Employee{}, nil
	}
	managed, err := s.employees.GetByIDs(ctx, manager.ManagedEmployeeIDs)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return managed, nil
}

// Delete removes an account permanently. Archiving is the usual path;
// deletion exists for accounts created in error.
func (s *EmployeeService) Delete(ctx context.Context, employeeID string) error {
	if err := s.employees.Delete(ctx, employeeID); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}
