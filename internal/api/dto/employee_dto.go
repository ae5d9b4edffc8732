package dto

import (
	"time"

	"github.com/markvl91/helpdesk-service/internal/domain"
)

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	FirstName          string                    `json:"first_name"`
	LastName           string                    `json:"last_name"`
	Email              string                    `json:"email"`
	Password           string                    `json:"password"`
	Capability         domain.EmployeeCapability `json:"capability"`
	ManagedEmployeeIDs []string                  `json:"managed_employee_ids"`
}

// UpdateEmployeeRequest payload; omitted fields stay unchanged.
type UpdateEmployeeRequest struct {
	FirstName          *string                    `json:"first_name"`
	LastName           *string                    `json:"last_name"`
	Email              *string                    `json:"email"`
	Password           string                     `json:"password"`
	Capability         *domain.EmployeeCapability `json:"capability"`
	ManagedEmployeeIDs *[]string                  `json:"managed_employee_ids"`
}

// EmployeeStatusRequest payload.
type EmployeeStatusRequest struct {
	Status domain.EmployeeStatus `json:"status"`
}

// EmployeeSummary is the embedded shape used inside ticket and request
// responses.
type EmployeeSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// EmployeeResponse is the full account shape.
type EmployeeResponse struct {
	ID                 string                    `json:"id"`
	FirstName          string                    `json:"first_name"`
	LastName           string                    `json:"last_name"`
	Email              string                    `json:"email"`
	Capability         domain.EmployeeCapability `json:"capability"`
	Status             domain.EmployeeStatus     `json:"status"`
	ManagedEmployeeIDs []string                  `json:"managed_employee_ids"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// NewEmployeeSummary maps an employee to the embedded shape; nil stays nil.
func NewEmployeeSummary(employee *domain.Employee) *EmployeeSummary {
	if employee == nil {
		return nil
	}
	return &EmployeeSummary{
		ID:       employee.ID,
		FullName: employee.FullName(),
		Email:    employee.Email,
	}
}

// NewEmployeeResponse maps an employee to the full shape.
func NewEmployeeResponse(employee *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                 employee.ID,
		FirstName:          employee.FirstName,
		LastName:           employee.LastName,
		Email:              employee.Email,
		Capability:         employee.Capability,
		Status:             employee.Status,
		ManagedEmployeeIDs: employee.ManagedEmployeeIDs,
		CreatedAt:          employee.CreatedAt,
		UpdatedAt:          employee.UpdatedAt,
	}
}

// NewEmployeeResponses maps a slice of employees.
func NewEmployeeResponses(employees []domain.Employee) []EmployeeResponse {
	result := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		result = append(result, NewEmployeeResponse(&employees[i]))
	}
	return result
}
