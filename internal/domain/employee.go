package domain

import "time"

// EmployeeCapability distinguishes regular employees from service-desk staff.
type EmployeeCapability string

const (
	CapabilityNormal      EmployeeCapability = "NORMAL"
	CapabilityServiceDesk EmployeeCapability = "SERVICE_DESK"
)

// EmployeeStatus enumerates account lifecycle states.
type EmployeeStatus string

const (
	EmployeeStatusActive      EmployeeStatus = "ACTIVE"
	EmployeeStatusDeactivated EmployeeStatus = "DEACTIVATED"
	EmployeeStatusArchived    EmployeeStatus = "ARCHIVED"
)

// Employee models an account that can log in, open tickets and, when
// service-desk-capable, manage tickets and receive ticket requests.
// ManagedEmployeeIDs is meaningful only when Capability is SERVICE_DESK.
type Employee struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	PasswordHash       string
	Capability         EmployeeCapability
	Status             EmployeeStatus
	ManagedEmployeeIDs []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsServiceDesk reports whether the employee may manage tickets and
// receive ticket requests.
func (e *Employee) IsServiceDesk() bool {
	return e != nil && e.Capability == CapabilityServiceDesk
}

// FullName joins first and last name for display.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
