package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/markvl91/helpdesk-service/internal/api/dto"
	"github.com/markvl91/helpdesk-service/internal/auth"
	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/repository"
	"github.com/markvl91/helpdesk-service/internal/service"
)

// EmployeesHandler exposes account administration endpoints. Routes using
// it sit behind the service-desk capability guard, except Me.
type EmployeesHandler struct {
	employees *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees}
}

// Me handles GET /employees/me.
func (h *EmployeesHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(principal.Employee)})
}

// Create handles POST /employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	employee, err := h.employees.Create(c.Context(), service.CreateEmployeeInput{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Password:           req.Password,
		Capability:         req.Capability,
		ManagedEmployeeIDs: req.ManagedEmployeeIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// List handles GET /employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	filter := repository.EmployeeFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if capability := c.Query("capability"); capability != "" {
		value := domain.EmployeeCapability(capability)
		filter.Capability = &value
	}
	if status := c.Query("status"); status != "" {
		value := domain.EmployeeStatus(status)
		filter.Status = &value
	}

	employees, err := h.employees.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponses(employees)})
}

// Get handles GET /employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	employee, err := h.employees.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// Update handles PUT /employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	employee, err := h.employees.Update(c.Context(), c.Params("id"), service.UpdateEmployeeInput{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Password:           req.Password,
		Capability:         req.Capability,
		ManagedEmployeeIDs: req.ManagedEmployeeIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// SetStatus handles PUT /employees/:id/status.
func (h *EmployeesHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.EmployeeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == "" {
		return fiber.NewError(http.StatusBadRequest, "status required")
	}

	employee, err := h.employees.SetStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// ListManaged handles GET /employees/:id/managed.
func (h *EmployeesHandler) ListManaged(c *fiber.Ctx) error {
	managed, err := h.employees.GetManagedEmployees(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponses(managed)})
}

// Delete handles DELETE /employees/:id.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	if err := h.employees.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
