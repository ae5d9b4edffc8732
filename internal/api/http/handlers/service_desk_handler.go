package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/markvl91/helpdesk-service/internal/api/dto"
	"github.com/markvl91/helpdesk-service/internal/auth"
	"github.com/markvl91/helpdesk-service/internal/repository"
	"github.com/markvl91/helpdesk-service/internal/service"
)

// ServiceDeskHandler exposes the ticket management endpoints. Routes using
// it sit behind the service-desk capability guard.
type ServiceDeskHandler struct {
	tickets     *service.TicketService
	transitions *service.TransitionService
}

// NewServiceDeskHandler constructs handler.
func NewServiceDeskHandler(tickets *service.TicketService, transitions *service.TransitionService) *ServiceDeskHandler {
	return &ServiceDeskHandler{tickets: tickets, transitions: transitions}
}

// ListAll handles GET /service-desk/tickets. Sorting and the archive flag
// come from query parameters.
func (h *ServiceDeskHandler) ListAll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	sort := repository.TicketSort{
		Field:     c.Query("sort", "created_at"),
		Ascending: c.Query("order", "desc") == "asc",
	}
	archived := c.QueryBool("archived", false)

	tickets, err := h.tickets.ListAll(c.Context(), principal.Employee, archived, sort)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// ApplyLog handles POST /service-desk/tickets/:id/logs.
func (h *ServiceDeskHandler) ApplyLog(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.ApplyLogRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.NewStatus == "" {
		return fiber.NewError(http.StatusBadRequest, "new_status required")
	}

	ticket, err := h.transitions.ApplyLog(c.Context(), principal.Employee, c.Params("id"), req.Description, req.NewStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// Close handles POST /service-desk/tickets/:id/close.
func (h *ServiceDeskHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	ticket, err := h.transitions.CloseTicket(c.Context(), principal.Employee, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// Escalate handles POST /service-desk/tickets/:id/escalate.
func (h *ServiceDeskHandler) Escalate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	message, err := h.transitions.Escalate(c.Context(), principal.Employee, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": message}})
}

// Edit handles PUT /service-desk/tickets/:id.
func (h *ServiceDeskHandler) Edit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.EditTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Title == "" {
		return fiber.NewError(http.StatusBadRequest, "title required")
	}

	ticket, err := h.transitions.EditFields(c.Context(), principal.Employee, c.Params("id"), req.Title, req.Description, req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// EditLog handles PUT /service-desk/tickets/:id/logs/:logId.
func (h *ServiceDeskHandler) EditLog(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.EditLogRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.NewStatus == "" {
		return fiber.NewError(http.StatusBadRequest, "new_status required")
	}

	ticket, err := h.transitions.EditLog(c.Context(), principal.Employee, c.Params("id"), c.Params("logId"), req.Description, req.NewStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// DeleteLog handles DELETE /service-desk/tickets/:id/logs/:logId.
func (h *ServiceDeskHandler) DeleteLog(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	ticket, err := h.transitions.DeleteLog(c.Context(), principal.Employee, c.Params("id"), c.Params("logId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// SetArchived handles PUT /service-desk/tickets/:id/archive.
func (h *ServiceDeskHandler) SetArchived(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.ArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.transitions.SetArchived(c.Context(), principal.Employee, c.Params("id"), req.Archived); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
