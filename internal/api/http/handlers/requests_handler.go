package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/markvl91/helpdesk-service/internal/api/dto"
	"github.com/markvl91/helpdesk-service/internal/auth"
	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/service"
)

// RequestsHandler exposes the ticket request endpoints.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requests *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requests}
}

// Create handles POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.CreateTicketRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.TicketID == "" {
		return fiber.NewError(http.StatusBadRequest, "ticket_id required")
	}

	request, err := h.requests.Create(c.Context(), principal.Employee, service.CreateRequestInput{
		RecipientEmail: req.RecipientEmail,
		TicketID:       req.TicketID,
		Message:        req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketRequestResponse(request)})
}

// Get handles GET /requests/:id, returning the request together with the
// caller's perspective on it.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	view, err := h.requests.GetViewContext(c.Context(), principal.Employee, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RequestViewContextResponse{
		Request:     dto.NewTicketRequestResponse(view.Request),
		Perspective: string(view.Perspective),
	}})
}

// ListReceived handles GET /requests/received.
func (h *RequestsHandler) ListReceived(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	requests, err := h.requests.ListReceived(c.Context(), principal.Employee)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketRequestResponses(requests)})
}

// ListSent handles GET /requests/sent.
func (h *RequestsHandler) ListSent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	requests, err := h.requests.ListSent(c.Context(), principal.Employee)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketRequestResponses(requests)})
}

// ListByTicket handles GET /service-desk/tickets/:id/requests.
func (h *RequestsHandler) ListByTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	requests, err := h.requests.ListByTicket(c.Context(), principal.Employee, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketRequestResponses(requests)})
}

// Accept handles POST /requests/:id/accept.
func (h *RequestsHandler) Accept(c *fiber.Ctx) error {
	return h.transition(c, h.requests.Accept)
}

// Reject handles POST /requests/:id/reject.
func (h *RequestsHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.requests.Reject)
}

// Fail handles POST /requests/:id/fail.
func (h *RequestsHandler) Fail(c *fiber.Ctx) error {
	return h.transition(c, h.requests.Fail)
}

// Delete handles DELETE /requests/:id.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	if err := h.requests.Delete(c.Context(), principal.Employee, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetArchived handles PUT /requests/:id/archive.
func (h *RequestsHandler) SetArchived(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.ArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.requests.SetArchived(c.Context(), principal.Employee, c.Params("id"), req.Archived); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *RequestsHandler) transition(c *fiber.Ctx, fn func(context.Context, *domain.Employee, string) (*domain.TicketRequest, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	request, err := fn(c.Context(), principal.Employee, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketRequestResponse(request)})
}
