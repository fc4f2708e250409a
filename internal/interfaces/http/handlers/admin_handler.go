package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/opena2a/rpc-capabilities/internal/application"
	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// AdminHandlers exposes the permission store and the pending-approval queue
// for operator inspection and the human decision a requestPermissions call
// blocks on. None of this is reachable through the capability middleware
// itself — it is the control plane sitting alongside it.
type AdminHandlers struct {
	controller *application.Controller
	broker     *application.ApprovalBroker
}

// NewAdminHandlers wraps controller and broker.
func NewAdminHandlers(controller *application.Controller, broker *application.ApprovalBroker) *AdminHandlers {
	return &AdminHandlers{controller: controller, broker: broker}
}

// ListDomains returns every origin currently holding at least one
// capability, and its full capability table.
func (h *AdminHandlers) ListDomains(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.controller.Store().GetDomains())
}

// GetDomain returns one origin's capability table.
func (h *AdminHandlers) GetDomain(c fiber.Ctx) error {
	origin := domain.Origin(c.Params("origin"))
	caps := h.controller.Store().GetPermissionsForDomain(origin)
	if caps == nil {
		caps = []domain.Capability{}
	}
	return c.Status(fiber.StatusOK).JSON(domain.DomainEntry{Permissions: caps})
}

// SetDomain overwrites one origin's entire capability table. Submitting an
// empty permissions list removes the domain entirely.
func (h *AdminHandlers) SetDomain(c fiber.Ctx) error {
	origin := domain.Origin(c.Params("origin"))

	var entry domain.DomainEntry
	if err := c.Bind().JSON(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	h.controller.Store().SetDomain(origin, entry)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "domain updated"})
}

// RevokeDomain removes one origin's capability table entirely.
func (h *AdminHandlers) RevokeDomain(c fiber.Ctx) error {
	origin := domain.Origin(c.Params("origin"))
	h.controller.Store().SetDomain(origin, domain.DomainEntry{})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "domain revoked"})
}

// ClearDomains replaces the entire registry with the empty mapping.
func (h *AdminHandlers) ClearDomains(c fiber.Ctx) error {
	h.controller.Store().ClearDomains()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "all domains cleared"})
}

// Descriptions returns the human-readable description registered for every
// restricted method.
func (h *AdminHandlers) Descriptions(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.controller.Store().PermissionsDescriptions())
}

// ListPendingRequests returns every permission request currently blocked on
// a human decision.
func (h *AdminHandlers) ListPendingRequests(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.broker.Pending())
}

// ApproveRequest resolves a pending request with the submitted subset of
// permissions (method -> requested caveats).
func (h *AdminHandlers) ApproveRequest(c fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := h.broker.Get(id); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "request not found or already resolved"})
	}

	var approved map[string]domain.RequestedPermission
	if err := c.Bind().JSON(&approved); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if !h.broker.Approve(id, approved) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "request already resolved"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "request approved"})
}

// RejectRequest resolves a pending request with an empty grant.
func (h *AdminHandlers) RejectRequest(c fiber.Ctx) error {
	id := c.Params("id")
	if !h.broker.Reject(id) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "request not found or already resolved"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "request rejected"})
}
