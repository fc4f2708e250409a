// Package handlers adapts the capability middleware onto HTTP: a single
// POST /rpc endpoint dispatching every safe, internal, and restricted
// method through application.Controller.Middleware, plus the admin surface
// for inspecting and mutating the permission store and resolving pending
// approval requests.
package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/opena2a/rpc-capabilities/internal/application"
	"github.com/opena2a/rpc-capabilities/internal/domain"
	"github.com/opena2a/rpc-capabilities/internal/interfaces/http/middleware"
)

// RPCHandlers wraps the Controller for the transport layer.
type RPCHandlers struct {
	controller *application.Controller
}

// NewRPCHandlers wraps controller.
func NewRPCHandlers(controller *application.Controller) *RPCHandlers {
	return &RPCHandlers{controller: controller}
}

// rpcRequestBody is the wire shape of a POST /rpc call.
type rpcRequestBody struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     any    `json:"id"`
}

// Dispatch runs one request through the caller's Controller.Middleware and
// writes back whatever domain.Response it produces with status 200 (the JSON
// body's error field carries the protocol-level outcome, same as every
// restricted-method failure). Only a request that never reaches the
// middleware gets another status: 401 for an unresolved origin, 400 for a
// malformed body or a missing method.
func (h *RPCHandlers) Dispatch(c fiber.Ctx) error {
	meta, ok := middleware.OriginFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "origin not resolved"})
	}

	var body rpcRequestBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Method == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "method is required"})
	}

	req := &domain.Request{Method: body.Method, Params: body.Params, ID: body.ID}
	res := &domain.Response{}

	done := make(chan struct{})
	mw := h.controller.Middleware(meta)
	domain.RunPipeline([]domain.MiddlewareFunc{mw}, req, res, func() { close(done) })
	<-done

	return c.Status(fiber.StatusOK).JSON(res)
}
