package channel

import (
	"strconv"

	"rental-sync/core/logger"
	"rental-sync/core/storage/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for channel connections.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the connection routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/connections")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList returns connections, optionally filtered by ?unit=.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	unitID, _ := strconv.Atoi(c.Query("unit", "0"))

	conns, err := h.service.List(c.Context(), uint(unitID))
	if err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Listing connections failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conns)
}

// HandleCreate creates a new connection.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var conn models.ChannelConnection
	if err := c.BodyParser(&conn); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.Create(c.Context(), &conn); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// HandleUpdate updates an existing connection.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid connection id"})
	}

	existing, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if existing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "connection not found"})
	}

	var conn models.ChannelConnection
	if err := c.BodyParser(&conn); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	conn.ID = uint(id)
	if conn.UnitID == 0 {
		conn.UnitID = existing.UnitID
	}

	if err := h.service.Update(c.Context(), &conn); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conn)
}

// HandleDelete removes a connection, its raw events and re-reconciles the
// unit.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid connection id"})
	}

	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Delete(c.Context(), uint(id)); err != nil {
		l.Error("Connection delete failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
