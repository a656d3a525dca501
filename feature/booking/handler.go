package booking

import (
	"strconv"
	"time"

	"rental-sync/core/logger"
	"rental-sync/core/storage/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for units, bookings and provisionals.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the booking routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	units := app.Group("/units")
	units.Get("/", h.HandleListUnits)
	units.Post("/", h.HandleCreateUnit)
	units.Delete("/:id", h.HandleDeleteUnit)
	units.Get("/:id/bookings", h.HandleListBookings)
	units.Get("/:id/blocks/uncovered", h.HandleUncoveredBlocks)

	app.Post("/bookings/:id/cancellation-quote", h.HandleCancellationQuote)
	app.Post("/provisionals", h.HandleIngestProvisional)
}

// HandleListUnits returns all rental units.
func (h *Handler) HandleListUnits(c *fiber.Ctx) error {
	units, err := h.service.ListUnits(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(units)
}

// HandleCreateUnit creates a rental unit.
func (h *Handler) HandleCreateUnit(c *fiber.Ctx) error {
	var unit models.Unit
	if err := c.BodyParser(&unit); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.CreateUnit(c.Context(), &unit); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(unit)
}

// HandleDeleteUnit removes a rental unit.
func (h *Handler) HandleDeleteUnit(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid unit id"})
	}
	if err := h.service.DeleteUnit(c.Context(), uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListBookings returns the canonical bookings of a unit.
func (h *Handler) HandleListBookings(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid unit id"})
	}

	bookings, err := h.service.ListBookings(c.Context(), uint(id))
	if err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Listing bookings failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(bookings)
}

// HandleUncoveredBlocks returns blocks not explained by a confirmed booking.
func (h *Handler) HandleUncoveredBlocks(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid unit id"})
	}

	blocks, err := h.service.UncoveredBlocks(c.Context(), uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(blocks)
}

// cancellationQuoteRequest is the body of a cancellation-quote request.
type cancellationQuoteRequest struct {
	Policy CancellationPolicy `json:"policy"`
	// At is the cancellation moment (RFC 3339); defaults to now.
	At string `json:"at,omitempty"`
}

// HandleCancellationQuote evaluates a cancellation policy for a booking.
func (h *Handler) HandleCancellationQuote(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid booking id"})
	}

	var req cancellationQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	at := time.Now().UTC()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid 'at' timestamp"})
		}
		at = parsed
	}

	result, err := h.service.CancellationQuote(c.Context(), uint(id), req.Policy, at)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// HandleIngestProvisional records an out-of-band reservation signal.
func (h *Handler) HandleIngestProvisional(c *fiber.Ctx) error {
	var prov models.ProvisionalBooking
	if err := c.BodyParser(&prov); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.IngestProvisional(c.Context(), &prov); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(prov)
}
