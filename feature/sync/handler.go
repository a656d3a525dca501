package sync

import (
	"errors"
	"strconv"

	"rental-sync/core/logger"
	"rental-sync/feature/channel"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync control and the settings surface.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/sync", h.HandleSyncNow)
	app.Get("/sync/status", h.HandleStatus)
	app.Put("/sync/interval", h.HandleSetInterval)
	app.Post("/network", h.HandleNetworkState)
	app.Get("/settings/minimal-bookings", h.HandleGetMinimalBookings)
	app.Put("/settings/minimal-bookings", h.HandleSetMinimalBookings)
}

// HandleSyncNow triggers one manual sync cycle, optionally scoped to a unit
// via the "unit" query parameter.
func (h *Handler) HandleSyncNow(c *fiber.Ctx) error {
	var unitID uint
	if raw := c.Query("unit"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid unit id"})
		}
		unitID = uint(id)
	}

	result, err := h.service.SyncNow(c.Context(), unitID)
	if err != nil {
		if errors.Is(err, channel.ErrOffline) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Manual sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// HandleStatus reports the scheduler state.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// intervalRequest is the body of an interval change.
type intervalRequest struct {
	Interval string `json:"interval"`
}

// HandleSetInterval reconfigures the sync interval.
func (h *Handler) HandleSetInterval(c *fiber.Ctx) error {
	var req intervalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.SetInterval(req.Interval); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(h.service.Status())
}

// networkRequest is the body of a network state change.
type networkRequest struct {
	Online bool `json:"online"`
}

// HandleNetworkState records the network state reported by the caller.
func (h *Handler) HandleNetworkState(c *fiber.Ctx) error {
	var req networkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	h.service.SetOnline(req.Online)
	return c.JSON(h.service.Status())
}

// HandleGetMinimalBookings reads the minimal-bookings toggle.
func (h *Handler) HandleGetMinimalBookings(c *fiber.Ctx) error {
	enabled, err := h.service.MinimalBookings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"enabled": enabled})
}

// settingRequest is the body of a toggle change.
type settingRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleSetMinimalBookings persists the minimal-bookings toggle.
func (h *Handler) HandleSetMinimalBookings(c *fiber.Ctx) error {
	var req settingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.SetMinimalBookings(c.Context(), req.Enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"enabled": req.Enabled})
}
