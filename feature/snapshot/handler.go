package snapshot

import (
	"errors"

	"travel-ops/core/logger"
	"travel-ops/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the state snapshot.
type Handler struct {
	manager *Manager
}

// NewHandler creates a new HTTP handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes registers the snapshot routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/snapshot")
	group.Get("/", h.HandleGetSnapshot)
	group.Get("/status", h.HandleStatus)
	group.Post("/reload", h.HandleReload)
	group.Put("/packages/:id/flights", h.HandleUpdateFlights)
	group.Patch("/packages/:id/groups/:groupId/status", h.HandleSetGroupStatus)
}

// HandleGetSnapshot returns the migrated state.
func (h *Handler) HandleGetSnapshot(c *fiber.Ctx) error {
	state, err := h.manager.State(c.UserContext())
	if err != nil {
		return h.fail(c, "Snapshot load failed", err)
	}
	return c.JSON(state)
}

// HandleStatus reports schema version and collection sizes.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.manager.Status())
}

// HandleReload rehydrates the state from the backend.
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	if _, err := h.manager.Load(c.UserContext()); err != nil {
		return h.fail(c, "Snapshot reload failed", err)
	}
	return c.JSON(h.manager.Status())
}

// HandleUpdateFlights reconciles a package's ops groups with a new flight list.
func (h *Handler) HandleUpdateFlights(c *fiber.Ctx) error {
	var req struct {
		Flights *[]reconcile.FlightSegment `json:"flights"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Flights == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "flights is required"})
	}

	dryRun := c.QueryBool("dry_run", false)
	var (
		plan *reconcile.Plan
		err  error
	)
	if dryRun {
		plan, err = h.manager.PlanFlights(c.UserContext(), c.Params("id"), *req.Flights)
	} else {
		plan, err = h.manager.UpdateFlights(c.UserContext(), c.Params("id"), *req.Flights)
	}
	if err != nil {
		return h.fail(c, "Snapshot flight update failed", err)
	}
	return c.JSON(fiber.Map{"dry_run": dryRun, "plan": plan})
}

// HandleSetGroupStatus transitions an ops group.
func (h *Handler) HandleSetGroupStatus(c *fiber.Ctx) error {
	var req struct {
		Status          reconcile.Status `json:"status"`
		ClearValidation bool             `json:"clearValidation"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	group, err := h.manager.SetGroupStatus(c.UserContext(), c.Params("id"), c.Params("groupId"), req.Status, req.ClearValidation)
	if err != nil {
		return h.fail(c, "Snapshot status update failed", err)
	}
	return c.JSON(group)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrPackageNotFound), errors.Is(err, ErrGroupNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidStatus):
		status = fiber.StatusBadRequest
	}

	l := logger.WithRayID(h.manager.logger, c)
	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
