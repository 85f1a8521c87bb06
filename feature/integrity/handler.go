package integrity

import (
	"errors"

	"travel-ops/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/server", h.HandleServerCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/snapshot", h.HandleSnapshotCheck)
}

// HandleIntegrityCheck runs every check. A failing check is reported in its
// section and does not fail the request.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := make(map[string]interface{})

	if srvReport, err := h.service.CheckServer(); err != nil {
		report["server"] = errorSection(err)
	} else {
		report["server"] = srvReport
	}

	if stReport, err := h.service.CheckStorage(ctx); err != nil {
		report["storage"] = errorSection(err)
	} else {
		report["storage"] = stReport
	}

	if snapReport, err := h.service.CheckSnapshot(ctx); err != nil {
		report["snapshot"] = errorSection(err)
	} else {
		report["snapshot"] = snapReport
	}

	return c.JSON(report)
}

func errorSection(err error) map[string]interface{} {
	status := "error"
	if errors.Is(err, ErrNotConfigured) {
		status = "skipped"
	}
	return map[string]interface{}{"status": status, "error": err.Error()}
}

// HandleServerCheck checks the departure tables' schema.
func (h *Handler) HandleServerCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting server schema check")

	report, err := h.service.CheckServer()
	if err != nil {
		return h.fail(c, "Server schema check failed", err)
	}
	if !report.Matched {
		l.Warn("Schema drift detected", zap.Strings("errors", report.Errors))
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the snapshot bucket.
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.QueryBool("fix", false)

	report, err := h.service.CheckStorage(c.UserContext())
	if err != nil {
		return h.fail(c, "Storage check failed", err)
	}

	if !report.BucketExists && fix {
		l.Info("Attempting to create missing bucket", zap.String("bucket", report.Bucket))
		if err := h.service.FixStorage(c.UserContext()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to fix storage",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "fixed",
			"report": report,
		})
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"report": report,
	})
}

// HandleSnapshotCheck compares the stored snapshot version with the current one.
func (h *Handler) HandleSnapshotCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSnapshot(c.UserContext())
	if err != nil {
		return h.fail(c, "Snapshot check failed", err)
	}
	return c.JSON(report)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrNotConfigured) {
		status = fiber.StatusServiceUnavailable
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
