package departures

import (
	"errors"

	"travel-ops/core/logger"
	"travel-ops/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for packages and departures.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the package and departure routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	packages := app.Group("/packages")
	packages.Post("/", h.HandleCreatePackage)
	packages.Get("/:id", h.HandleGetPackage)
	packages.Put("/:id/flights", h.HandleUpdateFlights)

	departures := app.Group("/departures")
	departures.Get("/", h.HandleListDepartures)
	departures.Patch("/:id/status", h.HandleSetStatus)
	departures.Post("/:id/suppliers", h.HandleAddSupplier)
	departures.Post("/:id/cost-lines", h.HandleAddCostLine)
	departures.Post("/:id/timeline", h.HandleAddTimelineItem)
}

type createPackageRequest struct {
	Status  string                    `json:"status"`
	Flights []reconcile.FlightSegment `json:"flights"`
}

// updateFlightsRequest keeps Flights a pointer: an absent list is rejected,
// an empty one removes every departure.
type updateFlightsRequest struct {
	Flights *[]reconcile.FlightSegment `json:"flights"`
}

type setStatusRequest struct {
	Status reconcile.Status `json:"status"`
	// ClearValidation resets the validation date, the equivalent of sending
	// validationDate: null.
	ClearValidation bool `json:"clearValidation"`
}

// HandleCreatePackage creates a package and its departures.
func (h *Handler) HandleCreatePackage(c *fiber.Ctx) error {
	var req createPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	pkg, err := h.service.CreatePackage(c.UserContext(), req.Status, req.Flights)
	if err != nil {
		return h.fail(c, "Create package failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(pkg)
}

// HandleGetPackage returns a package with its departures.
func (h *Handler) HandleGetPackage(c *fiber.Ctx) error {
	pkg, err := h.service.GetPackage(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Get package failed", err)
	}
	return c.JSON(pkg)
}

// HandleUpdateFlights reconciles a package's departures with a new flight list.
// With ?dry_run=true the plan is returned without being applied.
func (h *Handler) HandleUpdateFlights(c *fiber.Ctx) error {
	var req updateFlightsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Flights == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "flights is required"})
	}

	dryRun := c.QueryBool("dry_run", false)
	plan, err := h.service.UpdateFlights(c.UserContext(), c.Params("id"), *req.Flights, reconcile.Options{
		DryRun:    dryRun,
		Confirmed: !dryRun,
	})
	if err != nil {
		return h.fail(c, "Update flights failed", err)
	}
	return c.JSON(fiber.Map{"dry_run": dryRun, "plan": plan})
}

// HandleListDepartures lists all departures by date.
func (h *Handler) HandleListDepartures(c *fiber.Ctx) error {
	list, err := h.service.ListDepartures(c.UserContext())
	if err != nil {
		return h.fail(c, "List departures failed", err)
	}
	return c.JSON(list)
}

// HandleSetStatus transitions a departure's validation status.
func (h *Handler) HandleSetStatus(c *fiber.Ctx) error {
	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	d, err := h.service.SetDepartureStatus(c.UserContext(), c.Params("id"), req.Status, req.ClearValidation)
	if err != nil {
		return h.fail(c, "Set departure status failed", err)
	}
	return c.JSON(d)
}

// HandleAddSupplier attaches a supplier link to a departure.
func (h *Handler) HandleAddSupplier(c *fiber.Ctx) error {
	var req reconcile.SupplierLink
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	link, err := h.service.AddSupplierLink(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Add supplier failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// HandleAddCostLine attaches a cost line to a departure.
func (h *Handler) HandleAddCostLine(c *fiber.Ctx) error {
	var req reconcile.CostLine
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	line, err := h.service.AddCostLine(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Add cost line failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

// HandleAddTimelineItem appends an entry to a departure's timeline.
func (h *Handler) HandleAddTimelineItem(c *fiber.Ctx) error {
	var req reconcile.TimelineItem
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	item, err := h.service.AddTimelineItem(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Add timeline item failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// fail maps service errors to HTTP statuses.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrPackageNotFound), errors.Is(err, ErrDepartureNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidInput):
		status = fiber.StatusBadRequest
	}

	l := logger.WithRayID(h.service.logger, c)
	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
