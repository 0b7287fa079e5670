package partner

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/meatkart/meat-delivery-backend/internal/auth"
	"github.com/meatkart/meat-delivery-backend/internal/tracking"
)

// Handler exposes the partner-facing presence and location endpoints.
type Handler struct {
	service  *Service
	tracking *tracking.Store
}

func NewHandler(s *Service, t *tracking.Store) *Handler {
	return &Handler{service: s, tracking: t}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	grp := app.Group("/api/v1/delivery", auth.RequireRole(auth.RolePartner))
	grp.Put("/status", h.setStatus)
	grp.Post("/location", h.setLocation)
	grp.Get("/me", h.getProfile)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c *fiber.Ctx) error {
	partnerID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	p, err := h.service.SetStatus(partnerID, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "status must be online or offline"})
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "delivery partner not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"success": true, "partner": p})
}

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) setLocation(c *fiber.Ctx) error {
	partnerID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}

	payload := new(locationRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if err := h.tracking.SetLocation(c.Context(), partnerID, payload.Latitude, payload.Longitude); err != nil {
		// location is advisory; losing an update is not worth failing the request
		log.Printf("partner %d: store location: %v", partnerID, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	partnerID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}

	p, err := h.service.GetByID(partnerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "delivery partner not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "partner": p})
}
