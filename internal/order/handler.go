package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meatkart/meat-delivery-backend/internal/auth"
	"github.com/meatkart/meat-delivery-backend/internal/metrics"
	"github.com/meatkart/meat-delivery-backend/internal/partner"
	"github.com/meatkart/meat-delivery-backend/internal/payment"
	"github.com/meatkart/meat-delivery-backend/internal/shop"
	"github.com/meatkart/meat-delivery-backend/internal/tracking"
	"github.com/meatkart/meat-delivery-backend/internal/user"
)

const ordersPerPage = 10

// Handler exposes the order endpoints for all three actors. Route groups
// are gated by the role claim; ownership checks live in the service.
type Handler struct {
	service  *Service
	tracking *tracking.Store
}

func NewHandler(s *Service, t *tracking.Store) *Handler {
	return &Handler{service: s, tracking: t}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	customer := app.Group("/api/v1/orders", auth.RequireRole(auth.RoleCustomer))
	customer.Post("/", h.createOrder)
	customer.Get("/", h.listOrders)
	customer.Post("/create-razorpay", h.createRazorpayOrder)
	customer.Post("/verify-payment", h.verifyPayment)
	// track matches on the human-facing code, so it must precede /:id
	customer.Get("/track/:orderId", h.trackOrder)
	customer.Get("/:id", h.getOrder)
	customer.Put("/:id/cancel", h.cancelOrder)

	admin := app.Group("/api/v1/admin/orders", auth.RequireRole(auth.RoleAdmin))
	admin.Put("/:id/status", h.adminUpdateStatus)
	admin.Put("/:id/assign", h.assignPartner)

	delivery := app.Group("/api/v1/delivery/orders", auth.RequireRole(auth.RolePartner))
	delivery.Put("/:id/status", h.partnerUpdateStatus)
}

type createOrderRequest struct {
	Items           []OrderItem     `json:"items"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	ShopID          int             `json:"shopId"`
	ShopName        string          `json:"shopName"`
	DeliveryFee     *float64        `json:"deliveryFee,omitempty"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("create", c.Response().StatusCode() < 300)
	}()

	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	if len(payload.Items) == 0 {
		return badRequest(c, ErrEmptyItems.Error())
	}
	if payload.DeliveryAddress.Address == "" {
		return badRequest(c, "delivery address is required")
	}

	var fee float64
	if payload.DeliveryFee != nil {
		if *payload.DeliveryFee < 0 {
			return badRequest(c, "delivery fee must be non-negative")
		}
		fee = *payload.DeliveryFee
	}

	ord, err := h.service.Create(CreateInput{
		UserID:      userID,
		Items:       payload.Items,
		Address:     payload.DeliveryAddress,
		ShopID:      payload.ShopID,
		ShopName:    payload.ShopName,
		DeliveryFee: fee,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "order": ord})
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("list", c.Response().StatusCode() < 300)
	}()

	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	page := c.QueryInt("page", 1)
	orders, total, err := h.service.ListForUser(userID, page, ordersPerPage)
	if err != nil {
		return errorResponse(c, err)
	}
	pages := (total + ordersPerPage - 1) / ordersPerPage
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
		"total":   total,
		"page":    page,
		"pages":   pages,
	})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	ord, err := h.service.GetForUser(userID, c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": ord})
}

func (h *Handler) trackOrder(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	ord, err := h.service.TrackForUser(userID, c.Params("orderId"))
	if err != nil {
		return errorResponse(c, err)
	}

	resp := fiber.Map{"success": true, "order": ord}
	if ord.DeliveryPartnerID != nil {
		loc, err := h.tracking.GetLocation(c.Context(), *ord.DeliveryPartnerID)
		if err == nil && loc != nil {
			resp["partnerLocation"] = loc
		}
	}
	return c.JSON(resp)
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("cancel", c.Response().StatusCode() < 300)
	}()

	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	ord, err := h.service.Cancel(userID, c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": ord})
}

type createRazorpayRequest struct {
	Amount  float64 `json:"amount"`
	OrderID string  `json:"orderId"`
}

func (h *Handler) createRazorpayOrder(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("initiate_payment", c.Response().StatusCode() < 300)
	}()

	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	payload := new(createRazorpayRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	if payload.OrderID == "" {
		return badRequest(c, "orderId is required")
	}

	gw, keyID, err := h.service.InitiatePayment(userID, payload.OrderID, payload.Amount)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": gw, "key_id": keyID})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"orderId"`
}

func (h *Handler) verifyPayment(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("verify_payment", c.Response().StatusCode() < 300)
	}()

	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	payload := new(verifyPaymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	if payload.OrderID == "" || payload.RazorpayOrderID == "" ||
		payload.RazorpayPaymentID == "" || payload.RazorpaySignature == "" {
		return badRequest(c, "missing payment verification fields")
	}

	ord, err := h.service.VerifyPayment(userID, payload.OrderID,
		payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.RazorpaySignature)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": ord})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) adminUpdateStatus(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("admin_status", c.Response().StatusCode() < 300)
	}()

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	target, ok := ParseStatus(payload.Status)
	if !ok {
		return badRequest(c, "invalid status value")
	}

	adminID, _ := auth.UserIDFromCtx(c)
	ord, err := h.service.TransitionStatus(c.Params("id"), target,
		Actor{Role: auth.RoleAdmin, UserID: adminID})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": ord})
}

type assignRequest struct {
	PartnerID int `json:"partnerId"`
}

func (h *Handler) assignPartner(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("assign", c.Response().StatusCode() < 300)
	}()

	payload := new(assignRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	if payload.PartnerID == 0 {
		return badRequest(c, "partnerId is required")
	}

	ord, err := h.service.AssignPartner(c.Params("id"), payload.PartnerID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": ord})
}

func (h *Handler) partnerUpdateStatus(c *fiber.Ctx) error {
	defer func() {
		metrics.RecordOrderOperation("partner_status", c.Response().StatusCode() < 300)
	}()

	partnerID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err.Error())
	}
	target, ok := ParseStatus(payload.Status)
	if !ok {
		return badRequest(c, "invalid status value")
	}

	ord, err := h.service.TransitionStatus(c.Params("id"), target,
		Actor{Role: auth.RolePartner, UserID: partnerID})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": ord})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false, "message": "unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false, "message": msg,
	})
}

// errorResponse maps service errors onto the shared error envelope.
func errorResponse(c *fiber.Ctx, err error) error {
	var code int
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, shop.ErrNotFound),
		errors.Is(err, partner.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, ErrEmptyItems),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrCannotCancel),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidSignature):
		code = fiber.StatusBadRequest
	case errors.Is(err, ErrNotAssigned):
		code = fiber.StatusForbidden
	case errors.Is(err, payment.ErrNotConfigured),
		errors.Is(err, payment.ErrGateway):
		code = fiber.StatusBadGateway
	default:
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "message": err.Error()})
}
