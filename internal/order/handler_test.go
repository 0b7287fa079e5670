package order

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// makeApp wires the handler behind a middleware that forges the jwtware
// token from headers, mirroring how the real middleware populates Locals.
func makeApp(f fixture) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				role := c.Get("X-Role")
				if role == "" {
					role = "customer"
				}
				claims := jwt.MapClaims{"user_id": id, "role": role}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	h := NewHandler(f.svc, nil)
	h.RegisterProtectedRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, userID int, role string) (map[string]any, int) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.Itoa(userID))
		req.Header.Set("X-Role", role)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	json.NewDecoder(res.Body).Decode(&out)
	return out, res.StatusCode
}

func createBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"productId": 1, "name": "Chicken Curry Cut", "price": 100, "quantity": 2},
			{"productId": 2, "name": "Eggs (6)", "price": 50, "quantity": 1},
		},
		"deliveryAddress": map[string]any{"label": "Home", "address": "12 MG Road"},
		"shopId":          3,
		"deliveryFee":     20,
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	app := makeApp(newFixture())

	out, code := doJSON(t, app, "POST", "/api/v1/orders/", createBody(), 7, "customer")
	if code != fiber.StatusCreated {
		t.Fatalf("status %d, want 201: %v", code, out)
	}
	if out["success"] != true {
		t.Fatalf("expected success envelope, got %v", out)
	}
	ord, _ := out["order"].(map[string]any)
	if ord["grandTotal"] != 282.5 {
		t.Errorf("grandTotal = %v, want 282.5", ord["grandTotal"])
	}
	if ord["status"] != "pending" {
		t.Errorf("status = %v, want pending", ord["status"])
	}
}

func TestCreateOrderEndpoint_EmptyItems(t *testing.T) {
	app := makeApp(newFixture())

	body := createBody()
	body["items"] = []map[string]any{}
	out, code := doJSON(t, app, "POST", "/api/v1/orders/", body, 7, "customer")
	if code != fiber.StatusBadRequest {
		t.Fatalf("status %d, want 400", code)
	}
	if out["success"] != false || out["message"] == "" {
		t.Fatalf("expected error envelope, got %v", out)
	}
}

func TestOrdersEndpoint_RoleGate(t *testing.T) {
	app := makeApp(newFixture())

	// partner token on a customer route
	_, code := doJSON(t, app, "POST", "/api/v1/orders/", createBody(), 11, "partner")
	if code != fiber.StatusForbidden {
		t.Fatalf("status %d, want 403", code)
	}

	// no token at all
	_, code = doJSON(t, app, "GET", "/api/v1/orders/", nil, 0, "")
	if code != fiber.StatusForbidden && code != fiber.StatusUnauthorized {
		t.Fatalf("status %d, want 401/403", code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	f := newFixture()
	app := makeApp(f)
	ord := f.createOrder(t)

	out, code := doJSON(t, app, "PUT", "/api/v1/orders/"+ord.ID+"/cancel", nil, 7, "customer")
	if code != fiber.StatusOK {
		t.Fatalf("status %d, want 200: %v", code, out)
	}

	out, code = doJSON(t, app, "PUT", "/api/v1/orders/"+ord.ID+"/cancel", nil, 7, "customer")
	if code != fiber.StatusBadRequest {
		t.Fatalf("second cancel status %d, want 400", code)
	}
	if out["message"] != "Cannot cancel this order" {
		t.Fatalf("message = %v", out["message"])
	}
}

func TestAdminStatusEndpoint(t *testing.T) {
	f := newFixture()
	app := makeApp(f)
	ord := f.createOrder(t)

	out, code := doJSON(t, app, "PUT", "/api/v1/admin/orders/"+ord.ID+"/status",
		map[string]any{"status": "confirmed"}, 1, "admin")
	if code != fiber.StatusOK {
		t.Fatalf("status %d, want 200: %v", code, out)
	}

	// skipping a state is rejected
	_, code = doJSON(t, app, "PUT", "/api/v1/admin/orders/"+ord.ID+"/status",
		map[string]any{"status": "delivered"}, 1, "admin")
	if code != fiber.StatusBadRequest {
		t.Fatalf("skip status %d, want 400", code)
	}

	// unknown status value
	_, code = doJSON(t, app, "PUT", "/api/v1/admin/orders/"+ord.ID+"/status",
		map[string]any{"status": "shipped"}, 1, "admin")
	if code != fiber.StatusBadRequest {
		t.Fatalf("bad value status %d, want 400", code)
	}
}

func TestAssignEndpoint_UnknownPartner(t *testing.T) {
	f := newFixture()
	app := makeApp(f)
	ord := f.createOrder(t)

	out, code := doJSON(t, app, "PUT", "/api/v1/admin/orders/"+ord.ID+"/assign",
		map[string]any{"partnerId": 999}, 1, "admin")
	if code != fiber.StatusNotFound {
		t.Fatalf("status %d, want 404: %v", code, out)
	}
}

func TestPartnerStatusEndpoint(t *testing.T) {
	f := newFixture()
	app := makeApp(f)
	ord := f.createOrder(t)

	if _, err := f.svc.AssignPartner(ord.ID, 11); err != nil {
		t.Fatal(err)
	}
	admin := Actor{Role: "admin", UserID: 1}
	for _, target := range []Status{StatusConfirmed, StatusPreparing} {
		if _, err := f.svc.TransitionStatus(ord.ID, target, admin); err != nil {
			t.Fatal(err)
		}
	}

	out, code := doJSON(t, app, "PUT", "/api/v1/delivery/orders/"+ord.ID+"/status",
		map[string]any{"status": "out_for_delivery"}, 11, "partner")
	if code != fiber.StatusOK {
		t.Fatalf("status %d, want 200: %v", code, out)
	}

	// a different partner cannot deliver someone else's order
	_, code = doJSON(t, app, "PUT", "/api/v1/delivery/orders/"+ord.ID+"/status",
		map[string]any{"status": "delivered"}, 12, "partner")
	if code != fiber.StatusForbidden {
		t.Fatalf("foreign partner status %d, want 403", code)
	}
}

func TestVerifyPaymentEndpoint(t *testing.T) {
	f := newFixture()
	app := makeApp(f)
	ord := f.createOrder(t)

	sig := signPayment("order_R5", "pay_P5")
	out, code := doJSON(t, app, "POST", "/api/v1/orders/verify-payment", map[string]any{
		"razorpay_order_id":   "order_R5",
		"razorpay_payment_id": "pay_P5",
		"razorpay_signature":  sig,
		"orderId":             ord.ID,
	}, 7, "customer")
	if code != fiber.StatusOK {
		t.Fatalf("status %d, want 200: %v", code, out)
	}
	o, _ := out["order"].(map[string]any)
	if o["status"] != "confirmed" {
		t.Errorf("status = %v, want confirmed", o["status"])
	}

	// replaying with different gateway ids against a confirmed order
	out, code = doJSON(t, app, "POST", "/api/v1/orders/verify-payment", map[string]any{
		"razorpay_order_id":   "order_R6",
		"razorpay_payment_id": "pay_P6",
		"razorpay_signature":  "tampered",
		"orderId":             ord.ID,
	}, 7, "customer")
	if code != fiber.StatusBadRequest {
		t.Fatalf("replay status %d, want 400: %v", code, out)
	}
}

func TestTrackEndpoint(t *testing.T) {
	f := newFixture()
	app := makeApp(f)
	ord := f.createOrder(t)

	out, code := doJSON(t, app, "GET", "/api/v1/orders/track/"+ord.Code, nil, 7, "customer")
	if code != fiber.StatusOK {
		t.Fatalf("status %d, want 200: %v", code, out)
	}
	o, _ := out["order"].(map[string]any)
	if o["orderId"] != ord.Code {
		t.Errorf("orderId = %v, want %s", o["orderId"], ord.Code)
	}

	_, code = doJSON(t, app, "GET", "/api/v1/orders/track/MDZZZZZZZZZZ", nil, 7, "customer")
	if code != fiber.StatusNotFound {
		t.Fatalf("unknown code status %d, want 404", code)
	}
}

func TestListEndpoint_Pagination(t *testing.T) {
	f := newFixture()
	app := makeApp(f)
	for i := 0; i < 12; i++ {
		f.createOrder(t)
	}

	out, code := doJSON(t, app, "GET", "/api/v1/orders/?page=2", nil, 7, "customer")
	if code != fiber.StatusOK {
		t.Fatalf("status %d, want 200", code)
	}
	if out["total"] != float64(12) || out["page"] != float64(2) || out["pages"] != float64(2) {
		t.Fatalf("pagination = total %v page %v pages %v", out["total"], out["page"], out["pages"])
	}
	orders, _ := out["orders"].([]any)
	if len(orders) != 2 {
		t.Fatalf("page 2 len = %d, want 2", len(orders))
	}
}
