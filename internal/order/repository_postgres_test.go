package order

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var orderRowColumns = []string{"id", "code", "userID", "userName", "userPhone", "items", "deliveryAddress",
	"shopID", "shopName", "itemTotal", "deliveryFee", "taxes", "grandTotal",
	"razorpayOrderId", "razorpayPaymentId", "razorpaySignature", "paymentMethod", "paymentStatus",
	"status", "partnerID", "partnerName", "estimatedDelivery", "createdAt", "updatedAt"}

func orderRow(id, code string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(orderRowColumns).
		AddRow(id, code, 7, "Asha Nair", "9900112233",
			[]byte(`[{"productId":1,"name":"Chicken Curry Cut","price":100,"quantity":2}]`),
			[]byte(`{"label":"Home","address":"12 MG Road"}`),
			3, "Fresh Cuts", 200.0, 20.0, 10.0, 230.0,
			"", "", "", "", "pending",
			"pending", nil, nil, "", now, now)
}

func TestPostgresGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM orders WHERE id").
		WithArgs("ord-1").
		WillReturnRows(orderRow("ord-1", "MDAAAAAAAAAA"))

	ord, err := repo.GetByID("ord-1")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if ord.Code != "MDAAAAAAAAAA" || ord.UserName != "Asha Nair" {
		t.Fatalf("unexpected order %+v", ord)
	}
	if len(ord.Items) != 1 || ord.Items[0].Name != "Chicken Curry Cut" {
		t.Fatalf("items not decoded: %+v", ord.Items)
	}
	if ord.DeliveryAddress.Address != "12 MG Road" {
		t.Fatalf("address not decoded: %+v", ord.DeliveryAddress)
	}
	if ord.DeliveryPartnerID != nil {
		t.Fatal("expected unassigned order")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByCode_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM orders WHERE code").
		WithArgs("MDZZZZZZZZZZ").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	if _, err := repo.GetByCode("MDZZZZZZZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPostgresCreate_DuplicateCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	ord := Order{ID: "ord-1", Code: "MDAAAAAAAAAA"}
	if _, err := repo.Create(ord); !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("got %v, want ErrDuplicateCode", err)
	}
}

func TestPostgresUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("ord-1", "confirmed", pq.Array([]string{"pending"})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatus("ord-1", []Status{StatusPending}, StatusConfirmed); err != nil {
		t.Fatalf("update status: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdateStatus_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// conditional update hits zero rows, order exists -> lost the race
	mock.ExpectExec("UPDATE orders SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = repo.UpdateStatus("ord-1", []Status{StatusPending}, StatusConfirmed)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}

	// zero rows and no such order -> not found
	mock.ExpectExec("UPDATE orders SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ord-missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err = repo.UpdateStatus("ord-missing", []Status{StatusPending}, StatusConfirmed)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresConfirmPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	pay := PaymentInfo{
		GatewayOrderID:   "order_R1",
		GatewayPaymentID: "pay_P1",
		GatewaySignature: "sig",
		Method:           "razorpay",
	}
	mock.ExpectExec("UPDATE orders SET").
		WithArgs("ord-1", "order_R1", "pay_P1", "sig", "razorpay",
			"success", "confirmed", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ConfirmPayment("ord-1", pay); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	// already confirmed -> conditional update misses
	mock.ExpectExec("UPDATE orders SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := repo.ConfirmPayment("ord-1", pay); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	rows := orderRow("ord-1", "MDAAAAAAAAAA")
	mock.ExpectQuery("FROM orders").
		WithArgs(7, 10, 10).
		WillReturnRows(rows)

	orders, total, err := repo.ListByUser(7, 2, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 12 || len(orders) != 1 {
		t.Fatalf("total %d len %d, want 12/1", total, len(orders))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
