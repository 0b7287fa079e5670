package order

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `id, code, "userID", "userName", "userPhone", items, "deliveryAddress",
	"shopID", "shopName", "itemTotal", "deliveryFee", taxes, "grandTotal",
	"razorpayOrderId", "razorpayPaymentId", "razorpaySignature", "paymentMethod", "paymentStatus",
	status, "partnerID", "partnerName", "estimatedDelivery", "createdAt", "updatedAt"`

func (r *PostgresRepository) Create(ord Order) (Order, error) {
	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}
	addressJSON, err := json.Marshal(ord.DeliveryAddress)
	if err != nil {
		return Order{}, err
	}

	_, err = r.db.Exec(`INSERT INTO orders
		(id, code, "userID", "userName", "userPhone", items, "deliveryAddress",
		 "shopID", "shopName", "itemTotal", "deliveryFee", taxes, "grandTotal",
		 "paymentStatus", status, "estimatedDelivery", "createdAt", "updatedAt")
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		ord.ID, ord.Code, ord.UserID, ord.UserName, ord.UserPhone, itemsJSON, addressJSON,
		ord.ShopID, ord.ShopName, ord.ItemTotal, ord.DeliveryFee, ord.Taxes, ord.GrandTotal,
		string(ord.Payment.Status), string(ord.Status), ord.EstimatedDelivery,
		ord.CreatedAt, ord.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Order{}, ErrDuplicateCode
		}
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(id string) (Order, error) {
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *PostgresRepository) GetByCode(code string) (Order, error) {
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE code = $1`, code)
	return scanOrder(row)
}

func (r *PostgresRepository) ListByUser(userID, page, perPage int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE "userID" = $1`, userID).
		Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders
		WHERE "userID" = $1 ORDER BY "createdAt" DESC LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, ord)
	}
	return orders, total, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(id string, from []Status, to Status) error {
	res, err := r.db.Exec(`UPDATE orders SET status = $2, "updatedAt" = NOW()
		WHERE id = $1 AND status = ANY($3)`,
		id, string(to), pq.Array(statusStrings(from)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.missOrConflict(id)
	}
	return nil
}

func (r *PostgresRepository) ConfirmPayment(id string, pay PaymentInfo) error {
	res, err := r.db.Exec(`UPDATE orders SET
			"razorpayOrderId" = $2, "razorpayPaymentId" = $3, "razorpaySignature" = $4,
			"paymentMethod" = $5, "paymentStatus" = $6, status = $7, "updatedAt" = NOW()
		WHERE id = $1 AND status = $8`,
		id, pay.GatewayOrderID, pay.GatewayPaymentID, pay.GatewaySignature,
		pay.Method, string(PaymentSuccess), string(StatusConfirmed), string(StatusPending))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.missOrConflict(id)
	}
	return nil
}

func (r *PostgresRepository) MarkPaymentFailed(id string) error {
	res, err := r.db.Exec(`UPDATE orders SET "paymentStatus" = $2, "updatedAt" = NOW()
		WHERE id = $1 AND "paymentStatus" = $3`,
		id, string(PaymentFailed), string(PaymentPending))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// no-op when the payment already reached a terminal state
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).
			Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (r *PostgresRepository) AssignPartner(id string, partnerID int, partnerName string) error {
	res, err := r.db.Exec(`UPDATE orders SET "partnerID" = $2, "partnerName" = $3, "updatedAt" = NOW()
		WHERE id = $1`, id, partnerID, partnerName)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// missOrConflict distinguishes a missing order from a conditional update
// that lost the race (or was simply illegal from the current state).
func (r *PostgresRepository) missOrConflict(id string) error {
	var exists bool
	if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).
		Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		ord         Order
		itemsJSON   []byte
		addressJSON []byte
		partnerID   sql.NullInt64
		partnerName sql.NullString
		payStatus   string
		status      string
	)
	err := row.Scan(&ord.ID, &ord.Code, &ord.UserID, &ord.UserName, &ord.UserPhone,
		&itemsJSON, &addressJSON, &ord.ShopID, &ord.ShopName,
		&ord.ItemTotal, &ord.DeliveryFee, &ord.Taxes, &ord.GrandTotal,
		&ord.Payment.GatewayOrderID, &ord.Payment.GatewayPaymentID,
		&ord.Payment.GatewaySignature, &ord.Payment.Method, &payStatus,
		&status, &partnerID, &partnerName, &ord.EstimatedDelivery,
		&ord.CreatedAt, &ord.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(addressJSON, &ord.DeliveryAddress); err != nil {
		return Order{}, err
	}
	ord.Payment.Status = PaymentStatus(payStatus)
	ord.Status = Status(status)
	if partnerID.Valid {
		pid := int(partnerID.Int64)
		ord.DeliveryPartnerID = &pid
	}
	if partnerName.Valid {
		ord.DeliveryPartnerName = partnerName.String
	}
	return ord, nil
}

func statusStrings(ss []Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
