package shop

import (
	"database/sql"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (Shop, error) {
	var s Shop
	err := r.db.QueryRow(`SELECT "shopID", name, "totalOrders", "totalRevenue"
		FROM shops WHERE "shopID" = $1`, id).
		Scan(&s.ID, &s.Name, &s.TotalOrders, &s.TotalRevenue)
	if errors.Is(err, sql.ErrNoRows) {
		return Shop{}, ErrNotFound
	}
	if err != nil {
		return Shop{}, err
	}
	return s, nil
}

func (r *PostgresRepository) IncrementOrderStats(id int, amount float64) error {
	res, err := r.db.Exec(`UPDATE shops
		SET "totalOrders" = "totalOrders" + 1, "totalRevenue" = "totalRevenue" + $2
		WHERE "shopID" = $1`, id, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
