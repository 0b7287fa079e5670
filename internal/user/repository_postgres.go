package user

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

func (r *PostgresRepository) GetByID(id int) (User, error) {
	var u User
	err := r.db.QueryRow(`SELECT "userID", name, phone, "totalOrders", "totalSpent"
		FROM users WHERE "userID" = $1`, id).
		Scan(&u.ID, &u.Name, &u.Phone, &u.TotalOrders, &u.TotalSpent)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) IncrementOrderStats(id int, amount float64) error {
	res, err := r.db.Exec(`UPDATE users
		SET "totalOrders" = "totalOrders" + 1, "totalSpent" = "totalSpent" + $2
		WHERE "userID" = $1`, id, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
