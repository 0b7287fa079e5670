package partner

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

func (r *PostgresRepository) GetByID(id int) (DeliveryPartner, error) {
	var p DeliveryPartner
	err := r.db.QueryRow(`SELECT "partnerID", name, status, "totalDeliveries", "totalEarnings",
			"todayDeliveries", "todayEarnings", "weeklyEarnings", "monthlyEarnings"
		FROM delivery_partners WHERE "partnerID" = $1`, id).
		Scan(&p.ID, &p.Name, &p.Status, &p.TotalDeliveries, &p.TotalEarnings,
			&p.TodayDeliveries, &p.TodayEarnings, &p.WeeklyEarnings, &p.MonthlyEarnings)
	if errors.Is(err, sql.ErrNoRows) {
		return DeliveryPartner{}, ErrNotFound
	}
	if err != nil {
		return DeliveryPartner{}, err
	}
	return p, nil
}

func (r *PostgresRepository) SetStatus(id int, status Status) error {
	res, err := r.db.Exec(`UPDATE delivery_partners SET status = $2 WHERE "partnerID" = $1`,
		id, string(status))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AccrueDelivery bumps every counter in one statement so a crash can never
// leave them half-applied.
func (r *PostgresRepository) AccrueDelivery(id int, amount float64) error {
	res, err := r.db.Exec(`UPDATE delivery_partners SET
			"totalDeliveries" = "totalDeliveries" + 1,
			"todayDeliveries" = "todayDeliveries" + 1,
			"totalEarnings"   = "totalEarnings" + $2,
			"todayEarnings"   = "todayEarnings" + $2,
			"weeklyEarnings"  = "weeklyEarnings" + $2,
			"monthlyEarnings" = "monthlyEarnings" + $2
		WHERE "partnerID" = $1`, id, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
