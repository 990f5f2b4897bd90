package billing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

// procedure is a reserved word in Postgres, hence the quoting.
const billingCols = `billing_id, patient_id, appointment_id, "procedure", base_cost, status, report_id, created_at, updated_at`

func scanBilling(row pgx.Row) (*BillingDetail, error) {
	var b BillingDetail
	err := row.Scan(&b.BillingID, &b.PatientID, &b.AppointmentID, &b.Procedure,
		&b.BaseCost, &b.Status, &b.ReportID, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func collectBillings(rows pgx.Rows) ([]*BillingDetail, error) {
	defer rows.Close()
	var items []*BillingDetail
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *RepoPG) Create(ctx context.Context, b *BillingDetail) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO billing_details (patient_id, appointment_id, "procedure", base_cost, status, report_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING billing_id, created_at, updated_at`,
		b.PatientID, b.AppointmentID, b.Procedure, b.BaseCost, b.Status, b.ReportID,
	).Scan(&b.BillingID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*BillingDetail, error) {
	b, err := scanBilling(r.pool.QueryRow(ctx,
		`SELECT `+billingCols+` FROM billing_details WHERE billing_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RepoPG) List(ctx context.Context, status *string) ([]*BillingDetail, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+billingCols+` FROM billing_details WHERE status = $1 ORDER BY billing_id`, *status)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+billingCols+` FROM billing_details ORDER BY billing_id`)
	}
	if err != nil {
		return nil, err
	}
	return collectBillings(rows)
}

func (r *RepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*BillingDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+billingCols+` FROM billing_details WHERE patient_id = $1 ORDER BY billing_id`, patientID)
	if err != nil {
		return nil, err
	}
	return collectBillings(rows)
}

func (r *RepoPG) ListPaidByYear(ctx context.Context, year int) ([]*BillingDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+billingCols+` FROM billing_details
		 WHERE status = $1 AND EXTRACT(YEAR FROM created_at) = $2
		 ORDER BY created_at`, StatusPaid, year)
	if err != nil {
		return nil, err
	}
	return collectBillings(rows)
}

func (r *RepoPG) Update(ctx context.Context, b *BillingDetail) error {
	return r.pool.QueryRow(ctx, `
		UPDATE billing_details
		SET appointment_id = $2, "procedure" = $3, base_cost = $4, status = $5, report_id = $6, updated_at = NOW()
		WHERE billing_id = $1
		RETURNING updated_at`,
		b.BillingID, b.AppointmentID, b.Procedure, b.BaseCost, b.Status, b.ReportID,
	).Scan(&b.UpdatedAt)
}

func (r *RepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM billing_details WHERE billing_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
