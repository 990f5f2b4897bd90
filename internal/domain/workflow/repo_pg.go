package workflow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// =========== Diagnosis reports ===========

type ReportRepoPG struct {
	pool *pgxpool.Pool
}

func NewReportRepoPG(pool *pgxpool.Pool) *ReportRepoPG {
	return &ReportRepoPG{pool: pool}
}

const reportCols = `report_id, patient_id, staff_id, image_id, findings, diagnosis, status, updated_date`

func scanReport(row pgx.Row) (*DiagnosisReport, error) {
	var r DiagnosisReport
	err := row.Scan(&r.ReportID, &r.PatientID, &r.StaffID, &r.ImageID,
		&r.Findings, &r.Diagnosis, &r.Status, &r.UpdatedDate)
	return &r, err
}

func collectReports(rows pgx.Rows) ([]*DiagnosisReport, error) {
	defer rows.Close()
	var items []*DiagnosisReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (p *ReportRepoPG) Create(ctx context.Context, r *DiagnosisReport) error {
	return p.pool.QueryRow(ctx, `
		INSERT INTO diagnosis_reports (patient_id, staff_id, image_id, findings, diagnosis, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING report_id, updated_date`,
		r.PatientID, r.StaffID, r.ImageID, r.Findings, r.Diagnosis, r.Status,
	).Scan(&r.ReportID, &r.UpdatedDate)
}

func (p *ReportRepoPG) GetByID(ctx context.Context, id int64) (*DiagnosisReport, error) {
	r, err := scanReport(p.pool.QueryRow(ctx,
		`SELECT `+reportCols+` FROM diagnosis_reports WHERE report_id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return r, nil
}

func (p *ReportRepoPG) List(ctx context.Context, status *string) ([]*DiagnosisReport, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = p.pool.Query(ctx,
			`SELECT `+reportCols+` FROM diagnosis_reports WHERE status = $1 ORDER BY report_id`, *status)
	} else {
		rows, err = p.pool.Query(ctx,
			`SELECT `+reportCols+` FROM diagnosis_reports ORDER BY report_id`)
	}
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

func (p *ReportRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*DiagnosisReport, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+reportCols+` FROM diagnosis_reports WHERE patient_id = $1 ORDER BY report_id`, patientID)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

func (p *ReportRepoPG) ListByStaff(ctx context.Context, staffID int64) ([]*DiagnosisReport, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+reportCols+` FROM diagnosis_reports WHERE staff_id = $1 ORDER BY report_id`, staffID)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

func (p *ReportRepoPG) Update(ctx context.Context, r *DiagnosisReport) error {
	return p.pool.QueryRow(ctx, `
		UPDATE diagnosis_reports
		SET image_id = $2, findings = $3, diagnosis = $4, status = $5, updated_date = NOW()
		WHERE report_id = $1
		RETURNING updated_date`,
		r.ReportID, r.ImageID, r.Findings, r.Diagnosis, r.Status,
	).Scan(&r.UpdatedDate)
}

// =========== Medical tests ===========

type TestRepoPG struct {
	pool *pgxpool.Pool
}

func NewTestRepoPG(pool *pgxpool.Pool) *TestRepoPG {
	return &TestRepoPG{pool: pool}
}

const testCols = `test_id, patient_id, radiologist_id, image_id, appointment_id, test_type, status, updated_at`

func scanTest(row pgx.Row) (*MedicalTest, error) {
	var t MedicalTest
	err := row.Scan(&t.TestID, &t.PatientID, &t.RadiologistID, &t.ImageID,
		&t.AppointmentID, &t.TestType, &t.Status, &t.UpdatedAt)
	return &t, err
}

func collectTests(rows pgx.Rows) ([]*MedicalTest, error) {
	defer rows.Close()
	var items []*MedicalTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (p *TestRepoPG) Create(ctx context.Context, t *MedicalTest) error {
	return p.pool.QueryRow(ctx, `
		INSERT INTO medical_tests (patient_id, radiologist_id, image_id, appointment_id, test_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING test_id, updated_at`,
		t.PatientID, t.RadiologistID, t.ImageID, t.AppointmentID, t.TestType, t.Status,
	).Scan(&t.TestID, &t.UpdatedAt)
}

func (p *TestRepoPG) GetByID(ctx context.Context, id int64) (*MedicalTest, error) {
	t, err := scanTest(p.pool.QueryRow(ctx,
		`SELECT `+testCols+` FROM medical_tests WHERE test_id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return t, nil
}

func (p *TestRepoPG) List(ctx context.Context, status *string) ([]*MedicalTest, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = p.pool.Query(ctx,
			`SELECT `+testCols+` FROM medical_tests WHERE status = $1 ORDER BY test_id`, *status)
	} else {
		rows, err = p.pool.Query(ctx,
			`SELECT `+testCols+` FROM medical_tests ORDER BY test_id`)
	}
	if err != nil {
		return nil, err
	}
	return collectTests(rows)
}

func (p *TestRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*MedicalTest, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+testCols+` FROM medical_tests WHERE patient_id = $1 ORDER BY test_id`, patientID)
	if err != nil {
		return nil, err
	}
	return collectTests(rows)
}

func (p *TestRepoPG) Update(ctx context.Context, t *MedicalTest) error {
	return p.pool.QueryRow(ctx, `
		UPDATE medical_tests
		SET radiologist_id = $2, image_id = $3, appointment_id = $4, test_type = $5, status = $6, updated_at = NOW()
		WHERE test_id = $1
		RETURNING updated_at`,
		t.TestID, t.RadiologistID, t.ImageID, t.AppointmentID, t.TestType, t.Status,
	).Scan(&t.UpdatedAt)
}

func (p *TestRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM medical_tests WHERE test_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== Appointments ===========

type AppointmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepoPG(pool *pgxpool.Pool) *AppointmentRepoPG {
	return &AppointmentRepoPG{pool: pool}
}

const apptCols = `appointment_id, patient_id, staff_id, scheduled_time, reason, status, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.AppointmentID, &a.PatientID, &a.StaffID,
		&a.ScheduledTime, &a.Reason, &a.Status, &a.UpdatedAt)
	return &a, err
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (p *AppointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	return p.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, staff_id, scheduled_time, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING appointment_id, updated_at`,
		a.PatientID, a.StaffID, a.ScheduledTime, a.Reason, a.Status,
	).Scan(&a.AppointmentID, &a.UpdatedAt)
}

func (p *AppointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(p.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE appointment_id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return a, nil
}

func (p *AppointmentRepoPG) List(ctx context.Context, status *string) ([]*Appointment, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = p.pool.Query(ctx,
			`SELECT `+apptCols+` FROM appointments WHERE status = $1 ORDER BY scheduled_time`, *status)
	} else {
		rows, err = p.pool.Query(ctx,
			`SELECT `+apptCols+` FROM appointments ORDER BY scheduled_time`)
	}
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (p *AppointmentRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE patient_id = $1 ORDER BY scheduled_time`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (p *AppointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	return p.pool.QueryRow(ctx, `
		UPDATE appointments
		SET scheduled_time = $2, reason = $3, status = $4, updated_at = NOW()
		WHERE appointment_id = $1
		RETURNING updated_at`,
		a.AppointmentID, a.ScheduledTime, a.Reason, a.Status,
	).Scan(&a.UpdatedAt)
}

func (p *AppointmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM appointments WHERE appointment_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
