package identity

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

const userCols = `user_id, name, email, password_hash, phone, address, is_active, user_type`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Phone, &u.Address, &u.IsActive, &u.UserType)
	return &u, err
}

const patientCols = `u.user_id, u.name, u.email, u.password_hash, u.phone, u.address,
	u.is_active, u.user_type, p.patient_id, p.date_of_birth, p.conditions`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.UserID, &p.Name, &p.Email, &p.PasswordHash,
		&p.Phone, &p.Address, &p.IsActive, &p.UserType,
		&p.PatientID, &p.DateOfBirth, &p.Conditions)
	return &p, err
}

const staffCols = `u.user_id, u.name, u.email, u.password_hash, u.phone, u.address,
	u.is_active, u.user_type, s.staff_id, s.department, s.role`

func scanStaff(row pgx.Row) (*MedicalStaff, error) {
	var s MedicalStaff
	err := row.Scan(&s.UserID, &s.Name, &s.Email, &s.PasswordHash,
		&s.Phone, &s.Address, &s.IsActive, &s.UserType,
		&s.StaffID, &s.Department, &s.Role)
	return &s, err
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *RepoPG) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *RepoPG) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE user_id = $1`, userID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return u, nil
}

func (r *RepoPG) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return u, nil
}

func (r *RepoPG) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userCols+` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *RepoPG) SetActive(ctx context.Context, userID int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2 WHERE user_id = $1`, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RepoPG) CreatePatient(ctx context.Context, p *Patient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, phone, address, user_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, is_active`,
		p.Name, p.Email, p.PasswordHash, p.Phone, p.Address, UserTypePatient,
	).Scan(&p.UserID, &p.IsActive)
	if err != nil {
		return err
	}
	p.UserType = UserTypePatient

	err = tx.QueryRow(ctx, `
		INSERT INTO patients (user_id, date_of_birth, conditions)
		VALUES ($1, $2, $3)
		RETURNING patient_id`,
		p.UserID, p.DateOfBirth, p.Conditions,
	).Scan(&p.PatientID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *RepoPG) GetPatientByID(ctx context.Context, patientID int64) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients p
		 JOIN users u ON u.user_id = p.user_id
		 WHERE p.patient_id = $1`, patientID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return p, nil
}

func (r *RepoPG) GetPatientByUserID(ctx context.Context, userID int64) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients p
		 JOIN users u ON u.user_id = p.user_id
		 WHERE p.user_id = $1`, userID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return p, nil
}

func (r *RepoPG) ListPatients(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patients p
		 JOIN users u ON u.user_id = p.user_id
		 ORDER BY p.patient_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *RepoPG) UpdatePatient(ctx context.Context, p *Patient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE users SET name = $2, phone = $3, address = $4
		WHERE user_id = $1`,
		p.UserID, p.Name, p.Phone, p.Address)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE patients SET date_of_birth = $2, conditions = $3
		WHERE patient_id = $1`,
		p.PatientID, p.DateOfBirth, p.Conditions)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *RepoPG) CreateStaff(ctx context.Context, s *MedicalStaff) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, phone, address, user_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, is_active`,
		s.Name, s.Email, s.PasswordHash, s.Phone, s.Address, UserTypeStaff,
	).Scan(&s.UserID, &s.IsActive)
	if err != nil {
		return err
	}
	s.UserType = UserTypeStaff

	err = tx.QueryRow(ctx, `
		INSERT INTO medical_staff (user_id, department, role)
		VALUES ($1, $2, $3)
		RETURNING staff_id`,
		s.UserID, s.Department, s.Role,
	).Scan(&s.StaffID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *RepoPG) GetStaffByID(ctx context.Context, staffID int64) (*MedicalStaff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx,
		`SELECT `+staffCols+` FROM medical_staff s
		 JOIN users u ON u.user_id = s.user_id
		 WHERE s.staff_id = $1`, staffID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s, nil
}

func (r *RepoPG) GetStaffByUserID(ctx context.Context, userID int64) (*MedicalStaff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx,
		`SELECT `+staffCols+` FROM medical_staff s
		 JOIN users u ON u.user_id = s.user_id
		 WHERE s.user_id = $1`, userID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s, nil
}

func (r *RepoPG) ListStaff(ctx context.Context) ([]*MedicalStaff, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+staffCols+` FROM medical_staff s
		 JOIN users u ON u.user_id = s.user_id
		 ORDER BY s.staff_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MedicalStaff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *RepoPG) UpdateStaff(ctx context.Context, s *MedicalStaff) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE users SET name = $2, phone = $3, address = $4
		WHERE user_id = $1`,
		s.UserID, s.Name, s.Phone, s.Address)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE medical_staff SET department = $2, role = $3
		WHERE staff_id = $1`,
		s.StaffID, s.Department, s.Role)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
