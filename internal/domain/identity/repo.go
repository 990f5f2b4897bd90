package identity

import "context"

// Repository persists users and their role profiles. Profile creation writes
// the users row and the profile row in one transaction.
type Repository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	SetActive(ctx context.Context, userID int64, active bool) error

	CreatePatient(ctx context.Context, p *Patient) error
	GetPatientByID(ctx context.Context, patientID int64) (*Patient, error)
	GetPatientByUserID(ctx context.Context, userID int64) (*Patient, error)
	ListPatients(ctx context.Context) ([]*Patient, error)
	UpdatePatient(ctx context.Context, p *Patient) error

	CreateStaff(ctx context.Context, s *MedicalStaff) error
	GetStaffByID(ctx context.Context, staffID int64) (*MedicalStaff, error)
	GetStaffByUserID(ctx context.Context, userID int64) (*MedicalStaff, error)
	ListStaff(ctx context.Context) ([]*MedicalStaff, error)
	UpdateStaff(ctx context.Context, s *MedicalStaff) error
}
