package workflow

import "context"

type ReportRepository interface {
	Create(ctx context.Context, r *DiagnosisReport) error
	GetByID(ctx context.Context, id int64) (*DiagnosisReport, error)
	List(ctx context.Context, status *string) ([]*DiagnosisReport, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*DiagnosisReport, error)
	ListByStaff(ctx context.Context, staffID int64) ([]*DiagnosisReport, error)
	Update(ctx context.Context, r *DiagnosisReport) error
}

type TestRepository interface {
	Create(ctx context.Context, t *MedicalTest) error
	GetByID(ctx context.Context, id int64) (*MedicalTest, error)
	List(ctx context.Context, status *string) ([]*MedicalTest, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*MedicalTest, error)
	Update(ctx context.Context, t *MedicalTest) error
	Delete(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, status *string) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
}
