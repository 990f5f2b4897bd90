package imaging

import "context"

type Repository interface {
	Create(ctx context.Context, img *MedicalImage) error
	GetByID(ctx context.Context, id int64) (*MedicalImage, error)
	List(ctx context.Context) ([]*MedicalImage, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*MedicalImage, error)
	Delete(ctx context.Context, id int64) error
}
