package billing

import "context"

type Repository interface {
	Create(ctx context.Context, b *BillingDetail) error
	GetByID(ctx context.Context, id int64) (*BillingDetail, error)
	List(ctx context.Context, status *string) ([]*BillingDetail, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*BillingDetail, error)
	ListPaidByYear(ctx context.Context, year int) ([]*BillingDetail, error)
	Update(ctx context.Context, b *BillingDetail) error
	Delete(ctx context.Context, id int64) error
}
