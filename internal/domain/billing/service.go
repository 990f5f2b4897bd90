package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/domain/worklog"
	"github.com/medrec/medrec/pkg/optional"
)

var (
	ErrNotFound   = errors.New("billing record not found")
	ErrValidation = errors.New("invalid billing data")
)

type Service struct {
	repo   Repository
	audit  worklog.Appender
	logger zerolog.Logger
}

func NewService(repo Repository, audit worklog.Appender, logger zerolog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) appendLog(ctx context.Context, actorID int64, action string) {
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, actorID, action), actorID, action)
}

type CreateInput struct {
	PatientID     int64   `json:"patient_id"`
	AppointmentID *int64  `json:"appointment_id"`
	Procedure     string  `json:"procedure"`
	BaseCost      float64 `json:"base_cost"`
	Status        string  `json:"status"`
	ReportID      *int64  `json:"report_id"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*BillingDetail, error) {
	if in.PatientID <= 0 {
		return nil, fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if in.Procedure == "" {
		return nil, fmt.Errorf("%w: procedure is required", ErrValidation)
	}
	if in.BaseCost < 0 {
		return nil, fmt.Errorf("%w: base_cost cannot be negative", ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown billing status %q", ErrValidation, status)
	}

	b := &BillingDetail{
		PatientID:     in.PatientID,
		AppointmentID: in.AppointmentID,
		Procedure:     in.Procedure,
		BaseCost:      in.BaseCost,
		Status:        status,
		ReportID:      in.ReportID,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.appendLog(ctx, b.PatientID, fmt.Sprintf("Created billing %d for patient %d", b.BillingID, b.PatientID))
	return b, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*BillingDetail, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status *string) ([]*BillingDetail, error) {
	if status != nil && !ValidStatus(*status) {
		return nil, fmt.Errorf("%w: unknown billing status %q", ErrValidation, *status)
	}
	return s.repo.List(ctx, status)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*BillingDetail, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

type UpdateInput struct {
	AppointmentID optional.Field[int64]   `json:"appointment_id"`
	Procedure     optional.Field[string]  `json:"procedure"`
	BaseCost      optional.Field[float64] `json:"base_cost"`
	Status        optional.Field[string]  `json:"status"`
	ReportID      optional.Field[int64]   `json:"report_id"`
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*BillingDetail, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.AppointmentID.Set() {
		b.AppointmentID = in.AppointmentID.Ptr()
	}
	if in.Procedure.Set() {
		if in.Procedure.IsNull() || in.Procedure.Value() == "" {
			return nil, fmt.Errorf("%w: procedure cannot be empty", ErrValidation)
		}
		b.Procedure = in.Procedure.Value()
	}
	if in.BaseCost.Set() {
		if in.BaseCost.IsNull() || in.BaseCost.Value() < 0 {
			return nil, fmt.Errorf("%w: base_cost cannot be negative", ErrValidation)
		}
		b.BaseCost = in.BaseCost.Value()
	}
	if in.Status.Set() {
		if in.Status.IsNull() || !ValidStatus(in.Status.Value()) {
			return nil, fmt.Errorf("%w: unknown billing status", ErrValidation)
		}
		b.Status = in.Status.Value()
	}
	if in.ReportID.Set() {
		b.ReportID = in.ReportID.Ptr()
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.appendLog(ctx, b.PatientID, fmt.Sprintf("Updated billing %d", b.BillingID))
	return b, nil
}

// Pay marks a billing as paid regardless of its current status.
func (s *Service) Pay(ctx context.Context, id int64) (*BillingDetail, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = StatusPaid
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.appendLog(ctx, b.PatientID, fmt.Sprintf("Paid billing %d", b.BillingID))
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.appendLog(ctx, b.PatientID, fmt.Sprintf("Deleted billing %d", id))
	return nil
}

// PatientTotal sums every billing for the patient, whatever its status.
func (s *Service) PatientTotal(ctx context.Context, patientID int64) (*PatientTotal, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	total := &PatientTotal{PatientID: patientID}
	for _, b := range items {
		total.TotalCost += b.BaseCost
		total.BillingCount++
		switch b.Status {
		case StatusPending:
			total.PendingCount++
		case StatusPaid:
			total.PaidCount++
		}
	}
	return total, nil
}

// Statistics aggregates all billings. Unpaid counts both the unpaid and
// pending statuses.
func (s *Service) Statistics(ctx context.Context) (*Summary, error) {
	items, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}
	for _, b := range items {
		sum.TotalBillings++
		switch b.Status {
		case StatusPaid:
			sum.TotalPaid += b.BaseCost
			sum.PaidCount++
		case StatusUnpaid, StatusPending:
			sum.TotalUnpaid += b.BaseCost
			sum.UnpaidCount++
		}
	}
	return sum, nil
}

// MonthlyRevenue breaks paid billings for the year into twelve months keyed
// by creation date. Every month appears even when empty.
func (s *Service) MonthlyRevenue(ctx context.Context, year int) (*MonthlyRevenue, error) {
	if year < 1 {
		return nil, fmt.Errorf("%w: invalid year", ErrValidation)
	}
	items, err := s.repo.ListPaidByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	rev := &MonthlyRevenue{Year: year, Months: make([]MonthRevenue, 12)}
	for m := time.January; m <= time.December; m++ {
		rev.Months[m-1] = MonthRevenue{Month: m.String(), MonthNumber: int(m)}
	}
	for _, b := range items {
		m := b.CreatedAt.Month()
		rev.Months[m-1].Revenue += b.BaseCost
		rev.TotalRevenue += b.BaseCost
	}
	return rev, nil
}
