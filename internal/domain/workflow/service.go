package workflow

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
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("invalid workflow data")
)

type Service struct {
	reports      ReportRepository
	tests        TestRepository
	appointments AppointmentRepository
	audit        worklog.Appender
	logger       zerolog.Logger
}

func NewService(reports ReportRepository, tests TestRepository, appointments AppointmentRepository, audit worklog.Appender, logger zerolog.Logger) *Service {
	return &Service{
		reports:      reports,
		tests:        tests,
		appointments: appointments,
		audit:        audit,
		logger:       logger,
	}
}

func (s *Service) appendLog(ctx context.Context, actorID int64, action string) {
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, actorID, action), actorID, action)
}

// testActor picks the audit actor for a medical test: the assigned
// radiologist when there is one, otherwise the patient.
func testActor(t *MedicalTest) int64 {
	if t.RadiologistID != nil {
		return *t.RadiologistID
	}
	return t.PatientID
}

// =========== Diagnosis reports ===========

type CreateReportInput struct {
	PatientID int64   `json:"patient_id"`
	StaffID   int64   `json:"staff_id"`
	ImageID   *int64  `json:"image_id"`
	Findings  *string `json:"findings"`
	Diagnosis *string `json:"diagnosis"`
	Status    string  `json:"status"`
}

func (s *Service) CreateReport(ctx context.Context, in CreateReportInput) (*DiagnosisReport, error) {
	if in.PatientID <= 0 || in.StaffID <= 0 {
		return nil, fmt.Errorf("%w: patient_id and staff_id are required", ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = ReportPending
	}
	if !ValidReportStatus(status) {
		return nil, fmt.Errorf("%w: unknown report status %q", ErrValidation, status)
	}

	r := &DiagnosisReport{
		PatientID: in.PatientID,
		StaffID:   in.StaffID,
		ImageID:   in.ImageID,
		Findings:  in.Findings,
		Diagnosis: in.Diagnosis,
		Status:    status,
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, err
	}
	s.appendLog(ctx, r.StaffID, fmt.Sprintf("Generated diagnosis report %d for patient %d", r.ReportID, r.PatientID))
	return r, nil
}

func (s *Service) GetReport(ctx context.Context, id int64) (*DiagnosisReport, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *Service) ListReports(ctx context.Context, status *string) ([]*DiagnosisReport, error) {
	if status != nil && !ValidReportStatus(*status) {
		return nil, fmt.Errorf("%w: unknown report status %q", ErrValidation, *status)
	}
	return s.reports.List(ctx, status)
}

func (s *Service) ListReportsByPatient(ctx context.Context, patientID int64) ([]*DiagnosisReport, error) {
	return s.reports.ListByPatient(ctx, patientID)
}

func (s *Service) ListReportsByStaff(ctx context.Context, staffID int64) ([]*DiagnosisReport, error) {
	return s.reports.ListByStaff(ctx, staffID)
}

type UpdateReportInput struct {
	ImageID   optional.Field[int64]  `json:"image_id"`
	Findings  optional.Field[string] `json:"findings"`
	Diagnosis optional.Field[string] `json:"diagnosis"`
	Status    optional.Field[string] `json:"status"`
}

// UpdateReport applies a partial update. Omitted fields keep their stored
// values; an explicit null clears the nullable ones.
func (s *Service) UpdateReport(ctx context.Context, id int64, in UpdateReportInput) (*DiagnosisReport, error) {
	r, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ImageID.Set() {
		r.ImageID = in.ImageID.Ptr()
	}
	if in.Findings.Set() {
		r.Findings = in.Findings.Ptr()
	}
	if in.Diagnosis.Set() {
		r.Diagnosis = in.Diagnosis.Ptr()
	}
	if in.Status.Set() {
		if in.Status.IsNull() || !ValidReportStatus(in.Status.Value()) {
			return nil, fmt.Errorf("%w: unknown report status", ErrValidation)
		}
		r.Status = in.Status.Value()
	}
	if err := s.reports.Update(ctx, r); err != nil {
		return nil, err
	}
	s.appendLog(ctx, r.StaffID, fmt.Sprintf("Updated diagnosis report %d", r.ReportID))
	return r, nil
}

// ConfirmReport finalizes a report regardless of its current status.
func (s *Service) ConfirmReport(ctx context.Context, id int64) (*DiagnosisReport, error) {
	r, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Status = ReportFinalized
	if err := s.reports.Update(ctx, r); err != nil {
		return nil, err
	}
	s.appendLog(ctx, r.StaffID, fmt.Sprintf("Confirmed diagnosis report %d", r.ReportID))
	return r, nil
}

// =========== Medical tests ===========

type CreateTestInput struct {
	PatientID     int64  `json:"patient_id"`
	RadiologistID *int64 `json:"radiologist_id"`
	ImageID       *int64 `json:"image_id"`
	AppointmentID *int64 `json:"appointment_id"`
	TestType      string `json:"test_type"`
	Status        string `json:"status"`
}

func (s *Service) CreateTest(ctx context.Context, in CreateTestInput) (*MedicalTest, error) {
	if in.PatientID <= 0 {
		return nil, fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if in.TestType == "" {
		return nil, fmt.Errorf("%w: test_type is required", ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = TestScanToBeTaken
	}
	if !ValidTestStatus(status) {
		return nil, fmt.Errorf("%w: unknown test status %q", ErrValidation, status)
	}

	t := &MedicalTest{
		PatientID:     in.PatientID,
		RadiologistID: in.RadiologistID,
		ImageID:       in.ImageID,
		AppointmentID: in.AppointmentID,
		TestType:      in.TestType,
		Status:        status,
	}
	if err := s.tests.Create(ctx, t); err != nil {
		return nil, err
	}
	s.appendLog(ctx, testActor(t), fmt.Sprintf("Created medical test %d (%s) for patient %d", t.TestID, t.TestType, t.PatientID))
	return t, nil
}

func (s *Service) GetTest(ctx context.Context, id int64) (*MedicalTest, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *Service) ListTests(ctx context.Context, status *string) ([]*MedicalTest, error) {
	if status != nil && !ValidTestStatus(*status) {
		return nil, fmt.Errorf("%w: unknown test status %q", ErrValidation, *status)
	}
	return s.tests.List(ctx, status)
}

func (s *Service) ListTestsByPatient(ctx context.Context, patientID int64) ([]*MedicalTest, error) {
	return s.tests.ListByPatient(ctx, patientID)
}

type UpdateTestInput struct {
	RadiologistID optional.Field[int64]  `json:"radiologist_id"`
	ImageID       optional.Field[int64]  `json:"image_id"`
	AppointmentID optional.Field[int64]  `json:"appointment_id"`
	TestType      optional.Field[string] `json:"test_type"`
	Status        optional.Field[string] `json:"status"`
}

func (s *Service) UpdateTest(ctx context.Context, id int64, in UpdateTestInput) (*MedicalTest, error) {
	t, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.RadiologistID.Set() {
		t.RadiologistID = in.RadiologistID.Ptr()
	}
	if in.ImageID.Set() {
		t.ImageID = in.ImageID.Ptr()
	}
	if in.AppointmentID.Set() {
		t.AppointmentID = in.AppointmentID.Ptr()
	}
	if in.TestType.Set() {
		if in.TestType.IsNull() || in.TestType.Value() == "" {
			return nil, fmt.Errorf("%w: test_type cannot be empty", ErrValidation)
		}
		t.TestType = in.TestType.Value()
	}
	if in.Status.Set() {
		if in.Status.IsNull() || !ValidTestStatus(in.Status.Value()) {
			return nil, fmt.Errorf("%w: unknown test status", ErrValidation)
		}
		t.Status = in.Status.Value()
	}
	if err := s.tests.Update(ctx, t); err != nil {
		return nil, err
	}
	s.appendLog(ctx, testActor(t), fmt.Sprintf("Updated medical test %d", t.TestID))
	return t, nil
}

func (s *Service) DeleteTest(ctx context.Context, id int64) error {
	t, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tests.Delete(ctx, id); err != nil {
		return err
	}
	s.appendLog(ctx, testActor(t), fmt.Sprintf("Deleted medical test %d", id))
	return nil
}

// =========== Appointments ===========

type CreateAppointmentInput struct {
	PatientID     int64     `json:"patient_id"`
	StaffID       int64     `json:"staff_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Reason        *string   `json:"reason"`
	Status        string    `json:"status"`
}

func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*Appointment, error) {
	if in.PatientID <= 0 || in.StaffID <= 0 {
		return nil, fmt.Errorf("%w: patient_id and staff_id are required", ErrValidation)
	}
	if in.ScheduledTime.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_time is required", ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = AppointmentScheduled
	}
	if !ValidAppointmentStatus(status) {
		return nil, fmt.Errorf("%w: unknown appointment status %q", ErrValidation, status)
	}

	a := &Appointment{
		PatientID:     in.PatientID,
		StaffID:       in.StaffID,
		ScheduledTime: in.ScheduledTime,
		Reason:        in.Reason,
		Status:        status,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	s.appendLog(ctx, a.StaffID, fmt.Sprintf("Scheduled appointment %d for patient %d", a.AppointmentID, a.PatientID))
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, status *string) ([]*Appointment, error) {
	if status != nil && !ValidAppointmentStatus(*status) {
		return nil, fmt.Errorf("%w: unknown appointment status %q", ErrValidation, *status)
	}
	return s.appointments.List(ctx, status)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

type UpdateAppointmentInput struct {
	ScheduledTime optional.Field[time.Time] `json:"scheduled_time"`
	Reason        optional.Field[string]    `json:"reason"`
	Status        optional.Field[string]    `json:"status"`
}

func (s *Service) UpdateAppointment(ctx context.Context, id int64, in UpdateAppointmentInput) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ScheduledTime.Set() {
		if in.ScheduledTime.IsNull() || in.ScheduledTime.Value().IsZero() {
			return nil, fmt.Errorf("%w: scheduled_time cannot be empty", ErrValidation)
		}
		a.ScheduledTime = in.ScheduledTime.Value()
	}
	if in.Reason.Set() {
		a.Reason = in.Reason.Ptr()
	}
	if in.Status.Set() {
		if in.Status.IsNull() || !ValidAppointmentStatus(in.Status.Value()) {
			return nil, fmt.Errorf("%w: unknown appointment status", ErrValidation)
		}
		a.Status = in.Status.Value()
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	s.appendLog(ctx, a.StaffID, fmt.Sprintf("Updated appointment %d", a.AppointmentID))
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.appendLog(ctx, a.StaffID, fmt.Sprintf("Deleted appointment %d", id))
	return nil
}
