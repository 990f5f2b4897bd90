package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrec/medrec/pkg/optional"
)

// -- Mocks --

type mockReportRepo struct {
	items  map[int64]*DiagnosisReport
	nextID int64
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{items: map[int64]*DiagnosisReport{}, nextID: 1}
}

func (m *mockReportRepo) Create(_ context.Context, r *DiagnosisReport) error {
	r.ReportID = m.nextID
	m.nextID++
	r.UpdatedDate = time.Now().UTC()
	m.items[r.ReportID] = r
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id int64) (*DiagnosisReport, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockReportRepo) List(_ context.Context, status *string) ([]*DiagnosisReport, error) {
	var out []*DiagnosisReport
	for _, r := range m.items {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportRepo) ListByPatient(_ context.Context, patientID int64) ([]*DiagnosisReport, error) {
	var out []*DiagnosisReport
	for _, r := range m.items {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportRepo) ListByStaff(_ context.Context, staffID int64) ([]*DiagnosisReport, error) {
	var out []*DiagnosisReport
	for _, r := range m.items {
		if r.StaffID == staffID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportRepo) Update(_ context.Context, r *DiagnosisReport) error {
	if _, ok := m.items[r.ReportID]; !ok {
		return ErrNotFound
	}
	r.UpdatedDate = time.Now().UTC()
	cp := *r
	m.items[r.ReportID] = &cp
	return nil
}

type mockTestRepo struct {
	items  map[int64]*MedicalTest
	nextID int64
}

func newMockTestRepo() *mockTestRepo {
	return &mockTestRepo{items: map[int64]*MedicalTest{}, nextID: 1}
}

func (m *mockTestRepo) Create(_ context.Context, t *MedicalTest) error {
	t.TestID = m.nextID
	m.nextID++
	t.UpdatedAt = time.Now().UTC()
	m.items[t.TestID] = t
	return nil
}

func (m *mockTestRepo) GetByID(_ context.Context, id int64) (*MedicalTest, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTestRepo) List(_ context.Context, status *string) ([]*MedicalTest, error) {
	var out []*MedicalTest
	for _, t := range m.items {
		if status == nil || t.Status == *status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTestRepo) ListByPatient(_ context.Context, patientID int64) ([]*MedicalTest, error) {
	var out []*MedicalTest
	for _, t := range m.items {
		if t.PatientID == patientID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTestRepo) Update(_ context.Context, t *MedicalTest) error {
	if _, ok := m.items[t.TestID]; !ok {
		return ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	m.items[t.TestID] = &cp
	return nil
}

func (m *mockTestRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type mockAppointmentRepo struct {
	items  map[int64]*Appointment
	nextID int64
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{items: map[int64]*Appointment{}, nextID: 1}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	a.AppointmentID = m.nextID
	m.nextID++
	a.UpdatedAt = time.Now().UTC()
	m.items[a.AppointmentID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) List(_ context.Context, status *string) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.items {
		if status == nil || a.Status == *status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID int64) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.items {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.items[a.AppointmentID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	m.items[a.AppointmentID] = &cp
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type recordingAppender struct {
	actions []string
	actors  []int64
	fail    bool
}

func (a *recordingAppender) Append(_ context.Context, actorID int64, action string) error {
	if a.fail {
		return errors.New("log store unavailable")
	}
	a.actors = append(a.actors, actorID)
	a.actions = append(a.actions, action)
	return nil
}

func newTestService(audit *recordingAppender) (*Service, *mockReportRepo, *mockTestRepo, *mockAppointmentRepo) {
	reports := newMockReportRepo()
	tests := newMockTestRepo()
	appts := newMockAppointmentRepo()
	return NewService(reports, tests, appts, audit, zerolog.Nop()), reports, tests, appts
}

// -- Tests --

func TestCreateReport_Defaults(t *testing.T) {
	svc, _, _, _ := newTestService(&recordingAppender{})

	r, err := svc.CreateReport(context.Background(), CreateReportInput{PatientID: 1, StaffID: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Status != ReportPending {
		t.Errorf("expected default status pending, got %q", r.Status)
	}
}

func TestCreateReport_InvalidStatus(t *testing.T) {
	svc, _, _, _ := newTestService(&recordingAppender{})
	_, err := svc.CreateReport(context.Background(), CreateReportInput{
		PatientID: 1, StaffID: 2, Status: "draft",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestConfirmReport(t *testing.T) {
	audit := &recordingAppender{}
	svc, repo, _, _ := newTestService(audit)

	r, err := svc.CreateReport(context.Background(), CreateReportInput{PatientID: 1, StaffID: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	confirmed, err := svc.ConfirmReport(context.Background(), r.ReportID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != ReportFinalized {
		t.Errorf("expected finalized, got %q", confirmed.Status)
	}
	if repo.items[r.ReportID].Status != ReportFinalized {
		t.Error("status not persisted")
	}
	if len(audit.actions) != 2 {
		t.Errorf("expected 2 audit entries, got %d", len(audit.actions))
	}
}

func TestUpdateTest_PartialPreservesOmittedFields(t *testing.T) {
	svc, _, _, _ := newTestService(&recordingAppender{})

	radiologist := int64(9)
	image := int64(4)
	created, err := svc.CreateTest(context.Background(), CreateTestInput{
		PatientID: 1, RadiologistID: &radiologist, ImageID: &image, TestType: "mri",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Status-only update: everything else must survive untouched.
	updated, err := svc.UpdateTest(context.Background(), created.TestID, UpdateTestInput{
		Status: optional.Of(TestScanInProgress),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != TestScanInProgress {
		t.Errorf("expected status updated, got %q", updated.Status)
	}
	if updated.TestType != "mri" {
		t.Error("test_type should be preserved")
	}
	if updated.RadiologistID == nil || *updated.RadiologistID != radiologist {
		t.Error("radiologist_id should be preserved")
	}
	if updated.ImageID == nil || *updated.ImageID != image {
		t.Error("image_id should be preserved")
	}
}

func TestUpdateTest_ExplicitNullClearsRadiologist(t *testing.T) {
	svc, _, _, _ := newTestService(&recordingAppender{})

	radiologist := int64(9)
	created, err := svc.CreateTest(context.Background(), CreateTestInput{
		PatientID: 1, RadiologistID: &radiologist, TestType: "xray",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateTest(context.Background(), created.TestID, UpdateTestInput{
		RadiologistID: optional.Null[int64](),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RadiologistID != nil {
		t.Error("explicit null should clear radiologist_id")
	}
	if updated.TestType != "xray" {
		t.Error("omitted test_type should survive")
	}
}

func TestTestAuditActor(t *testing.T) {
	audit := &recordingAppender{}
	svc, _, _, _ := newTestService(audit)

	// Without a radiologist the patient is the actor.
	if _, err := svc.CreateTest(context.Background(), CreateTestInput{PatientID: 5, TestType: "ct"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	radiologist := int64(9)
	if _, err := svc.CreateTest(context.Background(), CreateTestInput{
		PatientID: 5, RadiologistID: &radiologist, TestType: "ct",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if audit.actors[0] != 5 {
		t.Errorf("expected patient actor 5, got %d", audit.actors[0])
	}
	if audit.actors[1] != 9 {
		t.Errorf("expected radiologist actor 9, got %d", audit.actors[1])
	}
}

func TestDeleteTest(t *testing.T) {
	svc, _, tests, _ := newTestService(&recordingAppender{})

	created, err := svc.CreateTest(context.Background(), CreateTestInput{PatientID: 1, TestType: "mri"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteTest(context.Background(), created.TestID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := tests.items[created.TestID]; ok {
		t.Error("test should be gone")
	}
	if err := svc.DeleteTest(context.Background(), created.TestID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMutationsSurviveAuditFailure(t *testing.T) {
	audit := &recordingAppender{fail: true}
	svc, reports, _, appts := newTestService(audit)

	r, err := svc.CreateReport(context.Background(), CreateReportInput{PatientID: 1, StaffID: 2})
	if err != nil {
		t.Fatalf("create report should succeed despite audit failure: %v", err)
	}
	if _, ok := reports.items[r.ReportID]; !ok {
		t.Error("report should persist despite audit failure")
	}

	a, err := svc.CreateAppointment(context.Background(), CreateAppointmentInput{
		PatientID: 1, StaffID: 2, ScheduledTime: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create appointment should succeed despite audit failure: %v", err)
	}
	if _, err := svc.UpdateAppointment(context.Background(), a.AppointmentID, UpdateAppointmentInput{
		Status: optional.Of(AppointmentCompleted),
	}); err != nil {
		t.Fatalf("update should succeed despite audit failure: %v", err)
	}
	if appts.items[a.AppointmentID].Status != AppointmentCompleted {
		t.Error("status change should persist despite audit failure")
	}
}

func TestListReports_StatusFilterValidated(t *testing.T) {
	svc, _, _, _ := newTestService(&recordingAppender{})
	bogus := "draft"
	if _, err := svc.ListReports(context.Background(), &bogus); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status filter, got %v", err)
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(&recordingAppender{})

	_, err := svc.CreateAppointment(context.Background(), CreateAppointmentInput{PatientID: 1, StaffID: 2})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing scheduled_time, got %v", err)
	}
	_, err = svc.CreateAppointment(context.Background(), CreateAppointmentInput{
		PatientID: 0, StaffID: 2, ScheduledTime: time.Now(),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing patient, got %v", err)
	}
}
