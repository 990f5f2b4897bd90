package workflow

import "time"

// Diagnosis report statuses.
const (
	ReportPending    = "pending"
	ReportInProgress = "in_progress"
	ReportFinalized  = "finalized"
	ReportCancelled  = "cancelled"
)

func ValidReportStatus(s string) bool {
	switch s {
	case ReportPending, ReportInProgress, ReportFinalized, ReportCancelled:
		return true
	}
	return false
}

// Medical test statuses.
const (
	TestScanToBeTaken  = "scan_to_be_taken"
	TestScanInProgress = "scan_in_progress"
	TestScanDone       = "scan_done"
)

func ValidTestStatus(s string) bool {
	switch s {
	case TestScanToBeTaken, TestScanInProgress, TestScanDone:
		return true
	}
	return false
}

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

func ValidAppointmentStatus(s string) bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// DiagnosisReport is a staff-authored report for a patient, optionally tied
// to an uploaded image. Patient, staff and image ids reference rows owned by
// other services and are not enforced here.
type DiagnosisReport struct {
	ReportID    int64     `db:"report_id" json:"report_id"`
	PatientID   int64     `db:"patient_id" json:"patient_id"`
	StaffID     int64     `db:"staff_id" json:"staff_id"`
	ImageID     *int64    `db:"image_id" json:"image_id,omitempty"`
	Findings    *string   `db:"findings" json:"findings,omitempty"`
	Diagnosis   *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Status      string    `db:"status" json:"status"`
	UpdatedDate time.Time `db:"updated_date" json:"updated_date"`
}

// MedicalTest tracks an ordered scan from request to completion.
type MedicalTest struct {
	TestID        int64     `db:"test_id" json:"test_id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	RadiologistID *int64    `db:"radiologist_id" json:"radiologist_id,omitempty"`
	ImageID       *int64    `db:"image_id" json:"image_id,omitempty"`
	AppointmentID *int64    `db:"appointment_id" json:"appointment_id,omitempty"`
	TestType      string    `db:"test_type" json:"test_type"`
	Status        string    `db:"status" json:"status"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Appointment is a scheduled visit between a patient and a staff member.
type Appointment struct {
	AppointmentID int64     `db:"appointment_id" json:"appointment_id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	StaffID       int64     `db:"staff_id" json:"staff_id"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	Reason        *string   `db:"reason" json:"reason,omitempty"`
	Status        string    `db:"status" json:"status"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
