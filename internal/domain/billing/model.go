package billing

import "time"

// Billing statuses.
const (
	StatusUnpaid    = "unpaid"
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusUnpaid, StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// BillingDetail is one charge against a patient, optionally tied to an
// appointment or a diagnosis report in the workflow service.
type BillingDetail struct {
	BillingID     int64     `db:"billing_id" json:"billing_id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	AppointmentID *int64    `db:"appointment_id" json:"appointment_id,omitempty"`
	Procedure     string    `db:"procedure" json:"procedure"`
	BaseCost      float64   `db:"base_cost" json:"base_cost"`
	Status        string    `db:"status" json:"status"`
	ReportID      *int64    `db:"report_id" json:"report_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// PatientTotal summarizes a patient's billing position.
type PatientTotal struct {
	PatientID    int64   `json:"patient_id"`
	TotalCost    float64 `json:"total_cost"`
	BillingCount int     `json:"billing_count"`
	PendingCount int     `json:"pending_count"`
	PaidCount    int     `json:"paid_count"`
}

// Summary is the platform-wide billing statistics payload. Unpaid covers
// both the unpaid and pending statuses.
type Summary struct {
	TotalPaid     float64 `json:"total_paid"`
	TotalUnpaid   float64 `json:"total_unpaid"`
	TotalBillings int     `json:"total_billings"`
	PaidCount     int     `json:"paid_count"`
	UnpaidCount   int     `json:"unpaid_count"`
}

// MonthRevenue is one month's paid revenue in a yearly breakdown.
type MonthRevenue struct {
	Month       string  `json:"month"`
	MonthNumber int     `json:"month_number"`
	Revenue     float64 `json:"revenue"`
}

// MonthlyRevenue is the yearly revenue report over paid billings.
type MonthlyRevenue struct {
	Year         int            `json:"year"`
	Months       []MonthRevenue `json:"months"`
	TotalRevenue float64        `json:"total_revenue"`
}
