package identity

import "time"

// User types discriminate which profile row accompanies a users row.
const (
	UserTypePatient = "patient"
	UserTypeStaff   = "staff"
)

// Staff roles.
const (
	RoleDoctor      = "doctor"
	RoleRadiologist = "radiologist"
	RoleClerk       = "clerk"
	RoleAdmin       = "admin"
)

func ValidStaffRole(role string) bool {
	switch role {
	case RoleDoctor, RoleRadiologist, RoleClerk, RoleAdmin:
		return true
	}
	return false
}

// User is the shared identity record. The password hash never leaves the
// service: it carries no JSON representation at all.
type User struct {
	UserID       int64   `db:"user_id" json:"user_id"`
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Phone        *string `db:"phone" json:"phone,omitempty"`
	Address      *string `db:"address" json:"address,omitempty"`
	IsActive     bool    `db:"is_active" json:"is_active"`
	UserType     string  `db:"user_type" json:"user_type"`
}

// Patient composes the identity record with the patient profile row.
type Patient struct {
	User
	PatientID   int64      `db:"patient_id" json:"patient_id"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Conditions  *string    `db:"conditions" json:"conditions,omitempty"`
}

// MedicalStaff composes the identity record with the staff profile row.
type MedicalStaff struct {
	User
	StaffID    int64   `db:"staff_id" json:"staff_id"`
	Department *string `db:"department" json:"department,omitempty"`
	Role       string  `db:"role" json:"role"`
}
