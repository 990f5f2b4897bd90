package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/medrec/medrec/internal/domain/worklog"
	"github.com/medrec/medrec/internal/platform/token"
	"github.com/medrec/medrec/pkg/optional"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("user account is deactivated")
	ErrValidation         = errors.New("invalid user data")
)

type Service struct {
	repo   Repository
	tokens *token.Issuer
	audit  worklog.Appender
	logger zerolog.Logger
}

func NewService(repo Repository, tokens *token.Issuer, audit worklog.Appender, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, audit: audit, logger: logger}
}

type RegisterPatientInput struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Conditions  *string    `json:"conditions"`
}

type RegisterStaffInput struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Department *string `json:"department"`
	Role       string  `json:"role"`
}

func validateCredentials(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	return nil
}

// RegisterPatient creates a user plus patient profile. The duplicate-email
// check runs before hashing so a rejected registration never pays bcrypt cost.
// Email matching is exact and case-sensitive.
func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Patient, error) {
	if err := validateCredentials(in.Name, in.Email, in.Password); err != nil {
		return nil, err
	}
	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &Patient{
		User: User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: string(hash),
			Phone:        in.Phone,
			Address:      in.Address,
		},
		DateOfBirth: in.DateOfBirth,
		Conditions:  in.Conditions,
	}
	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, err
	}

	action := fmt.Sprintf("Registered patient %d (%s)", p.PatientID, p.Name)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, p.UserID, action), p.UserID, action)
	return p, nil
}

// RegisterStaff creates a user plus medical staff profile.
func (s *Service) RegisterStaff(ctx context.Context, in RegisterStaffInput) (*MedicalStaff, error) {
	if err := validateCredentials(in.Name, in.Email, in.Password); err != nil {
		return nil, err
	}
	if !ValidStaffRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	st := &MedicalStaff{
		User: User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: string(hash),
			Phone:        in.Phone,
			Address:      in.Address,
		},
		Department: in.Department,
		Role:       in.Role,
	}
	if err := s.repo.CreateStaff(ctx, st); err != nil {
		return nil, err
	}

	action := fmt.Sprintf("Registered staff %d (%s, %s)", st.StaffID, st.Name, st.Role)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, st.UserID, action), st.UserID, action)
	return st, nil
}

// Login verifies credentials and mints a token. An unknown email and a wrong
// password both return ErrInvalidCredentials so callers cannot enumerate
// accounts from the response. The deactivated check runs only after the
// password verified.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrAccountDeactivated
	}
	tok, err := s.tokens.Issue(u.UserID, u.UserType)
	if err != nil {
		return "", nil, err
	}

	action := fmt.Sprintf("User %d logged in", u.UserID)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, u.UserID, action), u.UserID, action)
	return tok, u, nil
}

// IsActive reports whether the user exists and is active. It backs the auth
// middleware's per-request account gate.
func (s *Service) IsActive(ctx context.Context, userID int64) (bool, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.IsActive, nil
}

// SetActive flips the account flag. Setting the current value is a no-op
// that still succeeds.
func (s *Service) SetActive(ctx context.Context, userID int64, active bool) (*User, error) {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	verb := "Deactivated"
	if active {
		verb = "Activated"
	}
	action := fmt.Sprintf("%s user %d", verb, userID)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, userID, action), userID, action)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) GetPatient(ctx context.Context, patientID int64) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, patientID)
}

// GetPatientByUser resolves a user id to its patient profile. A user that
// exists but carries no patient profile is a caller error, not a missing
// resource.
func (s *Service) GetPatientByUser(ctx context.Context, userID int64) (*Patient, error) {
	p, err := s.repo.GetPatientByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, uerr := s.repo.GetUserByID(ctx, userID); uerr == nil {
		return nil, fmt.Errorf("%w: user %d is not a patient", ErrValidation, userID)
	}
	return nil, err
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListPatients(ctx)
}

type UpdatePatientInput struct {
	Name        optional.Field[string]    `json:"name"`
	Phone       optional.Field[string]    `json:"phone"`
	Address     optional.Field[string]    `json:"address"`
	DateOfBirth optional.Field[time.Time] `json:"date_of_birth"`
	Conditions  optional.Field[string]    `json:"conditions"`
}

// UpdatePatient applies a partial update. Omitted fields keep their stored
// values; an explicit null clears the nullable ones.
func (s *Service) UpdatePatient(ctx context.Context, patientID int64, in UpdatePatientInput) (*Patient, error) {
	p, err := s.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if in.Name.Set() {
		if in.Name.IsNull() || strings.TrimSpace(in.Name.Value()) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		p.Name = in.Name.Value()
	}
	if in.Phone.Set() {
		p.Phone = in.Phone.Ptr()
	}
	if in.Address.Set() {
		p.Address = in.Address.Ptr()
	}
	if in.DateOfBirth.Set() {
		p.DateOfBirth = in.DateOfBirth.Ptr()
	}
	if in.Conditions.Set() {
		p.Conditions = in.Conditions.Ptr()
	}
	if err := s.repo.UpdatePatient(ctx, p); err != nil {
		return nil, err
	}

	action := fmt.Sprintf("Updated patient %d", patientID)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, p.UserID, action), p.UserID, action)
	return p, nil
}

func (s *Service) GetStaff(ctx context.Context, staffID int64) (*MedicalStaff, error) {
	return s.repo.GetStaffByID(ctx, staffID)
}

func (s *Service) GetStaffByUser(ctx context.Context, userID int64) (*MedicalStaff, error) {
	st, err := s.repo.GetStaffByUserID(ctx, userID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, uerr := s.repo.GetUserByID(ctx, userID); uerr == nil {
		return nil, fmt.Errorf("%w: user %d is not medical staff", ErrValidation, userID)
	}
	return nil, err
}

func (s *Service) ListStaff(ctx context.Context) ([]*MedicalStaff, error) {
	return s.repo.ListStaff(ctx)
}

type UpdateStaffInput struct {
	Name       optional.Field[string] `json:"name"`
	Phone      optional.Field[string] `json:"phone"`
	Address    optional.Field[string] `json:"address"`
	Department optional.Field[string] `json:"department"`
	Role       optional.Field[string] `json:"role"`
}

func (s *Service) UpdateStaff(ctx context.Context, staffID int64, in UpdateStaffInput) (*MedicalStaff, error) {
	st, err := s.repo.GetStaffByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if in.Name.Set() {
		if in.Name.IsNull() || strings.TrimSpace(in.Name.Value()) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		st.Name = in.Name.Value()
	}
	if in.Phone.Set() {
		st.Phone = in.Phone.Ptr()
	}
	if in.Address.Set() {
		st.Address = in.Address.Ptr()
	}
	if in.Department.Set() {
		st.Department = in.Department.Ptr()
	}
	if in.Role.Set() {
		if in.Role.IsNull() || !ValidStaffRole(in.Role.Value()) {
			return nil, fmt.Errorf("%w: unknown role", ErrValidation)
		}
		st.Role = in.Role.Value()
	}
	if err := s.repo.UpdateStaff(ctx, st); err != nil {
		return nil, err
	}

	action := fmt.Sprintf("Updated staff %d", staffID)
	worklog.LogAppendFailure(s.logger, s.audit.Append(ctx, st.UserID, action), st.UserID, action)
	return st, nil
}
