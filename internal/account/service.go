package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInactive is returned when a deactivated user tries to sign in.
	ErrInactive = errors.New("account is inactive")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const (
	defaultRecentCount = 5
	maxRecentCount     = 50
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule a user payload broke.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, " ")
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// CheckPassword returns the password policy violations of password.
func CheckPassword(password string) []string {
	var msgs []string
	if len(password) < MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("Passwords must be at least %d characters.", MinPasswordLength))
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		msgs = append(msgs, "Passwords must have at least one digit ('0'-'9').")
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		msgs = append(msgs, "Passwords must have at least one lowercase ('a'-'z').")
	}
	return msgs
}

// Service provides user administration and sign-in.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a user service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Register signs up a new Client.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*DTO, error) {
	return s.Create(ctx, CreateInput{RegisterInput: in, Role: models.RoleClient})
}

// Create provisions a user holding in.Role.
func (s *Service) Create(ctx context.Context, in CreateInput) (*DTO, error) {
	email := normalizeEmail(in.Email)

	verr := &ValidationError{}
	if !in.Role.Valid() {
		verr.add("role", fmt.Sprintf("Role '%s' does not exist.", in.Role))
	}
	for _, msg := range CheckPassword(in.Password) {
		verr.add("password", msg)
	}
	taken, err := s.repo.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		verr.add("email", takenMessage(email))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Address:      strings.TrimSpace(in.Address),
		IsActive:     true,
		CreatedAt:    s.now(),
		Roles:        []models.UserRole{{Role: in.Role}},
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, &ValidationError{Errors: []FieldError{{Field: "email", Message: takenMessage(email)}}}
		}
		return nil, err
	}
	slog.Info("user created", "id", u.ID, "role", in.Role)

	d := ToDTO(u)
	return &d, nil
}

// Authenticate checks an email and password and records the sign-in.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*DTO, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactive
	}

	now := s.now()
	if err := s.repo.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLoginAt = &now

	d := ToDTO(u)
	return &d, nil
}

// Get returns a user with activity counts.
func (s *Service) Get(ctx context.Context, id string) (*DTO, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	props, inqs, err := s.repo.ActivityCounts(ctx, []string{u.ID})
	if err != nil {
		return nil, err
	}
	d := ToDTO(u)
	d.PropertyCount = props[u.ID]
	d.InquiryCount = inqs[u.ID]
	return &d, nil
}

// List returns one page of users matching f with activity counts.
func (s *Service) List(ctx context.Context, f Filter) (paging.Result[DTO], error) {
	f.Params = f.Params.Normalize(paging.DefaultPageSize)
	users, total, err := s.repo.List(ctx, f)
	if err != nil {
		return paging.Result[DTO]{}, err
	}
	return s.withCounts(ctx, users, total, f.Params)
}

// Recent returns the newest users.
func (s *Service) Recent(ctx context.Context, count int) ([]DTO, error) {
	switch {
	case count <= 0:
		count = defaultRecentCount
	case count > maxRecentCount:
		count = maxRecentCount
	}
	users, err := s.repo.Recent(ctx, count)
	if err != nil {
		return nil, err
	}
	out := make([]DTO, 0, len(users))
	for i := range users {
		out = append(out, ToDTO(&users[i]))
	}
	return out, nil
}

func (s *Service) withCounts(ctx context.Context, users []models.User, total int64, p paging.Params) (paging.Result[DTO], error) {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	props, inqs, err := s.repo.ActivityCounts(ctx, ids)
	if err != nil {
		return paging.Result[DTO]{}, err
	}
	return paging.Map(users, total, p, func(u *models.User) DTO {
		d := ToDTO(u)
		d.PropertyCount = props[u.ID]
		d.InquiryCount = inqs[u.ID]
		return d
	}), nil
}

// Update replaces a user's profile and, if given, their role.
// Returns false if the user does not exist.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (bool, error) {
	email := normalizeEmail(in.Email)

	verr := &ValidationError{}
	if in.Role != "" && !in.Role.Valid() {
		verr.add("role", fmt.Sprintf("Role '%s' does not exist.", in.Role))
	}
	taken, err := s.repo.EmailTaken(ctx, email, id)
	if err != nil {
		return false, err
	}
	if taken {
		verr.add("email", takenMessage(email))
	}
	if err := verr.orNil(); err != nil {
		return false, err
	}

	u := &models.User{
		ID:          id,
		Email:       email,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
		IsActive:    in.IsActive,
	}
	ok, err := s.repo.Update(ctx, u, in.Role)
	if errors.Is(err, ErrDuplicateEmail) {
		return false, &ValidationError{Errors: []FieldError{{Field: "email", Message: takenMessage(email)}}}
	}
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("user updated", "id", id)
	}
	return ok, nil
}

// Delete removes a user who owns no data. Returns false if the user does not exist.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("user deleted", "id", id)
	}
	return ok, nil
}

// SetActive enables or disables sign-in. Returns false if the user does not exist.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	ok, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("user status changed", "id", id, "active", active)
	}
	return ok, nil
}

// SetRole grants role in place of the current one. Returns false if the user does not exist.
func (s *Service) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	if !role.Valid() {
		return false, &ValidationError{Errors: []FieldError{{Field: "role", Message: fmt.Sprintf("Role '%s' does not exist.", role)}}}
	}
	ok, err := s.repo.SetRole(ctx, id, role)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("user role changed", "id", id, "role", role)
	}
	return ok, nil
}

// Statistics counts users by active state.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	total, err := s.repo.Count(ctx, nil)
	if err != nil {
		return Statistics{}, err
	}
	active := true
	activeCount, err := s.repo.Count(ctx, &active)
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		TotalCount:    total,
		ActiveCount:   activeCount,
		InactiveCount: total - activeCount,
	}, nil
}

// EnsureAdmin creates an Admin with email and password unless a user with
// that email already exists. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	_, err = s.Create(ctx, CreateInput{
		RegisterInput: RegisterInput{
			Email:     email,
			Password:  password,
			FirstName: "Admin",
			LastName:  "User",
		},
		Role: models.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("seeding admin: %w", err)
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func takenMessage(email string) string {
	return fmt.Sprintf("Email '%s' is already taken.", email)
}
