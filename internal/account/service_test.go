package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/db/dbtest"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	d := dbtest.Open(t)
	return NewService(NewRepository(d)), d
}

func register(t *testing.T, svc *Service, email string) *DTO {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "secret1",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	return u
}

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
	var msgs []string
	for _, fe := range verr.Errors {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)

	u := register(t, svc, "  Jane@Example.com ")
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, models.RoleClient, u.Role)
	assert.True(t, u.IsActive)
	assert.Len(t, u.ID, 36)
	assert.Equal(t, "Jane Doe", u.FullName)
}

func TestCreatePasswordPolicy(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"too short", "ab1", []string{"Passwords must be at least 6 characters."}},
		{"no digit", "abcdefg", []string{"Passwords must have at least one digit ('0'-'9')."}},
		{"no lowercase", "ABCDEF1", []string{"Passwords must have at least one lowercase ('a'-'z')."}},
		{"everything", "AB", []string{
			"Passwords must be at least 6 characters.",
			"Passwords must have at least one digit ('0'-'9').",
			"Passwords must have at least one lowercase ('a'-'z').",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, CreateInput{
				RegisterInput: RegisterInput{Email: "x@example.com", Password: tt.password, FirstName: "X", LastName: "Y"},
				Role:          models.RoleAgent,
			})
			assert.Equal(t, tt.want, validationMessages(t, err))
		})
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	register(t, svc, "jane@example.com")

	_, err := svc.Create(context.Background(), CreateInput{
		RegisterInput: RegisterInput{Email: "JANE@example.com", Password: "x", FirstName: "J", LastName: "D"},
		Role:          models.RoleAgent,
	})
	msgs := validationMessages(t, err)
	assert.Contains(t, msgs, "Email 'jane@example.com' is already taken.")
	assert.Contains(t, msgs, "Passwords must be at least 6 characters.")
}

func TestCreateInvalidRole(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), CreateInput{
		RegisterInput: RegisterInput{Email: "x@example.com", Password: "secret1", FirstName: "X", LastName: "Y"},
		Role:          "Owner",
	})
	assert.Equal(t, []string{"Role 'Owner' does not exist."}, validationMessages(t, err))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	u := register(t, svc, "jane@example.com")

	got, err := svc.Authenticate(ctx, "JANE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, now.Equal(*got.LastLoginAt))

	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)

	_, err = svc.Authenticate(ctx, "jane@example.com", "wrong1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	ok, err := svc.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = svc.Authenticate(ctx, "jane@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInactive)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u := register(t, svc, "jane@example.com")
	register(t, svc, "john@example.com")

	ok, err := svc.Update(ctx, u.ID, UpdateInput{
		Email:     "jane@example.com",
		FirstName: "Janet",
		LastName:  "Doe",
		IsActive:  false,
		Role:      models.RoleAgent,
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.FirstName)
	assert.False(t, got.IsActive)
	assert.Equal(t, models.RoleAgent, got.Role)

	_, err = svc.Update(ctx, u.ID, UpdateInput{Email: "John@example.com", FirstName: "J", LastName: "D"})
	assert.Equal(t, []string{"Email 'john@example.com' is already taken."}, validationMessages(t, err))

	ok, err = svc.Update(ctx, "missing", UpdateInput{Email: "ghost@example.com", FirstName: "G", LastName: "H"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetRoleReplacesRoles(t *testing.T) {
	svc, d := newService(t)
	ctx := context.Background()
	u := register(t, svc, "jane@example.com")

	ok, err := svc.SetRole(ctx, u.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	var roles []models.UserRole
	require.NoError(t, d.Where("user_id = ?", u.ID).Find(&roles).Error)
	require.Len(t, roles, 1)
	assert.Equal(t, models.RoleAdmin, roles[0].Role)

	ok, err = svc.SetRole(ctx, "missing", models.RoleAgent)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.SetRole(ctx, u.ID, "Owner")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteBlockedByDependents(t *testing.T) {
	svc, d := newService(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	client := dbtest.User(t, d, "client@example.com", models.RoleClient)
	writer := dbtest.User(t, d, "writer@example.com", models.RoleClient)
	loner := dbtest.User(t, d, "loner@example.com", models.RoleClient)
	p := dbtest.Property(t, d, agent.ID)
	dbtest.Inquiry(t, d, p.ID, client.ID, models.InquiryStatusNew)
	dbtest.Message(t, d, writer.ID, loner.ID)

	tests := []struct {
		id      string
		wantMsg string
	}{
		{agent.ID, "cannot delete user: user owns 1 properties"},
		{client.ID, "cannot delete user: user has 1 inquiries"},
		{writer.ID, "cannot delete user: user has 1 messages"},
		{loner.ID, "cannot delete user: user has 1 messages"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ok, err := svc.Delete(ctx, tt.id)
			assert.False(t, ok)
			require.ErrorIs(t, err, ErrHasDependents)
			assert.EqualError(t, err, tt.wantMsg)

			_, err = svc.Get(ctx, tt.id)
			assert.NoError(t, err, "user must survive a blocked delete")
		})
	}
}

func TestDelete(t *testing.T) {
	svc, d := newService(t)
	ctx := context.Background()
	u := register(t, svc, "jane@example.com")

	ok, err := svc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var roles int64
	require.NoError(t, d.Model(&models.UserRole{}).Where("user_id = ?", u.ID).Count(&roles).Error)
	assert.Zero(t, roles)

	ok, err = svc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	svc, d := newService(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	client := dbtest.User(t, d, "client@example.com", models.RoleClient)
	dbtest.User(t, d, "zed@example.com", models.RoleClient)
	p := dbtest.Property(t, d, agent.ID)
	dbtest.Property(t, d, agent.ID)
	dbtest.Inquiry(t, d, p.ID, client.ID, models.InquiryStatusNew)
	inactive := false
	_, err := svc.SetActive(ctx, "user-zed", false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"by email asc", Filter{SortBy: "email", SortOrder: "asc"}, []string{"agent@example.com", "client@example.com", "zed@example.com"}},
		{"by role", Filter{Role: models.RoleClient, SortBy: "email", SortOrder: "asc"}, []string{"client@example.com", "zed@example.com"}},
		{"search", Filter{SearchTerm: "AGE"}, []string{"agent@example.com"}},
		{"inactive", Filter{IsActive: &inactive}, []string{"zed@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), res.TotalCount)
			var got []string
			for _, u := range res.Items {
				got = append(got, u.Email)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	res, err := svc.List(ctx, Filter{SortBy: "email", SortOrder: "asc", Params: paging.Params{PageNumber: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(2), res.Items[0].PropertyCount)
	assert.Equal(t, int64(1), res.Items[1].InquiryCount)
}

func TestRecentAndStatistics(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		created := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return created }
		register(t, svc, email)
	}
	_, err := svc.SetActive(ctx, mustID(t, svc, "a@example.com"), false)
	require.NoError(t, err)

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c@example.com", recent[0].Email)
	assert.Equal(t, "b@example.com", recent[1].Email)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, Statistics{TotalCount: 3, ActiveCount: 2, InactiveCount: 1}, stats)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin@realestate.com", "Admin123!")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin@realestate.com", "Admin123!")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := svc.Authenticate(ctx, "admin@realestate.com", "Admin123!")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = svc.EnsureAdmin(ctx, "other@realestate.com", "weak")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func mustID(t *testing.T, svc *Service, email string) string {
	t.Helper()
	u, err := svc.repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID
}
