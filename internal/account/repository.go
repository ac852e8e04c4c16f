// Package account manages users, their roles, and credential checks.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evcraddock/realty/internal/db"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
)

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email already belongs to another user.
	ErrDuplicateEmail = errors.New("email already taken")
	// ErrHasDependents is returned when deleting a user who still owns data.
	ErrHasDependents = errors.New("cannot delete user")
)

// Repository provides data access for users and role memberships.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a user repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Sort keys accepted by Filter.SortBy.
const (
	SortByEmail     = "email"
	SortByName      = "name"
	SortByCreatedAt = "createdat"
)

// Filter controls List. Zero values are ignored.
type Filter struct {
	SearchTerm  string
	Role        models.Role
	IsActive    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	SortOrder   string
	paging.Params
}

func (f Filter) where() (string, []any) {
	var conditions []string
	var args []any

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		pattern := likePattern(term)
		conditions = append(conditions,
			`(LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.Role != "" {
		conditions = append(conditions, "id IN (SELECT user_id FROM user_roles WHERE role = ?)")
		args = append(args, f.Role)
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, *f.IsActive)
	}
	if f.CreatedFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *f.CreatedTo)
	}

	return strings.Join(conditions, " AND "), args
}

func (f Filter) orderBy() string {
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	switch strings.ToLower(f.SortBy) {
	case SortByEmail:
		return fmt.Sprintf("email %s, id %s", dir, dir)
	case SortByName:
		return fmt.Sprintf("last_name %s, first_name %s, id %s", dir, dir, dir)
	case SortByCreatedAt, "":
		return fmt.Sprintf("created_at %s, id %s", dir, dir)
	default:
		return "created_at DESC, id DESC"
	}
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

func withRoles(db *gorm.DB) *gorm.DB {
	return db.Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("role") })
}

func (r *Repository) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if where, args := f.where(); where != "" {
		q = q.Where(where, args...)
	}
	return q
}

// List returns one page of users matching f and the total match count.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.User, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	var users []models.User
	err := withRoles(r.filtered(ctx, f)).
		Order(f.orderBy()).
		Scopes(f.Params.Scope).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	return users, total, nil
}

// Recent returns the count newest users.
func (r *Repository) Recent(ctx context.Context, count int) ([]models.User, error) {
	var users []models.User
	err := withRoles(r.db.WithContext(ctx)).Order("created_at DESC, id DESC").Limit(count).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("listing recent users: %w", err)
	}
	return users, nil
}

// GetByID returns a user with roles loaded.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := withRoles(r.db.WithContext(ctx)).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %s: %w", id, err)
	}
	return &u, nil
}

// GetByEmail returns a user by email, ignoring case.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := withRoles(r.db.WithContext(ctx)).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %s: %w", email, err)
	}
	return &u, nil
}

// EmailTaken reports whether another user than exceptID uses email.
func (r *Repository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return n > 0, nil
}

// Create inserts a user together with its role rows.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", u.Email, ErrDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// Update replaces the profile fields of u. When role is non-empty and
// differs from the stored role, every role row is replaced by it in the
// same transaction. Returns false if the user does not exist.
func (r *Repository) Update(ctx context.Context, u *models.User, role models.Role) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"email":        u.Email,
			"first_name":   u.FirstName,
			"last_name":    u.LastName,
			"phone_number": u.PhoneNumber,
			"address":      u.Address,
			"is_active":    u.IsActive,
		})
		if db.IsUniqueViolation(res.Error) {
			return fmt.Errorf("%s: %w", u.Email, ErrDuplicateEmail)
		}
		if res.Error != nil {
			return fmt.Errorf("updating user %s: %w", u.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		found = true

		if role == "" {
			return nil
		}
		return replaceRole(tx, u.ID, role)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// SetRole replaces the user's roles with role. Returns false if the user does not exist.
func (r *Repository) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("checking user %s: %w", id, err)
		}
		if n == 0 {
			return nil
		}
		found = true
		return replaceRole(tx, id, role)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// replaceRole leaves exactly one role row for userID.
func replaceRole(tx *gorm.DB, userID string, role models.Role) error {
	var current []models.UserRole
	if err := tx.Where("user_id = ?", userID).Find(&current).Error; err != nil {
		return fmt.Errorf("reading roles: %w", err)
	}
	if len(current) == 1 && current[0].Role == role {
		return nil
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
		return fmt.Errorf("revoking roles: %w", err)
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserRole{UserID: userID, Role: role}).Error; err != nil {
		return fmt.Errorf("granting role %s: %w", role, err)
	}
	return nil
}

// SetActive enables or disables a user. Returns false if the user does not exist.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("is_active", active)
	if res.Error != nil {
		return false, fmt.Errorf("updating user %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// TouchLogin records a successful sign-in.
func (r *Repository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("recording login for %s: %w", id, err)
	}
	return nil
}

// Dependents counts the rows that keep a user from being deleted.
type Dependents struct {
	Properties int64
	Inquiries  int64
	Messages   int64
}

// Any reports whether anything depends on the user.
func (d Dependents) Any() bool {
	return d.Properties > 0 || d.Inquiries > 0 || d.Messages > 0
}

func (d Dependents) err() error {
	switch {
	case d.Properties > 0:
		return fmt.Errorf("%w: user owns %d properties", ErrHasDependents, d.Properties)
	case d.Inquiries > 0:
		return fmt.Errorf("%w: user has %d inquiries", ErrHasDependents, d.Inquiries)
	case d.Messages > 0:
		return fmt.Errorf("%w: user has %d messages", ErrHasDependents, d.Messages)
	}
	return nil
}

func dependents(tx *gorm.DB, id string) (Dependents, error) {
	var d Dependents
	if err := tx.Model(&models.Property{}).Where("owner_id = ?", id).Count(&d.Properties).Error; err != nil {
		return d, fmt.Errorf("counting properties: %w", err)
	}
	if err := tx.Model(&models.Inquiry{}).Where("user_id = ?", id).Count(&d.Inquiries).Error; err != nil {
		return d, fmt.Errorf("counting inquiries: %w", err)
	}
	if err := tx.Model(&models.Message{}).Where("sender_id = ? OR receiver_id = ?", id, id).Count(&d.Messages).Error; err != nil {
		return d, fmt.Errorf("counting messages: %w", err)
	}
	return d, nil
}

// Delete removes a user and its role rows. It fails with ErrHasDependents
// while the user owns properties or has inquiries or messages.
// Returns false if the user does not exist.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deps, err := dependents(tx, id)
		if err != nil {
			return err
		}
		if deps.Any() {
			var n int64
			if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("checking user %s: %w", id, err)
			}
			if n == 0 {
				return nil
			}
			return deps.err()
		}

		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("deleting user %s: %w", id, res.Error)
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ActivityCounts returns the number of properties owned and inquiries sent
// by each of ids.
func (r *Repository) ActivityCounts(ctx context.Context, ids []string) (properties, inquiries map[string]int64, err error) {
	properties, err = r.countBy(ctx, &models.Property{}, "owner_id", ids)
	if err != nil {
		return nil, nil, err
	}
	inquiries, err = r.countBy(ctx, &models.Inquiry{}, "user_id", ids)
	if err != nil {
		return nil, nil, err
	}
	return properties, inquiries, nil
}

func (r *Repository) countBy(ctx context.Context, model any, column string, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		GroupKey string
		N        int64
	}
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column+" AS group_key, COUNT(*) AS n").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting by %s: %w", column, err)
	}
	for _, row := range rows {
		out[row.GroupKey] = row.N
	}
	return out, nil
}

// Count returns the number of users, optionally restricted to an active state.
func (r *Repository) Count(ctx context.Context, active *bool) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.User{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
