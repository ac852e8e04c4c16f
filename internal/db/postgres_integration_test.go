//go:build integration

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/db"
	"github.com/evcraddock/realty/internal/db/dbtest"
	"github.com/evcraddock/realty/internal/inquiry"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/property"
)

// openPostgres starts a PostgreSQL container and opens a migrated database on it.
func openPostgres(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("realty"),
		postgres.WithUsername("realty"),
		postgres.WithPassword("realty"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	d, err := db.OpenConfig(db.Config{Driver: db.DriverPostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(d); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return d, dsn
}

func TestPostgres(t *testing.T) {
	d, dsn := openPostgres(t)
	ctx := context.Background()

	t.Run("migrations are repeatable", func(t *testing.T) {
		again, err := db.OpenConfig(db.Config{Driver: db.DriverPostgres, DSN: dsn})
		if err != nil {
			t.Fatalf("second open: %v", err)
		}
		if err := db.Close(again); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	client := dbtest.User(t, d, "client@example.com", models.RoleClient)

	t.Run("unique violation", func(t *testing.T) {
		dup := &models.User{ID: "dup", Email: agent.Email, PasswordHash: "x", FirstName: "D", LastName: "U", CreatedAt: time.Now().UTC()}
		err := d.Create(dup).Error
		if !db.IsUniqueViolation(err) {
			t.Fatalf("expected unique violation, got %v", err)
		}
	})

	t.Run("foreign key violation", func(t *testing.T) {
		p := &models.Property{Title: "Orphan", Description: "x", Address: "x", Area: 1, OwnerID: "nobody", CreatedAt: time.Now().UTC()}
		err := d.Create(p).Error
		if !db.IsForeignKeyViolation(err) {
			t.Fatalf("expected foreign key violation, got %v", err)
		}
	})

	p := dbtest.Property(t, d, agent.ID, func(p *models.Property) {
		p.Title = "Sunny Loft"
		p.City = "Portland"
		p.Price = 320000
	})
	dbtest.Property(t, d, agent.ID, func(p *models.Property) {
		p.Title = "Farm house"
		p.Status = models.PropertyStatusSold
	})
	dbtest.Inquiry(t, d, p.ID, client.ID, models.InquiryStatusNew)

	t.Run("case-insensitive search", func(t *testing.T) {
		svc := property.NewService(property.NewRepository(d), nil)
		res, err := svc.Search(ctx, property.Filter{SearchTerm: "LOFT"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if res.TotalCount != 1 || res.Items[0].ID != p.ID {
			t.Fatalf("search = %+v", res)
		}
	})

	t.Run("statistics", func(t *testing.T) {
		svc := property.NewService(property.NewRepository(d), nil)
		stats, err := svc.Statistics(ctx)
		if err != nil {
			t.Fatalf("statistics: %v", err)
		}
		if stats.TotalCount != 2 || stats.ByStatus["Sold"] != 1 || stats.ByStatus["Available"] != 1 {
			t.Errorf("stats = %+v", stats)
		}
	})

	t.Run("pending inquiries", func(t *testing.T) {
		n, err := inquiry.NewService(inquiry.NewRepository(d)).PendingCount(ctx)
		if err != nil {
			t.Fatalf("pending count: %v", err)
		}
		if n != 1 {
			t.Errorf("pending = %d, want 1", n)
		}
	})

	t.Run("delete guarded by dependents", func(t *testing.T) {
		users := account.NewService(account.NewRepository(d))
		_, err := users.Delete(ctx, agent.ID)
		if !errors.Is(err, account.ErrHasDependents) {
			t.Fatalf("expected ErrHasDependents, got %v", err)
		}
	})

	t.Run("duplicate email maps to validation error", func(t *testing.T) {
		users := account.NewService(account.NewRepository(d))
		_, err := users.Register(ctx, account.RegisterInput{
			Email:     "CLIENT@example.com",
			Password:  "client123",
			FirstName: "C",
			LastName:  "L",
		})
		var verr *account.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
