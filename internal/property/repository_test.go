package property

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/db/dbtest"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
)

func testRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	d := dbtest.Open(t)
	return NewRepository(d), d
}

func ptr[T any](v T) *T { return &v }

func ids(props []models.Property) []int64 {
	out := make([]int64, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func TestSearchFilters(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	other := dbtest.User(t, d, "other@example.com", models.RoleAgent)

	flat := dbtest.Property(t, d, agent.ID, func(p *models.Property) {
		p.Title = "Sunny flat"
		p.Type = models.PropertyTypeApartment
		p.Price = 150000
		p.Area = 60
		p.City = "Lisbon"
		p.Bedrooms = ptr(2)
	})
	house := dbtest.Property(t, d, agent.ID, func(p *models.Property) {
		p.Title = "Family house"
		p.Type = models.PropertyTypeHouse
		p.Price = 450000
		p.Area = 180
		p.City = "Porto"
		p.Bedrooms = ptr(4)
		p.IsFeatured = true
	})
	rental := dbtest.Property(t, d, other.ID, func(p *models.Property) {
		p.Title = "Studio 50% off"
		p.Description = "Cozy studio near the river"
		p.Transaction = models.TransactionRent
		p.Price = 900
		p.Area = 30
		p.City = "lisbon"
		p.Status = models.PropertyStatusRented
	})

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"no filter", Filter{}, []int64{rental.ID, house.ID, flat.ID}},
		{"search term in title", Filter{SearchTerm: "HOUSE"}, []int64{house.ID}},
		{"search term in description", Filter{SearchTerm: "river"}, []int64{rental.ID}},
		{"search term in city", Filter{SearchTerm: "port"}, []int64{house.ID}},
		{"search term escapes wildcards", Filter{SearchTerm: "50%"}, []int64{rental.ID}},
		{"underscore is literal", Filter{SearchTerm: "_"}, nil},
		{"type", Filter{Type: ptr(models.PropertyTypeHouse)}, []int64{house.ID}},
		{"status", Filter{Status: ptr(models.PropertyStatusRented)}, []int64{rental.ID}},
		{"transaction", Filter{Transaction: ptr(models.TransactionSale)}, []int64{house.ID, flat.ID}},
		{"price range inclusive", Filter{MinPrice: ptr(150000.0), MaxPrice: ptr(450000.0)}, []int64{house.ID, flat.ID}},
		{"area range", Filter{MinArea: ptr(31.0), MaxArea: ptr(100.0)}, []int64{flat.ID}},
		{"bedrooms", Filter{MinBedrooms: ptr(3)}, []int64{house.ID}},
		{"max bedrooms skips unknown", Filter{MaxBedrooms: ptr(2)}, []int64{flat.ID}},
		{"city case-insensitive", Filter{City: "LISBON"}, []int64{rental.ID, flat.ID}},
		{"featured", Filter{IsFeatured: ptr(true)}, []int64{house.ID}},
		{"owner", Filter{OwnerID: other.ID}, []int64{rental.ID}},
		{"conjunction", Filter{City: "lisbon", Transaction: ptr(models.TransactionSale)}, []int64{flat.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter
			f.Params = f.Params.Normalize(paging.DefaultPageSize)
			got, total, err := repo.Search(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearchSort(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)

	cheap := dbtest.Property(t, d, agent.ID, func(p *models.Property) { p.Price = 1000; p.ViewCount = 5 })
	mid := dbtest.Property(t, d, agent.ID, func(p *models.Property) { p.Price = 2000; p.ViewCount = 1 })
	dear := dbtest.Property(t, d, agent.ID, func(p *models.Property) { p.Price = 3000; p.ViewCount = 9 })

	tests := []struct {
		sortBy, order string
		want          []int64
	}{
		{"price", "asc", []int64{cheap.ID, mid.ID, dear.ID}},
		{"price", "desc", []int64{dear.ID, mid.ID, cheap.ID}},
		{"views", "desc", []int64{dear.ID, cheap.ID, mid.ID}},
		{"", "", []int64{dear.ID, mid.ID, cheap.ID}},
		{"bogus", "asc", []int64{dear.ID, mid.ID, cheap.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy+"_"+tt.order, func(t *testing.T) {
			f := Filter{SortBy: tt.sortBy, SortOrder: tt.order}
			f.Params = f.Params.Normalize(paging.DefaultPageSize)
			got, _, err := repo.Search(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearchPagingStable(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)

	// Identical timestamps force the id tiebreaker.
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		dbtest.Property(t, d, agent.ID, func(p *models.Property) { p.CreatedAt = created })
	}

	seen := make(map[int64]bool)
	for page := 1; page <= 3; page++ {
		f := Filter{Params: paging.Params{PageNumber: page, PageSize: 10}}
		got, total, err := repo.Search(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(25), total, "total must not depend on the page")

		wantLen := 10
		if page == 3 {
			wantLen = 5
		}
		require.Len(t, got, wantLen)
		for _, p := range got {
			assert.False(t, seen[p.ID], "property %d returned on two pages", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	got, total, err := repo.Search(ctx, Filter{Params: paging.Params{PageNumber: 4, PageSize: 10}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int64(25), total)
}

func TestSearchLoadsOwnerAndImages(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)

	p := &models.Property{
		Title:       "With images",
		Description: "d",
		Address:     "a",
		Area:        10,
		OwnerID:     agent.ID,
		CreatedAt:   time.Now().UTC(),
		Images: []models.PropertyImage{
			{ImageURL: "/a.jpg", IsPrimary: true, DisplayOrder: 0, UploadedAt: time.Now().UTC()},
			{ImageURL: "/b.jpg", DisplayOrder: 1, UploadedAt: time.Now().UTC()},
		},
	}
	require.NoError(t, repo.Create(ctx, p))

	got, _, err := repo.Search(ctx, Filter{Params: paging.Params{PageNumber: 1, PageSize: 5}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Owner)
	assert.Equal(t, agent.Email, got[0].Owner.Email)
	require.Len(t, got[0].Images, 2)
	assert.Equal(t, "/a.jpg", got[0].PrimaryImageURL())
}

func TestGetByID(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	p := dbtest.Property(t, d, agent.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Nil(t, got.Owner)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByIDWithDetails(ctx, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByIDWithInquiries(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	client := dbtest.User(t, d, "client@example.com", models.RoleClient)
	p := dbtest.Property(t, d, agent.ID)
	dbtest.Inquiry(t, d, p.ID, client.ID, models.InquiryStatusNew)

	got, err := repo.GetByIDWithDetails(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Empty(t, got.Inquiries)

	got, err = repo.GetByIDWithDetails(ctx, p.ID, true)
	require.NoError(t, err)
	require.Len(t, got.Inquiries, 1)
	require.NotNil(t, got.Inquiries[0].User)
	assert.Equal(t, client.Email, got.Inquiries[0].User.Email)
}

func TestGetFeatured(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)

	featured := dbtest.Property(t, d, agent.ID, func(p *models.Property) { p.IsFeatured = true })
	dbtest.Property(t, d, agent.ID, func(p *models.Property) {
		p.IsFeatured = true
		p.Status = models.PropertyStatusSold
	})
	dbtest.Property(t, d, agent.ID)

	got, err := repo.GetFeatured(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, []int64{featured.ID}, ids(got))
}

func TestIncrementViewCountConcurrent(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	p := dbtest.Property(t, d, agent.ID)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementViewCount(ctx, p.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("increment: %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.ViewCount)

	ok, err := repo.IncrementViewCount(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	p := dbtest.Property(t, d, agent.ID, func(p *models.Property) { p.IsFeatured = true })
	assert.Nil(t, p.UpdatedAt)

	p.Title = "Renamed"
	p.IsFeatured = false
	p.Bedrooms = nil
	ok, err := repo.Update(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.False(t, got.IsFeatured, "zero values must be written")
	assert.NotNil(t, got.UpdatedAt)

	ok, err = repo.Update(ctx, &models.Property{ID: 9999, Title: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateStatus(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	p := dbtest.Property(t, d, agent.ID)

	ok, err := repo.UpdateStatus(ctx, p.ID, models.PropertyStatusPending)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusPending, got.Status)
	assert.Nil(t, got.UpdatedAt, "status changes do not stamp updated_at")

	ok, err = repo.UpdateStatus(ctx, 9999, models.PropertyStatusSold)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCascades(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	client := dbtest.User(t, d, "client@example.com", models.RoleClient)
	p := dbtest.Property(t, d, agent.ID)
	require.NoError(t, repo.AddImages(ctx, p.ID, []models.PropertyImage{{ImageURL: "/a.jpg", UploadedAt: time.Now()}}))
	dbtest.Inquiry(t, d, p.ID, client.ID, models.InquiryStatusNew)

	ok, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var n int64
	require.NoError(t, d.Model(&models.PropertyImage{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, d.Model(&models.Inquiry{}).Count(&n).Error)
	assert.Zero(t, n)

	ok, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCounts(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	other := dbtest.User(t, d, "other@example.com", models.RoleAgent)
	dbtest.Property(t, d, agent.ID)
	dbtest.Property(t, d, agent.ID, func(p *models.Property) { p.Status = models.PropertyStatusSold })
	dbtest.Property(t, d, other.ID)

	total, err := repo.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	sold, err := repo.CountByStatus(ctx, models.PropertyStatusSold)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sold)

	owned, err := repo.CountByOwner(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), owned)
}

func TestImages(t *testing.T) {
	repo, d := testRepo(t)
	ctx := context.Background()
	agent := dbtest.User(t, d, "agent@example.com", models.RoleAgent)
	p := dbtest.Property(t, d, agent.ID)

	now := time.Now().UTC()
	require.NoError(t, repo.AddImages(ctx, p.ID, []models.PropertyImage{
		{ImageURL: "/1.jpg", UploadedAt: now},
		{ImageURL: "/2.jpg", UploadedAt: now},
	}))
	require.NoError(t, repo.AddImages(ctx, p.ID, []models.PropertyImage{
		{ImageURL: "/3.jpg", UploadedAt: now},
	}))

	imgs, err := repo.Images(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, imgs, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{imgs[0].DisplayOrder, imgs[1].DisplayOrder, imgs[2].DisplayOrder})
	assert.True(t, imgs[0].IsPrimary)
	assert.False(t, imgs[1].IsPrimary)
	assert.False(t, imgs[2].IsPrimary, "later batches keep the existing primary")

	t.Run("set primary", func(t *testing.T) {
		ok, err := repo.SetPrimaryImage(ctx, p.ID, imgs[2].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.Images(ctx, p.ID)
		require.NoError(t, err)
		primaries := 0
		for _, img := range got {
			if img.IsPrimary {
				primaries++
				assert.Equal(t, imgs[2].ID, img.ID)
			}
		}
		assert.Equal(t, 1, primaries)

		ok, err = repo.SetPrimaryImage(ctx, p.ID, 9999)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete primary promotes next", func(t *testing.T) {
		deleted, err := repo.DeleteImage(ctx, p.ID, imgs[2].ID)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, "/3.jpg", deleted.ImageURL)

		got, err := repo.Images(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].IsPrimary)
		assert.Equal(t, imgs[0].ID, got[0].ID)

		deleted, err = repo.DeleteImage(ctx, p.ID, 9999)
		require.NoError(t, err)
		assert.Nil(t, deleted)
	})

	t.Run("missing property", func(t *testing.T) {
		err := repo.AddImages(ctx, 9999, []models.PropertyImage{{ImageURL: "/x.jpg", UploadedAt: now}})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
