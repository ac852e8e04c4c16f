package property

import (
	"time"

	"github.com/evcraddock/realty/internal/models"
)

// DTO is the API representation of a property.
type DTO struct {
	ID              int64                  `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Price           float64                `json:"price"`
	Type            models.PropertyType    `json:"type"`
	Transaction     models.TransactionType `json:"transaction"`
	Status          models.PropertyStatus  `json:"status"`
	Address         string                 `json:"address"`
	City            string                 `json:"city,omitempty"`
	Area            float64                `json:"area"`
	Bedrooms        *int                   `json:"bedrooms"`
	Bathrooms       *int                   `json:"bathrooms"`
	YearBuilt       *int                   `json:"yearBuilt"`
	IsFeatured      bool                   `json:"isFeatured"`
	ViewCount       int                    `json:"viewCount"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       *time.Time             `json:"updatedAt"`
	OwnerID         string                 `json:"ownerId"`
	Owner           *models.UserSummary    `json:"owner,omitempty"`
	Images          []ImageDTO             `json:"images"`
	PrimaryImageURL string                 `json:"primaryImageUrl"`
	Inquiries       []InquirySummary       `json:"inquiries,omitempty"`
}

// ImageDTO is the API representation of a property image.
type ImageDTO struct {
	ID           int64     `json:"id"`
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	IsPrimary    bool      `json:"isPrimary"`
	DisplayOrder int       `json:"displayOrder"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// InquirySummary is an inquiry as shown on its property's detail view.
type InquirySummary struct {
	ID          int64                `json:"id"`
	Status      models.InquiryStatus `json:"status"`
	RequestDate time.Time            `json:"requestDate"`
	User        *models.UserSummary  `json:"user,omitempty"`
}

// Statistics counts properties in total and per status.
type Statistics struct {
	TotalCount int64            `json:"totalCount"`
	ByStatus   map[string]int64 `json:"byStatus"`
}

// CreateInput is the payload for creating a property.
type CreateInput struct {
	Title       string                 `json:"title" binding:"required,max=200"`
	Description string                 `json:"description" binding:"required,max=2000"`
	Price       float64                `json:"price" binding:"gte=0"`
	Type        models.PropertyType    `json:"type" binding:"min=0,max=4"`
	Transaction models.TransactionType `json:"transaction" binding:"min=0,max=1"`
	Address     string                 `json:"address" binding:"required,max=500"`
	City        string                 `json:"city" binding:"max=100"`
	Area        float64                `json:"area" binding:"gt=0"`
	Bedrooms    *int                   `json:"bedrooms" binding:"omitempty,min=0,max=100"`
	Bathrooms   *int                   `json:"bathrooms" binding:"omitempty,min=0,max=100"`
	YearBuilt   *int                   `json:"yearBuilt" binding:"omitempty,min=1800,max=2100"`
	IsFeatured  bool                   `json:"isFeatured"`
	ImageURLs   []string               `json:"imageUrls" binding:"omitempty,dive,required,max=500"`
}

// UpdateInput is the payload for replacing a property's editable fields.
type UpdateInput struct {
	Title       string                 `json:"title" binding:"required,max=200"`
	Description string                 `json:"description" binding:"required,max=2000"`
	Price       float64                `json:"price" binding:"gte=0"`
	Type        models.PropertyType    `json:"type" binding:"min=0,max=4"`
	Transaction models.TransactionType `json:"transaction" binding:"min=0,max=1"`
	Status      models.PropertyStatus  `json:"status" binding:"min=0,max=3"`
	Address     string                 `json:"address" binding:"required,max=500"`
	City        string                 `json:"city" binding:"max=100"`
	Area        float64                `json:"area" binding:"gt=0"`
	Bedrooms    *int                   `json:"bedrooms" binding:"omitempty,min=0,max=100"`
	Bathrooms   *int                   `json:"bathrooms" binding:"omitempty,min=0,max=100"`
	YearBuilt   *int                   `json:"yearBuilt" binding:"omitempty,min=1800,max=2100"`
	IsFeatured  bool                   `json:"isFeatured"`
}

// Upload is one image file received for a property.
type Upload struct {
	Filename string
	Data     []byte
}

// ToDTO maps a property and whatever relations were loaded.
func ToDTO(p *models.Property) DTO {
	d := DTO{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		Type:            p.Type,
		Transaction:     p.Transaction,
		Status:          p.Status,
		Address:         p.Address,
		City:            p.City,
		Area:            p.Area,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		YearBuilt:       p.YearBuilt,
		IsFeatured:      p.IsFeatured,
		ViewCount:       p.ViewCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		OwnerID:         p.OwnerID,
		Owner:           p.Owner.Summary(),
		Images:          ToImageDTOs(p.Images),
		PrimaryImageURL: p.PrimaryImageURL(),
	}
	for i := range p.Inquiries {
		inq := &p.Inquiries[i]
		d.Inquiries = append(d.Inquiries, InquirySummary{
			ID:          inq.ID,
			Status:      inq.Status,
			RequestDate: inq.RequestDate,
			User:        inq.User.Summary(),
		})
	}
	return d
}

// ToImageDTOs maps images, never returning nil.
func ToImageDTOs(imgs []models.PropertyImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, ImageDTO{
			ID:           img.ID,
			ImageURL:     img.ImageURL,
			ThumbnailURL: img.ThumbnailURL,
			IsPrimary:    img.IsPrimary,
			DisplayOrder: img.DisplayOrder,
			UploadedAt:   img.UploadedAt,
		})
	}
	return out
}
