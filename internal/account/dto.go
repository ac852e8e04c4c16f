package account

import (
	"time"

	"github.com/evcraddock/realty/internal/models"
)

// DTO is the API representation of a user.
type DTO struct {
	ID              string      `json:"id"`
	Email           string      `json:"email"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	FullName        string      `json:"fullName"`
	PhoneNumber     string      `json:"phoneNumber"`
	Address         string      `json:"address"`
	ProfileImageURL string      `json:"profileImageUrl"`
	IsActive        bool        `json:"isActive"`
	Role            models.Role `json:"role"`
	CreatedAt       time.Time   `json:"createdAt"`
	LastLoginAt     *time.Time  `json:"lastLoginAt"`
	PropertyCount   int64       `json:"propertyCount"`
	InquiryCount    int64       `json:"inquiryCount"`
}

// Statistics summarizes the user base.
type Statistics struct {
	TotalCount    int64 `json:"totalCount"`
	ActiveCount   int64 `json:"activeCount"`
	InactiveCount int64 `json:"inactiveCount"`
}

// RegisterInput is the payload for public sign-up.
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email,max=256"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"firstName" binding:"required,max=100"`
	LastName    string `json:"lastName" binding:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"max=32"`
}

// CreateInput is the payload for provisioning a user with a role.
type CreateInput struct {
	RegisterInput
	Address string      `json:"address" binding:"max=500"`
	Role    models.Role `json:"role" binding:"required"`
}

// UpdateInput replaces a user's profile. An empty Role keeps the current one.
type UpdateInput struct {
	Email       string      `json:"email" binding:"required,email,max=256"`
	FirstName   string      `json:"firstName" binding:"required,max=100"`
	LastName    string      `json:"lastName" binding:"required,max=100"`
	PhoneNumber string      `json:"phoneNumber" binding:"max=32"`
	Address     string      `json:"address" binding:"max=500"`
	IsActive    bool        `json:"isActive"`
	Role        models.Role `json:"role"`
}

// LoginInput is the payload for password sign-in.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToDTO maps a user. Activity counts are left at zero.
func ToDTO(u *models.User) DTO {
	return DTO{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		PhoneNumber:     u.PhoneNumber,
		Address:         u.Address,
		ProfileImageURL: u.ProfileImageURL,
		IsActive:        u.IsActive,
		Role:            u.Role(),
		CreatedAt:       u.CreatedAt,
		LastLoginAt:     u.LastLoginAt,
	}
}
