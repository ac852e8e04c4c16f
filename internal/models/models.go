// Package models defines the persisted entities of the listing platform.
package models

import "time"

// User is an account. Email doubles as the login name.
type User struct {
	ID              string     `gorm:"primaryKey;size:36"`
	Email           string     `gorm:"size:256;not null;uniqueIndex"`
	PasswordHash    string     `gorm:"size:100;not null"`
	FirstName       string     `gorm:"size:100;not null"`
	LastName        string     `gorm:"size:100;not null"`
	PhoneNumber     string     `gorm:"size:32"`
	Address         string     `gorm:"size:500"`
	ProfileImageURL string     `gorm:"size:500"`
	IsActive        bool       `gorm:"not null;index"`
	CreatedAt       time.Time  `gorm:"not null;index"`
	LastLoginAt     *time.Time
	Roles           []UserRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Role returns the user's role, or "" if roles were not loaded.
func (u *User) Role() Role {
	if len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0].Role
}

// RoleNames returns the loaded roles as strings.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r.Role))
	}
	return names
}

// UserRole is a role membership row. A user holds exactly one.
type UserRole struct {
	UserID string `gorm:"primaryKey;size:36"`
	Role   Role   `gorm:"primaryKey;size:16;index"`
}

// Property is a listing.
type Property struct {
	ID          int64           `gorm:"primaryKey"`
	Title       string          `gorm:"size:200;not null"`
	Description string          `gorm:"size:2000;not null"`
	Price       float64         `gorm:"type:decimal(18,2);not null"`
	Type        PropertyType    `gorm:"not null;index"`
	Transaction TransactionType `gorm:"column:transaction_type;not null;index"`
	Status      PropertyStatus  `gorm:"not null;index"`
	Address     string          `gorm:"size:500;not null"`
	City        string          `gorm:"size:100;index"`
	Area        float64         `gorm:"not null"`
	Bedrooms    *int
	Bathrooms   *int
	YearBuilt   *int
	IsFeatured  bool       `gorm:"not null;index"`
	ViewCount   int        `gorm:"not null;default:0"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false"`

	OwnerID   string          `gorm:"size:36;not null;index"`
	Owner     *User           `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
	Images    []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	Inquiries []Inquiry       `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

// PrimaryImageURL returns the URL of the primary image, or "" if none is marked.
func (p *Property) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	return ""
}

// PropertyImage is one picture of a property.
type PropertyImage struct {
	ID           int64     `gorm:"primaryKey"`
	PropertyID   int64     `gorm:"not null;index"`
	ImageURL     string    `gorm:"size:500;not null"`
	ThumbnailURL string    `gorm:"size:500"`
	StorageKey   string    `gorm:"size:300"`
	IsPrimary    bool      `gorm:"not null"`
	DisplayOrder int       `gorm:"not null"`
	UploadedAt   time.Time `gorm:"not null"`
}

// Inquiry is a contact request from a prospective buyer or renter.
type Inquiry struct {
	ID                 int64         `gorm:"primaryKey"`
	PropertyID         int64         `gorm:"not null;index"`
	Property           *Property     `gorm:"foreignKey:PropertyID"`
	UserID             string        `gorm:"size:36;not null;index"`
	User               *User         `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Message            string        `gorm:"size:1000;not null"`
	PhoneNumber        string        `gorm:"size:32;not null"`
	PreferredVisitDate *time.Time
	Status             InquiryStatus `gorm:"not null;index"`
	RequestDate        time.Time     `gorm:"not null;index"`
	ResponseDate       *time.Time
	AdminNotes         *string `gorm:"size:1000"`
}

// Message is private mail between two users, optionally about a listing.
type Message struct {
	ID         int64     `gorm:"primaryKey"`
	SenderID   string    `gorm:"size:36;not null;index"`
	Sender     *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:RESTRICT"`
	ReceiverID string    `gorm:"size:36;not null;index"`
	Receiver   *User     `gorm:"foreignKey:ReceiverID;constraint:OnDelete:RESTRICT"`
	Subject    string    `gorm:"size:200;not null"`
	Content    string    `gorm:"size:2000;not null"`
	IsRead     bool      `gorm:"not null;index"`
	SentDate   time.Time `gorm:"not null;index"`
	PropertyID *int64    `gorm:"index"`
	Property   *Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:SET NULL"`
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&UserRole{},
		&Property{},
		&PropertyImage{},
		&Inquiry{},
		&Message{},
	}
}
