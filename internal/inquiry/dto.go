package inquiry

import (
	"time"

	"github.com/evcraddock/realty/internal/models"
)

// DTO is the API representation of an inquiry.
type DTO struct {
	ID                 int64                   `json:"id"`
	PropertyID         int64                   `json:"propertyId"`
	Property           *models.PropertySummary `json:"property,omitempty"`
	UserID             string                  `json:"userId"`
	User               *models.UserSummary     `json:"user,omitempty"`
	Message            string                  `json:"message"`
	PhoneNumber        string                  `json:"phoneNumber"`
	PreferredVisitDate *time.Time              `json:"preferredVisitDate"`
	Status             models.InquiryStatus    `json:"status"`
	RequestDate        time.Time               `json:"requestDate"`
	ResponseDate       *time.Time              `json:"responseDate"`
	AdminNotes         *string                 `json:"adminNotes"`
}

// CreateInput is the payload for sending an inquiry.
type CreateInput struct {
	PropertyID         int64      `json:"propertyId" binding:"required,gt=0"`
	Message            string     `json:"message" binding:"required,max=1000"`
	PhoneNumber        string     `json:"phoneNumber" binding:"required,max=32"`
	PreferredVisitDate *time.Time `json:"preferredVisitDate"`
}

// StatusInput moves an inquiry through its lifecycle.
// A nil AdminNotes leaves the stored notes unchanged.
type StatusInput struct {
	Status     models.InquiryStatus
	AdminNotes *string
}

// ToDTO maps an inquiry and whatever relations were loaded.
func ToDTO(inq *models.Inquiry) DTO {
	return DTO{
		ID:                 inq.ID,
		PropertyID:         inq.PropertyID,
		Property:           inq.Property.Summary(),
		UserID:             inq.UserID,
		User:               inq.User.Summary(),
		Message:            inq.Message,
		PhoneNumber:        inq.PhoneNumber,
		PreferredVisitDate: inq.PreferredVisitDate,
		Status:             inq.Status,
		RequestDate:        inq.RequestDate,
		ResponseDate:       inq.ResponseDate,
		AdminNotes:         inq.AdminNotes,
	}
}
