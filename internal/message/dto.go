package message

import (
	"time"

	"github.com/evcraddock/realty/internal/models"
)

// DTO is the API representation of a message.
type DTO struct {
	ID         int64                   `json:"id"`
	SenderID   string                  `json:"senderId"`
	Sender     *models.UserSummary     `json:"sender,omitempty"`
	ReceiverID string                  `json:"receiverId"`
	Receiver   *models.UserSummary     `json:"receiver,omitempty"`
	Subject    string                  `json:"subject"`
	Content    string                  `json:"content"`
	IsRead     bool                    `json:"isRead"`
	SentDate   time.Time               `json:"sentDate"`
	PropertyID *int64                  `json:"propertyId"`
	Property   *models.PropertySummary `json:"property,omitempty"`
}

// SendInput is the payload for sending a message.
type SendInput struct {
	ReceiverID string `json:"receiverId" binding:"required,max=36"`
	Subject    string `json:"subject" binding:"required,max=200"`
	Content    string `json:"content" binding:"required,max=2000"`
	PropertyID *int64 `json:"propertyId" binding:"omitempty,gt=0"`
}

// ToDTO maps a message and whatever relations were loaded.
func ToDTO(m *models.Message) DTO {
	return DTO{
		ID:         m.ID,
		SenderID:   m.SenderID,
		Sender:     m.Sender.Summary(),
		ReceiverID: m.ReceiverID,
		Receiver:   m.Receiver.Summary(),
		Subject:    m.Subject,
		Content:    m.Content,
		IsRead:     m.IsRead,
		SentDate:   m.SentDate,
		PropertyID: m.PropertyID,
		Property:   m.Property.Summary(),
	}
}
