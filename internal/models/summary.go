package models

// UserSummary is the denormalized view of a user embedded in other responses.
type UserSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Summary returns the embedded view of u, or nil when u is nil.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		PhoneNumber: u.PhoneNumber,
	}
}

// PropertySummary is the embedded view of a listing.
type PropertySummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Summary returns the embedded view of p, or nil when p is nil.
func (p *Property) Summary() *PropertySummary {
	if p == nil {
		return nil
	}
	return &PropertySummary{ID: p.ID, Title: p.Title}
}
