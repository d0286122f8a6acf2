package domain

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts any casing; "" and unknown values are rejected.
func ParseStatus(s string) (Status, bool) {
	switch Status(lower(s)) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Listing is a hotel record as stored (Spanish is the storage language).
type Listing struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Region          string     `json:"region"`
	City            string     `json:"city"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	Address         string     `json:"address"`
	Surroundings    []string   `json:"surroundings"`
	RecreationAreas string     `json:"recreationAreas,omitempty"`
	Type            string     `json:"type"`
	Status          Status     `json:"status"`
	Paid            bool       `json:"paid"`
	Price           *float64   `json:"price,omitempty"`
	ImageURL        *string    `json:"imageUrl,omitempty"`
	ImageKey        *string    `json:"-"`
	ContactName     string     `json:"contactName,omitempty"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Website         string     `json:"website,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
}

// Eligible reports whether the listing may appear in search results.
func (l Listing) Eligible() bool {
	return l.Status == StatusApproved && l.Paid
}

// ListingFilter narrows the admin listing view. Empty fields match everything.
type ListingFilter struct {
	Status *Status
	Region string
	City   string
}

// ListingPatch carries the fields accepted by a partial update.
type ListingPatch struct {
	Name            *string
	Region          *string
	City            *string
	Description     *string
	Location        *string
	Address         *string
	Surroundings    *[]string
	RecreationAreas *string
	Type            *string
	Status          *Status
	Paid            *bool
	Price           *float64
	ApprovedAt      *time.Time
}

// SearchQuery is the ephemeral input of one catalog search.
type SearchQuery struct {
	Lang     string
	Location string
	Types    []string
}
