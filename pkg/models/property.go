package models

import "time"

// PropertyView is a search hit: the listing plus the owner details a
// traveler sees before booking.
type PropertyView struct {
	Property
	OwnerFirstName *string `json:"owner_first_name,omitempty"`
	OwnerAvatarURL *string `json:"owner_avatar_url,omitempty"`
}

type Property struct {
	ID            string      `json:"id"`
	OwnerID       string      `json:"owner_id"`
	Title         string      `json:"title"`
	City          string      `json:"city"`
	Address       string      `json:"address"`
	PricePerNight int64       `json:"price_per_night"`
	IsActive      bool        `json:"is_active"`
	BlockedDates  []time.Time `json:"blocked_dates"`
	Images        []string    `json:"images"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
