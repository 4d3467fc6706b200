package models

import "time"

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

type Booking struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	TravelerID string    `json:"traveler_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
	TotalPrice int64     `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingView joins the fields a listing caller needs alongside the booking
// itself: property headline for travelers, traveler name for owners.
type BookingView struct {
	Booking
	PropertyTitle string  `json:"property_title"`
	PropertyCity  string  `json:"property_city"`
	TravelerName  *string `json:"traveler_name,omitempty"`
}

type OwnerStats struct {
	TotalRevenue  int64 `json:"total_revenue"`
	BookingCount  int   `json:"booking_count"`
	PropertyCount int   `json:"property_count"`
}
