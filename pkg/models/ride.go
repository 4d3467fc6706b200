package models

import "time"

const (
	RideRequested  = "REQUESTED"
	RideAccepted   = "ACCEPTED"
	RideInProgress = "IN_PROGRESS"
	RideCompleted  = "COMPLETED"
	RideCancelled  = "CANCELLED"
)

type Ride struct {
	ID             string    `json:"id"`
	PassengerID    string    `json:"passenger_id"`
	DriverID       *string   `json:"driver_id"` // DriverProfile ID, set on accept
	PickupAddress  string    `json:"pickup_address"`
	PickupLat      float64   `json:"pickup_lat"`
	PickupLng      float64   `json:"pickup_lng"`
	DropoffAddress string    `json:"dropoff_address"`
	DropoffLat     float64   `json:"dropoff_lat"`
	DropoffLng     float64   `json:"dropoff_lng"`
	Status         string    `json:"status"`
	Fare           *int64    `json:"fare"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RideView adds the counterparty's contact details for the active-ride
// screen: the passenger sees the driver, the driver sees the passenger.
type RideView struct {
	Ride
	CounterpartName  *string `json:"counterpart_name,omitempty"`
	CounterpartPhone *string `json:"counterpart_phone,omitempty"`
}
