package models

import "time"

// VerificationLog is an append-only audit record of identity-status
// transitions. Rows are written once and never updated or deleted.
type VerificationLog struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	AdminID        *string   `json:"admin_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Reason         *string   `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}
