package models

import "time"

const (
	RoleTraveler = "TRAVELER"
	RoleOwner    = "OWNER"
	RoleDriver   = "DRIVER"
	RoleAdmin    = "ADMIN"
)

// Identity-review lifecycle. UNVERIFIED until documents are submitted,
// PENDING while an admin reviews them, then APPROVED or REJECTED.
const (
	IDStatusUnverified = "UNVERIFIED"
	IDStatusPending    = "PENDING"
	IDStatusApproved   = "APPROVED"
	IDStatusRejected   = "REJECTED"
)

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone"`
	Password   string    `json:"-"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	AvatarURL  *string   `json:"avatar_url"`
	Bio        *string   `json:"bio"`
	Address    *string   `json:"address"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	IDStatus   string    `json:"id_status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type OwnerProfile struct {
	UserID          string `json:"user_id"`
	IDCardURL       string `json:"id_card_url"`
	OwnershipDocURL string `json:"ownership_doc_url"`
}

// Profile is the caller-facing projection of a User: everything except
// credentials.
type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	AvatarURL  *string   `json:"avatar_url"`
	Bio        *string   `json:"bio"`
	Address    *string   `json:"address"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	IDStatus   string    `json:"id_status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:         u.ID,
		Email:      u.Email,
		Phone:      u.Phone,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		AvatarURL:  u.AvatarURL,
		Bio:        u.Bio,
		Address:    u.Address,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		IDStatus:   u.IDStatus,
		CreatedAt:  u.CreatedAt,
	}
}
