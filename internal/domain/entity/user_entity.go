package entity

import (
	"time"
)

// User is the aggregate root for the credential store.
// Password holds the bcrypt digest only; plaintext is never assigned here.
type User struct {
	ID           string
	Username     string
	Email        string
	Password     string
	ProfileImage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of User that is safe to return to clients.
type PublicUser struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}
