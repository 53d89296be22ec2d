package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Every user owns exactly one cart,
// provisioned at registration.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	CartID       uuid.UUID `json:"cart_id" db:"cart_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
