package entities

import "time"

// PaymentCard belongs to exactly one user for its whole lifetime.
type PaymentCard struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Number         string    `json:"number"`
	Holder         string    `json:"holder"`
	ExpirationDate time.Time `json:"expiration_date"`
	Active         bool      `json:"active"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
