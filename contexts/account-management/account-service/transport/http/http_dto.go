package httptransport

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format of birth and expiration dates.
const DateLayout = "2006-01-02"

// UserRequest is the body of user create and update calls.
type UserRequest struct {
	Name      string `json:"name" binding:"required,max=50"`
	Surname   string `json:"surname" binding:"required,max=50"`
	BirthDate string `json:"birth_date" binding:"required"`
	Email     string `json:"email" binding:"required,max=100"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	BirthDate string    `json:"birth_date"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListUsersRequest carries the query string of GET /users.
type ListUsersRequest struct {
	Name    string `form:"name"`
	Surname string `form:"surname"`
	Page    int    `form:"page" binding:"min=0"`
	Size    int    `form:"size" binding:"min=0"`
}

// PageRequest carries page and size query parameters.
type PageRequest struct {
	Page int `form:"page" binding:"min=0"`
	Size int `form:"size" binding:"min=0"`
}

type UserPageResponse struct {
	Items      []UserResponse `json:"items"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

type DeleteUserResponse struct {
	UserID         int64   `json:"user_id"`
	DeletedCardIDs []int64 `json:"deleted_card_ids"`
}

// CardRequest is the body of card create and update calls.
type CardRequest struct {
	Number         string `json:"number" binding:"required,numeric,min=13,max=19"`
	Holder         string `json:"holder" binding:"required,max=100"`
	ExpirationDate string `json:"expiration_date" binding:"required"`
}

type CardResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Number         string    `json:"number"`
	Holder         string    `json:"holder"`
	ExpirationDate string    `json:"expiration_date"`
	Active         bool      `json:"active"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CardListResponse struct {
	UserID int64          `json:"user_id"`
	Cards  []CardResponse `json:"cards"`
}

type CardPageResponse struct {
	Items      []CardResponse `json:"items"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

type CacheEntryResponse struct {
	Space   string          `json:"space"`
	Key     string          `json:"key"`
	Version int64           `json:"version"`
	Value   json.RawMessage `json:"value" swaggertype:"object"`
}

type ClearCacheResponse struct {
	Kind    string   `json:"kind"`
	Cleared []string `json:"cleared"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
