package dto

import (
	"time"

	"github.com/ST1000-S/iTechies/internal/domain"
)

// RegisterRequest payload for new accounts. Skills may arrive as a
// repeated form field, a JSON array, or a single comma-separated value.
type RegisterRequest struct {
	Name         string   `json:"name" form:"name"`
	Email        string   `json:"email" form:"email"`
	Password     string   `json:"password" form:"password"`
	Role         string   `json:"role" form:"role"`
	Skills       []string `json:"skills" form:"skills"`
	Location     string   `json:"location" form:"location"`
	Availability string   `json:"availability" form:"availability"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// UserResponse is the public view of an account; the password hash never
// leaves the server.
type UserResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	Skills       []string    `json:"skills,omitempty"`
	Location     string      `json:"location,omitempty"`
	Availability string      `json:"availability,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Skills:       user.Skills,
		Location:     user.Location,
		Availability: user.Availability,
		CreatedAt:    user.CreatedAt,
	}
}
