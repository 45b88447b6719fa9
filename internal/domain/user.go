package domain

import (
	"errors"
	"strings"
	"time"
)

// Role determines which operations an identity may invoke.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

// ValidRole reports whether the string names a known role.
func ValidRole(r string) bool {
	return Role(r) == RoleCustomer || Role(r) == RoleProvider
}

// User is the domain model for marketplace accounts. Customers post
// service requests; providers accept them and carry the skills and
// location shown in the provider directory.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Skills       []string
	Location     string
	Availability string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Review is appended to a provider by a customer; reviews are never
// edited or removed.
type Review struct {
	ID         string
	ProviderID string
	AuthorID   string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// NewCustomer builds a customer account. Customers carry no skill or
// location requirements.
func NewCustomer(name, email, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleCustomer,
	}
}

// NewProvider builds a provider account. Providers must declare at least
// one skill and a location.
func NewProvider(name, email, passwordHash string, skills []string, location string) (*User, error) {
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("provider requires at least one skill")
	}
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("provider requires a location")
	}
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleProvider,
		Skills:       cleaned,
		Location:     location,
	}, nil
}
