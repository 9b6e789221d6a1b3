package users

import (
	"fmt"
	"time"

	"unicode"
)

// RoleType represents a user role within the blog platform
type RoleType string

const (
	RoleReader RoleType = "reader" // Default role, can read and comment
	RoleAuthor RoleType = "author" // Can create and manage own posts
	RoleEditor RoleType = "editor" // Can edit any post
	RoleAdmin  RoleType = "admin"  // Full platform administration
)

// Provider records a federated identity-provider link for a user who signed
// in via OAuth (Google, GitHub). Federated-only accounts have no password hash.
type Provider struct {
	Name string `json:"provider"` // "google" or "github"
	ID   string `json:"id"`       // Provider-side subject identifier
}

type User struct {
	ID           string     `json:"id,omitempty"`        // Unique identifier for the user
	Name         string     `json:"name,omitempty"`      // Display name
	Username     string     `json:"username,omitempty"`  // Unique username
	Email        string     `json:"email,omitempty"`     // User's email address
	PasswordHash string     `json:"-"`                   // Hashed version of the user's password - never serialize
	Providers    []Provider `json:"providers,omitempty"` // Linked federated identity providers
	Roles        []RoleType `json:"roles,omitempty"`     // Platform roles, defaults to reader
	Bio          string     `json:"bio,omitempty"`       // Short profile text
	Avatar       string     `json:"avatar,omitempty"`    // Media URL
	Verified     bool       `json:"verified,omitempty"`  // Verified, has the user verified who they are
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// HasRole checks if the user has a specific role
func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin returns true if the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// HasProvider checks if the user is linked to the given identity provider
func (u *User) HasProvider(name string) bool {
	for _, p := range u.Providers {
		if p.Name == name {
			return true
		}
	}
	return false
}

// WithoutPasswordHash returns a copy of the user safe to hand back to callers.
func (u *User) WithoutPasswordHash() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
