package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"gym-membership/internal/domain"
)

const (
	minFullNameLen = 2
	minPasswordLen = 6
)

// UserProfile is a member's profile. Email is fixed at sign-up.
type UserProfile struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	FitnessGoals string    `json:"fitnessGoals"`
	PhotoURL     string    `json:"photoURL,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayName joins first and last name.
func (u *UserProfile) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Credentials holds the password hash for a profile. It is never serialized.
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
}

// SignUpInput is the validated sign-up form.
type SignUpInput struct {
	FullName string
	Email    string
	Password string
}

func (in SignUpInput) Validate() error {
	if len([]rune(strings.TrimSpace(in.FullName))) < minFullNameLen {
		return domain.Invalid("fullName", "must be at least 2 characters")
	}
	if !isBareAddress(in.Email) {
		return domain.Invalid("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		return domain.Invalid("password", "must be at least 6 characters")
	}
	return nil
}

// isBareAddress accepts a plain addr-spec only; display-name and angle-bracket
// forms are rejected so the stored email is exactly what was typed.
func isBareAddress(email string) bool {
	trimmed := strings.TrimSpace(email)
	addr, err := mail.ParseAddress(trimmed)
	return err == nil && addr.Address == trimmed && strings.Contains(trimmed, "@")
}

// NewUserProfile builds a profile from a sign-up form. The full name is split on
// the first space: the first token is the first name, the rest the last name.
func NewUserProfile(in SignUpInput, now time.Time) (*UserProfile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	first, last := SplitFullName(in.FullName)
	return &UserProfile{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Email:     NormalizeEmail(in.Email),
		CreatedAt: now,
	}, nil
}

func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	FitnessGoals string `json:"fitnessGoals"`
}

func (p ProfileUpdate) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return domain.Invalid("firstName", "is required")
	}
	return nil
}
