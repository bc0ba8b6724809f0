package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// User represents an account in the system.
// Profile presence is the only record of whether a profile exists.
type User struct {
	ID             int64          `db:"id" json:"id"`
	Username       string         `db:"username" json:"username"`
	PasswordHashed string         `db:"password_hashed" json:"-"` // "-" hides from JSON output
	PhoneNumber    string         `db:"phone_number" json:"phone_number"`
	FriendsList    pq.StringArray `db:"friends_list" json:"friends_list"`
	Profile        *Profile       `db:"profile" json:"profile,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// HasProfile reports whether the embedded profile is populated.
func (u *User) HasProfile() bool {
	return u.Profile != nil
}

// Summary returns the public, denormalized view of the account.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// UserSummary is the lightweight author reference embedded in other views.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}

// AccountView is what GET /users/{username} renders.
type AccountView struct {
	User      *User      `json:"user"`
	Portfolio *Portfolio `json:"portfolio,omitempty"`
}

// RegisterRequest represents the signup form.
// Purpose, Experience and ProfileImage seed the profile when any is present.
type RegisterRequest struct {
	Username     string
	Password     string
	PhoneNumber  string
	Purpose      string
	Experience   string
	ProfileImage string
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string
	Password string
}

// UpdateAccountRequest carries the editable account fields; nil means unchanged.
type UpdateAccountRequest struct {
	Username    *string
	PhoneNumber *string
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPhoneRequired    = errors.New("phone number is required")
	ErrFriendRequired   = errors.New("friend name is required")
)
