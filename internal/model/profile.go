package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Profile is embedded in the users row as JSONB.
type Profile struct {
	Bio           string    `json:"bio"`
	Purpose       string    `json:"purpose"`
	Skills        []string  `json:"skills"`
	ProfileImage  string    `json:"profile_image,omitempty"`
	ProfileAuthor int64     `json:"profile_author"`
	CreatedAt     time.Time `json:"created_at"`
}

// Value implements driver.Valuer. A nil *Profile is stored as NULL.
func (p Profile) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for the JSONB column.
func (p *Profile) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported profile source type %T", src)
	}
	return json.Unmarshal(data, p)
}

// ProfileRequest is the add/edit profile form. Skills is comma-delimited text.
type ProfileRequest struct {
	Bio          string
	Purpose      string
	Skills       string
	ProfileImage string
}

var (
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
)
