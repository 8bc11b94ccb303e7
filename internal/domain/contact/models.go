package contact

import (
	"errors"
	"time"
)

var ErrContactNotFound = errors.New("contact not found")

// Contact is a synced (name, phone) pair owned by a single user.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SyncContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (c SyncContact) Validate() error {
	if c.Phone == "" {
		return errors.New("phone is required")
	}
	if len(c.Phone) > 32 {
		return errors.New("phone must be 32 characters or less")
	}
	if len(c.Name) > 256 {
		return errors.New("name must be 256 characters or less")
	}
	return nil
}
