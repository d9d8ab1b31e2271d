package models

import "time"

// Contact is an address-book entry owned by a single user.
type Contact struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	BirthDate      time.Time
	AdditionalData string
	UserID         int64
}
