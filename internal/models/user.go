package models

import "time"

// User is a registered account. HashedPassword is a bcrypt hash and must
// never leave the server.
type User struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	Avatar         string
	Confirmed      bool
	CreatedAt      time.Time
}
