// Package models holds the backend's persisted rows.
package models

import "time"

// User is an operator account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
