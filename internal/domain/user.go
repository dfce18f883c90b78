package domain

import "time"

// User is a platform account: requester, technician or administrator.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleName     string
	Active       bool
	CreatedAt    time.Time
}
