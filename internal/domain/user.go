package domain

import "time"

// ProfilePicture holds an inline image blob attached to a user. When
// object-storage mirroring is configured URL points at the mirrored copy.
type ProfilePicture struct {
	Data        []byte
	ContentType string
	URL         *string
}

// User is the domain model for account holders.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Picture      *ProfilePicture
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
