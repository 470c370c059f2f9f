package auth

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Salt         []byte    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// Identity is the outcome of resolving a session token. The zero value is
// the anonymous identity.
type Identity struct {
	UserID int64
	Email  string
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0
}
