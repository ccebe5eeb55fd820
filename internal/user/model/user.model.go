package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignupForm is the raw /signup submission.
type SignupForm struct {
	Username string
	Password string
	Verify   string
	Email    string
}
