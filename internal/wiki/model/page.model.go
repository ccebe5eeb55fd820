package model

import "time"

// Page is one immutable version of the content at Path.
type Page struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}
