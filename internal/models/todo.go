package models

import "time"

type Todo struct {
	ID            string
	UserID        string
	Title         string
	Notes         string
	Done          bool
	AttachmentKey *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
