package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ClientNotification struct {
	bun.BaseModel `bun:"table:client_notifications"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID  int64     `bun:"client_id,notnull" json:"client_id"`
	Notes     string    `bun:"notes,notnull" json:"notes"`
	IsRead    bool      `bun:"is_read" json:"is_read"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

type ClientReminder struct {
	bun.BaseModel `bun:"table:client_reminders"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID     int64     `bun:"client_id,notnull" json:"client_id"`
	ReminderDate time.Time `bun:"reminder_date" json:"reminder_date"`
	Notes        string    `bun:"notes" json:"notes,omitempty"`
}
