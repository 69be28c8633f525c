package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Vehicle struct {
	bun.BaseModel `bun:"table:vehicles"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID       int64     `bun:"client_id,notnull" json:"client_id"`
	ManufacturerID int64     `bun:"manufacturer_id" json:"manufacturer_id,omitempty"`
	Model          string    `bun:"model,notnull" json:"model"`
	LicensePlate   string    `bun:"license_plate,unique,notnull" json:"license_plate"`
	Year           int       `bun:"year" json:"year,omitempty"`
	IsActive       bool      `bun:"is_active" json:"is_active"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

type VehicleAppointment struct {
	bun.BaseModel `bun:"table:vehicle_appointments"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	VehicleID       int64     `bun:"vehicle_id,notnull" json:"vehicle_id"`
	GarageID        int64     `bun:"garage_id,notnull" json:"garage_id"`
	AppointmentDate time.Time `bun:"appointment_date,notnull" json:"appointment_date"`
	Note            string    `bun:"note" json:"note,omitempty"`
}

// RescheduleRequest is the body of the appointment reschedule patch.
type RescheduleRequest struct {
	AppointmentDate time.Time `json:"appointment_date"`
}

// AppointmentNoteRequest is the body of the appointment note patch.
type AppointmentNoteRequest struct {
	Note string `json:"note"`
}
