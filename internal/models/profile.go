package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Country struct {
	bun.BaseModel `bun:"table:countries"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	CountryName string `bun:"country_name,notnull" json:"country_name"`
	PhoneExt    string `bun:"phone_ext" json:"phone_ext,omitempty"`
}

type Specialization struct {
	bun.BaseModel `bun:"table:specializations"`

	ID                 int64  `bun:"id,pk,autoincrement" json:"id"`
	SpecializationDesc string `bun:"specialization_desc,notnull" json:"specialization_desc"`
}

type ClientProfile struct {
	bun.BaseModel `bun:"table:client_profiles"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	FirstName string    `bun:"first_name,notnull" json:"first_name"`
	LastName  string    `bun:"last_name,notnull" json:"last_name"`
	Email     string    `bun:"email" json:"email,omitempty"`
	PhoneExt  string    `bun:"phone_ext" json:"phone_ext,omitempty"`
	Phone     string    `bun:"phone" json:"phone,omitempty"`
	Address   string    `bun:"address" json:"address,omitempty"`
	CountryID int64     `bun:"country_id,notnull" json:"country_id"`
	IsPremium bool      `bun:"is_premium" json:"is_premium"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

type GarageProfile struct {
	bun.BaseModel `bun:"table:garage_profiles"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID           int64     `bun:"user_id,notnull" json:"user_id"`
	GarageName       string    `bun:"garage_name,notnull" json:"garage_name"`
	Email            string    `bun:"email" json:"email,omitempty"`
	PhoneExt         string    `bun:"phone_ext" json:"phone_ext,omitempty"`
	Phone            string    `bun:"phone" json:"phone,omitempty"`
	Address          string    `bun:"address" json:"address,omitempty"`
	CountryID        int64     `bun:"country_id,notnull" json:"country_id"`
	SpecializationID int64     `bun:"specialization_id,notnull" json:"specialization_id"`
	IsPremium        bool      `bun:"is_premium" json:"is_premium"`
	CreatedAt        time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// PremiumStatusRequest is the body of the garage premium-status patch.
type PremiumStatusRequest struct {
	IsPremium bool `json:"is_premium"`
}
