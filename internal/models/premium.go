package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ClientPremiumRegistration struct {
	bun.BaseModel `bun:"table:client_premium_registrations"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID     int64     `bun:"client_id,notnull" json:"client_id"`
	RegisterDate time.Time `bun:"register_date" json:"register_date"`
	ExpiryDate   time.Time `bun:"expiry_date" json:"expiry_date"`
	IsActive     bool      `bun:"is_active" json:"is_active"`
}

type GaragePremiumRegistration struct {
	bun.BaseModel `bun:"table:garage_premium_registrations"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	GarageID     int64     `bun:"garage_id,notnull" json:"garage_id"`
	RegisterDate time.Time `bun:"register_date" json:"register_date"`
	ExpiryDate   time.Time `bun:"expiry_date" json:"expiry_date"`
	IsActive     bool      `bun:"is_active" json:"is_active"`
}

func (r *ClientPremiumRegistration) GetID() int64               { return r.ID }
func (r *ClientPremiumRegistration) GetOwnerID() int64          { return r.ClientID }
func (r *ClientPremiumRegistration) ActiveFlag() bool           { return r.IsActive }
func (r *ClientPremiumRegistration) SetActive(v bool)           { r.IsActive = v }
func (r *ClientPremiumRegistration) RegisteredAt() time.Time    { return r.RegisterDate }
func (r *ClientPremiumRegistration) SetRegisterDate(t time.Time) { r.RegisterDate = t }
func (r *ClientPremiumRegistration) ExpiresAt() time.Time       { return r.ExpiryDate }
func (r *ClientPremiumRegistration) SetExpiry(t time.Time)      { r.ExpiryDate = t }

func (r *GaragePremiumRegistration) GetID() int64               { return r.ID }
func (r *GaragePremiumRegistration) GetOwnerID() int64          { return r.GarageID }
func (r *GaragePremiumRegistration) ActiveFlag() bool           { return r.IsActive }
func (r *GaragePremiumRegistration) SetActive(v bool)           { r.IsActive = v }
func (r *GaragePremiumRegistration) RegisteredAt() time.Time    { return r.RegisterDate }
func (r *GaragePremiumRegistration) SetRegisterDate(t time.Time) { r.RegisterDate = t }
func (r *GaragePremiumRegistration) ExpiresAt() time.Time       { return r.ExpiryDate }
func (r *GaragePremiumRegistration) SetExpiry(t time.Time)      { r.ExpiryDate = t }

// ExtendRequest is the body of the extend endpoint.
type ExtendRequest struct {
	Months int `json:"months" binding:"required,gt=0"`
}
