package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type ClientPaymentMethod struct {
	bun.BaseModel `bun:"table:client_payment_methods"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	ClientID       int64     `bun:"client_id,notnull" json:"client_id"`
	PaymentType    string    `bun:"payment_type,notnull" json:"payment_type"`
	IsPrimary      bool      `bun:"is_primary" json:"is_primary"`
	CreatedDate    time.Time `bun:"created_date" json:"created_date"`
	LastModified   time.Time `bun:"last_modified" json:"last_modified"`
	IsActive       bool      `bun:"is_active" json:"is_active"`
	CardNumber     string    `bun:"card_number,notnull" json:"card_number"`
	CardHolderName string    `bun:"card_holder_name,notnull" json:"card_holder_name"`
	ExpiryMonth    int       `bun:"expiry_month" json:"expiry_month"`
	ExpiryYear     int       `bun:"expiry_year" json:"expiry_year"`
	CVV            string    `bun:"cvv" json:"cvv,omitempty"`
}

type GaragePaymentMethod struct {
	bun.BaseModel `bun:"table:garage_payment_methods"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	GarageID       int64     `bun:"garage_id,notnull" json:"garage_id"`
	PaymentType    string    `bun:"payment_type,notnull" json:"payment_type"`
	IsPrimary      bool      `bun:"is_primary" json:"is_primary"`
	CreatedDate    time.Time `bun:"created_date" json:"created_date"`
	LastModified   time.Time `bun:"last_modified" json:"last_modified"`
	IsActive       bool      `bun:"is_active" json:"is_active"`
	CardNumber     string    `bun:"card_number,notnull" json:"card_number"`
	CardHolderName string    `bun:"card_holder_name,notnull" json:"card_holder_name"`
	ExpiryMonth    int       `bun:"expiry_month" json:"expiry_month"`
	ExpiryYear     int       `bun:"expiry_year" json:"expiry_year"`
	CVV            string    `bun:"cvv" json:"cvv,omitempty"`
}

func (m *ClientPaymentMethod) GetID() int64      { return m.ID }
func (m *ClientPaymentMethod) GetOwnerID() int64 { return m.ClientID }
func (m *ClientPaymentMethod) PrimaryFlag() bool { return m.IsPrimary }
func (m *ClientPaymentMethod) SetPrimary(v bool) { m.IsPrimary = v }
func (m *ClientPaymentMethod) Touch(now time.Time) {
	m.LastModified = now
}
func (m *ClientPaymentMethod) Stamp(now time.Time) {
	m.CreatedDate = now
	m.LastModified = now
}
func (m *ClientPaymentMethod) MaskCard() {
	m.CardNumber = maskCardNumber(m.CardNumber)
	m.CVV = ""
}

func (m *GaragePaymentMethod) GetID() int64      { return m.ID }
func (m *GaragePaymentMethod) GetOwnerID() int64 { return m.GarageID }
func (m *GaragePaymentMethod) PrimaryFlag() bool { return m.IsPrimary }
func (m *GaragePaymentMethod) SetPrimary(v bool) { m.IsPrimary = v }
func (m *GaragePaymentMethod) Touch(now time.Time) {
	m.LastModified = now
}
func (m *GaragePaymentMethod) Stamp(now time.Time) {
	m.CreatedDate = now
	m.LastModified = now
}
func (m *GaragePaymentMethod) MaskCard() {
	m.CardNumber = maskCardNumber(m.CardNumber)
	m.CVV = ""
}

// maskCardNumber keeps only the last four digits visible.
func maskCardNumber(cardNumber string) string {
	if len(cardNumber) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(cardNumber)-4) + cardNumber[len(cardNumber)-4:]
}
