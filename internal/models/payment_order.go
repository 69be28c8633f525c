package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order lifecycle. Pending is the only non-terminal status; settlement and
// the administrative override are the only writers after creation.
const (
	OrderStatusPending       = "Pending"
	OrderStatusProcessed     = "Processed"
	OrderStatusFailed        = "Failed"
	OrderStatusInvalidMethod = "Failed - Invalid Payment Method"
)

// Order number prefixes, kept distinct per owner family.
const (
	ClientOrderPrefix = "ORD"
	GarageOrderPrefix = "GPO"
)

type ClientPaymentOrder struct {
	bun.BaseModel `bun:"table:client_payment_orders"`

	ID              int64      `bun:"id,pk,autoincrement" json:"id"`
	OrderNumber     string     `bun:"order_number,unique,notnull" json:"order_number"`
	ClientID        int64      `bun:"client_id,notnull" json:"client_id"`
	Amount          float64    `bun:"amount,notnull" json:"amount"`
	CurrencyID      int64      `bun:"currency_id,notnull" json:"currency_id"`
	PaymentMethodID int64      `bun:"payment_method_id,notnull" json:"payment_method_id"`
	PremiumOfferID  int64      `bun:"premium_offer_id,notnull" json:"premium_offer_id"`
	Status          string     `bun:"status" json:"status"`
	CreatedDate     time.Time  `bun:"created_date" json:"created_date"`
	ProcessedDate   *time.Time `bun:"processed_date,nullzero" json:"processed_date,omitempty"`
}

type GaragePaymentOrder struct {
	bun.BaseModel `bun:"table:garage_payment_orders"`

	ID              int64      `bun:"id,pk,autoincrement" json:"id"`
	OrderNumber     string     `bun:"order_number,unique,notnull" json:"order_number"`
	GarageID        int64      `bun:"garage_id,notnull" json:"garage_id"`
	Amount          float64    `bun:"amount,notnull" json:"amount"`
	CurrencyID      int64      `bun:"currency_id,notnull" json:"currency_id"`
	PaymentMethodID int64      `bun:"payment_method_id,notnull" json:"payment_method_id"`
	PremiumOfferID  int64      `bun:"premium_offer_id,notnull" json:"premium_offer_id"`
	Status          string     `bun:"status" json:"status"`
	CreatedDate     time.Time  `bun:"created_date" json:"created_date"`
	ProcessedDate   *time.Time `bun:"processed_date,nullzero" json:"processed_date,omitempty"`
}

func (o *ClientPaymentOrder) GetID() int64            { return o.ID }
func (o *ClientPaymentOrder) GetOwnerID() int64       { return o.ClientID }
func (o *ClientPaymentOrder) OrderNo() string         { return o.OrderNumber }
func (o *ClientPaymentOrder) SetOrderNo(n string)     { o.OrderNumber = n }
func (o *ClientPaymentOrder) StatusValue() string     { return o.Status }
func (o *ClientPaymentOrder) SetStatusValue(s string) { o.Status = s }
func (o *ClientPaymentOrder) MethodID() int64      { return o.PaymentMethodID }
func (o *ClientPaymentOrder) CurrencyRef() int64   { return o.CurrencyID }
func (o *ClientPaymentOrder) OfferRef() int64      { return o.PremiumOfferID }
func (o *ClientPaymentOrder) AmountValue() float64 { return o.Amount }
func (o *ClientPaymentOrder) MarkCreated(t time.Time) { o.CreatedDate = t }
func (o *ClientPaymentOrder) MarkProcessed(t time.Time) {
	o.ProcessedDate = &t
}
func (o *ClientPaymentOrder) ClearProcessed() { o.ProcessedDate = nil }

func (o *GaragePaymentOrder) GetID() int64            { return o.ID }
func (o *GaragePaymentOrder) GetOwnerID() int64       { return o.GarageID }
func (o *GaragePaymentOrder) OrderNo() string         { return o.OrderNumber }
func (o *GaragePaymentOrder) SetOrderNo(n string)     { o.OrderNumber = n }
func (o *GaragePaymentOrder) StatusValue() string     { return o.Status }
func (o *GaragePaymentOrder) SetStatusValue(s string) { o.Status = s }
func (o *GaragePaymentOrder) MethodID() int64      { return o.PaymentMethodID }
func (o *GaragePaymentOrder) CurrencyRef() int64   { return o.CurrencyID }
func (o *GaragePaymentOrder) OfferRef() int64      { return o.PremiumOfferID }
func (o *GaragePaymentOrder) AmountValue() float64 { return o.Amount }
func (o *GaragePaymentOrder) MarkCreated(t time.Time) { o.CreatedDate = t }
func (o *GaragePaymentOrder) MarkProcessed(t time.Time) {
	o.ProcessedDate = &t
}
func (o *GaragePaymentOrder) ClearProcessed() { o.ProcessedDate = nil }

// TerminalStatus reports whether status is one of the three settled values.
func TerminalStatus(status string) bool {
	switch status {
	case OrderStatusProcessed, OrderStatusFailed, OrderStatusInvalidMethod:
		return true
	}
	return false
}

// OrderStatusRequest is the body of the administrative status override.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderEvent is the Kafka payload published on lifecycle transitions.
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	OwnerKind   OwnerKind `json:"owner_kind"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	Amount      float64   `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}
