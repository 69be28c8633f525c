package models

import "time"

// OwnerKind discriminates the two profile families that can hold billing
// resources. Client- and garage-owned rows live in separate tables and are
// never interchangeable; the kind tag exists for logging and event payloads.
type OwnerKind string

const (
	OwnerClient OwnerKind = "client"
	OwnerGarage OwnerKind = "garage"
)

// CardMethod is implemented by *ClientPaymentMethod and *GaragePaymentMethod
// so the primary-flag maintenance logic can be written once and instantiated
// per owner family.
type CardMethod interface {
	GetID() int64
	GetOwnerID() int64
	PrimaryFlag() bool
	SetPrimary(bool)
	Stamp(now time.Time)
	Touch(now time.Time)
	MaskCard()
}

// Registration is implemented by *ClientPremiumRegistration and
// *GaragePremiumRegistration.
type Registration interface {
	GetID() int64
	GetOwnerID() int64
	ActiveFlag() bool
	SetActive(bool)
	RegisteredAt() time.Time
	SetRegisterDate(time.Time)
	ExpiresAt() time.Time
	SetExpiry(time.Time)
}

// PaymentOrder is implemented by *ClientPaymentOrder and *GaragePaymentOrder.
type PaymentOrder interface {
	GetID() int64
	GetOwnerID() int64
	OrderNo() string
	SetOrderNo(string)
	StatusValue() string
	SetStatusValue(string)
	MethodID() int64
	CurrencyRef() int64
	OfferRef() int64
	AmountValue() float64
	MarkCreated(time.Time)
	MarkProcessed(time.Time)
	ClearProcessed()
}
