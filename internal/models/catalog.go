package models

import "github.com/uptrace/bun"

type Currency struct {
	bun.BaseModel `bun:"table:currencies"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	CurrDesc string `bun:"curr_desc,notnull" json:"curr_desc"`
}

type PaymentType struct {
	bun.BaseModel `bun:"table:payment_types"`

	ID              int64  `bun:"id,pk,autoincrement" json:"id"`
	PaymentTypeDesc string `bun:"payment_type_desc,notnull" json:"payment_type_desc"`
}

type PremiumOffer struct {
	bun.BaseModel `bun:"table:premium_offers"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	UserTypeID  int64   `bun:"user_type_id,notnull" json:"user_type_id"`
	PremiumDesc string  `bun:"premium_desc,notnull" json:"premium_desc"`
	PremiumCost float64 `bun:"premium_cost,notnull" json:"premium_cost"`
	CurrencyID  int64   `bun:"currency_id,notnull" json:"currency_id"`
	IsActive    bool    `bun:"is_active" json:"is_active"`
}

// OfferPopularity pairs an offer with how many orders reference it.
type OfferPopularity struct {
	Offer      PremiumOffer `json:"offer"`
	OrderCount int          `json:"order_count"`
}
