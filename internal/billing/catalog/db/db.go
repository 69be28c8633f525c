package db

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/uptrace/bun"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/models"
)

// DB holds the billing catalog tables: currencies, payment types and
// premium offers.
type DB struct {
	Bun *bun.DB
}

// ---------------- CURRENCIES ----------------

func (d *DB) ListCurrencies() ([]models.Currency, error) {
	var currencies []models.Currency
	err := d.Bun.NewSelect().
		Model(&currencies).
		Order("id ASC").
		Scan(context.Background())
	return currencies, err
}

func (d *DB) GetCurrency(id int64) (*models.Currency, error) {
	var currency models.Currency
	err := d.Bun.NewSelect().
		Model(&currency).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &currency, nil
}

func (d *DB) CreateCurrency(currency *models.Currency) error {
	_, err := d.Bun.NewInsert().Model(currency).Exec(context.Background())
	return err
}

func (d *DB) UpdateCurrency(currency *models.Currency) error {
	_, err := d.Bun.NewUpdate().
		Model(currency).
		Column("curr_desc").
		Where("id = ?", currency.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteCurrency(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Currency)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// CurrencyOfferCount counts premium offers priced in the currency.
func (d *DB) CurrencyOfferCount(id int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.PremiumOffer)(nil)).
		Where("currency_id = ?", id).
		Count(context.Background())
}

// CurrencyOrderCount counts orders of both families using the currency.
func (d *DB) CurrencyOrderCount(id int64) (int, error) {
	clientCount, err := d.Bun.NewSelect().
		Model((*models.ClientPaymentOrder)(nil)).
		Where("currency_id = ?", id).
		Count(context.Background())
	if err != nil {
		return 0, err
	}
	garageCount, err := d.Bun.NewSelect().
		Model((*models.GaragePaymentOrder)(nil)).
		Where("currency_id = ?", id).
		Count(context.Background())
	if err != nil {
		return 0, err
	}
	return clientCount + garageCount, nil
}

// ---------------- PAYMENT TYPES ----------------

func (d *DB) ListPaymentTypes() ([]models.PaymentType, error) {
	var types []models.PaymentType
	err := d.Bun.NewSelect().
		Model(&types).
		Order("id ASC").
		Scan(context.Background())
	return types, err
}

func (d *DB) GetPaymentType(id int64) (*models.PaymentType, error) {
	var paymentType models.PaymentType
	err := d.Bun.NewSelect().
		Model(&paymentType).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &paymentType, nil
}

func (d *DB) CreatePaymentType(paymentType *models.PaymentType) error {
	_, err := d.Bun.NewInsert().Model(paymentType).Exec(context.Background())
	return err
}

func (d *DB) UpdatePaymentType(paymentType *models.PaymentType) error {
	_, err := d.Bun.NewUpdate().
		Model(paymentType).
		Column("payment_type_desc").
		Where("id = ?", paymentType.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeletePaymentType(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.PaymentType)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// PaymentTypeDescExists reports whether another payment type already carries
// the description. Pass exceptID=0 on create.
func (d *DB) PaymentTypeDescExists(desc string, exceptID int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.PaymentType)(nil)).
		Where("LOWER(payment_type_desc) = LOWER(?)", desc).
		Where("id != ?", exceptID).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------------- PREMIUM OFFERS ----------------

func (d *DB) ListOffers() ([]models.PremiumOffer, error) {
	var offers []models.PremiumOffer
	err := d.Bun.NewSelect().
		Model(&offers).
		Order("id ASC").
		Scan(context.Background())
	return offers, err
}

func (d *DB) GetOffer(id int64) (*models.PremiumOffer, error) {
	var offer models.PremiumOffer
	err := d.Bun.NewSelect().
		Model(&offer).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}

func (d *DB) CreateOffer(offer *models.PremiumOffer) error {
	_, err := d.Bun.NewInsert().Model(offer).Exec(context.Background())
	return err
}

func (d *DB) UpdateOffer(offer *models.PremiumOffer) error {
	_, err := d.Bun.NewUpdate().
		Model(offer).
		Column("user_type_id", "premium_desc", "premium_cost", "currency_id", "is_active").
		Where("id = ?", offer.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteOffer(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.PremiumOffer)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) ListOffersByUserType(userTypeID int64) ([]models.PremiumOffer, error) {
	var offers []models.PremiumOffer
	err := d.Bun.NewSelect().
		Model(&offers).
		Where("user_type_id = ?", userTypeID).
		Order("id ASC").
		Scan(context.Background())
	return offers, err
}

func (d *DB) ListOffersByCurrency(currencyID int64) ([]models.PremiumOffer, error) {
	var offers []models.PremiumOffer
	err := d.Bun.NewSelect().
		Model(&offers).
		Where("currency_id = ?", currencyID).
		Order("id ASC").
		Scan(context.Background())
	return offers, err
}

func (d *DB) ListActiveOffers() ([]models.PremiumOffer, error) {
	var offers []models.PremiumOffer
	err := d.Bun.NewSelect().
		Model(&offers).
		Where("is_active = ?", true).
		Order("id ASC").
		Scan(context.Background())
	return offers, err
}

// OfferOrderCount counts orders of both families referencing the offer.
func (d *DB) OfferOrderCount(id int64) (int, error) {
	clientCount, err := d.Bun.NewSelect().
		Model((*models.ClientPaymentOrder)(nil)).
		Where("premium_offer_id = ?", id).
		Count(context.Background())
	if err != nil {
		return 0, err
	}
	garageCount, err := d.Bun.NewSelect().
		Model((*models.GaragePaymentOrder)(nil)).
		Where("premium_offer_id = ?", id).
		Count(context.Background())
	if err != nil {
		return 0, err
	}
	return clientCount + garageCount, nil
}

// PopularOffers returns offers ordered by how many orders reference them,
// most ordered first. The per-family counts are merged in Go.
func (d *DB) PopularOffers(limit int) ([]models.OfferPopularity, error) {
	offers, err := d.ListOffers()
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(offers))
	if err := d.addOfferCounts(counts, (*models.ClientPaymentOrder)(nil)); err != nil {
		return nil, err
	}
	if err := d.addOfferCounts(counts, (*models.GaragePaymentOrder)(nil)); err != nil {
		return nil, err
	}

	result := make([]models.OfferPopularity, len(offers))
	for i, offer := range offers {
		result[i] = models.OfferPopularity{Offer: offer, OrderCount: counts[offer.ID]}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OrderCount > result[j].OrderCount
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (d *DB) addOfferCounts(counts map[int64]int, model interface{}) error {
	var rows []struct {
		PremiumOfferID int64 `bun:"premium_offer_id"`
		Count          int   `bun:"order_count"`
	}
	err := d.Bun.NewSelect().
		Model(model).
		Column("premium_offer_id").
		ColumnExpr("COUNT(*) AS order_count").
		Group("premium_offer_id").
		Scan(context.Background(), &rows)
	if err != nil {
		return err
	}
	for _, row := range rows {
		counts[row.PremiumOfferID] += row.Count
	}
	return nil
}
