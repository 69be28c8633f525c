package catalog_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/billing/catalog"
	"garage-client-api/internal/billing/catalog/db"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

func setupCatalog(t *testing.T) (*catalog.Service, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range []interface{}{
		(*models.Currency)(nil),
		(*models.PaymentType)(nil),
		(*models.PremiumOffer)(nil),
		(*models.ClientPaymentOrder)(nil),
		(*models.GaragePaymentOrder)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return catalog.NewService(&db.DB{Bun: bunDB}, logger.NewLogger()), bunDB
}

func TestPaymentTypeDuplicateDescription(t *testing.T) {
	service, bunDB := setupCatalog(t)
	defer bunDB.Close()

	require.NoError(t, service.CreatePaymentType(&models.PaymentType{PaymentTypeDesc: "Credit Card"}))

	err := service.CreatePaymentType(&models.PaymentType{PaymentTypeDesc: "Credit Card"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Case-insensitive match
	err = service.CreatePaymentType(&models.PaymentType{PaymentTypeDesc: "credit card"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, service.CreatePaymentType(&models.PaymentType{PaymentTypeDesc: "Debit Card"}))

	// Updating to an existing description conflicts too
	types, err := service.ListPaymentTypes()
	require.NoError(t, err)
	require.Len(t, types, 2)
	debit := types[1]
	debit.PaymentTypeDesc = "Credit Card"
	assert.ErrorIs(t, service.UpdatePaymentType(debit.ID, &debit), apperrors.ErrConflict)

	// Keeping its own description is fine
	debit.PaymentTypeDesc = "Debit Card"
	assert.NoError(t, service.UpdatePaymentType(debit.ID, &debit))
}

func TestCurrencyDeleteBlockedByDependents(t *testing.T) {
	service, bunDB := setupCatalog(t)
	defer bunDB.Close()

	currency := &models.Currency{CurrDesc: "EUR"}
	require.NoError(t, service.CreateCurrency(currency))

	offer := &models.PremiumOffer{UserTypeID: 1, PremiumDesc: "Yearly", PremiumCost: 49.99, CurrencyID: currency.ID}
	require.NoError(t, service.CreateOffer(offer))

	err := service.DeleteCurrency(currency.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "premium offers")

	dependents, err := service.CurrencyDependents(currency.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dependents["premium_offers"])
	assert.Equal(t, 0, dependents["payment_orders"])

	require.NoError(t, service.DeleteOffer(offer.ID))

	_, err = bunDB.NewInsert().Model(&models.ClientPaymentOrder{
		OrderNumber: "ORD-20250901-AAAA1111", ClientID: 1, Amount: 10,
		CurrencyID: currency.ID, PaymentMethodID: 1, PremiumOfferID: 1,
		Status: models.OrderStatusPending,
	}).Exec(context.Background())
	require.NoError(t, err)

	err = service.DeleteCurrency(currency.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "payment orders")
}

func TestOfferDeleteBlockedByOrders(t *testing.T) {
	service, bunDB := setupCatalog(t)
	defer bunDB.Close()

	currency := &models.Currency{CurrDesc: "EUR"}
	require.NoError(t, service.CreateCurrency(currency))
	offer := &models.PremiumOffer{UserTypeID: 1, PremiumDesc: "Yearly", PremiumCost: 49.99, CurrencyID: currency.ID}
	require.NoError(t, service.CreateOffer(offer))

	_, err := bunDB.NewInsert().Model(&models.GaragePaymentOrder{
		OrderNumber: "GPO-20250901-BBBB2222", GarageID: 1, Amount: 99,
		CurrencyID: currency.ID, PaymentMethodID: 1, PremiumOfferID: offer.ID,
		Status: models.OrderStatusPending,
	}).Exec(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, service.DeleteOffer(offer.ID), apperrors.ErrConflict)

	_, err = bunDB.NewDelete().Model((*models.GaragePaymentOrder)(nil)).Where("1=1").Exec(context.Background())
	require.NoError(t, err)

	assert.NoError(t, service.DeleteOffer(offer.ID))
	assert.ErrorIs(t, service.DeleteOffer(offer.ID), apperrors.ErrNotFound)
}

func TestCreateOfferValidatesCurrency(t *testing.T) {
	service, bunDB := setupCatalog(t)
	defer bunDB.Close()

	err := service.CreateOffer(&models.PremiumOffer{UserTypeID: 1, PremiumDesc: "Yearly", PremiumCost: 10, CurrencyID: 99})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = service.CreateOffer(&models.PremiumOffer{UserTypeID: 1, PremiumDesc: "", PremiumCost: 10})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPopularOffersRanking(t *testing.T) {
	service, bunDB := setupCatalog(t)
	defer bunDB.Close()

	currency := &models.Currency{CurrDesc: "EUR"}
	require.NoError(t, service.CreateCurrency(currency))

	quiet := &models.PremiumOffer{UserTypeID: 1, PremiumDesc: "Quiet", PremiumCost: 10, CurrencyID: currency.ID}
	busy := &models.PremiumOffer{UserTypeID: 1, PremiumDesc: "Busy", PremiumCost: 20, CurrencyID: currency.ID}
	require.NoError(t, service.CreateOffer(quiet))
	require.NoError(t, service.CreateOffer(busy))

	ctx := context.Background()
	for i, orderNumber := range []string{"ORD-20250901-CCCC0001", "ORD-20250901-CCCC0002"} {
		_, err := bunDB.NewInsert().Model(&models.ClientPaymentOrder{
			OrderNumber: orderNumber, ClientID: int64(i + 1), Amount: 20,
			CurrencyID: currency.ID, PaymentMethodID: 1, PremiumOfferID: busy.ID,
			Status: models.OrderStatusProcessed,
		}).Exec(ctx)
		require.NoError(t, err)
	}
	_, err := bunDB.NewInsert().Model(&models.GaragePaymentOrder{
		OrderNumber: "GPO-20250901-CCCC0003", GarageID: 1, Amount: 20,
		CurrencyID: currency.ID, PaymentMethodID: 1, PremiumOfferID: busy.ID,
		Status: models.OrderStatusProcessed,
	}).Exec(ctx)
	require.NoError(t, err)

	popular, err := service.PopularOffers(0)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, busy.ID, popular[0].Offer.ID)
	assert.Equal(t, 3, popular[0].OrderCount)
	assert.Equal(t, quiet.ID, popular[1].Offer.ID)
	assert.Equal(t, 0, popular[1].OrderCount)

	top, err := service.PopularOffers(1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestListActiveOffers(t *testing.T) {
	service, bunDB := setupCatalog(t)
	defer bunDB.Close()

	currency := &models.Currency{CurrDesc: "EUR"}
	require.NoError(t, service.CreateCurrency(currency))

	active := &models.PremiumOffer{UserTypeID: 1, PremiumDesc: "Active", PremiumCost: 10, CurrencyID: currency.ID, IsActive: true}
	retired := &models.PremiumOffer{UserTypeID: 2, PremiumDesc: "Retired", PremiumCost: 10, CurrencyID: currency.ID}
	require.NoError(t, service.CreateOffer(active))
	require.NoError(t, service.CreateOffer(retired))

	offers, err := service.ListActiveOffers()
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, active.ID, offers[0].ID)

	byType, err := service.ListOffersByUserType(2)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, retired.ID, byType[0].ID)
}
