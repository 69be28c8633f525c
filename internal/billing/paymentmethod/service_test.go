package paymentmethod_test

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
	"garage-client-api/internal/billing/paymentmethod"
	"garage-client-api/internal/billing/paymentmethod/db"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

func setupService(t *testing.T) (*paymentmethod.Service[*models.ClientPaymentMethod], *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = bunDB.NewCreateTable().Model((*models.ClientPaymentMethod)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create payment method table: %v", err)
	}

	store := db.NewStore[models.ClientPaymentMethod](bunDB, "client_id")
	service := paymentmethod.NewService[*models.ClientPaymentMethod](store, models.OwnerClient, logger.NewLogger())
	return service, bunDB
}

func newMethod(clientID int64, cardNumber string) *models.ClientPaymentMethod {
	return &models.ClientPaymentMethod{
		ClientID:       clientID,
		PaymentType:    "Visa",
		IsActive:       true,
		CardNumber:     cardNumber,
		CardHolderName: "Jane Fonseka",
		ExpiryMonth:    9,
		ExpiryYear:     2029,
		CVV:            "123",
	}
}

func TestFirstMethodBecomesPrimary(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	first := newMethod(10, "4111111111111111")
	require.NoError(t, service.Create(first))
	assert.True(t, first.IsPrimary)
	assert.False(t, first.CreatedDate.IsZero())
	assert.False(t, first.LastModified.IsZero())

	second := newMethod(10, "4222222222222222")
	require.NoError(t, service.Create(second))
	assert.False(t, second.IsPrimary)

	// A different client's first method is primary again
	other := newMethod(20, "5111111111111111")
	require.NoError(t, service.Create(other))
	assert.True(t, other.IsPrimary)
}

func TestCreateRequiresOwner(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	err := service.Create(newMethod(0, "4111111111111111"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSetPrimaryDemotesSiblings(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	first := newMethod(10, "4111111111111111")
	second := newMethod(10, "4222222222222222")
	third := newMethod(10, "4333333333333333")
	require.NoError(t, service.Create(first))
	require.NoError(t, service.Create(second))
	require.NoError(t, service.Create(third))

	err := service.SetPrimary(third.ID)
	assert.NoError(t, err)

	methods, err := service.ListByOwner(10)
	require.NoError(t, err)
	primaries := 0
	for _, m := range methods {
		if m.IsPrimary {
			primaries++
			assert.Equal(t, third.ID, m.ID)
		}
	}
	assert.Equal(t, 1, primaries)

	err = service.SetPrimary(9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeletePrimaryPromotesOldestSibling(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	first := newMethod(10, "4111111111111111")
	second := newMethod(10, "4222222222222222")
	third := newMethod(10, "4333333333333333")
	require.NoError(t, service.Create(first))
	require.NoError(t, service.Create(second))
	require.NoError(t, service.Create(third))

	err := service.Delete(first.ID)
	assert.NoError(t, err)

	primary, err := service.GetPrimary(10)
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)
}

func TestDeleteNonPrimaryKeepsPrimary(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	first := newMethod(10, "4111111111111111")
	second := newMethod(10, "4222222222222222")
	require.NoError(t, service.Create(first))
	require.NoError(t, service.Create(second))

	require.NoError(t, service.Delete(second.ID))

	primary, err := service.GetPrimary(10)
	require.NoError(t, err)
	assert.Equal(t, first.ID, primary.ID)
}

func TestDeleteLastMethod(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	only := newMethod(10, "4111111111111111")
	require.NoError(t, service.Create(only))

	assert.NoError(t, service.Delete(only.ID))

	_, err := service.GetPrimary(10)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, service.Delete(only.ID), apperrors.ErrNotFound)
}

func TestUpdateChecksIDAndRefreshesLastModified(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	method := newMethod(10, "4111111111111111")
	require.NoError(t, service.Create(method))
	created := method.LastModified

	// Body/path mismatch is rejected
	stray := newMethod(10, "4222222222222222")
	stray.ID = method.ID + 1
	assert.ErrorIs(t, service.Update(method.ID, stray), apperrors.ErrInvalidInput)

	update := newMethod(10, "4111111111111111")
	update.ID = method.ID
	update.CardHolderName = "J. Fonseka"
	assert.NoError(t, service.Update(method.ID, update))
	assert.True(t, update.LastModified.After(created) || update.LastModified.Equal(created))

	got, err := service.Get(method.ID)
	require.NoError(t, err)
	assert.Equal(t, "J. Fonseka", got.CardHolderName)
	// Primary flag survives updates
	assert.True(t, got.IsPrimary)
}

func TestGetMasksCardNumber(t *testing.T) {
	service, bunDB := setupService(t)
	defer bunDB.Close()

	method := newMethod(10, "4111111111111111")
	require.NoError(t, service.Create(method))

	got, err := service.Get(method.ID)
	require.NoError(t, err)
	assert.Equal(t, "************1111", got.CardNumber)
	assert.Empty(t, got.CVV)

	methods, err := service.ListByOwner(10)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "************1111", methods[0].CardNumber)
}
