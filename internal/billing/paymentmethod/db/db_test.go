package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/billing/paymentmethod/db"
	"garage-client-api/internal/models"
)

func setupTestDB(t *testing.T) (*db.Store[models.ClientPaymentMethod, *models.ClientPaymentMethod], *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.ClientPaymentMethod)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create payment method table: %v", err)
	}

	return db.NewStore[models.ClientPaymentMethod](bunDB, "client_id"), bunDB
}

func testMethod(clientID int64, cardNumber string) *models.ClientPaymentMethod {
	return &models.ClientPaymentMethod{
		ClientID:       clientID,
		PaymentType:    "Visa",
		IsActive:       true,
		CardNumber:     cardNumber,
		CardHolderName: "Jane Fonseka",
		ExpiryMonth:    9,
		ExpiryYear:     2029,
		CVV:            "123",
		CreatedDate:    time.Now(),
		LastModified:   time.Now(),
	}
}

func TestInsertAndGetByID(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	method := testMethod(10, "4111111111111111")
	err := store.Insert(method)
	require.NoError(t, err)
	require.NotZero(t, method.ID)

	got, err := store.GetByID(method.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), got.ClientID)
	assert.Equal(t, "4111111111111111", got.CardNumber)

	// Non-existent id maps to the sentinel
	_, err = store.GetByID(9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListByOwnerOrder(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	for _, card := range []string{"4111111111111111", "4222222222222222", "4333333333333333"} {
		require.NoError(t, store.Insert(testMethod(10, card)))
	}
	require.NoError(t, store.Insert(testMethod(20, "5111111111111111")))

	methods, err := store.ListByOwner(10)
	assert.NoError(t, err)
	assert.Len(t, methods, 3)
	for i := 1; i < len(methods); i++ {
		assert.Less(t, methods[i-1].ID, methods[i].ID)
	}

	count, err := store.CountByOwner(10)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestClearPrimary(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	first := testMethod(10, "4111111111111111")
	first.IsPrimary = true
	second := testMethod(10, "4222222222222222")
	second.IsPrimary = true
	other := testMethod(20, "5111111111111111")
	other.IsPrimary = true

	require.NoError(t, store.Insert(first))
	require.NoError(t, store.Insert(second))
	require.NoError(t, store.Insert(other))

	err := store.ClearPrimary(10, second.ID)
	assert.NoError(t, err)

	got, err := store.GetByID(first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPrimary)

	got, err = store.GetByID(second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPrimary)

	// Other owners are untouched
	got, err = store.GetByID(other.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPrimary)
}

func TestFirstByOwner(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := store.FirstByOwner(10)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	first := testMethod(10, "4111111111111111")
	second := testMethod(10, "4222222222222222")
	require.NoError(t, store.Insert(first))
	require.NoError(t, store.Insert(second))

	got, err := store.FirstByOwner(10)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestUpdateAndDelete(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	method := testMethod(10, "4111111111111111")
	require.NoError(t, store.Insert(method))

	method.CardHolderName = "J. Fonseka"
	method.ExpiryYear = 2031
	err := store.Update(method)
	assert.NoError(t, err)

	got, err := store.GetByID(method.ID)
	require.NoError(t, err)
	assert.Equal(t, "J. Fonseka", got.CardHolderName)
	assert.Equal(t, 2031, got.ExpiryYear)

	err = store.Delete(method.ID)
	assert.NoError(t, err)

	_, err = store.GetByID(method.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
