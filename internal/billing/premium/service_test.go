package premium_test

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
	"garage-client-api/internal/billing/premium"
	"garage-client-api/internal/billing/premium/db"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

func setupGarageService(t *testing.T) (*premium.Service[*models.GaragePremiumRegistration], *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = bunDB.NewCreateTable().Model((*models.GaragePremiumRegistration)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create registration table: %v", err)
	}

	store := db.NewStore[models.GaragePremiumRegistration](bunDB, "garage_id")
	return premium.NewService[*models.GaragePremiumRegistration](store, models.OwnerGarage, logger.NewLogger()), bunDB
}

func setupClientService(t *testing.T) (*premium.Service[*models.ClientPremiumRegistration], *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = bunDB.NewCreateTable().Model((*models.ClientPremiumRegistration)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create registration table: %v", err)
	}

	store := db.NewStore[models.ClientPremiumRegistration](bunDB, "client_id")
	return premium.NewService[*models.ClientPremiumRegistration](store, models.OwnerClient, logger.NewLogger()), bunDB
}

func TestGarageCreateDeactivatesExisting(t *testing.T) {
	service, bunDB := setupGarageService(t)
	defer bunDB.Close()

	first := &models.GaragePremiumRegistration{
		GarageID:   7,
		IsActive:   true,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
	require.NoError(t, service.Create(first))

	second := &models.GaragePremiumRegistration{
		GarageID:   7,
		IsActive:   true,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
	require.NoError(t, service.Create(second))

	got, err := service.Get(first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = service.Get(second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestClientCreateKeepsExistingActive(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	first := &models.ClientPremiumRegistration{
		ClientID:   7,
		IsActive:   true,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
	require.NoError(t, service.Create(first))

	second := &models.ClientPremiumRegistration{
		ClientID:   7,
		IsActive:   true,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
	require.NoError(t, service.Create(second))

	// Client-side create does not deactivate earlier registrations
	got, err := service.Get(first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestCreateDefaultsRegisterDate(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	reg := &models.ClientPremiumRegistration{
		ClientID:   7,
		ExpiryDate: time.Now().AddDate(0, 6, 0),
	}
	require.NoError(t, service.Create(reg))
	assert.False(t, reg.RegisterDate.IsZero())

	err := service.Create(&models.ClientPremiumRegistration{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestActivateDeactivatesSiblings(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	first := &models.ClientPremiumRegistration{ClientID: 7, IsActive: true, ExpiryDate: time.Now().AddDate(1, 0, 0)}
	second := &models.ClientPremiumRegistration{ClientID: 7, IsActive: false, ExpiryDate: time.Now().AddDate(1, 0, 0)}
	require.NoError(t, service.Create(first))
	require.NoError(t, service.Create(second))

	require.NoError(t, service.Activate(second.ID))

	got, err := service.Get(first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = service.Get(second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	assert.ErrorIs(t, service.Activate(9999), apperrors.ErrNotFound)
}

func TestExtendFromCurrentExpiry(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	expiry := time.Now().AddDate(0, 2, 0).Truncate(time.Second)
	reg := &models.ClientPremiumRegistration{ClientID: 7, IsActive: true, ExpiryDate: expiry}
	require.NoError(t, service.Create(reg))

	extended, err := service.Extend(reg.ID, 3)
	require.NoError(t, err)
	assert.WithinDuration(t, expiry.AddDate(0, 3, 0), extended.ExpiryDate, time.Second)
}

func TestExtendExpiredStartsFromNow(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	reg := &models.ClientPremiumRegistration{
		ClientID:   7,
		IsActive:   true,
		ExpiryDate: time.Now().AddDate(0, -1, 0),
	}
	require.NoError(t, service.Create(reg))

	extended, err := service.Extend(reg.ID, 1)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 1, 0), extended.ExpiryDate, 5*time.Second)

	_, err = service.Extend(reg.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListActiveFiltersExpired(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	live := &models.ClientPremiumRegistration{ClientID: 7, IsActive: true, ExpiryDate: time.Now().AddDate(1, 0, 0)}
	expired := &models.ClientPremiumRegistration{ClientID: 8, IsActive: true, ExpiryDate: time.Now().AddDate(-1, 0, 0)}
	inactive := &models.ClientPremiumRegistration{ClientID: 9, IsActive: false, ExpiryDate: time.Now().AddDate(1, 0, 0)}
	require.NoError(t, service.Create(live))
	require.NoError(t, service.Create(expired))
	require.NoError(t, service.Create(inactive))

	active, err := service.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)

	has, err := service.HasActive(7)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.HasActive(8)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestUpdateAndDelete(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	reg := &models.ClientPremiumRegistration{ClientID: 7, IsActive: true, ExpiryDate: time.Now().AddDate(1, 0, 0)}
	require.NoError(t, service.Create(reg))

	mismatch := &models.ClientPremiumRegistration{ID: reg.ID + 1, ClientID: 7}
	assert.ErrorIs(t, service.Update(reg.ID, mismatch), apperrors.ErrInvalidInput)

	reg.IsActive = false
	assert.NoError(t, service.Update(reg.ID, reg))

	got, err := service.Get(reg.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.NoError(t, service.Delete(reg.ID))
	assert.ErrorIs(t, service.Delete(reg.ID), apperrors.ErrNotFound)
}
