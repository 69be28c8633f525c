package clients_test

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
	"garage-client-api/internal/clients"
	"garage-client-api/internal/clients/db"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

func setupClientService(t *testing.T) (*clients.Service, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range []interface{}{
		(*models.ClientProfile)(nil),
		(*models.Country)(nil),
		(*models.ClientPaymentMethod)(nil),
		(*models.ClientPaymentOrder)(nil),
		(*models.Vehicle)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	country := &models.Country{CountryName: "Portugal", PhoneExt: "+351"}
	_, err = bunDB.NewInsert().Model(country).Exec(context.Background())
	require.NoError(t, err)

	return clients.NewService(&db.DB{Bun: bunDB}, logger.NewLogger()), bunDB
}

func newClient(userID int64) *models.ClientProfile {
	return &models.ClientProfile{
		UserID:    userID,
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "maria@example.com",
		CountryID: 1,
	}
}

func TestCreateAndGetClient(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	created, err := service.Create(newClient(10))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.FirstName)

	byUser, err := service.GetByUser(10)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUser.ID)

	byEmail, err := service.GetByEmail("MARIA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestCreateClientValidation(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	blank := newClient(10)
	blank.FirstName = "  "
	_, err := service.Create(blank)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	noUser := newClient(0)
	_, err = service.Create(noUser)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	badCountry := newClient(10)
	badCountry.CountryID = 999
	_, err = service.Create(badCountry)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetClientNotFound(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	_, err := service.Get(42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = service.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = service.GetByEmail("  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListPremiumClients(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	plain, err := service.Create(newClient(1))
	require.NoError(t, err)

	premium := newClient(2)
	premium.Email = "premium@example.com"
	premium.IsPremium = true
	created, err := service.Create(premium)
	require.NoError(t, err)

	list, err := service.ListPremium()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.NotEqual(t, plain.ID, list[0].ID)
}

func TestUpdateClient(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	created, err := service.Create(newClient(10))
	require.NoError(t, err)

	update := newClient(10)
	update.ID = created.ID + 1
	_, err = service.Update(created.ID, update)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	update = newClient(10)
	update.FirstName = "Ana"
	updated, err := service.Update(created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.FirstName)

	got, err := service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)

	_, err = service.Update(999, newClient(10))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteClientBlockedByDependents(t *testing.T) {
	service, bunDB := setupClientService(t)
	defer bunDB.Close()

	created, err := service.Create(newClient(10))
	require.NoError(t, err)

	vehicle := &models.Vehicle{ClientID: created.ID, Model: "Corsa", LicensePlate: "AA-01-BB", IsActive: true}
	_, err = bunDB.NewInsert().Model(vehicle).Exec(context.Background())
	require.NoError(t, err)

	err = service.Delete(created.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "vehicles")

	_, err = bunDB.NewDelete().Model((*models.Vehicle)(nil)).Where("id = ?", vehicle.ID).Exec(context.Background())
	require.NoError(t, err)

	require.NoError(t, service.Delete(created.ID))

	_, err = service.Get(created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = service.Delete(created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
