package vehicles_test

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
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/vehicles"
	"garage-client-api/internal/vehicles/db"
)

func setupVehicleService(t *testing.T) (*vehicles.Service, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range []interface{}{
		(*models.Vehicle)(nil),
		(*models.ClientProfile)(nil),
		(*models.VehicleAppointment)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	client := &models.ClientProfile{UserID: 1, FirstName: "Maria", LastName: "Santos", CountryID: 1}
	_, err = bunDB.NewInsert().Model(client).Exec(context.Background())
	require.NoError(t, err)

	return vehicles.NewService(&db.DB{Bun: bunDB}, logger.NewLogger()), bunDB
}

func newVehicle(plate string) *models.Vehicle {
	return &models.Vehicle{
		ClientID:       1,
		ManufacturerID: 3,
		Model:          "Corsa",
		LicensePlate:   plate,
		Year:           2019,
		IsActive:       true,
	}
}

func TestCreateVehicleAndLookups(t *testing.T) {
	service, bunDB := setupVehicleService(t)
	defer bunDB.Close()

	created, err := service.Create(newVehicle("AA-01-BB"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corsa", got.Model)

	byPlate, err := service.GetByLicensePlate("aa-01-bb")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPlate.ID)

	byClient, err := service.ListByClient(1)
	require.NoError(t, err)
	assert.Len(t, byClient, 1)

	byManufacturer, err := service.ListByManufacturer(3)
	require.NoError(t, err)
	assert.Len(t, byManufacturer, 1)

	count, err := service.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateVehicleValidation(t *testing.T) {
	service, bunDB := setupVehicleService(t)
	defer bunDB.Close()

	noModel := newVehicle("AA-01-BB")
	noModel.Model = " "
	_, err := service.Create(noModel)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	noPlate := newVehicle("")
	_, err = service.Create(noPlate)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	badClient := newVehicle("AA-01-BB")
	badClient.ClientID = 99
	_, err = service.Create(badClient)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLicensePlateConflict(t *testing.T) {
	service, bunDB := setupVehicleService(t)
	defer bunDB.Close()

	_, err := service.Create(newVehicle("AA-01-BB"))
	require.NoError(t, err)

	_, err = service.Create(newVehicle("aa-01-bb"))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	second, err := service.Create(newVehicle("CC-02-DD"))
	require.NoError(t, err)

	// Updating to another vehicle's plate conflicts, keeping your own does not.
	steal := newVehicle("AA-01-BB")
	_, err = service.Update(second.ID, steal)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	keep := newVehicle("CC-02-DD")
	keep.Year = 2021
	updated, err := service.Update(second.ID, keep)
	require.NoError(t, err)
	assert.Equal(t, 2021, updated.Year)
}

func TestListActiveAndSearch(t *testing.T) {
	service, bunDB := setupVehicleService(t)
	defer bunDB.Close()

	active, err := service.Create(newVehicle("AA-01-BB"))
	require.NoError(t, err)

	inactive := newVehicle("CC-02-DD")
	inactive.Model = "Astra"
	inactive.IsActive = false
	_, err = service.Create(inactive)
	require.NoError(t, err)

	activeList, err := service.ListActive()
	require.NoError(t, err)
	require.Len(t, activeList, 1)
	assert.Equal(t, active.ID, activeList[0].ID)

	byModel, err := service.Search("astra")
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, "Astra", byModel[0].Model)

	byPlate, err := service.Search("01-bb")
	require.NoError(t, err)
	assert.Len(t, byPlate, 1)

	_, err = service.Search(" ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDeleteVehicleBlockedByAppointments(t *testing.T) {
	service, bunDB := setupVehicleService(t)
	defer bunDB.Close()

	created, err := service.Create(newVehicle("AA-01-BB"))
	require.NoError(t, err)

	appointment := &models.VehicleAppointment{
		VehicleID:       created.ID,
		GarageID:        1,
		AppointmentDate: time.Now().AddDate(0, 0, 3),
	}
	_, err = bunDB.NewInsert().Model(appointment).Exec(context.Background())
	require.NoError(t, err)

	err = service.Delete(created.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = bunDB.NewDelete().Model((*models.VehicleAppointment)(nil)).
		Where("id = ?", appointment.ID).Exec(context.Background())
	require.NoError(t, err)

	require.NoError(t, service.Delete(created.ID))

	err = service.Delete(created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
