package appointments_test

import (
	"bytes"
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
	"garage-client-api/internal/appointments"
	"garage-client-api/internal/appointments/db"
	"garage-client-api/internal/appointments/qr"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

func setupAppointmentService(t *testing.T) (*appointments.Service, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range []interface{}{
		(*models.VehicleAppointment)(nil),
		(*models.Vehicle)(nil),
		(*models.GarageProfile)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	vehicle := &models.Vehicle{ClientID: 1, Model: "Corsa", LicensePlate: "AA-01-BB", IsActive: true}
	_, err = bunDB.NewInsert().Model(vehicle).Exec(context.Background())
	require.NoError(t, err)
	garage := &models.GarageProfile{UserID: 1, GarageName: "Oficina", CountryID: 1, SpecializationID: 1}
	_, err = bunDB.NewInsert().Model(garage).Exec(context.Background())
	require.NoError(t, err)

	service := appointments.NewService(&db.DB{Bun: bunDB}, qr.NewQRGenerator("test-secret"), logger.NewLogger())
	return service, bunDB
}

func newAppointment(date time.Time) *models.VehicleAppointment {
	return &models.VehicleAppointment{
		VehicleID:       1,
		GarageID:        1,
		AppointmentDate: date,
		Note:            "oil change",
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	noDate := newAppointment(time.Time{})
	_, err := service.Create(noDate)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	badVehicle := newAppointment(time.Now())
	badVehicle.VehicleID = 99
	_, err = service.Create(badVehicle)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	badGarage := newAppointment(time.Now())
	badGarage.GarageID = 99
	_, err = service.Create(badGarage)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	created, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 2)))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestAppointmentLookups(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	past, err := service.Create(newAppointment(time.Now().AddDate(0, 0, -7)))
	require.NoError(t, err)
	future, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 7)))
	require.NoError(t, err)

	all, err := service.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Sorted by date, oldest first.
	assert.Equal(t, past.ID, all[0].ID)

	upcoming, err := service.ListUpcoming()
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, future.ID, upcoming[0].ID)

	byVehicle, err := service.ListByVehicle(1)
	require.NoError(t, err)
	assert.Len(t, byVehicle, 2)

	byGarage, err := service.ListByGarage(1)
	require.NoError(t, err)
	assert.Len(t, byGarage, 2)

	count, err := service.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAppointmentsByDateAndRange(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	day := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	onDay, err := service.Create(newAppointment(day))
	require.NoError(t, err)
	_, err = service.Create(newAppointment(day.AddDate(0, 0, 3)))
	require.NoError(t, err)

	sameDay, err := service.ListByDate(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, sameDay, 1)
	assert.Equal(t, onDay.ID, sameDay[0].ID)

	inRange, err := service.ListByDateRange(day.AddDate(0, 0, -1), day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	_, err = service.ListByDateRange(day, day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateAndDeleteAppointment(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	created, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 2)))
	require.NoError(t, err)

	mismatched := newAppointment(time.Now().AddDate(0, 0, 3))
	mismatched.ID = created.ID + 9
	_, err = service.Update(created.ID, mismatched)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	update := newAppointment(time.Now().AddDate(0, 0, 3))
	update.Note = "brake inspection"
	updated, err := service.Update(created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "brake inspection", updated.Note)

	require.NoError(t, service.Delete(created.ID))
	err = service.Delete(created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRescheduleAppointment(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	created, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 2)))
	require.NoError(t, err)

	newDate := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	moved, err := service.Reschedule(created.ID, newDate)
	require.NoError(t, err)
	assert.True(t, moved.AppointmentDate.Equal(newDate))
	// Everything but the date survives
	assert.Equal(t, "oil change", moved.Note)
	assert.Equal(t, created.VehicleID, moved.VehicleID)

	_, err = service.Reschedule(created.ID, time.Time{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = service.Reschedule(999, newDate)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateAppointmentNote(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	created, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 2)))
	require.NoError(t, err)

	updated, err := service.UpdateNote(created.ID, "replace timing belt")
	require.NoError(t, err)
	assert.Equal(t, "replace timing belt", updated.Note)
	assert.True(t, updated.AppointmentDate.Equal(created.AppointmentDate))

	cleared, err := service.UpdateNote(created.ID, "")
	require.NoError(t, err)
	assert.Empty(t, cleared.Note)

	_, err = service.UpdateNote(999, "x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListAppointmentsByClient(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	otherVehicle := &models.Vehicle{ClientID: 2, Model: "Clio", LicensePlate: "CC-02-DD", IsActive: true}
	_, err := bunDB.NewInsert().Model(otherVehicle).Exec(context.Background())
	require.NoError(t, err)

	older, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 1)))
	require.NoError(t, err)
	newer, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 5)))
	require.NoError(t, err)

	foreign := newAppointment(time.Now().AddDate(0, 0, 3))
	foreign.VehicleID = otherVehicle.ID
	_, err = service.Create(foreign)
	require.NoError(t, err)

	mine, err := service.ListByClient(1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// Newest first
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	none, err := service.ListByClient(99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCheckInCodeRoundTrip(t *testing.T) {
	service, bunDB := setupAppointmentService(t)
	defer bunDB.Close()

	created, err := service.Create(newAppointment(time.Now().AddDate(0, 0, 2)))
	require.NoError(t, err)

	png, err := service.CheckInCode(created.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = service.CheckInCode(999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQRGeneratorEncryptDecrypt(t *testing.T) {
	generator := qr.NewQRGenerator("check-in-secret")

	appointment := models.VehicleAppointment{
		ID:              12,
		VehicleID:       4,
		GarageID:        9,
		AppointmentDate: time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
	}

	png, err := generator.GenerateEncryptedQR(appointment)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
