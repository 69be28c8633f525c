package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetAppointmentByID(id int64) (*models.VehicleAppointment, error) {
	var appointment models.VehicleAppointment
	err := d.Bun.NewSelect().
		Model(&appointment).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

func (d *DB) ListAppointments() ([]models.VehicleAppointment, error) {
	var appointments []models.VehicleAppointment
	err := d.Bun.NewSelect().
		Model(&appointments).
		Order("appointment_date ASC").
		Scan(context.Background())
	return appointments, err
}

func (d *DB) ListAppointmentsByVehicle(vehicleID int64) ([]models.VehicleAppointment, error) {
	var appointments []models.VehicleAppointment
	err := d.Bun.NewSelect().
		Model(&appointments).
		Where("vehicle_id = ?", vehicleID).
		Order("appointment_date ASC").
		Scan(context.Background())
	return appointments, err
}

func (d *DB) ListAppointmentsByGarage(garageID int64) ([]models.VehicleAppointment, error) {
	var appointments []models.VehicleAppointment
	err := d.Bun.NewSelect().
		Model(&appointments).
		Where("garage_id = ?", garageID).
		Order("appointment_date ASC").
		Scan(context.Background())
	return appointments, err
}

func (d *DB) ListUpcomingAppointments(now time.Time) ([]models.VehicleAppointment, error) {
	var appointments []models.VehicleAppointment
	err := d.Bun.NewSelect().
		Model(&appointments).
		Where("appointment_date >= ?", now).
		Order("appointment_date ASC").
		Scan(context.Background())
	return appointments, err
}

func (d *DB) ListAppointmentsByDateRange(from, to time.Time) ([]models.VehicleAppointment, error) {
	var appointments []models.VehicleAppointment
	err := d.Bun.NewSelect().
		Model(&appointments).
		Where("appointment_date >= ?", from).
		Where("appointment_date <= ?", to).
		Order("appointment_date ASC").
		Scan(context.Background())
	return appointments, err
}

// ListAppointmentsByClient joins through vehicles to collect every
// appointment booked for a client's vehicles, newest first.
func (d *DB) ListAppointmentsByClient(clientID int64) ([]models.VehicleAppointment, error) {
	var appointments []models.VehicleAppointment
	err := d.Bun.NewSelect().
		Model(&appointments).
		Join("JOIN vehicles ON vehicles.id = vehicle_appointments.vehicle_id").
		Where("vehicles.client_id = ?", clientID).
		Order("appointment_date DESC").
		Scan(context.Background())
	return appointments, err
}

func (d *DB) CountAppointments() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.VehicleAppointment)(nil)).
		Count(context.Background())
}

func (d *DB) CreateAppointment(appointment *models.VehicleAppointment) error {
	_, err := d.Bun.NewInsert().Model(appointment).Exec(context.Background())
	return err
}

func (d *DB) UpdateAppointment(appointment *models.VehicleAppointment) error {
	_, err := d.Bun.NewUpdate().
		Model(appointment).
		Column("vehicle_id", "garage_id", "appointment_date", "note").
		Where("id = ?", appointment.ID).
		Exec(context.Background())
	return err
}

func (d *DB) SetAppointmentDate(id int64, date time.Time) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.VehicleAppointment)(nil)).
		Set("appointment_date = ?", date).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) SetAppointmentNote(id int64, note string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.VehicleAppointment)(nil)).
		Set("note = ?", note).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteAppointment(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.VehicleAppointment)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) VehicleExists(id int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Vehicle)(nil)).
		Where("id = ?", id).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) GarageExists(id int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.GarageProfile)(nil)).
		Where("id = ?", id).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
