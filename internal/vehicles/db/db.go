package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetVehicleByID(id int64) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicle).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (d *DB) ListVehicles() ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicles).
		Order("id ASC").
		Scan(context.Background())
	return vehicles, err
}

func (d *DB) ListVehiclesByClient(clientID int64) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicles).
		Where("client_id = ?", clientID).
		Order("id ASC").
		Scan(context.Background())
	return vehicles, err
}

func (d *DB) GetVehicleByLicensePlate(plate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicle).
		Where("LOWER(license_plate) = LOWER(?)", plate).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (d *DB) ListActiveVehicles() ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicles).
		Where("is_active = ?", true).
		Order("id ASC").
		Scan(context.Background())
	return vehicles, err
}

func (d *DB) ListVehiclesByManufacturer(manufacturerID int64) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := d.Bun.NewSelect().
		Model(&vehicles).
		Where("manufacturer_id = ?", manufacturerID).
		Order("id ASC").
		Scan(context.Background())
	return vehicles, err
}

// SearchVehicles matches the term against model and license plate.
func (d *DB) SearchVehicles(term string) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	pattern := "%" + term + "%"
	err := d.Bun.NewSelect().
		Model(&vehicles).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(model) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(license_plate) LIKE LOWER(?)", pattern)
		}).
		Order("id ASC").
		Scan(context.Background())
	return vehicles, err
}

func (d *DB) CountVehicles() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Vehicle)(nil)).
		Count(context.Background())
}

func (d *DB) CreateVehicle(vehicle *models.Vehicle) error {
	_, err := d.Bun.NewInsert().Model(vehicle).Exec(context.Background())
	return err
}

func (d *DB) UpdateVehicle(vehicle *models.Vehicle) error {
	_, err := d.Bun.NewUpdate().
		Model(vehicle).
		Column("client_id", "manufacturer_id", "model", "license_plate", "year", "is_active").
		Where("id = ?", vehicle.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteVehicle(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Vehicle)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) LicensePlateExists(plate string, exceptID int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Vehicle)(nil)).
		Where("LOWER(license_plate) = LOWER(?)", plate).
		Where("id != ?", exceptID).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) ClientExists(id int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.ClientProfile)(nil)).
		Where("id = ?", id).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) CountVehicleAppointments(vehicleID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.VehicleAppointment)(nil)).
		Where("vehicle_id = ?", vehicleID).
		Count(context.Background())
}
