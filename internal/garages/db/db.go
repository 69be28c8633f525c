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

func (d *DB) GetGarageByID(id int64) (*models.GarageProfile, error) {
	var garage models.GarageProfile
	err := d.Bun.NewSelect().
		Model(&garage).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &garage, nil
}

func (d *DB) ListGarages() ([]models.GarageProfile, error) {
	var garages []models.GarageProfile
	err := d.Bun.NewSelect().
		Model(&garages).
		Order("id ASC").
		Scan(context.Background())
	return garages, err
}

func (d *DB) GetGarageByUserID(userID int64) (*models.GarageProfile, error) {
	var garage models.GarageProfile
	err := d.Bun.NewSelect().
		Model(&garage).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &garage, nil
}

func (d *DB) ListPremiumGarages() ([]models.GarageProfile, error) {
	var garages []models.GarageProfile
	err := d.Bun.NewSelect().
		Model(&garages).
		Where("is_premium = ?", true).
		Order("id ASC").
		Scan(context.Background())
	return garages, err
}

func (d *DB) ListGaragesByCountry(countryID int64) ([]models.GarageProfile, error) {
	var garages []models.GarageProfile
	err := d.Bun.NewSelect().
		Model(&garages).
		Where("country_id = ?", countryID).
		Order("id ASC").
		Scan(context.Background())
	return garages, err
}

func (d *DB) ListGaragesBySpecialization(specializationID int64) ([]models.GarageProfile, error) {
	var garages []models.GarageProfile
	err := d.Bun.NewSelect().
		Model(&garages).
		Where("specialization_id = ?", specializationID).
		Order("id ASC").
		Scan(context.Background())
	return garages, err
}

// SearchGarages matches the term as a case-insensitive substring of the
// garage name, address, or email.
func (d *DB) SearchGarages(term string) ([]models.GarageProfile, error) {
	var garages []models.GarageProfile
	pattern := "%" + term + "%"
	err := d.Bun.NewSelect().
		Model(&garages).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(garage_name) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(address) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(email) LIKE LOWER(?)", pattern)
		}).
		Order("id ASC").
		Scan(context.Background())
	return garages, err
}

func (d *DB) CreateGarage(garage *models.GarageProfile) error {
	_, err := d.Bun.NewInsert().Model(garage).Exec(context.Background())
	return err
}

func (d *DB) UpdateGarage(garage *models.GarageProfile) error {
	_, err := d.Bun.NewUpdate().
		Model(garage).
		Column("user_id", "garage_name", "email", "phone_ext", "phone",
			"address", "country_id", "specialization_id", "is_premium").
		Where("id = ?", garage.ID).
		Exec(context.Background())
	return err
}

func (d *DB) SetPremiumStatus(id int64, isPremium bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.GarageProfile)(nil)).
		Set("is_premium = ?", isPremium).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteGarage(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.GarageProfile)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) EmailExists(email string, exceptID int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.GarageProfile)(nil)).
		Where("LOWER(email) = LOWER(?)", email).
		Where("id != ?", exceptID).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) CountryExists(id int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Country)(nil)).
		Where("id = ?", id).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) SpecializationExists(id int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Specialization)(nil)).
		Where("id = ?", id).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Dependent counts used to block deletion of a referenced garage.

func (d *DB) CountPaymentMethods(garageID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.GaragePaymentMethod)(nil)).
		Where("garage_id = ?", garageID).
		Count(context.Background())
}

func (d *DB) CountOrders(garageID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.GaragePaymentOrder)(nil)).
		Where("garage_id = ?", garageID).
		Count(context.Background())
}

func (d *DB) CountAppointments(garageID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.VehicleAppointment)(nil)).
		Where("garage_id = ?", garageID).
		Count(context.Background())
}
