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

// ---------------- COUNTRIES ----------------

func (d *DB) GetCountryByID(id int64) (*models.Country, error) {
	var country models.Country
	err := d.Bun.NewSelect().
		Model(&country).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &country, nil
}

func (d *DB) ListCountries() ([]models.Country, error) {
	var countries []models.Country
	err := d.Bun.NewSelect().
		Model(&countries).
		Order("country_name ASC").
		Scan(context.Background())
	return countries, err
}

func (d *DB) CreateCountry(country *models.Country) error {
	_, err := d.Bun.NewInsert().Model(country).Exec(context.Background())
	return err
}

func (d *DB) UpdateCountry(country *models.Country) error {
	_, err := d.Bun.NewUpdate().
		Model(country).
		Column("country_name", "phone_ext").
		Where("id = ?", country.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteCountry(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Country)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) CountryClientCount(countryID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.ClientProfile)(nil)).
		Where("country_id = ?", countryID).
		Count(context.Background())
}

func (d *DB) CountryGarageCount(countryID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.GarageProfile)(nil)).
		Where("country_id = ?", countryID).
		Count(context.Background())
}

// ---------------- SPECIALIZATIONS ----------------

func (d *DB) GetSpecializationByID(id int64) (*models.Specialization, error) {
	var specialization models.Specialization
	err := d.Bun.NewSelect().
		Model(&specialization).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &specialization, nil
}

func (d *DB) ListSpecializations() ([]models.Specialization, error) {
	var specializations []models.Specialization
	err := d.Bun.NewSelect().
		Model(&specializations).
		Order("specialization_desc ASC").
		Scan(context.Background())
	return specializations, err
}

func (d *DB) CreateSpecialization(specialization *models.Specialization) error {
	_, err := d.Bun.NewInsert().Model(specialization).Exec(context.Background())
	return err
}

func (d *DB) UpdateSpecialization(specialization *models.Specialization) error {
	_, err := d.Bun.NewUpdate().
		Model(specialization).
		Column("specialization_desc").
		Where("id = ?", specialization.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteSpecialization(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Specialization)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) SpecializationGarageCount(specializationID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.GarageProfile)(nil)).
		Where("specialization_id = ?", specializationID).
		Count(context.Background())
}
