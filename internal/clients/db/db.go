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

func (d *DB) GetClientByID(id int64) (*models.ClientProfile, error) {
	var client models.ClientProfile
	err := d.Bun.NewSelect().
		Model(&client).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (d *DB) ListClients() ([]models.ClientProfile, error) {
	var clients []models.ClientProfile
	err := d.Bun.NewSelect().
		Model(&clients).
		Order("id ASC").
		Scan(context.Background())
	return clients, err
}

func (d *DB) GetClientByUserID(userID int64) (*models.ClientProfile, error) {
	var client models.ClientProfile
	err := d.Bun.NewSelect().
		Model(&client).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (d *DB) GetClientByEmail(email string) (*models.ClientProfile, error) {
	var client models.ClientProfile
	err := d.Bun.NewSelect().
		Model(&client).
		Where("LOWER(email) = LOWER(?)", email).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (d *DB) ListPremiumClients() ([]models.ClientProfile, error) {
	var clients []models.ClientProfile
	err := d.Bun.NewSelect().
		Model(&clients).
		Where("is_premium = ?", true).
		Order("id ASC").
		Scan(context.Background())
	return clients, err
}

func (d *DB) CreateClient(client *models.ClientProfile) error {
	_, err := d.Bun.NewInsert().Model(client).Exec(context.Background())
	return err
}

func (d *DB) UpdateClient(client *models.ClientProfile) error {
	_, err := d.Bun.NewUpdate().
		Model(client).
		Column("user_id", "first_name", "last_name", "email", "phone_ext",
			"phone", "address", "country_id", "is_premium").
		Where("id = ?", client.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteClient(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.ClientProfile)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// CountryExists backs the country reference check on create and update.
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

// Dependent counts used to block deletion of a referenced client.

func (d *DB) CountPaymentMethods(clientID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.ClientPaymentMethod)(nil)).
		Where("client_id = ?", clientID).
		Count(context.Background())
}

func (d *DB) CountOrders(clientID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.ClientPaymentOrder)(nil)).
		Where("client_id = ?", clientID).
		Count(context.Background())
}

func (d *DB) CountVehicles(clientID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Vehicle)(nil)).
		Where("client_id = ?", clientID).
		Count(context.Background())
}
