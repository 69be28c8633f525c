package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/models"
)

// Store is the bun-backed payment method store. It is instantiated once per
// owner family, e.g. NewStore[models.ClientPaymentMethod](bunDB, "client_id").
type Store[M any, T interface {
	*M
	models.CardMethod
}] struct {
	Bun         *bun.DB
	ownerColumn string
}

func NewStore[M any, T interface {
	*M
	models.CardMethod
}](bunDB *bun.DB, ownerColumn string) *Store[M, T] {
	return &Store[M, T]{Bun: bunDB, ownerColumn: ownerColumn}
}

func (d *Store[M, T]) Insert(method T) error {
	_, err := d.Bun.NewInsert().Model(method).Exec(context.Background())
	return err
}

func (d *Store[M, T]) GetByID(id int64) (T, error) {
	method := T(new(M))
	err := d.Bun.NewSelect().
		Model(method).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return method, nil
}

func (d *Store[M, T]) List() ([]T, error) {
	var rows []M
	err := d.Bun.NewSelect().
		Model(&rows).
		Order("id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return d.asInterfaces(rows), nil
}

func (d *Store[M, T]) ListByOwner(ownerID int64) ([]T, error) {
	var rows []M
	err := d.Bun.NewSelect().
		Model(&rows).
		Where(d.ownerColumn+" = ?", ownerID).
		Order("id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return d.asInterfaces(rows), nil
}

func (d *Store[M, T]) Update(method T) error {
	_, err := d.Bun.NewUpdate().
		Model(method).
		Column("payment_type", "is_primary", "last_modified", "is_active",
			"card_number", "card_holder_name", "expiry_month", "expiry_year", "cvv").
		Where("id = ?", method.GetID()).
		Exec(context.Background())
	return err
}

func (d *Store[M, T]) Delete(id int64) error {
	_, err := d.Bun.NewDelete().
		Model(T(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ClearPrimary drops the primary flag on every method of the owner except the
// given one. Pass exceptID=0 to clear all.
func (d *Store[M, T]) ClearPrimary(ownerID int64, exceptID int64) error {
	_, err := d.Bun.NewUpdate().
		Model(T(nil)).
		Set("is_primary = ?", false).
		Where(d.ownerColumn+" = ?", ownerID).
		Where("id != ?", exceptID).
		Exec(context.Background())
	return err
}

func (d *Store[M, T]) CountByOwner(ownerID int64) (int, error) {
	return d.Bun.NewSelect().
		Model(T(nil)).
		Where(d.ownerColumn+" = ?", ownerID).
		Count(context.Background())
}

// FirstByOwner returns the owner's method with the lowest id.
func (d *Store[M, T]) FirstByOwner(ownerID int64) (T, error) {
	method := T(new(M))
	err := d.Bun.NewSelect().
		Model(method).
		Where(d.ownerColumn+" = ?", ownerID).
		Order("id ASC").
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return method, nil
}

func (d *Store[M, T]) asInterfaces(rows []M) []T {
	methods := make([]T, len(rows))
	for i := range rows {
		methods[i] = T(&rows[i])
	}
	return methods
}
