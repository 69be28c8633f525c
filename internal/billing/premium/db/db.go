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

// Store persists one premium registration family,
// e.g. NewStore[models.GaragePremiumRegistration](bunDB, "garage_id").
type Store[M any, T interface {
	*M
	models.Registration
}] struct {
	Bun         *bun.DB
	ownerColumn string
}

func NewStore[M any, T interface {
	*M
	models.Registration
}](bunDB *bun.DB, ownerColumn string) *Store[M, T] {
	return &Store[M, T]{Bun: bunDB, ownerColumn: ownerColumn}
}

func (d *Store[M, T]) Insert(reg T) error {
	_, err := d.Bun.NewInsert().Model(reg).Exec(context.Background())
	return err
}

func (d *Store[M, T]) GetByID(id int64) (T, error) {
	reg := T(new(M))
	err := d.Bun.NewSelect().
		Model(reg).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
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
		Order("register_date DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return d.asInterfaces(rows), nil
}

// ListActive returns registrations that are flagged active and not expired
// at the given instant.
func (d *Store[M, T]) ListActive(now time.Time) ([]T, error) {
	var rows []M
	err := d.Bun.NewSelect().
		Model(&rows).
		Where("is_active = ?", true).
		Where("expiry_date >= ?", now).
		Order("register_date DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return d.asInterfaces(rows), nil
}

func (d *Store[M, T]) Update(reg T) error {
	_, err := d.Bun.NewUpdate().
		Model(reg).
		Column("register_date", "expiry_date", "is_active").
		Where("id = ?", reg.GetID()).
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

// DeactivateOwner clears the active flag on every registration of the owner
// except the given one. Pass exceptID=0 to deactivate all.
func (d *Store[M, T]) DeactivateOwner(ownerID int64, exceptID int64) error {
	_, err := d.Bun.NewUpdate().
		Model(T(nil)).
		Set("is_active = ?", false).
		Where(d.ownerColumn+" = ?", ownerID).
		Where("id != ?", exceptID).
		Exec(context.Background())
	return err
}

// HasActive reports whether the owner holds an active unexpired registration.
func (d *Store[M, T]) HasActive(ownerID int64, now time.Time) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model(T(nil)).
		Where(d.ownerColumn+" = ?", ownerID).
		Where("is_active = ?", true).
		Where("expiry_date >= ?", now).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *Store[M, T]) asInterfaces(rows []M) []T {
	regs := make([]T, len(rows))
	for i := range rows {
		regs[i] = T(&rows[i])
	}
	return regs
}
