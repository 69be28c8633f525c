package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/models"
)

// Store persists one payment order family,
// e.g. NewStore[models.ClientPaymentOrder](bunDB, "client_id").
type Store[M any, T interface {
	*M
	models.PaymentOrder
}] struct {
	Bun         *bun.DB
	ownerColumn string
}

func NewStore[M any, T interface {
	*M
	models.PaymentOrder
}](bunDB *bun.DB, ownerColumn string) *Store[M, T] {
	return &Store[M, T]{Bun: bunDB, ownerColumn: ownerColumn}
}

func (d *Store[M, T]) Insert(order T) error {
	_, err := d.Bun.NewInsert().Model(order).Exec(context.Background())
	return err
}

func (d *Store[M, T]) GetByID(id int64) (T, error) {
	order := T(new(M))
	err := d.Bun.NewSelect().
		Model(order).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (d *Store[M, T]) GetByOrderNumber(orderNumber string) (T, error) {
	order := T(new(M))
	err := d.Bun.NewSelect().
		Model(order).
		Where("order_number = ?", orderNumber).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (d *Store[M, T]) List() ([]T, error) {
	var rows []M
	err := d.Bun.NewSelect().
		Model(&rows).
		Order("created_date DESC").
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
		Order("created_date DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return d.asInterfaces(rows), nil
}

func (d *Store[M, T]) ListByStatus(status string) ([]T, error) {
	var rows []M
	err := d.Bun.NewSelect().
		Model(&rows).
		Where("status = ?", status).
		Order("created_date DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return d.asInterfaces(rows), nil
}

func (d *Store[M, T]) ListByMethod(methodID int64) ([]T, error) {
	var rows []M
	err := d.Bun.NewSelect().
		Model(&rows).
		Where("payment_method_id = ?", methodID).
		Order("created_date DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return d.asInterfaces(rows), nil
}

func (d *Store[M, T]) Delete(id int64) error {
	_, err := d.Bun.NewDelete().
		Model(T(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// Update writes the mutable lifecycle fields.
func (d *Store[M, T]) Update(order T) error {
	_, err := d.Bun.NewUpdate().
		Model(order).
		Column("status", "processed_date").
		Where("id = ?", order.GetID()).
		Exec(context.Background())
	return err
}

func (d *Store[M, T]) asInterfaces(rows []M) []T {
	orders := make([]T, len(rows))
	for i := range rows {
		orders[i] = T(&rows[i])
	}
	return orders
}

// Refs answers the reference checks order creation runs before inserting.
// The owner and method tables differ per family, currencies and offers are
// shared.
type Refs struct {
	Bun         *bun.DB
	ownerTable  string
	methodTable string
}

func NewRefs(bunDB *bun.DB, ownerTable, methodTable string) *Refs {
	return &Refs{Bun: bunDB, ownerTable: ownerTable, methodTable: methodTable}
}

func (r *Refs) OwnerExists(id int64) (bool, error) {
	return r.exists(r.ownerTable, id)
}

func (r *Refs) MethodExists(id int64) (bool, error) {
	return r.exists(r.methodTable, id)
}

func (r *Refs) CurrencyExists(id int64) (bool, error) {
	return r.exists("currencies", id)
}

func (r *Refs) OfferExists(id int64) (bool, error) {
	return r.exists("premium_offers", id)
}

func (r *Refs) exists(table string, id int64) (bool, error) {
	count, err := r.Bun.NewSelect().
		Table(table).
		Where("id = ?", id).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
