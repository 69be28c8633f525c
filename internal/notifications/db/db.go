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

// ---------------- NOTIFICATIONS ----------------

func (d *DB) GetNotificationByID(id int64) (*models.ClientNotification, error) {
	var notification models.ClientNotification
	err := d.Bun.NewSelect().
		Model(&notification).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (d *DB) ListNotifications() ([]models.ClientNotification, error) {
	var notifications []models.ClientNotification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Order("created_at DESC").
		Scan(context.Background())
	return notifications, err
}

func (d *DB) ListNotificationsByClient(clientID int64) ([]models.ClientNotification, error) {
	var notifications []models.ClientNotification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Scan(context.Background())
	return notifications, err
}

func (d *DB) ListUnreadNotifications(clientID int64) ([]models.ClientNotification, error) {
	var notifications []models.ClientNotification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Where("client_id = ?", clientID).
		Where("is_read = ?", false).
		Order("created_at DESC").
		Scan(context.Background())
	return notifications, err
}

func (d *DB) ListRecentNotifications(clientID int64, limit int) ([]models.ClientNotification, error) {
	var notifications []models.ClientNotification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Scan(context.Background())
	return notifications, err
}

func (d *DB) CreateNotification(notification *models.ClientNotification) error {
	_, err := d.Bun.NewInsert().Model(notification).Exec(context.Background())
	return err
}

func (d *DB) CreateNotifications(notifications []models.ClientNotification) error {
	_, err := d.Bun.NewInsert().Model(&notifications).Exec(context.Background())
	return err
}

func (d *DB) UpdateNotification(notification *models.ClientNotification) error {
	_, err := d.Bun.NewUpdate().
		Model(notification).
		Column("client_id", "notes", "is_read").
		Where("id = ?", notification.ID).
		Exec(context.Background())
	return err
}

func (d *DB) MarkNotificationRead(id int64) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.ClientNotification)(nil)).
		Set("is_read = ?", true).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) MarkAllNotificationsRead(clientID int64) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.ClientNotification)(nil)).
		Set("is_read = ?", true).
		Where("client_id = ?", clientID).
		Where("is_read = ?", false).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) DeleteNotification(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.ClientNotification)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteNotificationsByClient(clientID int64) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.ClientNotification)(nil)).
		Where("client_id = ?", clientID).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
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

// ---------------- REMINDERS ----------------

func (d *DB) GetReminderByID(id int64) (*models.ClientReminder, error) {
	var reminder models.ClientReminder
	err := d.Bun.NewSelect().
		Model(&reminder).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

func (d *DB) ListReminders() ([]models.ClientReminder, error) {
	var reminders []models.ClientReminder
	err := d.Bun.NewSelect().
		Model(&reminders).
		Order("reminder_date ASC").
		Scan(context.Background())
	return reminders, err
}

func (d *DB) GetReminderByClient(clientID int64) (*models.ClientReminder, error) {
	var reminder models.ClientReminder
	err := d.Bun.NewSelect().
		Model(&reminder).
		Where("client_id = ?", clientID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

func (d *DB) ReminderExistsForClient(clientID int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.ClientReminder)(nil)).
		Where("client_id = ?", clientID).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) CreateReminder(reminder *models.ClientReminder) error {
	_, err := d.Bun.NewInsert().Model(reminder).Exec(context.Background())
	return err
}

func (d *DB) UpdateReminder(reminder *models.ClientReminder) error {
	_, err := d.Bun.NewUpdate().
		Model(reminder).
		Column("client_id", "reminder_date", "notes").
		Where("id = ?", reminder.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteReminder(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.ClientReminder)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}
