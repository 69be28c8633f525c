package notifications

import (
	"fmt"
	"strings"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/notifications/sse"
)

const defaultRecentLimit = 10

type DBLayer interface {
	GetNotificationByID(id int64) (*models.ClientNotification, error)
	ListNotifications() ([]models.ClientNotification, error)
	ListNotificationsByClient(clientID int64) ([]models.ClientNotification, error)
	ListUnreadNotifications(clientID int64) ([]models.ClientNotification, error)
	ListRecentNotifications(clientID int64, limit int) ([]models.ClientNotification, error)
	CreateNotification(notification *models.ClientNotification) error
	CreateNotifications(notifications []models.ClientNotification) error
	UpdateNotification(notification *models.ClientNotification) error
	MarkNotificationRead(id int64) error
	MarkAllNotificationsRead(clientID int64) (int64, error)
	DeleteNotification(id int64) error
	DeleteNotificationsByClient(clientID int64) (int64, error)
	ClientExists(id int64) (bool, error)

	GetReminderByID(id int64) (*models.ClientReminder, error)
	ListReminders() ([]models.ClientReminder, error)
	GetReminderByClient(clientID int64) (*models.ClientReminder, error)
	ReminderExistsForClient(clientID int64) (bool, error)
	CreateReminder(reminder *models.ClientReminder) error
	UpdateReminder(reminder *models.ClientReminder) error
	DeleteReminder(id int64) error
}

type Service struct {
	DB      DBLayer
	Emitter *sse.NotificationEmitter
	Logger  *logger.Logger
}

func NewService(db DBLayer, emitter *sse.NotificationEmitter, log *logger.Logger) *Service {
	return &Service{DB: db, Emitter: emitter, Logger: log}
}

// ---------------- NOTIFICATIONS ----------------

func (s *Service) Get(id int64) (*models.ClientNotification, error) {
	return s.DB.GetNotificationByID(id)
}

func (s *Service) List() ([]models.ClientNotification, error) {
	return s.DB.ListNotifications()
}

func (s *Service) ListByClient(clientID int64) ([]models.ClientNotification, error) {
	return s.DB.ListNotificationsByClient(clientID)
}

func (s *Service) ListUnread(clientID int64) ([]models.ClientNotification, error) {
	return s.DB.ListUnreadNotifications(clientID)
}

func (s *Service) ListRecent(clientID int64, limit int) ([]models.ClientNotification, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.DB.ListRecentNotifications(clientID, limit)
}

func (s *Service) Create(notification *models.ClientNotification) (*models.ClientNotification, error) {
	if err := s.validate(notification); err != nil {
		return nil, err
	}
	if err := s.DB.CreateNotification(notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if s.Emitter != nil {
		s.Emitter.Emit(*notification)
	}
	s.Logger.LogDatabase("INSERT", "client_notifications",
		fmt.Sprintf("notification %d created for client %d", notification.ID, notification.ClientID))
	return notification, nil
}

// CreateBulk validates every client reference before inserting anything, so a
// single bad id rejects the whole batch.
func (s *Service) CreateBulk(notifications []models.ClientNotification) ([]models.ClientNotification, error) {
	if len(notifications) == 0 {
		return nil, fmt.Errorf("%w: empty notification batch", apperrors.ErrInvalidInput)
	}
	for i := range notifications {
		if err := s.validate(&notifications[i]); err != nil {
			return nil, err
		}
	}
	if err := s.DB.CreateNotifications(notifications); err != nil {
		return nil, fmt.Errorf("create notification batch: %w", err)
	}
	if s.Emitter != nil {
		for _, notification := range notifications {
			s.Emitter.Emit(notification)
		}
	}
	return notifications, nil
}

func (s *Service) Update(id int64, notification *models.ClientNotification) (*models.ClientNotification, error) {
	if notification.ID != 0 && notification.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	notification.ID = id
	if err := s.validate(notification); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetNotificationByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.UpdateNotification(notification); err != nil {
		return nil, fmt.Errorf("update notification %d: %w", id, err)
	}
	return notification, nil
}

func (s *Service) MarkRead(id int64) (*models.ClientNotification, error) {
	if _, err := s.DB.GetNotificationByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.MarkNotificationRead(id); err != nil {
		return nil, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return s.DB.GetNotificationByID(id)
}

// MarkAllRead returns how many notifications were flipped.
func (s *Service) MarkAllRead(clientID int64) (int64, error) {
	affected, err := s.DB.MarkAllNotificationsRead(clientID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read for client %d: %w", clientID, err)
	}
	return affected, nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.DB.GetNotificationByID(id); err != nil {
		return err
	}
	if err := s.DB.DeleteNotification(id); err != nil {
		return fmt.Errorf("delete notification %d: %w", id, err)
	}
	return nil
}

// DeleteByClient removes every notification of the client and returns how
// many were deleted. A client with no notifications is NotFound, matching
// the single-delete behavior.
func (s *Service) DeleteByClient(clientID int64) (int64, error) {
	deleted, err := s.DB.DeleteNotificationsByClient(clientID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications of client %d: %w", clientID, err)
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: no notifications for client %d", apperrors.ErrNotFound, clientID)
	}
	return deleted, nil
}

func (s *Service) validate(notification *models.ClientNotification) error {
	if strings.TrimSpace(notification.Notes) == "" {
		return fmt.Errorf("%w: notification notes are required", apperrors.ErrInvalidInput)
	}
	if notification.ClientID <= 0 {
		return fmt.Errorf("%w: client id is required", apperrors.ErrInvalidInput)
	}
	ok, err := s.DB.ClientExists(notification.ClientID)
	if err != nil {
		return fmt.Errorf("check client %d: %w", notification.ClientID, err)
	}
	if !ok {
		return fmt.Errorf("%w: client %d does not exist", apperrors.ErrInvalidInput, notification.ClientID)
	}
	return nil
}

// ---------------- REMINDERS ----------------

func (s *Service) GetReminder(id int64) (*models.ClientReminder, error) {
	return s.DB.GetReminderByID(id)
}

func (s *Service) ListReminders() ([]models.ClientReminder, error) {
	return s.DB.ListReminders()
}

func (s *Service) GetReminderByClient(clientID int64) (*models.ClientReminder, error) {
	return s.DB.GetReminderByClient(clientID)
}

// CreateReminder allows at most one reminder per client.
func (s *Service) CreateReminder(reminder *models.ClientReminder) (*models.ClientReminder, error) {
	if reminder.ClientID <= 0 {
		return nil, fmt.Errorf("%w: client id is required", apperrors.ErrInvalidInput)
	}
	ok, err := s.DB.ClientExists(reminder.ClientID)
	if err != nil {
		return nil, fmt.Errorf("check client %d: %w", reminder.ClientID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: client %d does not exist", apperrors.ErrInvalidInput, reminder.ClientID)
	}
	exists, err := s.DB.ReminderExistsForClient(reminder.ClientID)
	if err != nil {
		return nil, fmt.Errorf("check reminders for client %d: %w", reminder.ClientID, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: client %d already has a reminder", apperrors.ErrConflict, reminder.ClientID)
	}
	if err := s.DB.CreateReminder(reminder); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return reminder, nil
}

func (s *Service) UpdateReminder(id int64, reminder *models.ClientReminder) (*models.ClientReminder, error) {
	if reminder.ID != 0 && reminder.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	reminder.ID = id
	current, err := s.DB.GetReminderByID(id)
	if err != nil {
		return nil, err
	}
	// The reminder stays pinned to its client.
	if reminder.ClientID == 0 {
		reminder.ClientID = current.ClientID
	}
	if reminder.ClientID != current.ClientID {
		return nil, fmt.Errorf("%w: reminder cannot move between clients", apperrors.ErrInvalidInput)
	}
	if err := s.DB.UpdateReminder(reminder); err != nil {
		return nil, fmt.Errorf("update reminder %d: %w", id, err)
	}
	return reminder, nil
}

func (s *Service) DeleteReminder(id int64) error {
	if _, err := s.DB.GetReminderByID(id); err != nil {
		return err
	}
	if err := s.DB.DeleteReminder(id); err != nil {
		return fmt.Errorf("delete reminder %d: %w", id, err)
	}
	return nil
}
