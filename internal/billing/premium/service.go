package premium

import (
	"errors"
	"fmt"
	"time"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type DBLayer[T models.Registration] interface {
	Insert(reg T) error
	GetByID(id int64) (T, error)
	List() ([]T, error)
	ListByOwner(ownerID int64) ([]T, error)
	ListActive(now time.Time) ([]T, error)
	Update(reg T) error
	Delete(id int64) error
	DeactivateOwner(ownerID int64, exceptID int64) error
	HasActive(ownerID int64, now time.Time) (bool, error)
}

// Service manages premium registrations for one owner family. The garage
// family deactivates the owner's existing registrations on every create; the
// client family does not, so a client can hold several active rows until one
// is explicitly activated.
type Service[T models.Registration] struct {
	DB                 DBLayer[T]
	Owner              models.OwnerKind
	Logger             *logger.Logger
	deactivateOnCreate bool
}

func NewService[T models.Registration](db DBLayer[T], owner models.OwnerKind, log *logger.Logger) *Service[T] {
	return &Service[T]{
		DB:                 db,
		Owner:              owner,
		Logger:             log,
		deactivateOnCreate: owner == models.OwnerGarage,
	}
}

func (s *Service[T]) List() ([]T, error) {
	return s.DB.List()
}

func (s *Service[T]) Get(id int64) (T, error) {
	return s.DB.GetByID(id)
}

func (s *Service[T]) ListByOwner(ownerID int64) ([]T, error) {
	return s.DB.ListByOwner(ownerID)
}

func (s *Service[T]) ListActive() ([]T, error) {
	return s.DB.ListActive(time.Now())
}

func (s *Service[T]) Create(reg T) error {
	if reg.GetOwnerID() <= 0 {
		return fmt.Errorf("%w: %s id is required", apperrors.ErrInvalidInput, s.Owner)
	}
	if reg.RegisteredAt().IsZero() {
		reg.SetRegisterDate(time.Now())
	}

	if s.deactivateOnCreate {
		if err := s.DB.DeactivateOwner(reg.GetOwnerID(), 0); err != nil {
			return fmt.Errorf("failed to deactivate registrations for %s %d: %w", s.Owner, reg.GetOwnerID(), err)
		}
	}

	if err := s.DB.Insert(reg); err != nil {
		return fmt.Errorf("failed to create premium registration: %w", err)
	}
	s.Logger.Info("BILLING", fmt.Sprintf("created premium registration %d for %s %d (active=%v, expires=%s)",
		reg.GetID(), s.Owner, reg.GetOwnerID(), reg.ActiveFlag(), reg.ExpiresAt().Format("2006-01-02")))
	return nil
}

// Activate makes the registration the owner's only active one.
func (s *Service[T]) Activate(id int64) error {
	reg, err := s.DB.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.DeactivateOwner(reg.GetOwnerID(), id); err != nil {
		return fmt.Errorf("failed to deactivate registrations for %s %d: %w", s.Owner, reg.GetOwnerID(), err)
	}

	reg.SetActive(true)
	if err := s.DB.Update(reg); err != nil {
		return fmt.Errorf("failed to activate premium registration %d: %w", id, err)
	}
	s.Logger.Info("BILLING", fmt.Sprintf("premium registration %d activated for %s %d", id, s.Owner, reg.GetOwnerID()))
	return nil
}

// Extend pushes the expiry out by the given number of months. An already
// expired registration extends from now, a live one from its current expiry.
func (s *Service[T]) Extend(id int64, months int) (T, error) {
	var zero T
	if months <= 0 {
		return zero, fmt.Errorf("%w: months must be positive", apperrors.ErrInvalidInput)
	}

	reg, err := s.DB.GetByID(id)
	if err != nil {
		return zero, err
	}

	base := reg.ExpiresAt()
	if now := time.Now(); base.Before(now) {
		base = now
	}
	reg.SetExpiry(base.AddDate(0, months, 0))

	if err := s.DB.Update(reg); err != nil {
		return zero, fmt.Errorf("failed to extend premium registration %d: %w", id, err)
	}
	return reg, nil
}

func (s *Service[T]) Update(id int64, reg T) error {
	if reg.GetID() != id {
		return fmt.Errorf("%w: registration id %d does not match path id %d",
			apperrors.ErrInvalidInput, reg.GetID(), id)
	}

	if _, err := s.DB.GetByID(id); err != nil {
		return err
	}

	if err := s.DB.Update(reg); err != nil {
		if _, checkErr := s.DB.GetByID(id); errors.Is(checkErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update premium registration %d: %w", id, err)
	}
	return nil
}

func (s *Service[T]) Delete(id int64) error {
	if _, err := s.DB.GetByID(id); err != nil {
		return err
	}
	if err := s.DB.Delete(id); err != nil {
		return fmt.Errorf("failed to delete premium registration %d: %w", id, err)
	}
	return nil
}

// HasActive reports whether the owner currently holds premium. The garage
// profile check-premium endpoint reconciles against this.
func (s *Service[T]) HasActive(ownerID int64) (bool, error) {
	return s.DB.HasActive(ownerID, time.Now())
}
