package paymentmethod

import (
	"errors"
	"fmt"
	"time"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

// DBLayer is the store surface the service needs. T is *ClientPaymentMethod
// or *GaragePaymentMethod.
type DBLayer[T models.CardMethod] interface {
	Insert(method T) error
	GetByID(id int64) (T, error)
	List() ([]T, error)
	ListByOwner(ownerID int64) ([]T, error)
	Update(method T) error
	Delete(id int64) error
	ClearPrimary(ownerID int64, exceptID int64) error
	CountByOwner(ownerID int64) (int, error)
	FirstByOwner(ownerID int64) (T, error)
}

// Service maintains the one-primary-per-owner rule for payment methods. The
// rule is enforced at this layer and holds for any serial sequence of calls;
// concurrent writers on the same owner can still race it.
type Service[T models.CardMethod] struct {
	DB     DBLayer[T]
	Owner  models.OwnerKind
	Logger *logger.Logger
}

func NewService[T models.CardMethod](db DBLayer[T], owner models.OwnerKind, log *logger.Logger) *Service[T] {
	return &Service[T]{DB: db, Owner: owner, Logger: log}
}

func (s *Service[T]) List() ([]T, error) {
	methods, err := s.DB.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s payment methods: %w", s.Owner, err)
	}
	for _, m := range methods {
		m.MaskCard()
	}
	return methods, nil
}

func (s *Service[T]) Get(id int64) (T, error) {
	method, err := s.DB.GetByID(id)
	if err != nil {
		var zero T
		return zero, err
	}
	method.MaskCard()
	return method, nil
}

func (s *Service[T]) ListByOwner(ownerID int64) ([]T, error) {
	methods, err := s.DB.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods for %s %d: %w", s.Owner, ownerID, err)
	}
	for _, m := range methods {
		m.MaskCard()
	}
	return methods, nil
}

func (s *Service[T]) GetPrimary(ownerID int64) (T, error) {
	var zero T
	methods, err := s.DB.ListByOwner(ownerID)
	if err != nil {
		return zero, fmt.Errorf("failed to load payment methods for %s %d: %w", s.Owner, ownerID, err)
	}
	for _, m := range methods {
		if m.PrimaryFlag() {
			m.MaskCard()
			return m, nil
		}
	}
	return zero, apperrors.ErrNotFound
}

// Create stamps the method and inserts it. The owner's first method becomes
// primary; later ones start non-primary.
func (s *Service[T]) Create(method T) error {
	if method.GetOwnerID() <= 0 {
		return fmt.Errorf("%w: %s id is required", apperrors.ErrInvalidInput, s.Owner)
	}

	count, err := s.DB.CountByOwner(method.GetOwnerID())
	if err != nil {
		return fmt.Errorf("failed to count payment methods for %s %d: %w", s.Owner, method.GetOwnerID(), err)
	}
	method.SetPrimary(count == 0)
	method.Stamp(time.Now())

	if err := s.DB.Insert(method); err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	s.Logger.Info("BILLING", fmt.Sprintf("created payment method %d for %s %d (primary=%v)",
		method.GetID(), s.Owner, method.GetOwnerID(), method.PrimaryFlag()))
	return nil
}

// Update replaces the editable fields of the method. The primary flag is not
// editable here, only through SetPrimary.
func (s *Service[T]) Update(id int64, method T) error {
	if method.GetID() != id {
		return fmt.Errorf("%w: payment method id %d does not match path id %d",
			apperrors.ErrInvalidInput, method.GetID(), id)
	}

	current, err := s.DB.GetByID(id)
	if err != nil {
		return err
	}

	method.SetPrimary(current.PrimaryFlag())
	method.Touch(time.Now())

	if err := s.DB.Update(method); err != nil {
		// The row may have been deleted between the read and the write.
		if _, checkErr := s.DB.GetByID(id); errors.Is(checkErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update payment method %d: %w", id, err)
	}
	return nil
}

// SetPrimary promotes the method and demotes every sibling of the same owner.
func (s *Service[T]) SetPrimary(id int64) error {
	method, err := s.DB.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.ClearPrimary(method.GetOwnerID(), id); err != nil {
		return fmt.Errorf("failed to demote payment methods for %s %d: %w", s.Owner, method.GetOwnerID(), err)
	}

	method.SetPrimary(true)
	method.Touch(time.Now())
	if err := s.DB.Update(method); err != nil {
		return fmt.Errorf("failed to promote payment method %d: %w", id, err)
	}
	s.Logger.Info("BILLING", fmt.Sprintf("payment method %d is now primary for %s %d",
		id, s.Owner, method.GetOwnerID()))
	return nil
}

// Delete removes the method. When the deleted method was primary, the
// remaining sibling with the lowest id is promoted so the owner keeps a
// primary method.
func (s *Service[T]) Delete(id int64) error {
	method, err := s.DB.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.Delete(id); err != nil {
		return fmt.Errorf("failed to delete payment method %d: %w", id, err)
	}

	if !method.PrimaryFlag() {
		return nil
	}

	next, err := s.DB.FirstByOwner(method.GetOwnerID())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to pick replacement primary for %s %d: %w", s.Owner, method.GetOwnerID(), err)
	}

	next.SetPrimary(true)
	next.Touch(time.Now())
	if err := s.DB.Update(next); err != nil {
		return fmt.Errorf("failed to promote payment method %d after delete: %w", next.GetID(), err)
	}
	s.Logger.Info("BILLING", fmt.Sprintf("payment method %d promoted to primary for %s %d after delete of %d",
		next.GetID(), s.Owner, method.GetOwnerID(), id))
	return nil
}
