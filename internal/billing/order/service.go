package order

import (
	"errors"
	"fmt"
	"time"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/utils"
)

type DBLayer[T models.PaymentOrder] interface {
	Insert(order T) error
	GetByID(id int64) (T, error)
	GetByOrderNumber(orderNumber string) (T, error)
	List() ([]T, error)
	ListByOwner(ownerID int64) ([]T, error)
	ListByStatus(status string) ([]T, error)
	ListByMethod(methodID int64) ([]T, error)
	Update(order T) error
	Delete(id int64) error
}

// RefResolver answers the existence checks run before an order is accepted.
type RefResolver interface {
	OwnerExists(id int64) (bool, error)
	CurrencyExists(id int64) (bool, error)
	OfferExists(id int64) (bool, error)
	MethodExists(id int64) (bool, error)
}

// Settler schedules the delayed settlement of an order.
type Settler interface {
	Schedule(orderID int64)
}

// Service drives the order lifecycle for one owner family. Orders are
// inserted Pending, settlement runs in the background after a fixed delay,
// and an administrative override can force any status at any time.
type Service[T models.PaymentOrder] struct {
	DB      DBLayer[T]
	Refs    RefResolver
	Settler Settler
	Events  *EventPublisher
	Owner   models.OwnerKind
	Prefix  string
	Logger  *logger.Logger
}

func NewService[T models.PaymentOrder](db DBLayer[T], refs RefResolver, events *EventPublisher, owner models.OwnerKind, prefix string, log *logger.Logger) *Service[T] {
	return &Service[T]{
		DB:     db,
		Refs:   refs,
		Events: events,
		Owner:  owner,
		Prefix: prefix,
		Logger: log,
	}
}

// SetSettler wires the settlement scheduler. Separate from the constructor
// because the scheduler needs the service's Settle as its callback.
func (s *Service[T]) SetSettler(settler Settler) {
	s.Settler = settler
}

func (s *Service[T]) List() ([]T, error) {
	return s.DB.List()
}

func (s *Service[T]) Get(id int64) (T, error) {
	return s.DB.GetByID(id)
}

func (s *Service[T]) GetByOrderNumber(orderNumber string) (T, error) {
	return s.DB.GetByOrderNumber(orderNumber)
}

func (s *Service[T]) ListByOwner(ownerID int64) ([]T, error) {
	return s.DB.ListByOwner(ownerID)
}

func (s *Service[T]) ListByStatus(status string) ([]T, error) {
	return s.DB.ListByStatus(status)
}

func (s *Service[T]) ListByMethod(methodID int64) ([]T, error) {
	return s.DB.ListByMethod(methodID)
}

// Create validates the order's references, persists it Pending and schedules
// settlement. The call returns as soon as the row is durable; the status
// transition happens in the background.
func (s *Service[T]) Create(order T) error {
	if err := s.checkRefs(order); err != nil {
		return err
	}

	order.SetStatusValue(models.OrderStatusPending)
	order.MarkCreated(time.Now())
	order.SetOrderNo(utils.GenerateOrderNumber(s.Prefix))

	if err := s.DB.Insert(order); err != nil {
		return fmt.Errorf("failed to create payment order: %w", err)
	}

	s.Logger.LogOrder("create", order.OrderNo(), fmt.Sprintf("%s %d, amount %.2f, pending settlement",
		s.Owner, order.GetOwnerID(), order.AmountValue()))
	s.Events.OrderCreated(s.Owner, order)

	if s.Settler != nil {
		s.Settler.Schedule(order.GetID())
	}
	return nil
}

// Settle finishes a pending order. It is idempotent: anything already past
// Pending is left untouched, and an order deleted before the delay elapsed
// is skipped. A vanished payment method fails the order with the
// invalid-method status; a persistence error while processing marks the
// order Failed as there is no caller left to report to.
func (s *Service[T]) Settle(orderID int64) error {
	order, err := s.DB.GetByID(orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.Logger.LogSettlement(fmt.Sprintf("order %d", orderID), "skipped, order no longer exists")
			return nil
		}
		return fmt.Errorf("settlement: order %d not loadable: %w", orderID, err)
	}

	if order.StatusValue() != models.OrderStatusPending {
		s.Logger.LogSettlement(order.OrderNo(), fmt.Sprintf("skipped, status already %q", order.StatusValue()))
		return nil
	}

	methodOK, err := s.Refs.MethodExists(order.MethodID())
	if err != nil {
		return fmt.Errorf("settlement: method check for order %s: %w", order.OrderNo(), err)
	}
	if !methodOK {
		order.SetStatusValue(models.OrderStatusInvalidMethod)
		if err := s.DB.Update(order); err != nil {
			return fmt.Errorf("settlement: failed to fail order %s: %w", order.OrderNo(), err)
		}
		s.Logger.LogSettlement(order.OrderNo(), fmt.Sprintf("payment method %d gone, order failed", order.MethodID()))
		s.Events.OrderFailed(s.Owner, order)
		return nil
	}

	order.SetStatusValue(models.OrderStatusProcessed)
	order.MarkProcessed(time.Now())
	if err := s.DB.Update(order); err != nil {
		s.Logger.Error("SETTLEMENT", fmt.Sprintf("failed to process order %s: %v", order.OrderNo(), err))
		order.SetStatusValue(models.OrderStatusFailed)
		order.ClearProcessed()
		if failErr := s.DB.Update(order); failErr != nil {
			s.Logger.Error("SETTLEMENT", fmt.Sprintf("failed to mark order %s failed: %v", order.OrderNo(), failErr))
		}
		s.Events.OrderFailed(s.Owner, order)
		return nil
	}

	s.Logger.LogSettlement(order.OrderNo(), "processed")
	s.Events.OrderProcessed(s.Owner, order)
	return nil
}

// Delete removes the order. A settlement already scheduled for it becomes a
// no-op when the delay fires.
func (s *Service[T]) Delete(id int64) error {
	order, err := s.DB.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.Delete(id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", order.OrderNo(), err)
	}
	s.Logger.LogOrder("delete", order.OrderNo(), fmt.Sprintf("%s %d", s.Owner, order.GetOwnerID()))
	return nil
}

// UpdateStatus is the administrative override. It writes the given status
// directly, with no terminal-state guard, and stamps ProcessedDate when the
// new status is Processed.
func (s *Service[T]) UpdateStatus(id int64, status string) (T, error) {
	var zero T
	if !validStatus(status) {
		return zero, fmt.Errorf("%w: unknown order status %q", apperrors.ErrInvalidInput, status)
	}

	order, err := s.DB.GetByID(id)
	if err != nil {
		return zero, err
	}

	order.SetStatusValue(status)
	if status == models.OrderStatusProcessed {
		order.MarkProcessed(time.Now())
	}

	if err := s.DB.Update(order); err != nil {
		return zero, fmt.Errorf("failed to update status of order %d: %w", id, err)
	}

	s.Logger.LogOrder("status-override", order.OrderNo(), fmt.Sprintf("status set to %q", status))
	switch status {
	case models.OrderStatusProcessed:
		s.Events.OrderProcessed(s.Owner, order)
	case models.OrderStatusFailed, models.OrderStatusInvalidMethod:
		s.Events.OrderFailed(s.Owner, order)
	}
	return order, nil
}

func (s *Service[T]) checkRefs(order T) error {
	checks := []struct {
		name   string
		id     int64
		exists func(int64) (bool, error)
	}{
		{string(s.Owner), order.GetOwnerID(), s.Refs.OwnerExists},
		{"currency", order.CurrencyRef(), s.Refs.CurrencyExists},
		{"premium offer", order.OfferRef(), s.Refs.OfferExists},
		{"payment method", order.MethodID(), s.Refs.MethodExists},
	}
	for _, check := range checks {
		ok, err := check.exists(check.id)
		if err != nil {
			return fmt.Errorf("failed to verify %s %d: %w", check.name, check.id, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s %d does not exist", apperrors.ErrInvalidInput, check.name, check.id)
		}
	}
	return nil
}

func validStatus(status string) bool {
	return status == models.OrderStatusPending || models.TerminalStatus(status)
}
