package catalog

import (
	"errors"
	"fmt"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type DBLayer interface {
	ListCurrencies() ([]models.Currency, error)
	GetCurrency(id int64) (*models.Currency, error)
	CreateCurrency(currency *models.Currency) error
	UpdateCurrency(currency *models.Currency) error
	DeleteCurrency(id int64) error
	CurrencyOfferCount(id int64) (int, error)
	CurrencyOrderCount(id int64) (int, error)

	ListPaymentTypes() ([]models.PaymentType, error)
	GetPaymentType(id int64) (*models.PaymentType, error)
	CreatePaymentType(paymentType *models.PaymentType) error
	UpdatePaymentType(paymentType *models.PaymentType) error
	DeletePaymentType(id int64) error
	PaymentTypeDescExists(desc string, exceptID int64) (bool, error)

	ListOffers() ([]models.PremiumOffer, error)
	GetOffer(id int64) (*models.PremiumOffer, error)
	CreateOffer(offer *models.PremiumOffer) error
	UpdateOffer(offer *models.PremiumOffer) error
	DeleteOffer(id int64) error
	ListOffersByUserType(userTypeID int64) ([]models.PremiumOffer, error)
	ListOffersByCurrency(currencyID int64) ([]models.PremiumOffer, error)
	ListActiveOffers() ([]models.PremiumOffer, error)
	OfferOrderCount(id int64) (int, error)
	PopularOffers(limit int) ([]models.OfferPopularity, error)
}

// Service manages the billing setup catalogs. Deletes are blocked with a
// Conflict naming the dependent collection while rows still reference the
// catalog entry.
type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// ---------------- CURRENCIES ----------------

func (s *Service) ListCurrencies() ([]models.Currency, error) {
	return s.DB.ListCurrencies()
}

func (s *Service) GetCurrency(id int64) (*models.Currency, error) {
	return s.DB.GetCurrency(id)
}

func (s *Service) CreateCurrency(currency *models.Currency) error {
	if currency.CurrDesc == "" {
		return fmt.Errorf("%w: currency description is required", apperrors.ErrInvalidInput)
	}
	return s.DB.CreateCurrency(currency)
}

func (s *Service) UpdateCurrency(id int64, currency *models.Currency) error {
	if currency.ID != id {
		return fmt.Errorf("%w: currency id %d does not match path id %d", apperrors.ErrInvalidInput, currency.ID, id)
	}
	if _, err := s.DB.GetCurrency(id); err != nil {
		return err
	}
	return s.DB.UpdateCurrency(currency)
}

func (s *Service) DeleteCurrency(id int64) error {
	if _, err := s.DB.GetCurrency(id); err != nil {
		return err
	}

	offerCount, err := s.DB.CurrencyOfferCount(id)
	if err != nil {
		return fmt.Errorf("failed to check offers for currency %d: %w", id, err)
	}
	if offerCount > 0 {
		return fmt.Errorf("%w: currency %d is referenced by %d premium offers", apperrors.ErrConflict, id, offerCount)
	}

	orderCount, err := s.DB.CurrencyOrderCount(id)
	if err != nil {
		return fmt.Errorf("failed to check orders for currency %d: %w", id, err)
	}
	if orderCount > 0 {
		return fmt.Errorf("%w: currency %d is referenced by %d payment orders", apperrors.ErrConflict, id, orderCount)
	}

	return s.DB.DeleteCurrency(id)
}

// Dependents returns what still references the currency, for the dependent
// collections lookup endpoint.
func (s *Service) CurrencyDependents(id int64) (map[string]int, error) {
	if _, err := s.DB.GetCurrency(id); err != nil {
		return nil, err
	}
	offerCount, err := s.DB.CurrencyOfferCount(id)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.DB.CurrencyOrderCount(id)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		"premium_offers": offerCount,
		"payment_orders": orderCount,
	}, nil
}

// ---------------- PAYMENT TYPES ----------------

func (s *Service) ListPaymentTypes() ([]models.PaymentType, error) {
	return s.DB.ListPaymentTypes()
}

func (s *Service) GetPaymentType(id int64) (*models.PaymentType, error) {
	return s.DB.GetPaymentType(id)
}

func (s *Service) CreatePaymentType(paymentType *models.PaymentType) error {
	if paymentType.PaymentTypeDesc == "" {
		return fmt.Errorf("%w: payment type description is required", apperrors.ErrInvalidInput)
	}
	exists, err := s.DB.PaymentTypeDescExists(paymentType.PaymentTypeDesc, 0)
	if err != nil {
		return fmt.Errorf("failed to check payment type description: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: payment type %q already exists", apperrors.ErrConflict, paymentType.PaymentTypeDesc)
	}
	return s.DB.CreatePaymentType(paymentType)
}

func (s *Service) UpdatePaymentType(id int64, paymentType *models.PaymentType) error {
	if paymentType.ID != id {
		return fmt.Errorf("%w: payment type id %d does not match path id %d", apperrors.ErrInvalidInput, paymentType.ID, id)
	}
	if _, err := s.DB.GetPaymentType(id); err != nil {
		return err
	}
	exists, err := s.DB.PaymentTypeDescExists(paymentType.PaymentTypeDesc, id)
	if err != nil {
		return fmt.Errorf("failed to check payment type description: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: payment type %q already exists", apperrors.ErrConflict, paymentType.PaymentTypeDesc)
	}
	return s.DB.UpdatePaymentType(paymentType)
}

func (s *Service) DeletePaymentType(id int64) error {
	if _, err := s.DB.GetPaymentType(id); err != nil {
		return err
	}
	return s.DB.DeletePaymentType(id)
}

// ---------------- PREMIUM OFFERS ----------------

func (s *Service) ListOffers() ([]models.PremiumOffer, error) {
	return s.DB.ListOffers()
}

func (s *Service) GetOffer(id int64) (*models.PremiumOffer, error) {
	return s.DB.GetOffer(id)
}

func (s *Service) CreateOffer(offer *models.PremiumOffer) error {
	if offer.PremiumDesc == "" {
		return fmt.Errorf("%w: offer description is required", apperrors.ErrInvalidInput)
	}
	if offer.PremiumCost < 0 {
		return fmt.Errorf("%w: offer cost cannot be negative", apperrors.ErrInvalidInput)
	}
	if _, err := s.DB.GetCurrency(offer.CurrencyID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: currency %d does not exist", apperrors.ErrInvalidInput, offer.CurrencyID)
		}
		return err
	}
	return s.DB.CreateOffer(offer)
}

func (s *Service) UpdateOffer(id int64, offer *models.PremiumOffer) error {
	if offer.ID != id {
		return fmt.Errorf("%w: offer id %d does not match path id %d", apperrors.ErrInvalidInput, offer.ID, id)
	}
	if _, err := s.DB.GetOffer(id); err != nil {
		return err
	}
	if _, err := s.DB.GetCurrency(offer.CurrencyID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: currency %d does not exist", apperrors.ErrInvalidInput, offer.CurrencyID)
		}
		return err
	}
	return s.DB.UpdateOffer(offer)
}

func (s *Service) DeleteOffer(id int64) error {
	if _, err := s.DB.GetOffer(id); err != nil {
		return err
	}
	orderCount, err := s.DB.OfferOrderCount(id)
	if err != nil {
		return fmt.Errorf("failed to check orders for offer %d: %w", id, err)
	}
	if orderCount > 0 {
		return fmt.Errorf("%w: offer %d is referenced by %d payment orders", apperrors.ErrConflict, id, orderCount)
	}
	return s.DB.DeleteOffer(id)
}

func (s *Service) ListOffersByUserType(userTypeID int64) ([]models.PremiumOffer, error) {
	return s.DB.ListOffersByUserType(userTypeID)
}

func (s *Service) ListOffersByCurrency(currencyID int64) ([]models.PremiumOffer, error) {
	return s.DB.ListOffersByCurrency(currencyID)
}

func (s *Service) ListActiveOffers() ([]models.PremiumOffer, error) {
	return s.DB.ListActiveOffers()
}

func (s *Service) PopularOffers(limit int) ([]models.OfferPopularity, error) {
	return s.DB.PopularOffers(limit)
}
