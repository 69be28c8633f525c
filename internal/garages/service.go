package garages

import (
	"fmt"
	"strings"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type DBLayer interface {
	GetGarageByID(id int64) (*models.GarageProfile, error)
	ListGarages() ([]models.GarageProfile, error)
	GetGarageByUserID(userID int64) (*models.GarageProfile, error)
	ListPremiumGarages() ([]models.GarageProfile, error)
	ListGaragesByCountry(countryID int64) ([]models.GarageProfile, error)
	ListGaragesBySpecialization(specializationID int64) ([]models.GarageProfile, error)
	SearchGarages(term string) ([]models.GarageProfile, error)
	CreateGarage(garage *models.GarageProfile) error
	UpdateGarage(garage *models.GarageProfile) error
	SetPremiumStatus(id int64, isPremium bool) error
	DeleteGarage(id int64) error
	EmailExists(email string, exceptID int64) (bool, error)
	CountryExists(id int64) (bool, error)
	SpecializationExists(id int64) (bool, error)
	CountPaymentMethods(garageID int64) (int, error)
	CountOrders(garageID int64) (int, error)
	CountAppointments(garageID int64) (int, error)
}

// PremiumChecker answers whether a garage holds an active unexpired premium
// registration. Backed by the billing premium service.
type PremiumChecker interface {
	HasActive(ownerID int64) (bool, error)
}

type Service struct {
	DB      DBLayer
	Premium PremiumChecker
	Logger  *logger.Logger
}

func NewService(db DBLayer, premium PremiumChecker, log *logger.Logger) *Service {
	return &Service{DB: db, Premium: premium, Logger: log}
}

func (s *Service) Get(id int64) (*models.GarageProfile, error) {
	return s.DB.GetGarageByID(id)
}

func (s *Service) List() ([]models.GarageProfile, error) {
	return s.DB.ListGarages()
}

func (s *Service) GetByUser(userID int64) (*models.GarageProfile, error) {
	return s.DB.GetGarageByUserID(userID)
}

func (s *Service) ListPremium() ([]models.GarageProfile, error) {
	return s.DB.ListPremiumGarages()
}

func (s *Service) ListByCountry(countryID int64) ([]models.GarageProfile, error) {
	return s.DB.ListGaragesByCountry(countryID)
}

func (s *Service) ListBySpecialization(specializationID int64) ([]models.GarageProfile, error) {
	return s.DB.ListGaragesBySpecialization(specializationID)
}

func (s *Service) Search(term string) ([]models.GarageProfile, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: search term is required", apperrors.ErrInvalidInput)
	}
	return s.DB.SearchGarages(term)
}

func (s *Service) Create(garage *models.GarageProfile) (*models.GarageProfile, error) {
	if err := s.validate(garage); err != nil {
		return nil, err
	}
	if err := s.DB.CreateGarage(garage); err != nil {
		return nil, fmt.Errorf("create garage: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "garage_profiles", fmt.Sprintf("garage %d created", garage.ID))
	return garage, nil
}

func (s *Service) Update(id int64, garage *models.GarageProfile) (*models.GarageProfile, error) {
	if garage.ID != 0 && garage.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	garage.ID = id
	if err := s.validate(garage); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetGarageByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.UpdateGarage(garage); err != nil {
		if _, getErr := s.DB.GetGarageByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("update garage %d: %w", id, err)
	}
	return garage, nil
}

// SetPremiumStatus is the direct admin patch. CheckPremium reconciles the
// same flag against the billing registrations instead.
func (s *Service) SetPremiumStatus(id int64, isPremium bool) (*models.GarageProfile, error) {
	if _, err := s.DB.GetGarageByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.SetPremiumStatus(id, isPremium); err != nil {
		return nil, fmt.Errorf("set premium status for garage %d: %w", id, err)
	}
	return s.DB.GetGarageByID(id)
}

// CheckPremium looks up whether the garage holds an active unexpired premium
// registration and rewrites the profile flag to match.
func (s *Service) CheckPremium(id int64) (*models.GarageProfile, error) {
	garage, err := s.DB.GetGarageByID(id)
	if err != nil {
		return nil, err
	}
	active, err := s.Premium.HasActive(id)
	if err != nil {
		return nil, fmt.Errorf("check premium registrations for garage %d: %w", id, err)
	}
	if garage.IsPremium == active {
		return garage, nil
	}
	if err := s.DB.SetPremiumStatus(id, active); err != nil {
		return nil, fmt.Errorf("reconcile premium status for garage %d: %w", id, err)
	}
	s.Logger.LogDatabase("UPDATE", "garage_profiles",
		fmt.Sprintf("garage %d premium flag reconciled to %t", id, active))
	garage.IsPremium = active
	return garage, nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.DB.GetGarageByID(id); err != nil {
		return err
	}
	dependents := []struct {
		name  string
		count func(int64) (int, error)
	}{
		{"payment methods", s.DB.CountPaymentMethods},
		{"payment orders", s.DB.CountOrders},
		{"appointments", s.DB.CountAppointments},
	}
	for _, dep := range dependents {
		n, err := dep.count(id)
		if err != nil {
			return fmt.Errorf("check garage %d dependents: %w", id, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: garage %d has %d dependent %s", apperrors.ErrConflict, id, n, dep.name)
		}
	}
	if err := s.DB.DeleteGarage(id); err != nil {
		return fmt.Errorf("delete garage %d: %w", id, err)
	}
	s.Logger.LogDatabase("DELETE", "garage_profiles", fmt.Sprintf("garage %d deleted", id))
	return nil
}

func (s *Service) validate(garage *models.GarageProfile) error {
	if strings.TrimSpace(garage.GarageName) == "" {
		return fmt.Errorf("%w: garage name is required", apperrors.ErrInvalidInput)
	}
	if garage.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if garage.Email != "" {
		taken, err := s.DB.EmailExists(garage.Email, garage.ID)
		if err != nil {
			return fmt.Errorf("check garage email: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: email %s is already registered", apperrors.ErrConflict, garage.Email)
		}
	}
	if garage.CountryID != 0 {
		ok, err := s.DB.CountryExists(garage.CountryID)
		if err != nil {
			return fmt.Errorf("check country %d: %w", garage.CountryID, err)
		}
		if !ok {
			return fmt.Errorf("%w: country %d does not exist", apperrors.ErrInvalidInput, garage.CountryID)
		}
	}
	if garage.SpecializationID != 0 {
		ok, err := s.DB.SpecializationExists(garage.SpecializationID)
		if err != nil {
			return fmt.Errorf("check specialization %d: %w", garage.SpecializationID, err)
		}
		if !ok {
			return fmt.Errorf("%w: specialization %d does not exist", apperrors.ErrInvalidInput, garage.SpecializationID)
		}
	}
	return nil
}
