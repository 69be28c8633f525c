package registry

import (
	"fmt"
	"strings"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type DBLayer interface {
	GetCountryByID(id int64) (*models.Country, error)
	ListCountries() ([]models.Country, error)
	CreateCountry(country *models.Country) error
	UpdateCountry(country *models.Country) error
	DeleteCountry(id int64) error
	CountryClientCount(countryID int64) (int, error)
	CountryGarageCount(countryID int64) (int, error)

	GetSpecializationByID(id int64) (*models.Specialization, error)
	ListSpecializations() ([]models.Specialization, error)
	CreateSpecialization(specialization *models.Specialization) error
	UpdateSpecialization(specialization *models.Specialization) error
	DeleteSpecialization(id int64) error
	SpecializationGarageCount(specializationID int64) (int, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// ---------------- COUNTRIES ----------------

func (s *Service) GetCountry(id int64) (*models.Country, error) {
	return s.DB.GetCountryByID(id)
}

func (s *Service) ListCountries() ([]models.Country, error) {
	return s.DB.ListCountries()
}

func (s *Service) CreateCountry(country *models.Country) (*models.Country, error) {
	if strings.TrimSpace(country.CountryName) == "" {
		return nil, fmt.Errorf("%w: country name is required", apperrors.ErrInvalidInput)
	}
	if err := s.DB.CreateCountry(country); err != nil {
		return nil, fmt.Errorf("create country: %w", err)
	}
	return country, nil
}

func (s *Service) UpdateCountry(id int64, country *models.Country) (*models.Country, error) {
	if country.ID != 0 && country.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	country.ID = id
	if strings.TrimSpace(country.CountryName) == "" {
		return nil, fmt.Errorf("%w: country name is required", apperrors.ErrInvalidInput)
	}
	if _, err := s.DB.GetCountryByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.UpdateCountry(country); err != nil {
		return nil, fmt.Errorf("update country %d: %w", id, err)
	}
	return country, nil
}

// DeleteCountry refuses while any profile still points at the country.
func (s *Service) DeleteCountry(id int64) error {
	if _, err := s.DB.GetCountryByID(id); err != nil {
		return err
	}
	clientCount, err := s.DB.CountryClientCount(id)
	if err != nil {
		return fmt.Errorf("check country %d clients: %w", id, err)
	}
	if clientCount > 0 {
		return fmt.Errorf("%w: country %d is referenced by %d client profiles", apperrors.ErrConflict, id, clientCount)
	}
	garageCount, err := s.DB.CountryGarageCount(id)
	if err != nil {
		return fmt.Errorf("check country %d garages: %w", id, err)
	}
	if garageCount > 0 {
		return fmt.Errorf("%w: country %d is referenced by %d garage profiles", apperrors.ErrConflict, id, garageCount)
	}
	if err := s.DB.DeleteCountry(id); err != nil {
		return fmt.Errorf("delete country %d: %w", id, err)
	}
	s.Logger.LogDatabase("DELETE", "countries", fmt.Sprintf("country %d deleted", id))
	return nil
}

// ---------------- SPECIALIZATIONS ----------------

func (s *Service) GetSpecialization(id int64) (*models.Specialization, error) {
	return s.DB.GetSpecializationByID(id)
}

func (s *Service) ListSpecializations() ([]models.Specialization, error) {
	return s.DB.ListSpecializations()
}

func (s *Service) CreateSpecialization(specialization *models.Specialization) (*models.Specialization, error) {
	if strings.TrimSpace(specialization.SpecializationDesc) == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrInvalidInput)
	}
	if err := s.DB.CreateSpecialization(specialization); err != nil {
		return nil, fmt.Errorf("create specialization: %w", err)
	}
	return specialization, nil
}

func (s *Service) UpdateSpecialization(id int64, specialization *models.Specialization) (*models.Specialization, error) {
	if specialization.ID != 0 && specialization.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	specialization.ID = id
	if strings.TrimSpace(specialization.SpecializationDesc) == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrInvalidInput)
	}
	if _, err := s.DB.GetSpecializationByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.UpdateSpecialization(specialization); err != nil {
		return nil, fmt.Errorf("update specialization %d: %w", id, err)
	}
	return specialization, nil
}

func (s *Service) DeleteSpecialization(id int64) error {
	if _, err := s.DB.GetSpecializationByID(id); err != nil {
		return err
	}
	garageCount, err := s.DB.SpecializationGarageCount(id)
	if err != nil {
		return fmt.Errorf("check specialization %d garages: %w", id, err)
	}
	if garageCount > 0 {
		return fmt.Errorf("%w: specialization %d is referenced by %d garage profiles", apperrors.ErrConflict, id, garageCount)
	}
	if err := s.DB.DeleteSpecialization(id); err != nil {
		return fmt.Errorf("delete specialization %d: %w", id, err)
	}
	return nil
}
