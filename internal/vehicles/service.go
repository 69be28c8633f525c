package vehicles

import (
	"fmt"
	"strings"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type DBLayer interface {
	GetVehicleByID(id int64) (*models.Vehicle, error)
	ListVehicles() ([]models.Vehicle, error)
	ListVehiclesByClient(clientID int64) ([]models.Vehicle, error)
	GetVehicleByLicensePlate(plate string) (*models.Vehicle, error)
	ListActiveVehicles() ([]models.Vehicle, error)
	ListVehiclesByManufacturer(manufacturerID int64) ([]models.Vehicle, error)
	SearchVehicles(term string) ([]models.Vehicle, error)
	CountVehicles() (int, error)
	CreateVehicle(vehicle *models.Vehicle) error
	UpdateVehicle(vehicle *models.Vehicle) error
	DeleteVehicle(id int64) error
	LicensePlateExists(plate string, exceptID int64) (bool, error)
	ClientExists(id int64) (bool, error)
	CountVehicleAppointments(vehicleID int64) (int, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

func (s *Service) Get(id int64) (*models.Vehicle, error) {
	return s.DB.GetVehicleByID(id)
}

func (s *Service) List() ([]models.Vehicle, error) {
	return s.DB.ListVehicles()
}

func (s *Service) ListByClient(clientID int64) ([]models.Vehicle, error) {
	return s.DB.ListVehiclesByClient(clientID)
}

func (s *Service) GetByLicensePlate(plate string) (*models.Vehicle, error) {
	if strings.TrimSpace(plate) == "" {
		return nil, fmt.Errorf("%w: license plate is required", apperrors.ErrInvalidInput)
	}
	return s.DB.GetVehicleByLicensePlate(plate)
}

func (s *Service) ListActive() ([]models.Vehicle, error) {
	return s.DB.ListActiveVehicles()
}

func (s *Service) ListByManufacturer(manufacturerID int64) ([]models.Vehicle, error) {
	return s.DB.ListVehiclesByManufacturer(manufacturerID)
}

func (s *Service) Search(term string) ([]models.Vehicle, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: search term is required", apperrors.ErrInvalidInput)
	}
	return s.DB.SearchVehicles(term)
}

func (s *Service) Count() (int, error) {
	return s.DB.CountVehicles()
}

func (s *Service) Create(vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := s.validate(vehicle); err != nil {
		return nil, err
	}
	if err := s.DB.CreateVehicle(vehicle); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "vehicles", fmt.Sprintf("vehicle %d created", vehicle.ID))
	return vehicle, nil
}

func (s *Service) Update(id int64, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if vehicle.ID != 0 && vehicle.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	vehicle.ID = id
	if err := s.validate(vehicle); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetVehicleByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.UpdateVehicle(vehicle); err != nil {
		if _, getErr := s.DB.GetVehicleByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("update vehicle %d: %w", id, err)
	}
	return vehicle, nil
}

// Delete refuses while appointments still reference the vehicle.
func (s *Service) Delete(id int64) error {
	if _, err := s.DB.GetVehicleByID(id); err != nil {
		return err
	}
	appointments, err := s.DB.CountVehicleAppointments(id)
	if err != nil {
		return fmt.Errorf("check vehicle %d appointments: %w", id, err)
	}
	if appointments > 0 {
		return fmt.Errorf("%w: vehicle %d has %d appointments", apperrors.ErrConflict, id, appointments)
	}
	if err := s.DB.DeleteVehicle(id); err != nil {
		return fmt.Errorf("delete vehicle %d: %w", id, err)
	}
	s.Logger.LogDatabase("DELETE", "vehicles", fmt.Sprintf("vehicle %d deleted", id))
	return nil
}

func (s *Service) validate(vehicle *models.Vehicle) error {
	if strings.TrimSpace(vehicle.Model) == "" {
		return fmt.Errorf("%w: vehicle model is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(vehicle.LicensePlate) == "" {
		return fmt.Errorf("%w: license plate is required", apperrors.ErrInvalidInput)
	}
	if vehicle.ClientID <= 0 {
		return fmt.Errorf("%w: client id is required", apperrors.ErrInvalidInput)
	}
	ok, err := s.DB.ClientExists(vehicle.ClientID)
	if err != nil {
		return fmt.Errorf("check client %d: %w", vehicle.ClientID, err)
	}
	if !ok {
		return fmt.Errorf("%w: client %d does not exist", apperrors.ErrInvalidInput, vehicle.ClientID)
	}
	taken, err := s.DB.LicensePlateExists(vehicle.LicensePlate, vehicle.ID)
	if err != nil {
		return fmt.Errorf("check license plate: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: license plate %s is already registered", apperrors.ErrConflict, vehicle.LicensePlate)
	}
	return nil
}
