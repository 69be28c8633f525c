package clients

import (
	"fmt"
	"strings"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type DBLayer interface {
	GetClientByID(id int64) (*models.ClientProfile, error)
	ListClients() ([]models.ClientProfile, error)
	GetClientByUserID(userID int64) (*models.ClientProfile, error)
	GetClientByEmail(email string) (*models.ClientProfile, error)
	ListPremiumClients() ([]models.ClientProfile, error)
	CreateClient(client *models.ClientProfile) error
	UpdateClient(client *models.ClientProfile) error
	DeleteClient(id int64) error
	CountryExists(id int64) (bool, error)
	CountPaymentMethods(clientID int64) (int, error)
	CountOrders(clientID int64) (int, error)
	CountVehicles(clientID int64) (int, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

func (s *Service) Get(id int64) (*models.ClientProfile, error) {
	return s.DB.GetClientByID(id)
}

func (s *Service) List() ([]models.ClientProfile, error) {
	return s.DB.ListClients()
}

func (s *Service) GetByUser(userID int64) (*models.ClientProfile, error) {
	return s.DB.GetClientByUserID(userID)
}

func (s *Service) GetByEmail(email string) (*models.ClientProfile, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrInvalidInput)
	}
	return s.DB.GetClientByEmail(email)
}

func (s *Service) ListPremium() ([]models.ClientProfile, error) {
	return s.DB.ListPremiumClients()
}

func (s *Service) Create(client *models.ClientProfile) (*models.ClientProfile, error) {
	if err := s.validate(client); err != nil {
		return nil, err
	}
	if err := s.DB.CreateClient(client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "client_profiles", fmt.Sprintf("client %d created", client.ID))
	return client, nil
}

func (s *Service) Update(id int64, client *models.ClientProfile) (*models.ClientProfile, error) {
	if client.ID != 0 && client.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	client.ID = id
	if err := s.validate(client); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetClientByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.UpdateClient(client); err != nil {
		// The row can disappear between the read and the write.
		if _, getErr := s.DB.GetClientByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}
	return client, nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.DB.GetClientByID(id); err != nil {
		return err
	}
	dependents := []struct {
		name  string
		count func(int64) (int, error)
	}{
		{"payment methods", s.DB.CountPaymentMethods},
		{"payment orders", s.DB.CountOrders},
		{"vehicles", s.DB.CountVehicles},
	}
	for _, dep := range dependents {
		n, err := dep.count(id)
		if err != nil {
			return fmt.Errorf("check client %d dependents: %w", id, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: client %d has %d dependent %s", apperrors.ErrConflict, id, n, dep.name)
		}
	}
	if err := s.DB.DeleteClient(id); err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	s.Logger.LogDatabase("DELETE", "client_profiles", fmt.Sprintf("client %d deleted", id))
	return nil
}

func (s *Service) validate(client *models.ClientProfile) error {
	if strings.TrimSpace(client.FirstName) == "" || strings.TrimSpace(client.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", apperrors.ErrInvalidInput)
	}
	if client.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if client.CountryID != 0 {
		ok, err := s.DB.CountryExists(client.CountryID)
		if err != nil {
			return fmt.Errorf("check country %d: %w", client.CountryID, err)
		}
		if !ok {
			return fmt.Errorf("%w: country %d does not exist", apperrors.ErrInvalidInput, client.CountryID)
		}
	}
	return nil
}
