package appointments

import (
	"fmt"
	"time"

	"garage-client-api/internal/apperrors"
	"garage-client-api/internal/appointments/qr"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

type DBLayer interface {
	GetAppointmentByID(id int64) (*models.VehicleAppointment, error)
	ListAppointments() ([]models.VehicleAppointment, error)
	ListAppointmentsByVehicle(vehicleID int64) ([]models.VehicleAppointment, error)
	ListAppointmentsByGarage(garageID int64) ([]models.VehicleAppointment, error)
	ListAppointmentsByClient(clientID int64) ([]models.VehicleAppointment, error)
	ListUpcomingAppointments(now time.Time) ([]models.VehicleAppointment, error)
	ListAppointmentsByDateRange(from, to time.Time) ([]models.VehicleAppointment, error)
	CountAppointments() (int, error)
	CreateAppointment(appointment *models.VehicleAppointment) error
	UpdateAppointment(appointment *models.VehicleAppointment) error
	SetAppointmentDate(id int64, date time.Time) error
	SetAppointmentNote(id int64, note string) error
	DeleteAppointment(id int64) error
	VehicleExists(id int64) (bool, error)
	GarageExists(id int64) (bool, error)
}

type Service struct {
	DB     DBLayer
	QR     *qr.QRGenerator
	Logger *logger.Logger
}

func NewService(db DBLayer, qrGenerator *qr.QRGenerator, log *logger.Logger) *Service {
	return &Service{DB: db, QR: qrGenerator, Logger: log}
}

func (s *Service) Get(id int64) (*models.VehicleAppointment, error) {
	return s.DB.GetAppointmentByID(id)
}

func (s *Service) List() ([]models.VehicleAppointment, error) {
	return s.DB.ListAppointments()
}

func (s *Service) ListByVehicle(vehicleID int64) ([]models.VehicleAppointment, error) {
	return s.DB.ListAppointmentsByVehicle(vehicleID)
}

func (s *Service) ListByGarage(garageID int64) ([]models.VehicleAppointment, error) {
	return s.DB.ListAppointmentsByGarage(garageID)
}

// ListByClient collects the appointments of every vehicle the client owns.
func (s *Service) ListByClient(clientID int64) ([]models.VehicleAppointment, error) {
	return s.DB.ListAppointmentsByClient(clientID)
}

func (s *Service) ListUpcoming() ([]models.VehicleAppointment, error) {
	return s.DB.ListUpcomingAppointments(time.Now())
}

// ListByDate returns the appointments falling on a single calendar day.
func (s *Service) ListByDate(day time.Time) ([]models.VehicleAppointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return s.DB.ListAppointmentsByDateRange(start, end)
}

func (s *Service) ListByDateRange(from, to time.Time) ([]models.VehicleAppointment, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes range start", apperrors.ErrInvalidInput)
	}
	return s.DB.ListAppointmentsByDateRange(from, to)
}

func (s *Service) Count() (int, error) {
	return s.DB.CountAppointments()
}

func (s *Service) Create(appointment *models.VehicleAppointment) (*models.VehicleAppointment, error) {
	if err := s.validate(appointment); err != nil {
		return nil, err
	}
	if err := s.DB.CreateAppointment(appointment); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "vehicle_appointments",
		fmt.Sprintf("appointment %d created for vehicle %d", appointment.ID, appointment.VehicleID))
	return appointment, nil
}

func (s *Service) Update(id int64, appointment *models.VehicleAppointment) (*models.VehicleAppointment, error) {
	if appointment.ID != 0 && appointment.ID != id {
		return nil, fmt.Errorf("%w: body id does not match path id", apperrors.ErrInvalidInput)
	}
	appointment.ID = id
	if err := s.validate(appointment); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetAppointmentByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.UpdateAppointment(appointment); err != nil {
		if _, getErr := s.DB.GetAppointmentByID(id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("update appointment %d: %w", id, err)
	}
	return appointment, nil
}

// Reschedule moves the appointment to a new date, leaving everything else
// untouched.
func (s *Service) Reschedule(id int64, newDate time.Time) (*models.VehicleAppointment, error) {
	if newDate.IsZero() {
		return nil, fmt.Errorf("%w: appointment date is required", apperrors.ErrInvalidInput)
	}
	if _, err := s.DB.GetAppointmentByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.SetAppointmentDate(id, newDate); err != nil {
		return nil, fmt.Errorf("reschedule appointment %d: %w", id, err)
	}
	return s.DB.GetAppointmentByID(id)
}

// UpdateNote replaces the appointment's note. An empty note clears it.
func (s *Service) UpdateNote(id int64, note string) (*models.VehicleAppointment, error) {
	if _, err := s.DB.GetAppointmentByID(id); err != nil {
		return nil, err
	}
	if err := s.DB.SetAppointmentNote(id, note); err != nil {
		return nil, fmt.Errorf("update note of appointment %d: %w", id, err)
	}
	return s.DB.GetAppointmentByID(id)
}

func (s *Service) Delete(id int64) error {
	if _, err := s.DB.GetAppointmentByID(id); err != nil {
		return err
	}
	if err := s.DB.DeleteAppointment(id); err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	return nil
}

// CheckInCode renders the appointment's encrypted check-in QR as a PNG.
func (s *Service) CheckInCode(id int64) ([]byte, error) {
	appointment, err := s.DB.GetAppointmentByID(id)
	if err != nil {
		return nil, err
	}
	png, err := s.QR.GenerateEncryptedQR(*appointment)
	if err != nil {
		return nil, fmt.Errorf("generate check-in code for appointment %d: %w", id, err)
	}
	return png, nil
}

func (s *Service) validate(appointment *models.VehicleAppointment) error {
	if appointment.AppointmentDate.IsZero() {
		return fmt.Errorf("%w: appointment date is required", apperrors.ErrInvalidInput)
	}
	if appointment.VehicleID <= 0 || appointment.GarageID <= 0 {
		return fmt.Errorf("%w: vehicle and garage ids are required", apperrors.ErrInvalidInput)
	}
	vehicleOK, err := s.DB.VehicleExists(appointment.VehicleID)
	if err != nil {
		return fmt.Errorf("check vehicle %d: %w", appointment.VehicleID, err)
	}
	if !vehicleOK {
		return fmt.Errorf("%w: vehicle %d does not exist", apperrors.ErrInvalidInput, appointment.VehicleID)
	}
	garageOK, err := s.DB.GarageExists(appointment.GarageID)
	if err != nil {
		return fmt.Errorf("check garage %d: %w", appointment.GarageID, err)
	}
	if !garageOK {
		return fmt.Errorf("%w: garage %d does not exist", apperrors.ErrInvalidInput, appointment.GarageID)
	}
	return nil
}
