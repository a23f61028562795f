package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

// Notifier receives the fan-out call once an appointment row has committed.
type Notifier interface {
	NotifyAppointmentCreated(ctx context.Context, apt *model.Appointment)
}

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	users    repository.UserRepository
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	notifier Notifier,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// Create books an appointment. The row is persisted first; the patient
// link is then resolved from patient_id when given, otherwise
// resolved-or-created from the free-text patient_name, and a failed
// resolution leaves the link null instead of losing the booking.
// Notification fan-out runs only here, never on update.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req.PatientID == nil && req.PatientName == "" {
		return nil, apperrors.Validation(map[string]string{
			"patient_name": "patient_name is required when patient_id is not set",
		})
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, apperrors.Validation(map[string]string{"date": err.Error()})
	}
	if err := validateTime(req.Time); err != nil {
		return nil, apperrors.Validation(map[string]string{"time": err.Error()})
	}

	status := model.AppointmentStatusPending
	if req.Status != "" {
		status = model.AppointmentStatus(req.Status)
		if !status.Valid() {
			return nil, apperrors.Validation(map[string]string{"status": fmt.Sprintf("invalid status %q", req.Status)})
		}
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 30
	}

	apt := &model.Appointment{
		PatientName:     req.PatientName,
		Date:            date,
		Time:            req.Time,
		DurationMinutes: duration,
		Status:          status,
		RoomID:          req.RoomID,
		TypeID:          req.TypeID,
		Phone:           req.Phone,
		Email:           req.Email,
		Notes:           req.Notes,
	}

	if req.DoctorID != nil {
		if err := s.requirePhysician(ctx, *req.DoctorID); err != nil {
			return nil, err
		}
		apt.DoctorID = req.DoctorID
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.linkPatient(ctx, apt, req)

	if s.notifier != nil {
		s.notifier.NotifyAppointmentCreated(ctx, apt)
	}
	return apt, nil
}

// linkPatient attaches the patient record after the booking has committed.
// Resolution failures are logged; the booking keeps a null link.
func (s *Service) linkPatient(ctx context.Context, apt *model.Appointment, req *model.CreateAppointmentRequest) {
	var (
		patient *model.Patient
		err     error
	)
	if req.PatientID != nil {
		patient, err = s.patients.Get(ctx, *req.PatientID)
	} else {
		patient, err = s.resolvePatient(ctx, req)
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", apt.ID.String()).
			Msg("failed to resolve patient for booking")
		return
	}
	if patient == nil {
		return
	}

	apt.PatientID = &patient.ID
	if apt.PatientName == "" {
		apt.PatientName = patient.FullName()
	}
	if err := s.repo.Update(ctx, apt); err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", apt.ID.String()).
			Msg("failed to link patient to booking")
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// Update applies a partial mutation. It never re-notifies.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, apperrors.Validation(map[string]string{"date": err.Error()})
		}
		apt.Date = date
	}
	if req.Time != nil {
		if err := validateTime(*req.Time); err != nil {
			return nil, apperrors.Validation(map[string]string{"time": err.Error()})
		}
		apt.Time = *req.Time
	}
	if req.DurationMinutes != nil && *req.DurationMinutes > 0 {
		apt.DurationMinutes = *req.DurationMinutes
	}
	if req.Status != nil {
		status := model.AppointmentStatus(*req.Status)
		if !status.Valid() {
			return nil, apperrors.Validation(map[string]string{"status": fmt.Sprintf("invalid status %q", *req.Status)})
		}
		apt.Status = status
	}
	if req.RoomID != nil {
		apt.RoomID = req.RoomID
	}
	if req.TypeID != nil {
		apt.TypeID = req.TypeID
	}
	if req.DoctorID != nil {
		if err := s.requirePhysician(ctx, *req.DoctorID); err != nil {
			return nil, err
		}
		apt.DoctorID = req.DoctorID
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// resolvePatient links the appointment to a patient record resolved from
// the free-text name. Contact fields are seeded only when the record is
// created, an existing patient's contact info is never overwritten by a
// booking.
func (s *Service) resolvePatient(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Patient, error) {
	first, last := model.SplitPatientName(req.PatientName)
	if first == "" {
		return nil, nil
	}
	patient, created, err := s.patients.GetOrCreate(ctx, &model.Patient{
		FirstName: first,
		LastName:  last,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}
	if created {
		s.logger.Info().Str("patient_id", patient.ID.String()).Msg("created patient from booking")
	}
	return patient, nil
}

func (s *Service) requirePhysician(ctx context.Context, id uuid.UUID) error {
	doctor, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if doctor.Role != model.RolePhysician {
		return apperrors.Validation(map[string]string{"doctor": "assigned doctor must have the physician role"})
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	return date, nil
}

func validateTime(raw string) error {
	if _, err := time.Parse("15:04", raw); err != nil {
		if _, err := time.Parse("15:04:05", raw); err != nil {
			return fmt.Errorf("time must be HH:MM")
		}
	}
	return nil
}
