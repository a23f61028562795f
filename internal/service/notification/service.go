package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atlasclinic/clinic-api/internal/email"
	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	"github.com/atlasclinic/clinic-api/internal/whatsapp"
	"github.com/atlasclinic/clinic-api/pkg/messaging"
	"github.com/atlasclinic/clinic-api/pkg/metrics"
)

// Service is the arrival-notification fan-out. Every entry point here is
// best-effort by contract: the triggering record has already been
// persisted, and nothing in this package may fail or roll it back.
// Failures are logged and counted, never surfaced.
//
// Room-status mutation lives here and only here: whichever workflow
// triggers the fan-out with a room attached gets that room marked
// occupied.
type Service struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	catalog  repository.CatalogRepository
	emailSvc email.Service
	whatsApp whatsapp.Sender
	broker   messaging.Broker
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	location *time.Location
}

func NewService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	catalog repository.CatalogRepository,
	emailSvc email.Service,
	whatsApp whatsapp.Sender,
	broker messaging.Broker,
	m *metrics.Metrics,
	logger zerolog.Logger,
	location *time.Location,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		catalog:  catalog,
		emailSvc: emailSvc,
		whatsApp: whatsApp,
		broker:   broker,
		metrics:  m,
		logger:   logger,
		location: location,
	}
}

// CombineDateTime merges a date and an HH:MM string into one aware instant
// in the deployment time zone.
func (s *Service) CombineDateTime(date time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		if parsed, err = time.Parse("15:04:05", hhmm); err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
		}
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		s.location,
	), nil
}

// NotifyAppointmentCreated raises one ArrivalNotification for a freshly
// created appointment. Called only on first creation, never on updates.
// An appointment without a doctor is a silent no-op.
func (s *Service) NotifyAppointmentCreated(ctx context.Context, apt *model.Appointment) {
	if apt.DoctorID == nil {
		s.logger.Debug().Str("appointment_id", apt.ID.String()).
			Msg("appointment has no doctor, skipping notification")
		return
	}

	doctor, err := s.userRepo.Get(ctx, *apt.DoctorID)
	if err != nil {
		s.fail(err, "failed to load doctor for notification")
		return
	}

	apptAt, err := s.CombineDateTime(apt.Date, apt.Time)
	if err != nil {
		s.fail(err, "failed to combine appointment date and time")
		return
	}

	patient := apt.PatientName
	if patient == "" {
		patient = "—"
	}

	typeLabel := "—"
	if apt.TypeID != nil {
		if t, err := s.catalog.GetAppointmentType(ctx, *apt.TypeID); err == nil {
			typeLabel = t.NameFR
		}
	}

	n := &model.ArrivalNotification{
		DoctorID:           *apt.DoctorID,
		Patient:            patient,
		RefBy:              doctor.FullName(),
		RoomID:             apt.RoomID,
		InterventionTypeID: apt.TypeID,
		ApptAt:             apptAt,
		Status:             model.NotificationStatusNew,
		Message:            fmt.Sprintf("Nouveau rendez-vous confirmé (%s) pour %s.", typeLabel, patient),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.metrics.NotificationsFailed.Inc()
		s.fail(err, "failed to create arrival notification")
		return
	}
	s.metrics.NotificationsCreated.Inc()

	s.occupyRoom(ctx, apt.RoomID)
	s.publish(ctx, n)
	s.emailDoctor(ctx, doctor, patient, n.Message)
}

// NotifyReferralArrived alerts the referral's doctor that the patient is
// on site, over WhatsApp when the doctor's preferences allow it.
func (s *Service) NotifyReferralArrived(ctx context.Context, ref *model.Referral, patientName string) {
	if ref.DoctorID == nil {
		return
	}

	doctor, err := s.userRepo.Get(ctx, *ref.DoctorID)
	if err != nil {
		s.fail(err, "failed to load doctor for arrival message")
		return
	}

	message := fmt.Sprintf("Patient %s est arrivé (chambre %s).", patientName, ref.RoomNumber)

	n := &model.ArrivalNotification{
		DoctorID: *ref.DoctorID,
		Patient:  patientName,
		RefBy:    doctor.FullName(),
		ApptAt:   time.Now().In(s.location),
		Status:   model.NotificationStatusNew,
		Message:  message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.metrics.NotificationsFailed.Inc()
		s.fail(err, "failed to create arrival notification")
	} else {
		s.metrics.NotificationsCreated.Inc()
		s.publish(ctx, n)
	}

	if doctor.NotificationEnabled("whatsapp") && doctor.Phone != "" {
		if err := s.whatsApp.Send(ctx, doctor.Phone, message); err != nil {
			s.metrics.WhatsAppFailed.Inc()
			s.fail(err, "failed to send whatsapp message")
		} else {
			s.metrics.WhatsAppSent.Inc()
		}
	}

	s.emailDoctor(ctx, doctor, patientName, message)
}

// SendWhatsApp forwards an ad-hoc message, for the front-office reminder
// screen. Unlike the fan-out paths this one reports its error.
func (s *Service) SendWhatsApp(ctx context.Context, to, body string) error {
	if err := s.whatsApp.Send(ctx, to, body); err != nil {
		s.metrics.WhatsAppFailed.Inc()
		return err
	}
	s.metrics.WhatsAppSent.Inc()
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.ArrivalNotification, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ArrivalNotification, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus) (*model.ArrivalNotification, error) {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, filters *model.NotificationFilters) (int, error) {
	return s.repo.MarkAllRead(ctx, filters)
}

func (s *Service) occupyRoom(ctx context.Context, roomID *int64) {
	if roomID == nil {
		return
	}
	if err := s.catalog.UpdateRoomStatus(ctx, *roomID, model.RoomStatusOccupied); err != nil {
		s.fail(err, "failed to mark room occupied")
	}
}

func (s *Service) publish(ctx context.Context, n *model.ArrivalNotification) {
	if s.broker == nil {
		return
	}
	event := &model.ArrivalEvent{
		NotificationID: n.ID,
		DoctorID:       n.DoctorID,
		Patient:        n.Patient,
		ApptAt:         n.ApptAt,
	}
	if err := s.broker.Publish(ctx, messaging.ChannelArrivalNotifications, event); err != nil {
		s.fail(err, "failed to publish arrival event")
	}
}

func (s *Service) emailDoctor(ctx context.Context, doctor *model.User, patient, message string) {
	if s.emailSvc == nil || doctor.Email == "" || !doctor.NotificationEnabled("email") {
		return
	}
	if err := s.emailSvc.SendArrivalNotice(ctx, doctor.Email, doctor.FullName(), patient, message); err != nil {
		s.metrics.EmailsFailed.Inc()
		s.fail(err, "failed to send arrival email")
		return
	}
	s.metrics.EmailsSent.Inc()
}

func (s *Service) fail(err error, msg string) {
	s.logger.Error().Err(err).Msg(msg)
}
