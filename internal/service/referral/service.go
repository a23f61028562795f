package referral

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

// CatalogResolver turns an id-or-name value into a catalog row, or
// (nil, nil) when nothing matches.
type CatalogResolver interface {
	ResolveInterventionType(ctx context.Context, value string) (*model.InterventionType, error)
	ResolveUrgencyLevel(ctx context.Context, value string) (*model.UrgencyLevel, error)
	GetInterventionType(ctx context.Context, id int64) (*model.InterventionType, error)
	GetUrgencyLevel(ctx context.Context, id int64) (*model.UrgencyLevel, error)
}

// ProjectionSyncer mirrors referral changes into the front-office view.
type ProjectionSyncer interface {
	SyncCreate(ctx context.Context, ref *model.Referral)
	SyncUpdate(ctx context.Context, ref *model.Referral)
	SyncDelete(ctx context.Context, referralID uuid.UUID)
}

// ArrivalNotifier is invoked after a referral is marked arrived.
type ArrivalNotifier interface {
	NotifyReferralArrived(ctx context.Context, ref *model.Referral, patientName string)
}

type Service struct {
	repo      repository.ReferralRepository
	patients  repository.PatientRepository
	insurance repository.InsuranceRepository
	users     repository.UserRepository
	apts      repository.AppointmentRepository
	catalog   CatalogResolver
	projector ProjectionSyncer
	notifier  ArrivalNotifier
	logger    zerolog.Logger
}

func NewService(
	repo repository.ReferralRepository,
	patients repository.PatientRepository,
	insurance repository.InsuranceRepository,
	users repository.UserRepository,
	apts repository.AppointmentRepository,
	catalog CatalogResolver,
	projector ProjectionSyncer,
	notifier ArrivalNotifier,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		insurance: insurance,
		users:     users,
		apts:      apts,
		catalog:   catalog,
		projector: projector,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create handles both the authenticated physician flow and the anonymous
// public intake, which differ only in whether doctorID is set. Secondary
// fields (dates, catalog references) parse leniently and degrade to null
// instead of failing the create. Status always starts at new, regardless
// of input.
func (s *Service) Create(ctx context.Context, req *model.CreateReferralRequest, doctorID *uuid.UUID, lang i18n.Lang) (*model.ReferralView, error) {
	patient, _, err := s.patients.GetOrCreate(ctx, &model.Patient{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		BirthDate:  parseLenientDate(req.BirthDate),
		Gender:     req.Gender,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}

	ref := &model.Referral{
		PatientID:          &patient.ID,
		DoctorID:           doctorID,
		ConsultationReason: req.ConsultationReason,
		MedicalHistory:     req.MedicalHistory,
		ReferringDoctor:    req.ReferringDoctor,
		Establishment:      req.Establishment,
		TargetSpecialty:    req.TargetSpecialty,
		Notes:              req.Notes,
		Status:             model.ReferralStatusNew,
	}

	if req.HasInsurance() {
		ins, _, err := s.insurance.GetOrCreate(ctx, &model.Insurance{
			Provider:       strings.TrimSpace(req.InsuranceProvider),
			PolicyNumber:   strings.TrimSpace(req.InsurancePolicyNumber),
			CoverageType:   req.CoverageType,
			ExpirationDate: parseLenientDate(req.InsuranceExpiration),
			HolderName:     req.HolderName,
			Notes:          req.InsuranceNotes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve insurance: %w", err)
		}
		ref.InsuranceID = &ins.ID
	}

	if t, err := s.catalog.ResolveInterventionType(ctx, req.InterventionType); err != nil {
		return nil, err
	} else if t != nil {
		ref.InterventionTypeID = &t.ID
	}
	if u, err := s.catalog.ResolveUrgencyLevel(ctx, req.UrgencyLevel); err != nil {
		return nil, err
	} else if u != nil {
		ref.UrgencyLevelID = &u.ID
	}

	if err := s.repo.Create(ctx, ref); err != nil {
		return nil, err
	}
	s.projector.SyncCreate(ctx, ref)

	return s.buildView(ctx, ref, lang)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, lang i18n.Lang) (*model.ReferralView, error) {
	ref, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, ref, lang)
}

func (s *Service) List(ctx context.Context, filters *model.ReferralFilters, lang i18n.Lang) ([]*model.ReferralView, error) {
	refs, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	views := make([]*model.ReferralView, 0, len(refs))
	for _, ref := range refs {
		view, err := s.buildView(ctx, ref, lang)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Update applies a partial mutation. Status changes must follow the
// forward-only transition rules; mark-arrived has its own entry point and
// is rejected here without a room number.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateReferralRequest, lang i18n.Lang) (*model.ReferralView, error) {
	ref, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ConsultationReason != nil {
		ref.ConsultationReason = *req.ConsultationReason
	}
	if req.MedicalHistory != nil {
		ref.MedicalHistory = *req.MedicalHistory
	}
	if req.ReferringDoctor != nil {
		ref.ReferringDoctor = *req.ReferringDoctor
	}
	if req.Establishment != nil {
		ref.Establishment = *req.Establishment
	}
	if req.TargetSpecialty != nil {
		ref.TargetSpecialty = *req.TargetSpecialty
	}
	if req.Notes != nil {
		ref.Notes = *req.Notes
	}
	if req.Status != nil {
		next := model.ReferralStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		if next == model.ReferralStatusArrived {
			return nil, apperrors.Validation(map[string]string{
				"status": "use the arrival endpoint to mark a referral arrived",
			})
		}
		if !ref.Status.CanTransition(next) {
			return nil, apperrors.Validation(map[string]string{
				"status": fmt.Sprintf("cannot transition from %s to %s", ref.Status, next),
			})
		}
		ref.Status = next
	}

	if err := s.repo.Update(ctx, ref); err != nil {
		return nil, err
	}
	s.projector.SyncUpdate(ctx, ref)

	return s.buildView(ctx, ref, lang)
}

// MarkArrived moves a referral to arrived from any status. The room number
// is mandatory; the arrival fan-out is best-effort and runs after the
// status change has committed.
func (s *Service) MarkArrived(ctx context.Context, id uuid.UUID, roomNumber string, lang i18n.Lang) (*model.ReferralView, error) {
	roomNumber = strings.TrimSpace(roomNumber)
	if roomNumber == "" {
		return nil, apperrors.Validation(map[string]string{"room_number": "room_number is required"})
	}

	ref, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref.Status = model.ReferralStatusArrived
	ref.RoomNumber = roomNumber

	if err := s.repo.Update(ctx, ref); err != nil {
		return nil, err
	}
	s.projector.SyncUpdate(ctx, ref)

	patientName := "Patient"
	if ref.PatientID != nil {
		if p, err := s.patients.Get(ctx, *ref.PatientID); err == nil {
			if name := p.FullName(); name != "" {
				patientName = name
			}
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyReferralArrived(ctx, ref, patientName)
	}

	return s.buildView(ctx, ref, lang)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.projector.SyncDelete(ctx, id)
	return nil
}

// Stats aggregates the management dashboard in one call.
func (s *Service) Stats(ctx context.Context, from, to *time.Time) (*model.ReferralStats, error) {
	series, err := s.repo.CountByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDoctor, err := s.repo.CountByDoctor(ctx, from, to)
	if err != nil {
		return nil, err
	}
	bySpecialty, err := s.repo.CountBySpecialty(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byInsurance, err := s.repo.CountByInsurance(ctx, from, to)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, from, to)
	if err != nil {
		return nil, err
	}
	arrived, err := s.repo.CountByStatus(ctx, model.ReferralStatusArrived, from, to)
	if err != nil {
		return nil, err
	}
	appointments, err := s.apts.Count(ctx)
	if err != nil {
		return nil, err
	}
	facets, err := s.repo.Facets(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := &model.ReferralStats{
		Funnel: model.StatsFunnel{
			Referrals:    total,
			Appointments: appointments,
			Arrived:      arrived,
		},
		Facets: *facets,
	}
	for _, p := range series {
		stats.Series = append(stats.Series, *p)
	}
	for _, b := range byDoctor {
		stats.ByDoctor = append(stats.ByDoctor, *b)
	}
	for _, b := range bySpecialty {
		stats.BySpecialty = append(stats.BySpecialty, *b)
	}
	for _, b := range byInsurance {
		stats.ByInsurance = append(stats.ByInsurance, *b)
	}
	return stats, nil
}

func (s *Service) buildView(ctx context.Context, ref *model.Referral, lang i18n.Lang) (*model.ReferralView, error) {
	view := &model.ReferralView{
		ID:                 ref.ID.String(),
		DoctorID:           ref.DoctorID,
		ConsultationReason: ref.ConsultationReason,
		MedicalHistory:     ref.MedicalHistory,
		ReferringDoctor:    ref.ReferringDoctor,
		Establishment:      ref.Establishment,
		TargetSpecialty:    ref.TargetSpecialty,
		RoomNumber:         ref.RoomNumber,
		Notes:              ref.Notes,
		Status:             ref.Status,
		CreatedAt:          ref.CreatedAt,
		UpdatedAt:          ref.UpdatedAt,
	}

	if ref.PatientID != nil {
		if p, err := s.patients.Get(ctx, *ref.PatientID); err == nil {
			view.Patient = p
		}
	}
	if ref.InsuranceID != nil {
		if ins, err := s.insurance.Get(ctx, *ref.InsuranceID); err == nil {
			view.Insurance = ins
		}
	}
	if ref.DoctorID != nil {
		if doctor, err := s.users.Get(ctx, *ref.DoctorID); err == nil {
			view.DoctorUsername = doctor.Username
		}
	}
	if ref.InterventionTypeID != nil {
		if t, err := s.catalog.GetInterventionType(ctx, *ref.InterventionTypeID); err == nil && t != nil {
			view.InterventionType = t.Localize(lang)
		}
	}
	if ref.UrgencyLevelID != nil {
		if u, err := s.catalog.GetUrgencyLevel(ctx, *ref.UrgencyLevelID); err == nil && u != nil {
			view.UrgencyLevel = u.Localize(lang)
		}
	}
	return view, nil
}

// parseLenientDate accepts ISO dates, French day-first dates, and full
// datetimes. Anything else yields nil rather than an error.
func parseLenientDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{
		"2006-01-02",
		"02-01-2006",
		"02/01/2006",
		time.RFC3339,
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
