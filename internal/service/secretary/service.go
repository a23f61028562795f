package secretary

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	"github.com/atlasclinic/clinic-api/pkg/metrics"
)

// Service maintains the denormalized front-office mirror of the referral
// table. Sync is one-directional and best-effort: the referral write has
// already committed when any method here runs, so failures are logged and
// counted but never propagated.
type Service struct {
	repo      repository.SecretaryReferralRepository
	patients  repository.PatientRepository
	users     repository.UserRepository
	insurance repository.InsuranceRepository
	catalog   repository.CatalogRepository
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(
	repo repository.SecretaryReferralRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	insurance repository.InsuranceRepository,
	catalog repository.CatalogRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		users:     users,
		insurance: insurance,
		catalog:   catalog,
		metrics:   m,
		logger:    logger,
	}
}

// BuildProjection flattens a referral and its related records into the
// display row. Missing relations degrade to placeholder text instead of
// failing.
func (s *Service) BuildProjection(ctx context.Context, ref *model.Referral) *model.SecretaryReferral {
	row := &model.SecretaryReferral{
		ReferralID: ref.ID,
		Patient:    "Patient",
		Date:       ref.CreatedAt.Format("2006-01-02"),
		Statut:     model.StatusLabelFR(string(ref.Status)),
		Priorite:   model.UrgencyPriorityFR(""),
	}

	if ref.PatientID != nil {
		if p, err := s.patients.Get(ctx, *ref.PatientID); err == nil {
			if name := p.FullName(); name != "" {
				row.Patient = name
			}
			row.Phone = p.Phone
			row.Email = p.Email
		}
	}

	if ref.DoctorID != nil {
		if doctor, err := s.users.Get(ctx, *ref.DoctorID); err == nil {
			row.Medecin = doctor.FullName()
			if doctor.Specialty != nil && doctor.Specialty.NameFR != "" {
				row.Medecin = row.Medecin + " — " + doctor.Specialty.NameFR
			}
		}
	}
	if row.Medecin == "" && ref.TargetSpecialty != "" {
		row.Medecin = ref.TargetSpecialty
	}

	if ref.InterventionTypeID != nil {
		if t, err := s.catalog.GetInterventionType(ctx, *ref.InterventionTypeID); err == nil {
			row.Intervention = t.NameFR
		}
	}
	if row.Intervention == "" {
		row.Intervention = ref.ConsultationReason
	}

	if ref.InsuranceID != nil {
		if ins, err := s.insurance.Get(ctx, *ref.InsuranceID); err == nil {
			row.Assurance = strings.ToUpper(ins.Provider)
		}
	}

	if ref.UrgencyLevelID != nil {
		if u, err := s.catalog.GetUrgencyLevel(ctx, *ref.UrgencyLevelID); err == nil {
			row.Priorite = model.UrgencyPriorityFR(u.NameFR)
		}
	}

	row.InternalNotes = ref.Notes
	return row
}

// SyncCreate inserts the projection row for a new referral.
func (s *Service) SyncCreate(ctx context.Context, ref *model.Referral) {
	row := s.BuildProjection(ctx, ref)
	if err := s.repo.Create(ctx, row); err != nil {
		s.syncFailed(err, ref.ID, "create")
	}
}

// SyncUpdate rebuilds and overwrites the projection row. A missing row is
// recreated rather than reported.
func (s *Service) SyncUpdate(ctx context.Context, ref *model.Referral) {
	row := s.BuildProjection(ctx, ref)
	if _, err := s.repo.GetByReferral(ctx, ref.ID); err != nil {
		if err := s.repo.Create(ctx, row); err != nil {
			s.syncFailed(err, ref.ID, "recreate")
		}
		return
	}
	if err := s.repo.UpdateByReferral(ctx, row); err != nil {
		s.syncFailed(err, ref.ID, "update")
	}
}

// SyncDelete removes the projection row when its referral is deleted.
func (s *Service) SyncDelete(ctx context.Context, referralID uuid.UUID) {
	if err := s.repo.DeleteByReferral(ctx, referralID); err != nil {
		s.syncFailed(err, referralID, "delete")
	}
}

func (s *Service) List(ctx context.Context) ([]*model.SecretaryReferral, error) {
	return s.repo.List(ctx)
}

func (s *Service) syncFailed(err error, referralID uuid.UUID, op string) {
	s.metrics.ProjectionSyncFailed.Inc()
	s.logger.Error().Err(err).
		Str("referral_id", referralID.String()).
		Str("op", op).
		Msg("failed to sync secretary projection")
}
