package secretary

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("secretary_test")

type fakeProjectionRepo struct {
	repository.SecretaryReferralRepository
	rows map[uuid.UUID]*model.SecretaryReferral
}

func (f *fakeProjectionRepo) Create(_ context.Context, row *model.SecretaryReferral) error {
	f.rows[row.ReferralID] = row
	return nil
}

func (f *fakeProjectionRepo) GetByReferral(_ context.Context, id uuid.UUID) (*model.SecretaryReferral, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("secretary referral", nil)
	}
	return row, nil
}

func (f *fakeProjectionRepo) UpdateByReferral(_ context.Context, row *model.SecretaryReferral) error {
	f.rows[row.ReferralID] = row
	return nil
}

func (f *fakeProjectionRepo) DeleteByReferral(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

type fakePatientRepo struct {
	repository.PatientRepository
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

type fakeInsuranceRepo struct {
	repository.InsuranceRepository
	rows map[uuid.UUID]*model.Insurance
}

func (f *fakeInsuranceRepo) Get(_ context.Context, id uuid.UUID) (*model.Insurance, error) {
	ins, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("insurance", nil)
	}
	return ins, nil
}

type fakeCatalogRepo struct {
	repository.CatalogRepository
	interventions map[int64]*model.InterventionType
	urgencies     map[int64]*model.UrgencyLevel
}

func (f *fakeCatalogRepo) GetInterventionType(_ context.Context, id int64) (*model.InterventionType, error) {
	t, ok := f.interventions[id]
	if !ok {
		return nil, apperrors.NotFound("intervention type", nil)
	}
	return t, nil
}

func (f *fakeCatalogRepo) GetUrgencyLevel(_ context.Context, id int64) (*model.UrgencyLevel, error) {
	u, ok := f.urgencies[id]
	if !ok {
		return nil, apperrors.NotFound("urgency level", nil)
	}
	return u, nil
}

type fixture struct {
	svc       *Service
	repo      *fakeProjectionRepo
	patientID uuid.UUID
	doctorID  uuid.UUID
	insID     uuid.UUID
}

func newFixture() *fixture {
	patientID := uuid.New()
	doctorID := uuid.New()
	insID := uuid.New()

	repo := &fakeProjectionRepo{rows: make(map[uuid.UUID]*model.SecretaryReferral)}
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{
		patientID: {
			Base:      model.Base{ID: patientID},
			FirstName: "Amina",
			LastName:  "El Fassi",
			Phone:     "+212600000001",
			Email:     "amina@example.com",
		},
	}}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		doctorID: {
			Base:      model.Base{ID: doctorID},
			Username:  "h.benali",
			FirstName: "Hassan",
			LastName:  "Benali",
			Role:      model.RolePhysician,
			Specialty: &model.Specialty{ID: 1, NameFR: "Cardiologie", NameEN: "Cardiology"},
		},
	}}
	insurance := &fakeInsuranceRepo{rows: map[uuid.UUID]*model.Insurance{
		insID: {Base: model.Base{ID: insID}, Provider: "cnops", PolicyNumber: "P-1"},
	}}
	catalog := &fakeCatalogRepo{
		interventions: map[int64]*model.InterventionType{
			7: {ID: 7, NameFR: "Chirurgie cardiaque", NameEN: "Cardiac surgery"},
		},
		urgencies: map[int64]*model.UrgencyLevel{
			3: {ID: 3, NameFR: "Urgence", NameEN: "Urgent", Priority: 1},
		},
	}

	return &fixture{
		svc:       NewService(repo, patients, users, insurance, catalog, testMetrics, zerolog.Nop()),
		repo:      repo,
		patientID: patientID,
		doctorID:  doctorID,
		insID:     insID,
	}
}

func TestBuildProjectionFullyLinked(t *testing.T) {
	f := newFixture()
	interventionID := int64(7)
	urgencyID := int64(3)

	ref := &model.Referral{
		Base:               model.Base{ID: uuid.New(), CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
		PatientID:          &f.patientID,
		DoctorID:           &f.doctorID,
		InsuranceID:        &f.insID,
		InterventionTypeID: &interventionID,
		UrgencyLevelID:     &urgencyID,
		ConsultationReason: "Douleur thoracique",
		Notes:              "interne",
		Status:             model.ReferralStatusAccepted,
	}

	row := f.svc.BuildProjection(context.Background(), ref)

	assert.Equal(t, ref.ID, row.ReferralID)
	assert.Equal(t, "Amina El Fassi", row.Patient)
	assert.Equal(t, "Hassan Benali — Cardiologie", row.Medecin)
	assert.Equal(t, "Chirurgie cardiaque", row.Intervention)
	assert.Equal(t, "2026-03-14", row.Date)
	assert.Equal(t, "CNOPS", row.Assurance)
	assert.Equal(t, "Confirmé", row.Statut)
	assert.Equal(t, "Urgente", row.Priorite)
	assert.Equal(t, "+212600000001", row.Phone)
	assert.Equal(t, "amina@example.com", row.Email)
	assert.Equal(t, "interne", row.InternalNotes)
}

func TestBuildProjectionDegradesGracefully(t *testing.T) {
	f := newFixture()

	ref := &model.Referral{
		Base:               model.Base{ID: uuid.New(), CreatedAt: time.Now()},
		ConsultationReason: "Suivi",
		TargetSpecialty:    "Dermatologie",
		Status:             model.ReferralStatusNew,
	}

	row := f.svc.BuildProjection(context.Background(), ref)

	assert.Equal(t, "Patient", row.Patient)
	assert.Equal(t, "Dermatologie", row.Medecin)
	assert.Equal(t, "Suivi", row.Intervention)
	assert.Empty(t, row.Assurance)
	assert.Equal(t, "En attente", row.Statut)
	assert.Equal(t, "Normale", row.Priorite)
}

func TestSyncLifecycle(t *testing.T) {
	f := newFixture()

	ref := &model.Referral{
		Base:      model.Base{ID: uuid.New(), CreatedAt: time.Now()},
		PatientID: &f.patientID,
		Status:    model.ReferralStatusNew,
	}

	f.svc.SyncCreate(context.Background(), ref)
	row, err := f.repo.GetByReferral(context.Background(), ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "En attente", row.Statut)

	ref.Status = model.ReferralStatusAccepted
	f.svc.SyncUpdate(context.Background(), ref)
	row, err = f.repo.GetByReferral(context.Background(), ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "Confirmé", row.Statut)

	f.svc.SyncDelete(context.Background(), ref.ID)
	_, err = f.repo.GetByReferral(context.Background(), ref.ID)
	assert.Error(t, err)
}

func TestSyncUpdateRecreatesMissingRow(t *testing.T) {
	f := newFixture()

	ref := &model.Referral{
		Base:   model.Base{ID: uuid.New(), CreatedAt: time.Now()},
		Status: model.ReferralStatusSent,
	}

	f.svc.SyncUpdate(context.Background(), ref)
	row, err := f.repo.GetByReferral(context.Background(), ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "En attente", row.Statut)
}
