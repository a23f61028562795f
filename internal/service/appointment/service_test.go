package appointment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	apts map[uuid.UUID]*model.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	apt.ID = uuid.New()
	f.apts[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.apts[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	clone := *apt
	return &clone, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	f.apts[apt.ID] = apt
	return nil
}

type fakePatientRepo struct {
	repository.PatientRepository
	patients       map[uuid.UUID]*model.Patient
	created        int
	getOrCreateErr error
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (f *fakePatientRepo) GetOrCreate(_ context.Context, p *model.Patient) (*model.Patient, bool, error) {
	if f.getOrCreateErr != nil {
		return nil, false, f.getOrCreateErr
	}
	for _, existing := range f.patients {
		if strings.EqualFold(existing.FirstName, p.FirstName) && strings.EqualFold(existing.LastName, p.LastName) {
			return existing, false, nil
		}
	}
	p.ID = uuid.New()
	f.patients[p.ID] = p
	f.created++
	return p, true, nil
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

type recordingNotifier struct {
	calls int
	last  *model.Appointment
}

func (r *recordingNotifier) NotifyAppointmentCreated(_ context.Context, apt *model.Appointment) {
	r.calls++
	r.last = apt
}

type fixture struct {
	svc      *Service
	repo     *fakeAppointmentRepo
	patients *fakePatientRepo
	users    *fakeUserRepo
	notifier *recordingNotifier
	doctorID uuid.UUID
	deskID   uuid.UUID
}

func newFixture() *fixture {
	doctorID := uuid.New()
	deskID := uuid.New()

	repo := &fakeAppointmentRepo{apts: make(map[uuid.UUID]*model.Appointment)}
	patients := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		doctorID: {Base: model.Base{ID: doctorID}, Username: "h.benali", Role: model.RolePhysician},
		deskID:   {Base: model.Base{ID: deskID}, Username: "s.accueil", Role: model.RoleFrontDesk},
	}}
	notifier := &recordingNotifier{}

	return &fixture{
		svc:      NewService(repo, patients, users, notifier, zerolog.Nop()),
		repo:     repo,
		patients: patients,
		users:    users,
		notifier: notifier,
		doctorID: doctorID,
		deskID:   deskID,
	}
}

func bookingRequest() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientName: "Amina El Fassi",
		Date:        "2026-09-15",
		Time:        "09:30",
		Phone:       "+212600000001",
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture()

	apt, err := f.svc.Create(context.Background(), bookingRequest())
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, 30, apt.DurationMinutes)
	assert.Equal(t, "2026-09-15", apt.DateString())
}

func TestCreateRequiresPatientIDOrName(t *testing.T) {
	f := newFixture()
	req := bookingRequest()
	req.PatientName = ""

	_, err := f.svc.Create(context.Background(), req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "patient_name")
	assert.Zero(t, f.notifier.calls)
}

func TestCreateResolvesPatientFromName(t *testing.T) {
	f := newFixture()

	apt, err := f.svc.Create(context.Background(), bookingRequest())
	require.NoError(t, err)

	require.NotNil(t, apt.PatientID)
	patient := f.patients.patients[*apt.PatientID]
	require.NotNil(t, patient)
	assert.Equal(t, "Amina", patient.FirstName)
	assert.Equal(t, "El Fassi", patient.LastName)
	assert.Equal(t, "+212600000001", patient.Phone)
}

func TestCreateNeverOverwritesExistingPatientContact(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), bookingRequest())
	require.NoError(t, err)

	req := bookingRequest()
	req.Phone = "+212699999999"
	apt, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.patients.created)
	patient := f.patients.patients[*apt.PatientID]
	assert.Equal(t, "+212600000001", patient.Phone)
}

func TestCreateBackfillsNameFromPatientID(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()
	f.patients.patients[patientID] = &model.Patient{
		Base:      model.Base{ID: patientID},
		FirstName: "Karim",
		LastName:  "Tazi",
	}

	req := bookingRequest()
	req.PatientName = ""
	req.PatientID = &patientID

	apt, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Karim Tazi", apt.PatientName)
}

func TestCreatePersistsWhenPatientResolutionFails(t *testing.T) {
	f := newFixture()
	f.patients.getOrCreateErr = errors.New("connection reset")

	apt, err := f.svc.Create(context.Background(), bookingRequest())
	require.NoError(t, err)

	stored, ok := f.repo.apts[apt.ID]
	require.True(t, ok)
	assert.Nil(t, stored.PatientID)
	assert.Equal(t, "Amina El Fassi", stored.PatientName)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestCreatePersistsWhenPatientIDIsUnknown(t *testing.T) {
	f := newFixture()
	ghost := uuid.New()
	req := bookingRequest()
	req.PatientID = &ghost
	req.PatientName = "Karim Tazi"

	apt, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	stored, ok := f.repo.apts[apt.ID]
	require.True(t, ok)
	assert.Nil(t, stored.PatientID)
	assert.Equal(t, "Karim Tazi", stored.PatientName)
}

func TestCreateRejectsNonPhysicianDoctor(t *testing.T) {
	f := newFixture()
	req := bookingRequest()
	req.DoctorID = &f.deskID

	_, err := f.svc.Create(context.Background(), req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "assigned doctor must have the physician role", appErr.Fields["doctor"])
}

func TestCreateValidatesDateAndTime(t *testing.T) {
	f := newFixture()

	req := bookingRequest()
	req.Date = "15/09/2026"
	_, err := f.svc.Create(context.Background(), req)
	assert.Error(t, err)

	req = bookingRequest()
	req.Time = "930"
	_, err = f.svc.Create(context.Background(), req)
	assert.Error(t, err)

	req = bookingRequest()
	req.Time = "09:30:00"
	_, err = f.svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	req := bookingRequest()
	req.Status = "maybe"

	_, err := f.svc.Create(context.Background(), req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "status")
}

func TestNotifierRunsOnCreateOnly(t *testing.T) {
	f := newFixture()
	req := bookingRequest()
	req.DoctorID = &f.doctorID

	apt, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, apt.ID, f.notifier.last.ID)

	notes := "rescheduled by phone"
	_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	f := newFixture()
	apt, err := f.svc.Create(context.Background(), bookingRequest())
	require.NoError(t, err)

	newTime := "14:00"
	status := "confirmed"
	roomID := int64(4)
	updated, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Time:   &newTime,
		Status: &status,
		RoomID: &roomID,
	})
	require.NoError(t, err)

	assert.Equal(t, "14:00", updated.Time)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
	require.NotNil(t, updated.RoomID)
	assert.Equal(t, int64(4), *updated.RoomID)
	assert.Equal(t, "2026-09-15", updated.DateString())
}

func TestParseDate(t *testing.T) {
	date, err := parseDate("2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), date)

	_, err = parseDate("31-01-2026")
	assert.Error(t, err)
}
