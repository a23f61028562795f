package user

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeSpecialtyRepo struct {
	repository.SpecialtyRepository
	rows map[int64]*model.Specialty
}

func (f *fakeSpecialtyRepo) Get(_ context.Context, id int64) (*model.Specialty, error) {
	sp, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("specialty", nil)
	}
	return sp, nil
}

type fixture struct {
	svc  *Service
	repo *fakeUserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	specialties := &fakeSpecialtyRepo{rows: map[int64]*model.Specialty{
		1: {ID: 1, NameFR: "Cardiologie", NameEN: "Cardiology", IsActive: true},
	}}
	return &fixture{
		svc:  NewService(repo, specialties, t.TempDir(), zerolog.Nop()),
		repo: repo,
	}
}

func physicianRequest() *model.CreateUserRequest {
	specialtyID := int64(1)
	return &model.CreateUserRequest{
		FirstName:     "Hassan",
		LastName:      "Benali",
		Role:          "PHYSICIAN",
		CodePersonnel: "123456",
		SpecialtyID:   &specialtyID,
	}
}

func TestCreatePhysician(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Create(context.Background(), physicianRequest(), i18n.French)
	require.NoError(t, err)

	assert.Equal(t, model.RolePhysician, view.Role)
	assert.Equal(t, "hassan.benali", view.Username)
	require.NotNil(t, view.Specialty)
	assert.Equal(t, "Cardiologie", view.Specialty.Name)
	assert.True(t, view.IsActive)
	assert.Equal(t, "fr", view.Language)
	assert.Equal(t, "light", view.Theme)
}

func TestCreatePhysicianRequiresPersonnelCode(t *testing.T) {
	f := newFixture(t)
	req := physicianRequest()
	req.CodePersonnel = "  "

	_, err := f.svc.Create(context.Background(), req, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "code_personnel")
}

func TestCreateStaffRequiresPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), &model.CreateUserRequest{
		FirstName: "Samira",
		LastName:  "Accueil",
		Role:      "FRONTDESK",
		Password:  "court",
	}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields["password"], "at least 8")
}

func TestCreateStaffHashesPassword(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Create(context.Background(), &model.CreateUserRequest{
		FirstName: "Samira",
		LastName:  "Accueil",
		Role:      "FRONTDESK",
		Password:  "motdepasse",
	}, i18n.French)
	require.NoError(t, err)

	stored := f.repo.users[uuid.MustParse(view.ID)]
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "motdepasse", *stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("motdepasse")))
	assert.Nil(t, stored.CodePersonnel)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), &model.CreateUserRequest{
		FirstName: "X",
		LastName:  "Y",
		Role:      "janitor",
	}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "role")
}

func TestGeneratedUsernameGetsSuffixOnCollision(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create(context.Background(), physicianRequest(), i18n.French)
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), physicianRequest(), i18n.French)
	require.NoError(t, err)
	third, err := f.svc.Create(context.Background(), physicianRequest(), i18n.French)
	require.NoError(t, err)

	assert.Equal(t, "hassan.benali", first.Username)
	assert.Equal(t, "hassan.benali2", second.Username)
	assert.Equal(t, "hassan.benali3", third.Username)
}

func TestGeneratedUsernameStripsAccentsAndSpaces(t *testing.T) {
	f := newFixture(t)
	req := physicianRequest()
	req.FirstName = "Jean-Marc"
	req.LastName = "De La Tour"

	view, err := f.svc.Create(context.Background(), req, i18n.French)
	require.NoError(t, err)
	assert.Equal(t, "jeanmarc.delatour", view.Username)
}

func TestExplicitUsernameIsKept(t *testing.T) {
	f := newFixture(t)
	req := physicianRequest()
	req.Username = "drbenali"

	view, err := f.svc.Create(context.Background(), req, i18n.French)
	require.NoError(t, err)
	assert.Equal(t, "drbenali", view.Username)
}

func TestUpdateRejectsSpecialtyForNonPhysician(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.Create(context.Background(), &model.CreateUserRequest{
		FirstName: "Samira",
		LastName:  "Accueil",
		Role:      "FRONTDESK",
		Password:  "motdepasse",
	}, i18n.French)
	require.NoError(t, err)

	specialtyID := int64(1)
	_, err = f.svc.Update(context.Background(), uuid.MustParse(view.ID), &model.UpdateUserRequest{
		SpecialtyID: &specialtyID,
	}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "specialty_id")
}

func TestListFiltersByRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), physicianRequest(), i18n.French)
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), &model.CreateUserRequest{
		FirstName: "Samira",
		LastName:  "Accueil",
		Role:      "FRONTDESK",
		Password:  "motdepasse",
	}, i18n.French)
	require.NoError(t, err)

	physicians, err := f.svc.ListPhysicians(context.Background(), i18n.French)
	require.NoError(t, err)
	require.Len(t, physicians, 1)
	assert.Equal(t, model.RolePhysician, physicians[0].Role)

	_, err = f.svc.List(context.Background(), "janitor", i18n.French)
	assert.Error(t, err)
}

func TestSavePhoto(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.Create(context.Background(), physicianRequest(), i18n.French)
	require.NoError(t, err)
	id := uuid.MustParse(view.ID)

	updated, err := f.svc.SavePhoto(context.Background(), id, "portrait.JPG", []byte("fake image bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photos/"+id.String()+".jpg", updated.PhotoURL)

	data, err := os.ReadFile(filepath.Join(f.svc.uploadDir, "photos", id.String()+".jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), data)
}

func TestSavePhotoRejectsUnknownExtension(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.Create(context.Background(), physicianRequest(), i18n.French)
	require.NoError(t, err)

	_, err = f.svc.SavePhoto(context.Background(), uuid.MustParse(view.ID), "script.exe", []byte("nope"))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "photo")
}
