package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	pkgauth "github.com/atlasclinic/clinic-api/pkg/auth"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

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

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

type fixture struct {
	svc       *Service
	users     *fakeUserRepo
	physician *model.User
	desk      *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	code := "123456"
	hash, err := bcrypt.GenerateFromPassword([]byte("motdepasse"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)

	physician := &model.User{
		Base:          model.Base{ID: uuid.New()},
		Username:      "h.benali",
		Role:          model.RolePhysician,
		CodePersonnel: &code,
		IsActive:      true,
	}
	desk := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Username:     "s.accueil",
		Role:         model.RoleFrontDesk,
		PasswordHash: &hashed,
		IsActive:     true,
	}

	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		physician.ID: physician,
		desk.ID:      desk,
	}}
	jwt := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        "test-access-secret",
		RefreshSecret: "test-refresh-secret",
	})

	return &fixture{
		svc:       NewService(users, jwt, zerolog.Nop()),
		users:     users,
		physician: physician,
		desk:      desk,
	}
}

func TestLoginPhysicianWithPersonnelCode(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Login(context.Background(), &LoginRequest{
		Username:     "h.benali",
		Role:         "PHYSICIAN",
		PersonalCode: "123456",
	}, i18n.French)
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "h.benali", result.User.Username)
}

func TestLoginAcceptsFrenchRoleAlias(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), &LoginRequest{
		Username:     "h.benali",
		Role:         "medecin",
		PersonalCode: "123456",
	}, i18n.French)
	assert.NoError(t, err)
}

func TestLoginFrontDeskWithPassword(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Login(context.Background(), &LoginRequest{
		Username: "s.accueil",
		Role:     "FRONTDESK",
		Password: "motdepasse",
	}, i18n.French)
	require.NoError(t, err)
	assert.Equal(t, "s.accueil", result.User.Username)
}

func TestLoginRejectsWrongCredential(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  *LoginRequest
	}{
		{"wrong code", &LoginRequest{Username: "h.benali", Role: "PHYSICIAN", PersonalCode: "000000"}},
		{"empty code", &LoginRequest{Username: "h.benali", Role: "PHYSICIAN"}},
		{"password for physician", &LoginRequest{Username: "h.benali", Role: "PHYSICIAN", Password: "motdepasse"}},
		{"wrong password", &LoginRequest{Username: "s.accueil", Role: "FRONTDESK", Password: "autre"}},
		{"unknown user", &LoginRequest{Username: "ghost", Role: "FRONTDESK", Password: "motdepasse"}},
		{"unknown role", &LoginRequest{Username: "s.accueil", Role: "wizard", Password: "motdepasse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tt.req, i18n.French)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
		})
	}
}

func TestLoginRejectsRoleMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), &LoginRequest{
		Username:     "h.benali",
		Role:         "FRONTDESK",
		PersonalCode: "123456",
	}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	f := newFixture(t)
	f.desk.IsActive = false

	_, err := f.svc.Login(context.Background(), &LoginRequest{
		Username: "s.accueil",
		Role:     "FRONTDESK",
		Password: "motdepasse",
	}, i18n.French)
	assert.Error(t, err)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Login(context.Background(), &LoginRequest{
		Username: "s.accueil",
		Role:     "FRONTDESK",
		Password: "motdepasse",
	}, i18n.French)
	require.NoError(t, err)

	pair, err := f.svc.Refresh(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRefreshRejectsDeactivatedAccount(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Login(context.Background(), &LoginRequest{
		Username: "s.accueil",
		Role:     "FRONTDESK",
		Password: "motdepasse",
	}, i18n.French)
	require.NoError(t, err)

	f.desk.IsActive = false
	_, err = f.svc.Refresh(context.Background(), result.RefreshToken)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Login(context.Background(), &LoginRequest{
		Username: "s.accueil",
		Role:     "FRONTDESK",
		Password: "motdepasse",
	}, i18n.French)
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), result.AccessToken)
	assert.Error(t, err)
}

func TestUpdateMeChangesPassword(t *testing.T) {
	f := newFixture(t)
	oldPassword := "motdepasse"
	newPassword := "nouveaumotdepasse"

	_, err := f.svc.UpdateMe(context.Background(), f.desk.ID, &UpdateProfileRequest{
		OldPassword: &oldPassword,
		Password:    &newPassword,
	}, i18n.French)
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &LoginRequest{
		Username: "s.accueil",
		Role:     "FRONTDESK",
		Password: newPassword,
	}, i18n.French)
	assert.NoError(t, err)
}

func TestUpdateMeRejectsWrongOldPassword(t *testing.T) {
	f := newFixture(t)
	oldPassword := "pasdutoutcelui"
	newPassword := "nouveaumotdepasse"

	_, err := f.svc.UpdateMe(context.Background(), f.desk.ID, &UpdateProfileRequest{
		OldPassword: &oldPassword,
		Password:    &newPassword,
	}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "old password is incorrect", appErr.Fields["old_password"])

	_, err = f.svc.Login(context.Background(), &LoginRequest{
		Username: "s.accueil",
		Role:     "FRONTDESK",
		Password: "motdepasse",
	}, i18n.French)
	assert.NoError(t, err, "stored password must be unchanged")
}

func TestUpdateMeRequiresOldPassword(t *testing.T) {
	f := newFixture(t)
	newPassword := "nouveaumotdepasse"

	_, err := f.svc.UpdateMe(context.Background(), f.desk.ID, &UpdateProfileRequest{
		Password: &newPassword,
	}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "old_password")
}

func TestUpdateMeRejectsShortPassword(t *testing.T) {
	f := newFixture(t)
	oldPassword := "motdepasse"
	short := "abc"

	_, err := f.svc.UpdateMe(context.Background(), f.desk.ID, &UpdateProfileRequest{
		OldPassword: &oldPassword,
		Password:    &short,
	}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields["new_password"], "at least 8")
}

func TestUpdateMeRejectsPhysicianPasswordChange(t *testing.T) {
	f := newFixture(t)
	password := "longenoughpassword"

	_, err := f.svc.UpdateMe(context.Background(), f.physician.ID, &UpdateProfileRequest{Password: &password}, i18n.French)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "physicians authenticate with a personnel code", appErr.Fields["new_password"])
}

func TestUpdateMeAppliesProfileFields(t *testing.T) {
	f := newFixture(t)
	lang := "en"
	theme := "dark"
	phone := "+212622222222"

	view, err := f.svc.UpdateMe(context.Background(), f.desk.ID, &UpdateProfileRequest{
		Language: &lang,
		Theme:    &theme,
		Phone:    &phone,
	}, i18n.English)
	require.NoError(t, err)

	assert.Equal(t, "en", view.Language)
	assert.Equal(t, "dark", view.Theme)
	assert.Equal(t, "+212622222222", view.Phone)
}
