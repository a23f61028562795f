package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	usersvc "github.com/atlasclinic/clinic-api/internal/service/user"
	pkgauth "github.com/atlasclinic/clinic-api/pkg/auth"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/validator"
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
}

func (f *fakeSpecialtyRepo) Get(_ context.Context, id int64) (*model.Specialty, error) {
	return nil, apperrors.NotFound("specialty", nil)
}

type fixture struct {
	engine    *gin.Engine
	jwt       pkgauth.JWTService
	physician *model.User
	other     *model.User
	desk      *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	physician := &model.User{
		Base:     model.Base{ID: uuid.New()},
		Username: "h.benali",
		Role:     model.RolePhysician,
		IsActive: true,
	}
	other := &model.User{
		Base:     model.Base{ID: uuid.New()},
		Username: "f.alaoui",
		Role:     model.RolePhysician,
		IsActive: true,
	}
	desk := &model.User{
		Base:     model.Base{ID: uuid.New()},
		Username: "s.accueil",
		Role:     model.RoleFrontDesk,
		IsActive: true,
	}

	repo := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		physician.ID: physician,
		other.ID:     other,
		desk.ID:      desk,
	}}
	svc := usersvc.NewService(repo, &fakeSpecialtyRepo{}, t.TempDir(), zerolog.Nop())

	jwt := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        "test-access-secret",
		RefreshSecret: "test-refresh-secret",
	})
	authMW := middleware.NewAuthMiddleware(jwt)

	engine := gin.New()
	h := NewHandler(svc, validator.New(), authMW)
	h.RegisterRoutes(engine.Group("/api/v1"))

	return &fixture{
		engine:    engine,
		jwt:       jwt,
		physician: physician,
		other:     other,
		desk:      desk,
	}
}

func (f *fixture) get(t *testing.T, path string, as *model.User) *httptest.ResponseRecorder {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(as.ID, as.Username, string(as.Role))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeUsers(t *testing.T, w *httptest.ResponseRecorder) []*model.UserView {
	t.Helper()
	var body struct {
		Status string            `json:"status"`
		Data   []*model.UserView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestListPhysiciansScopesPhysicianToSelf(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/api/v1/physicians", f.physician)
	require.Equal(t, http.StatusOK, w.Code)

	views := decodeUsers(t, w)
	require.Len(t, views, 1)
	assert.Equal(t, "h.benali", views[0].Username)
}

func TestListPhysiciansReturnsAllForStaff(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/api/v1/physicians", f.desk)
	require.Equal(t, http.StatusOK, w.Code)

	views := decodeUsers(t, w)
	assert.Len(t, views, 2)
}

func TestListScopesPhysicianToSelf(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/api/v1/users", f.physician)
	require.Equal(t, http.StatusOK, w.Code)

	views := decodeUsers(t, w)
	require.Len(t, views, 1)
	assert.Equal(t, "h.benali", views[0].Username)
}
