package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

type fakeCatalogRepo struct {
	repository.CatalogRepository
	interventions []*model.InterventionType
	urgencies     []*model.UrgencyLevel
	listCalls     int
	getErr        error
}

func (f *fakeCatalogRepo) GetInterventionType(_ context.Context, id int64) (*model.InterventionType, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, t := range f.interventions {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperrors.NotFound("intervention type", nil)
}

func (f *fakeCatalogRepo) FindInterventionTypeByName(_ context.Context, name string) (*model.InterventionType, error) {
	for _, t := range f.interventions {
		if strings.EqualFold(t.NameFR, name) || strings.EqualFold(t.NameEN, name) {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) GetUrgencyLevel(_ context.Context, id int64) (*model.UrgencyLevel, error) {
	for _, u := range f.urgencies {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("urgency level", nil)
}

func (f *fakeCatalogRepo) FindUrgencyLevelByName(_ context.Context, name string) (*model.UrgencyLevel, error) {
	for _, u := range f.urgencies {
		if strings.EqualFold(u.NameFR, name) || strings.EqualFold(u.NameEN, name) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) ListInterventionTypes(_ context.Context) ([]*model.InterventionType, error) {
	f.listCalls++
	return f.interventions, nil
}

func newFakeRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		interventions: []*model.InterventionType{
			{ID: 1, NameFR: "Chirurgie", NameEN: "Surgery"},
			{ID: 2, NameFR: "Consultation", NameEN: "Consultation"},
		},
		urgencies: []*model.UrgencyLevel{
			{ID: 1, NameFR: "Urgente", NameEN: "Urgent", Priority: 1},
			{ID: 2, NameFR: "Normale", NameEN: "Normal", Priority: 3},
		},
	}
}

func TestResolveInterventionTypeByID(t *testing.T) {
	svc := NewService(newFakeRepo())

	got, err := svc.ResolveInterventionType(context.Background(), "2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestResolveInterventionTypeByName(t *testing.T) {
	svc := NewService(newFakeRepo())

	got, err := svc.ResolveInterventionType(context.Background(), "surgery")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Chirurgie", got.NameFR)
}

func TestResolveInterventionTypeMissIsNotAnError(t *testing.T) {
	svc := NewService(newFakeRepo())

	got, err := svc.ResolveInterventionType(context.Background(), "acupuncture")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.ResolveInterventionType(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.ResolveInterventionType(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveInterventionTypePropagatesDBError(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("connection reset")
	svc := NewService(repo)

	_, err := svc.ResolveInterventionType(context.Background(), "2")
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
}

func TestResolveUrgencyLevel(t *testing.T) {
	svc := NewService(newFakeRepo())

	got, err := svc.ResolveUrgencyLevel(context.Background(), "urgent")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)

	got, err = svc.ResolveUrgencyLevel(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListInterventionTypesIsCached(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.ListInterventionTypes(context.Background())
	require.NoError(t, err)
	_, err = svc.ListInterventionTypes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
}
