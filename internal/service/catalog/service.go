package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 15 * time.Minute
)

// Service serves the catalog entities (rooms, appointment types,
// intervention types, urgency levels) and resolves the id-or-name values
// the referral workflow accepts. Lookups run on every referral create, so
// list results are cached briefly.
type Service struct {
	repo  repository.CatalogRepository
	cache *cache.Cache
}

func NewService(repo repository.CatalogRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return s.repo.ListRooms(ctx)
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *Service) CreateRoom(ctx context.Context, room *model.Room) error {
	return s.repo.CreateRoom(ctx, room)
}

func (s *Service) UpdateRoom(ctx context.Context, room *model.Room) error {
	return s.repo.UpdateRoom(ctx, room)
}

func (s *Service) DeleteRoom(ctx context.Context, id int64) error {
	return s.repo.DeleteRoom(ctx, id)
}

func (s *Service) ListAppointmentTypes(ctx context.Context) ([]*model.AppointmentType, error) {
	return s.repo.ListAppointmentTypes(ctx)
}

func (s *Service) GetAppointmentType(ctx context.Context, id int64) (*model.AppointmentType, error) {
	return s.repo.GetAppointmentType(ctx, id)
}

func (s *Service) CreateAppointmentType(ctx context.Context, t *model.AppointmentType) error {
	return s.repo.CreateAppointmentType(ctx, t)
}

func (s *Service) UpdateAppointmentType(ctx context.Context, t *model.AppointmentType) error {
	return s.repo.UpdateAppointmentType(ctx, t)
}

func (s *Service) DeleteAppointmentType(ctx context.Context, id int64) error {
	return s.repo.DeleteAppointmentType(ctx, id)
}

func (s *Service) ListInterventionTypes(ctx context.Context) ([]*model.InterventionType, error) {
	if cached, ok := s.cache.Get("intervention_types"); ok {
		return cached.([]*model.InterventionType), nil
	}
	types, err := s.repo.ListInterventionTypes(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault("intervention_types", types)
	return types, nil
}

func (s *Service) GetInterventionType(ctx context.Context, id int64) (*model.InterventionType, error) {
	return s.repo.GetInterventionType(ctx, id)
}

func (s *Service) ListUrgencyLevels(ctx context.Context) ([]*model.UrgencyLevel, error) {
	if cached, ok := s.cache.Get("urgency_levels"); ok {
		return cached.([]*model.UrgencyLevel), nil
	}
	levels, err := s.repo.ListUrgencyLevels(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault("urgency_levels", levels)
	return levels, nil
}

func (s *Service) GetUrgencyLevel(ctx context.Context, id int64) (*model.UrgencyLevel, error) {
	return s.repo.GetUrgencyLevel(ctx, id)
}

// ResolveInterventionType resolves an id-or-name value: numeric id first;
// otherwise exact case-insensitive match on the French then English name.
// No match leaves the field unset rather than failing.
func (s *Service) ResolveInterventionType(ctx context.Context, value string) (*model.InterventionType, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		t, err := s.repo.GetInterventionType(ctx, id)
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve intervention type: %w", err)
		}
		return t, nil
	}
	t, err := s.repo.FindInterventionTypeByName(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve intervention type: %w", err)
	}
	return t, nil
}

// ResolveUrgencyLevel follows the same id-then-name discipline.
func (s *Service) ResolveUrgencyLevel(ctx context.Context, value string) (*model.UrgencyLevel, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		u, err := s.repo.GetUrgencyLevel(ctx, id)
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve urgency level: %w", err)
		}
		return u, nil
	}
	u, err := s.repo.FindUrgencyLevelByName(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve urgency level: %w", err)
	}
	return u, nil
}

// isNotFound reports whether err is a missing-row error, as opposed to a
// database failure that must propagate.
func isNotFound(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrNotFound
}
