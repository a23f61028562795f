package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atlasclinic/clinic-api/internal/model"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

func (r *catalogRepository) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	var room model.Room
	err := r.db.GetContext(ctx, &room,
		`SELECT id, name_fr, name_en, status FROM rooms WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("room", err)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

func (r *catalogRepository) ListRooms(ctx context.Context) ([]*model.Room, error) {
	var rooms []*model.Room
	err := r.db.SelectContext(ctx, &rooms,
		`SELECT id, name_fr, name_en, status FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (r *catalogRepository) CreateRoom(ctx context.Context, room *model.Room) error {
	if room.Status == "" {
		room.Status = model.RoomStatusAvailable
	}
	err := r.db.GetContext(ctx, &room.ID,
		`INSERT INTO rooms (name_fr, name_en, status) VALUES ($1, $2, $3) RETURNING id`,
		room.NameFR, room.NameEN, room.Status)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateRoom(ctx context.Context, room *model.Room) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name_fr = $1, name_en = $2, status = $3 WHERE id = $4`,
		room.NameFR, room.NameEN, room.Status, room.ID)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return requireRow(result, "room")
}

func (r *catalogRepository) UpdateRoomStatus(ctx context.Context, id int64, status model.RoomStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	return requireRow(result, "room")
}

func (r *catalogRepository) DeleteRoom(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return requireRow(result, "room")
}

func (r *catalogRepository) GetAppointmentType(ctx context.Context, id int64) (*model.AppointmentType, error) {
	var t model.AppointmentType
	err := r.db.GetContext(ctx, &t,
		`SELECT id, name_fr, name_en FROM appointment_types WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment type", err)
		}
		return nil, fmt.Errorf("failed to get appointment type: %w", err)
	}
	return &t, nil
}

func (r *catalogRepository) ListAppointmentTypes(ctx context.Context) ([]*model.AppointmentType, error) {
	var types []*model.AppointmentType
	err := r.db.SelectContext(ctx, &types,
		`SELECT id, name_fr, name_en FROM appointment_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment types: %w", err)
	}
	return types, nil
}

func (r *catalogRepository) CreateAppointmentType(ctx context.Context, t *model.AppointmentType) error {
	err := r.db.GetContext(ctx, &t.ID,
		`INSERT INTO appointment_types (name_fr, name_en) VALUES ($1, $2) RETURNING id`,
		t.NameFR, t.NameEN)
	if err != nil {
		return fmt.Errorf("failed to create appointment type: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateAppointmentType(ctx context.Context, t *model.AppointmentType) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE appointment_types SET name_fr = $1, name_en = $2 WHERE id = $3`,
		t.NameFR, t.NameEN, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update appointment type: %w", err)
	}
	return requireRow(result, "appointment type")
}

func (r *catalogRepository) DeleteAppointmentType(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointment_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment type: %w", err)
	}
	return requireRow(result, "appointment type")
}

func (r *catalogRepository) GetInterventionType(ctx context.Context, id int64) (*model.InterventionType, error) {
	var t model.InterventionType
	err := r.db.GetContext(ctx, &t, `
		SELECT id, name_fr, name_en, description_fr, description_en
		FROM intervention_types WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("intervention type", err)
		}
		return nil, fmt.Errorf("failed to get intervention type: %w", err)
	}
	return &t, nil
}

func (r *catalogRepository) ListInterventionTypes(ctx context.Context) ([]*model.InterventionType, error) {
	var types []*model.InterventionType
	err := r.db.SelectContext(ctx, &types, `
		SELECT id, name_fr, name_en, description_fr, description_en
		FROM intervention_types ORDER BY name_fr`)
	if err != nil {
		return nil, fmt.Errorf("failed to list intervention types: %w", err)
	}
	return types, nil
}

// FindInterventionTypeByName matches exactly and case-insensitively, French
// name first, then English. No match returns (nil, nil).
func (r *catalogRepository) FindInterventionTypeByName(ctx context.Context, name string) (*model.InterventionType, error) {
	var t model.InterventionType
	err := r.db.GetContext(ctx, &t, `
		SELECT id, name_fr, name_en, description_fr, description_en
		FROM intervention_types
		WHERE lower(name_fr) = lower($1) OR lower(name_en) = lower($1)
		ORDER BY (lower(name_fr) = lower($1)) DESC
		LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find intervention type: %w", err)
	}
	return &t, nil
}

func (r *catalogRepository) GetUrgencyLevel(ctx context.Context, id int64) (*model.UrgencyLevel, error) {
	var u model.UrgencyLevel
	err := r.db.GetContext(ctx, &u, `
		SELECT id, name_fr, name_en, color, priority
		FROM urgency_levels WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("urgency level", err)
		}
		return nil, fmt.Errorf("failed to get urgency level: %w", err)
	}
	return &u, nil
}

func (r *catalogRepository) ListUrgencyLevels(ctx context.Context) ([]*model.UrgencyLevel, error) {
	var levels []*model.UrgencyLevel
	err := r.db.SelectContext(ctx, &levels, `
		SELECT id, name_fr, name_en, color, priority
		FROM urgency_levels ORDER BY priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to list urgency levels: %w", err)
	}
	return levels, nil
}

func (r *catalogRepository) FindUrgencyLevelByName(ctx context.Context, name string) (*model.UrgencyLevel, error) {
	var u model.UrgencyLevel
	err := r.db.GetContext(ctx, &u, `
		SELECT id, name_fr, name_en, color, priority
		FROM urgency_levels
		WHERE lower(name_fr) = lower($1) OR lower(name_en) = lower($1)
		ORDER BY (lower(name_fr) = lower($1)) DESC
		LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find urgency level: %w", err)
	}
	return &u, nil
}

func requireRow(result sql.Result, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}
