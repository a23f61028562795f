package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/model"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

const notificationColumns = `
	id, doctor_id, patient, ref_by, room_id, intervention_type_id,
	appt_at, status, message, notes, created_at
`

func (r *notificationRepository) Create(ctx context.Context, n *model.ArrivalNotification) error {
	query := `
		INSERT INTO arrival_notifications (
			id, doctor_id, patient, ref_by, room_id, intervention_type_id,
			appt_at, status, message, notes, created_at
		) VALUES (
			:id, :doctor_id, :patient, :ref_by, :room_id, :intervention_type_id,
			:appt_at, :status, :message, :notes, :created_at
		)
	`
	n.ID = uuid.New()
	n.CreatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("failed to create arrival notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.ArrivalNotification, error) {
	query := `SELECT ` + notificationColumns + ` FROM arrival_notifications WHERE id = $1`

	var n model.ArrivalNotification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("notification", err)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	r.attachRelations(ctx, &n)
	return &n, nil
}

func (r *notificationRepository) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.ArrivalNotification, error) {
	query := `SELECT ` + notificationColumns + ` FROM arrival_notifications WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DoctorID != nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, *filters.DoctorID)
			argCount++
		}
		if filters.Intervention != "" {
			query += fmt.Sprintf(` AND intervention_type_id IN (
				SELECT id FROM intervention_types
				WHERE name_fr ILIKE $%d OR name_en ILIKE $%d
			)`, argCount, argCount)
			args = append(args, "%"+filters.Intervention+"%")
			argCount++
		}
	}

	query += " ORDER BY created_at DESC"

	var notifications []*model.ArrivalNotification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	for _, n := range notifications {
		r.attachRelations(ctx, n)
	}
	return notifications, nil
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE arrival_notifications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification", nil)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, filters *model.NotificationFilters) (int, error) {
	query := `UPDATE arrival_notifications SET status = 'read' WHERE status != 'read'`
	args := []interface{}{}
	if filters != nil && filters.DoctorID != nil {
		query += ` AND doctor_id = $1`
		args = append(args, *filters.DoctorID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}

// attachRelations loads the room and intervention type used for localized
// labels; missing relations are not errors.
func (r *notificationRepository) attachRelations(ctx context.Context, n *model.ArrivalNotification) {
	if n.RoomID != nil {
		var room model.Room
		if err := r.db.GetContext(ctx, &room,
			`SELECT id, name_fr, name_en, status FROM rooms WHERE id = $1`, *n.RoomID); err == nil {
			n.Room = &room
		}
	}
	if n.InterventionTypeID != nil {
		var t model.InterventionType
		if err := r.db.GetContext(ctx, &t, `
			SELECT id, name_fr, name_en, description_fr, description_en
			FROM intervention_types WHERE id = $1`, *n.InterventionTypeID); err == nil {
			n.InterventionType = &t
		}
	}
}
