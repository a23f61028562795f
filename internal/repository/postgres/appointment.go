package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/model"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, patient_name, date, time, duration_minutes, status,
	room_id, type_id, doctor_id, phone, email, notes, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, patient_name, date, time, duration_minutes, status,
			room_id, type_id, doctor_id, phone, email, notes, created_at, updated_at
		) VALUES (
			:id, :patient_id, :patient_name, :date, :time, :duration_minutes, :status,
			:room_id, :type_id, :doctor_id, :phone, :email, :notes, :created_at, :updated_at
		)
	`
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, apt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DateFrom != nil {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, *filters.DateFrom)
			argCount++
		}
		if filters.DateTo != nil {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, *filters.DateTo)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.DoctorID != nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, *filters.DoctorID)
			argCount++
		}
		if filters.RoomID != nil {
			query += fmt.Sprintf(" AND room_id = $%d", argCount)
			args = append(args, *filters.RoomID)
			argCount++
		}
		if filters.Type != "" {
			// Id when numeric, FR/EN name fragment otherwise.
			if id, err := strconv.ParseInt(filters.Type, 10, 64); err == nil {
				query += fmt.Sprintf(" AND type_id = $%d", argCount)
				args = append(args, id)
				argCount++
			} else {
				query += fmt.Sprintf(` AND type_id IN (
					SELECT id FROM appointment_types
					WHERE name_fr ILIKE $%d OR name_en ILIKE $%d
				)`, argCount, argCount)
				args = append(args, "%"+filters.Type+"%")
				argCount++
			}
		}
	}

	query += " ORDER BY date DESC, time DESC, id DESC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments SET
			patient_id = :patient_id, patient_name = :patient_name,
			date = :date, time = :time, duration_minutes = :duration_minutes,
			status = :status, room_id = :room_id, type_id = :type_id,
			doctor_id = :doctor_id, phone = :phone, email = :email,
			notes = :notes, updated_at = :updated_at
		WHERE id = :id
	`
	apt.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, apt)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM appointments`); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
