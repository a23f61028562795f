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

const referralColumns = `
	id, patient_id, insurance_id, doctor_id, intervention_type_id,
	urgency_level_id, consultation_reason, medical_history, referring_doctor,
	establishment, room_number, target_specialty, notes, status,
	created_at, updated_at
`

func (r *referralRepository) Create(ctx context.Context, ref *model.Referral) error {
	query := `
		INSERT INTO referrals (
			id, patient_id, insurance_id, doctor_id, intervention_type_id,
			urgency_level_id, consultation_reason, medical_history, referring_doctor,
			establishment, room_number, target_specialty, notes, status,
			created_at, updated_at
		) VALUES (
			:id, :patient_id, :insurance_id, :doctor_id, :intervention_type_id,
			:urgency_level_id, :consultation_reason, :medical_history, :referring_doctor,
			:establishment, :room_number, :target_specialty, :notes, :status,
			:created_at, :updated_at
		)
	`
	ref.ID = uuid.New()
	ref.CreatedAt = time.Now()
	ref.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, ref); err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *referralRepository) Get(ctx context.Context, id uuid.UUID) (*model.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE id = $1`

	var ref model.Referral
	if err := r.db.GetContext(ctx, &ref, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("referral", err)
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &ref, nil
}

func (r *referralRepository) List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DoctorID != nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, *filters.DoctorID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.From != nil {
			query += fmt.Sprintf(" AND created_at >= $%d", argCount)
			args = append(args, *filters.From)
			argCount++
		}
		if filters.To != nil {
			query += fmt.Sprintf(" AND created_at <= $%d", argCount)
			args = append(args, *filters.To)
			argCount++
		}
	}

	query += " ORDER BY created_at DESC"

	var referrals []*model.Referral
	if err := r.db.SelectContext(ctx, &referrals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}

func (r *referralRepository) Update(ctx context.Context, ref *model.Referral) error {
	query := `
		UPDATE referrals SET
			patient_id = :patient_id, insurance_id = :insurance_id,
			doctor_id = :doctor_id, intervention_type_id = :intervention_type_id,
			urgency_level_id = :urgency_level_id,
			consultation_reason = :consultation_reason,
			medical_history = :medical_history,
			referring_doctor = :referring_doctor, establishment = :establishment,
			room_number = :room_number, target_specialty = :target_specialty,
			notes = :notes, status = :status, updated_at = :updated_at
		WHERE id = :id
	`
	ref.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, ref)
	if err != nil {
		return fmt.Errorf("failed to update referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("referral", nil)
	}
	return nil
}

func (r *referralRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM referrals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("referral", nil)
	}
	return nil
}

// rangeClause appends created_at bounds shared by the stats queries.
func rangeClause(query string, args []interface{}, from, to *time.Time) (string, []interface{}) {
	argCount := len(args) + 1
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, *from)
		argCount++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argCount)
		args = append(args, *to)
	}
	return query, args
}

func (r *referralRepository) CountByDay(ctx context.Context, from, to *time.Time) ([]*model.StatsPoint, error) {
	query := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS date,
		       COUNT(*) AS referrals,
		       COUNT(*) FILTER (WHERE status = 'accepted') AS confirmed
		FROM referrals WHERE 1=1`
	args := []interface{}{}
	query, args = rangeClause(query, args, from, to)
	query += ` GROUP BY created_at::date ORDER BY created_at::date`

	var points []*model.StatsPoint
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count referrals by day: %w", err)
	}
	return points, nil
}

func (r *referralRepository) CountByDoctor(ctx context.Context, from, to *time.Time) ([]*model.StatsBucket, error) {
	query := `
		SELECT COALESCE(u.username, '—') AS name, COUNT(*) AS value
		FROM referrals ref
		LEFT JOIN users u ON u.id = ref.doctor_id
		WHERE 1=1`
	args := []interface{}{}
	query, args = statsRange(query, args, from, to, "ref")
	query += ` GROUP BY u.username ORDER BY value DESC`

	var buckets []*model.StatsBucket
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count referrals by doctor: %w", err)
	}
	return buckets, nil
}

func (r *referralRepository) CountBySpecialty(ctx context.Context, from, to *time.Time) ([]*model.StatsBucket, error) {
	query := `
		SELECT COALESCE(it.name_fr, 'Non défini') AS name, COUNT(*) AS value
		FROM referrals ref
		LEFT JOIN intervention_types it ON it.id = ref.intervention_type_id
		WHERE 1=1`
	args := []interface{}{}
	query, args = statsRange(query, args, from, to, "ref")
	query += ` GROUP BY it.name_fr ORDER BY value DESC`

	var buckets []*model.StatsBucket
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count referrals by specialty: %w", err)
	}
	return buckets, nil
}

func (r *referralRepository) CountByInsurance(ctx context.Context, from, to *time.Time) ([]*model.StatsBucket, error) {
	query := `
		SELECT COALESCE(i.provider, '—') AS name, COUNT(*) AS value
		FROM referrals ref
		LEFT JOIN insurances i ON i.id = ref.insurance_id
		WHERE 1=1`
	args := []interface{}{}
	query, args = statsRange(query, args, from, to, "ref")
	query += ` GROUP BY i.provider ORDER BY value DESC`

	var buckets []*model.StatsBucket
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count referrals by insurance: %w", err)
	}
	return buckets, nil
}

func (r *referralRepository) Count(ctx context.Context, from, to *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM referrals WHERE 1=1`
	args := []interface{}{}
	query, args = rangeClause(query, args, from, to)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

func (r *referralRepository) CountByStatus(ctx context.Context, status model.ReferralStatus, from, to *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM referrals WHERE status = $1`
	args := []interface{}{status}
	query, args = rangeClause(query, args, from, to)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count referrals by status: %w", err)
	}
	return count, nil
}

func (r *referralRepository) Facets(ctx context.Context, from, to *time.Time) (*model.StatsFacets, error) {
	facets := &model.StatsFacets{
		Doctors:     []string{},
		Specialties: []string{},
		Insurances:  []string{},
	}

	query := `
		SELECT DISTINCT u.username FROM referrals ref
		JOIN users u ON u.id = ref.doctor_id WHERE 1=1`
	args := []interface{}{}
	query, args = statsRange(query, args, from, to, "ref")
	if err := r.db.SelectContext(ctx, &facets.Doctors, query+` ORDER BY u.username`, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctor facets: %w", err)
	}

	query = `
		SELECT DISTINCT it.name_fr FROM referrals ref
		JOIN intervention_types it ON it.id = ref.intervention_type_id WHERE 1=1`
	args = []interface{}{}
	query, args = statsRange(query, args, from, to, "ref")
	if err := r.db.SelectContext(ctx, &facets.Specialties, query+` ORDER BY it.name_fr`, args...); err != nil {
		return nil, fmt.Errorf("failed to list specialty facets: %w", err)
	}

	query = `
		SELECT DISTINCT i.provider FROM referrals ref
		JOIN insurances i ON i.id = ref.insurance_id WHERE 1=1`
	args = []interface{}{}
	query, args = statsRange(query, args, from, to, "ref")
	if err := r.db.SelectContext(ctx, &facets.Insurances, query+` ORDER BY i.provider`, args...); err != nil {
		return nil, fmt.Errorf("failed to list insurance facets: %w", err)
	}

	return facets, nil
}

// statsRange is rangeClause with a table alias for joined queries.
func statsRange(query string, args []interface{}, from, to *time.Time, alias string) (string, []interface{}) {
	argCount := len(args) + 1
	if from != nil {
		query += fmt.Sprintf(" AND %s.created_at >= $%d", alias, argCount)
		args = append(args, *from)
		argCount++
	}
	if to != nil {
		query += fmt.Sprintf(" AND %s.created_at <= $%d", alias, argCount)
		args = append(args, *to)
	}
	return query, args
}
