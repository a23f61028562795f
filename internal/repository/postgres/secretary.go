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

const secretaryColumns = `
	id, referral_id, patient, medecin, intervention, date, assurance,
	statut, priorite, phone, email, internal_notes, created_at, updated_at
`

func (r *secretaryReferralRepository) Create(ctx context.Context, row *model.SecretaryReferral) error {
	query := `
		INSERT INTO secretary_referrals (
			id, referral_id, patient, medecin, intervention, date, assurance,
			statut, priorite, phone, email, internal_notes, created_at, updated_at
		) VALUES (
			:id, :referral_id, :patient, :medecin, :intervention, :date, :assurance,
			:statut, :priorite, :phone, :email, :internal_notes, :created_at, :updated_at
		)
	`
	row.ID = uuid.New()
	row.CreatedAt = time.Now()
	row.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to create secretary referral: %w", err)
	}
	return nil
}

func (r *secretaryReferralRepository) GetByReferral(ctx context.Context, referralID uuid.UUID) (*model.SecretaryReferral, error) {
	query := `SELECT ` + secretaryColumns + ` FROM secretary_referrals WHERE referral_id = $1`

	var row model.SecretaryReferral
	if err := r.db.GetContext(ctx, &row, query, referralID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("secretary referral", err)
		}
		return nil, fmt.Errorf("failed to get secretary referral: %w", err)
	}
	return &row, nil
}

func (r *secretaryReferralRepository) List(ctx context.Context) ([]*model.SecretaryReferral, error) {
	query := `SELECT ` + secretaryColumns + ` FROM secretary_referrals ORDER BY date DESC`

	var rows []*model.SecretaryReferral
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list secretary referrals: %w", err)
	}
	return rows, nil
}

func (r *secretaryReferralRepository) UpdateByReferral(ctx context.Context, row *model.SecretaryReferral) error {
	query := `
		UPDATE secretary_referrals SET
			patient = :patient, medecin = :medecin, intervention = :intervention,
			date = :date, assurance = :assurance, statut = :statut,
			priorite = :priorite, phone = :phone, email = :email,
			internal_notes = :internal_notes, updated_at = :updated_at
		WHERE referral_id = :referral_id
	`
	row.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to update secretary referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("secretary referral", nil)
	}
	return nil
}

func (r *secretaryReferralRepository) DeleteByReferral(ctx context.Context, referralID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM secretary_referrals WHERE referral_id = $1`, referralID); err != nil {
		return fmt.Errorf("failed to delete secretary referral: %w", err)
	}
	return nil
}
