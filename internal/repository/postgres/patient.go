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

const patientColumns = `
	id, first_name, last_name, birth_date, gender, phone, email,
	address, city, postal_code, created_at, updated_at
`

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// GetOrCreate resolves a patient by (first_name, last_name, birth_date),
// inserting one if absent. Under a concurrent insert for the same natural
// key, the unique index makes one writer lose; the loser re-reads and
// returns the winner's row. The second return value reports creation.
func (r *patientRepository) GetOrCreate(ctx context.Context, patient *model.Patient) (*model.Patient, bool, error) {
	existing, err := r.findByIdentity(ctx, patient.FirstName, patient.LastName, patient.BirthDate)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT INTO patients (
			id, first_name, last_name, birth_date, gender, phone, email,
			address, city, postal_code, created_at, updated_at
		) VALUES (
			:id, :first_name, :last_name, :birth_date, :gender, :phone, :email,
			:address, :city, :postal_code, :created_at, :updated_at
		)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		if isUniqueViolation(err) {
			winner, ferr := r.findByIdentity(ctx, patient.FirstName, patient.LastName, patient.BirthDate)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, true, nil
}

func (r *patientRepository) findByIdentity(ctx context.Context, first, last string, birth *time.Time) (*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE lower(first_name) = lower($1)
		AND lower(last_name) = lower($2)
		AND birth_date IS NOT DISTINCT FROM $3
		LIMIT 1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, first, last, birth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY last_name, first_name`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

const insuranceColumns = `
	id, provider, policy_number, coverage_type, expiration_date,
	holder_name, notes, created_at, updated_at
`

func (r *insuranceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Insurance, error) {
	query := `SELECT ` + insuranceColumns + ` FROM insurances WHERE id = $1`

	var ins model.Insurance
	if err := r.db.GetContext(ctx, &ins, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("insurance", err)
		}
		return nil, fmt.Errorf("failed to get insurance: %w", err)
	}
	return &ins, nil
}

// GetOrCreate resolves an insurance by (provider, policy_number), with the
// same race discipline as patients.
func (r *insuranceRepository) GetOrCreate(ctx context.Context, ins *model.Insurance) (*model.Insurance, bool, error) {
	existing, err := r.findByKey(ctx, ins.Provider, ins.PolicyNumber)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT INTO insurances (
			id, provider, policy_number, coverage_type, expiration_date,
			holder_name, notes, created_at, updated_at
		) VALUES (
			:id, :provider, :policy_number, :coverage_type, :expiration_date,
			:holder_name, :notes, :created_at, :updated_at
		)
	`
	ins.ID = uuid.New()
	ins.CreatedAt = time.Now()
	ins.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, ins); err != nil {
		if isUniqueViolation(err) {
			winner, ferr := r.findByKey(ctx, ins.Provider, ins.PolicyNumber)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create insurance: %w", err)
	}
	return ins, true, nil
}

func (r *insuranceRepository) findByKey(ctx context.Context, provider, policyNumber string) (*model.Insurance, error) {
	query := `
		SELECT ` + insuranceColumns + `
		FROM insurances
		WHERE lower(provider) = lower($1) AND policy_number = $2
		LIMIT 1
	`
	var ins model.Insurance
	err := r.db.GetContext(ctx, &ins, query, provider, policyNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find insurance: %w", err)
	}
	return &ins, nil
}

func (r *insuranceRepository) List(ctx context.Context) ([]*model.Insurance, error) {
	query := `SELECT ` + insuranceColumns + ` FROM insurances ORDER BY id`

	var list []*model.Insurance
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("failed to list insurances: %w", err)
	}
	return list, nil
}
