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

const userColumns = `
	id, username, email, first_name, last_name, role, code_personnel,
	password_hash, phone, specialty_id, department, medical_license,
	hire_date, position, language, theme, photo_url, notifications,
	is_active, created_at, updated_at
`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, username, email, first_name, last_name, role, code_personnel,
			password_hash, phone, specialty_id, department, medical_license,
			hire_date, position, language, theme, photo_url, notifications,
			is_active, created_at, updated_at
		) VALUES (
			:id, :username, :email, :first_name, :last_name, :role, :code_personnel,
			:password_hash, :phone, :specialty_id, :department, :medical_license,
			:hire_date, :position, :language, :theme, :photo_url, :notifications,
			:is_active, :created_at, :updated_at
		)
	`
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("username or code_personnel already in use", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	r.attachSpecialty(ctx, &user)
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	r.attachSpecialty(ctx, &user)
	return &user, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY last_name, first_name`

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		r.attachSpecialty(ctx, u)
	}
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY last_name, first_name`

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	for _, u := range users {
		r.attachSpecialty(ctx, u)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			email = :email, first_name = :first_name, last_name = :last_name,
			role = :role, code_personnel = :code_personnel,
			password_hash = :password_hash, phone = :phone,
			specialty_id = :specialty_id, department = :department,
			medical_license = :medical_license, hire_date = :hire_date,
			position = :position, language = :language, theme = :theme,
			photo_url = :photo_url, notifications = :notifications,
			is_active = :is_active, updated_at = :updated_at
		WHERE id = :id
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user", nil)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user", nil)
	}
	return nil
}

// attachSpecialty loads the joined specialty; a missing row is not an error.
func (r *userRepository) attachSpecialty(ctx context.Context, user *model.User) {
	if user.SpecialtyID == nil {
		return
	}
	var sp model.Specialty
	err := r.db.GetContext(ctx, &sp,
		`SELECT id, name_fr, name_en, is_active FROM specialties WHERE id = $1`, *user.SpecialtyID)
	if err == nil {
		user.Specialty = &sp
	}
}

func (r *specialtyRepository) Get(ctx context.Context, id int64) (*model.Specialty, error) {
	var sp model.Specialty
	err := r.db.GetContext(ctx, &sp,
		`SELECT id, name_fr, name_en, is_active FROM specialties WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("specialty", err)
		}
		return nil, fmt.Errorf("failed to get specialty: %w", err)
	}
	return &sp, nil
}

func (r *specialtyRepository) ListActive(ctx context.Context) ([]*model.Specialty, error) {
	var specs []*model.Specialty
	err := r.db.SelectContext(ctx, &specs,
		`SELECT id, name_fr, name_en, is_active FROM specialties WHERE is_active ORDER BY name_fr`)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specs, nil
}
