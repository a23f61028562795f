package user

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

type Service struct {
	repo        repository.UserRepository
	specialties repository.SpecialtyRepository
	uploadDir   string
	logger      zerolog.Logger
}

func NewService(repo repository.UserRepository, specialties repository.SpecialtyRepository, uploadDir string, logger zerolog.Logger) *Service {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Service{repo: repo, specialties: specialties, uploadDir: uploadDir, logger: logger}
}

// Create provisions a staff account. The credential field is selected by
// role: physicians carry a personnel code and never a password, everyone
// else the reverse. A missing username is derived from the name.
func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest, lang i18n.Lang) (*model.UserView, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.Validation(map[string]string{"role": err.Error()})
	}

	user := &model.User{
		Email:         req.Email,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Role:          role,
		Phone:         req.Phone,
		Department:    req.Department,
		Language:      string(i18n.French),
		Theme:         "light",
		Notifications: model.DefaultNotificationPrefs(),
		IsActive:      true,
	}

	if role == model.RolePhysician {
		code := strings.TrimSpace(req.CodePersonnel)
		if code == "" {
			return nil, apperrors.Validation(map[string]string{"code_personnel": "code_personnel is required for physicians"})
		}
		user.CodePersonnel = &code
		user.SpecialtyID = req.SpecialtyID
	} else {
		if len(req.Password) < 8 {
			return nil, apperrors.Validation(map[string]string{"password": "password must be at least 8 characters"})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		hashed := string(hash)
		user.PasswordHash = &hashed
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username, err = s.generateUsername(ctx, user.FirstName, user.LastName)
		if err != nil {
			return nil, err
		}
	}
	user.Username = username

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.attachSpecialty(ctx, user)
	return user.View(lang), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, lang i18n.Lang) (*model.UserView, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.View(lang), nil
}

// List returns staff accounts, optionally scoped to one role.
func (s *Service) List(ctx context.Context, roleFilter string, lang i18n.Lang) ([]*model.UserView, error) {
	var (
		users []*model.User
		err   error
	)
	if roleFilter != "" {
		role, perr := model.ParseRole(roleFilter)
		if perr != nil {
			return nil, apperrors.Validation(map[string]string{"role": perr.Error()})
		}
		users, err = s.repo.ListByRole(ctx, role)
	} else {
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	views := make([]*model.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View(lang))
	}
	return views, nil
}

// ListPhysicians backs the doctor picker on the intake forms.
func (s *Service) ListPhysicians(ctx context.Context, lang i18n.Lang) ([]*model.UserView, error) {
	return s.List(ctx, string(model.RolePhysician), lang)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest, lang i18n.Lang) (*model.UserView, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.SpecialtyID != nil {
		if user.Role != model.RolePhysician {
			return nil, apperrors.Validation(map[string]string{"specialty_id": "only physicians carry a specialty"})
		}
		user.SpecialtyID = req.SpecialtyID
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.MedicalLicense != nil {
		user.MedicalLicense = *req.MedicalLicense
	}
	if req.HireDate != nil {
		user.HireDate = req.HireDate
	}
	if req.Position != nil {
		user.Position = *req.Position
	}
	if req.Language != nil {
		user.Language = *req.Language
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	if req.Notifications != nil {
		user.Notifications = req.Notifications
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.attachSpecialty(ctx, user)
	return user.View(lang), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// SavePhoto stores an uploaded profile photo on disk and records its
// public URL on the account.
func (s *Service) SavePhoto(ctx context.Context, id uuid.UUID, filename string, data []byte) (*model.UserView, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return nil, apperrors.Validation(map[string]string{"photo": "photo must be a jpg, png or webp image"})
	}

	dir := filepath.Join(s.uploadDir, "photos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Internal(err)
	}
	name := id.String() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return nil, apperrors.Internal(err)
	}

	user.PhotoURL = "/uploads/photos/" + name
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.View(i18n.Lang(user.Language)), nil
}

// generateUsername derives a unique first.last slug, suffixing a counter
// on collision.
func (s *Service) generateUsername(ctx context.Context, first, last string) (string, error) {
	base := slug(first)
	if l := slug(last); l != "" {
		if base != "" {
			base += "."
		}
		base += l
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func slug(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '\'':
			// dropped
		}
	}
	return b.String()
}

func (s *Service) attachSpecialty(ctx context.Context, user *model.User) {
	if user.SpecialtyID == nil {
		return
	}
	if sp, err := s.specialties.Get(ctx, *user.SpecialtyID); err == nil {
		user.Specialty = sp
	}
}
