package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasclinic/clinic-api/internal/model"
	"github.com/atlasclinic/clinic-api/internal/repository"
	"github.com/atlasclinic/clinic-api/pkg/auth"
	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInvalidRefresh     = errors.New("invalid refresh token")
)

// LoginRequest carries the credential pair plus the declared role. A
// physician presents a personnel code, every other role a password.
type LoginRequest struct {
	Username     string `json:"username" validate:"required"`
	Role         string `json:"role" validate:"required"`
	Password     string `json:"password"`
	PersonalCode string `json:"code_personnel"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginResult struct {
	TokenPair
	User *model.UserView `json:"user"`
}

// UpdateProfileRequest is the self-service profile mutation, including
// an optional password change for non-physician roles. A password change
// must present the current password alongside the new one.
type UpdateProfileRequest struct {
	Email         *string       `json:"email" validate:"omitempty,email"`
	FirstName     *string       `json:"first_name"`
	LastName      *string       `json:"last_name"`
	Phone         *string       `json:"phone"`
	Language      *string       `json:"language" validate:"omitempty,oneof=fr en"`
	Theme         *string       `json:"theme" validate:"omitempty,oneof=light dark auto"`
	Notifications model.JSONMap `json:"notifications"`
	OldPassword   *string       `json:"old_password"`
	Password      *string       `json:"new_password"`
}

type Service struct {
	users  repository.UserRepository
	jwt    auth.JWTService
	logger zerolog.Logger
}

func NewService(users repository.UserRepository, jwt auth.JWTService, logger zerolog.Logger) *Service {
	return &Service{users: users, jwt: jwt, logger: logger}
}

// Login authenticates a staff account. The declared role must match the
// stored one; credential verification is selected by role. All failure
// modes collapse into the same unauthorized error.
func (s *Service) Login(ctx context.Context, req *LoginRequest, lang i18n.Lang) (*LoginResult, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.Unauthorized(errInvalidCredentials)
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil || user == nil || !user.IsActive || user.Role != role {
		s.logger.Warn().Str("username", req.Username).Msg("login rejected")
		return nil, apperrors.Unauthorized(errInvalidCredentials)
	}

	if !s.verifyCredential(user, req) {
		s.logger.Warn().Str("username", req.Username).Msg("login rejected")
		return nil, apperrors.Unauthorized(errInvalidCredentials)
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &LoginResult{
		TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh},
		User:      user.View(lang),
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair, re-reading
// the account so revoked or deactivated users drop out immediately.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(errInvalidRefresh)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil || user == nil || !user.IsActive {
		return nil, apperrors.Unauthorized(errInvalidRefresh)
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Me returns the authenticated account.
func (s *Service) Me(ctx context.Context, userID uuid.UUID, lang i18n.Lang) (*model.UserView, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.View(lang), nil
}

// UpdateMe applies the self-service profile mutation. Role, username and
// personnel code are not reachable from here.
func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest, lang i18n.Lang) (*model.UserView, error) {
	user, err := s.users.Get(ctx, userID)
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
	if req.Language != nil {
		user.Language = *req.Language
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	if req.Notifications != nil {
		user.Notifications = req.Notifications
	}

	if req.Password != nil {
		if user.Role == model.RolePhysician {
			return nil, apperrors.Validation(map[string]string{
				"new_password": "physicians authenticate with a personnel code",
			})
		}
		if req.OldPassword == nil || *req.OldPassword == "" {
			return nil, apperrors.Validation(map[string]string{
				"old_password": "old_password is required to change the password",
			})
		}
		if user.PasswordHash == nil ||
			bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(*req.OldPassword)) != nil {
			return nil, apperrors.Validation(map[string]string{
				"old_password": "old password is incorrect",
			})
		}
		if len(*req.Password) < 8 {
			return nil, apperrors.Validation(map[string]string{
				"new_password": "password must be at least 8 characters",
			})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		hashed := string(hash)
		user.PasswordHash = &hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.View(lang), nil
}

func (s *Service) verifyCredential(user *model.User, req *LoginRequest) bool {
	if user.Role == model.RolePhysician {
		if user.CodePersonnel == nil || req.PersonalCode == "" {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(*user.CodePersonnel), []byte(req.PersonalCode)) == 1
	}
	if user.PasswordHash == nil || req.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) == nil
}
