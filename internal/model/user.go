package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

// Role is the closed set of staff roles. Legacy lowercase French names from
// the previous system are accepted as aliases on input and normalized here.
type Role string

const (
	RolePhysician  Role = "PHYSICIAN"
	RoleFrontDesk  Role = "FRONTDESK"
	RoleManagement Role = "MANAGEMENT"
)

// ParseRole normalizes a raw role string into the closed enum.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PHYSICIAN", "MEDECIN":
		return RolePhysician, nil
	case "FRONTDESK", "SECRETAIRE", "SECRETARY":
		return RoleFrontDesk, nil
	case "MANAGEMENT", "DIRECTION":
		return RoleManagement, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Specialty is a bilingual physician specialty.
type Specialty struct {
	ID       int64  `json:"id" db:"id"`
	NameFR   string `json:"name_fr" db:"name_fr"`
	NameEN   string `json:"name_en" db:"name_en"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// SpecialtyView is the localized read shape.
type SpecialtyView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameFR string `json:"name_fr"`
	NameEN string `json:"name_en"`
}

func (s *Specialty) Localize(lang i18n.Lang) *SpecialtyView {
	if s == nil {
		return nil
	}
	return &SpecialtyView{
		ID:     s.ID,
		Name:   i18n.Pick(lang, s.NameFR, s.NameEN),
		NameFR: s.NameFR,
		NameEN: s.NameEN,
	}
}

// User represents a staff account. Exactly one of {CodePersonnel,
// PasswordHash} is populated, selected by role: physicians authenticate with
// a personnel code, the other roles with a password.
type User struct {
	Base
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	Role           Role       `json:"role" db:"role"`
	CodePersonnel  *string    `json:"-" db:"code_personnel"`
	PasswordHash   *string    `json:"-" db:"password_hash"`
	Phone          string     `json:"phone" db:"phone"`
	SpecialtyID    *int64     `json:"specialty_id" db:"specialty_id"`
	Specialty      *Specialty `json:"-" db:"-"`
	Department     string     `json:"department" db:"department"`
	MedicalLicense string     `json:"medical_license" db:"medical_license"`
	HireDate       *time.Time `json:"hire_date" db:"hire_date"`
	Position       string     `json:"position" db:"position"`
	Language       string     `json:"language" db:"language"`
	Theme          string     `json:"theme" db:"theme"`
	PhotoURL       string     `json:"photo_url" db:"photo_url"`
	Notifications  JSONMap    `json:"notifications" db:"notifications"`
	IsActive       bool       `json:"is_active" db:"is_active"`
}

// FullName joins the name parts, falling back to the username.
func (u *User) FullName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full == "" {
		return u.Username
	}
	return full
}

// DefaultNotificationPrefs are applied when a user record carries none.
func DefaultNotificationPrefs() JSONMap {
	return JSONMap{
		"email":     true,
		"sms":       false,
		"whatsapp":  true,
		"rappels":   true,
		"nouvelles": true,
	}
}

// NotificationEnabled reports whether the given channel is switched on.
// A channel the stored preferences never mention keeps its default, so a
// partial preferences map only overrides what it names.
func (u *User) NotificationEnabled(channel string) bool {
	if enabled, ok := u.Notifications[channel].(bool); ok {
		return enabled
	}
	enabled, ok := DefaultNotificationPrefs()[channel].(bool)
	return ok && enabled
}

// CreateUserRequest represents staff account creation parameters.
type CreateUserRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email" validate:"omitempty,email"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Role          string `json:"role" validate:"required"`
	CodePersonnel string `json:"code_personnel"`
	Password      string `json:"password"`
	SpecialtyID   *int64 `json:"specialty_id"`
	Department    string `json:"department"`
	Phone         string `json:"phone"`
}

// UpdateUserRequest represents staff profile updates.
type UpdateUserRequest struct {
	Email          *string    `json:"email" validate:"omitempty,email"`
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	Phone          *string    `json:"phone"`
	SpecialtyID    *int64     `json:"specialty_id"`
	Department     *string    `json:"department"`
	MedicalLicense *string    `json:"medical_license"`
	HireDate       *time.Time `json:"hire_date"`
	Position       *string    `json:"position"`
	Language       *string    `json:"language" validate:"omitempty,oneof=fr en"`
	Theme          *string    `json:"theme" validate:"omitempty,oneof=light dark auto"`
	Notifications  JSONMap    `json:"notifications"`
	IsActive       *bool      `json:"is_active"`
}

// UserView is the read shape for staff accounts.
type UserView struct {
	ID            string         `json:"id"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	FullName      string         `json:"full_name"`
	Role          Role           `json:"role"`
	Specialty     *SpecialtyView `json:"specialty,omitempty"`
	Department    string         `json:"department"`
	Phone         string         `json:"phone"`
	Language      string         `json:"language"`
	Theme         string         `json:"theme"`
	PhotoURL      string         `json:"photo_url,omitempty"`
	Notifications JSONMap        `json:"notifications,omitempty"`
	IsActive      bool           `json:"is_active"`
}

func (u *User) View(lang i18n.Lang) *UserView {
	return &UserView{
		ID:            u.ID.String(),
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		FullName:      u.FullName(),
		Role:          u.Role,
		Specialty:     u.Specialty.Localize(lang),
		Department:    u.Department,
		Phone:         u.Phone,
		Language:      u.Language,
		Theme:         u.Theme,
		PhotoURL:      u.PhotoURL,
		Notifications: u.Notifications,
		IsActive:      u.IsActive,
	}
}
