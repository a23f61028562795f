package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusToCall    AppointmentStatus = "to_call"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusToCall, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment carries both a nullable patient link and the free-text
// patient_name it was booked under. The doctor, if set, must reference a
// user whose role is Physician; a deleted doctor leaves a null reference,
// never a cascade.
type Appointment struct {
	Base
	PatientID       *uuid.UUID        `json:"patient_id" db:"patient_id"`
	PatientName     string            `json:"patient_name" db:"patient_name"`
	Date            time.Time         `json:"-" db:"date"`
	Time            string            `json:"time" db:"time"`
	DurationMinutes int               `json:"duration_minutes" db:"duration_minutes"`
	Status          AppointmentStatus `json:"status" db:"status"`
	RoomID          *int64            `json:"room_id" db:"room_id"`
	TypeID          *int64            `json:"type_id" db:"type_id"`
	DoctorID        *uuid.UUID        `json:"doctor_id" db:"doctor_id"`
	Phone           string            `json:"phone" db:"phone"`
	Email           string            `json:"email" db:"email"`
	Notes           string            `json:"notes" db:"notes"`
}

// DateString renders the appointment date as ISO YYYY-MM-DD.
func (a *Appointment) DateString() string {
	return a.Date.Format("2006-01-02")
}

// CreateAppointmentRequest: patient_name is required unless patient_id is
// given.
type CreateAppointmentRequest struct {
	PatientID       *uuid.UUID `json:"patient_id"`
	PatientName     string     `json:"patient_name"`
	Date            string     `json:"date" validate:"required"`
	Time            string     `json:"time" validate:"required"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	RoomID          *int64     `json:"room"`
	TypeID          *int64     `json:"type"`
	DoctorID        *uuid.UUID `json:"doctor"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email" validate:"omitempty,email"`
	Notes           string     `json:"notes"`
}

type UpdateAppointmentRequest struct {
	Date            *string    `json:"date"`
	Time            *string    `json:"time"`
	DurationMinutes *int       `json:"duration_minutes"`
	Status          *string    `json:"status"`
	RoomID          *int64     `json:"room"`
	TypeID          *int64     `json:"type"`
	DoctorID        *uuid.UUID `json:"doctor"`
	Notes           *string    `json:"notes"`
}

// AppointmentFilters: Type accepts a numeric id or an FR/EN name fragment.
type AppointmentFilters struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Status   AppointmentStatus
	DoctorID *uuid.UUID
	RoomID   *int64
	Type     string
}
