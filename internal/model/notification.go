package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

type NotificationStatus string

const (
	NotificationStatusNew  NotificationStatus = "new"
	NotificationStatusAck  NotificationStatus = "ack"
	NotificationStatusRead NotificationStatus = "read"
)

// ArrivalNotification alerts a physician that a patient's appointment or
// referral reached a notifiable state. Immutable except for Status.
type ArrivalNotification struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	DoctorID           uuid.UUID          `json:"doctor_id" db:"doctor_id"`
	Patient            string             `json:"patient" db:"patient"`
	RefBy              string             `json:"ref_by" db:"ref_by"`
	RoomID             *int64             `json:"room_id" db:"room_id"`
	InterventionTypeID *int64             `json:"intervention_type_id" db:"intervention_type_id"`
	ApptAt             time.Time          `json:"appt_at" db:"appt_at"`
	Status             NotificationStatus `json:"status" db:"status"`
	Message            string             `json:"message" db:"message"`
	Notes              string             `json:"notes" db:"notes"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`

	// Joined for serialization, not part of the row itself.
	Room             *Room             `json:"-" db:"-"`
	InterventionType *InterventionType `json:"-" db:"-"`
}

// ArrivalNotificationView is the localized read shape consumed by the
// notification bell.
type ArrivalNotificationView struct {
	ID                string             `json:"id"`
	Status            NotificationStatus `json:"status"`
	Patient           string             `json:"patient"`
	RefBy             string             `json:"refBy"`
	RoomLabel         string             `json:"roomLabel"`
	InterventionLabel string             `json:"interventionLabel"`
	ApptAt            time.Time          `json:"apptAt"`
	CreatedAt         time.Time          `json:"createdAt"`
	Message           string             `json:"message,omitempty"`
	Notes             string             `json:"notes,omitempty"`
}

func (n *ArrivalNotification) Localize(lang i18n.Lang) *ArrivalNotificationView {
	view := &ArrivalNotificationView{
		ID:                n.ID.String(),
		Status:            n.Status,
		Patient:           n.Patient,
		RefBy:             n.RefBy,
		RoomLabel:         "—",
		InterventionLabel: "—",
		ApptAt:            n.ApptAt,
		CreatedAt:         n.CreatedAt,
		Message:           n.Message,
		Notes:             n.Notes,
	}
	if n.Room != nil {
		view.RoomLabel = i18n.Pick(lang, n.Room.NameFR, n.Room.NameEN)
	}
	if n.InterventionType != nil {
		view.InterventionLabel = i18n.Pick(lang, n.InterventionType.NameFR, n.InterventionType.NameEN)
	}
	return view
}

// NotificationFilters scope listing by role and intervention-type name.
type NotificationFilters struct {
	DoctorID     *uuid.UUID
	Intervention string
}

// ArrivalEvent is the payload published on the message broker when a
// notification is created, for live consumers.
type ArrivalEvent struct {
	NotificationID uuid.UUID `json:"notification_id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	Patient        string    `json:"patient"`
	ApptAt         time.Time `json:"appt_at"`
}
