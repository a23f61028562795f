package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SecretaryReferral is the denormalized, display-oriented mirror of a
// Referral kept for the legacy front-office view. The referral is the
// single source of truth; rows here are overwritten on every source change
// and matched by the referral_id foreign key.
type SecretaryReferral struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ReferralID    uuid.UUID `json:"referral_id" db:"referral_id"`
	Patient       string    `json:"patient" db:"patient"`
	Medecin       string    `json:"medecin" db:"medecin"`
	Intervention  string    `json:"intervention" db:"intervention"`
	Date          string    `json:"date" db:"date"`
	Assurance     string    `json:"assurance" db:"assurance"`
	Statut        string    `json:"statut" db:"statut"`
	Priorite      string    `json:"priorite" db:"priorite"`
	Phone         string    `json:"phone" db:"phone"`
	Email         string    `json:"email" db:"email"`
	InternalNotes string    `json:"internalNotes" db:"internal_notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// StatusLabelFR maps any source status to the French front-office label.
// Unrecognized input maps to "En attente".
func StatusLabelFR(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accepted", "confirmed":
		return "Confirmé"
	case "rejected", "cancelled":
		return "Annulé"
	case "completed":
		return "Terminé"
	case "to_call":
		return "À rappeler"
	case "new", "sent", "pending":
		return "En attente"
	default:
		return "En attente"
	}
}

// UrgencyPriorityFR maps an urgency-level name to the 4-level French
// priority word used by the front office.
func UrgencyPriorityFR(urgency string) string {
	switch strings.ToLower(strings.TrimSpace(urgency)) {
	case "urgent", "urgence", "high":
		return "Urgente"
	case "haute", "elevated":
		return "Haute"
	case "low", "basse":
		return "Basse"
	default:
		return "Normale"
	}
}
