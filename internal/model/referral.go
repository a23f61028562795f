package model

import (
	"time"

	"github.com/google/uuid"
)

type ReferralStatus string

const (
	ReferralStatusNew      ReferralStatus = "new"
	ReferralStatusSent     ReferralStatus = "sent"
	ReferralStatusAccepted ReferralStatus = "accepted"
	ReferralStatusRejected ReferralStatus = "rejected"
	ReferralStatusArrived  ReferralStatus = "arrived"
)

// CanTransition enforces forward-only status movement:
// new→sent→accepted/rejected, and any status may move to arrived.
func (s ReferralStatus) CanTransition(to ReferralStatus) bool {
	if to == ReferralStatusArrived {
		return true
	}
	switch s {
	case ReferralStatusNew:
		return to == ReferralStatusSent
	case ReferralStatusSent:
		return to == ReferralStatusAccepted || to == ReferralStatusRejected
	}
	return false
}

// Referral is the single source of truth; its secretary projection row is a
// derived mirror.
type Referral struct {
	Base
	PatientID          *uuid.UUID     `json:"patient_id" db:"patient_id"`
	InsuranceID        *uuid.UUID     `json:"insurance_id" db:"insurance_id"`
	DoctorID           *uuid.UUID     `json:"doctor_id" db:"doctor_id"`
	InterventionTypeID *int64         `json:"intervention_type_id" db:"intervention_type_id"`
	UrgencyLevelID     *int64         `json:"urgency_level_id" db:"urgency_level_id"`
	ConsultationReason string         `json:"consultation_reason" db:"consultation_reason"`
	MedicalHistory     string         `json:"medical_history" db:"medical_history"`
	ReferringDoctor    string         `json:"referring_doctor" db:"referring_doctor"`
	Establishment      string         `json:"establishment" db:"establishment"`
	RoomNumber         string         `json:"room_number" db:"room_number"`
	TargetSpecialty    string         `json:"target_specialty" db:"target_specialty"`
	Notes              string         `json:"notes" db:"notes"`
	Status             ReferralStatus `json:"status" db:"status"`
}

// CreateReferralRequest is the write shape shared by the authenticated
// physician flow and the anonymous public-intake flow. InterventionType and
// UrgencyLevel accept a numeric id or a case-insensitive name in either
// language. Secondary fields parse leniently and never fail the create.
type CreateReferralRequest struct {
	FirstName          string `json:"first_name" validate:"required"`
	LastName           string `json:"last_name" validate:"required"`
	BirthDate          string `json:"birth_date"`
	Gender             string `json:"gender"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	Address            string `json:"address"`
	City               string `json:"city"`
	PostalCode         string `json:"postal_code"`
	InterventionType   string `json:"intervention_type"`
	UrgencyLevel       string `json:"urgency_level"`
	ConsultationReason string `json:"consultation_reason" validate:"required"`
	MedicalHistory     string `json:"medical_history"`
	ReferringDoctor    string `json:"referring_doctor"`
	Establishment      string `json:"establishment"`
	TargetSpecialty    string `json:"target_specialty"`
	Notes              string `json:"notes"`

	InsuranceProvider     string `json:"insurance_provider"`
	InsurancePolicyNumber string `json:"insurance_policy_number"`
	CoverageType          string `json:"coverage_type"`
	InsuranceExpiration   string `json:"insurance_expiration"`
	HolderName            string `json:"holder_name"`
	InsuranceNotes        string `json:"insurance_notes"`
}

// HasInsurance reports whether any insurance-related field is non-empty;
// insurance resolution is only attempted in that case.
func (r *CreateReferralRequest) HasInsurance() bool {
	return r.InsuranceProvider != "" || r.InsurancePolicyNumber != "" ||
		r.CoverageType != "" || r.InsuranceExpiration != "" ||
		r.HolderName != "" || r.InsuranceNotes != ""
}

type UpdateReferralRequest struct {
	ConsultationReason *string `json:"consultation_reason"`
	MedicalHistory     *string `json:"medical_history"`
	ReferringDoctor    *string `json:"referring_doctor"`
	Establishment      *string `json:"establishment"`
	TargetSpecialty    *string `json:"target_specialty"`
	Notes              *string `json:"notes"`
	Status             *string `json:"status"`
}

// ReferralView is the full read shape, returned by every entry point
// regardless of which write shape was used.
type ReferralView struct {
	ID                 string                `json:"id"`
	Patient            *Patient              `json:"patient,omitempty"`
	Insurance          *Insurance            `json:"insurance,omitempty"`
	DoctorID           *uuid.UUID            `json:"doctor_id,omitempty"`
	DoctorUsername     string                `json:"doctor_username,omitempty"`
	InterventionType   *InterventionTypeView `json:"intervention_type,omitempty"`
	UrgencyLevel       *UrgencyLevelView     `json:"urgency_level,omitempty"`
	ConsultationReason string                `json:"consultation_reason"`
	MedicalHistory     string                `json:"medical_history,omitempty"`
	ReferringDoctor    string                `json:"referring_doctor,omitempty"`
	Establishment      string                `json:"establishment,omitempty"`
	TargetSpecialty    string                `json:"target_specialty,omitempty"`
	RoomNumber         string                `json:"room_number,omitempty"`
	Notes              string                `json:"notes,omitempty"`
	Status             ReferralStatus        `json:"status"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// ReferralFilters scope listing by role and date range.
type ReferralFilters struct {
	DoctorID *uuid.UUID
	Status   ReferralStatus
	From     *time.Time
	To       *time.Time
}

// Stats shapes for GET /referrals/stats.
type StatsPoint struct {
	Date      string `json:"date" db:"date"`
	Referrals int    `json:"referrals" db:"referrals"`
	Confirmed int    `json:"confirmed" db:"confirmed"`
}

type StatsBucket struct {
	Name  string `json:"name" db:"name"`
	Value int    `json:"value" db:"value"`
}

type StatsFunnel struct {
	Referrals    int `json:"referrals"`
	Appointments int `json:"appointments"`
	Arrived      int `json:"arrived"`
}

type StatsFacets struct {
	Doctors     []string `json:"doctors"`
	Specialties []string `json:"specialties"`
	Insurances  []string `json:"insurances"`
}

type ReferralStats struct {
	Series      []StatsPoint  `json:"series"`
	ByDoctor    []StatsBucket `json:"by_doctor"`
	BySpecialty []StatsBucket `json:"by_specialty"`
	ByInsurance []StatsBucket `json:"by_insurance"`
	Funnel      StatsFunnel   `json:"funnel"`
	Facets      StatsFacets   `json:"facets"`
}
