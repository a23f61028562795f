package model

import (
	"strings"
	"time"
)

// Patient identity for dedup-on-create is (first_name, last_name,
// birth_date); patients may be created implicitly by the appointment and
// referral workflows.
type Patient struct {
	Base
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	BirthDate  *time.Time `json:"birth_date" db:"birth_date"`
	Gender     string     `json:"gender" db:"gender"`
	Phone      string     `json:"phone" db:"phone"`
	Email      string     `json:"email" db:"email"`
	Address    string     `json:"address" db:"address"`
	City       string     `json:"city" db:"city"`
	PostalCode string     `json:"postal_code" db:"postal_code"`
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// SplitPatientName splits a free-text name into (first, last): the first
// token is the first name, the remainder the last name.
func SplitPatientName(name string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Insurance dedup key is (provider, policy_number).
type Insurance struct {
	Base
	Provider       string     `json:"insurance_provider" db:"provider"`
	PolicyNumber   string     `json:"insurance_policy_number" db:"policy_number"`
	CoverageType   string     `json:"coverage_type" db:"coverage_type"`
	ExpirationDate *time.Time `json:"expiration_date" db:"expiration_date"`
	HolderName     string     `json:"holder_name" db:"holder_name"`
	Notes          string     `json:"insurance_notes" db:"notes"`
}
