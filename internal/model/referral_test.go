package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferralStatusTransitions(t *testing.T) {
	tests := []struct {
		from    ReferralStatus
		to      ReferralStatus
		allowed bool
	}{
		{ReferralStatusNew, ReferralStatusSent, true},
		{ReferralStatusSent, ReferralStatusAccepted, true},
		{ReferralStatusSent, ReferralStatusRejected, true},
		{ReferralStatusNew, ReferralStatusAccepted, false},
		{ReferralStatusAccepted, ReferralStatusRejected, false},
		{ReferralStatusRejected, ReferralStatusSent, false},
		{ReferralStatusSent, ReferralStatusNew, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAnyStatusCanArrive(t *testing.T) {
	for _, from := range []ReferralStatus{
		ReferralStatusNew, ReferralStatusSent,
		ReferralStatusAccepted, ReferralStatusRejected, ReferralStatusArrived,
	} {
		assert.True(t, from.CanTransition(ReferralStatusArrived), "%s -> arrived", from)
	}
}

func TestHasInsurance(t *testing.T) {
	assert.False(t, (&CreateReferralRequest{}).HasInsurance())
	assert.True(t, (&CreateReferralRequest{InsuranceProvider: "CNOPS"}).HasInsurance())
	assert.True(t, (&CreateReferralRequest{HolderName: "A. B."}).HasInsurance())
}
