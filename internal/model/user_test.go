package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"PHYSICIAN", RolePhysician},
		{"physician", RolePhysician},
		{"medecin", RolePhysician},
		{"FRONTDESK", RoleFrontDesk},
		{"secretaire", RoleFrontDesk},
		{"secretary", RoleFrontDesk},
		{"MANAGEMENT", RoleManagement},
		{"direction", RoleManagement},
		{"  Direction  ", RoleManagement},
	}
	for _, tt := range tests {
		role, err := ParseRole(tt.raw)
		require.NoError(t, err, "role %q", tt.raw)
		assert.Equal(t, tt.want, role)
	}

	_, err := ParseRole("admin")
	assert.Error(t, err)
}

func TestNotificationEnabledDefaults(t *testing.T) {
	u := &User{}
	assert.True(t, u.NotificationEnabled("email"))
	assert.True(t, u.NotificationEnabled("whatsapp"))
	assert.False(t, u.NotificationEnabled("sms"))
	assert.False(t, u.NotificationEnabled("unknown"))

	u.Notifications = JSONMap{"whatsapp": false}
	assert.False(t, u.NotificationEnabled("whatsapp"))
}

func TestNotificationEnabledPartialMapKeepsDefaults(t *testing.T) {
	u := &User{Notifications: JSONMap{"email": false}}

	assert.False(t, u.NotificationEnabled("email"))
	assert.True(t, u.NotificationEnabled("whatsapp"), "unmentioned channel keeps its default")
	assert.False(t, u.NotificationEnabled("sms"))

	u.Notifications = JSONMap{"sms": true}
	assert.True(t, u.NotificationEnabled("sms"))
	assert.True(t, u.NotificationEnabled("email"))
}

func TestSplitPatientName(t *testing.T) {
	first, last := SplitPatientName("Amina El Fassi")
	assert.Equal(t, "Amina", first)
	assert.Equal(t, "El Fassi", last)

	first, last = SplitPatientName("Karim")
	assert.Equal(t, "Karim", first)
	assert.Empty(t, last)

	first, last = SplitPatientName("   ")
	assert.Empty(t, first)
	assert.Empty(t, last)
}

func TestUserFullNameFallsBackToUsername(t *testing.T) {
	u := &User{Username: "k.alami"}
	assert.Equal(t, "k.alami", u.FullName())

	u.FirstName = "Karim"
	u.LastName = "Alami"
	assert.Equal(t, "Karim Alami", u.FullName())
}
