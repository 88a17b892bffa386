package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModerationStatus(t *testing.T) {
	status, err := ParseModerationStatus("pending")
	assert.NoError(t, err)
	assert.Equal(t, ModerationPending, status)

	status, err = ParseModerationStatus("approved")
	assert.NoError(t, err)
	assert.Equal(t, ModerationApproved, status)

	status, err = ParseModerationStatus("rejected")
	assert.NoError(t, err)
	assert.Equal(t, ModerationRejected, status)

	_, err = ParseModerationStatus("validated")
	assert.Error(t, err)

	_, err = ParseModerationStatus("")
	assert.Error(t, err)
}

func TestParseEtat(t *testing.T) {
	etat, err := ParseEtat("active")
	assert.NoError(t, err)
	assert.Equal(t, EtatActive, etat)

	etat, err = ParseEtat("inactive")
	assert.NoError(t, err)
	assert.Equal(t, EtatInactive, etat)

	_, err = ParseEtat("archived")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("user")
	assert.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	role, err = ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("superadmin")
	assert.Error(t, err)
}

func TestApplyModerationAction(t *testing.T) {
	status, etat, err := ApplyModerationAction("approve")
	assert.NoError(t, err)
	assert.Equal(t, ModerationApproved, status)
	assert.Equal(t, EtatActive, etat)

	status, etat, err = ApplyModerationAction("reject")
	assert.NoError(t, err)
	assert.Equal(t, ModerationRejected, status)
	assert.Equal(t, EtatInactive, etat)

	_, _, err = ApplyModerationAction("delete")
	assert.Error(t, err)

	_, _, err = ApplyModerationAction("")
	assert.Error(t, err)
}

func TestIsPubliclyVisible(t *testing.T) {
	assert.True(t, ModerationApproved.IsPubliclyVisible())
	assert.False(t, ModerationPending.IsPubliclyVisible())
	assert.False(t, ModerationRejected.IsPubliclyVisible())
}

func TestUserIsAdmin(t *testing.T) {
	admin := User{Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())

	user := User{Role: RoleUser}
	assert.False(t, user.IsAdmin())
}
