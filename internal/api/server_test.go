package api

import (
	"strings"
	"testing"

	"leadcrm/internal/permissions"

	"github.com/stretchr/testify/assert"
)

func TestRoleHintListsEveryValidRole(t *testing.T) {
	for _, role := range permissions.Roles {
		assert.Contains(t, roleHint, string(role))
	}
	assert.NotContains(t, roleHint, "COUNTRY_ADMIN")
}

func TestRoleHintValuesAreAccepted(t *testing.T) {
	for _, name := range strings.Split(roleHint, ", ") {
		assert.True(t, permissions.Role(name).Valid(), name)
	}
}
