package controllers

import (
	"testing"

	"leadcrm/internal/models"
	"leadcrm/internal/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceRefSharedReferenceDataIsNil(t *testing.T) {
	country := &models.Country{Name: "España", Code: "ES"}
	country.ID = "country-es"

	assert.Nil(t, resourceRef(country))
}

func TestCountryAdminCanViewSharedReferenceData(t *testing.T) {
	p := &permissions.Principal{
		UserID:    "admin-1",
		CountryID: "country-es",
		Role:      permissions.RoleCountryAdmin,
		Set:       permissions.DefaultSet(permissions.RoleCountryAdmin),
	}

	// The admin view scope resolves to team; a nil ref must fall back
	// to the coarse module check instead of denying on a missing
	// tenancy id.
	country := &models.Country{Name: "España", Code: "ES"}
	dec := permissions.Check(p, permissions.SectionAdmin, permissions.ActionView, resourceRef(country))
	assert.True(t, dec.Allowed)
}

func TestResourceRefLeadCarriesAssigneeAndCountry(t *testing.T) {
	countryID := "country-es"
	lead := &models.Lead{
		Name:         "Lead ES",
		AssignedToID: "seller-1",
		CountryID:    &countryID,
	}
	lead.ID = "lead-1"

	ref := resourceRef(lead)
	require.NotNil(t, ref)
	assert.Equal(t, "seller-1", ref.OwnerID)
	assert.Equal(t, "country-es", ref.CountryID)
}

func TestResourceRefUserFallsBackToRowID(t *testing.T) {
	countryID := "country-es"
	user := &models.User{Email: "seller@example.com", CountryID: &countryID}
	user.ID = "user-1"

	ref := resourceRef(user)
	require.NotNil(t, ref)
	assert.Equal(t, "user-1", ref.OwnerID)
	assert.Equal(t, "country-es", ref.CountryID)
}
