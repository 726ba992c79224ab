package services

import (
	"context"
	"testing"

	"leadcrm/internal/models"
	"leadcrm/internal/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Country{}, &models.Lead{}))
	return db
}

func seedCountry(t *testing.T, db *gorm.DB, name, code string) models.Country {
	t.Helper()
	country := models.Country{Name: name, Code: code}
	require.NoError(t, db.Create(&country).Error)
	return country
}

func seedLead(t *testing.T, db *gorm.DB, name, assignedTo string, countryID *string) models.Lead {
	t.Helper()
	lead := models.Lead{
		Name:         name,
		Status:       models.LeadStatusNew,
		AssignedToID: assignedTo,
		CountryID:    countryID,
	}
	require.NoError(t, db.Create(&lead).Error)
	return lead
}

func TestTeamScopeIgnoresUntenantedModels(t *testing.T) {
	db := newTestDB(t)
	seedCountry(t, db, "España", "ES")
	seedCountry(t, db, "México", "MX")

	svc := NewBaseService(db, models.Country{})
	scope := ScopeClause{
		Scope:     permissions.ScopeTeam,
		UserID:    "admin-1",
		CountryID: "country-es",
	}

	countries, total, err := svc.List(context.Background(), 1, 10, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, countries, 2)
}

func TestTeamScopeFiltersLeadsByCountry(t *testing.T) {
	db := newTestDB(t)
	es := seedCountry(t, db, "España", "ES")
	mx := seedCountry(t, db, "México", "MX")
	seedLead(t, db, "Lead ES", "seller-1", &es.ID)
	seedLead(t, db, "Lead MX", "seller-2", &mx.ID)

	svc := NewBaseService(db, models.Lead{})
	scope := ScopeClause{
		Scope:     permissions.ScopeTeam,
		UserID:    "seller-1",
		CountryID: es.ID,
	}

	leads, total, err := svc.List(context.Background(), 1, 10, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, leads, 1)
	assert.Equal(t, "Lead ES", leads[0].Name)
}

func TestTeamScopeWithoutCountryMatchesNothing(t *testing.T) {
	db := newTestDB(t)
	es := seedCountry(t, db, "España", "ES")
	seedLead(t, db, "Lead ES", "seller-1", &es.ID)

	svc := NewBaseService(db, models.Lead{})
	scope := ScopeClause{
		Scope:  permissions.ScopeTeam,
		UserID: "seller-1",
	}

	leads, total, err := svc.List(context.Background(), 1, 10, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, leads)
}

func TestSelfScopeFiltersLeadsByAssignee(t *testing.T) {
	db := newTestDB(t)
	es := seedCountry(t, db, "España", "ES")
	seedLead(t, db, "Mine", "seller-1", &es.ID)
	seedLead(t, db, "Theirs", "seller-2", &es.ID)

	svc := NewBaseService(db, models.Lead{})
	scope := ScopeClause{
		Scope:  permissions.ScopeSelf,
		UserID: "seller-1",
	}

	leads, total, err := svc.List(context.Background(), 1, 10, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, leads, 1)
	assert.Equal(t, "Mine", leads[0].Name)
}

func TestDenyScopeMatchesNothing(t *testing.T) {
	db := newTestDB(t)
	es := seedCountry(t, db, "España", "ES")
	seedLead(t, db, "Lead ES", "seller-1", &es.ID)

	svc := NewBaseService(db, models.Lead{})
	scope := ScopeClause{Scope: permissions.ScopeDeny, UserID: "seller-1"}

	leads, total, err := svc.List(context.Background(), 1, 10, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, leads)
}
