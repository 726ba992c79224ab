package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GetUserWithPermissions loads a user together with their explicit
// permission row. Soft-deleted users are not returned.
func GetUserWithPermissions(db *gorm.DB, id string) (*User, error) {
	user := &User{}
	if err := db.Preload("UserPermission").Preload("Country").
		Where("id = ? AND is_deleted = false", id).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail resolves an active user for login.
func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	user := &User{}
	if err := db.Preload("UserPermission").
		Where("email = ? AND is_deleted = false", email).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// LogActivity appends an audit trail record. Detail is marshalled
// best-effort; audit writes never fail the calling operation.
func LogActivity(db *gorm.DB, userID string, typ ActivityType, entity, entityID string, detail interface{}) {
	entry := ActivityLog{
		UserID:   userID,
		Type:     typ,
		Entity:   entity,
		EntityID: entityID,
	}
	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			entry.Detail = datatypes.JSON(data)
		}
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Warn("failed to write activity log (%s %s): %v", typ, entityID, err)
	}
}
