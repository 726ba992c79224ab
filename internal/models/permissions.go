package models

import (
	"fmt"

	"leadcrm/internal/permissions"

	"gorm.io/datatypes"
)

// UserPermission holds one user's explicit permission payload as a
// JSONB column. Writes are full-replace, never a partial merge, and
// must pass the strict payload validation first.
type UserPermission struct {
	Base
	UserID      string         `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User        *User          `json:"user,omitempty"`
	Permissions datatypes.JSON `gorm:"type:jsonb;not null" json:"permissions"`
}

// SetPayload validates and stores a replacement payload.
func (up *UserPermission) SetPayload(raw []byte) error {
	if err := permissions.ValidatePayload(raw); err != nil {
		return fmt.Errorf("invalid permissions payload: %w", err)
	}
	up.Permissions = datatypes.JSON(raw)
	return nil
}

// EncodeSet serializes a permission set into the stored JSONB shape,
// used when resetting a user to their role defaults.
func EncodeSet(set *permissions.Set) (datatypes.JSON, error) {
	data, err := set.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
