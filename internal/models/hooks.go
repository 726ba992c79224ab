package models

import (
	"leadcrm/internal/events"

	"gorm.io/gorm"
)

func (l *Lead) AfterCreate(tx *gorm.DB) error {
	events.Emit("lead.created", l)
	return nil
}

func (r *Reservation) AfterCreate(tx *gorm.DB) error {
	events.Emit("reservation.created", r)
	return nil
}

func (up *UserPermission) AfterSave(tx *gorm.DB) error {
	events.Emit("permissions.updated", up)
	return nil
}
