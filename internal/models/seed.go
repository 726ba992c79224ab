package models

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"leadcrm/internal/permissions"

	console "leadcrm/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("SEEDER")

var defaultCountries = []Country{
	{Name: "España", Code: "ES"},
	{Name: "México", Code: "MX"},
	{Name: "Colombia", Code: "CO"},
	{Name: "Argentina", Code: "AR"},
}

// SeedCountries creates the default tenancy countries.
func SeedCountries(db *gorm.DB) error {
	for _, country := range defaultCountries {
		if err := db.FirstOrCreate(&country, Country{Code: country.Code}).Error; err != nil {
			return fmt.Errorf("failed to create country %s: %v", country.Code, err)
		}
	}
	return nil
}

// ResetPermissionsToRoleDefaults replaces a user's explicit payload
// with the code-defined defaults for their role. The write is a full
// replace and is recorded in the activity log.
func ResetPermissionsToRoleDefaults(db *gorm.DB, user *User, actorID string) error {
	payload, err := EncodeSet(permissions.DefaultSet(user.Role))
	if err != nil {
		return fmt.Errorf("failed to encode default permissions for role %s: %w", user.Role, err)
	}

	perm := UserPermission{UserID: user.ID}
	if err := db.Where(UserPermission{UserID: user.ID}).
		Assign(map[string]interface{}{"permissions": payload}).
		FirstOrCreate(&perm).Error; err != nil {
		return fmt.Errorf("failed to reset permissions for user %s: %w", user.ID, err)
	}

	LogActivity(db, actorID, ActivityPermissionsReset, "user_permissions", user.ID, map[string]string{
		"role": string(user.Role),
	})
	return nil
}

// CreateSuperAdminFromEnv bootstraps the first Super Administrator.
func CreateSuperAdminFromEnv(db *gorm.DB) error {
	role := permissions.RoleSuperAdmin

	var count int64
	db.Model(&User{}).Where("role = ?", role).Count(&count)
	if count > 0 {
		return nil
	}

	email, ok := os.LookupEnv("SUPERADMIN_EMAIL")
	if !ok {
		return fmt.Errorf("SUPERADMIN_EMAIL not set")
	}

	password, ok := os.LookupEnv("SUPERADMIN_PASSWORD")
	if !ok {
		return fmt.Errorf("SUPERADMIN_PASSWORD not set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	name := os.Getenv("SUPERADMIN_NAME")
	if name == "" {
		name = "Administrador"
	}

	user := User{
		FirstName: name,
		Email:     email,
		Role:      role,
		Password:  string(hashedPassword),
		IsActive:  true,
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create superadmin user: %v", err)
	}

	log.Success("Created super admin %s", email)
	return nil
}
