package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GetUserByEmail retrieves a user with their roles by email
func GetUserByEmail(email string, db *gorm.DB) (*User, error) {
	user := &User{}
	if err := db.Preload("Roles").Where("email = ? AND is_deleted = false", email).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetRoleByCode retrieves a role from the database by its unique code
func GetRoleByCode(code string, db *gorm.DB) (*Role, error) {
	role := &Role{}
	if err := db.Where("code = ? AND is_deleted = false", code).First(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// RolePermissionStrings decodes the role's permission-string set.
func RolePermissionStrings(r *Role) ([]string, error) {
	if len(r.Permissions) == 0 {
		return nil, nil
	}
	var perms []string
	if err := json.Unmarshal(r.Permissions, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// PermissionStringsJSON encodes a permission-string set for storage.
func PermissionStringsJSON(perms []string) (datatypes.JSON, error) {
	data, err := json.Marshal(perms)
	if err != nil {
		return nil, err
	}
	return data, nil
}
