package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Well-known role codes seeded on startup. SSO/DS/RO are the three
// scrutiny levels, ordered by hierarchy level (1 = highest authority).
const (
	RoleCodeAdmin      = "ADMIN"
	RoleCodeRO         = "RO_USER"
	RoleCodeDS         = "DS_USER"
	RoleCodeSSO        = "SSO_USER"
	RoleCodeEnterprise = "ENTERPRISE_USER"
)

// PermissionWildcard on a role grants the full menu tree regardless of
// role-menu permission rows.
const PermissionWildcard = "*"

// Role is a named authority level. Edits cascade to all holders, so roles
// are treated as immutable once assigned in practice.
type Role struct {
	Base
	Name          string         `gorm:"not null" json:"name" validate:"required,min=2"`
	Code          string         `gorm:"uniqueIndex;not null" json:"code" validate:"required,min=2"`
	Permissions   datatypes.JSON `gorm:"type:jsonb" json:"permissions,omitempty"`
	Level         int            `gorm:"not null;default:99" json:"level" validate:"min=1"`
	IsAdmin       bool           `gorm:"default:false" json:"isAdmin"`
	IsScrutinizer bool           `gorm:"default:false" json:"isScrutinizer"`
}

// MenuItem is one node of the navigation tree. ParentID is empty for
// top-level items.
type MenuItem struct {
	Base
	Title     string `gorm:"not null" json:"title" validate:"required"`
	Path      string `json:"path"`
	Icon      string `json:"icon,omitempty"`
	ParentID  string `gorm:"type:uuid;default:NULL" json:"parentId,omitempty"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}

// RolePermission is the (role, menu item) → CRUD-flag tuple. The view flag
// dominates: see Normalize.
type RolePermission struct {
	Base
	RoleID     string    `gorm:"type:uuid;not null;index:idx_role_menu,unique" json:"roleId" validate:"required,uuid"`
	Role       *Role     `json:"role,omitempty"`
	MenuItemID string    `gorm:"type:uuid;not null;index:idx_role_menu,unique" json:"menuItemId" validate:"required,uuid"`
	MenuItem   *MenuItem `json:"menuItem,omitempty"`
	CanView    bool      `gorm:"default:false" json:"canView"`
	CanCreate  bool      `gorm:"default:false" json:"canCreate"`
	CanEdit    bool      `gorm:"default:false" json:"canEdit"`
	CanDelete  bool      `gorm:"default:false" json:"canDelete"`
}

// Normalize enforces the flag invariant: any of create/edit/delete implies
// view; no view zeroes everything else.
func (p *RolePermission) Normalize() {
	if p.CanCreate || p.CanEdit || p.CanDelete {
		p.CanView = true
	}
	if !p.CanView {
		p.CanCreate = false
		p.CanEdit = false
		p.CanDelete = false
	}
}

// BeforeSave keeps the invariant on every write path, not just construction.
func (p *RolePermission) BeforeSave(tx *gorm.DB) error {
	p.Normalize()
	return nil
}

// UpdateColumns forces the flag columns into every update statement so that
// revoking a permission persists.
func (p *RolePermission) UpdateColumns() []string {
	return []string{"role_id", "menu_item_id", "can_view", "can_create", "can_edit", "can_delete"}
}

// UpdateColumns forces the admin and scrutinizer flags into every update
// statement so that demoting a role persists.
func (r *Role) UpdateColumns() []string {
	return []string{"name", "code", "permissions", "level", "is_admin", "is_scrutinizer"}
}

// HasWildcard reports whether the role carries the wildcard permission.
func (r *Role) HasWildcard() bool {
	perms, err := RolePermissionStrings(r)
	if err != nil {
		return false
	}
	for _, p := range perms {
		if p == PermissionWildcard {
			return true
		}
	}
	return false
}
