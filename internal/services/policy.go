package services

import (
	"context"

	"assse/internal/models"
)

// PolicyAction is one of the four CRUD rights a role-menu permission grants.
type PolicyAction string

const (
	PolicyActionView   PolicyAction = "view"
	PolicyActionCreate PolicyAction = "create"
	PolicyActionEdit   PolicyAction = "edit"
	PolicyActionDelete PolicyAction = "delete"
)

// PermissionLookup loads the permission rows binding the given roles to a
// menu item.
type PermissionLookup interface {
	RoleMenuPermissions(ctx context.Context, roleIDs []string, menuItemID string) ([]models.RolePermission, error)
}

// PolicyService is the single place role-gated decisions are made. UI
// screens and handlers ask CanPerform instead of comparing role strings.
type PolicyService struct {
	perms PermissionLookup
	users UserRoleLookup
}

func NewPolicyService(perms PermissionLookup, users UserRoleLookup) *PolicyService {
	return &PolicyService{perms: perms, users: users}
}

// CanPerform reports whether the user may perform the action on the menu
// resource. Admin and wildcard roles may do anything.
func (s *PolicyService) CanPerform(ctx context.Context, userID string, action PolicyAction, menuItemID string) (bool, error) {
	roles, err := s.users.UserRoles(ctx, userID)
	if err != nil {
		return false, err
	}

	roleIDs := make([]string, 0, len(roles))
	for i := range roles {
		if roles[i].IsAdmin || roles[i].Code == models.RoleCodeAdmin || roles[i].HasWildcard() {
			return true, nil
		}
		roleIDs = append(roleIDs, roles[i].ID)
	}
	if len(roleIDs) == 0 {
		return false, nil
	}

	perms, err := s.perms.RoleMenuPermissions(ctx, roleIDs, menuItemID)
	if err != nil {
		return false, err
	}

	for i := range perms {
		if permissionAllows(&perms[i], action) {
			return true, nil
		}
	}
	return false, nil
}

func permissionAllows(p *models.RolePermission, action PolicyAction) bool {
	switch action {
	case PolicyActionView:
		return p.CanView
	case PolicyActionCreate:
		return p.CanCreate
	case PolicyActionEdit:
		return p.CanEdit
	case PolicyActionDelete:
		return p.CanDelete
	default:
		return false
	}
}
