package models

import (
	"assse/internal/config"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	console "assse/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("SEEDER")

type seedRole struct {
	Name          string
	Code          string
	Level         int
	IsAdmin       bool
	IsScrutinizer bool
	Permissions   []string
}

// Default roles. Levels follow the scrutiny hierarchy: RO above DS above
// SSO, enterprises at the bottom.
var defaultRoles = []seedRole{
	{Name: "Administrator", Code: RoleCodeAdmin, Level: 1, IsAdmin: true, Permissions: []string{PermissionWildcard}},
	{Name: "Regional Office User", Code: RoleCodeRO, Level: 2, IsScrutinizer: true},
	{Name: "Directorate Staff User", Code: RoleCodeDS, Level: 3, IsScrutinizer: true},
	{Name: "Statistical Office User", Code: RoleCodeSSO, Level: 4, IsScrutinizer: true},
	{Name: "Enterprise User", Code: RoleCodeEnterprise, Level: 5},
}

// menuID gives the seeded menu tree stable ids so permission rows and the
// mock-mode fallback agree across restarts.
func menuID(n int) string {
	return fmt.Sprintf("9a55e000-0000-4000-8000-%012d", n)
}

type seedMenu struct {
	ID       string
	Title    string
	Path     string
	Icon     string
	ParentID string
	Sort     int
}

var defaultMenus = []seedMenu{
	{ID: menuID(1), Title: "Dashboard", Path: "/dashboard", Icon: "home", Sort: 1},
	{ID: menuID(2), Title: "Frames", Path: "/frames", Icon: "layers", Sort: 2},
	{ID: menuID(21), Title: "Frame Upload", Path: "/frames/upload", ParentID: menuID(2), Sort: 1},
	{ID: menuID(22), Title: "Frame Allocations", Path: "/frames/allocations", ParentID: menuID(2), Sort: 2},
	{ID: menuID(3), Title: "Notices", Path: "/notices", Icon: "mail", Sort: 3},
	{ID: menuID(4), Title: "Surveys", Path: "/surveys", Icon: "clipboard", Sort: 4},
	{ID: menuID(41), Title: "Data Entry", Path: "/surveys/entry", ParentID: menuID(4), Sort: 1},
	{ID: menuID(42), Title: "Scrutiny", Path: "/surveys/scrutiny", ParentID: menuID(4), Sort: 2},
	{ID: menuID(5), Title: "Masters", Path: "/masters", Icon: "database", Sort: 5},
	{ID: menuID(51), Title: "Enterprises", Path: "/masters/enterprises", ParentID: menuID(5), Sort: 1},
	{ID: menuID(52), Title: "Survey Templates", Path: "/masters/templates", ParentID: menuID(5), Sort: 2},
	{ID: menuID(53), Title: "Schedules", Path: "/masters/schedules", ParentID: menuID(5), Sort: 3},
	{ID: menuID(6), Title: "Administration", Path: "/admin", Icon: "settings", Sort: 6},
	{ID: menuID(61), Title: "Users", Path: "/admin/users", ParentID: menuID(6), Sort: 1},
	{ID: menuID(62), Title: "Roles & Permissions", Path: "/admin/roles", ParentID: menuID(6), Sort: 2},
	{ID: menuID(63), Title: "Approval Workflows", Path: "/admin/workflows", ParentID: menuID(6), Sort: 3},
	{ID: menuID(64), Title: "Audit Log", Path: "/admin/audit", ParentID: menuID(6), Sort: 4},
}

// DefaultMenuItems returns the full static menu tree. Used by the seeder
// and as the mock-mode fallback when the store is unreachable.
func DefaultMenuItems() []MenuItem {
	items := make([]MenuItem, 0, len(defaultMenus))
	for _, m := range defaultMenus {
		items = append(items, MenuItem{
			Base:      Base{ID: m.ID},
			Title:     m.Title,
			Path:      m.Path,
			Icon:      m.Icon,
			ParentID:  m.ParentID,
			SortOrder: m.Sort,
		})
	}
	return items
}

// MenuIDByPath returns the seeded id for a menu path, or empty when the
// path is not part of the default tree. Route guards key permission checks
// on these ids.
func MenuIDByPath(path string) string {
	for _, m := range defaultMenus {
		if m.Path == path {
			return m.ID
		}
	}
	return ""
}

// Role → viewable menu paths. Admin gets everything through the wildcard,
// so it carries no rows here.
var roleMenuGrants = map[string][]string{
	RoleCodeRO: {
		"/dashboard", "/frames", "/frames/upload", "/frames/allocations",
		"/notices", "/surveys", "/surveys/scrutiny", "/masters",
		"/masters/enterprises", "/masters/templates",
	},
	RoleCodeDS: {
		"/dashboard", "/surveys", "/surveys/scrutiny", "/notices",
	},
	RoleCodeSSO: {
		"/dashboard", "/surveys", "/surveys/scrutiny",
	},
	RoleCodeEnterprise: {
		"/dashboard", "/surveys", "/surveys/entry",
	},
}

// SeedRBAC creates default roles, the menu tree and role-menu permissions.
func SeedRBAC(db *gorm.DB) error {
	for _, sr := range defaultRoles {
		perms, err := PermissionStringsJSON(sr.Permissions)
		if err != nil {
			return fmt.Errorf("failed to encode permissions for role %s: %v", sr.Code, err)
		}
		role := Role{
			Name:          sr.Name,
			Code:          sr.Code,
			Level:         sr.Level,
			IsAdmin:       sr.IsAdmin,
			IsScrutinizer: sr.IsScrutinizer,
			Permissions:   perms,
		}
		if err := db.Where(Role{Code: sr.Code}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %v", sr.Code, err)
		}
	}

	byPath := make(map[string]string, len(defaultMenus))
	for _, m := range DefaultMenuItems() {
		item := m
		if err := db.Where(MenuItem{Base: Base{ID: item.ID}}).FirstOrCreate(&item).Error; err != nil {
			return fmt.Errorf("failed to create menu item %s: %v", item.Title, err)
		}
		byPath[item.Path] = item.ID
	}

	for code, paths := range roleMenuGrants {
		log.Info("Creating menu permissions for role: %s", code)

		role, err := GetRoleByCode(code, db)
		if err != nil {
			return fmt.Errorf("failed to find role %s: %v", code, err)
		}

		for _, path := range paths {
			menuItemID, ok := byPath[path]
			if !ok {
				return fmt.Errorf("unknown menu path in grants: %s", path)
			}

			perm := RolePermission{
				RoleID:     role.ID,
				MenuItemID: menuItemID,
				CanView:    true,
			}
			// RO manages master data, so it gets full CRUD there
			if code == RoleCodeRO && (path == "/masters/enterprises" || path == "/masters/templates" || path == "/frames/upload") {
				perm.CanCreate = true
				perm.CanEdit = true
				perm.CanDelete = true
			}

			if err := db.Where(RolePermission{RoleID: role.ID, MenuItemID: menuItemID}).
				FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("failed to create permission %s → %s: %v", code, path, err)
			}
		}
	}

	return nil
}

// SeedDefaultWorkflow creates the standard three-level scrutiny workflow if
// no workflow exists yet.
func SeedDefaultWorkflow(db *gorm.DB) error {
	var count int64
	if err := db.Model(&ApprovalWorkflow{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	wf := ApprovalWorkflow{
		Name:        "Standard Survey Approval",
		Description: "SSO scrutiny, DS review, RO final approval",
		IsActive:    true,
		Steps: []ApprovalStep{
			{StepNumber: 1, Name: "SSO Scrutiny", RoleCode: RoleCodeSSO, OfficeType: "SSO", Required: true, CanReject: true, CanReferBack: true},
			{StepNumber: 2, Name: "DS Review", RoleCode: RoleCodeDS, OfficeType: "DS", Required: true, CanReject: true, CanReferBack: true},
			{StepNumber: 3, Name: "RO Final Approval", RoleCode: RoleCodeRO, OfficeType: "RO", Required: true, CanReject: true},
		},
	}
	if err := db.Create(&wf).Error; err != nil {
		return fmt.Errorf("failed to create default workflow: %v", err)
	}

	// chain successor pointers step1 → step2 → step3
	steps := wf.OrderedSteps()
	for i := 0; i < len(steps)-1; i++ {
		if err := db.Model(&ApprovalStep{}).Where("id = ?", steps[i].ID).
			Update("next_step_id", steps[i+1].ID).Error; err != nil {
			return fmt.Errorf("failed to link workflow steps: %v", err)
		}
	}
	return nil
}

// CreateSuperAdminFromEnv bootstraps the first admin account.
func CreateSuperAdminFromEnv(db *gorm.DB, cfg *config.Config) error {
	var count int64
	db.Model(&User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.code = ?", RoleCodeAdmin).
		Count(&count)
	log.Info("Admin user count: %d", count)
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

	name, ok := os.LookupEnv("SUPERADMIN_NAME")
	if !ok {
		return fmt.Errorf("SUPERADMIN_NAME not set")
	}

	adminRole, err := GetRoleByCode(RoleCodeAdmin, db)
	if err != nil {
		return fmt.Errorf("admin role missing, run SeedRBAC first: %v", err)
	}

	user := User{
		FirstName: name,
		Email:     email,
		Password:  string(hashedPassword),
		Roles:     []Role{*adminRole},
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %v", err)
	}

	return nil
}
