package services

import (
	"context"
	"testing"

	"assse/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a second pooled connection would see an empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Role{}, &models.MenuItem{}, &models.RolePermission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUpdatePersistsRevokedPermissionFlags(t *testing.T) {
	svc := NewBaseService(newTestDB(t), models.RolePermission{})
	ctx := context.Background()

	perm := &models.RolePermission{
		RoleID:     uuid.NewString(),
		MenuItemID: uuid.NewString(),
		CanView:    true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
	}
	if err := svc.Create(ctx, perm); err != nil {
		t.Fatalf("create: %v", err)
	}

	revoked := &models.RolePermission{RoleID: perm.RoleID, MenuItemID: perm.MenuItemID}
	if err := svc.Update(ctx, perm.ID, revoked); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := svc.Get(ctx, perm.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CanView || stored.CanCreate || stored.CanEdit || stored.CanDelete {
		t.Fatalf("revocation must persist, stored flags view=%v create=%v edit=%v delete=%v",
			stored.CanView, stored.CanCreate, stored.CanEdit, stored.CanDelete)
	}
}

func TestUpdateNormalizesPermissionFlags(t *testing.T) {
	svc := NewBaseService(newTestDB(t), models.RolePermission{})
	ctx := context.Background()

	perm := &models.RolePermission{
		RoleID:     uuid.NewString(),
		MenuItemID: uuid.NewString(),
		CanView:    true,
	}
	if err := svc.Create(ctx, perm); err != nil {
		t.Fatalf("create: %v", err)
	}

	// edit implies view, even when the request leaves view unset
	patch := &models.RolePermission{RoleID: perm.RoleID, MenuItemID: perm.MenuItemID, CanEdit: true}
	if err := svc.Update(ctx, perm.ID, patch); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := svc.Get(ctx, perm.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.CanEdit || !stored.CanView {
		t.Fatalf("stored flags view=%v edit=%v, want both true", stored.CanView, stored.CanEdit)
	}
}

func TestUpdateClearsRoleScrutinizerFlag(t *testing.T) {
	svc := NewBaseService(newTestDB(t), models.Role{})
	ctx := context.Background()

	role := &models.Role{
		Name:          "State Statistical Office",
		Code:          "SSO_LEGACY",
		Level:         3,
		IsScrutinizer: true,
	}
	if err := svc.Create(ctx, role); err != nil {
		t.Fatalf("create: %v", err)
	}

	demoted := &models.Role{Name: role.Name, Code: role.Code, Level: role.Level}
	if err := svc.Update(ctx, role.ID, demoted); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := svc.Get(ctx, role.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.IsScrutinizer || stored.IsAdmin {
		t.Fatalf("demotion must persist, stored admin=%v scrutinizer=%v", stored.IsAdmin, stored.IsScrutinizer)
	}
	if stored.Level != 3 {
		t.Fatalf("level = %d, want 3", stored.Level)
	}
}
