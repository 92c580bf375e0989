package services

import (
	"context"
	"errors"
	"testing"

	"assse/internal/models"

	"gorm.io/datatypes"
)

func testMenuItems() []models.MenuItem {
	return []models.MenuItem{
		{Base: models.Base{ID: "m-dash"}, Title: "Dashboard", Path: "/dashboard", SortOrder: 1},
		{Base: models.Base{ID: "m-surveys"}, Title: "Surveys", Path: "/surveys", SortOrder: 2},
		{Base: models.Base{ID: "m-fill"}, Title: "Fill Survey", Path: "/surveys/fill", ParentID: "m-surveys", SortOrder: 1},
		{Base: models.Base{ID: "m-scrutiny"}, Title: "Scrutiny", Path: "/surveys/scrutiny", ParentID: "m-surveys", SortOrder: 2},
		{Base: models.Base{ID: "m-masters"}, Title: "Masters", Path: "/masters", SortOrder: 3},
		{Base: models.Base{ID: "m-roles"}, Title: "Roles", Path: "/masters/roles", ParentID: "m-masters", SortOrder: 1},
	}
}

func flattenTitles(nodes []MenuNode) []string {
	var titles []string
	var walk func([]MenuNode)
	walk = func(ns []MenuNode) {
		for _, n := range ns {
			titles = append(titles, n.Title)
			walk(n.Children)
		}
	}
	walk(nodes)
	return titles
}

func findNode(nodes []MenuNode, title string) *MenuNode {
	for i := range nodes {
		if nodes[i].Title == title {
			return &nodes[i]
		}
		if n := findNode(nodes[i].Children, title); n != nil {
			return n
		}
	}
	return nil
}

func TestAdminSeesFullTree(t *testing.T) {
	repo := &fakeMenuRepo{items: testMenuItems()}
	users := &fakeUserRoles{roles: map[string][]models.Role{
		"u-admin": {{Base: models.Base{ID: "r-admin"}, Code: models.RoleCodeAdmin, IsAdmin: true}},
	}}
	svc := NewMenuService(repo, users, false)

	tree, err := svc.GetMenuItemsForUser(context.Background(), "u-admin")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := len(flattenTitles(tree)); got != len(testMenuItems()) {
		t.Fatalf("admin sees %d items, want %d", got, len(testMenuItems()))
	}
	for _, title := range flattenTitles(tree) {
		if n := findNode(tree, title); !n.Actionable {
			t.Fatalf("admin node %q should be actionable", title)
		}
	}
}

func TestWildcardRoleSeesFullTree(t *testing.T) {
	repo := &fakeMenuRepo{items: testMenuItems()}
	users := &fakeUserRoles{roles: map[string][]models.Role{
		"u-super": {{
			Base:        models.Base{ID: "r-super"},
			Code:        "SUPERVISOR",
			Permissions: datatypes.JSON(`["*"]`),
		}},
	}}
	svc := NewMenuService(repo, users, false)

	tree, err := svc.GetMenuItemsForUser(context.Background(), "u-super")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := len(flattenTitles(tree)); got != len(testMenuItems()) {
		t.Fatalf("wildcard sees %d items, want %d", got, len(testMenuItems()))
	}
}

func TestMenuFilteredWithAncestorRetention(t *testing.T) {
	// The SSO role may view only the scrutiny leaf. Its parent must
	// survive as a non-actionable container; unrelated branches vanish.
	repo := &fakeMenuRepo{
		items: testMenuItems(),
		viewable: map[string][]string{
			"r-sso": {"m-scrutiny", "m-dash"},
		},
	}
	users := &fakeUserRoles{roles: map[string][]models.Role{
		"u-sso": {{Base: models.Base{ID: "r-sso"}, Code: models.RoleCodeSSO, IsScrutinizer: true}},
	}}
	svc := NewMenuService(repo, users, false)

	tree, err := svc.GetMenuItemsForUser(context.Background(), "u-sso")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	titles := flattenTitles(tree)
	want := []string{"Dashboard", "Surveys", "Scrutiny"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}

	if n := findNode(tree, "Surveys"); n == nil || n.Actionable {
		t.Fatalf("Surveys must survive as a non-actionable container, got %+v", n)
	}
	if n := findNode(tree, "Scrutiny"); n == nil || !n.Actionable {
		t.Fatalf("Scrutiny must be actionable, got %+v", n)
	}
	if n := findNode(tree, "Masters"); n != nil {
		t.Fatalf("Masters branch should be pruned, got %+v", n)
	}
}

func TestMenuUnionAcrossRoles(t *testing.T) {
	repo := &fakeMenuRepo{
		items: testMenuItems(),
		viewable: map[string][]string{
			"r-sso": {"m-scrutiny"},
			"r-ds":  {"m-roles"},
		},
	}
	users := &fakeUserRoles{roles: map[string][]models.Role{
		"u-both": {
			{Base: models.Base{ID: "r-sso"}, Code: models.RoleCodeSSO},
			{Base: models.Base{ID: "r-ds"}, Code: models.RoleCodeDS},
		},
	}}
	svc := NewMenuService(repo, users, false)

	tree, err := svc.GetMenuItemsForUser(context.Background(), "u-both")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if findNode(tree, "Scrutiny") == nil || findNode(tree, "Roles") == nil {
		t.Fatalf("union of role grants missing a branch: %v", flattenTitles(tree))
	}
}

func TestMenuMockModeServesStaticTree(t *testing.T) {
	svc := NewMenuService(&fakeMenuRepo{}, &fakeUserRoles{}, true)

	tree, err := svc.GetMenuItemsForUser(context.Background(), "anyone")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(tree) == 0 {
		t.Fatal("mock mode should serve the static default tree")
	}
}

func TestMenuFallsBackWhenStoreUnreachable(t *testing.T) {
	down := errors.New("connection refused")
	svc := NewMenuService(&fakeMenuRepo{err: down}, &fakeUserRoles{err: down}, false)

	tree, err := svc.GetMenuItemsForUser(context.Background(), "anyone")
	if err != nil {
		t.Fatalf("resolve should degrade, got error: %v", err)
	}
	if len(tree) == 0 {
		t.Fatal("expected static fallback tree")
	}
}
