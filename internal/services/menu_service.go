package services

import (
	"context"
	"sort"

	"assse/internal/models"
	console "assse/internal/utils/logger"
)

// MenuNode is one resolved navigation entry. Actionable is false for
// ancestor nodes kept only as containers for an accessible descendant.
type MenuNode struct {
	models.MenuItem
	Actionable bool       `json:"actionable"`
	Children   []MenuNode `json:"children,omitempty"`
}

// MenuRepository loads the menu tree and permission rows. Backed by the
// hosted store; the service degrades to the static default tree when it is
// unreachable or unconfigured.
type MenuRepository interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	ListViewableMenuIDs(ctx context.Context, roleIDs []string) ([]string, error)
}

// UserRoleLookup loads a user's role assignments.
type UserRoleLookup interface {
	UserRoles(ctx context.Context, userID string) ([]models.Role, error)
}

// MenuService resolves the role-filtered menu tree for a user.
type MenuService struct {
	repo     MenuRepository
	users    UserRoleLookup
	mockMode bool
	log      *console.Logger
}

func NewMenuService(repo MenuRepository, users UserRoleLookup, mockMode bool) *MenuService {
	return &MenuService{
		repo:     repo,
		users:    users,
		mockMode: mockMode,
		log:      console.New("menu_service"),
	}
}

// GetMenuItemsForUser resolves the menu tree a user may see. A wildcard or
// admin role yields the full tree; otherwise items are filtered to the
// union of viewable menu ids across the user's roles, keeping ancestors of
// any accessible descendant as non-actionable containers.
func (s *MenuService) GetMenuItemsForUser(ctx context.Context, userID string) ([]MenuNode, error) {
	if s.mockMode {
		return buildTree(models.DefaultMenuItems(), nil), nil
	}

	roles, err := s.users.UserRoles(ctx, userID)
	if err != nil {
		s.log.Warn("store unreachable, falling back to static menu: %v", err)
		return buildTree(models.DefaultMenuItems(), nil), nil
	}

	items, err := s.repo.ListMenuItems(ctx)
	if err != nil {
		s.log.Warn("store unreachable, falling back to static menu: %v", err)
		return buildTree(models.DefaultMenuItems(), nil), nil
	}

	for i := range roles {
		if roles[i].IsAdmin || roles[i].Code == models.RoleCodeAdmin || roles[i].HasWildcard() {
			return buildTree(items, nil), nil
		}
	}

	roleIDs := make([]string, 0, len(roles))
	for _, r := range roles {
		roleIDs = append(roleIDs, r.ID)
	}

	viewable, err := s.repo.ListViewableMenuIDs(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	accessible := make(map[string]bool, len(viewable))
	for _, id := range viewable {
		accessible[id] = true
	}

	return buildTree(items, accessible), nil
}

// buildTree assembles the menu forest. accessible == nil means everything
// is actionable; otherwise a node survives if it is accessible itself or
// has a surviving descendant, and is actionable only in the former case.
func buildTree(items []models.MenuItem, accessible map[string]bool) []MenuNode {
	children := make(map[string][]models.MenuItem)
	var roots []models.MenuItem
	for _, item := range items {
		if item.ParentID == "" {
			roots = append(roots, item)
		} else {
			children[item.ParentID] = append(children[item.ParentID], item)
		}
	}

	var build func(item models.MenuItem) *MenuNode
	build = func(item models.MenuItem) *MenuNode {
		node := MenuNode{
			MenuItem:   item,
			Actionable: accessible == nil || accessible[item.ID],
		}
		kids := children[item.ID]
		sortMenuItems(kids)
		for _, child := range kids {
			if cn := build(child); cn != nil {
				node.Children = append(node.Children, *cn)
			}
		}
		// Prune nodes that are neither accessible nor ancestors of an
		// accessible descendant.
		if !node.Actionable && len(node.Children) == 0 {
			return nil
		}
		return &node
	}

	sortMenuItems(roots)
	out := make([]MenuNode, 0, len(roots))
	for _, root := range roots {
		if n := build(root); n != nil {
			out = append(out, *n)
		}
	}
	return out
}

func sortMenuItems(items []models.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortOrder < items[j].SortOrder
	})
}
