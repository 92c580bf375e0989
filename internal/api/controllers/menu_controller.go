package controllers

import (
	"net/http"

	"assse/internal/api/middleware"
	"assse/internal/services"

	"github.com/labstack/echo/v4"
)

// MenuController serves the role-filtered navigation tree.
type MenuController struct {
	menus *services.MenuService
}

func NewMenuController(menus *services.MenuService) *MenuController {
	return &MenuController{menus: menus}
}

func (c *MenuController) RegisterRoutes(g *echo.Group) {
	g.GET("/menu", c.Menu)
}

// Menu godoc
// @Summary Resolve the menu tree for the authenticated user
// @Produce json
// @Success 200 {array} services.MenuNode
// @Router /api/v1/menu [get]
func (c *MenuController) Menu(ctx echo.Context) error {
	tree, err := c.menus.GetMenuItemsForUser(ctx.Request().Context(), middleware.GetUserID(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, tree)
}
