package controllers

import (
	"errors"
	"net/http"

	"assse/internal/api/middleware"
	"assse/internal/api/validator"
	"assse/internal/models"
	"assse/internal/services"
	"assse/internal/workflow"

	"github.com/labstack/echo/v4"
)

// AssignmentController owns enterprise-survey assignments and the bulk
// operations feeding them.
type AssignmentController struct {
	assignments *services.AssignmentService
}

func NewAssignmentController(assignments *services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignments: assignments}
}

func (c *AssignmentController) RegisterRoutes(g *echo.Group) {
	g.GET("", c.List)
	g.POST("/bulk-assign", c.BulkAssign)
	g.POST("/bulk-import", c.BulkImport)
	g.POST("/:id/action", c.Transition)
}

func (c *AssignmentController) List(ctx echo.Context) error {
	page, err := c.assignments.List(ctx.Request().Context(), ParsePageParams(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, page)
}

// BulkAssign godoc
// @Summary Assign a survey template to many enterprises
// @Accept json
// @Produce json
// @Param request body validator.BulkAssignRequest true "Template and enterprises"
// @Success 200 {object} services.BulkResult
// @Router /api/v1/enterprise-surveys/bulk-assign [post]
func (c *AssignmentController) BulkAssign(ctx echo.Context) error {
	req := new(validator.BulkAssignRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	result, err := c.assignments.BulkAssign(ctx.Request().Context(), req.TemplateID, req.EnterpriseIDs, middleware.GetUserID(ctx), req.DueDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, result)
}

func (c *AssignmentController) BulkImport(ctx echo.Context) error {
	req := new(validator.BulkImportRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	rows := make([]models.Enterprise, 0, len(req.Enterprises))
	for _, e := range req.Enterprises {
		rows = append(rows, models.Enterprise{
			Name:      e.Name,
			DSLNumber: e.DSLNumber,
			Sector:    e.Sector,
			State:     e.State,
			District:  e.District,
			Address:   e.Address,
			Email:     e.Email,
			Phone:     e.Phone,
		})
	}

	result, err := c.assignments.BulkImport(ctx.Request().Context(), rows)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, result)
}

func (c *AssignmentController) Transition(ctx echo.Context) error {
	req := new(validator.AssignmentActionRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	es, err := c.assignments.Transition(ctx.Request().Context(), ctx.Param("id"), workflow.AssignmentAction(req.Action))
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return ctx.JSON(http.StatusOK, es)
}
