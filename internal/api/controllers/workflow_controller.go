package controllers

import (
	"errors"
	"net/http"

	"assse/internal/api/validator"
	"assse/internal/models"
	"assse/internal/services"

	"github.com/labstack/echo/v4"
)

// WorkflowController exposes the approval-workflow definition store.
type WorkflowController struct {
	workflows *services.WorkflowService
}

func NewWorkflowController(workflows *services.WorkflowService) *WorkflowController {
	return &WorkflowController{workflows: workflows}
}

func (c *WorkflowController) RegisterRoutes(g *echo.Group) {
	g.POST("", c.Create)
	g.GET("", c.List)
	g.GET("/:id", c.Get)
	g.PUT("/:id", c.Update)
	g.DELETE("/:id", c.Delete)
	g.POST("/:id/chain", c.ChainSteps)
	g.POST("/:id/steps", c.AppendStep)
	g.DELETE("/:id/steps/:stepId", c.RemoveStep)
}

func workflowFromRequest(req *validator.WorkflowRequest) *models.ApprovalWorkflow {
	wf := &models.ApprovalWorkflow{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	for _, s := range req.Steps {
		wf.Steps = append(wf.Steps, models.ApprovalStep{
			Name:         s.Name,
			RoleCode:     s.RoleCode,
			OfficeType:   s.OfficeType,
			Required:     s.Required,
			CanReject:    s.CanReject,
			CanReferBack: s.CanReferBack,
		})
	}
	return wf
}

func workflowError(err error) error {
	switch {
	case errors.Is(err, services.ErrWorkflowInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrWorkflowNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// Create godoc
// @Summary Create an approval workflow
// @Accept json
// @Produce json
// @Param workflow body validator.WorkflowRequest true "Workflow definition"
// @Success 201 {object} models.ApprovalWorkflow
// @Router /api/v1/workflows [post]
func (c *WorkflowController) Create(ctx echo.Context) error {
	req := new(validator.WorkflowRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	wf := workflowFromRequest(req)
	if err := c.workflows.Create(ctx.Request().Context(), wf); err != nil {
		return workflowError(err)
	}
	return ctx.JSON(http.StatusCreated, wf)
}

func (c *WorkflowController) List(ctx echo.Context) error {
	page, err := c.workflows.List(ctx.Request().Context(), ParsePageParams(ctx))
	if err != nil {
		return workflowError(err)
	}
	return ctx.JSON(http.StatusOK, page)
}

func (c *WorkflowController) Get(ctx echo.Context) error {
	wf, err := c.workflows.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return workflowError(err)
	}
	if wf == nil {
		return echo.NewHTTPError(http.StatusNotFound, "workflow not found")
	}
	return ctx.JSON(http.StatusOK, wf)
}

func (c *WorkflowController) Update(ctx echo.Context) error {
	existing, err := c.workflows.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return workflowError(err)
	}
	if existing == nil {
		return echo.NewHTTPError(http.StatusNotFound, "workflow not found")
	}

	req := new(validator.WorkflowRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	wf := workflowFromRequest(req)
	wf.ID = existing.ID
	for i := range wf.Steps {
		wf.Steps[i].WorkflowID = wf.ID
		wf.Steps[i].StepNumber = i + 1
	}
	if err := c.workflows.Update(ctx.Request().Context(), wf); err != nil {
		return workflowError(err)
	}
	return ctx.JSON(http.StatusOK, wf)
}

func (c *WorkflowController) Delete(ctx echo.Context) error {
	if err := c.workflows.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return workflowError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ChainSteps relinks every step's successor pointer into creation order.
func (c *WorkflowController) ChainSteps(ctx echo.Context) error {
	wf, err := c.workflows.ChainSteps(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return workflowError(err)
	}
	return ctx.JSON(http.StatusOK, wf)
}

func (c *WorkflowController) AppendStep(ctx echo.Context) error {
	req := new(validator.WorkflowStepRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	wf, err := c.workflows.AppendStep(ctx.Request().Context(), ctx.Param("id"), models.ApprovalStep{
		Name:         req.Name,
		RoleCode:     req.RoleCode,
		OfficeType:   req.OfficeType,
		Required:     req.Required,
		CanReject:    req.CanReject,
		CanReferBack: req.CanReferBack,
	})
	if err != nil {
		return workflowError(err)
	}
	return ctx.JSON(http.StatusOK, wf)
}

func (c *WorkflowController) RemoveStep(ctx echo.Context) error {
	wf, err := c.workflows.RemoveStep(ctx.Request().Context(), ctx.Param("id"), ctx.Param("stepId"))
	if err != nil {
		return workflowError(err)
	}
	return ctx.JSON(http.StatusOK, wf)
}
