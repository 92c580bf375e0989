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

// SurveyController drives survey instances through the scrutiny workflow
// and manages scrutiny comments.
type SurveyController struct {
	surveys   *services.SurveyService
	workflows *services.WorkflowService
	scrutiny  *services.ScrutinyService
}

func NewSurveyController(surveys *services.SurveyService, workflows *services.WorkflowService, scrutiny *services.ScrutinyService) *SurveyController {
	return &SurveyController{
		surveys:   surveys,
		workflows: workflows,
		scrutiny:  scrutiny,
	}
}

func (c *SurveyController) RegisterRoutes(g *echo.Group) {
	g.GET("", c.List)
	g.GET("/:id", c.Get)
	g.POST("/:id/submit", c.Submit)

	scrutinyGroup := g.Group("", middleware.RequireScrutinizer())
	scrutinyGroup.POST("/:id/start-scrutiny", c.StartScrutiny)
	scrutinyGroup.POST("/:id/approve-block", c.ApproveBlock)
	scrutinyGroup.POST("/:id/reject-block", c.RejectBlock)
	scrutinyGroup.POST("/:id/approve", c.FinalApprove)
	scrutinyGroup.POST("/:id/reject", c.Reject)
	scrutinyGroup.POST("/:id/refer-back", c.ReferBack)

	g.GET("/:id/blocks/:blockId/comments", c.BlockComments)
	scrutinyGroup.POST("/comments", c.AddComment)
	scrutinyGroup.POST("/comments/:commentId/resolve", c.ResolveComment)
	scrutinyGroup.DELETE("/comments/:commentId", c.DeleteComment)
}

func surveyError(err error) error {
	var rej *workflow.RejectedError
	switch {
	case errors.As(err, &rej):
		return echo.NewHTTPError(http.StatusConflict, rej.Error())
	case errors.Is(err, services.ErrSurveyNotFound), errors.Is(err, services.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrIncompleteBlocks), errors.Is(err, services.ErrMissingComment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// step resolves the approval step named in the request against the survey's
// bound workflow. Returns nil when the survey has no workflow binding.
func (c *SurveyController) step(ctx echo.Context, surveyID, stepID string) (*models.ApprovalStep, error) {
	if stepID == "" {
		return nil, nil
	}
	survey, err := c.surveys.Get(ctx.Request().Context(), surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, services.ErrSurveyNotFound
	}
	if survey.WorkflowName == "" {
		return nil, nil
	}
	wf, err := c.workflows.GetByName(ctx.Request().Context(), survey.WorkflowName)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, nil
	}
	return wf.StepByID(stepID), nil
}

// List godoc
// @Summary List survey instances by status
// @Produce json
// @Param status query string true "Survey status"
// @Success 200 {object} services.Paged[models.SurveyInstance]
// @Router /api/v1/surveys [get]
func (c *SurveyController) List(ctx echo.Context) error {
	status := models.SurveyStatus(ctx.QueryParam("status"))
	if !models.IsValidSurveyStatus(status) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid or missing status")
	}
	page, err := c.surveys.ListByStatus(ctx.Request().Context(), status, ParsePageParams(ctx))
	if err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusOK, page)
}

func (c *SurveyController) Get(ctx echo.Context) error {
	survey, err := c.surveys.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return surveyError(err)
	}
	if survey == nil {
		return echo.NewHTTPError(http.StatusNotFound, "survey not found")
	}
	return ctx.JSON(http.StatusOK, survey)
}

func (c *SurveyController) Submit(ctx echo.Context) error {
	survey, err := c.surveys.Submit(ctx.Request().Context(), ctx.Param("id"), middleware.GetActor(ctx))
	if err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusOK, survey)
}

func (c *SurveyController) action(ctx echo.Context, fn func(surveyID string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error)) error {
	req := new(validator.SurveyActionRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	surveyID := ctx.Param("id")
	step, err := c.step(ctx, surveyID, req.StepID)
	if err != nil {
		return surveyError(err)
	}

	survey, err := fn(surveyID, middleware.GetActor(ctx), step)
	if err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusOK, survey)
}

func (c *SurveyController) StartScrutiny(ctx echo.Context) error {
	return c.action(ctx, func(id string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
		return c.surveys.StartScrutiny(ctx.Request().Context(), id, actor, step)
	})
}

func (c *SurveyController) ApproveBlock(ctx echo.Context) error {
	req := new(validator.SurveyActionRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.BlockID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "blockId is required")
	}

	surveyID := ctx.Param("id")
	step, err := c.step(ctx, surveyID, req.StepID)
	if err != nil {
		return surveyError(err)
	}

	survey, err := c.surveys.ApproveBlock(ctx.Request().Context(), surveyID, req.BlockID, middleware.GetActor(ctx), step)
	if err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusOK, survey)
}

func (c *SurveyController) RejectBlock(ctx echo.Context) error {
	req := new(validator.SurveyActionRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.BlockID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "blockId is required")
	}

	surveyID := ctx.Param("id")
	step, err := c.step(ctx, surveyID, req.StepID)
	if err != nil {
		return surveyError(err)
	}

	survey, err := c.surveys.RejectBlock(ctx.Request().Context(), surveyID, req.BlockID, req.FieldID, req.Comment, middleware.GetActor(ctx), step)
	if err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusOK, survey)
}

func (c *SurveyController) FinalApprove(ctx echo.Context) error {
	return c.action(ctx, func(id string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
		return c.surveys.FinalApprove(ctx.Request().Context(), id, actor, step)
	})
}

func (c *SurveyController) Reject(ctx echo.Context) error {
	return c.action(ctx, func(id string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
		return c.surveys.Reject(ctx.Request().Context(), id, actor, step)
	})
}

func (c *SurveyController) ReferBack(ctx echo.Context) error {
	return c.action(ctx, func(id string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
		return c.surveys.ReferBack(ctx.Request().Context(), id, actor, step)
	})
}

func (c *SurveyController) BlockComments(ctx echo.Context) error {
	comments, err := c.scrutiny.ForBlock(ctx.Request().Context(), ctx.Param("id"), ctx.Param("blockId"))
	if err != nil {
		return surveyError(err)
	}
	unresolved, err := c.scrutiny.UnresolvedCount(ctx.Request().Context(), ctx.Param("id"), ctx.Param("blockId"))
	if err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"comments":   comments,
		"unresolved": unresolved,
	})
}

func (c *SurveyController) AddComment(ctx echo.Context) error {
	req := new(validator.ScrutinyCommentRequest)
	if err := ctx.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	comment := &models.ScrutinyComment{
		SurveyID:      req.SurveyID,
		BlockID:       req.BlockID,
		FieldID:       req.FieldID,
		Comment:       req.Comment,
		ScrutinizerID: middleware.GetUserID(ctx),
	}
	if err := c.scrutiny.Add(ctx.Request().Context(), comment); err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusCreated, comment)
}

func (c *SurveyController) ResolveComment(ctx echo.Context) error {
	comment, err := c.scrutiny.Resolve(ctx.Request().Context(), ctx.Param("commentId"))
	if err != nil {
		return surveyError(err)
	}
	return ctx.JSON(http.StatusOK, comment)
}

func (c *SurveyController) DeleteComment(ctx echo.Context) error {
	if err := c.scrutiny.Delete(ctx.Request().Context(), ctx.Param("commentId")); err != nil {
		return surveyError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
