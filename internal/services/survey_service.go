package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assse/internal/events"
	"assse/internal/models"
	console "assse/internal/utils/logger"
	"assse/internal/workflow"
)

var (
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrIncompleteBlocks = errors.New("required blocks are incomplete")
	ErrMissingComment   = errors.New("block rejection requires a comment")
)

// SurveyRepository is the persistence contract for survey instances.
type SurveyRepository interface {
	Get(ctx context.Context, id string) (*models.SurveyInstance, error)
	Save(ctx context.Context, s *models.SurveyInstance) error
	ListByStatus(ctx context.Context, status models.SurveyStatus, page PageParams) ([]models.SurveyInstance, int64, error)
	ResponsesFor(ctx context.Context, surveyID string) ([]models.SurveyResponse, error)
}

// ScheduleLookup loads the schedule a survey is filled against.
type ScheduleLookup interface {
	Schedule(ctx context.Context, id string) (*models.SurveySchedule, error)
}

// SurveyEvent is the payload emitted on every survey transition, consumed
// by the audit and notification subscribers.
type SurveyEvent struct {
	Survey  *models.SurveyInstance
	Action  workflow.Action
	ActorID string
	Detail  string
}

// SurveyService drives survey instances through the scrutiny workflow.
// Every status change goes through the state machine; the service applies
// the returned effects.
type SurveyService struct {
	repo      SurveyRepository
	schedules ScheduleLookup
	comments  *ScrutinyService
	machine   *workflow.Machine
	log       *console.Logger
}

func NewSurveyService(repo SurveyRepository, schedules ScheduleLookup, comments *ScrutinyService) *SurveyService {
	return &SurveyService{
		repo:      repo,
		schedules: schedules,
		comments:  comments,
		machine:   workflow.NewMachine(),
		log:       console.New("survey_service"),
	}
}

// Get returns one survey instance.
func (s *SurveyService) Get(ctx context.Context, id string) (*models.SurveyInstance, error) {
	return s.repo.Get(ctx, id)
}

// ListByStatus pages survey instances in one status, e.g. the compiler's
// draft list or a scrutinizer's submitted queue.
func (s *SurveyService) ListByStatus(ctx context.Context, status models.SurveyStatus, page PageParams) (Paged[models.SurveyInstance], error) {
	data, total, err := s.repo.ListByStatus(ctx, status, page)
	if err != nil {
		return Paged[models.SurveyInstance]{}, err
	}
	return NewPaged(data, total, page), nil
}

// Submit moves a draft survey to submitted after checking every required
// block of the bound schedule has a complete response.
func (s *SurveyService) Submit(ctx context.Context, surveyID string, actor workflow.Actor) (*models.SurveyInstance, error) {
	survey, err := s.repo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}

	if err := s.checkRequiredBlocks(ctx, survey); err != nil {
		return nil, err
	}

	return s.transition(ctx, survey, workflow.ActionSubmit, actor, nil, "")
}

// StartScrutiny is invoked when a scrutinizer opens a submitted survey.
func (s *SurveyService) StartScrutiny(ctx context.Context, surveyID string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
	survey, err := s.repo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return s.transition(ctx, survey, workflow.ActionStartScrutiny, actor, step, "")
}

// ApproveBlock records block approval. A no-op signal for the instance
// status.
func (s *SurveyService) ApproveBlock(ctx context.Context, surveyID, blockID string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
	survey, err := s.repo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return s.transition(ctx, survey, workflow.ActionApproveBlock, actor, step, blockID)
}

// RejectBlock attaches a comment-bearing rejection to one block. It does
// not change the instance status; instance rejection is a distinct action.
func (s *SurveyService) RejectBlock(ctx context.Context, surveyID, blockID, fieldID, comment string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
	if comment == "" {
		return nil, ErrMissingComment
	}

	survey, err := s.repo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}

	updated, err := s.transition(ctx, survey, workflow.ActionRejectBlock, actor, step, blockID)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Add(ctx, &models.ScrutinyComment{
		SurveyID:      surveyID,
		BlockID:       blockID,
		FieldID:       fieldID,
		Comment:       comment,
		ScrutinizerID: actor.UserID,
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// FinalApprove is the terminal action on the last block of the schedule.
func (s *SurveyService) FinalApprove(ctx context.Context, surveyID string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
	survey, err := s.repo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return s.transition(ctx, survey, workflow.ActionFinalApprove, actor, step, "")
}

// Reject rejects the whole instance. Never derived from block rejections.
func (s *SurveyService) Reject(ctx context.Context, surveyID string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
	survey, err := s.repo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return s.transition(ctx, survey, workflow.ActionReject, actor, step, "")
}

// ReferBack returns the instance to the compiler as a fresh draft.
func (s *SurveyService) ReferBack(ctx context.Context, surveyID string, actor workflow.Actor, step *models.ApprovalStep) (*models.SurveyInstance, error) {
	survey, err := s.repo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return s.transition(ctx, survey, workflow.ActionReferBack, actor, step, "")
}

func (s *SurveyService) transition(ctx context.Context, survey *models.SurveyInstance, action workflow.Action, actor workflow.Actor, step *models.ApprovalStep, detail string) (*models.SurveyInstance, error) {
	result, err := s.machine.Transition(survey.Status, action, actor, step)
	if err != nil {
		return nil, err
	}

	previous := survey.Status
	prevScrutinizer := survey.ScrutinizerID
	prevSubmitted := survey.SubmittedAt
	prevDecided := survey.DecidedAt
	survey.Status = result.Next

	now := time.Now()
	for _, effect := range result.Effects {
		switch effect.Type {
		case workflow.EffectSetScrutinizer:
			survey.ScrutinizerID = actor.UserID
		case workflow.EffectMarkDecided:
			survey.DecidedAt = &now
		}
	}
	if action == workflow.ActionSubmit {
		survey.SubmittedAt = &now
	}

	if err := s.repo.Save(ctx, survey); err != nil {
		// leave the caller's view consistent with the store
		survey.Status = previous
		survey.ScrutinizerID = prevScrutinizer
		survey.SubmittedAt = prevSubmitted
		survey.DecidedAt = prevDecided
		return nil, err
	}

	events.Emit("survey_instances.transitioned", &SurveyEvent{
		Survey:  survey,
		Action:  action,
		ActorID: actor.UserID,
		Detail:  detail,
	})

	s.log.Info("survey %s: %s → %s by %s", survey.ID, previous, survey.Status, actor.UserID)
	return survey, nil
}

// checkRequiredBlocks verifies that every block of the schedule containing
// required fields has a complete response.
func (s *SurveyService) checkRequiredBlocks(ctx context.Context, survey *models.SurveyInstance) error {
	schedule, err := s.schedules.Schedule(ctx, survey.ScheduleID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return fmt.Errorf("schedule %s not found", survey.ScheduleID)
	}

	responses, err := s.repo.ResponsesFor(ctx, survey.ID)
	if err != nil {
		return err
	}
	complete := make(map[string]bool, len(responses))
	for _, r := range responses {
		if r.Complete {
			complete[r.BlockID] = true
		}
	}

	for _, blockID := range schedule.RequiredBlockIDs() {
		if !complete[blockID] {
			return fmt.Errorf("%w: block %s", ErrIncompleteBlocks, blockID)
		}
	}
	return nil
}
