package services

import (
	"context"
	"errors"
	"strings"

	"assse/internal/events"
	"assse/internal/models"
)

var ErrCommentNotFound = errors.New("scrutiny comment not found")

// CommentRepository stores scrutiny comments keyed by survey, block and
// field.
type CommentRepository interface {
	Create(ctx context.Context, c *models.ScrutinyComment) error
	Get(ctx context.Context, id string) (*models.ScrutinyComment, error)
	Update(ctx context.Context, c *models.ScrutinyComment) error
	Delete(ctx context.Context, id string) error
	ListByField(ctx context.Context, surveyID, blockID, fieldID string) ([]models.ScrutinyComment, error)
	ListByBlock(ctx context.Context, surveyID, blockID string) ([]models.ScrutinyComment, error)
}

// ScrutinyService owns the advisory comment lifecycle. Comments flag fields
// during review but never block a status transition.
type ScrutinyService struct {
	repo CommentRepository
}

func NewScrutinyService(repo CommentRepository) *ScrutinyService {
	return &ScrutinyService{repo: repo}
}

// Add attaches a comment to one field of one block of a survey instance.
func (s *ScrutinyService) Add(ctx context.Context, c *models.ScrutinyComment) error {
	if strings.TrimSpace(c.Comment) == "" {
		return errors.New("comment text is required")
	}
	c.Resolved = false
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	events.Emit("scrutiny_comments.added", c)
	return nil
}

// Resolve marks a comment resolved. The transition is one way; an already
// resolved comment stays resolved.
func (s *ScrutinyService) Resolve(ctx context.Context, id string) (*models.ScrutinyComment, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCommentNotFound
	}
	if c.Resolved {
		return c, nil
	}
	c.Resolved = true
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	events.Emit("scrutiny_comments.resolved", c)
	return c, nil
}

// Delete removes the comment entirely rather than transitioning state.
func (s *ScrutinyService) Delete(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCommentNotFound
	}
	return s.repo.Delete(ctx, id)
}

// ForField lists all comments on a field, unresolved and resolved alike.
func (s *ScrutinyService) ForField(ctx context.Context, surveyID, blockID, fieldID string) ([]models.ScrutinyComment, error) {
	return s.repo.ListByField(ctx, surveyID, blockID, fieldID)
}

// ForBlock lists all comments accumulated on one block of a survey.
func (s *ScrutinyService) ForBlock(ctx context.Context, surveyID, blockID string) ([]models.ScrutinyComment, error) {
	return s.repo.ListByBlock(ctx, surveyID, blockID)
}

// UnresolvedCount reports how many comments on a block still need
// attention. Used to flag fields in review screens.
func (s *ScrutinyService) UnresolvedCount(ctx context.Context, surveyID, blockID string) (int, error) {
	comments, err := s.repo.ListByBlock(ctx, surveyID, blockID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range comments {
		if !c.Resolved {
			count++
		}
	}
	return count, nil
}
