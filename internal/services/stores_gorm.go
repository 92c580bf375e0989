package services

import (
	"context"
	"errors"
	"time"

	"assse/internal/models"

	"gorm.io/gorm"
)

// GORM-backed implementations of the repository interfaces, one store per
// aggregate. All share the same *gorm.DB handle.

// GormWorkflowStore persists approval workflow definitions.
type GormWorkflowStore struct {
	db *gorm.DB
}

func NewGormWorkflowStore(db *gorm.DB) *GormWorkflowStore {
	return &GormWorkflowStore{db: db}
}

var _ WorkflowRepository = (*GormWorkflowStore)(nil)

func (s *GormWorkflowStore) Create(ctx context.Context, wf *models.ApprovalWorkflow) error {
	return s.db.WithContext(ctx).Create(wf).Error
}

// Update replaces the step set wholesale so removed steps do not linger.
func (s *GormWorkflowStore) Update(ctx context.Context, wf *models.ApprovalWorkflow) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", wf.ID).Delete(&models.ApprovalStep{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(wf).Error
	})
}

func (s *GormWorkflowStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Select("Steps").
		Delete(&models.ApprovalWorkflow{Base: models.Base{ID: id}}).Error
}

func (s *GormWorkflowStore) Get(ctx context.Context, id string) (*models.ApprovalWorkflow, error) {
	var wf models.ApprovalWorkflow
	err := s.db.WithContext(ctx).Preload("Steps").
		First(&wf, "id = ? AND is_deleted = false", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

func (s *GormWorkflowStore) GetByName(ctx context.Context, name string) (*models.ApprovalWorkflow, error) {
	var wf models.ApprovalWorkflow
	err := s.db.WithContext(ctx).Preload("Steps").
		First(&wf, "name = ? AND is_deleted = false", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

func (s *GormWorkflowStore) List(ctx context.Context, page PageParams) ([]models.ApprovalWorkflow, int64, error) {
	page = page.Normalize()
	query := s.db.WithContext(ctx).Model(&models.ApprovalWorkflow{}).Where("is_deleted = false")
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var workflows []models.ApprovalWorkflow
	err := query.Preload("Steps").
		Offset(page.Offset()).Limit(page.Limit).
		Order("created_at asc").
		Find(&workflows).Error
	return workflows, total, err
}

// GormRBACStore serves role, menu and permission lookups.
type GormRBACStore struct {
	db *gorm.DB
}

func NewGormRBACStore(db *gorm.DB) *GormRBACStore {
	return &GormRBACStore{db: db}
}

var (
	_ RoleLookup       = (*GormRBACStore)(nil)
	_ MenuRepository   = (*GormRBACStore)(nil)
	_ UserRoleLookup   = (*GormRBACStore)(nil)
	_ PermissionLookup = (*GormRBACStore)(nil)
)

func (s *GormRBACStore) RoleExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Where("code = ? AND is_deleted = false", code).Count(&count).Error
	return count > 0, err
}

func (s *GormRBACStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).Where("is_deleted = false").
		Order("sort_order asc").Find(&items).Error
	return items, err
}

func (s *GormRBACStore) ListViewableMenuIDs(ctx context.Context, roleIDs []string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.RolePermission{}).
		Where("role_id IN ? AND can_view = true AND is_deleted = false", roleIDs).
		Distinct().Pluck("menu_item_id", &ids).Error
	return ids, err
}

func (s *GormRBACStore) UserRoles(ctx context.Context, userID string) ([]models.Role, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").
		First(&user, "id = ? AND is_deleted = false", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

func (s *GormRBACStore) RoleMenuPermissions(ctx context.Context, roleIDs []string, menuItemID string) ([]models.RolePermission, error) {
	var perms []models.RolePermission
	err := s.db.WithContext(ctx).
		Where("role_id IN ? AND menu_item_id = ? AND is_deleted = false", roleIDs, menuItemID).
		Find(&perms).Error
	return perms, err
}

// GormCommentStore persists scrutiny comments.
type GormCommentStore struct {
	db *gorm.DB
}

func NewGormCommentStore(db *gorm.DB) *GormCommentStore {
	return &GormCommentStore{db: db}
}

var _ CommentRepository = (*GormCommentStore)(nil)

func (s *GormCommentStore) Create(ctx context.Context, c *models.ScrutinyComment) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormCommentStore) Get(ctx context.Context, id string) (*models.ScrutinyComment, error) {
	var c models.ScrutinyComment
	err := s.db.WithContext(ctx).First(&c, "id = ? AND is_deleted = false", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormCommentStore) Update(ctx context.Context, c *models.ScrutinyComment) error {
	return s.db.WithContext(ctx).Save(c).Error
}

// Delete removes the row outright; comment deletion is not a soft delete.
func (s *GormCommentStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Unscoped().
		Delete(&models.ScrutinyComment{}, "id = ?", id).Error
}

func (s *GormCommentStore) ListByField(ctx context.Context, surveyID, blockID, fieldID string) ([]models.ScrutinyComment, error) {
	var comments []models.ScrutinyComment
	err := s.db.WithContext(ctx).
		Where("survey_id = ? AND block_id = ? AND field_id = ? AND is_deleted = false", surveyID, blockID, fieldID).
		Order("created_at asc").Find(&comments).Error
	return comments, err
}

func (s *GormCommentStore) ListByBlock(ctx context.Context, surveyID, blockID string) ([]models.ScrutinyComment, error) {
	var comments []models.ScrutinyComment
	err := s.db.WithContext(ctx).
		Where("survey_id = ? AND block_id = ? AND is_deleted = false", surveyID, blockID).
		Order("created_at asc").Find(&comments).Error
	return comments, err
}

// GormSurveyStore persists survey instances and serves schedule lookups.
type GormSurveyStore struct {
	db *gorm.DB
}

func NewGormSurveyStore(db *gorm.DB) *GormSurveyStore {
	return &GormSurveyStore{db: db}
}

var (
	_ SurveyRepository = (*GormSurveyStore)(nil)
	_ ScheduleLookup   = (*GormSurveyStore)(nil)
)

func (s *GormSurveyStore) Get(ctx context.Context, id string) (*models.SurveyInstance, error) {
	var survey models.SurveyInstance
	err := s.db.WithContext(ctx).First(&survey, "id = ? AND is_deleted = false", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (s *GormSurveyStore) Save(ctx context.Context, survey *models.SurveyInstance) error {
	return s.db.WithContext(ctx).Save(survey).Error
}

func (s *GormSurveyStore) ListByStatus(ctx context.Context, status models.SurveyStatus, page PageParams) ([]models.SurveyInstance, int64, error) {
	page = page.Normalize()
	query := s.db.WithContext(ctx).Model(&models.SurveyInstance{}).
		Where("status = ? AND is_deleted = false", status)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var surveys []models.SurveyInstance
	err := query.Offset(page.Offset()).Limit(page.Limit).
		Order("updated_at desc").Find(&surveys).Error
	return surveys, total, err
}

func (s *GormSurveyStore) ResponsesFor(ctx context.Context, surveyID string) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	err := s.db.WithContext(ctx).
		Where("survey_id = ? AND is_deleted = false", surveyID).Find(&responses).Error
	return responses, err
}

func (s *GormSurveyStore) Schedule(ctx context.Context, id string) (*models.SurveySchedule, error) {
	var schedule models.SurveySchedule
	err := s.db.WithContext(ctx).
		Preload("Blocks").Preload("Blocks.Fields").Preload("Blocks.Columns").
		First(&schedule, "id = ? AND is_deleted = false", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GormAssignmentStore persists enterprise-survey assignments.
type GormAssignmentStore struct {
	db *gorm.DB
}

func NewGormAssignmentStore(db *gorm.DB) *GormAssignmentStore {
	return &GormAssignmentStore{db: db}
}

var _ AssignmentRepository = (*GormAssignmentStore)(nil)

func (s *GormAssignmentStore) Create(ctx context.Context, es *models.EnterpriseSurvey) error {
	return s.db.WithContext(ctx).Create(es).Error
}

func (s *GormAssignmentStore) Get(ctx context.Context, id string) (*models.EnterpriseSurvey, error) {
	var es models.EnterpriseSurvey
	err := s.db.WithContext(ctx).First(&es, "id = ? AND is_deleted = false", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &es, nil
}

func (s *GormAssignmentStore) Save(ctx context.Context, es *models.EnterpriseSurvey) error {
	return s.db.WithContext(ctx).Save(es).Error
}

func (s *GormAssignmentStore) Exists(ctx context.Context, enterpriseID, templateID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.EnterpriseSurvey{}).
		Where("enterprise_id = ? AND template_id = ? AND is_deleted = false", enterpriseID, templateID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormAssignmentStore) ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.EnterpriseSurvey, error) {
	open := []models.AssignmentStatus{
		models.AssignmentStatusAssigned,
		models.AssignmentStatusInProgress,
	}
	var due []models.EnterpriseSurvey
	err := s.db.WithContext(ctx).
		Where("due_date < ? AND status IN ? AND is_deleted = false", cutoff, open).
		Find(&due).Error
	return due, err
}

func (s *GormAssignmentStore) List(ctx context.Context, page PageParams) ([]models.EnterpriseSurvey, int64, error) {
	page = page.Normalize()
	query := s.db.WithContext(ctx).Model(&models.EnterpriseSurvey{}).Where("is_deleted = false")
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.EnterpriseSurvey
	err := query.Offset(page.Offset()).Limit(page.Limit).
		Order("created_at desc").Find(&rows).Error
	return rows, total, err
}

// GormEnterpriseStore persists the enterprise register.
type GormEnterpriseStore struct {
	db *gorm.DB
}

func NewGormEnterpriseStore(db *gorm.DB) *GormEnterpriseStore {
	return &GormEnterpriseStore{db: db}
}

var _ EnterpriseRepository = (*GormEnterpriseStore)(nil)

func (s *GormEnterpriseStore) Create(ctx context.Context, e *models.Enterprise) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormEnterpriseStore) ExistsByDSL(ctx context.Context, dslNumber string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Enterprise{}).
		Where("dsl_number = ? AND is_deleted = false", dslNumber).Count(&count).Error
	return count > 0, err
}

func (s *GormEnterpriseStore) List(ctx context.Context, page PageParams) ([]models.Enterprise, int64, error) {
	page = page.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Enterprise{}).Where("is_deleted = false")
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Enterprise
	err := query.Offset(page.Offset()).Limit(page.Limit).
		Order("dsl_number asc").Find(&rows).Error
	return rows, total, err
}
