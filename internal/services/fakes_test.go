package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"assse/internal/models"

	"github.com/google/uuid"
)

// In-memory fakes for the repository interfaces. The production hooks that
// assign UUIDs run inside the store, so the fakes assign ids themselves.

type fakeWorkflowRepo struct {
	workflows map[string]*models.ApprovalWorkflow
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{workflows: make(map[string]*models.ApprovalWorkflow)}
}

func (r *fakeWorkflowRepo) Create(_ context.Context, wf *models.ApprovalWorkflow) error {
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	for i := range wf.Steps {
		if wf.Steps[i].ID == "" {
			wf.Steps[i].ID = uuid.NewString()
		}
		wf.Steps[i].WorkflowID = wf.ID
	}
	r.workflows[wf.ID] = cloneWorkflow(wf)
	return nil
}

func (r *fakeWorkflowRepo) Update(_ context.Context, wf *models.ApprovalWorkflow) error {
	if _, ok := r.workflows[wf.ID]; !ok {
		return errors.New("workflow not stored")
	}
	for i := range wf.Steps {
		if wf.Steps[i].ID == "" {
			wf.Steps[i].ID = uuid.NewString()
		}
		wf.Steps[i].WorkflowID = wf.ID
	}
	r.workflows[wf.ID] = cloneWorkflow(wf)
	return nil
}

func (r *fakeWorkflowRepo) Delete(_ context.Context, id string) error {
	delete(r.workflows, id)
	return nil
}

func (r *fakeWorkflowRepo) Get(_ context.Context, id string) (*models.ApprovalWorkflow, error) {
	wf, ok := r.workflows[id]
	if !ok {
		return nil, nil
	}
	return cloneWorkflow(wf), nil
}

func (r *fakeWorkflowRepo) GetByName(_ context.Context, name string) (*models.ApprovalWorkflow, error) {
	for _, wf := range r.workflows {
		if wf.Name == name {
			return cloneWorkflow(wf), nil
		}
	}
	return nil, nil
}

func (r *fakeWorkflowRepo) List(_ context.Context, page PageParams) ([]models.ApprovalWorkflow, int64, error) {
	all := make([]models.ApprovalWorkflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		all = append(all, *cloneWorkflow(wf))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	window, total := pageSlice(all, page)
	return window, total, nil
}

func cloneWorkflow(wf *models.ApprovalWorkflow) *models.ApprovalWorkflow {
	clone := *wf
	clone.Steps = append([]models.ApprovalStep(nil), wf.Steps...)
	return &clone
}

type fakeRoleLookup struct {
	codes map[string]bool
}

func newFakeRoleLookup(codes ...string) *fakeRoleLookup {
	r := &fakeRoleLookup{codes: make(map[string]bool, len(codes))}
	for _, c := range codes {
		r.codes[c] = true
	}
	return r
}

func (r *fakeRoleLookup) RoleExists(_ context.Context, code string) (bool, error) {
	return r.codes[code], nil
}

type fakeMenuRepo struct {
	items    []models.MenuItem
	viewable map[string][]string // roleID -> menu item ids
	err      error
}

func (r *fakeMenuRepo) ListMenuItems(_ context.Context) ([]models.MenuItem, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.items, nil
}

func (r *fakeMenuRepo) ListViewableMenuIDs(_ context.Context, roleIDs []string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	seen := make(map[string]bool)
	var ids []string
	for _, roleID := range roleIDs {
		for _, id := range r.viewable[roleID] {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

type fakeUserRoles struct {
	roles map[string][]models.Role
	err   error
}

func (r *fakeUserRoles) UserRoles(_ context.Context, userID string) ([]models.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.roles[userID], nil
}

type fakePermLookup struct {
	perms []models.RolePermission
}

func (r *fakePermLookup) RoleMenuPermissions(_ context.Context, roleIDs []string, menuItemID string) ([]models.RolePermission, error) {
	wanted := make(map[string]bool, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = true
	}
	var out []models.RolePermission
	for _, p := range r.perms {
		if wanted[p.RoleID] && p.MenuItemID == menuItemID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments map[string]*models.ScrutinyComment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.ScrutinyComment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *models.ScrutinyComment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	stored := *c
	r.comments[c.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) Get(_ context.Context, id string) (*models.ScrutinyComment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCommentRepo) Update(_ context.Context, c *models.ScrutinyComment) error {
	stored := *c
	r.comments[c.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) ListByField(_ context.Context, surveyID, blockID, fieldID string) ([]models.ScrutinyComment, error) {
	var out []models.ScrutinyComment
	for _, c := range r.comments {
		if c.SurveyID == surveyID && c.BlockID == blockID && c.FieldID == fieldID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListByBlock(_ context.Context, surveyID, blockID string) ([]models.ScrutinyComment, error) {
	var out []models.ScrutinyComment
	for _, c := range r.comments {
		if c.SurveyID == surveyID && c.BlockID == blockID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeSurveyRepo struct {
	surveys   map[string]*models.SurveyInstance
	responses []models.SurveyResponse
	saveErr   error
}

func newFakeSurveyRepo() *fakeSurveyRepo {
	return &fakeSurveyRepo{surveys: make(map[string]*models.SurveyInstance)}
}

func (r *fakeSurveyRepo) put(s *models.SurveyInstance) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	stored := *s
	r.surveys[s.ID] = &stored
}

func (r *fakeSurveyRepo) Get(_ context.Context, id string) (*models.SurveyInstance, error) {
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSurveyRepo) Save(_ context.Context, s *models.SurveyInstance) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	stored := *s
	r.surveys[s.ID] = &stored
	return nil
}

func (r *fakeSurveyRepo) ListByStatus(_ context.Context, status models.SurveyStatus, page PageParams) ([]models.SurveyInstance, int64, error) {
	var matched []models.SurveyInstance
	for _, s := range r.surveys {
		if s.Status == status {
			matched = append(matched, *s)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	window, total := pageSlice(matched, page)
	return window, total, nil
}

func (r *fakeSurveyRepo) ResponsesFor(_ context.Context, surveyID string) ([]models.SurveyResponse, error) {
	var out []models.SurveyResponse
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			out = append(out, resp)
		}
	}
	return out, nil
}

type fakeScheduleLookup struct {
	schedules map[string]*models.SurveySchedule
}

func (r *fakeScheduleLookup) Schedule(_ context.Context, id string) (*models.SurveySchedule, error) {
	return r.schedules[id], nil
}

type fakeAssignmentRepo struct {
	assignments map[string]*models.EnterpriseSurvey
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]*models.EnterpriseSurvey)}
}

func (r *fakeAssignmentRepo) Create(_ context.Context, es *models.EnterpriseSurvey) error {
	if es.ID == "" {
		es.ID = uuid.NewString()
	}
	stored := *es
	r.assignments[es.ID] = &stored
	return nil
}

func (r *fakeAssignmentRepo) Get(_ context.Context, id string) (*models.EnterpriseSurvey, error) {
	es, ok := r.assignments[id]
	if !ok {
		return nil, nil
	}
	clone := *es
	return &clone, nil
}

func (r *fakeAssignmentRepo) Save(_ context.Context, es *models.EnterpriseSurvey) error {
	stored := *es
	r.assignments[es.ID] = &stored
	return nil
}

func (r *fakeAssignmentRepo) Exists(_ context.Context, enterpriseID, templateID string) (bool, error) {
	for _, es := range r.assignments {
		if es.EnterpriseID == enterpriseID && es.TemplateID == templateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssignmentRepo) ListDueBefore(_ context.Context, cutoff time.Time) ([]models.EnterpriseSurvey, error) {
	var out []models.EnterpriseSurvey
	for _, es := range r.assignments {
		if es.DueDate == nil || !es.DueDate.Before(cutoff) {
			continue
		}
		if es.Status == models.AssignmentStatusAssigned || es.Status == models.AssignmentStatusInProgress {
			out = append(out, *es)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) List(_ context.Context, page PageParams) ([]models.EnterpriseSurvey, int64, error) {
	all := make([]models.EnterpriseSurvey, 0, len(r.assignments))
	for _, es := range r.assignments {
		all = append(all, *es)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	window, total := pageSlice(all, page)
	return window, total, nil
}

type fakeEnterpriseRepo struct {
	enterprises map[string]*models.Enterprise
}

func newFakeEnterpriseRepo() *fakeEnterpriseRepo {
	return &fakeEnterpriseRepo{enterprises: make(map[string]*models.Enterprise)}
}

func (r *fakeEnterpriseRepo) Create(_ context.Context, e *models.Enterprise) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	stored := *e
	r.enterprises[e.ID] = &stored
	return nil
}

func (r *fakeEnterpriseRepo) ExistsByDSL(_ context.Context, dslNumber string) (bool, error) {
	for _, e := range r.enterprises {
		if e.DSLNumber == dslNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnterpriseRepo) List(_ context.Context, page PageParams) ([]models.Enterprise, int64, error) {
	all := make([]models.Enterprise, 0, len(r.enterprises))
	for _, e := range r.enterprises {
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DSLNumber < all[j].DSLNumber })
	window, total := pageSlice(all, page)
	return window, total, nil
}
