package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"assse/internal/config"
	"assse/internal/events"
	"assse/internal/models"
	"assse/internal/services"
	"assse/internal/tasks/rate"
	"assse/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var (
	cfg, _ = config.Load()
)

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db          *gorm.DB
	logger      *logger.Logger
	taskClient  *TaskClient
	assignments *services.AssignmentService
	dispatchRL  *rate.QueueRateLimiter
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(db *gorm.DB, assignments *services.AssignmentService) *TaskHandler {
	taskClient := NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)

	// Notices go out in batches; cap the dispatch rate so the mail relay
	// is never flooded.
	dispatchRL := rate.NewQueueRateLimiter(taskClient.GetRedisClient(), rate.QueueConfig{
		Name: QueueCritical,
		RateLimit: rate.RateLimit{
			Window:  time.Minute,
			MaxJobs: 60,
		},
	})

	return &TaskHandler{
		db:          db,
		logger:      logger.New("task_handler"),
		taskClient:  taskClient,
		assignments: assignments,
		dispatchRL:  dispatchRL,
	}
}

// HandleOverdueScan walks open assignments past their due date and emits an
// overdue event for each. Scheduled nightly.
func (h *TaskHandler) HandleOverdueScan(ctx context.Context, t *asynq.Task) error {
	count, err := h.assignments.ScanOverdue(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("overdue scan failed: %w", err)
	}

	h.logger.Info("overdue scan complete, %d assignments flagged", count)
	return nil
}

type noticeDispatchPayload struct {
	NoticeID string `json:"notice_id"`
}

// HandleNoticeDispatch marks a pending notice dispatched. Rate limited so a
// bulk generation run does not flood downstream delivery.
func (h *TaskHandler) HandleNoticeDispatch(ctx context.Context, t *asynq.Task) error {
	var payload noticeDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid notice dispatch payload: %w", err)
	}

	allowed, err := h.dispatchRL.Allow(ctx, "dispatch")
	if err != nil {
		return fmt.Errorf("rate limiter check failed: %w", err)
	}
	if !allowed {
		// returning an error requeues the task with backoff
		return fmt.Errorf("dispatch rate limit reached, retrying notice %s later", payload.NoticeID)
	}

	var notice models.Notice
	if err := h.db.WithContext(ctx).Where("id = ?", payload.NoticeID).First(&notice).Error; err != nil {
		return fmt.Errorf("notice %s not found: %w", payload.NoticeID, err)
	}

	if notice.Status == models.NoticeStatusDispatched {
		h.logger.Info("notice %s already dispatched, skipping", notice.ID)
		return nil
	}

	now := time.Now()
	notice.Status = models.NoticeStatusDispatched
	notice.DispatchedAt = &now

	if err := h.db.WithContext(ctx).Save(&notice).Error; err != nil {
		notice.Status = models.NoticeStatusFailed
		h.db.WithContext(ctx).Model(&models.Notice{}).Where("id = ?", notice.ID).Update("status", models.NoticeStatusFailed)
		return fmt.Errorf("failed to mark notice %s dispatched: %w", notice.ID, err)
	}

	events.Emit("notices.dispatched", &notice)
	h.logger.Success("notice %s dispatched", notice.ID)
	return nil
}

// EnqueuePendingNotices finds notices still pending and queues a dispatch
// task for each.
func (h *TaskHandler) EnqueuePendingNotices(ctx context.Context, t *asynq.Task) error {
	var notices []models.Notice
	if err := h.db.WithContext(ctx).Where("status = ?", models.NoticeStatusPending).Find(&notices).Error; err != nil {
		return fmt.Errorf("failed to list pending notices: %w", err)
	}

	for i := range notices {
		if err := h.taskClient.EnqueueNoticeDispatch(notices[i].ID); err != nil {
			h.logger.Warn("failed to enqueue notice %s: %v", notices[i].ID, err)
		}
	}

	if len(notices) > 0 {
		h.logger.Info("queued %d pending notices for dispatch", len(notices))
	}
	return nil
}
