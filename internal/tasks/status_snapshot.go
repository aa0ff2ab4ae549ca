package tasks

import (
	"context"
	"fmt"
	"time"

	"shopee/internal/config"
	"shopee/internal/model"
	"shopee/internal/task"

	"go.uber.org/zap"
)

// StatusCounter 按状态统计商品数量
type StatusCounter interface {
	CountByStatus(ctx context.Context, userID int64, accountID *int64) (map[string]int, error)
}

// SnapshotSaver 保存状态计数快照
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap *model.StatusSnapshot) error
}

// StatusSnapshotTask 定时统计用户商品状态数量并保存快照
type StatusSnapshotTask struct {
	job     config.SnapshotJobConfig
	timeout time.Duration
	counter StatusCounter
	saver   SnapshotSaver
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatusSnapshotTask 根据任务配置创建快照任务
func NewStatusSnapshotTask(job config.SnapshotJobConfig, counter StatusCounter, saver SnapshotSaver, logger *zap.Logger) (*StatusSnapshotTask, error) {
	var timeout time.Duration
	if job.Timeout != "" {
		d, err := time.ParseDuration(job.Timeout)
		if err != nil {
			return nil, fmt.Errorf("snapshot job %q: invalid timeout %q: %w", job.Name, job.Timeout, err)
		}
		timeout = d
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatusSnapshotTask{
		job:     job,
		timeout: timeout,
		counter: counter,
		saver:   saver,
		logger:  logger.With(zap.String("task", job.Name)),
		now:     time.Now,
	}, nil
}

// RegisterStatusSnapshotTasks 把配置中启用的快照任务注册到注册表
func RegisterStatusSnapshotTasks(registry *task.TaskRegistry, cfg *config.SnapshotsConfig, counter StatusCounter, saver SnapshotSaver, logger *zap.Logger) (int, error) {
	if cfg == nil {
		return 0, nil
	}

	registered := 0
	for _, job := range cfg.EnabledJobs() {
		t, err := NewStatusSnapshotTask(job, counter, saver, logger)
		if err != nil {
			return registered, err
		}
		if err := registry.Register(t); err != nil {
			return registered, err
		}
		registered++
	}
	return registered, nil
}

func (t *StatusSnapshotTask) Name() string {
	return t.job.Name
}

func (t *StatusSnapshotTask) Schedule() string {
	return t.job.Schedule
}

func (t *StatusSnapshotTask) Timeout() time.Duration {
	return t.timeout
}

func (t *StatusSnapshotTask) Enabled() bool {
	return t.job.Enabled
}

// Run 统计一次并保存
// 统计失败时不保存，避免写入全 0 的快照
func (t *StatusSnapshotTask) Run(ctx context.Context) error {
	var accountID *int64
	if t.job.AccountID > 0 {
		id := t.job.AccountID
		accountID = &id
	}

	counts, err := t.counter.CountByStatus(ctx, t.job.UserID, accountID)
	if err != nil {
		return fmt.Errorf("count products by status: %w", err)
	}

	snap := &model.StatusSnapshot{
		JobName:   t.job.Name,
		UserID:    t.job.UserID,
		AccountID: accountID,
		Counts:    counts,
		TakenAt:   t.now().UTC(),
	}
	if err := t.saver.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("save status snapshot: %w", err)
	}

	t.logger.Info("status snapshot saved",
		zap.Int64("user_id", snap.UserID),
		zap.Int("total", snap.Total),
	)
	return nil
}
