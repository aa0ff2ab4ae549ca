package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shopee/internal/task"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 触发方式
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// DefaultTaskTimeout 任务未声明超时时使用
const DefaultTaskTimeout = 5 * time.Minute

var errAlreadyRunning = errors.New("scheduler is already running")

// Config 调度器配置
type Config struct {
	Logger         *zap.Logger
	Registry       *task.TaskRegistry
	DefaultTimeout time.Duration
	Location       *time.Location // 为空时使用本地时区
}

// Scheduler 按 cron 表达式运行快照任务，同一任务不会重叠执行
type Scheduler struct {
	cron     *cron.Cron
	registry *task.TaskRegistry
	logger   *zap.Logger
	timeout  time.Duration

	// 停止时取消进行中的任务
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.RWMutex
	running bool
	entries map[string]cron.EntryID

	history *runHistory
}

// NewScheduler 创建调度器，cron 表达式带秒字段
func NewScheduler(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = task.NewTaskRegistry()
	}
	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	adapter := cronLogger{l: logger.Named("cron").Sugar()}
	baseCtx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		registry: registry,
		logger:   logger,
		timeout:  timeout,
		baseCtx:  baseCtx,
		cancel:   cancel,
		entries:  make(map[string]cron.EntryID),
		history:  newRunHistory(),
	}
}

// Start 把启用的任务加入 cron 并启动
// 表达式无效的任务被跳过并记录错误，不影响其他任务
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errAlreadyRunning
	}

	for name, t := range s.registry.GetEnabledTasks() {
		id, err := s.schedule(name, t)
		if err != nil {
			s.logger.Error("task not scheduled", zap.String("task", name), zap.Error(err))
			continue
		}
		s.entries[name] = id
		s.logger.Info("task scheduled",
			zap.String("task", name),
			zap.String("schedule", t.Schedule()),
		)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", zap.Int("tasks", len(s.entries)))
	return nil
}

func (s *Scheduler) schedule(name string, t task.Task) (cron.EntryID, error) {
	spec := t.Schedule()
	if spec == "" {
		return 0, errors.New("empty schedule")
	}
	id, err := s.cron.AddFunc(spec, func() {
		s.execute(s.baseCtx, name, t, TriggerSchedule)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return id, nil
}

// Stop 停止调度并等待进行中的任务，ctx 到期时取消它们
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	defer s.cancel()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop interrupted, cancelling running tasks")
		return ctx.Err()
	}
}

// RunNow 立即同步执行一次任务，返回任务本身的错误
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	t, ok := s.registry.GetTask(name)
	if !ok {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, name)
	}
	return s.execute(ctx, name, t, TriggerManual).Error
}

// LastResult 任务最近一次执行结果
func (s *Scheduler) LastResult(name string) (task.TaskResult, bool) {
	return s.history.last(name)
}

// IsRunning 调度器是否已启动
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetTaskCount 已加入 cron 的任务数
func (s *Scheduler) GetTaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RemoveTask 从 cron 中移除任务，注册表不变
func (s *Scheduler) RemoveTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, name)
	}
	s.cron.Remove(id)
	delete(s.entries, name)
	s.logger.Info("task unscheduled", zap.String("task", name))
	return nil
}

func (s *Scheduler) execute(parent context.Context, name string, t task.Task, trigger string) task.TaskResult {
	timeout := t.Timeout()
	if timeout <= 0 {
		timeout = s.timeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.logger.With(zap.String("task", name), zap.String("trigger", trigger))
	log.Debug("task starting", zap.Duration("timeout", timeout))

	start := time.Now()
	err := t.Run(ctx)
	end := time.Now()

	result := task.TaskResult{
		TaskName:  name,
		Trigger:   trigger,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   err == nil,
		Error:     err,
	}
	s.history.record(result)
	observeRun(result)

	if err != nil {
		log.Error("task failed", zap.Duration("duration", result.Duration), zap.Error(err))
	} else {
		log.Info("task finished", zap.Duration("duration", result.Duration))
	}
	return result
}

// runHistory 每个任务只保留最近一次结果
type runHistory struct {
	mu      sync.RWMutex
	results map[string]task.TaskResult
}

func newRunHistory() *runHistory {
	return &runHistory{results: make(map[string]task.TaskResult)}
}

func (h *runHistory) record(r task.TaskResult) {
	h.mu.Lock()
	h.results[r.TaskName] = r
	h.mu.Unlock()
}

func (h *runHistory) last(name string) (task.TaskResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.results[name]
	return r, ok
}

// cronLogger 把 cron 的日志接到 zap，普通信息降为 debug
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
