package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrEmptyTaskName         = errors.New("task name cannot be empty")
	ErrTaskAlreadyRegistered = errors.New("task already registered")
	ErrTaskNotFound          = errors.New("task not found")
)

// Task 定时任务接口
type Task interface {
	// Name 任务名称，在注册表内唯一
	Name() string

	// Schedule cron 表达式（秒 分 时 日 月 周）
	// 例如: "0 0 6 * * *" 表示每天 06:00
	Schedule() string

	// Run 执行一次任务
	Run(ctx context.Context) error

	// Timeout 单次执行超时，0 表示使用调度器默认值
	Timeout() time.Duration

	// Enabled 是否启用
	Enabled() bool
}

// TaskResult 任务执行结果
type TaskResult struct {
	TaskName  string
	Trigger   string // schedule 或 manual
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Success   bool
	Error     error
}

// TaskRegistry 任务注册表，可并发访问
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewTaskRegistry 创建新的任务注册表
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]Task),
	}
}

// Register 注册任务
func (r *TaskRegistry) Register(t Task) error {
	name := t.Name()
	if name == "" {
		return ErrEmptyTaskName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[name]; exists {
		return fmt.Errorf("%w: %s", ErrTaskAlreadyRegistered, name)
	}
	r.tasks[name] = t
	return nil
}

// GetTask 获取任务
func (r *TaskRegistry) GetTask(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, exists := r.tasks[name]
	return t, exists
}

// GetEnabledTasks 获取所有启用的任务
func (r *TaskRegistry) GetEnabledTasks() map[string]Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Task)
	for name, t := range r.tasks {
		if t.Enabled() {
			result[name] = t
		}
	}
	return result
}

// Names 返回按字母排序的任务名称
func (r *TaskRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
