package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTask struct {
	name    string
	enabled bool
}

func (s stubTask) Name() string              { return s.name }
func (s stubTask) Schedule() string          { return "0 0 6 * * *" }
func (s stubTask) Run(context.Context) error { return nil }
func (s stubTask) Timeout() time.Duration    { return 0 }
func (s stubTask) Enabled() bool             { return s.enabled }

func TestTaskRegistry(t *testing.T) {
	r := NewTaskRegistry()

	require.NoError(t, r.Register(stubTask{name: "daily", enabled: true}))
	require.NoError(t, r.Register(stubTask{name: "audit", enabled: false}))

	assert.ErrorIs(t, r.Register(stubTask{name: "daily"}), ErrTaskAlreadyRegistered)
	assert.ErrorIs(t, r.Register(stubTask{}), ErrEmptyTaskName)

	got, ok := r.GetTask("audit")
	require.True(t, ok)
	assert.Equal(t, "audit", got.Name())

	_, ok = r.GetTask("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"audit", "daily"}, r.Names())

	enabled := r.GetEnabledTasks()
	assert.Len(t, enabled, 1)
	assert.Contains(t, enabled, "daily")
}
