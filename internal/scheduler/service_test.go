package scheduler

import (
	"testing"
	"time"

	"github.com/livecommerce/stream-analyzer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRetention struct {
	mock.Mock
}

func (m *MockRetention) RunRetention() error {
	args := m.Called()
	return args.Error(0)
}

func TestStart_RunsRetention(t *testing.T) {
	cfg := config.Default()
	cfg.RetentionSchedule = "* * * * * *"

	done := make(chan struct{}, 1)
	retention := &MockRetention{}
	retention.On("RunRetention").Return(nil).Run(func(mock.Arguments) {
		select {
		case done <- struct{}{}:
		default:
		}
	})

	s := NewService(cfg, retention)
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Equal(t, 1, s.Entries())

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("retention sweep did not run")
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.RetentionSchedule = "every day"

	s := NewService(cfg, &MockRetention{})
	assert.Error(t, s.Start())
}

func TestStart_Disabled(t *testing.T) {
	cfg := config.Default()
	cfg.RetentionDays = 0

	s := NewService(cfg, &MockRetention{})
	require.NoError(t, s.Start())
	assert.Equal(t, 0, s.Entries())
	s.Stop()
}
