package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiftLink/internal/device"
	"LiftLink/internal/model"
	"LiftLink/internal/protocol"
)

func simConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Serial.Simulate = true
	cfg.Trigger.CooldownSeconds = 60
	return cfg
}

func TestNewSystemFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("serial:\n  manual_connect: true\ntrigger:\n  command: goto 2\n"), 0o644))

	s, err := NewSystem(path)
	require.NoError(t, err)
	assert.Equal(t, protocol.GotoFloor(2), s.Trigger.Command)
	assert.Nil(t, s.MQTT)

	_, err = NewSystem(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestSystemRunsAgainstSimulator(t *testing.T) {
	s, err := NewSystemFromConfig(simConfig())
	require.NoError(t, err)
	require.NoError(t, s.StartAll())
	defer s.StopAll()

	snap := s.Live.Snapshot()
	require.True(t, snap.Connected)
	assert.Equal(t, device.SimulatedPort, snap.Port)

	res := s.Trigger.Observe(true)
	assert.True(t, res.Fired)
	assert.Eventually(t, func() bool {
		return s.Live.Snapshot().LastMessage == "DONE|0"
	}, 5*time.Second, 10*time.Millisecond)

	s.Trigger.Observe(false)
	res = s.Trigger.Observe(true)
	assert.True(t, res.Suppressed())

	require.NoError(t, s.Lift.Send(protocol.GotoFloor(2)))
	assert.Eventually(t, func() bool {
		return s.Live.Snapshot().LastMessage == "DONE|1"
	}, 5*time.Second, 10*time.Millisecond)

	view := s.View()
	assert.Equal(t, "Floor 1", view.FloorLabel)
	assert.Equal(t, []string{"DONE|1", "FLOOR|1", "DONE|0"}, stripTimes(view.Log))
	assert.Greater(t, view.CooldownRemaining, 0.0)
}

func TestSystemStartsDisconnected(t *testing.T) {
	cfg := simConfig()
	cfg.Serial.ManualConnect = true
	s, err := NewSystemFromConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, s.StartAll())
	require.NoError(t, s.StartAll())

	assert.False(t, s.Live.Connected())
	res := s.Trigger.Observe(true)
	assert.ErrorIs(t, res.Err, device.ErrNotConnected)

	s.StopAll()
	s.StopAll()
}

func TestSystemStopReleasesPort(t *testing.T) {
	s, err := NewSystemFromConfig(simConfig())
	require.NoError(t, err)
	require.NoError(t, s.StartAll())
	require.True(t, s.Live.Connected())

	s.StopAll()
	assert.False(t, s.Live.Connected())
	assert.ErrorIs(t, s.Lift.Send(protocol.StatusRequest()), device.ErrNotConnected)
}

func stripTimes(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		// "[15:04:05] " prefix
		out[i] = l[11:]
	}
	return out
}
