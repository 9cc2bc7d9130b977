// Package core contains the runtime orchestration of LiftLink: the serial
// read loop and the System that wires configuration, device, state and the
// display/detection surfaces together.
package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"LiftLink/internal/app"
	"LiftLink/internal/device"
	"LiftLink/internal/model"
	"LiftLink/internal/mqtt"
	"LiftLink/internal/state"
	"LiftLink/internal/trigger"
)

// System owns every long-lived component. It replaces a process-wide
// singleton: the live state is created here and handed to each dependent.
type System struct {
	Cfg     *model.Config
	Hub     *state.Hub
	Live    *state.Live
	Log     *state.Log
	Lift    *device.Lift
	Reader  *Reader
	Trigger *trigger.Trigger
	Web     *app.App
	MQTT    *mqtt.Bridge

	started   bool
	startLock sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewSystem reads the YAML configuration at cfgPath and creates a System instance.
func NewSystem(cfgPath string) (*System, error) {
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return NewSystemFromConfig(cfg)
}

// NewSystemFromConfig constructs all components without opening anything.
func NewSystemFromConfig(cfg *model.Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cmd, err := cfg.TriggerCommand()
	if err != nil {
		return nil, err
	}

	s := &System{Cfg: cfg, Hub: state.NewHub()}
	s.Live = state.NewLive(s.Hub)
	s.Log = state.NewLog(cfg.Display.LogSize)
	s.Lift = device.NewLift(cfg.DeviceConfig(), s.Live)
	if cfg.Serial.Simulate {
		s.Lift.ListPorts = func() ([]string, error) { return []string{device.SimulatedPort}, nil }
		s.Lift.OpenPort = device.SimOpener(cfg.Serial.SimFloors, device.DefaultSimStep)
	}
	s.Reader = NewReader(s.Lift, s.Live, s.Log)
	s.Trigger = trigger.New(s.Lift, cmd, cfg.Cooldown())
	s.Web = app.NewApp(s.Live, s.Log, s.Hub, s.Lift, s.Trigger)

	if cfg.MQTT.Broker != "" {
		s.MQTT, err = mqtt.NewBridge(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
		}, s.Live, s.Log, s.Hub, s.Lift, s.Trigger)
		if err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
	}
	return s, nil
}

// View returns the current status view.
func (s *System) View() model.StatusView {
	return model.NewStatusView(s.Live.Snapshot(), s.Log.Lines(), s.Trigger.Remaining())
}

// StartAll connects the controller (unless manual_connect is set), starts
// the read loop and the optional web and MQTT surfaces. A controller that
// cannot be opened leaves the system running disconnected.
func (s *System) StartAll() error {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if s.started {
		return nil
	}

	if !s.Cfg.Serial.ManualConnect {
		if err := s.Lift.Connect(""); err != nil {
			log.Error().Err(err).Msg("[system] controller unavailable, running disconnected")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.Reader.Run(ctx)
	}()

	if addr := s.Cfg.Web.Addr; addr != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.Web.Start(addr); err != nil {
				log.Error().Err(err).Msg("[system] web server failed")
			}
		}()
	}

	if s.MQTT != nil {
		if err := s.MQTT.Start(); err != nil {
			log.Error().Err(err).Msg("[system] mqtt bridge unavailable")
		}
	}

	s.started = true
	return nil
}

// StopAll stops the surfaces and the read loop, then releases the port.
func (s *System) StopAll() {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if !s.started {
		return
	}
	s.cancel()
	s.Web.Stop()
	if s.MQTT != nil {
		s.MQTT.Stop()
	}
	s.wg.Wait()
	if err := s.Lift.Close(); err != nil {
		log.Warn().Err(err).Msg("[system] close controller")
	}
	s.Hub.Close()
	s.started = false
}
