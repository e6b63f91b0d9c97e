package daemon

import (
	"fmt"

	kardianos "github.com/kardianos/service"

	"arcsend/internal/config"
	"arcsend/internal/server"
	"arcsend/pkg/logger"
)

// Manager runs the receiver under the OS service manager. When invoked
// interactively, Run behaves like a foreground server with signal handling
// provided by the service library.
type Manager struct {
	cfg *config.Config
	srv *server.Server
}

func NewManager(cfg *config.Config, srv *server.Server) *Manager {
	return &Manager{cfg: cfg, srv: srv}
}

func (m *Manager) newService() (kardianos.Service, error) {
	return kardianos.New(m, &kardianos.Config{
		Name:        m.cfg.ServiceName(),
		DisplayName: m.cfg.ServiceDisplayName(),
		Description: m.cfg.ServiceDescription(),
	})
}

// kardianos.Interface implementation.
func (m *Manager) Start(s kardianos.Service) error {
	logger.Log.Info("service starting", "service", s.String(), "platform", s.Platform())
	if err := m.srv.Start(); err != nil {
		return err
	}
	go func() {
		if err := m.srv.Serve(); err != nil {
			logger.Log.Error("serve loop exited", "err", err)
		}
	}()
	return nil
}

func (m *Manager) Stop(s kardianos.Service) error {
	logger.Log.Info("service stopping", "service", s.String())
	m.srv.Stop()
	return nil
}

func (m *Manager) Install() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	if err := s.Install(); err != nil {
		return fmt.Errorf("install service: %w", err)
	}
	return nil
}

func (m *Manager) Uninstall() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	if err := s.Stop(); err != nil {
		logger.Log.Warn("stop before uninstall failed", "err", err)
	}
	return s.Uninstall()
}

func (m *Manager) StartService() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Start()
}

func (m *Manager) StopService() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Stop()
}

// Run blocks serving transfers until the service manager (or an interrupt,
// when run in the foreground) stops it.
func (m *Manager) Run() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Run()
}
