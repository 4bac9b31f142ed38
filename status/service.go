package status

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/core"
)

// Service wraps Registry as a service.Service and optionally runs the metrics listener
type Service struct {
	registry *Registry
	logger   *zap.Logger

	server *Server
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewService creates a status service with an initialized registry
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registry: NewRegistry(), logger: logger.Named("status")}
}

// Name implements service.Service
func (s *Service) Name() string { return "status" }

// Dependencies implements service.Service
func (s *Service) Dependencies() []string { return nil }

// Init implements service.Service
// args[0]: string, listen address for /metrics; empty disables the listener
func (s *Service) Init(args ...any) error {
	if len(args) == 0 {
		return nil
	}
	addr, _ := args[0].(string)
	if addr == "" {
		return nil
	}
	srv, err := NewServer(addr, s.registry, s.logger)
	if err != nil {
		return err
	}
	s.server = srv
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	core.Go(func() {
		defer close(s.done)
		if err := s.server.Run(ctx); err != nil {
			s.logger.Error("metrics listener", zap.Error(err))
		}
	})
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
	})
	return nil
}

// Registry returns the underlying metrics registry
func (s *Service) Registry() *Registry { return s.registry }

// Server returns the metrics listener, nil when disabled
func (s *Service) Server() *Server { return s.server }
