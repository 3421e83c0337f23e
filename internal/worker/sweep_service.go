package worker

import (
	"context"
	"errors"
	"time"

	"github.com/postdeck-next/internal/config"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/service"
)

// SweepService 独立的定时发布扫描服务。
// 队列关闭时使用，发布任务退化为进程内 goroutine 执行。
type SweepService struct {
	name     string
	dispatch *service.DispatchService
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweepService 创建独立扫描服务
func NewSweepService(cfg *config.Config, dispatch *service.DispatchService) (*SweepService, error) {
	if cfg == nil || !cfg.Dispatch.Enabled {
		return nil, errors.New("dispatch disabled")
	}
	if dispatch == nil {
		return nil, errors.New("dispatch service is nil")
	}
	interval := defaultSweepInterval
	if cfg.Dispatch.IntervalSeconds > 0 {
		interval = time.Duration(cfg.Dispatch.IntervalSeconds) * time.Second
	}
	return &SweepService{
		name:     "sweep",
		dispatch: dispatch,
		interval: interval,
		stopCh:   make(chan struct{}),
	}, nil
}

// Name 服务名称
func (s *SweepService) Name() string {
	if s == nil || s.name == "" {
		return "sweep"
	}
	return s.name
}

// Start 启动扫描循环，阻塞直到 ctx 取消或 Stop 被调用。
func (s *SweepService) Start(ctx context.Context) error {
	if s == nil || s.dispatch == nil {
		return errors.New("sweep service not initialized")
	}
	runOnce := func() {
		if _, err := s.dispatch.RunSweep(time.Now()); err != nil {
			logger.Warnw("dispatch_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			runOnce()
		}
	}
}

// Stop 停止扫描循环
func (s *SweepService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	return nil
}
