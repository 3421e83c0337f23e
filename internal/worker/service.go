package worker

import (
	"context"
	"errors"
	"time"

	"github.com/postdeck-next/internal/config"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultSweepInterval = time.Minute

// Service 异步队列服务，附带定时发布扫描循环。
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
	sweepEnabled  bool
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	interval := defaultSweepInterval
	if cfg.Dispatch.IntervalSeconds > 0 {
		interval = time.Duration(cfg.Dispatch.IntervalSeconds) * time.Second
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: interval,
		sweepEnabled:  cfg.Dispatch.Enabled,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.sweepEnabled && s.consumer != nil && s.consumer.DispatchService != nil {
		go s.runDispatchSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runDispatchSweepLoop 周期性扫描到期帖子。
// 单轮失败只记日志，循环本身永不退出。
func (s *Service) runDispatchSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.DispatchService == nil {
		return
	}
	runOnce := func() {
		if _, err := s.consumer.DispatchService.RunSweep(time.Now()); err != nil {
			logger.Warnw("worker_dispatch_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
