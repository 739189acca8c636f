package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/queue"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/hibiken/asynq"
)

const (
	publisherIntervalDefault = time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
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

// Sweeper 定时发布扫描接口
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// PublisherLoop 定时发布循环，启动时立即扫描一次
type PublisherLoop struct {
	name     string
	sweeper  Sweeper
	interval time.Duration
}

// NewPublisherLoop 创建定时发布循环
func NewPublisherLoop(sweeper Sweeper, interval time.Duration) *PublisherLoop {
	if interval <= 0 {
		interval = publisherIntervalDefault
	}
	return &PublisherLoop{
		name:     "publisher",
		sweeper:  sweeper,
		interval: interval,
	}
}

// Name 服务名称
func (p *PublisherLoop) Name() string {
	if p == nil || p.name == "" {
		return "publisher"
	}
	return p.name
}

// Start 阻塞运行直到 ctx 取消
func (p *PublisherLoop) Start(ctx context.Context) error {
	if p == nil || p.sweeper == nil {
		return errors.New("publisher not initialized")
	}
	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// Stop 停止服务（由 ctx 取消驱动）
func (p *PublisherLoop) Stop(ctx context.Context) error {
	return nil
}

func (p *PublisherLoop) runOnce(ctx context.Context) {
	result, err := p.sweeper.Sweep(ctx)
	if err != nil {
		logger.Warnw("worker_publisher_sweep_failed", "promoted", result.Promoted, "error", err)
		return
	}
	if result.Promoted > 0 {
		logger.Infow("worker_publisher_sweep_done", "promoted", result.Promoted, "ids", result.PromotedIDs)
	}
}
