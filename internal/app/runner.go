package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// Service 由 Runner 托管的长驻组件：HTTP、队列消费、定时发布
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Options 启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}

// Runner 任一服务退出即整体停机
type Runner struct {
	services []Service
}

func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// Run 阻塞直到收到信号或某个服务退出，随后在超时内依次 Stop
func (r *Runner) Run(parent context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = logger.S()
	}
	if stopTimeout <= 0 {
		stopTimeout = defaultShutdownTimeout
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		if svc == nil {
			cancel()
			return errors.New("service is nil")
		}
		svc := svc
		group.Go(func() error {
			defer cancel()
			log.Infow("service_start", "service", svc.Name())
			err := svc.Start(groupCtx)
			log.Infow("service_exit", "service", svc.Name(), "error", err)
			if err != nil {
				return fmt.Errorf("%s: %w", svc.Name(), err)
			}
			return nil
		})
	}

	<-groupCtx.Done()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	for _, svc := range r.services {
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// RunWithOptions 按信号配置运行
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = opts.withDefaults()
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}
