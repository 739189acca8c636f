package app

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/provider"
	"github.com/dujiao-next/announcements/internal/router"
	"github.com/dujiao-next/announcements/internal/worker"
)

// modeRoles api 只跑 HTTP，worker 只跑队列消费与定时发布，all 两者兼有
func modeRoles(mode string) (serveHTTP, runWorkers bool, err error) {
	switch mode {
	case ModeAll:
		return true, true, nil
	case ModeAPI:
		return true, false, nil
	case ModeWorker:
		return false, true, nil
	}
	return false, false, fmt.Errorf("unknown mode %q", mode)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}

// BuildRunner 按启动模式装配服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	serveHTTP, runWorkers, err := modeRoles(mode)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	var services []Service
	if serveHTTP {
		services = append(services, NewHTTPService(listenAddr(cfg), router.SetupRouter(cfg, container)))
	}
	if runWorkers {
		services = append(services, workerServices(cfg, container)...)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("mode %q has nothing to run, check queue and publisher config", mode)
	}
	return NewRunner(services...), nil
}

func workerServices(cfg *config.Config, container *provider.Container) []Service {
	var services []Service
	if cfg.Queue.Enabled {
		consumer, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			logger.Warnw("app_queue_worker_disabled", "error", err)
		} else {
			services = append(services, consumer)
		}
	}
	if container.PublisherService != nil {
		interval := time.Duration(cfg.Announcements.PublisherIntervalSecond) * time.Second
		services = append(services, worker.NewPublisherLoop(container.PublisherService, interval))
	}
	return services
}

// Run 进程入口：装配、启动并阻塞到收到信号
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
