package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	DefaultQueue           = constants.QueueDefault
	TaskAnnouncementNotify = constants.TaskAnnouncementNotify

	notifyTaskTimeout  = time.Minute
	defaultConcurrency = 10
)

// AnnouncementNotifyPayload 发布通知任务载荷，worker 按 ID 重新加载公告
type AnnouncementNotifyPayload struct {
	AnnouncementID uint   `json:"announcement_id"`
	Event          string `json:"event"`
}

func (p AnnouncementNotifyPayload) taskID() string {
	return fmt.Sprintf("notify:%d:%s", p.AnnouncementID, p.Event)
}

func NewAnnouncementNotifyTask(payload AnnouncementNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnnouncementNotify, body), nil
}

func ParseAnnouncementNotifyPayload(body []byte) (AnnouncementNotifyPayload, error) {
	var payload AnnouncementNotifyPayload
	err := json.Unmarshal(body, &payload)
	return payload, err
}

// Client 任务投递；队列未启用时所有投递都是空操作
type Client struct {
	inner *asynq.Client
}

func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(redisOpt(cfg))}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueAnnouncementNotify 投递发布通知，不重试；同一公告同一事件排队中时不重复投递
func (c *Client) EnqueueAnnouncementNotify(payload AnnouncementNotifyPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewAnnouncementNotifyTask(payload)
	if err != nil {
		return err
	}
	base := []asynq.Option{
		asynq.Queue(DefaultQueue),
		asynq.MaxRetry(0),
		asynq.Timeout(notifyTaskTimeout),
		asynq.TaskID(payload.taskID()),
	}
	_, err = c.inner.Enqueue(task, append(base, opts...)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// BuildServerConfig worker 端连接与并发配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
