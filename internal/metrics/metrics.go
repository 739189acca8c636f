package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder 业务指标记录接口（服务层与 worker 使用）
type Recorder interface {
	RecordView(counted bool)
	RecordLike(liked bool)
	RecordPublisherSweep(promoted int, duration time.Duration)
	RecordPublisherSkipped(reason string)
	RecordNotification(event string, success bool, statusCode int)
}

// Collector Prometheus 指标实现
type Collector struct {
	views            *prometheus.CounterVec
	likes            *prometheus.CounterVec
	promoted         prometheus.Counter
	sweepDuration    prometheus.Histogram
	sweepsSkipped    *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	notificationCode *prometheus.CounterVec
}

// NewCollector 创建指标收集器并注册到指定 Registerer
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcements_views_total",
			Help: "公告浏览请求数（按是否计数）",
		}, []string{"result"}),
		likes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcements_likes_total",
			Help: "公告点赞切换次数",
		}, []string{"action"}),
		promoted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "announcements_publisher_promoted_total",
			Help: "定时发布转为已发布的公告数",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "announcements_publisher_sweep_seconds",
			Help:    "定时发布扫描耗时（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sweepsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcements_publisher_skipped_total",
			Help: "被跳过的定时发布扫描次数",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcements_notifications_total",
			Help: "发布通知投递结果",
		}, []string{"event", "result"}),
		notificationCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcements_notification_http_status_total",
			Help: "发布通知 HTTP 状态码分布",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.views,
		c.likes,
		c.promoted,
		c.sweepDuration,
		c.sweepsSkipped,
		c.notifications,
		c.notificationCode,
	)
	return c
}

// RecordView 记录浏览
func (c *Collector) RecordView(counted bool) {
	result := "suppressed"
	if counted {
		result = "counted"
	}
	c.views.WithLabelValues(result).Inc()
}

// RecordLike 记录点赞切换
func (c *Collector) RecordLike(liked bool) {
	action := "unliked"
	if liked {
		action = "liked"
	}
	c.likes.WithLabelValues(action).Inc()
}

// RecordPublisherSweep 记录一次定时发布扫描
func (c *Collector) RecordPublisherSweep(promoted int, duration time.Duration) {
	if promoted > 0 {
		c.promoted.Add(float64(promoted))
	}
	c.sweepDuration.Observe(duration.Seconds())
}

// RecordPublisherSkipped 记录被跳过的扫描
func (c *Collector) RecordPublisherSkipped(reason string) {
	c.sweepsSkipped.WithLabelValues(reason).Inc()
}

// RecordNotification 记录通知投递结果
func (c *Collector) RecordNotification(event string, success bool, statusCode int) {
	result := "failure"
	if success {
		result = "success"
	}
	c.notifications.WithLabelValues(event, result).Inc()
	if statusCode > 0 {
		c.notificationCode.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	}
}

// Handler Prometheus 抓取处理器
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop 空实现
type Nop struct{}

func (Nop) RecordView(bool)                         {}
func (Nop) RecordLike(bool)                         {}
func (Nop) RecordPublisherSweep(int, time.Duration) {}
func (Nop) RecordPublisherSkipped(string)           {}
func (Nop) RecordNotification(string, bool, int)    {}

// OrNop 为 nil 时返回空实现
func OrNop(recorder Recorder) Recorder {
	if recorder == nil {
		return Nop{}
	}
	return recorder
}
