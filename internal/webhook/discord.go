package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/logger"

	"github.com/doyensec/safeurl"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultMaxResponseBytes = 64 * 1024
	defaultBreakerFailures  = 5
	defaultBreakerOpen      = time.Minute
)

// Options Discord 客户端配置
type Options struct {
	Timeout             time.Duration
	MaxResponseBytes    int64
	AllowPrivateTargets bool
	BreakerFailures     uint32
	BreakerOpen         time.Duration
}

// Sender Webhook 投递接口
type Sender interface {
	Send(ctx context.Context, webhookURL string, payload DiscordPayload) DeliveryResult
}

// DiscordClient Discord Webhook 客户端（SSRF 防护 + 熔断）
type DiscordClient struct {
	httpClient       *http.Client
	breaker          *gobreaker.CircuitBreaker[int]
	maxResponseBytes int64
}

type deliveryError struct {
	statusCode int
	message    string
}

func (e *deliveryError) Error() string {
	return e.message
}

// NewDiscordClient 创建 Discord 客户端
func NewDiscordClient(opts Options) *DiscordClient {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = defaultMaxResponseBytes
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = defaultBreakerFailures
	}
	if opts.BreakerOpen <= 0 {
		opts.BreakerOpen = defaultBreakerOpen
	}

	var httpClient *http.Client
	if opts.AllowPrivateTargets {
		httpClient = &http.Client{Timeout: opts.Timeout}
	} else {
		config := safeurl.GetConfigBuilder().
			SetTimeout(opts.Timeout).
			SetAllowedSchemes("https").
			SetAllowedPorts(443).
			Build()
		httpClient = safeurl.Client(config).Client
	}

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        "discord-webhook",
		MaxRequests: 1,
		Timeout:     opts.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("webhook_breaker_state_changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &DiscordClient{
		httpClient:       httpClient,
		breaker:          breaker,
		maxResponseBytes: opts.MaxResponseBytes,
	}
}

// Send 投递消息
func (c *DiscordClient) Send(ctx context.Context, webhookURL string, payload DiscordPayload) DeliveryResult {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return DeliveryResult{Message: "webhook url is empty"}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryResult{Message: fmt.Sprintf("encode payload: %v", err)}
	}

	statusCode, err := c.breaker.Execute(func() (int, error) {
		return c.post(ctx, webhookURL, body)
	})
	if err != nil {
		result := DeliveryResult{StatusCode: statusCode, Message: err.Error()}
		var deliveryErr *deliveryError
		if errors.As(err, &deliveryErr) {
			result.StatusCode = deliveryErr.statusCode
		}
		return result
	}
	return DeliveryResult{Success: true, StatusCode: statusCode, Message: "delivered"}
}

func (c *DiscordClient) post(ctx context.Context, webhookURL string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dujiao-next-announcements/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(snippet))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &deliveryError{
			statusCode: resp.StatusCode,
			message:    fmt.Sprintf("discord responded %d: %s", resp.StatusCode, message),
		}
	}
	return resp.StatusCode, nil
}
