package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/metrics"
)

// errNotFoundStatus 数据源返回 404，不计入熔断失败
var errNotFoundStatus = errors.New("provider returned 404")

// client 带超时和熔断的 JSON 客户端
type client struct {
	name       string
	httpClient *http.Client
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func newClient(name string, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFoundStatus)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[Provider] 熔断器状态变化")
		},
	})

	return &client{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		breaker:    cb,
	}
}

// getJSON 发送 GET 请求并解析 JSON，所有失败都包装为 ErrUnavailable
func (c *client) getJSON(ctx context.Context, rawURL string, params url.Values, target interface{}) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, rawURL, params)
	})
	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.ProviderRequests.WithLabelValues(c.name, outcome).Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.ProviderRequests.WithLabelValues(c.name, "success").Inc()

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: 解析JSON失败: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("解析URL失败: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFoundStatus
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("请求失败，状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return body, nil
}
