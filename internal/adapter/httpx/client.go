// 包 httpx 封装分析器访问第三方公开 API 的 HTTP 客户端：统一 UA、超时、带退避的重试。
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"devscore/internal/common"
)

const (
	defaultUserAgent = "devscore/1.0 (+https://github.com)"
	maxBodyBytes     = 8 << 20
)

// StatusError 上游返回了非 2xx 状态码
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http status %d", e.URL, e.StatusCode)
}

// Client 为带重试的 HTTP 客户端，可安全并发使用
type Client struct {
	http      *http.Client
	userAgent string
	retryOpts []common.Option
}

// Option 配置 Client
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client (测试中常用)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent 设置 User-Agent
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetry 设置重试次数与首次退避
func WithRetry(maxRetries int, initialDelay time.Duration) Option {
	return func(c *Client) {
		c.retryOpts = []common.Option{
			common.WithMaxRetries(maxRetries),
			common.WithInitialDelay(initialDelay),
		}
	}
}

// New 创建客户端，默认 15 秒整体超时、重试 2 次
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		userAgent: defaultUserAgent,
		retryOpts: []common.Option{common.WithMaxRetries(2), common.WithInitialDelay(300 * time.Millisecond)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient 返回底层 http.Client
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Get 返回响应体原文
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, headers, nil)
}

// GetJSON 请求并把 JSON 响应解码到 out
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	body, err := c.do(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// PostJSON 以 JSON 发送 payload 并解码响应
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, url, headers, data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, payload []byte) ([]byte, error) {
	var body []byte
	err := common.Do(ctx, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return common.Permanent(fmt.Errorf("new request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
			// 4xx 重试无意义，429 除外
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return common.Permanent(statusErr)
			}
			return statusErr
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return err
	}, c.retryOpts...)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeUpstream, method+" "+url, err)
	}
	return body, nil
}
