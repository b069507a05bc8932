package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"devscore/internal/common"
	"devscore/internal/domain"
	"devscore/internal/logger"
)

type Notifier struct {
	webhookURL string
	reportLink string
	http       *http.Client
	retryOpts  []common.Option
}

// Option 配置 Notifier
type Option func(*Notifier)

// WithReportLink 卡片按钮跳转地址前缀，最终为 <link>/<report id>
func WithReportLink(link string) Option {
	return func(n *Notifier) {
		n.reportLink = strings.TrimRight(link, "/")
	}
}

// WithRetry 覆盖重试策略 (测试用)
func WithRetry(opts ...common.Option) Option {
	return func(n *Notifier) {
		n.retryOpts = opts
	}
}

func NewNotifier(webhook string, log logger.Logger, opts ...Option) *Notifier {
	if webhook == "" && log != nil {
		log.Warn("飞书 Webhook 为空，推送功能将无法工作")
	}
	n := &Notifier{
		webhookURL: webhook,
		http:       &http.Client{Timeout: 10 * time.Second},
		retryOpts: []common.Option{
			common.WithMaxRetries(3),
			common.WithInitialDelay(500 * time.Millisecond),
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyReport 发送飞书卡片消息 (Schema 2.0)
func (n *Notifier) NotifyReport(ctx context.Context, report *domain.Report) error {
	if n.webhookURL == "" {
		return common.NewError(common.ErrCodeNotification, "Webhook URL 为空")
	}

	body, err := json.Marshal(n.buildCard(report))
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "编码卡片失败", err)
	}

	err = common.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if reqErr != nil {
			return common.Permanent(reqErr)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, postErr := n.http.Do(req)
		if postErr != nil {
			return postErr
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			apiErr := fmt.Errorf("飞书 API 报错: 状态码 %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return common.Permanent(apiErr)
			}
			return apiErr
		}
		return nil
	}, n.retryOpts...)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "发送请求失败", err)
	}
	return nil
}

func (n *Notifier) buildCard(report *domain.Report) map[string]interface{} {
	title := fmt.Sprintf("📊 开发者评分报告: %d/100", report.TotalScore)

	mdContent := fmt.Sprintf(`**🐙 GitHub:** %s
**💼 LinkedIn:** %s
**✍️ 博客:** %s
**🧮 刷题:** %s

**🏆 总分:** %d/100  |  **生成时间:** %s
`,
		scoreLine(report, domain.KeyGitHub, report.GithubScore),
		scoreLine(report, domain.KeyLinkedIn, report.LinkedinScore),
		scoreLine(report, domain.KeyBlog, report.BlogScore),
		scoreLine(report, domain.KeyCoding, report.CodingScore),
		report.TotalScore,
		report.CreatedAt.Format("2006-01-02 15:04"))

	if report.Summary != "" {
		mdContent += fmt.Sprintf("\n**🤖 AI点评:**\n%s\n", report.Summary)
	}

	elements := []map[string]interface{}{
		{
			"tag":       "markdown",
			"content":   mdContent,
			"text_size": "normal",
		},
	}
	if n.reportLink != "" {
		elements = append(elements, map[string]interface{}{
			"tag": "button",
			"text": map[string]interface{}{
				"tag":     "plain_text",
				"content": "🔗 查看报告",
			},
			"type": "primary",
			"behaviors": []map[string]interface{}{
				{
					"type":        "open_url",
					"default_url": n.reportLink + "/" + report.ID.String(),
				},
			},
		})
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"config": map[string]interface{}{
				"update_multi": true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": template(report.TotalScore),
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements":  elements,
			},
		},
	}
}

// scoreLine 未提供的平台显示 "-"，失败的平台标注出来
func scoreLine(report *domain.Report, key string, score int) string {
	res, ok := report.AnalysisData[key]
	if !ok || res == nil {
		return "-"
	}
	if res.Error {
		return fmt.Sprintf("获取失败 (%s)", res.Platform)
	}
	if res.Username != "" {
		return fmt.Sprintf("%d (%s @%s)", score, res.Platform, res.Username)
	}
	return fmt.Sprintf("%d (%s)", score, res.Platform)
}

func template(total int) string {
	switch {
	case total >= 80:
		return "green"
	case total >= 50:
		return "blue"
	default:
		return "grey"
	}
}
