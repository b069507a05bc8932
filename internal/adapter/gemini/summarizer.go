package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"devscore/internal/common"
	"devscore/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash-lite"

// GeminiSummarizer 实现 port.Summarizer，给报告写一段中文点评
type GeminiSummarizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// AI 返回的 JSON
type aiResponse struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Suggestion string   `json:"suggestion"`
}

func NewGeminiSummarizer(ctx context.Context, apiKey, modelName string) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "create gemini client", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"

	return &GeminiSummarizer{client: client, model: model}, nil
}

// Close 释放底层连接
func (g *GeminiSummarizer) Close() error {
	return g.client.Close()
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, report *domain.FullReport) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(report)))
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "AI 调用失败", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", common.NewError(common.ErrCodeAIProcessing, "AI 返回内容为空")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", common.NewError(common.ErrCodeAIProcessing, "AI 返回格式错误")
	}

	res, err := parseAIResponse(string(text))
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "解析 AI 返回", err)
	}
	return res.render(), nil
}

func buildPrompt(report *domain.FullReport) string {
	var b strings.Builder
	b.WriteString("你是一名资深技术招聘官。下面是某位开发者在各平台的量化评分 (0-100)：\n\n")
	fmt.Fprintf(&b, "总分: %d\n", report.TotalScore)

	keys := make([]string, 0, len(report.AnalysisData))
	for k := range report.AnalysisData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		res := report.AnalysisData[k]
		if res == nil {
			fmt.Fprintf(&b, "- %s: 未提供\n", k)
			continue
		}
		if res.Error {
			fmt.Fprintf(&b, "- %s (%s): 数据获取失败\n", k, res.Platform)
			continue
		}
		metrics, _ := json.Marshal(res.Metrics)
		fmt.Fprintf(&b, "- %s (%s, 用户 %s): %d 分, 指标 %s\n", k, res.Platform, res.Username, res.Score, metrics)
	}

	b.WriteString(`
请严格按照 JSON 格式返回，包含以下字段：
1. summary: 两三句话的中文总体评价。
2. strengths: 字符串数组，列出最多三个亮点。
3. suggestion: 一句改进建议。

请直接返回 JSON，不要包含 Markdown 格式标记。
`)
	return b.String()
}

// parseAIResponse 即使 AI 返回 "```json { ... } ```"，也只截取最外层花括号之间的内容
func parseAIResponse(raw string) (*aiResponse, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("无法提取 JSON, AI 原文: %s", raw)
	}

	clean := raw[start : end+1]
	var res aiResponse
	if err := json.Unmarshal([]byte(clean), &res); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %w | 原文: %s", err, clean)
	}
	if strings.TrimSpace(res.Summary) == "" {
		return nil, fmt.Errorf("AI 返回的 summary 为空")
	}
	return &res, nil
}

func (r *aiResponse) render() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Summary))
	if len(r.Strengths) > 0 {
		b.WriteString("\n亮点: ")
		b.WriteString(strings.Join(r.Strengths, "；"))
	}
	if s := strings.TrimSpace(r.Suggestion); s != "" {
		b.WriteString("\n建议: ")
		b.WriteString(s)
	}
	return b.String()
}
