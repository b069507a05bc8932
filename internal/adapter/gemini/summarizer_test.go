package gemini

import (
	"testing"

	"devscore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAIResponse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    *aiResponse
	}{
		{
			name:  "合法 JSON",
			input: `{"summary": "活跃的开源贡献者", "strengths": ["star 多"], "suggestion": "多写博客"}`,
			expected: &aiResponse{
				Summary:    "活跃的开源贡献者",
				Strengths:  []string{"star 多"},
				Suggestion: "多写博客",
			},
		},
		{
			name: "JSON 前后带多余文字",
			input: "```json\n" + `{
				"summary": "算法能力突出",
				"strengths": [],
				"suggestion": ""
			}` + "\n```",
			expected: &aiResponse{Summary: "算法能力突出", Strengths: []string{}},
		},
		{
			name:        "非法 JSON",
			input:       `{"summary": oops}`,
			expectError: true,
		},
		{
			name:        "没有 JSON",
			input:       `Just some text without JSON`,
			expectError: true,
		},
		{
			name:        "summary 为空",
			input:       `{"summary": "  "}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseAIResponse(tt.input)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected.Summary, result.Summary)
				assert.Equal(t, tt.expected.Strengths, result.Strengths)
				assert.Equal(t, tt.expected.Suggestion, result.Suggestion)
			}
		})
	}
}

func TestRender(t *testing.T) {
	r := &aiResponse{Summary: "不错", Strengths: []string{"A", "B"}, Suggestion: "继续"}
	assert.Equal(t, "不错\n亮点: A；B\n建议: 继续", r.render())

	assert.Equal(t, "只有总评", (&aiResponse{Summary: " 只有总评 "}).render())
}

func TestBuildPrompt(t *testing.T) {
	report := &domain.FullReport{
		TotalScore: 55,
		AnalysisData: map[string]*domain.AnalyzerResult{
			domain.KeyGitHub:   {Platform: "GitHub", Username: "alice", Score: 70, Metrics: map[string]any{"followers": 12}},
			domain.KeyBlog:     domain.Failed("Dev.to", "alice", nil),
			domain.KeyCoding:   nil,
			domain.KeyLinkedIn: {Platform: "LinkedIn", Score: 50, Metrics: map[string]any{}},
		},
	}

	prompt := buildPrompt(report)

	assert.Contains(t, prompt, "总分: 55")
	assert.Contains(t, prompt, "github (GitHub, 用户 alice): 70 分")
	assert.Contains(t, prompt, `"followers":12`)
	assert.Contains(t, prompt, "blog (Dev.to): 数据获取失败")
	assert.Contains(t, prompt, "coding: 未提供")
}
