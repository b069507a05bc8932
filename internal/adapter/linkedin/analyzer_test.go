package linkedin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzer_Analyze(t *testing.T) {
	res := NewAnalyzer().Analyze(context.Background(), "https://www.linkedin.com/in/alice-smith/")

	assert.Equal(t, "LinkedIn", res.Platform)
	assert.Equal(t, "alice-smith", res.Username)
	assert.Equal(t, PlaceholderScore, res.Score)
	assert.True(t, res.Stub)
	// 占位结果不标记为错误
	assert.False(t, res.Error)
	assert.Equal(t, true, res.Metrics["placeholder"])
}

func TestAnalyzer_Analyze_BadURL(t *testing.T) {
	res := NewAnalyzer().Analyze(context.Background(), "https://example.com/in/alice")

	assert.True(t, res.Error)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.Stub)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		ok       bool
	}{
		{"https://www.linkedin.com/in/alice", "alice", true},
		{"linkedin.com/in/bob?trk=profile", "bob", true},
		{"https://linkedin.com/pub/carol/1/2/3", "carol", true},
		{"https://linkedin.com/dave", "dave", true},
		{"https://linkedin.com/in/", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			handle, ok := Handle(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, handle)
		})
	}
}
