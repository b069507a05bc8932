package main

import (
	"context"
	"testing"
	"time"

	"devscore/internal/adapter/cache"
	"devscore/internal/config"
	"devscore/internal/domain"
	"devscore/internal/logger"
	"devscore/internal/port"
	"devscore/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	data map[string]*domain.AnalyzerResult
}

func (m *memCache) Get(ctx context.Context, key string) (*domain.AnalyzerResult, bool) {
	r, ok := m.data[key]
	return r, ok
}

func (m *memCache) Set(ctx context.Context, key string, r *domain.AnalyzerResult, ttl time.Duration) error {
	m.data[key] = r
	return nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Analyzer.MaxRetries = 0
	cfg.Redis.TTL = time.Minute
	return cfg
}

func TestNewAnalyzerFactory_AllPlatforms(t *testing.T) {
	factory := newAnalyzerFactory(testConfig(), nil, logger.NewNop())

	set := factory(service.Tokens{})

	require.NotNil(t, set.GitHub)
	require.NotNil(t, set.LinkedIn)
	require.NotNil(t, set.Blog)
	require.NotNil(t, set.Coding)

	res := set.LinkedIn.Analyze(context.Background(), "https://www.linkedin.com/in/alice")
	assert.Equal(t, "LinkedIn", res.Platform)
	assert.False(t, res.Error)
}

func TestNewAnalyzerFactory_UsesCache(t *testing.T) {
	mc := &memCache{data: map[string]*domain.AnalyzerResult{}}
	url := "https://leetcode.com/cached"
	mc.data[cache.Key(domain.KeyCoding, url)] = &domain.AnalyzerResult{Platform: "LeetCode", Username: "cached", Score: 77}

	var rc port.ResultCache = mc
	set := newAnalyzerFactory(testConfig(), rc, logger.NewNop())(service.Tokens{})

	// 命中缓存，不会访问 LeetCode
	res := set.Coding.Analyze(context.Background(), url)
	assert.Equal(t, 77, res.Score)
	assert.Equal(t, "cached", res.Username)
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{"请求凭证优先", []string{"req", "cfg"}, "req"},
		{"回落到配置", []string{"", "cfg"}, "cfg"},
		{"都为空", []string{"", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, firstNonEmpty(tt.values...))
		})
	}
}

func TestRunAnalyze_RequiresLinks(t *testing.T) {
	err := runAnalyze(context.Background(), testConfig(), logger.NewNop(), domain.ProfileLinks{BlogURL: "  "})
	assert.Error(t, err)
}

func TestRunServer_RequiresSecret(t *testing.T) {
	err := runServer(context.Background(), testConfig(), logger.NewNop(), nil, 1)
	assert.ErrorContains(t, err, "JWT_SECRET")
}
