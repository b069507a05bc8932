// 包 cache 用 Redis 缓存单平台分析结果，同一个链接在 TTL 内不重复打第三方 API。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"devscore/internal/common"
	"devscore/internal/domain"
	"devscore/internal/logger"
	"devscore/internal/port"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "devscore:result:"

// redisClient 只用到的两个命令，方便测试替换
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewRedisClient 连接 Redis 并 Ping 一次
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, "can not connect Redis", err)
	}
	return rdb, nil
}

// RedisCache 实现 port.ResultCache
type RedisCache struct {
	rdb redisClient
	log logger.Logger
}

func NewRedisCache(rdb redisClient, log logger.Logger) *RedisCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisCache{rdb: rdb, log: log}
}

// Key 缓存键: devscore:result:<platform>:<url>
func Key(platform, url string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, platform, url)
}

// Get 未命中或 Redis 出错都当作 miss
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.AnalyzerResult, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var res domain.AnalyzerResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.log.Warn("缓存内容无法解析", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *domain.AnalyzerResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return common.WrapError(common.ErrCodeInternal, "write cache", err)
	}
	return nil
}

// cachedAnalyzer 先查缓存，未命中再调用真正的分析器
type cachedAnalyzer struct {
	platform string
	next     port.Analyzer
	cache    port.ResultCache
	ttl      time.Duration
	log      logger.Logger
}

// cacheable 只缓存完整测量的结果：兜底分、部分失败、占位结果都不写缓存
func cacheable(res *domain.AnalyzerResult) bool {
	return res != nil && !res.Error && !res.Stub && res.ErrorMessage == ""
}

// Wrap 给分析器加一层缓存；失败结果不写缓存，下次还会重试
func Wrap(platform string, next port.Analyzer, cache port.ResultCache, ttl time.Duration, log logger.Logger) port.Analyzer {
	if cache == nil || ttl <= 0 {
		return next
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &cachedAnalyzer{platform: platform, next: next, cache: cache, ttl: ttl, log: log}
}

func (a *cachedAnalyzer) Analyze(ctx context.Context, url string) *domain.AnalyzerResult {
	key := Key(a.platform, url)
	if res, ok := a.cache.Get(ctx, key); ok {
		a.log.Debug("命中缓存", zap.String("key", key))
		return res
	}

	res := a.next.Analyze(ctx, url)
	if !cacheable(res) {
		return res
	}
	if err := a.cache.Set(ctx, key, res, a.ttl); err != nil {
		a.log.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return res
}
