package service

import (
	"context"
	"fmt"
	"sync"

	"devscore/internal/domain"

	"go.uber.org/zap"
)

// RescoreStats 一轮重算的统计
type RescoreStats struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// RescoreAll 用保存的资料为每个用户重新生成一份报告
// 单个用户失败只计数，不会中断整轮
func (s *ReportService) RescoreAll(ctx context.Context, concurrency int) (RescoreStats, error) {
	if concurrency <= 0 {
		concurrency = 3
	}

	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return RescoreStats{}, err
	}

	stats := RescoreStats{Total: len(profiles)}
	jobs := make(chan *domain.Profile, len(profiles))
	for _, p := range profiles {
		if p.Links().IsEmpty() {
			stats.Skipped++
			continue
		}
		jobs <- p
	}
	close(jobs)

	s.log.Info("开始定时重算",
		zap.Int("profiles", stats.Total),
		zap.Int("skipped", stats.Skipped),
		zap.Int("concurrency", concurrency))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for p := range jobs {
				if ctx.Err() != nil {
					return
				}
				report, err := s.generateAndSave(ctx, p.OwnerID, p.Links(), Tokens{}, false)

				mu.Lock()
				if err != nil {
					stats.Failed++
					failed = append(failed, fmt.Errorf("重算 %s 失败: %w", p.OwnerID, err))
				} else {
					stats.Succeeded++
				}
				mu.Unlock()

				if err != nil {
					s.log.Warn("重算失败", zap.Int("worker", workerID), zap.String("owner", p.OwnerID.String()), zap.Error(err))
					continue
				}
				s.log.Debug("重算完成", zap.Int("worker", workerID), zap.String("owner", p.OwnerID.String()), zap.Int("total", report.TotalScore))
			}
		}(i + 1)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		s.log.Warn("定时重算因超时或取消而中断", zap.Int("succeeded", stats.Succeeded), zap.Error(err))
		return stats, err
	}

	s.log.Info("定时重算完成",
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
		zap.Errors("errors", failed))
	return stats, nil
}
