// 包 scheduler 用 robfig/cron 定时触发全量重算。
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"devscore/internal/logger"
	"devscore/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Rescorer 由 service.ReportService 实现
type Rescorer interface {
	RescoreAll(ctx context.Context, concurrency int) (service.RescoreStats, error)
}

type Scheduler struct {
	cron        *cron.Cron
	rescorer    Rescorer
	spec        string // 例如 "@every 24h" 或 "0 3 * * *"
	concurrency int
	timeout     time.Duration
	running     atomic.Bool
	log         logger.Logger
}

func New(rescorer Rescorer, spec string, concurrency int, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		rescorer:    rescorer,
		spec:        spec,
		concurrency: concurrency,
		timeout:     time.Hour,
		log:         log,
	}
}

// Start 注册任务并启动；spec 非法时返回错误
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("定时重算已启动", zap.String("spec", s.spec))
	return nil
}

// Stop 等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("定时重算已停止")
}

// RunOnce 执行一轮重算；上一轮没结束时直接跳过
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("上一轮重算尚未结束，跳过本轮")
		return false
	}
	defer s.running.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.rescorer.RescoreAll(runCtx, s.concurrency)
	if err != nil {
		s.log.Error("定时重算失败", err, zap.Int("succeeded", stats.Succeeded))
		return true
	}
	s.log.Info("定时重算结束",
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed))
	return true
}
