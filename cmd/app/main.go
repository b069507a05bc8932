package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devscore/internal/adapter/cache"
	"devscore/internal/adapter/feishu"
	"devscore/internal/adapter/gemini"
	apihttp "devscore/internal/adapter/http"
	"devscore/internal/adapter/repository"
	"devscore/internal/config"
	"devscore/internal/domain"
	"devscore/internal/logger"
	"devscore/internal/port"
	"devscore/internal/scheduler"
	"devscore/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 1. 命令行参数
	mode := flag.String("mode", "serve", "运行模式: serve (API 服务), rescore (全量重算一次) 或 analyze (单次分析)")
	concurrency := flag.Int("concurrency", 0, "重算并发数，0 表示使用配置")
	githubURL := flag.String("github", "", "GitHub 主页 (analyze 模式)")
	linkedinURL := flag.String("linkedin", "", "LinkedIn 主页 (analyze 模式)")
	blogURL := flag.String("blog", "", "博客主页 (analyze 模式)")
	codingURL := flag.String("coding", "", "LeetCode / Codeforces 主页 (analyze 模式)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	appLog := logger.NewZapLogger(cfg.App.Env)
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 单次分析不需要数据库
	if *mode == "analyze" {
		links := domain.ProfileLinks{
			GithubURL:         *githubURL,
			LinkedinURL:       *linkedinURL,
			BlogURL:           *blogURL,
			CodingPlatformURL: *codingURL,
		}
		if err := runAnalyze(ctx, cfg, appLog, links); err != nil {
			appLog.Fatal("❌ 分析失败", err)
		}
		return
	}

	// 3. 公共依赖
	repo, err := repository.NewPostgresRepo(cfg.DB.DSN)
	if err != nil {
		appLog.Fatal("❌ DB 初始化失败", err)
	}

	resultCache := newResultCache(ctx, cfg, appLog)
	factory := newAnalyzerFactory(cfg, resultCache, appLog)

	opts := []service.Option{
		service.WithFactory(factory),
		service.WithAnalyzerTimeout(cfg.Analyzer.Timeout),
		service.WithLogger(appLog),
	}
	if cfg.Gemini.APIKey != "" {
		summarizer, err := gemini.NewGeminiSummarizer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			appLog.Fatal("❌ AI 初始化失败", err)
		}
		defer summarizer.Close()
		opts = append(opts, service.WithSummarizer(summarizer))
	}
	if cfg.Feishu.Webhook != "" {
		opts = append(opts, service.WithNotifier(feishu.NewNotifier(cfg.Feishu.Webhook, appLog,
			feishu.WithReportLink(cfg.Feishu.ReportLink))))
	}

	svc := service.NewReportService(factory(service.Tokens{}), repo, repo, opts...)

	n := *concurrency
	if n <= 0 {
		n = cfg.Rescore.Concurrency
	}

	// 4. 根据模式分流
	switch *mode {
	case "serve":
		if err := runServer(ctx, cfg, appLog, svc, n); err != nil {
			appLog.Fatal("❌ 服务异常退出", err)
		}
	case "rescore":
		stats, err := svc.RescoreAll(ctx, n)
		if err != nil {
			appLog.Fatal("❌ 重算失败", err)
		}
		fmt.Printf("🏁 重算完成: 共 %d, 成功 %d, 失败 %d, 跳过 %d\n", stats.Total, stats.Succeeded, stats.Failed, stats.Skipped)
	default:
		fmt.Println("❌ 未知模式，请使用 -mode=serve, -mode=rescore 或 -mode=analyze")
		os.Exit(2)
	}
}

// newResultCache 未配置或连不上 Redis 时返回 nil，分析器不走缓存
func newResultCache(ctx context.Context, cfg config.Config, log logger.Logger) port.ResultCache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		log.Warn("⚠️ Redis 不可用，关闭结果缓存", zap.Error(err))
		return nil
	}
	return cache.NewRedisCache(rdb, log)
}

func runAnalyze(ctx context.Context, cfg config.Config, log logger.Logger, links domain.ProfileLinks) error {
	if links.Trimmed().IsEmpty() {
		return errors.New("至少提供一个主页链接")
	}
	factory := newAnalyzerFactory(cfg, nil, log)
	svc := service.NewReportService(factory(service.Tokens{}), nil, nil,
		service.WithAnalyzerTimeout(cfg.Analyzer.Timeout),
		service.WithLogger(log))

	report := svc.GenerateFullReport(ctx, links, service.Tokens{})

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runServer(ctx context.Context, cfg config.Config, log logger.Logger, svc *service.ReportService, concurrency int) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET 未配置")
	}
	jwtSvc := apihttp.NewJWTService(cfg.Auth.JWTSecret, 24*time.Hour)
	router := apihttp.NewRouter(apihttp.NewReportHandler(svc, log), jwtSvc, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Rescore.Schedule != "" {
		sched := scheduler.New(svc, cfg.Rescore.Schedule, concurrency, log)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 API 服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("🛑 收到退出信号，正在关闭服务...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
