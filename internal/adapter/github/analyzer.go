package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"devscore/internal/adapter/extractor"
	"devscore/internal/common"
	"devscore/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

const (
	domainFragment = "github.com"
	repoPageSize   = 100
	sampleSize     = 6
	httpTimeout    = 15 * time.Second
)

// 各分项的饱和阈值与满分
const (
	followersThreshold = 500
	reposThreshold     = 100
	starsThreshold     = 500
	forksThreshold     = 200

	followersWeight = 25
	reposWeight     = 20
	starsWeight     = 35
	forksWeight     = 20
)

// Stats GitHub 原始指标
type Stats struct {
	Followers  int
	RepoCount  int
	TotalStars int
	TotalForks int
}

// Breakdown 各分项得分，每项不超过其满分
type Breakdown struct {
	Followers float64 `json:"followers"`
	Repos     float64 `json:"repos"`
	Stars     float64 `json:"stars"`
	Forks     float64 `json:"forks"`
}

// Total 四项之和
func (b Breakdown) Total() float64 {
	return b.Followers + b.Repos + b.Stars + b.Forks
}

// RepoSample 用于展示的仓库摘要
type RepoSample struct {
	Name        string `json:"name"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Language    string `json:"language,omitempty"`
}

// Analyzer 实现了 port.Analyzer 接口
type Analyzer struct {
	client    *github.Client
	retryOpts []common.Option
}

// NewAnalyzer 初始化 GitHub 客户端
// token: GitHub Personal Access Token (如果是空字符串，就是匿名访问，限制 60次/小时)
func NewAnalyzer(token string) *Analyzer {
	return &Analyzer{
		client:    github.NewClient(newHTTPClient(token)),
		retryOpts: []common.Option{common.WithMaxRetries(2), common.WithInitialDelay(500 * time.Millisecond)},
	}
}

// newHTTPClient 匿名与带 token 两种客户端使用同样的超时
func newHTTPClient(token string) *http.Client {
	if token == "" {
		return &http.Client{Timeout: httpTimeout}
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = httpTimeout
	return tc
}

// Analyze 拉取用户资料与最近更新的 100 个仓库并打分
func (a *Analyzer) Analyze(ctx context.Context, url string) *domain.AnalyzerResult {
	username, ok := extractor.ExtractHandle(url, domainFragment)
	if !ok {
		return domain.Failed(domain.PlatformGitHub, "", fmt.Errorf("无法从 %q 解析 GitHub 用户名", url))
	}

	user, err := a.fetchUser(ctx, username)
	if err != nil {
		return domain.Failed(domain.PlatformGitHub, username, err)
	}
	repos, err := a.fetchRepos(ctx, username)
	if err != nil {
		return domain.Failed(domain.PlatformGitHub, username, err)
	}

	stats := Stats{
		Followers: user.GetFollowers(),
		RepoCount: len(repos),
	}
	samples := make([]RepoSample, 0, sampleSize)
	for _, repo := range repos {
		stats.TotalStars += repo.GetStargazersCount()
		stats.TotalForks += repo.GetForksCount()
		if len(samples) < sampleSize {
			samples = append(samples, RepoSample{
				Name:        repo.GetName(),
				Stars:       repo.GetStargazersCount(),
				Forks:       repo.GetForksCount(),
				URL:         repo.GetHTMLURL(),
				Description: repo.GetDescription(),
				Language:    repo.GetLanguage(),
			})
		}
	}

	score, breakdown := Score(stats)
	return &domain.AnalyzerResult{
		Platform: domain.PlatformGitHub,
		Username: username,
		Score:    score,
		Metrics: map[string]any{
			"name":        user.GetName(),
			"avatarUrl":   user.GetAvatarURL(),
			"followers":   stats.Followers,
			"publicRepos": user.GetPublicRepos(),
			"repoCount":   stats.RepoCount,
			"totalStars":  stats.TotalStars,
			"totalForks":  stats.TotalForks,
			"breakdown":   breakdown,
			"topRepos":    samples,
		},
	}
}

// Score 把原始指标归一化为 0-100 的分数
// 每一项先按阈值封顶到 1.0 再乘以权重，超过阈值后不再加分
func Score(s Stats) (int, Breakdown) {
	b := Breakdown{
		Followers: domain.Ratio(float64(s.Followers), followersThreshold) * followersWeight,
		Repos:     domain.Ratio(float64(s.RepoCount), reposThreshold) * reposWeight,
		Stars:     domain.Ratio(float64(s.TotalStars), starsThreshold) * starsWeight,
		Forks:     domain.Ratio(float64(s.TotalForks), forksThreshold) * forksWeight,
	}
	return domain.Round(b.Total()), b
}

func (a *Analyzer) fetchUser(ctx context.Context, username string) (*github.User, error) {
	var user *github.User
	err := common.Do(ctx, func() error {
		var apiErr error
		user, _, apiErr = a.client.Users.Get(ctx, username)
		return classify(apiErr)
	}, a.retryOpts...)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeUpstream, "GitHub 用户资料获取失败", err)
	}
	return user, nil
}

func (a *Analyzer) fetchRepos(ctx context.Context, username string) ([]*github.Repository, error) {
	opts := &github.RepositoryListOptions{
		Type: "owner",
		Sort: "updated",
		ListOptions: github.ListOptions{
			PerPage: repoPageSize,
		},
	}

	var repos []*github.Repository
	err := common.Do(ctx, func() error {
		var apiErr error
		repos, _, apiErr = a.client.Repositories.List(ctx, username, opts)
		return classify(apiErr)
	}, a.retryOpts...)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeUpstream, "GitHub 仓库列表获取失败", err)
	}
	return repos, nil
}

// classify 404 与限流不值得重试
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return common.Permanent(err)
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
			return common.Permanent(err)
		}
	}
	return err
}
