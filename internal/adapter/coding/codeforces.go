package coding

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"devscore/internal/domain"
)

type codeforcesEnvelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}

type codeforcesUser struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
	Rank      string `json:"rank"`
}

type codeforcesSubmission struct {
	Verdict string `json:"verdict"`
	Problem struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
	} `json:"problem"`
}

func (a *Analyzer) analyzeCodeforces(ctx context.Context, rawURL string) *domain.AnalyzerResult {
	handle, ok := handleAfter(rawURL, codeforcesFragment, "profile")
	if !ok {
		return domain.Failed(domain.PlatformCodeforces, "", fmt.Errorf("无法从 %q 解析 Codeforces 用户名", rawURL))
	}

	// 两个接口互不依赖，各自失败各自按 0 处理
	var (
		wg          sync.WaitGroup
		user        *codeforcesUser
		submissions []codeforcesSubmission
		infoErr     error
		statusErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		user, infoErr = a.fetchCodeforcesUser(ctx, handle)
	}()
	go func() {
		defer wg.Done()
		submissions, statusErr = a.fetchCodeforcesSubmissions(ctx, handle)
	}()
	wg.Wait()

	if infoErr != nil && statusErr != nil {
		return domain.Failed(domain.PlatformCodeforces, handle, errors.Join(infoErr, statusErr))
	}

	rating, maxRating, rank := 0, 0, ""
	if user != nil {
		rating, maxRating, rank = user.Rating, user.MaxRating, user.Rank
	}
	solved := len(submissions)
	accepted := map[string]struct{}{}
	for _, s := range submissions {
		if s.Verdict == "OK" {
			accepted[fmt.Sprintf("%d%s", s.Problem.ContestID, s.Problem.Index)] = struct{}{}
		}
	}

	metrics := map[string]any{
		"rating":           rating,
		"maxRating":        maxRating,
		"rank":             rank,
		"solvedCount":      solved,
		"acceptedProblems": len(accepted),
	}
	res := &domain.AnalyzerResult{
		Platform: domain.PlatformCodeforces,
		Username: handle,
		Score:    CodeforcesScore(solved, rating),
		Metrics:  metrics,
	}
	if err := errors.Join(infoErr, statusErr); err != nil {
		res.ErrorMessage = err.Error()
	}
	return res
}

// CodeforcesScore min(1, solved/1000)*60 + min(1, rating/3000)*40
func CodeforcesScore(solved, rating int) int {
	solvedScore := domain.Ratio(float64(solved), 1000) * 60
	ratingScore := domain.Ratio(float64(rating), 3000) * 40
	return domain.Round(solvedScore + ratingScore)
}

func (a *Analyzer) fetchCodeforcesUser(ctx context.Context, handle string) (*codeforcesUser, error) {
	var env codeforcesEnvelope[[]codeforcesUser]
	endpoint := fmt.Sprintf("%s/user.info?handles=%s", a.codeforcesAPI, url.QueryEscape(handle))
	if err := a.http.GetJSON(ctx, endpoint, nil, &env); err != nil {
		return nil, err
	}
	if env.Status != "OK" || len(env.Result) == 0 {
		return nil, fmt.Errorf("codeforces user.info: %s", env.Comment)
	}
	return &env.Result[0], nil
}

func (a *Analyzer) fetchCodeforcesSubmissions(ctx context.Context, handle string) ([]codeforcesSubmission, error) {
	var env codeforcesEnvelope[[]codeforcesSubmission]
	endpoint := fmt.Sprintf("%s/user.status?handle=%s", a.codeforcesAPI, url.QueryEscape(handle))
	if err := a.http.GetJSON(ctx, endpoint, nil, &env); err != nil {
		return nil, err
	}
	if env.Status != "OK" {
		return nil, fmt.Errorf("codeforces user.status: %s", env.Comment)
	}
	return env.Result, nil
}
