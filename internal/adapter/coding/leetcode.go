package coding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devscore/internal/domain"
)

const leetCodeQuery = `query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    submitStats {
      acSubmissionNum {
        difficulty
        count
      }
    }
    profile {
      ranking
    }
  }
}`

var errUserNotFound = errors.New("user not found")

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type leetCodeResponse struct {
	Data struct {
		MatchedUser *struct {
			Username    string `json:"username"`
			SubmitStats struct {
				ACSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
			Profile struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
		} `json:"matchedUser"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (a *Analyzer) analyzeLeetCode(ctx context.Context, rawURL string) *domain.AnalyzerResult {
	username, ok := handleAfter(rawURL, leetCodeFragment, "u")
	if !ok {
		return domain.Failed(domain.PlatformLeetCode, "", fmt.Errorf("无法从 %q 解析 LeetCode 用户名", rawURL))
	}

	req := graphQLRequest{
		Query:     leetCodeQuery,
		Variables: map[string]any{"username": username},
	}
	headers := map[string]string{"Referer": "https://leetcode.com/" + username + "/"}

	var resp leetCodeResponse
	if err := a.http.PostJSON(ctx, a.leetCodeGraphQL, headers, req, &resp); err != nil {
		return domain.Failed(domain.PlatformLeetCode, username, err)
	}
	user := resp.Data.MatchedUser
	if user == nil {
		err := errUserNotFound
		if len(resp.Errors) > 0 {
			err = fmt.Errorf("%w: %s", errUserNotFound, resp.Errors[0].Message)
		}
		return domain.Failed(domain.PlatformLeetCode, username, err)
	}

	// "All" 桶已经是总和，只累加分难度的桶
	byDifficulty := map[string]int{}
	totalSolved := 0
	for _, bucket := range user.SubmitStats.ACSubmissionNum {
		if strings.EqualFold(bucket.Difficulty, "All") {
			continue
		}
		byDifficulty[strings.ToLower(bucket.Difficulty)] = bucket.Count
		totalSolved += bucket.Count
	}
	ranking := user.Profile.Ranking

	return &domain.AnalyzerResult{
		Platform: domain.PlatformLeetCode,
		Username: username,
		Score:    LeetCodeScore(totalSolved, ranking),
		Metrics: map[string]any{
			"totalSolved":  totalSolved,
			"ranking":      ranking,
			"byDifficulty": byDifficulty,
		},
	}
}

// LeetCodeScore min(1, solved/200)*70 + min(1, 5000/rank)*30
// 排名数值越小越好，rank <= 5000 时排名分拿满；没有排名时排名分为 0
func LeetCodeScore(totalSolved, rank int) int {
	solvedScore := domain.Ratio(float64(totalSolved), 200) * 70
	rankScore := 0.0
	if rank > 0 {
		rankScore = min(1, 5000/float64(rank)) * 30
	}
	return domain.Round(solvedScore + rankScore)
}
