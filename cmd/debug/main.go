package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"devscore/internal/adapter/blog"
	"devscore/internal/adapter/coding"
	"devscore/internal/adapter/gemini"
	"devscore/internal/adapter/github"
	apihttp "devscore/internal/adapter/http"
	"devscore/internal/adapter/linkedin"
	"devscore/internal/domain"
	"devscore/internal/port"
	"devscore/internal/service"

	"github.com/google/uuid"
)

func main() {
	platform := flag.String("platform", "github", "要调试的分析器: github, linkedin, blog, coding")
	url := flag.String("url", "", "主页链接")
	summarize := flag.Bool("summarize", false, "对单平台结果调用 Gemini 生成点评")
	mintToken := flag.String("mint-token", "", "为指定 owner uuid 签发本地调试用 JWT，需要 JWT_SECRET")
	flag.Parse()

	if *mintToken != "" {
		printToken(*mintToken)
		return
	}
	if *url == "" {
		log.Fatal("❌ 请通过 -url 指定主页链接")
	}

	a, key := pickAnalyzer(*platform)
	if a == nil {
		log.Fatalf("❌ 未知平台: %s", *platform)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("🔍 正在分析 %s ...\n", *url)
	res := a.Analyze(ctx, *url)
	printJSON(res)

	if !*summarize {
		return
	}
	summarizer, err := gemini.NewGeminiSummarizer(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatalf("❌ AI 初始化失败: %v", err)
	}
	defer summarizer.Close()

	full := service.Aggregate(map[string]*domain.AnalyzerResult{key: res})
	text, err := summarizer.Summarize(ctx, full)
	if err != nil {
		log.Fatalf("❌ 生成点评失败: %v", err)
	}
	fmt.Println("🤖 AI 点评:")
	fmt.Println(text)
}

func pickAnalyzer(platform string) (port.Analyzer, string) {
	switch platform {
	case domain.KeyGitHub:
		return github.NewAnalyzer(os.Getenv("GITHUB_TOKEN")), domain.KeyGitHub
	case domain.KeyLinkedIn:
		return linkedin.NewAnalyzer(), domain.KeyLinkedIn
	case domain.KeyBlog:
		return blog.NewAnalyzer(blog.WithAPIKey(os.Getenv("DEVTO_API_KEY"))), domain.KeyBlog
	case domain.KeyCoding:
		return coding.NewAnalyzer(), domain.KeyCoding
	}
	return nil, ""
}

func printToken(owner string) {
	id, err := uuid.Parse(owner)
	if err != nil {
		log.Fatalf("❌ owner 不是合法的 uuid: %v", err)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("❌ JWT_SECRET 未设置")
	}
	token, err := apihttp.NewJWTService(secret, 24*time.Hour).GenerateToken(id)
	if err != nil {
		log.Fatalf("❌ 签发失败: %v", err)
	}
	fmt.Println(token)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("❌ 序列化失败: %v", err)
	}
	fmt.Println(string(out))
}
