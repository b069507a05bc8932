package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`
	Analyzer struct {
		GitHubToken string        `mapstructure:"github_token"`
		DevToAPIKey string        `mapstructure:"devto_api_key"`
		Timeout     time.Duration `mapstructure:"timeout"`
		MaxRetries  int           `mapstructure:"max_retries"`
	} `mapstructure:"analyzer"`
	Gemini struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	Feishu struct {
		Webhook    string `mapstructure:"webhook"`
		ReportLink string `mapstructure:"report_link"`
	} `mapstructure:"feishu"`
	Rescore struct {
		Schedule    string `mapstructure:"schedule"`
		Concurrency int    `mapstructure:"concurrency"`
	} `mapstructure:"rescore"`
}

// LoadConfig 依次读取 .env、config.yaml 与环境变量，后者优先
// paths 为 config.yaml 的搜索目录，默认当前目录
func LoadConfig(paths ...string) (cfg Config, err error) {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"app.port":               "APP_PORT",
		"app.env":                "APP_ENV",
		"db.dsn":                 "DB_DSN",
		"redis.addr":             "REDIS_ADDR",
		"redis.password":         "REDIS_PASSWORD",
		"redis.ttl":              "CACHE_TTL",
		"auth.jwt_secret":        "JWT_SECRET",
		"analyzer.github_token":  "GITHUB_TOKEN",
		"analyzer.devto_api_key": "DEVTO_API_KEY",
		"analyzer.timeout":       "ANALYZER_TIMEOUT",
		"analyzer.max_retries":   "ANALYZER_MAX_RETRIES",
		"gemini.api_key":         "GEMINI_API_KEY",
		"gemini.model":           "GEMINI_MODEL",
		"feishu.webhook":         "FEISHU_WEBHOOK",
		"feishu.report_link":     "FEISHU_REPORT_LINK",
		"rescore.schedule":       "RESCORE_SCHEDULE",
		"rescore.concurrency":    "RESCORE_CONCURRENCY",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	err = v.Unmarshal(&cfg)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("redis.ttl", 30*time.Minute)
	v.SetDefault("analyzer.timeout", 8*time.Second)
	v.SetDefault("analyzer.max_retries", 2)
	v.SetDefault("gemini.model", "gemini-2.5-flash-lite")
	v.SetDefault("rescore.concurrency", 3)
}
