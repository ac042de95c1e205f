package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`  // 是否启用网页内容缓存
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
	CacheTTL string `yaml:"cacheTTL"` // 抓取结果的缓存时长, 例如 "10m"
}

// MySQLConfig 定义了 MySQL 数据库的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// SQLiteConfig 定义了本地开发使用的 SQLite 配置。
type SQLiteConfig struct {
	Path string `yaml:"path"` // 数据库文件路径, ":memory:" 表示内存数据库
}

// MongoConfig 定义了 MongoDB 数据库的连接配置。
type MongoConfig struct {
	Address    string `yaml:"address"`    // MongoDB 服务器地址
	Username   string `yaml:"username"`   // 用户名
	Password   string `yaml:"password"`   // 密码
	Database   string `yaml:"database"`   // 数据库名称
	Collection string `yaml:"collection"` // 摘要记录集合名称
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"` // 是否发布摘要事件
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic"`   // 摘要事件主题
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	Driver  string       `yaml:"driver"`  // 关系型存储驱动: "mysql" 或 "sqlite"
	MySQL   MySQLConfig  `yaml:"mysql"`   // MySQL 数据库配置
	SQLite  SQLiteConfig `yaml:"sqlite"`  // SQLite 数据库配置
	Redis   RedisConfig  `yaml:"redis"`   // Redis 数据库配置
	MongoDB MongoConfig  `yaml:"mongodb"` // MongoDB 数据库配置
	Kafka   KafkaConfig  `yaml:"kafka"`   // Kafka 消息队列配置
}

// SummaryStoreConfig 决定摘要记录持久化到哪个后端。
type SummaryStoreConfig struct {
	Backend string `yaml:"backend"` // "sql" 或 "mongodb"
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了 HTTP 服务的监听配置。
type ServerConfig struct {
	Address           string `yaml:"address"`           // 监听地址, 例如 ":8000"
	ReadHeaderTimeout string `yaml:"readHeaderTimeout"` // 读取请求头超时
	ShutdownTimeout   string `yaml:"shutdownTimeout"`   // 优雅关闭的最长等待时间
}

// AuthConfig 用于配置令牌签发。
type AuthConfig struct {
	JwtSecret  string `yaml:"jwtSecret"`  // JWT 密钥
	Issuer     string `yaml:"issuer"`     // JWT 签发者
	AccessTTL  string `yaml:"accessTTL"`  // access 令牌有效期
	RefreshTTL string `yaml:"refreshTTL"` // refresh 令牌有效期
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider    string            `yaml:"provider"`    // LLM提供商: "gemini", "openai", "ollama", "huggingface"
	Gemini      GeminiConfig      `yaml:"gemini"`      // Gemini 模型配置
	OpenAI      OpenAIConfig      `yaml:"openai"`      // OpenAI 模型配置
	Ollama      OllamaConfig      `yaml:"ollama"`      // Ollama 模型配置
	HuggingFace HuggingFaceConfig `yaml:"huggingface"` // Hugging Face 模型配置
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey          string  `yaml:"apiKey"`          // Gemini API 密钥
	Model           string  `yaml:"model"`           // Gemini 模型名称
	Temperature     float32 `yaml:"temperature"`     // 采样温度
	TopP            float32 `yaml:"topP"`            // nucleus 采样阈值
	TopK            int32   `yaml:"topK"`            // top-k 采样
	MaxOutputTokens int32   `yaml:"maxOutputTokens"` // 最大输出 token 数
}

// OpenAIConfig 包含了 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"` // 为空时使用官方地址
}

// OllamaConfig 包含了 Ollama 的配置。
type OllamaConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"`
}

// HuggingFaceConfig 包含了 Hugging Face Inference API 的配置。
type HuggingFaceConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"`
}

// RetryPolicy 描述一次生成调用的指数退避重试策略。
type RetryPolicy struct {
	InitialInterval string  `yaml:"initialInterval"` // 首次重试前的等待时间
	Multiplier      float64 `yaml:"multiplier"`      // 每次重试的等待时间倍数
	MaxInterval     string  `yaml:"maxInterval"`     // 单次等待上限
	Deadline        string  `yaml:"deadline"`        // 全部重试的总时限
	MaxAttempts     int     `yaml:"maxAttempts"`     // 最多尝试次数 (含首次)
}

// SummaryPolicy 集中定义摘要请求的校验阈值与重试策略。
type SummaryPolicy struct {
	MinContentLength int         `yaml:"minContentLength"` // 输入文本最小字符数
	MaxContentLength int         `yaml:"maxContentLength"` // 输入文本最大字符数
	MinSummaryLength int         `yaml:"minSummaryLength"` // 生成摘要的最小字符数
	StoredTextLimit  int         `yaml:"storedTextLimit"`  // 持久化原文时的截断长度
	PersistTimeout   string      `yaml:"persistTimeout"`   // 保存记录、发布事件各自的时限
	Retry            RetryPolicy `yaml:"retry"`
}

// ExtractionPolicy 定义网页正文抽取的参数。
type ExtractionPolicy struct {
	MaxLength        int      `yaml:"maxLength"`        // 输出文本最大字符数
	MinLength        int      `yaml:"minLength"`        // 低于此长度视为无有效内容
	MinWordsPerBlock int      `yaml:"minWordsPerBlock"` // 兜底段落需要超过的词数
	Selectors        []string `yaml:"selectors"`        // 正文容器选择器, 按优先级排列
	StripTags        []string `yaml:"stripTags"`        // 抽取前移除的元素
}

// FetcherConfig 定义网页抓取的超时、重试与连接池参数。
type FetcherConfig struct {
	ConnectTimeout string `yaml:"connectTimeout"`
	ReadTimeout    string `yaml:"readTimeout"`
	MaxAttempts    int    `yaml:"maxAttempts"`   // 最多尝试次数 (含首次)
	BackoffFactor  string `yaml:"backoffFactor"` // 第一次重试前的等待时间, 之后每次翻倍
	RetryStatuses  []int  `yaml:"retryStatuses"` // 触发重试的 HTTP 状态码
	MaxRedirects   int    `yaml:"maxRedirects"`
	PoolSize       int    `yaml:"poolSize"`
	MaxBodyBytes   int64  `yaml:"maxBodyBytes"`
	UserAgent      string `yaml:"userAgent"`
	DNSTimeout     string `yaml:"dnsTimeout"`
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了按客户端限流的令牌桶配置。
type RateLimiterConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Rate       float64 `yaml:"rate"`       // 每秒速率
	Capacity   int     `yaml:"capacity"`   // 桶容量
	MaxClients int     `yaml:"maxClients"` // 同时跟踪的客户端数量上限
	IdleTTL    string  `yaml:"idleTTL"`    // 客户端空闲多久后释放其令牌桶
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App          AppInfo            `yaml:"app"`
	Server       ServerConfig       `yaml:"server"`
	Auth         AuthConfig         `yaml:"auth"`
	LLM          LLMConfig          `yaml:"llm"`
	Logger       LoggerConfig       `yaml:"logger"`
	Databases    DatabaseConfigs    `yaml:"databases"`
	SummaryStore SummaryStoreConfig `yaml:"summaryStore"`
	Summary      SummaryPolicy      `yaml:"summary"`
	Extraction   ExtractionPolicy   `yaml:"extraction"`
	Fetcher      FetcherConfig      `yaml:"fetcher"`
	Middleware   MiddlewareConfig   `yaml:"middleware"`
}

// Default 返回所有字段都填好默认值的配置。
func Default() *AppConfig {
	return &AppConfig{
		App: AppInfo{Name: "abridge", Version: "1.0.0", Environment: "development"},
		Server: ServerConfig{
			Address:           ":8000",
			ReadHeaderTimeout: "5s",
			ShutdownTimeout:   "15s",
		},
		Auth: AuthConfig{
			Issuer:     "Abridge_1.0_user_service",
			AccessTTL:  "5m",
			RefreshTTL: "24h",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Gemini: GeminiConfig{
				Model:           "gemini-2.5-flash",
				Temperature:     0.3,
				TopP:            0.95,
				TopK:            40,
				MaxOutputTokens: 2048,
			},
			OpenAI:      OpenAIConfig{Model: "gpt-4o-mini"},
			Ollama:      OllamaConfig{Model: "llama3.2", BaseURL: "http://localhost:11434"},
			HuggingFace: HuggingFaceConfig{Model: "facebook/bart-large-cnn"},
		},
		Logger: LoggerConfig{Level: "info"},
		Databases: DatabaseConfigs{
			Driver: "mysql",
			MySQL: MySQLConfig{
				Address:         "localhost:3306",
				Database:        "abridge",
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 3600,
			},
			SQLite:  SQLiteConfig{Path: "abridge.db"},
			Redis:   RedisConfig{Address: "localhost:6379", CacheTTL: "10m"},
			MongoDB: MongoConfig{Address: "mongodb://localhost:27017", Database: "abridge", Collection: "summaries"},
			Kafka:   KafkaConfig{Topic: "summary_events"},
		},
		SummaryStore: SummaryStoreConfig{Backend: "sql"},
		Summary: SummaryPolicy{
			MinContentLength: 50,
			MaxContentLength: 15000,
			MinSummaryLength: 10,
			StoredTextLimit:  5000,
			PersistTimeout:   "3s",
			Retry: RetryPolicy{
				InitialInterval: "1s",
				Multiplier:      2,
				MaxInterval:     "10s",
				Deadline:        "30s",
				MaxAttempts:     3,
			},
		},
		Extraction: ExtractionPolicy{
			MaxLength:        15000,
			MinLength:        50,
			MinWordsPerBlock: 10,
			Selectors: []string{
				"article",
				"main",
				"div.article",
				"div.content",
				"div.post",
				"div.story",
				"section.main-content",
			},
			StripTags: []string{
				"script", "style", "nav", "footer",
				"iframe", "img", "button", "form",
				"header", "aside", "svg", "link",
				"meta", "noscript",
			},
		},
		Fetcher: FetcherConfig{
			ConnectTimeout: "3s",
			ReadTimeout:    "10s",
			MaxAttempts:    3,
			BackoffFactor:  "1s",
			RetryStatuses:  []int{403, 408, 429, 500, 502, 503, 504},
			MaxRedirects:   30,
			PoolSize:       10,
			MaxBodyBytes:   5 << 20,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			DNSTimeout:     "3s",
		},
		Middleware: MiddlewareConfig{
			RateLimiter: RateLimiterConfig{
				Enabled:    false,
				Rate:       2,
				Capacity:   20,
				MaxClients: 10000,
				IdleTTL:    "10m",
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				SuccessThreshold: 2,
				Timeout:          "30s",
			},
		},
	}
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// 文件中未出现的字段保留 Default 中的值，随后再应用环境变量覆盖。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取、解析或校验失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 用环境变量覆盖敏感配置，避免把密钥写进配置文件。
func (c *AppConfig) applyEnv(getenv func(string) string) {
	override := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	override(&c.Auth.JwtSecret, "ABRIDGE_JWT_SECRET")
	override(&c.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	override(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	override(&c.LLM.HuggingFace.APIKey, "HF_API_KEY")
	override(&c.Databases.MySQL.Password, "ABRIDGE_MYSQL_PASSWORD")
}

// placeholderSecrets 是示例配置里常见的占位密钥。
var placeholderSecrets = map[string]bool{
	"change-me": true,
	"changeme":  true,
	"secret":    true,
}

// Validate 检查配置之间的约束关系。
func (c *AppConfig) Validate() error {
	var errs []error
	switch {
	case c.Auth.JwtSecret == "":
		errs = append(errs, errors.New("auth.jwtSecret 不能为空, 请设置 ABRIDGE_JWT_SECRET"))
	case c.App.Environment == "production" && placeholderSecrets[c.Auth.JwtSecret]:
		errs = append(errs, errors.New("生产环境不能使用示例 jwtSecret"))
	}
	switch c.LLM.Provider {
	case "gemini", "openai", "ollama", "huggingface":
	default:
		errs = append(errs, fmt.Errorf("不支持的 llm.provider: %q", c.LLM.Provider))
	}
	switch c.Databases.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("不支持的 databases.driver: %q", c.Databases.Driver))
	}
	switch c.SummaryStore.Backend {
	case "sql", "mongodb":
	default:
		errs = append(errs, fmt.Errorf("不支持的 summaryStore.backend: %q", c.SummaryStore.Backend))
	}
	if c.Summary.MinContentLength <= 0 || c.Summary.MinContentLength > c.Summary.MaxContentLength {
		errs = append(errs, errors.New("summary.minContentLength 必须为正数且不大于 maxContentLength"))
	}
	if c.Summary.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("summary.retry.maxAttempts 至少为 1"))
	}
	if c.Extraction.MinLength > c.Extraction.MaxLength {
		errs = append(errs, errors.New("extraction.minLength 不能大于 maxLength"))
	}
	if len(c.Extraction.Selectors) == 0 {
		errs = append(errs, errors.New("extraction.selectors 不能为空"))
	}
	if c.Fetcher.MaxAttempts < 1 {
		errs = append(errs, errors.New("fetcher.maxAttempts 至少为 1"))
	}
	for _, d := range []struct{ name, value string }{
		{"server.readHeaderTimeout", c.Server.ReadHeaderTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
		{"auth.accessTTL", c.Auth.AccessTTL},
		{"auth.refreshTTL", c.Auth.RefreshTTL},
		{"summary.retry.initialInterval", c.Summary.Retry.InitialInterval},
		{"summary.retry.maxInterval", c.Summary.Retry.MaxInterval},
		{"summary.retry.deadline", c.Summary.Retry.Deadline},
		{"summary.persistTimeout", c.Summary.PersistTimeout},
		{"fetcher.connectTimeout", c.Fetcher.ConnectTimeout},
		{"fetcher.readTimeout", c.Fetcher.ReadTimeout},
		{"fetcher.backoffFactor", c.Fetcher.BackoffFactor},
	} {
		if _, err := time.ParseDuration(d.value); err != nil {
			errs = append(errs, fmt.Errorf("%s 不是合法的时长: %w", d.name, err))
		}
	}
	return errors.Join(errs...)
}

// Duration 解析时长字符串，解析失败或为空时返回 fallback。
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
