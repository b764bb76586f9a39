package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	// 远程服务
	NeteaseAPIURL string // 元数据服务（网易云 API）
	ServerURL     string // 用户资料服务（收藏 / 历史同步）

	HTTPAddr string // 控制 API 监听地址

	// 超时
	RequestTimeout time.Duration // HTTP 客户端默认超时
	EnrichTimeout  time.Duration // 单次歌曲详情补全的超时
	SyncTimeout    time.Duration // 单次远程同步请求的超时

	// 批量详情查询
	BatchSize        int
	BatchItemTimeout time.Duration
	BatchRetries     int
	BatchRetryDelay  time.Duration
	BatchRateLimit   float64 // 每秒请求数，0 表示不限速

	CacheSweepInterval time.Duration

	// 持久化 KV 后端: memory, redis, mysql, minio
	StorageBackend string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MySQL配置
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MinIO配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
	MinioPrefix    string

	// 日志配置
	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration 接受 time.ParseDuration 格式，例如 "8s"、"10m"
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	return &Config{
		NeteaseAPIURL: strings.TrimRight(getEnv("NETEASE_API_URL", "http://music.163.com/api"), "/"),
		ServerURL:     strings.TrimRight(getEnv("SERVER_URL", "http://localhost:3000"), "/"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		EnrichTimeout:  getEnvDuration("ENRICH_TIMEOUT", 8*time.Second),
		SyncTimeout:    getEnvDuration("SYNC_TIMEOUT", 10*time.Second),

		BatchSize:        getEnvInt("BATCH_SIZE", 5),
		BatchItemTimeout: getEnvDuration("BATCH_ITEM_TIMEOUT", 8*time.Second),
		BatchRetries:     getEnvInt("BATCH_RETRIES", 2),
		BatchRetryDelay:  getEnvDuration("BATCH_RETRY_DELAY", 500*time.Millisecond),
		BatchRateLimit:   getEnvFloat("BATCH_RATE_LIMIT", 0),

		CacheSweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "memory")),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "qfm"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "qfm-player"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioPrefix:    getEnv("MINIO_PREFIX", "kv/"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}
