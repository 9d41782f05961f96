package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	ServerAddr string

	DBDriver   string // mysql 或 sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	JWTSecret     string
	SessionCookie string
	SessionMaxAge time.Duration
	LogLevel      string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	BaseURL     string
	FrontendURL string

	StorageBackend     string // local、s3 或 gcs
	LocalStoragePath   string
	MediaURL           string
	S3Region           string
	S3Bucket           string
	GCSProjectID       string
	GCSBucketName      string
	GCSCredentialsFile string

	PostsPerPage  int
	IndexCacheTTL time.Duration
	CacheSize     int

	Debug bool // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig = Default()

// Default 返回不依赖环境变量的默认配置，测试直接使用
func Default() Config {
	return Config{
		ServerAddr:       ":8080",
		DBDriver:         "sqlite",
		SQLitePath:       "yatube.db",
		JWTSecret:        "",
		SessionCookie:    "sessionid",
		SessionMaxAge:    14 * 24 * time.Hour,
		LogLevel:         "info",
		SMTPPort:         465,
		BaseURL:          "http://localhost:8080",
		FrontendURL:      "http://localhost:8080",
		StorageBackend:   "local",
		LocalStoragePath: "./media",
		MediaURL:         "/media/",
		PostsPerPage:     10,
		IndexCacheTTL:    20 * time.Second,
		CacheSize:        256,
	}
}

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	def := Default()
	AppConfig = Config{
		ServerAddr:         getEnv("SERVER_ADDR", def.ServerAddr),
		DBDriver:           getEnv("DB_DRIVER", def.DBDriver),
		DBHost:             getEnv("DB_HOST", ""),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", ""),
		SQLitePath:         getEnv("SQLITE_PATH", def.SQLitePath),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SessionCookie:      getEnv("SESSION_COOKIE", def.SessionCookie),
		SessionMaxAge:      getEnvAsDuration("SESSION_MAX_AGE", def.SessionMaxAge),
		LogLevel:           getEnv("LOG_LEVEL", def.LogLevel),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvAsInt("SMTP_PORT", def.SMTPPort),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		BaseURL:            getEnv("BASE_URL", def.BaseURL),
		FrontendURL:        getEnv("FRONTEND_URL", def.FrontendURL),
		StorageBackend:     getEnv("STORAGE_BACKEND", def.StorageBackend),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", def.LocalStoragePath),
		MediaURL:           getEnv("MEDIA_URL", def.MediaURL),
		S3Region:           getEnv("S3_REGION", "us-west-2"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		GCSProjectID:       getEnv("GCS_PROJECT_ID", ""),
		GCSBucketName:      getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		PostsPerPage:       getEnvAsInt("POSTS_PER_PAGE", def.PostsPerPage),
		IndexCacheTTL:      getEnvAsDuration("INDEX_CACHE_TTL", def.IndexCacheTTL),
		CacheSize:          getEnvAsInt("CACHE_SIZE", def.CacheSize),
		Debug:              getEnvAsBool("DEBUG", false),
	}

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。数据库驱动：%s，存储：%s", AppConfig.DBDriver, AppConfig.StorageBackend)
}

// MailEnabled 判断是否配置了 SMTP
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	switch AppConfig.DBDriver {
	case "mysql":
		if AppConfig.DBHost == "" || AppConfig.DBUser == "" || AppConfig.DBName == "" {
			log.Fatal("错误：数据库配置不完整")
		}
	case "sqlite":
		if AppConfig.SQLitePath == "" {
			log.Fatal("错误：SQLITE_PATH 未设置")
		}
	default:
		log.Fatalf("错误：不支持的数据库驱动 %q", AppConfig.DBDriver)
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("错误：JWT密钥未设置")
	}
	if AppConfig.PostsPerPage <= 0 {
		log.Fatal("错误：POSTS_PER_PAGE 必须大于 0")
	}
	if !AppConfig.MailEnabled() {
		log.Println("警告：SMTP 未配置，密码重置邮件将只写入日志")
	}
}
