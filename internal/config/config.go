package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	GinMode        string
	SheetLanguage  string
	MaxUploadBytes int64
	Log            LogConfig
}

// LogConfig 描述日志输出与轮转参数。
type LogConfig struct {
	Level      string
	FileName   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 当前目录存在 .env 文件时先加载它，已有的环境变量不会被覆盖。
func Load() AppConfig {
	_ = godotenv.Load()

	port := env("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(env("DB_DRIVER", "sqlite"))
	if driver != "mysql" {
		driver = "sqlite"
	}

	language := strings.ToLower(env("SHEET_LANGUAGE", "en"))
	if strings.HasPrefix(language, "zh") {
		language = "zh"
	} else {
		language = "en"
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabaseDriver: driver,
		DatabasePath:   env("DATABASE_PATH", "contactbook.db"),
		DatabaseDSN:    strings.TrimSpace(os.Getenv("DATABASE_DSN")),
		GinMode:        env("GIN_MODE", "release"),
		SheetLanguage:  language,
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_MB", 10)) << 20,
		Log: LogConfig{
			Level:      env("LOG_LEVEL", "info"),
			FileName:   strings.TrimSpace(os.Getenv("LOG_FILE")),
			MaxSize:    envInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     envInt("LOG_MAX_AGE_DAYS", 30),
		},
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
