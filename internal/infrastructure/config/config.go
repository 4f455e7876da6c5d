package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Server
	ServerPort string

	// 存储后端: "redis"(默认) 或 "file"
	StorageBackend string

	// Redis
	RedisHost string
	RedisPort string
	RedisDB   int

	// 文件存储
	DataDir string

	// 主数据加密开关（关闭时以明文JSON持久化）
	EncryptionEnabled bool

	// JWT Authentication
	JWTSecretKey string

	// 管理密码门禁参数
	MinPasswordLength int // 初始密码最小长度
	MaxLoginAttempts  int // 连续失败次数上限
	LockoutSeconds    int // 锁定时长（秒）
	AutoLockSeconds   int // 无操作自动上锁时长（秒）
}

// LoadConfig loads config from environment variables
func LoadConfig() *Config {
	envType := getEnv("ENV_TYPE", "LOCAL")

	return &Config{
		EnvType: envType,

		// Server config
		ServerPort: getEnv("SERVER_PORT", "8080"),

		// Storage config
		StorageBackend: getEnv("STORAGE_BACKEND", "redis"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		DataDir:        getEnv("DATA_DIR", "data"),

		// 加密默认开启，与原始部署一致
		EncryptionEnabled: getEnvAsBool("ENCRYPTION_ENABLED", true),

		// JWT Config
		JWTSecretKey: getEnv("JWT_SECRET_KEY", "lifeline-secret-key-change-in-production"),

		// 门禁参数（各部署观测值在4~12之间波动，统一取最严格的12为默认）
		MinPasswordLength: getEnvAsInt("MIN_PASSWORD_LENGTH", 12),
		MaxLoginAttempts:  getEnvAsInt("MAX_LOGIN_ATTEMPTS", 3),
		LockoutSeconds:    getEnvAsInt("LOCKOUT_SECONDS", 60),
		AutoLockSeconds:   getEnvAsInt("AUTO_LOCK_SECONDS", 90),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// 要求必须提供环境变量的辅助函数
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	panic(fmt.Sprintf("Required environment variable %s is not set", key))
}
