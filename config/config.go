package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided
// via the config file or the environment.
type AppConfig struct {
	AppPort   string
	JWTSecret string

	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Redis for the token blacklist and OAuth state
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// OAuth providers (external auth collaborator)
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string

	// Request surface
	AllowedOrigins     []string
	RateLimitPerMinute int
	PostsPerPage       int
	MediaDir           string
	GinMode            string
	GinPath            string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Privileged management interface
	AdminUsernames []string
}

var cfg AppConfig
var loaded bool

// Load reads the application configuration once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads a flat JSON file into cfg if present. A missing file
// is not an error.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(key string) string {
		if s, ok := raw[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(key string) int {
		switch t := raw[key].(type) {
		case float64:
			return int(t)
		case json.Number:
			i, _ := t.Int64()
			return int(i)
		}
		return 0
	}
	getBool := func(key string) bool {
		b, _ := raw[key].(bool)
		return b
	}
	getStringSlice := func(key string) []string {
		arr, ok := raw[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	out.AppPort = getString("AppPort")
	out.JWTSecret = getString("JWTSecret")
	out.DatabaseURI = getString("DatabaseURI")
	out.DBHost = getString("DBHost")
	out.DBPort = getString("DBPort")
	out.DBUser = getString("DBUser")
	out.DBPassword = getString("DBPassword")
	out.DBName = getString("DBName")
	out.RedisHost = getString("RedisHost")
	out.RedisPort = getInt("RedisPort")
	out.RedisDB = getInt("RedisDB")
	out.RedisPassword = getString("RedisPassword")
	out.GitHubClientID = getString("GitHubClientID")
	out.GitHubClientSecret = getString("GitHubClientSecret")
	out.GoogleClientID = getString("GoogleClientID")
	out.GoogleClientSecret = getString("GoogleClientSecret")
	out.OAuthRedirectBase = getString("OAuthRedirectBase")
	out.AllowedOrigins = getStringSlice("AllowedOrigins")
	out.RateLimitPerMinute = getInt("RateLimitPerMinute")
	out.PostsPerPage = getInt("PostsPerPage")
	out.MediaDir = getString("MediaDir")
	out.GinMode = getString("GinMode")
	out.GinPath = getString("GinPath")
	out.LogLevel = getString("LogLevel")
	out.LogPath = getString("LogPath")
	out.LogMaxSizeMB = getInt("LogMaxSizeMB")
	out.LogMaxBackups = getInt("LogMaxBackups")
	out.LogMaxAgeDays = getInt("LogMaxAgeDays")
	out.LogCompress = getBool("LogCompress")
	out.AdminUsernames = getStringSlice("AdminUsernames")
	return nil
}

func applyDefaults(out *AppConfig) {
	if out.AppPort == "" {
		out.AppPort = "8080"
	}
	if out.DBHost == "" {
		out.DBHost = "127.0.0.1"
	}
	if out.DBPort == "" {
		out.DBPort = "3306"
	}
	if out.DBName == "" {
		out.DBName = "blogicum"
	}
	if out.RedisHost == "" {
		out.RedisHost = "127.0.0.1"
	}
	if out.RedisPort == 0 {
		out.RedisPort = 6379
	}
	if len(out.AllowedOrigins) == 0 {
		out.AllowedOrigins = []string{"*"}
	}
	if out.RateLimitPerMinute == 0 {
		out.RateLimitPerMinute = 60
	}
	if out.PostsPerPage == 0 {
		out.PostsPerPage = 10
	}
	if out.MediaDir == "" {
		out.MediaDir = "media"
	}
	if out.GinMode == "" {
		out.GinMode = "release"
	}
	if out.GinPath == "" {
		out.GinPath = "logs/gin.log"
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	if out.LogPath == "" {
		out.LogPath = "logs/app.log"
	}
	if out.LogMaxSizeMB == 0 {
		out.LogMaxSizeMB = 100
	}
	if out.LogMaxBackups == 0 {
		out.LogMaxBackups = 3
	}
	if out.LogMaxAgeDays == 0 {
		out.LogMaxAgeDays = 7
	}
}

func applyEnvOverrides(out *AppConfig) {
	out.AppPort = getEnv("APP_PORT", out.AppPort)
	out.JWTSecret = getEnv("JWT_SECRET", out.JWTSecret)
	out.DatabaseURI = getEnv("DATABASE_URI", out.DatabaseURI)
	out.DBHost = getEnv("DB_HOST", out.DBHost)
	out.DBPort = getEnv("DB_PORT", out.DBPort)
	out.DBUser = getEnv("DB_USER", out.DBUser)
	out.DBPassword = getEnv("DB_PASSWORD", out.DBPassword)
	out.DBName = getEnv("DB_NAME", out.DBName)
	out.RedisHost = getEnv("REDIS_HOST", out.RedisHost)
	out.RedisPort = getEnvInt("REDIS_PORT", out.RedisPort)
	out.RedisDB = getEnvInt("REDIS_DB", out.RedisDB)
	out.RedisPassword = getEnv("REDIS_PASSWORD", out.RedisPassword)
	out.GitHubClientID = getEnv("GITHUB_CLIENT_ID", out.GitHubClientID)
	out.GitHubClientSecret = getEnv("GITHUB_CLIENT_SECRET", out.GitHubClientSecret)
	out.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", out.GoogleClientID)
	out.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", out.GoogleClientSecret)
	out.OAuthRedirectBase = getEnv("OAUTH_REDIRECT_BASE", out.OAuthRedirectBase)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		out.AllowedOrigins = splitAndTrim(v)
	}
	out.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", out.RateLimitPerMinute)
	out.PostsPerPage = getEnvInt("POSTS_PER_PAGE", out.PostsPerPage)
	out.MediaDir = getEnv("MEDIA_DIR", out.MediaDir)
	out.GinMode = getEnv("GIN_MODE", out.GinMode)
	out.GinPath = getEnv("GIN_LOG_PATH", out.GinPath)
	out.LogLevel = getEnv("LOG_LEVEL", out.LogLevel)
	out.LogPath = getEnv("LOG_PATH", out.LogPath)
	out.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", out.LogMaxSizeMB)
	out.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", out.LogMaxBackups)
	out.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", out.LogMaxAgeDays)
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		out.LogCompress = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ADMIN_USERNAMES"); v != "" {
		out.AdminUsernames = splitAndTrim(v)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
