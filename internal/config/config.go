package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Env                string
	Store              string
	MongoURI           string
	MongoDB            string
	ServerAddr         string
	FrontendOrigins    []string
	RedisURL           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTLSeconds    int
	JWTSecret          string
	AccessTTLMinutes   int
	UploadDir          string
	UploadPublicURL    string
	GCSBucket          string
	GCSPublicURL       string
	UploadMaxImageMB   int
	UploadMaxFileMB    int
	RateLimitUploads   int
	RateLimitLogin     int
	RateLimitWindowSec int
	AdminEmail         string
	AdminPassword      string
	APIBaseURL         string
	Timezone           *time.Location
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the process environment. A .env file in the working directory
// fills keys that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	loc, err := time.LoadLocation(getEnv("TZ", "UTC"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/tdc")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "tdc"
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		Store:              strings.ToLower(getEnv("STORE", StoreMongo)),
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigins:    getEnvList("FRONTEND_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 60),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:   getEnvInt("ACCESS_TTL_MINUTES", 720),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		UploadPublicURL:    getEnv("UPLOAD_PUBLIC_URL", "http://localhost:8080/uploads"),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSPublicURL:       getEnv("GCS_PUBLIC_URL", ""),
		UploadMaxImageMB:   getEnvInt("UPLOAD_MAX_IMAGE_MB", 10),
		UploadMaxFileMB:    getEnvInt("UPLOAD_MAX_FILE_MB", 50),
		RateLimitUploads:   getEnvInt("RATE_LIMIT_UPLOADS", 30),
		RateLimitLogin:     getEnvInt("RATE_LIMIT_LOGIN", 10),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8080/api"),
		Timezone:           loc,
	}

	if cfg.Store != StoreMongo && cfg.Store != StoreMemory {
		return nil, errors.New("STORE must be mongo or memory")
	}
	if cfg.GCSBucket != "" && cfg.GCSPublicURL == "" {
		cfg.GCSPublicURL = "https://storage.googleapis.com/" + cfg.GCSBucket
	}

	return cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
