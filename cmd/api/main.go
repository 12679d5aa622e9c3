package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"

	"tdc-backend/internal/accounts"
	"tdc-backend/internal/auth"
	"tdc-backend/internal/blogposts"
	"tdc-backend/internal/cache"
	"tdc-backend/internal/config"
	"tdc-backend/internal/courses"
	"tdc-backend/internal/db"
	"tdc-backend/internal/media"
	"tdc-backend/internal/middleware"
	"tdc-backend/internal/server"
	"tdc-backend/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deps := server.Deps{
		Log:      logger,
		CacheTTL: cfg.CacheTTL(),
		Location: cfg.Timezone,
		Origins:  cfg.FrontendOrigins,
		UploadPolicy: upload.Policy{
			MaxImageBytes: int64(cfg.UploadMaxImageMB) << 20,
			MaxFileBytes:  int64(cfg.UploadMaxFileMB) << 20,
			ImageTypes:    upload.DefaultPolicy().ImageTypes,
		},
		LoginLimiter:  middleware.NewRateLimiter(cfg.RateLimitLogin, cfg.RateLimitWindow()),
		UploadLimiter: middleware.NewRateLimiter(cfg.RateLimitUploads, cfg.RateLimitWindow()),
	}

	switch cfg.Store {
	case config.StoreMongo:
		var client *mongo.Client
		var cols *db.Collections
		client, cols, err = db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
		defer client.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx, cols); err != nil {
			logger.Error("index creation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		deps.Courses = courses.NewRepository(cols.Courses)
		deps.BlogPosts = blogposts.NewRepository(cols.BlogPosts)
		deps.Users = accounts.NewRepository(cols.Users)
	default:
		logger.Warn("using in-memory store; data is lost on restart")
		deps.Courses = courses.NewMemoryRepository()
		deps.BlogPosts = blogposts.NewMemoryRepository()
		deps.Users = accounts.NewMemoryRepository()
	}

	deps.Cache = cache.NewMemory()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		if cfg.RedisURL != "" {
			logger.Info("redis connected (url)")
		} else {
			logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		}
		deps.Cache = redisCache
	}

	if cfg.JWTSecret != "" {
		deps.Manager = &auth.Manager{
			Secret:    []byte(cfg.JWTSecret),
			AccessTTL: time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			Issuer:    "tdc-backend",
		}
	} else {
		logger.Warn("JWT_SECRET not set; admin routes disabled")
	}

	if cfg.GCSBucket != "" {
		gcs, err := media.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPublicURL)
		if err != nil {
			logger.Error("gcs client failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer gcs.Close()
		logger.Info("uploads stored in gcs", slog.String("bucket", cfg.GCSBucket))
		deps.Media = gcs
	} else {
		disk, err := media.NewDiskStore(cfg.UploadDir, cfg.UploadPublicURL)
		if err != nil {
			logger.Error("upload dir failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("uploads stored on disk", slog.String("dir", cfg.UploadDir))
		deps.Media = disk
		deps.UploadDir = cfg.UploadDir
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Registry = reg

	app := server.New(deps)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		changed, err := app.Accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Error("admin bootstrap failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("admin account ready", slog.String("email", cfg.AdminEmail), slog.Bool("changed", changed))
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
