// Command ml-pipeline-server 通过 HTTP 触发流水线运行并查询运行记录
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashwinyue/ml-pipeline/internal/config"
	"github.com/ashwinyue/ml-pipeline/internal/database"
	"github.com/ashwinyue/ml-pipeline/internal/handler"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/logger"
	"github.com/ashwinyue/ml-pipeline/internal/repository"
	"github.com/ashwinyue/ml-pipeline/internal/router"
	"github.com/ashwinyue/ml-pipeline/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			configPath = ""
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.DisableTimestamp)

	// 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化运行记录存储
	repos := repository.NewMemoryRepositories()
	if cfg.Database.Enabled {
		db, err := database.New(cfg, log)
		if err != nil {
			log.Fatalf("Failed to init database: %v", err)
		}
		defer db.Close()
		repos = repository.NewRepositories(db.DB)
		log.Infof("Database connected: %s", cfg.Database.DBName)
	}

	// 初始化 Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect redis: %v", err)
		}
	}

	// 初始化各层
	services, err := service.NewServices(context.Background(), cfg, repos, redisClient, log)
	if err != nil {
		log.Fatalf("Failed to init services: %v", err)
	}
	defer services.Close()
	handlers := handler.NewHandlers(services.Pipeline)

	// 初始化路由
	r := router.SetupRouter(handlers, log)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 启动服务器
	go func() {
		log.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return
	}

	log.Info("Server exited")
}
