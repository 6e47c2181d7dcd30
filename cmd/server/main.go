package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/config"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/handler"
	"github.com/slugblog/internal/logging"
	"github.com/slugblog/internal/router"
	"github.com/slugblog/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, nil)
	if err != nil {
		logrus.Fatalf("invalid log level %q: %v", cfg.LogLevel, err)
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	blog := service.NewBlog(db.DB, service.Options{
		Logger:         log,
		FeedCacheTTL:   cfg.FeedCacheTTL,
		CollapseChains: cfg.CollapseChains,
	})
	api := handler.NewAPI(db.DB, blog, log, handler.Settings{
		PageRoot:  cfg.PageRoot,
		FeedLimit: cfg.FeedLimit,
	})

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, log)
	log.WithFields(logrus.Fields{
		"addr":     cfg.ListenAddr,
		"db":       cfg.DatabasePath,
		"pageRoot": cfg.PageRoot,
	}).Info("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
