package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contactbook/internal/config"
	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/handler"
	"github.com/contactbook/internal/logger"
	"github.com/contactbook/internal/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 2. 初始化日志
	zl, err := logger.Init(cfg.Log, cfg.GinMode)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zl.Sync()

	// 3. 初始化数据库
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
		Silent: cfg.GinMode == gin.ReleaseMode,
	}); err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	zl.Info("database ready", zap.String("driver", cfg.DatabaseDriver))

	// 4. 设置路由
	api := handler.NewAPI(db.DB, handler.Options{
		SheetLanguage:  cfg.SheetLanguage,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         zl,
	})
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router.SetupRouter(api),
	}

	go func() {
		zl.Info("server listening", zap.String("addr", cfg.ListenAddr), zap.String("sheetLanguage", cfg.SheetLanguage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	zl.Info("server stopped")
}
