package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillswap_server/internal/config"
	dao "skillswap_server/internal/dao/mysql"
	myredis "skillswap_server/internal/dao/redis"
	"skillswap_server/internal/gateway/websocket"
	"skillswap_server/internal/handler"
	"skillswap_server/internal/https_server"
	"skillswap_server/internal/infrastructure/logger"
	"skillswap_server/internal/infrastructure/mq"
	"skillswap_server/internal/service"
	"skillswap_server/pkg/util/jwt"
	"skillswap_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空时按默认路径查找")
	mintFor := flag.String("mint-token", "", "dev 模式下为指定用户签发 Access Token 并退出")
	flag.Parse()

	// 1. 加载配置
	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if *mintFor != "" {
		if conf.MainConfig.Mode != "dev" {
			log.Fatalf("-mint-token only available in dev mode")
		}
		jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
		token, err := jwt.GenerateAccessToken(*mintFor)
		if err != nil {
			log.Fatalf("mint token failed: %v", err)
		}
		fmt.Println(token)
		return
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos, _, err := dao.Init(conf)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	cache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化工具组件
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("参数校验翻译器初始化失败", zap.Error(err))
	}

	// 6. 通知发布
	if conf.KafkaConfig.MessageMode == "kafka" {
		if err := mq.CreateTopic(&conf.KafkaConfig); err != nil {
			// topic 可能已由运维创建
			zap.L().Warn("创建 Kafka topic 失败", zap.Error(err))
		}
	}
	notifier := mq.NewNotifier(&conf.KafkaConfig)

	// 7. 实时推送 Hub 与 Service 层 (依赖注入)
	hub := websocket.NewSessionHub()
	svc := service.NewServices(service.Deps{
		Repos:       repos,
		Cache:       cache,
		Notifier:    notifier,
		Broadcaster: hub,
	})
	hub.SetPoster(svc.Session)
	go hub.Start()
	zap.L().Info("Service 层初始化成功")

	// 8. 初始化 HTTP 服务器
	engine := https_server.Init(&conf.MainConfig, handler.NewHandlers(svc, hub))
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	hub.Close()
	if err := notifier.Close(); err != nil {
		zap.L().Error("close notifier", zap.Error(err))
	}
	if err := cache.Close(); err != nil {
		zap.L().Error("close redis", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.GetConfig(), nil
	}
	return config.Load(path)
}
