package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"skillswap_server/internal/config"
	dao "skillswap_server/internal/dao/mysql"
	myredis "skillswap_server/internal/dao/redis"
	"skillswap_server/internal/infrastructure/logger"
	"skillswap_server/internal/infrastructure/mq"
	"skillswap_server/internal/job/reminder"
	"skillswap_server/internal/service"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空时按默认路径查找")
	once := flag.Bool("once", false, "只扫描一次后退出，适合外部 cron 调度")
	flag.Parse()

	var (
		conf *config.Config
		err  error
	)
	if *configPath == "" {
		conf = config.GetConfig()
	} else if conf, err = config.Load(*configPath); err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	repos, _, err := dao.Init(conf)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	cache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	defer func() { _ = cache.Close() }()

	notifier := mq.NewNotifier(&conf.KafkaConfig)
	defer func() { _ = notifier.Close() }()

	// 扫描进程不推送实时消息，Broadcaster 留空
	svc := service.NewServices(service.Deps{
		Repos:    repos,
		Cache:    cache,
		Notifier: notifier,
	})

	scanner := reminder.NewScanner(repos.Session, notifier, cache, svc.Review, reminder.OptionsFromConfig(&conf.ReminderConfig))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		n, err := scanner.ScanOnce(ctx)
		if err != nil {
			zap.L().Error("reminder scan failed", zap.Error(err))
			return
		}
		zap.L().Info("reminder scan finished", zap.Int("notified", n))
		return
	}

	zap.L().Info("reminder scanner started", zap.Any("options", reminder.OptionsFromConfig(&conf.ReminderConfig)))
	if err := scanner.Run(ctx); err != nil && ctx.Err() == nil {
		zap.L().Error("reminder scanner stopped", zap.Error(err))
	}
	zap.L().Info("reminder scanner exited")
}
