// Package redis 提供 Redis 缓存操作的封装
// 本文件仅包含 Redis 连接初始化逻辑
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"skillswap_server/internal/config"
	"skillswap_server/pkg/constants"

	"github.com/go-redis/redis/v8"
)

// Init 初始化 Redis 连接并返回缓存服务
// 从配置文件读取连接参数，启动缓存任务 Worker Pool
func Init(conf *config.RedisConfig) (*RedisCache, error) {
	addr := conf.Host + ":" + strconv.Itoa(conf.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.Password, // 无密码留空
		DB:       conf.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: constants.CACHE_WORKER_NUM,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return NewRedisCache(client, constants.CACHE_WORKER_NUM, constants.CACHE_TASK_BUF_SIZE), nil
}
