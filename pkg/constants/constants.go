package constants

import "time"

const (
	CHANNEL_SIZE        = 100              // 通道大小
	REVIEW_LIST_PREFIX  = "review_list_"   // 用户收到的评价列表缓存 key 前缀
	REVIEW_LIST_TTL     = 10 * time.Minute // 评价列表缓存有效期
	REMINDER_LOCK_KEY   = "reminder_scan_lock"
	MESSAGE_MAX_LENGTH  = 4000 // 单条会话消息最大长度（字符）
	REVIEW_MIN_RATING   = 1
	REVIEW_MAX_RATING   = 5
	CACHE_WORKER_NUM    = 15   // 缓存 Worker 数量
	CACHE_TASK_BUF_SIZE = 3000 // 缓存任务缓冲区大小
)
