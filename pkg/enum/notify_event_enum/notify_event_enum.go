// Package notify_event_enum 定义通知触发器的事件类型
package notify_event_enum

// Kind 通知事件类型
type Kind string

const (
	BookingApproved Kind = "BookingApproved" // 导师批准预约
	SessionReminder Kind = "SessionReminder" // 会话即将开始提醒
)
