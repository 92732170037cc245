// Package session_status_enum 定义学习会话的状态
package session_status_enum

const (
	PENDING   = "PENDING"   // 待导师审批（初始状态）
	APPROVED  = "APPROVED"  // 已批准
	REJECTED  = "REJECTED"  // 已拒绝
	COMPLETED = "COMPLETED" // 已完成，可互评
	CANCELLED = "CANCELLED" // 已取消
)

// IsValid 判断是否为合法状态
func IsValid(status string) bool {
	switch status {
	case PENDING, APPROVED, REJECTED, COMPLETED, CANCELLED:
		return true
	}
	return false
}
