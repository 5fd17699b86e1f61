package service

import "time"

// 作业展示状态（现算，不落库）
const (
	StatusUpcoming  = "Upcoming"
	StatusDueSoon   = "Due Soon"
	StatusOverdue   = "Overdue"
	StatusCompleted = "Completed"
)

// defaultDueSoonDays 默认"即将到期"窗口（天）
const defaultDueSoonDays = 3

// 无截止日期的排序哨兵：排在所有有日期的作业之后
const noDueDateSortKey = "9999-12-31"

// ComputeStatus 根据截止日期与完成标记计算展示状态（默认 3 天窗口）
func ComputeStatus(dueDate string, isCompleted bool, now time.Time) string {
	return ComputeStatusWindow(dueDate, isCompleted, now, defaultDueSoonDays)
}

// ComputeStatusWindow 状态分类器
//
// 规则（按日历日比较，忽略时分秒）：
//   - 已完成 → Completed（无条件，截止日期无关）
//   - 截止日 < 今天        → Overdue
//   - 截止日 ≤ 今天+窗口天数 → Due Soon
//   - 其余                  → Upcoming
//
// 截止日期为空或无法解析时按"远期"处理，返回 Upcoming。
// 纯函数，任何输入都不会 panic。
func ComputeStatusWindow(dueDate string, isCompleted bool, now time.Time, dueSoonDays int) string {
	if isCompleted {
		return StatusCompleted
	}
	if dueDate == "" {
		return StatusUpcoming
	}

	// 按本地日历日构造，避免 UTC 解析在午夜附近差一天
	parsed, err := time.ParseInLocation("2006-01-02", dueDate, now.Location())
	if err != nil {
		return StatusUpcoming
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, now.Location())

	if due.Before(today) {
		return StatusOverdue
	}
	if !due.After(today.AddDate(0, 0, dueSoonDays)) {
		return StatusDueSoon
	}
	return StatusUpcoming
}

// DueDateSortKey 截止日期排序键：空日期排在所有有日期的条目之后
func DueDateSortKey(dueDate string) string {
	if dueDate == "" {
		return noDueDateSortKey
	}
	return dueDate
}
