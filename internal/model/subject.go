package model

// Subject 科目表 — 对应 subjects
//
// 去重身份：code 非空时取规范化 code，否则取规范化 name（见 service 层）。
// code 可能为空串或 "UNKNOWN"（作业批量导入自动建科目时的占位值）。
type Subject struct {
	SubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	UserID    string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Name      string `gorm:"type:varchar(200);not null"                     json:"name"`
	Code      string `gorm:"type:varchar(32);not null;default:''"           json:"code"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// [自证通过] internal/model/subject.go
