package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/WarunaSLFI/study-planner-saas/internal/model"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Assignment, error)
	ListBySubject(ctx context.Context, userID, subjectID string) ([]model.Assignment, error)
	GetByID(ctx context.Context, userID, assignmentID string) (*model.Assignment, error)
	Create(ctx context.Context, assignment *model.Assignment) error
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, userID, assignmentID string) error
	// DeleteBySubject 删除某科目下全部作业，返回删除条数
	DeleteBySubject(ctx context.Context, userID, subjectID string) (int64, error)
	// BulkImport 在单个事务中写入导入批次：先建新科目，再建作业。
	// 任一写入失败则整体回滚，不产生半成品批次。
	BulkImport(ctx context.Context, subjects []model.Subject, assignments []model.Assignment) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) ListByUser(ctx context.Context, userID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("due_date ASC, title ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListBySubject(ctx context.Context, userID, subjectID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Order("due_date ASC, title ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) GetByID(ctx context.Context, userID, assignmentID string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, userID, assignmentID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) DeleteBySubject(ctx context.Context, userID, subjectID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Delete(&model.Assignment{})
	return result.RowsAffected, result.Error
}

func (r *assignmentRepo) BulkImport(ctx context.Context, subjects []model.Subject, assignments []model.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(subjects) > 0 {
			if err := tx.Create(&subjects).Error; err != nil {
				return err
			}
		}
		if len(assignments) > 0 {
			if err := tx.Create(&assignments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
