package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/WarunaSLFI/study-planner-saas/internal/model"
)

// SubjectRepository 科目数据访问接口
type SubjectRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Subject, error)
	GetByID(ctx context.Context, userID, subjectID string) (*model.Subject, error)
	Create(ctx context.Context, subject *model.Subject) error
	CreateMany(ctx context.Context, subjects []model.Subject) error
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, userID, subjectID string) error
	CountAssignments(ctx context.Context, userID string) (map[string]int, error)
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) ListByUser(ctx context.Context, userID string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) GetByID(ctx context.Context, userID, subjectID string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) CreateMany(ctx context.Context, subjects []model.Subject) error {
	if len(subjects) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&subjects).Error
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

func (r *subjectRepo) Delete(ctx context.Context, userID, subjectID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Delete(&model.Subject{}).Error
}

// CountAssignments 统计每个科目下的作业数，返回 subject_id -> count
func (r *subjectRepo) CountAssignments(ctx context.Context, userID string) (map[string]int, error) {
	type row struct {
		SubjectID string
		Cnt       int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Select("subject_id, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group("subject_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, rw := range rows {
		counts[rw.SubjectID] = rw.Cnt
	}
	return counts, nil
}
