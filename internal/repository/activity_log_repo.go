package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/WarunaSLFI/study-planner-saas/internal/model"
)

// ActivityLogRepository 操作记录数据访问接口
type ActivityLogRepository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error)
	// Append 追加一条记录，并把该用户的记录裁剪到 cap 条以内
	Append(ctx context.Context, entry *model.ActivityLog, cap int) error
}

type activityLogRepo struct {
	db *gorm.DB
}

// NewActivityLogRepo 创建 ActivityLogRepository 实例
func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	var logs []model.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *activityLogRepo) Append(ctx context.Context, entry *model.ActivityLog, cap int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		// 保留最近 cap 条，删除更早的记录
		sub := tx.Model(&model.ActivityLog{}).
			Select("activity_log_id").
			Where("user_id = ?", entry.UserID).
			Order("created_at DESC").
			Limit(cap)
		return tx.
			Where("user_id = ? AND activity_log_id NOT IN (?)", entry.UserID, sub).
			Delete(&model.ActivityLog{}).Error
	})
}
