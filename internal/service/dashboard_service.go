package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/WarunaSLFI/study-planner-saas/config"
	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/repository"
)

// DashboardService 仪表盘业务接口
type DashboardService interface {
	// Overview 按状态分组的概览：计数、即将到期、已逾期、最近操作
	Overview(ctx context.Context, userID string) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	cfg     *config.Config
	repo    *repository.Repository
	imports ImportService
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(cfg *config.Config, repo *repository.Repository, imports ImportService, logger *zap.Logger) DashboardService {
	return &dashboardService{cfg: cfg, repo: repo, imports: imports, logger: logger, now: time.Now}
}

func (s *dashboardService) Overview(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}
	assignments, err := s.repo.Assignment.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询作业失败: %w", err)
	}

	lookup := subjectLookup(subjects)
	now := s.now()

	counts := map[string]int{
		StatusUpcoming:  0,
		StatusDueSoon:   0,
		StatusOverdue:   0,
		StatusCompleted: 0,
	}
	var dueSoon, overdue []dto.AssignmentResponse

	for _, a := range assignments {
		name, code := unknownSubjectName, ""
		if sub, ok := lookup[a.SubjectID]; ok {
			name, code = sub.Name, sub.Code
		}
		status := ComputeStatusWindow(a.DueDate, a.IsCompleted, now, s.cfg.Planner.DueSoonDays)
		counts[status]++

		resp := dto.AssignmentResponse{
			AssignmentID: a.AssignmentID,
			SubjectID:    a.SubjectID,
			SubjectName:  name,
			SubjectCode:  code,
			Title:        a.Title,
			DueDate:      a.DueDate,
			IsCompleted:  a.IsCompleted,
			Status:       status,
		}
		switch status {
		case StatusDueSoon:
			dueSoon = append(dueSoon, resp)
		case StatusOverdue:
			overdue = append(overdue, resp)
		}
	}

	sortByDueDate(dueSoon)
	sortByDueDate(overdue)

	activity, err := s.imports.RecentActivity(ctx, userID)
	if err != nil {
		// 操作记录查询失败不影响概览主体
		s.logger.Warn("操作记录查询失败", zap.Error(err))
		activity = nil
	}

	return &dto.DashboardResponse{
		TotalSubjects:    len(subjects),
		TotalAssignments: len(assignments),
		StatusCounts:     counts,
		DueSoon:          dueSoon,
		Overdue:          overdue,
		RecentActivity:   activity,
	}, nil
}

func sortByDueDate(items []dto.AssignmentResponse) {
	sort.SliceStable(items, func(i, j int) bool {
		return DueDateSortKey(items[i].DueDate) < DueDateSortKey(items[j].DueDate)
	})
}
