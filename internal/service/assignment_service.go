package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WarunaSLFI/study-planner-saas/config"
	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/model"
	"github.com/WarunaSLFI/study-planner-saas/internal/repository"
)

// ── 作业模块业务错误 ──

var (
	ErrAssignmentNotFound        = errors.New("作业不存在")
	ErrAssignmentSubjectNotFound = errors.New("作业关联的科目不存在")
	ErrAssignmentInvalidDueDate  = errors.New("截止日期格式无效")
)

// AssignmentService 作业模块业务接口
type AssignmentService interface {
	// List 作业列表（可按科目 / 展示状态筛选，状态读取时现算）
	List(ctx context.Context, userID string, query *dto.ListAssignmentsQuery) ([]dto.AssignmentResponse, error)
	// Create 新建作业（校验科目归属）
	Create(ctx context.Context, userID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	// Update 更新作业
	Update(ctx context.Context, userID, assignmentID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error)
	// Complete 切换完成状态
	Complete(ctx context.Context, userID, assignmentID string, completed bool) (*dto.AssignmentResponse, error)
	// Delete 删除作业
	Delete(ctx context.Context, userID, assignmentID string) error
}

type assignmentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *assignmentService) List(ctx context.Context, userID string, query *dto.ListAssignmentsQuery) ([]dto.AssignmentResponse, error) {
	var assignments []model.Assignment
	var err error
	if query != nil && query.SubjectID != "" {
		assignments, err = s.repo.Assignment.ListBySubject(ctx, userID, query.SubjectID)
	} else {
		assignments, err = s.repo.Assignment.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("查询作业失败: %w", err)
	}

	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}
	lookup := subjectLookup(subjects)

	now := s.now()
	out := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp := s.toResponse(&a, lookup, now)
		if query != nil && query.Status != "" && resp.Status != query.Status {
			continue
		}
		out = append(out, resp)
	}

	// 无截止日期的作业排在所有有日期的之后
	sort.SliceStable(out, func(i, j int) bool {
		return DueDateSortKey(out[i].DueDate) < DueDateSortKey(out[j].DueDate)
	})
	return out, nil
}

func (s *assignmentService) Create(ctx context.Context, userID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	if _, err := s.repo.Subject.GetByID(ctx, userID, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentSubjectNotFound
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}

	assignment := &model.Assignment{
		AssignmentID: uuid.NewString(),
		UserID:       userID,
		SubjectID:    req.SubjectID,
		Title:        req.Title,
		DueDate:      req.DueDate,
		IsCompleted:  false,
	}
	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("作业创建失败", zap.Error(err))
		return nil, fmt.Errorf("作业创建失败: %w", err)
	}
	return s.respond(ctx, userID, assignment)
}

func (s *assignmentService) Update(ctx context.Context, userID, assignmentID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	assignment, err := s.getOwned(ctx, userID, assignmentID)
	if err != nil {
		return nil, err
	}

	if req.SubjectID != nil {
		if _, err := s.repo.Subject.GetByID(ctx, userID, *req.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssignmentSubjectNotFound
			}
			return nil, fmt.Errorf("查询科目失败: %w", err)
		}
		assignment.SubjectID = *req.SubjectID
	}
	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.DueDate != nil {
		due := *req.DueDate
		if due != "" {
			if _, err := time.Parse("2006-01-02", due); err != nil {
				return nil, ErrAssignmentInvalidDueDate
			}
		}
		assignment.DueDate = due
	}
	if req.IsCompleted != nil {
		assignment.IsCompleted = *req.IsCompleted
	}

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("作业更新失败", zap.Error(err), zap.String("assignment_id", assignmentID))
		return nil, fmt.Errorf("作业更新失败: %w", err)
	}
	return s.respond(ctx, userID, assignment)
}

func (s *assignmentService) Complete(ctx context.Context, userID, assignmentID string, completed bool) (*dto.AssignmentResponse, error) {
	assignment, err := s.getOwned(ctx, userID, assignmentID)
	if err != nil {
		return nil, err
	}
	assignment.IsCompleted = completed
	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("作业完成标记失败", zap.Error(err), zap.String("assignment_id", assignmentID))
		return nil, fmt.Errorf("作业更新失败: %w", err)
	}
	return s.respond(ctx, userID, assignment)
}

func (s *assignmentService) Delete(ctx context.Context, userID, assignmentID string) error {
	if _, err := s.getOwned(ctx, userID, assignmentID); err != nil {
		return err
	}
	if err := s.repo.Assignment.Delete(ctx, userID, assignmentID); err != nil {
		s.logger.Error("作业删除失败", zap.Error(err), zap.String("assignment_id", assignmentID))
		return fmt.Errorf("作业删除失败: %w", err)
	}
	return nil
}

func (s *assignmentService) getOwned(ctx context.Context, userID, assignmentID string) (*model.Assignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, userID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("查询作业失败: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) respond(ctx context.Context, userID string, assignment *model.Assignment) (*dto.AssignmentResponse, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}
	resp := s.toResponse(assignment, subjectLookup(subjects), s.now())
	return &resp, nil
}

// toResponse 科目引用失效时显示 "Unknown Subject"，不报错
func (s *assignmentService) toResponse(a *model.Assignment, lookup map[string]model.Subject, now time.Time) dto.AssignmentResponse {
	name, code := unknownSubjectName, ""
	if sub, ok := lookup[a.SubjectID]; ok {
		name, code = sub.Name, sub.Code
	}
	return dto.AssignmentResponse{
		AssignmentID: a.AssignmentID,
		SubjectID:    a.SubjectID,
		SubjectName:  name,
		SubjectCode:  code,
		Title:        a.Title,
		DueDate:      a.DueDate,
		IsCompleted:  a.IsCompleted,
		Status:       ComputeStatusWindow(a.DueDate, a.IsCompleted, now, s.cfg.Planner.DueSoonDays),
	}
}

func subjectLookup(subjects []model.Subject) map[string]model.Subject {
	lookup := make(map[string]model.Subject, len(subjects))
	for _, sub := range subjects {
		lookup[sub.SubjectID] = sub
	}
	return lookup
}
