package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/model"
	"github.com/WarunaSLFI/study-planner-saas/internal/repository"
)

// ── 科目模块业务错误 ──

var (
	ErrSubjectNotFound      = errors.New("科目不存在")
	ErrSubjectDuplicateCode = errors.New("科目代码已存在")
)

// SubjectService 科目模块业务接口
type SubjectService interface {
	// List 当前用户的全部科目（含作业数，query 非空时按名称/代码模糊过滤）
	List(ctx context.Context, userID, query string) ([]dto.SubjectResponse, error)
	// Create 新建科目（非空代码查重）
	Create(ctx context.Context, userID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	// Update 更新科目
	Update(ctx context.Context, userID, subjectID string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	// Delete 删除科目并级联删除其作业，返回删除的作业数
	Delete(ctx context.Context, userID, subjectID string) (*dto.DeleteSubjectResponse, error)
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

func (s *subjectService) List(ctx context.Context, userID, query string) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}
	counts, err := s.repo.Subject.CountAssignments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("统计作业数失败: %w", err)
	}

	needle := NormalizeName(query)
	out := make([]dto.SubjectResponse, 0, len(subjects))
	for _, sub := range subjects {
		if needle != "" &&
			!strings.Contains(NormalizeName(sub.Name), needle) &&
			!strings.Contains(NormalizeCode(sub.Code), NormalizeCode(query)) {
			continue
		}
		out = append(out, dto.SubjectResponse{
			SubjectID:       sub.SubjectID,
			Name:            sub.Name,
			Code:            sub.Code,
			AssignmentCount: counts[sub.SubjectID],
		})
	}
	return out, nil
}

func (s *subjectService) Create(ctx context.Context, userID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	code := NormalizeCode(req.Code)
	if code != "" {
		if err := s.checkCodeFree(ctx, userID, code, ""); err != nil {
			return nil, err
		}
	}

	subject := &model.Subject{
		SubjectID: uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Code:      code,
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("科目创建失败", zap.Error(err))
		return nil, fmt.Errorf("科目创建失败: %w", err)
	}

	return &dto.SubjectResponse{
		SubjectID: subject.SubjectID,
		Name:      subject.Name,
		Code:      subject.Code,
	}, nil
}

func (s *subjectService) Update(ctx context.Context, userID, subjectID string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, userID, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Code != nil {
		code := NormalizeCode(*req.Code)
		if code != "" && code != subject.Code {
			if err := s.checkCodeFree(ctx, userID, code, subjectID); err != nil {
				return nil, err
			}
		}
		subject.Code = code
	}

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		s.logger.Error("科目更新失败", zap.Error(err), zap.String("subject_id", subjectID))
		return nil, fmt.Errorf("科目更新失败: %w", err)
	}

	return &dto.SubjectResponse{
		SubjectID: subject.SubjectID,
		Name:      subject.Name,
		Code:      subject.Code,
	}, nil
}

func (s *subjectService) Delete(ctx context.Context, userID, subjectID string) (*dto.DeleteSubjectResponse, error) {
	if _, err := s.repo.Subject.GetByID(ctx, userID, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}

	removed, err := s.repo.Assignment.DeleteBySubject(ctx, userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("删除科目作业失败: %w", err)
	}
	if err := s.repo.Subject.Delete(ctx, userID, subjectID); err != nil {
		s.logger.Error("科目删除失败", zap.Error(err), zap.String("subject_id", subjectID))
		return nil, fmt.Errorf("科目删除失败: %w", err)
	}

	return &dto.DeleteSubjectResponse{
		SubjectID:          subjectID,
		AssignmentsRemoved: removed,
	}, nil
}

// checkCodeFree 代码查重（excludeID 用于更新时排除自身）
func (s *subjectService) checkCodeFree(ctx context.Context, userID, code, excludeID string) error {
	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("查询科目失败: %w", err)
	}
	for _, sub := range subjects {
		if sub.SubjectID != excludeID && NormalizeCode(sub.Code) == code {
			return ErrSubjectDuplicateCode
		}
	}
	return nil
}
