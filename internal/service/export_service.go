package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/WarunaSLFI/study-planner-saas/config"
	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/repository"
)

// 导出文件格式版本
const exportVersion = 1

// ExportService 数据导出业务接口
type ExportService interface {
	// ExportJSON 全量导出为 JSON 结构（科目 + 作业，以名称/代码关联）
	ExportJSON(ctx context.Context, userID string) (*dto.ExportResponse, error)
	// ExportAssignmentsXLSX 作业清单导出为 Excel，返回文件内容与文件名
	ExportAssignmentsXLSX(ctx context.Context, userID string) ([]byte, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *exportService) ExportJSON(ctx context.Context, userID string) (*dto.ExportResponse, error) {
	subjects, assignments, err := s.loadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.ExportResponse{
		Version:     exportVersion,
		ExportedAt:  s.now().Format(time.RFC3339),
		Subjects:    subjects,
		Assignments: assignments,
	}, nil
}

func (s *exportService) ExportAssignmentsXLSX(ctx context.Context, userID string) ([]byte, string, error) {
	_, assignments, err := s.loadAll(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Assignments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Title", "Subject", "Code", "Due Date", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	now := s.now()
	for rowIdx, a := range assignments {
		status := ComputeStatusWindow(a.DueDate, a.IsCompleted, now, s.cfg.Planner.DueSoonDays)
		values := []interface{}{a.Title, a.SubjectName, a.SubjectCode, a.DueDate, status}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("Excel 导出写入失败", zap.Error(err))
		return nil, "", fmt.Errorf("Excel 导出失败: %w", err)
	}

	filename := fmt.Sprintf("assignments_%s.xlsx", s.now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// loadAll 读取用户全量数据，作业按截止日期排序并展开科目名
func (s *exportService) loadAll(ctx context.Context, userID string) ([]dto.ExportSubject, []dto.ExportAssignment, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("查询科目失败: %w", err)
	}
	assignments, err := s.repo.Assignment.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("查询作业失败: %w", err)
	}

	lookup := subjectLookup(subjects)
	subs := make([]dto.ExportSubject, 0, len(subjects))
	for _, sub := range subjects {
		subs = append(subs, dto.ExportSubject{Name: sub.Name, Code: sub.Code})
	}

	rows := make([]dto.ExportAssignment, 0, len(assignments))
	for _, a := range assignments {
		name, code := unknownSubjectName, ""
		if sub, ok := lookup[a.SubjectID]; ok {
			name, code = sub.Name, sub.Code
		}
		rows = append(rows, dto.ExportAssignment{
			Title:       a.Title,
			SubjectName: name,
			SubjectCode: code,
			DueDate:     a.DueDate,
			IsCompleted: a.IsCompleted,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return DueDateSortKey(rows[i].DueDate) < DueDateSortKey(rows[j].DueDate)
	})
	return subs, rows, nil
}
