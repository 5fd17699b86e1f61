package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WarunaSLFI/study-planner-saas/config"
	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/model"
	"github.com/WarunaSLFI/study-planner-saas/internal/repository"
)

// ── 导入模块业务错误 ──

var (
	ErrImportTextTooLarge     = errors.New("粘贴文本超出大小限制")
	ErrImportNothingParsed    = errors.New("未能从文本中解析出任何条目")
	ErrImportSessionNotFound  = errors.New("导入会话不存在或已过期")
	ErrImportSessionKind      = errors.New("导入会话类型不匹配")
	ErrImportUnresolvedReview = errors.New("存在未裁决的冲突行，无法提交")
	ErrImportInvalidChoice    = errors.New("无效的冲突裁决选项")
	ErrImportICSParseFailed   = errors.New("ICS 文件解析失败")
	ErrImportICSFetchFailed   = errors.New("ICS 订阅地址拉取失败")
)

// 作业批量导入的共享兜底科目
const unknownSubjectName = "Unknown Subject"
const unknownSubjectCode = "UNKNOWN"

// 无截止日期作业的去重键哨兵
const dedupNoDate = "nodate"

// 裁决选项：new / existing:<subject_id> / skip
const (
	choiceNew            = "new"
	choiceSkip           = "skip"
	choiceExistingPrefix = "existing:"
)

// ── ImportService 接口 ──────────────────────────────────────
//
// 设计说明：
//   - 解析与提交分两步：Parse* 把预览行连同审核候选写入会话
//     （Redis，降级进程内存），Commit* 按裁决结果落库后销毁会话。
//   - 对账本身是纯函数；唯一的副作用是最终提交，作业批次在
//     单个事务中写入，失败整体回滚。
//   - 每次提交追加一条操作记录，按配置裁剪到最近 N 条。
// ─────────────────────────────────────────────────────────────

// ImportService 导入模块业务接口
type ImportService interface {
	// ParseSubjects 解析科目文本，返回带审核候选的预览
	ParseSubjects(ctx context.Context, userID, text string) (*dto.ParsePreviewResponse, error)
	// CommitSubjects 按裁决结果提交科目导入
	CommitSubjects(ctx context.Context, userID string, req *dto.CommitSubjectsRequest) (*dto.ImportSummaryResponse, error)
	// ParseAssignments 解析作业文本，返回预览
	ParseAssignments(ctx context.Context, userID, text string) (*dto.ParsePreviewResponse, error)
	// ParseAssignmentsICS 从 ICS 日历文件解析作业，返回预览
	ParseAssignmentsICS(ctx context.Context, userID string, reader io.Reader) (*dto.ParsePreviewResponse, error)
	// ParseAssignmentsICSURL 拉取 ICS 订阅地址后解析作业，返回预览
	ParseAssignmentsICSURL(ctx context.Context, userID, rawURL string) (*dto.ParsePreviewResponse, error)
	// CommitAssignments 提交作业导入（按需自动建科目，去重后单事务写入）
	CommitAssignments(ctx context.Context, userID string, req *dto.CommitAssignmentsRequest) (*dto.ImportSummaryResponse, error)
	// RecentActivity 最近的导入操作记录
	RecentActivity(ctx context.Context, userID string) ([]dto.ActivityLogResponse, error)
}

type importService struct {
	cfg        *config.Config
	repo       *repository.Repository
	sessions   sessionStore
	logger     *zap.Logger
	now        func() time.Time
	httpClient *http.Client
}

// NewImportService 创建 ImportService 实例（rdb 为 nil 时会话降级为进程内存储）
func NewImportService(cfg *config.Config, repo *repository.Repository, store sessionStore, logger *zap.Logger) ImportService {
	return &importService{
		cfg:        cfg,
		repo:       repo,
		sessions:   store,
		logger:     logger,
		now:        time.Now,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ════════════════════════════════════════════════════════════
// 科目导入
// ════════════════════════════════════════════════════════════

func (s *importService) ParseSubjects(ctx context.Context, userID, text string) (*dto.ParsePreviewResponse, error) {
	if len(text) > s.cfg.Planner.MaxImportBytes {
		return nil, ErrImportTextTooLarge
	}

	rows := ParseSubjectsFromText(text)
	if len(rows) == 0 {
		return nil, ErrImportNothingParsed
	}

	existing, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询已有科目失败: %w", err)
	}

	session := &ImportSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Kind:      SessionKindSubjects,
		CreatedAt: s.now(),
	}

	preview := make([]dto.ParsedSubjectRow, 0, len(rows))
	needsReview := false
	for _, row := range rows {
		candidates := FindReviewCandidates(row.Name, row.Code, existing)
		allowNew := AllowCreateNew(candidates)
		sessionRow := SubjectSessionRow{
			RowID:          uuid.NewString(),
			Name:           row.Name,
			Code:           row.Code,
			Candidates:     candidates,
			AllowCreateNew: allowNew,
		}
		session.Subjects = append(session.Subjects, sessionRow)
		if len(candidates) > 0 {
			needsReview = true
		}
		preview = append(preview, dto.ParsedSubjectRow{
			RowID:            sessionRow.RowID,
			Name:             row.Name,
			Code:             row.Code,
			ReviewCandidates: candidates,
			AllowCreateNew:   allowNew,
		})
	}

	if err := s.sessions.Save(ctx, session, s.cfg.Planner.ImportSessionTTL); err != nil {
		s.logger.Error("导入会话写入失败", zap.Error(err))
		return nil, fmt.Errorf("导入会话写入失败: %w", err)
	}

	return &dto.ParsePreviewResponse{
		SessionID:      session.SessionID,
		Subjects:       preview,
		NeedsReview:    needsReview,
		ExpiresSeconds: int(s.cfg.Planner.ImportSessionTTL.Seconds()),
	}, nil
}

func (s *importService) CommitSubjects(ctx context.Context, userID string, req *dto.CommitSubjectsRequest) (*dto.ImportSummaryResponse, error) {
	session, err := s.loadSession(ctx, userID, req.SessionID, SessionKindSubjects)
	if err != nil {
		return nil, err
	}

	resolutions := make(map[string]string, len(req.Resolutions))
	for _, r := range req.Resolutions {
		resolutions[r.RowID] = r.Choice
	}

	existing, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询已有科目失败: %w", err)
	}

	// 已占用的规范化代码工作集：同一批粘贴内的重复也会被拦截
	usedCodes := make(map[string]struct{}, len(existing))
	for _, sub := range existing {
		if code := NormalizeCode(sub.Code); code != "" {
			usedCodes[code] = struct{}{}
		}
	}

	var toInsert []model.Subject
	added, skipped := 0, 0

	for _, row := range session.Subjects {
		choice, resolved := resolutions[row.RowID]

		// 有冲突候选的行必须先裁决
		if len(row.Candidates) > 0 && !resolved {
			return nil, ErrImportUnresolvedReview
		}

		if resolved {
			switch {
			case choice == choiceSkip:
				skipped++
				continue
			case strings.HasPrefix(choice, choiceExistingPrefix):
				// 合并到已有科目：不新建，计入跳过
				skipped++
				continue
			case choice == choiceNew:
				if !row.AllowCreateNew {
					return nil, ErrImportInvalidChoice
				}
			default:
				return nil, ErrImportInvalidChoice
			}
		}

		code := NormalizeCode(row.Code)
		if code != "" {
			if _, dup := usedCodes[code]; dup {
				skipped++
				continue
			}
			usedCodes[code] = struct{}{}
		}
		toInsert = append(toInsert, model.Subject{
			SubjectID: uuid.NewString(),
			UserID:    userID,
			Name:      row.Name,
			Code:      code,
		})
		added++
	}

	if err := s.repo.Subject.CreateMany(ctx, toInsert); err != nil {
		s.logger.Error("科目批量写入失败", zap.Error(err), zap.Int("count", len(toInsert)))
		return nil, fmt.Errorf("科目批量写入失败: %w", err)
	}

	s.appendActivity(ctx, userID, model.ActivityImportSubjects,
		fmt.Sprintf("Imported %d subjects, skipped %d", added, skipped), added, skipped)

	if err := s.sessions.Delete(ctx, userID, session.SessionID); err != nil {
		s.logger.Warn("导入会话清理失败", zap.Error(err), zap.String("session_id", session.SessionID))
	}

	return &dto.ImportSummaryResponse{AddedCount: added, SkippedCount: skipped}, nil
}

// ════════════════════════════════════════════════════════════
// 作业导入
// ════════════════════════════════════════════════════════════

func (s *importService) ParseAssignments(ctx context.Context, userID, text string) (*dto.ParsePreviewResponse, error) {
	if len(text) > s.cfg.Planner.MaxImportBytes {
		return nil, ErrImportTextTooLarge
	}
	rows := ParseAssignmentsFromText(text)
	if len(rows) == 0 {
		return nil, ErrImportNothingParsed
	}
	return s.saveAssignmentPreview(ctx, userID, rows)
}

func (s *importService) ParseAssignmentsICS(ctx context.Context, userID string, reader io.Reader) (*dto.ParsePreviewResponse, error) {
	rows, err := ParseAssignmentsICSFile(reader)
	if err != nil {
		s.logger.Error("ICS 解析失败", zap.Error(err))
		return nil, ErrImportICSParseFailed
	}
	if len(rows) == 0 {
		return nil, ErrImportNothingParsed
	}
	return s.saveAssignmentPreview(ctx, userID, rows)
}

func (s *importService) ParseAssignmentsICSURL(ctx context.Context, userID, rawURL string) (*dto.ParsePreviewResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, ErrImportICSFetchFailed
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("ICS 订阅拉取失败", zap.Error(err), zap.String("url", rawURL))
		return nil, ErrImportICSFetchFailed
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("ICS 订阅返回异常状态", zap.Int("status", resp.StatusCode), zap.String("url", rawURL))
		return nil, ErrImportICSFetchFailed
	}
	body := io.LimitReader(resp.Body, int64(s.cfg.Planner.MaxImportBytes))
	return s.ParseAssignmentsICS(ctx, userID, body)
}

func (s *importService) saveAssignmentPreview(ctx context.Context, userID string, rows []ParsedAssignmentRow) (*dto.ParsePreviewResponse, error) {
	session := &ImportSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Kind:      SessionKindAssignments,
		CreatedAt: s.now(),
	}

	preview := make([]dto.ParsedAssignmentRow, 0, len(rows))
	for _, row := range rows {
		sessionRow := AssignmentSessionRow{
			RowID:       uuid.NewString(),
			Title:       row.Title,
			SubjectCode: row.SubjectCode,
			SubjectName: row.SubjectName,
			DueDate:     row.DueDate,
		}
		session.Assignments = append(session.Assignments, sessionRow)
		preview = append(preview, dto.ParsedAssignmentRow{
			RowID:       sessionRow.RowID,
			Title:       row.Title,
			SubjectCode: row.SubjectCode,
			SubjectName: row.SubjectName,
			DueDate:     row.DueDate,
		})
	}

	if err := s.sessions.Save(ctx, session, s.cfg.Planner.ImportSessionTTL); err != nil {
		s.logger.Error("导入会话写入失败", zap.Error(err))
		return nil, fmt.Errorf("导入会话写入失败: %w", err)
	}

	return &dto.ParsePreviewResponse{
		SessionID:      session.SessionID,
		Assignments:    preview,
		ExpiresSeconds: int(s.cfg.Planner.ImportSessionTTL.Seconds()),
	}, nil
}

func (s *importService) CommitAssignments(ctx context.Context, userID string, req *dto.CommitAssignmentsRequest) (*dto.ImportSummaryResponse, error) {
	session, err := s.loadSession(ctx, userID, req.SessionID, SessionKindAssignments)
	if err != nil {
		return nil, err
	}

	rows := session.Assignments
	if len(req.IncludeRowIDs) > 0 {
		include := make(map[string]struct{}, len(req.IncludeRowIDs))
		for _, id := range req.IncludeRowIDs {
			include[id] = struct{}{}
		}
		filtered := rows[:0]
		for _, row := range rows {
			if _, ok := include[row.RowID]; ok {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询已有科目失败: %w", err)
	}
	existing, err := s.repo.Assignment.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询已有作业失败: %w", err)
	}

	// 已存在的作业去重键集合
	usedKeys := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		usedKeys[assignmentDedupKey(a.SubjectID, a.Title, a.DueDate)] = struct{}{}
	}

	resolver := newSubjectResolver(userID, subjects)
	var toInsert []model.Assignment
	added, skipped := 0, 0

	for _, row := range rows {
		subjectID := resolver.resolve(row.SubjectCode, row.SubjectName)

		key := assignmentDedupKey(subjectID, row.Title, row.DueDate)
		if _, dup := usedKeys[key]; dup {
			skipped++
			continue
		}
		usedKeys[key] = struct{}{}

		toInsert = append(toInsert, model.Assignment{
			AssignmentID: uuid.NewString(),
			UserID:       userID,
			SubjectID:    subjectID,
			Title:        row.Title,
			DueDate:      row.DueDate,
			IsCompleted:  false,
		})
		added++
	}

	// 新建科目与作业在同一事务中写入，失败整体回滚
	if err := s.repo.Assignment.BulkImport(ctx, resolver.created, toInsert); err != nil {
		s.logger.Error("作业批量导入事务失败", zap.Error(err),
			zap.Int("subjects", len(resolver.created)), zap.Int("assignments", len(toInsert)))
		return nil, fmt.Errorf("作业批量导入失败: %w", err)
	}

	s.appendActivity(ctx, userID, model.ActivityImportAssignments,
		fmt.Sprintf("Imported %d assignments, skipped %d", added, skipped), added, skipped)

	if err := s.sessions.Delete(ctx, userID, session.SessionID); err != nil {
		s.logger.Warn("导入会话清理失败", zap.Error(err), zap.String("session_id", session.SessionID))
	}

	return &dto.ImportSummaryResponse{AddedCount: added, SkippedCount: skipped}, nil
}

// assignmentDedupKey 作业去重键：(科目, 规范化标题, 截止日期或哨兵)
func assignmentDedupKey(subjectID, title, dueDate string) string {
	if dueDate == "" {
		dueDate = dedupNoDate
	}
	return subjectID + "|" + strings.ToLower(strings.TrimSpace(title)) + "|" + dueDate
}

// ── 科目解析器：作业导入时把 (code, name) 解析到科目 ID ──
//
// 解析顺序：按代码精确匹配 → 按名称不区分大小写匹配 → 共享的
// "Unknown Subject" 兜底桶（一批内只建一次）。未命中时自动建科目
// 并立即加入工作集，同批后续行可以命中刚建的科目。

type subjectResolver struct {
	userID    string
	byCode    map[string]string // 规范化代码 -> subjectID
	byName    map[string]string // 规范化名称 -> subjectID
	created   []model.Subject
	unknownID string
}

func newSubjectResolver(userID string, existing []model.Subject) *subjectResolver {
	r := &subjectResolver{
		userID: userID,
		byCode: make(map[string]string, len(existing)),
		byName: make(map[string]string, len(existing)),
	}
	for _, sub := range existing {
		if code := NormalizeCode(sub.Code); code != "" {
			if _, ok := r.byCode[code]; !ok {
				r.byCode[code] = sub.SubjectID
			}
		}
		if name := NormalizeName(sub.Name); name != "" {
			if _, ok := r.byName[name]; !ok {
				r.byName[name] = sub.SubjectID
			}
		}
		if sub.Name == unknownSubjectName && r.unknownID == "" {
			r.unknownID = sub.SubjectID
		}
	}
	return r
}

func (r *subjectResolver) resolve(code, name string) string {
	normCode := NormalizeCode(code)
	normName := NormalizeName(name)

	if normCode != "" {
		if id, ok := r.byCode[normCode]; ok {
			return id
		}
		displayName := name
		if strings.TrimSpace(displayName) == "" {
			displayName = SubjectPlaceholderName(code)
		}
		return r.create(displayName, normCode)
	}

	if normName != "" {
		if id, ok := r.byName[normName]; ok {
			return id
		}
		return r.create(name, unknownSubjectCode)
	}

	// 无代码无名称：共享兜底桶，整批只建一次
	if r.unknownID == "" {
		r.unknownID = r.create(unknownSubjectName, unknownSubjectCode)
	}
	return r.unknownID
}

func (r *subjectResolver) create(name, code string) string {
	id := uuid.NewString()
	r.created = append(r.created, model.Subject{
		SubjectID: id,
		UserID:    r.userID,
		Name:      name,
		Code:      code,
	})
	if code != "" && code != unknownSubjectCode {
		r.byCode[code] = id
	}
	if norm := NormalizeName(name); norm != "" {
		r.byName[norm] = id
	}
	return id
}

// ════════════════════════════════════════════════════════════
// 操作记录
// ════════════════════════════════════════════════════════════

func (s *importService) RecentActivity(ctx context.Context, userID string) ([]dto.ActivityLogResponse, error) {
	logs, err := s.repo.ActivityLog.ListByUser(ctx, userID, s.cfg.Planner.ActivityLogCap)
	if err != nil {
		return nil, fmt.Errorf("查询操作记录失败: %w", err)
	}
	out := make([]dto.ActivityLogResponse, 0, len(logs))
	for _, entry := range logs {
		out = append(out, dto.ActivityLogResponse{
			Kind:         entry.Kind,
			Summary:      entry.Summary,
			AddedCount:   entry.AddedCount,
			SkippedCount: entry.SkippedCount,
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// appendActivity 操作记录写入失败不阻断导入（导入本身已成功）
func (s *importService) appendActivity(ctx context.Context, userID, kind, summary string, added, skipped int) {
	entry := &model.ActivityLog{
		ActivityLogID: uuid.NewString(),
		UserID:        userID,
		Kind:          kind,
		Summary:       summary,
		AddedCount:    added,
		SkippedCount:  skipped,
	}
	if err := s.repo.ActivityLog.Append(ctx, entry, s.cfg.Planner.ActivityLogCap); err != nil {
		s.logger.Warn("操作记录写入失败", zap.Error(err), zap.String("kind", kind))
	}
}

func (s *importService) loadSession(ctx context.Context, userID, sessionID, kind string) (*ImportSession, error) {
	session, err := s.sessions.Load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Kind != kind {
		return nil, ErrImportSessionKind
	}
	return session, nil
}
