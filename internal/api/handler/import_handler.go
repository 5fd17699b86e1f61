package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/service"
	"github.com/WarunaSLFI/study-planner-saas/pkg/response"
)

// ImportHandler 导入模块 Handler
//
// 两段式流程：parse 返回预览（带会话 ID 与审核候选），
// commit 按裁决结果落库。会话过期后需重新 parse。
type ImportHandler struct {
	svc service.ImportService
}

// NewImportHandler 创建 ImportHandler 实例
func NewImportHandler(svc service.ImportService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

// ParseSubjects 解析科目文本
// POST /api/v1/import/subjects/parse
func (h *ImportHandler) ParseSubjects(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req dto.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14000, err.Error())
		return
	}

	resp, err := h.svc.ParseSubjects(c.Request.Context(), userID.(string), req.Text)
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// CommitSubjects 提交科目导入
// POST /api/v1/import/subjects/commit
func (h *ImportHandler) CommitSubjects(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req dto.CommitSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14000, err.Error())
		return
	}

	resp, err := h.svc.CommitSubjects(c.Request.Context(), userID.(string), &req)
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.Created(c, resp)
}

// ParseAssignments 解析作业文本
// POST /api/v1/import/assignments/parse
func (h *ImportHandler) ParseAssignments(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req dto.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14000, err.Error())
		return
	}

	resp, err := h.svc.ParseAssignments(c.Request.Context(), userID.(string), req.Text)
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// ParseAssignmentsICS 从 ICS 日历解析作业
// POST /api/v1/import/assignments/ics
// multipart/form-data field="file"，或 JSON {"url": "..."} 指定订阅地址
func (h *ImportHandler) ParseAssignmentsICS(c *gin.Context) {
	userID, _ := c.Get("user_id")

	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		resp, err := h.svc.ParseAssignmentsICS(c.Request.Context(), userID.(string), file)
		if err != nil {
			handleImportError(c, err)
			return
		}
		response.OK(c, resp)
		return
	}

	var req dto.ImportICSURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14000, "请上传 ICS 文件或提供订阅地址")
		return
	}

	resp, err := h.svc.ParseAssignmentsICSURL(c.Request.Context(), userID.(string), req.URL)
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// CommitAssignments 提交作业导入
// POST /api/v1/import/assignments/commit
func (h *ImportHandler) CommitAssignments(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req dto.CommitAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14000, err.Error())
		return
	}

	resp, err := h.svc.CommitAssignments(c.Request.Context(), userID.(string), &req)
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.Created(c, resp)
}

// handleImportError 统一导入模块错误映射
func handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportTextTooLarge):
		response.ErrorWithDetails(c, http.StatusRequestEntityTooLarge, 14001, "粘贴文本过大", err.Error())
	case errors.Is(err, service.ErrImportNothingParsed):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrImportSessionNotFound):
		response.NotFound(c, 14003, err.Error())
	case errors.Is(err, service.ErrImportSessionKind):
		response.BadRequest(c, 14004, err.Error())
	case errors.Is(err, service.ErrImportUnresolvedReview):
		response.ErrorWithDetails(c, http.StatusConflict, 14005, "存在未裁决的冲突行", err.Error())
	case errors.Is(err, service.ErrImportInvalidChoice):
		response.BadRequest(c, 14006, err.Error())
	case errors.Is(err, service.ErrImportICSParseFailed):
		response.BadRequest(c, 14007, err.Error())
	case errors.Is(err, service.ErrImportICSFetchFailed):
		response.BadRequest(c, 14008, err.Error())
	default:
		response.InternalError(c)
	}
}
