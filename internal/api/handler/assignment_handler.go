package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/service"
	"github.com/WarunaSLFI/study-planner-saas/pkg/response"
)

// AssignmentHandler 作业模块 Handler
type AssignmentHandler struct {
	svc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler 实例
func NewAssignmentHandler(svc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// List 作业列表（支持 subject_id / status 筛选）
// GET /api/v1/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var query dto.ListAssignmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 13000, err.Error())
		return
	}

	resp, err := h.svc.List(c.Request.Context(), userID.(string), &query)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Create 新建作业
// POST /api/v1/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13000, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), userID.(string), &req)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.Created(c, resp)
}

// Update 更新作业
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13000, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), userID.(string), id, &req)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Complete 切换作业完成状态（空请求体等同标记完成）
// PUT /api/v1/assignments/:id/complete
func (h *AssignmentHandler) Complete(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	completed := true
	if c.Request.ContentLength > 0 {
		var req dto.CompleteAssignmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 13000, err.Error())
			return
		}
		if req.IsCompleted != nil {
			completed = *req.IsCompleted
		}
	}

	resp, err := h.svc.Complete(c.Request.Context(), userID.(string), id, completed)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除作业
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), userID.(string), id); err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, gin.H{"assignment_id": id})
}

// handleAssignmentError 统一作业模块错误映射
func handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrAssignmentSubjectNotFound):
		response.BadRequest(c, 13002, err.Error())
	case errors.Is(err, service.ErrAssignmentInvalidDueDate):
		response.BadRequest(c, 13003, err.Error())
	default:
		response.InternalError(c)
	}
}
