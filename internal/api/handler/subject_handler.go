package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/internal/service"
	"github.com/WarunaSLFI/study-planner-saas/pkg/response"
)

// SubjectHandler 科目模块 Handler
type SubjectHandler struct {
	svc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler 实例
func NewSubjectHandler(svc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{svc: svc}
}

// List 科目列表（支持 query 模糊筛选）
// GET /api/v1/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var query dto.ListSubjectsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 12000, err.Error())
		return
	}

	resp, err := h.svc.List(c.Request.Context(), userID.(string), query.Query)
	if err != nil {
		handleSubjectError(c, err)
		return
	}
	response.OK(c, resp)
}

// Create 新建科目
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12000, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), userID.(string), &req)
	if err != nil {
		handleSubjectError(c, err)
		return
	}
	response.Created(c, resp)
}

// Update 更新科目
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) Update(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12000, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), userID.(string), id, &req)
	if err != nil {
		handleSubjectError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除科目（级联删除其作业）
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	resp, err := h.svc.Delete(c.Request.Context(), userID.(string), id)
	if err != nil {
		handleSubjectError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleSubjectError 统一科目模块错误映射
func handleSubjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrSubjectDuplicateCode):
		response.ErrorWithDetails(c, http.StatusConflict, 12002, "科目代码已存在", err.Error())
	default:
		response.InternalError(c)
	}
}
