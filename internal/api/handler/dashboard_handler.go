package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/WarunaSLFI/study-planner-saas/internal/service"
	"github.com/WarunaSLFI/study-planner-saas/pkg/response"
)

// DashboardHandler 仪表盘模块 Handler
type DashboardHandler struct {
	svc     service.DashboardService
	imports service.ImportService
}

// NewDashboardHandler 创建 DashboardHandler 实例
func NewDashboardHandler(svc service.DashboardService, imports service.ImportService) *DashboardHandler {
	return &DashboardHandler{svc: svc, imports: imports}
}

// Overview 仪表盘概览
// GET /api/v1/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	userID, _ := c.Get("user_id")

	resp, err := h.svc.Overview(c.Request.Context(), userID.(string))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// Activity 最近操作记录
// GET /api/v1/activity
func (h *DashboardHandler) Activity(c *gin.Context) {
	userID, _ := c.Get("user_id")

	resp, err := h.imports.RecentActivity(c.Request.Context(), userID.(string))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}
