package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WarunaSLFI/study-planner-saas/internal/service"
	"github.com/WarunaSLFI/study-planner-saas/pkg/response"
)

// ExportHandler 导出模块 Handler
type ExportHandler struct {
	svc service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportJSON 全量导出（JSON）
// GET /api/v1/export
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	userID, _ := c.Get("user_id")

	resp, err := h.svc.ExportJSON(c.Request.Context(), userID.(string))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// ExportAssignmentsXLSX 作业清单导出（Excel）
// GET /api/v1/export/assignments.xlsx
func (h *ExportHandler) ExportAssignmentsXLSX(c *gin.Context) {
	userID, _ := c.Get("user_id")

	data, filename, err := h.svc.ExportAssignmentsXLSX(c.Request.Context(), userID.(string))
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
