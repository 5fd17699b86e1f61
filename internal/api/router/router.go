package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/WarunaSLFI/study-planner-saas/config"
	"github.com/WarunaSLFI/study-planner-saas/internal/api/handler"
	"github.com/WarunaSLFI/study-planner-saas/internal/api/middleware"
	"github.com/WarunaSLFI/study-planner-saas/pkg/jwt"
	"github.com/WarunaSLFI/study-planner-saas/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（认证由外部身份服务签发的 JWT 承载）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 导入模块：解析-审核-提交两段式
		imports := v1.Group("/import")
		{
			imports.POST("/subjects/parse", h.Import.ParseSubjects)
			imports.POST("/subjects/commit", h.Import.CommitSubjects)
			imports.POST("/assignments/parse", h.Import.ParseAssignments)
			imports.POST("/assignments/ics", h.Import.ParseAssignmentsICS)
			imports.POST("/assignments/commit", h.Import.CommitAssignments)
		}

		// 科目模块
		subjects := v1.Group("/subjects")
		{
			subjects.GET("", h.Subject.List)
			subjects.POST("", h.Subject.Create)
			subjects.PUT("/:id", h.Subject.Update)
			subjects.DELETE("/:id", h.Subject.Delete)
		}

		// 作业模块
		assignments := v1.Group("/assignments")
		{
			assignments.GET("", h.Assignment.List)
			assignments.POST("", h.Assignment.Create)
			assignments.PUT("/:id", h.Assignment.Update)
			assignments.PUT("/:id/complete", h.Assignment.Complete)
			assignments.DELETE("/:id", h.Assignment.Delete)
		}

		// 仪表盘与操作记录
		v1.GET("/dashboard", h.Dashboard.Overview)
		v1.GET("/activity", h.Dashboard.Activity)

		// 导出模块
		v1.GET("/export", h.Export.ExportJSON)
		v1.GET("/export/assignments.xlsx", h.Export.ExportAssignmentsXLSX)
	}

	return r
}
