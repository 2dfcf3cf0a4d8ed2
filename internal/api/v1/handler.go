package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sheetdesk/internal/aggregate"
	"sheetdesk/internal/importer"
	"sheetdesk/internal/model"
	"sheetdesk/internal/store"
	"sheetdesk/internal/workspace"
)

// Handler V1 API 处理器
type Handler struct {
	store      *store.Store
	workspaces *workspace.Manager
	importer   *importer.Coordinator
	aggregate  *aggregate.Service
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st *store.Store, maxRowsPerSheet int) *Handler {
	return &Handler{
		store:      st,
		workspaces: workspace.NewManager(),
		importer:   importer.NewCoordinator(st, maxRowsPerSheet),
		aggregate:  aggregate.NewService(st),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 工作区：上传解析与交互编辑
	router.POST("/workspace", h.CreateWorkspace)
	router.GET("/workspace/:id", h.GetWorkspace)
	router.DELETE("/workspace/:id", h.DeleteWorkspace)
	router.POST("/workspace/:id/sheets/:sheet/rows", h.AddRow)
	router.PATCH("/workspace/:id/sheets/:sheet/rows/:key", h.EditRow)
	router.DELETE("/workspace/:id/sheets/:sheet/rows/:key", h.DeleteRow)
	router.POST("/workspace/:id/sheets/:sheet/columns", h.AddColumn)
	router.POST("/workspace/:id/sheets/:sheet/reorder", h.Reorder)
	router.POST("/workspace/:id/sheets/:sheet/edit", h.BeginEdit)
	router.POST("/workspace/:id/sheets/:sheet/edit/:session", h.ResolveEdit)
	router.POST("/workspace/:id/sheets/:sheet/save", h.SaveSheet)
	router.POST("/workspace/:id/sheets/:sheet/reset", h.ResetSheet)

	// 周期导入
	router.POST("/import", h.Import)
	router.POST("/import/stream", h.ImportStream)

	// 月度视图
	router.GET("/monthly", h.GetMonthly)
	router.GET("/monthly/export", h.ExportMonthly)
	router.GET("/months", h.ListMonths)
}

// ownerFrom 取请求方身份。鉴权由外部网关完成，这里只消费结果。
func ownerFrom(c *gin.Context) string {
	if owner := c.GetHeader("X-Owner-ID"); owner != "" {
		return owner
	}
	return "default"
}

// abortWithError 把领域错误映射为 HTTP 状态码
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrWorkspaceNotFound),
		errors.Is(err, model.ErrSheetNotFound),
		errors.Is(err, model.ErrRowNotFound),
		errors.Is(err, model.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateColumn),
		errors.Is(err, model.ErrSessionOpen),
		errors.Is(err, model.ErrCyclicFormula):
		status = http.StatusConflict
	case errors.Is(err, model.ErrNoHeader),
		errors.Is(err, model.ErrBadReorder),
		errors.Is(err, model.ErrUnknownColumn),
		errors.Is(err, model.ErrUnknownOperator):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
