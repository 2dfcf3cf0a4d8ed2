package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sheetdesk/internal/excel"
	"sheetdesk/internal/model"
)

type sheetInfo struct {
	Name        string `json:"name"`
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
}

// CreateWorkspace 上传工作簿并建立内存工作区
// POST /api/workspace
func (h *Handler) CreateWorkspace(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer f.Close()

	decoder, err := excel.OpenWorkbook(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法打开工作簿"})
		return
	}
	defer decoder.Close()

	sheets, skipped, err := decoder.ParseAll()
	if err != nil {
		abortWithError(c, err)
		return
	}

	ws := h.workspaces.Create(fileHeader.Filename, sheets)

	infos := make([]sheetInfo, 0, len(sheets))
	for _, s := range sheets {
		infos = append(infos, sheetInfo{
			Name:        s.Name,
			RowCount:    len(s.Rows),
			ColumnCount: len(s.Columns),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaceId":   ws.ID,
		"fileName":      ws.FileName,
		"sheets":        infos,
		"skippedSheets": skipped,
	})
}

type sheetView struct {
	Sheet    *model.Sheet    `json:"sheet"`
	Dirty    bool            `json:"dirty"`
	Formulas []model.Formula `json:"formulas"`
}

// GetWorkspace 读取工作区当前缓冲内容
// GET /api/workspace/:id
func (h *Handler) GetWorkspace(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	names := ws.SheetNames()
	views := make([]sheetView, 0, len(names))
	for _, name := range names {
		sheet, dirty, err := ws.Sheet(name)
		if err != nil {
			abortWithError(c, err)
			return
		}
		formulas, err := ws.Formulas(name)
		if err != nil {
			abortWithError(c, err)
			return
		}
		views = append(views, sheetView{Sheet: sheet, Dirty: dirty, Formulas: formulas})
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaceId": ws.ID,
		"fileName":    ws.FileName,
		"sheets":      views,
	})
}

// DeleteWorkspace 释放工作区
// DELETE /api/workspace/:id
func (h *Handler) DeleteWorkspace(c *gin.Context) {
	h.workspaces.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AddRow 追加空行
// POST /api/workspace/:id/sheets/:sheet/rows
func (h *Handler) AddRow(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	row, err := ws.AddRow(c.Param("sheet"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row})
}

// EditRow 合并编辑单行的用户列
// PATCH /api/workspace/:id/sheets/:sheet/rows/:key
func (h *Handler) EditRow(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	key, err := strconv.Atoi(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法行号"})
		return
	}

	var patch map[string]model.CellValue
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	row, err := ws.EditRow(c.Param("sheet"), key, patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row})
}

// DeleteRow 删除单行
// DELETE /api/workspace/:id/sheets/:sheet/rows/:key
func (h *Handler) DeleteRow(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	key, err := strconv.Atoi(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法行号"})
		return
	}

	if err := ws.DeleteRow(c.Param("sheet"), key); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type addColumnRequest struct {
	Title    string           `json:"title"`
	Kind     model.ColumnKind `json:"kind"`
	OperandA string           `json:"operandA"`
	OperandB string           `json:"operandB"`
	Operator model.Operator   `json:"operator"`
}

// AddColumn 新增用户列或计算列
// POST /api/workspace/:id/sheets/:sheet/columns
func (h *Handler) AddColumn(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req addColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "列标题不能为空"})
		return
	}

	sheet := c.Param("sheet")
	switch req.Kind {
	case model.ColumnCalculated:
		err = ws.AddCalculatedColumn(sheet, req.Title, req.OperandA, req.OperandB, req.Operator)
	default:
		err = ws.AddColumn(sheet, req.Title)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reorderRequest struct {
	Target string `json:"target"` // rows / columns
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// Reorder 行/列拖拽重排
// POST /api/workspace/:id/sheets/:sheet/reorder
func (h *Handler) Reorder(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	sheet := c.Param("sheet")
	switch req.Target {
	case "rows":
		err = ws.ReorderRows(sheet, req.From, req.To)
	case "columns":
		err = ws.ReorderColumns(sheet, req.From, req.To)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "target 必须是 rows 或 columns"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type beginEditRequest struct {
	RowKey int `json:"rowKey"`
}

// BeginEdit 开启行编辑会话
// POST /api/workspace/:id/sheets/:sheet/edit
func (h *Handler) BeginEdit(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req beginEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	session, err := ws.BeginEdit(c.Param("sheet"), req.RowKey)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

type resolveEditRequest struct {
	Action string `json:"action"` // commit / cancel
}

// ResolveEdit 提交或取消行编辑会话
// POST /api/workspace/:id/sheets/:sheet/edit/:session
func (h *Handler) ResolveEdit(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req resolveEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	sheet := c.Param("sheet")
	sessionID := c.Param("session")
	switch req.Action {
	case "commit":
		err = ws.CommitEdit(sheet, sessionID)
	case "cancel":
		err = ws.CancelEdit(sheet, sessionID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action 必须是 commit 或 cancel"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SaveSheet 保存：基线 := 缓冲
// POST /api/workspace/:id/sheets/:sheet/save
func (h *Handler) SaveSheet(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := ws.Save(c.Param("sheet")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ResetSheet 重置：缓冲 := 基线
// POST /api/workspace/:id/sheets/:sheet/reset
func (h *Handler) ResetSheet(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := ws.Reset(c.Param("sheet")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
