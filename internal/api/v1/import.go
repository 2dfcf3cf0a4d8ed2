package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sheetdesk/internal/excel"
	"sheetdesk/internal/importer"
	"sheetdesk/internal/model"
)

// ImportRequest 周期导入请求。二选一：
// 直接携带 sheets，或给出 workspaceId 导入工作区当前缓冲。
type ImportRequest struct {
	FileName    string         `json:"fileName"`
	WorkspaceID string         `json:"workspaceId"`
	Sheets      []*model.Sheet `json:"sheets"`
	TargetYear  int            `json:"targetYear"`
	TargetMonth int            `json:"targetMonth"`
}

// Import 周期全量导入
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}
	if req.TargetMonth < 1 || req.TargetMonth > 12 || req.TargetYear <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法目标年月"})
		return
	}

	sheets := req.Sheets
	fileName := req.FileName
	if req.WorkspaceID != "" {
		ws, err := h.workspaces.Get(req.WorkspaceID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if fileName == "" {
			fileName = ws.FileName
		}
		for _, name := range ws.SheetNames() {
			sheet, _, err := ws.Sheet(name)
			if err != nil {
				abortWithError(c, err)
				return
			}
			sheets = append(sheets, sheet)
		}
	}
	if len(sheets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有可导入的 sheet"})
		return
	}

	report, err := h.importer.ImportPeriod(importer.ImportOptions{
		OwnerID:  ownerFrom(c),
		FileName: fileName,
		Sheets:   sheets,
		Year:     req.TargetYear,
		Month:    req.TargetMonth,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ImportStream 上传工作簿并以 SSE 推送导入进度
// POST /api/import/stream
func (h *Handler) ImportStream(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	year, _ := strconv.Atoi(c.PostForm("targetYear"))
	month, _ := strconv.Atoi(c.PostForm("targetMonth"))
	if month < 1 || month > 12 || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法目标年月"})
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

	sheets, _, err := decoder.ParseAll()
	if err != nil {
		abortWithError(c, err)
		return
	}

	// SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.importer.Import(importer.ImportOptions{
		OwnerID:  ownerFrom(c),
		FileName: fileHeader.Filename,
		Sheets:   sheets,
		Year:     year,
		Month:    month,
	})

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
