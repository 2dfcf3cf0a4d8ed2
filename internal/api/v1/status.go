package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 服务状态
type StatusResponse struct {
	Workspaces int           `json:"workspaces"`
	Periods    []periodBrief `json:"periods"`
}

type periodBrief struct {
	Year     int `json:"year"`
	Month    int `json:"month"`
	RowCount int `json:"rowCount"`
}

// GetStatus 服务状态概览
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	periods, err := h.store.ListAvailablePeriods(ownerFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	briefs := make([]periodBrief, 0, len(periods))
	for _, p := range periods {
		briefs = append(briefs, periodBrief{Year: p.Year, Month: p.Month, RowCount: p.RowCount})
	}

	c.JSON(http.StatusOK, StatusResponse{
		Workspaces: h.workspaces.Count(),
		Periods:    briefs,
	})
}
