package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sheetdesk/internal/excel"
	"sheetdesk/internal/model"
)

// parsePeriodQuery 解析月度视图查询参数：
// year+month 单月，或 start+end（YYYY-MM）闭区间
func parsePeriodQuery(c *gin.Context) (single bool, y, m, sy, sm, ey, em int, err error) {
	if c.Query("year") != "" || c.Query("month") != "" {
		y, _ = strconv.Atoi(c.Query("year"))
		m, _ = strconv.Atoi(c.Query("month"))
		if y <= 0 || m < 1 || m > 12 {
			return false, 0, 0, 0, 0, 0, 0, fmt.Errorf("非法年月")
		}
		return true, y, m, 0, 0, 0, 0, nil
	}

	start, end := c.Query("start"), c.Query("end")
	if start == "" || end == "" {
		return false, 0, 0, 0, 0, 0, 0, fmt.Errorf("缺少 year/month 或 start/end 参数")
	}
	st, err1 := time.Parse("2006-01", start)
	en, err2 := time.Parse("2006-01", end)
	if err1 != nil || err2 != nil {
		return false, 0, 0, 0, 0, 0, 0, fmt.Errorf("start/end 需为 YYYY-MM 格式")
	}
	return false, 0, 0, st.Year(), int(st.Month()), en.Year(), int(en.Month()), nil
}

func (h *Handler) monthlyViewFromQuery(c *gin.Context) (*model.MonthlyView, int, int, error) {
	single, y, m, sy, sm, ey, em, err := parsePeriodQuery(c)
	if err != nil {
		return nil, 0, 0, err
	}
	owner := ownerFrom(c)
	if single {
		view, err := h.aggregate.MonthlyView(owner, y, m)
		return view, y, m, err
	}
	view, err := h.aggregate.RangeView(owner, sy, sm, ey, em)
	return view, ey, em, err
}

// GetMonthly 月度聚合视图
// GET /api/monthly?year=&month= 或 ?start=YYYY-MM&end=YYYY-MM
func (h *Handler) GetMonthly(c *gin.Context) {
	view, _, _, err := h.monthlyViewFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// ExportMonthly 把月度视图导出为 xlsx
// GET /api/monthly/export
func (h *Handler) ExportMonthly(c *gin.Context) {
	view, y, m, err := h.monthlyViewFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := excel.BuildMonthlyReport(view, y, m)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fileName := fmt.Sprintf("monthly_%d_%02d.xlsx", y, m)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// ListMonths 列出存在数据的周期槽
// GET /api/months
func (h *Handler) ListMonths(c *gin.Context) {
	items, err := h.store.ListAvailablePeriods(ownerFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
