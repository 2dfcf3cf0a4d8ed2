package importer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"sheetdesk/internal/config"
	"sheetdesk/internal/model"
	"sheetdesk/internal/store"
)

// DefaultMaxRowsPerSheet 单张 sheet 落库行数上限的默认值
const DefaultMaxRowsPerSheet = 1000

// Coordinator 导入协调器：把工作区 sheet 按周期槽写入存储。
// 同一 (owner, year, month) 的删+插在一个事务里完成，重复导入
// 不会翻倍；单张 sheet 失败跳过并计入报告，整体仍然提交。
type Coordinator struct {
	store   *store.Store
	maxRows int
	log     *logrus.Logger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, maxRows int) *Coordinator {
	if maxRows <= 0 {
		maxRows = DefaultMaxRowsPerSheet
	}
	return &Coordinator{
		store:   st,
		maxRows: maxRows,
		log:     config.GetLogger(),
	}
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/sheet_done/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ImportOptions 导入选项
type ImportOptions struct {
	OwnerID  string
	FileName string
	Sheets   []*model.Sheet
	Year     int
	Month    int
}

// ImportPeriod 同步执行周期导入并返回报告
func (c *Coordinator) ImportPeriod(opts ImportOptions) (*model.ImportReport, error) {
	if opts.Month < 1 || opts.Month > 12 || opts.Year <= 0 {
		return nil, fmt.Errorf("invalid target period %d-%d", opts.Year, opts.Month)
	}

	startTime := time.Now()

	report := &model.ImportReport{
		FileName:    opts.FileName,
		DataYear:    opts.Year,
		DataMonth:   opts.Month,
		TotalSheets: len(opts.Sheets),
	}

	logID, err := c.store.CreateImportLog(opts.OwnerID, opts.FileName, opts.Year, opts.Month)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"module": "importer",
			"owner":  opts.OwnerID,
		}).Warnf("create import log failed: %v", err)
	}

	batches := make([]store.SheetBatch, 0, len(opts.Sheets))
	summaries := make(map[string]*model.SheetSummary, len(opts.Sheets))

	for _, sheet := range opts.Sheets {
		batch, summary := c.buildBatch(opts, sheet)
		batches = append(batches, batch)
		summaries[sheet.Name] = summary
		report.Sheets = append(report.Sheets, *summary)
	}

	sheetErrs, err := c.store.ReplacePeriodRows(opts.OwnerID, opts.Year, opts.Month, batches)
	if err != nil {
		// 事务级失败：整次导入未提交
		if logID > 0 {
			_ = c.store.UpdateImportLog(logID, report.TotalSheets, 0, report.TotalSheets, 0, "failed", err.Error())
		}
		return nil, fmt.Errorf("replace period rows: %w", err)
	}

	for i := range report.Sheets {
		s := &report.Sheets[i]
		if serr, failed := sheetErrs[s.SheetName]; failed {
			s.Status = model.SheetFailed
			s.ImportedRows = 0
			s.DroppedRows = 0
			s.Error = serr.Error()
			report.FailedSheets++
			c.log.WithFields(logrus.Fields{
				"module": "importer",
				"owner":  opts.OwnerID,
				"sheet":  s.SheetName,
			}).Errorf("sheet import failed: %v", serr)
			continue
		}
		s.Status = model.SheetImported
		report.ImportedSheets++
		report.ImportedRows += s.ImportedRows
	}

	report.Duration = time.Since(startTime)

	if logID > 0 {
		status := "done"
		if report.FailedSheets > 0 {
			status = "partial"
		}
		_ = c.store.UpdateImportLog(logID, report.TotalSheets, report.ImportedSheets,
			report.FailedSheets, report.ImportedRows, status, "")
	}

	return report, nil
}

// buildBatch 把一张 sheet 转成待落库的行批次。
// 超出上限的行直接丢弃，丢弃数记入该 sheet 的摘要。
func (c *Coordinator) buildBatch(opts ImportOptions, sheet *model.Sheet) (store.SheetBatch, *model.SheetSummary) {
	summary := &model.SheetSummary{
		SheetName: sheet.Name,
		TotalRows: len(sheet.Rows),
	}

	rows := sheet.Rows
	if len(rows) > c.maxRows {
		summary.DroppedRows = len(rows) - c.maxRows
		rows = rows[:c.maxRows]
		c.log.WithFields(logrus.Fields{
			"module":  "importer",
			"sheet":   sheet.Name,
			"dropped": summary.DroppedRows,
		}).Warn("sheet rows exceed cap, extra rows dropped")
	}

	// 列顺序随快照一起落库（内部字段），月度视图重建展示列时还原
	titles := make([]string, 0, len(sheet.Columns))
	for _, col := range sheet.Columns {
		titles = append(titles, col.Title)
	}
	columnOrder, _ := json.Marshal(titles)

	persisted := make([]*model.PersistedRow, 0, len(rows))
	for i, row := range rows {
		snapshot := make(map[string]model.CellValue, len(row.Values)+1)
		for k, v := range row.Values {
			snapshot[k] = v
		}
		snapshot[model.ColumnOrderField] = model.TextCell(string(columnOrder))
		p := &model.PersistedRow{
			OwnerID:   opts.OwnerID,
			SheetName: sheet.Name,
			RowNo:     i,
			Snapshot:  snapshot,
			DataYear:  opts.Year,
			DataMonth: opts.Month,
		}
		liftFinancialTags(p)
		persisted = append(persisted, p)
	}
	summary.ImportedRows = len(persisted)

	return store.SheetBatch{SheetName: sheet.Name, Rows: persisted}, summary
}

// 财务标记候选列名：存在即提取，供账单功能下游联动；
// 这里不做任何账单业务校验
var (
	amountColumns = []string{"金额", "amount", "Amount"}
	flowColumns   = []string{"类型", "收支类型", "flowType"}
	dateColumns   = []string{"日期", "date", "Date"}
)

func liftFinancialTags(p *model.PersistedRow) {
	for _, col := range amountColumns {
		if v, ok := p.Snapshot[col]; ok && !v.IsEmpty() {
			f := v.Float()
			p.Amount = &f
			break
		}
	}
	for _, col := range flowColumns {
		if v, ok := p.Snapshot[col]; ok && !v.IsEmpty() {
			p.FlowType = v.String()
			break
		}
	}
	for _, col := range dateColumns {
		if v, ok := p.Snapshot[col]; ok && !v.IsEmpty() {
			p.OccurredOn = v.String()
			break
		}
	}
}

// Import 异步执行导入，返回进度通道（SSE 推送用）
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

// doImport 执行导入并逐 sheet 推送进度
func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   fmt.Sprintf("开始导入 %s（%d 个 sheet，目标 %d年%d月）", opts.FileName, len(opts.Sheets), opts.Year, opts.Month),
		Timestamp: time.Now(),
	})

	report, err := c.ImportPeriod(opts)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("导入失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}

	for _, s := range report.Sheets {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "sheet_done",
			Message:   fmt.Sprintf("Sheet \"%s\": %s（%d/%d 行）", s.SheetName, s.Status, s.ImportedRows, s.TotalRows),
			Data:      s,
			Timestamp: time.Now(),
		})
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      report,
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
