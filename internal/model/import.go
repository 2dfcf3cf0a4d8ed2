package model

import "time"

// 单个 sheet 的导入状态
const (
	SheetImported = "imported"
	SheetFailed   = "failed"
	SheetSkipped  = "skipped"
)

// SheetSummary 单个 sheet 的导入结果
type SheetSummary struct {
	SheetName    string `json:"sheetName"`
	Status       string `json:"status"`
	TotalRows    int    `json:"totalRows"`    // 解析到的行数
	ImportedRows int    `json:"importedRows"` // 实际落库行数（超出上限的被丢弃）
	DroppedRows  int    `json:"droppedRows"`
	Error        string `json:"error,omitempty"`
}

// ImportReport 整次导入的汇总报告（部分成功时 FailedSheets > 0）
type ImportReport struct {
	FileName       string         `json:"fileName"`
	DataYear       int            `json:"targetYear"`
	DataMonth      int            `json:"targetMonth"`
	TotalSheets    int            `json:"totalSheets"`
	ImportedSheets int            `json:"importedCount"`
	FailedSheets   int            `json:"failedCount"`
	ImportedRows   int            `json:"importedRows"`
	Sheets         []SheetSummary `json:"perSheetSummaries"`
	Duration       time.Duration  `json:"-"`
}
