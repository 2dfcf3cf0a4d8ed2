package model

// 快照里以 "__" 开头的字段为系统附加字段（例如单据联动标记），
// 重建展示列时需要剔除。
const InternalFieldPrefix = "__"

// ColumnOrderField 导入时附加的列顺序字段（JSON 数组文本）
const ColumnOrderField = "__columns"

// PersistedRow 已持久化的表格行。以 (ownerId, dataYear, dataMonth)
// 为周期槽整体替换，单行不做合并更新。
type PersistedRow struct {
	ID        int64                `json:"id"`
	OwnerID   string               `json:"ownerId"`
	SheetName string               `json:"sheetName"`
	RowNo     int                  `json:"rowNo"` // 导入时的原始序号
	Snapshot  map[string]CellValue `json:"snapshot"`
	DataYear  int                  `json:"dataYear"`
	DataMonth int                  `json:"dataMonth"`

	// 可选财务标记：供账单/台账功能下游联动，本核心不做业务校验
	Amount     *float64 `json:"amount,omitempty"`
	FlowType   string   `json:"flowType,omitempty"`
	OccurredOn string   `json:"occurredOn,omitempty"`

	CreatedAt string `json:"createdAt"`
}

// FlowType 取值（与上游表格里的“收入/支出”列一致）
const (
	FlowIncome  = "收入"
	FlowExpense = "支出"
)

// SheetGroup 月度视图中按来源 sheet 分组后的一组行
type SheetGroup struct {
	Name         string                 `json:"name"`
	Rows         []map[string]CellValue `json:"data"`
	ColumnSchema []string               `json:"columnSchema"`
	RowCount     int                    `json:"rowCount"`
	IncomeTotal  float64                `json:"incomeTotal"`
	ExpenseTotal float64                `json:"expenseTotal"`
}

// MonthlySummary 月度视图总计
type MonthlySummary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	TotalCount   int     `json:"totalCount"`
}

// MonthlyView 月度聚合视图。每次读取即时计算，不做服务端缓存。
type MonthlyView struct {
	Sheets       []SheetGroup   `json:"sheets"`
	TotalSheets  int            `json:"totalSheets"`
	TotalRecords int            `json:"totalRecords"`
	Summary      MonthlySummary `json:"summary"`
}
