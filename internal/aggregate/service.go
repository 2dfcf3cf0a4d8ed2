package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"sheetdesk/internal/model"
	"sheetdesk/internal/store"
)

// AllSheetsGroupName 展示用的“全部”合成分组
const AllSheetsGroupName = "全部"

// Service 月度聚合视图服务。纯读取派生：每次请求即时计算，
// 从不修改持久化数据，也不做服务端缓存。
type Service struct {
	store *store.Store
}

// NewService 创建聚合服务
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// MonthlyView 单一年月的聚合视图。该周期没有数据时返回
// 零分组、全零汇总的正常结果，不算错误。
func (s *Service) MonthlyView(ownerID string, year, month int) (*model.MonthlyView, error) {
	if month < 1 || month > 12 || year <= 0 {
		return nil, fmt.Errorf("invalid period %d-%d", year, month)
	}
	rows, err := s.store.GetRowsByPeriod(ownerID, year, month)
	if err != nil {
		return nil, fmt.Errorf("load period rows: %w", err)
	}
	return buildView(rows), nil
}

// RangeView 闭区间年月范围的聚合视图
func (s *Service) RangeView(ownerID string, startYear, startMonth, endYear, endMonth int) (*model.MonthlyView, error) {
	if startMonth < 1 || startMonth > 12 || endMonth < 1 || endMonth > 12 {
		return nil, fmt.Errorf("invalid range %d-%d .. %d-%d", startYear, startMonth, endYear, endMonth)
	}
	if startYear*100+startMonth > endYear*100+endMonth {
		return nil, fmt.Errorf("range start after end")
	}
	rows, err := s.store.GetRowsByMonthRange(ownerID, startYear, startMonth, endYear, endMonth)
	if err != nil {
		return nil, fmt.Errorf("load range rows: %w", err)
	}
	return buildView(rows), nil
}

// buildView 按来源 sheet 重新分组并计算汇总
func buildView(rows []*model.PersistedRow) *model.MonthlyView {
	type groupAcc struct {
		group   *model.SheetGroup
		income  decimal.Decimal
		expense decimal.Decimal
	}

	var order []string
	groups := make(map[string]*groupAcc)

	for _, r := range rows {
		acc, ok := groups[r.SheetName]
		if !ok {
			acc = &groupAcc{
				group: &model.SheetGroup{
					Name:         r.SheetName,
					ColumnSchema: displaySchema(r.Snapshot),
				},
			}
			groups[r.SheetName] = acc
			order = append(order, r.SheetName)
		}

		acc.group.Rows = append(acc.group.Rows, displayRow(r.Snapshot))
		acc.group.RowCount++

		if r.Amount != nil {
			amount := decimal.NewFromFloat(*r.Amount)
			switch r.FlowType {
			case model.FlowIncome:
				acc.income = acc.income.Add(amount)
			case model.FlowExpense:
				acc.expense = acc.expense.Add(amount.Abs())
			}
		}
	}

	view := &model.MonthlyView{
		Sheets:      make([]model.SheetGroup, 0, len(order)+1),
		TotalSheets: len(order),
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero

	for _, name := range order {
		acc := groups[name]
		acc.group.IncomeTotal, _ = acc.income.Float64()
		acc.group.ExpenseTotal, _ = acc.expense.Float64()
		view.Sheets = append(view.Sheets, *acc.group)
		view.TotalRecords += acc.group.RowCount
		totalIncome = totalIncome.Add(acc.income)
		totalExpense = totalExpense.Add(acc.expense)
	}

	view.Summary.TotalIncome, _ = totalIncome.Float64()
	view.Summary.TotalExpense, _ = totalExpense.Float64()
	view.Summary.TotalCount = view.TotalRecords

	// “全部”合成分组：只带汇总，方便前端整体展示
	if len(order) > 0 {
		view.Sheets = append(view.Sheets, model.SheetGroup{
			Name:         AllSheetsGroupName,
			RowCount:     view.TotalRecords,
			IncomeTotal:  view.Summary.TotalIncome,
			ExpenseTotal: view.Summary.TotalExpense,
		})
	}

	return view
}

// displaySchema 从首行快照重建展示列：优先使用导入时记录的
// 列顺序，缺失时按字典序兜底；内部字段一律剔除
func displaySchema(snapshot map[string]model.CellValue) []string {
	if v, ok := snapshot[model.ColumnOrderField]; ok {
		var titles []string
		if err := json.Unmarshal([]byte(v.Text), &titles); err == nil {
			out := make([]string, 0, len(titles))
			for _, t := range titles {
				if _, present := snapshot[t]; present {
					out = append(out, t)
				}
			}
			return out
		}
	}

	out := make([]string, 0, len(snapshot))
	for k := range snapshot {
		if strings.HasPrefix(k, model.InternalFieldPrefix) {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// displayRow 去掉内部字段后的行数据
func displayRow(snapshot map[string]model.CellValue) map[string]model.CellValue {
	out := make(map[string]model.CellValue, len(snapshot))
	for k, v := range snapshot {
		if strings.HasPrefix(k, model.InternalFieldPrefix) {
			continue
		}
		out[k] = v
	}
	return out
}
