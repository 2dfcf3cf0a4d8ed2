package aggregate

import (
	"path/filepath"
	"testing"

	"sheetdesk/internal/importer"
	"sheetdesk/internal/model"
	"sheetdesk/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newLedgerSheet(name string, amounts []float64, flows []string) *model.Sheet {
	sheet := &model.Sheet{
		Name: name,
		Columns: []model.Column{
			{Title: "日期", Kind: model.ColumnSource},
			{Title: "摘要", Kind: model.ColumnSource},
			{Title: "金额", Kind: model.ColumnSource},
			{Title: "类型", Kind: model.ColumnSource},
		},
	}
	for i := range amounts {
		sheet.Rows = append(sheet.Rows, &model.Row{
			Key: i,
			Values: map[string]model.CellValue{
				"日期": model.TextCell("2026-01-05"),
				"摘要": model.TextCell("流水"),
				"金额": model.NumberCell(amounts[i]),
				"类型": model.TextCell(flows[i]),
			},
		})
	}
	return sheet
}

func importSheets(t *testing.T, st *store.Store, year, month int, sheets ...*model.Sheet) {
	t.Helper()
	c := importer.NewCoordinator(st, 0)
	if _, err := c.ImportPeriod(importer.ImportOptions{
		OwnerID:  "u1",
		FileName: "账目.xlsx",
		Sheets:   sheets,
		Year:     year,
		Month:    month,
	}); err != nil {
		t.Fatalf("import %d-%d failed: %v", year, month, err)
	}
}

func TestMonthlyView_LedgerTotals(t *testing.T) {
	st := newTestStore(t)
	importSheets(t, st, 2026, 1,
		newLedgerSheet("汇总表", []float64{-6000, 2500, 1800}, []string{"支出", "收入", "收入"}))

	view, err := NewService(st).MonthlyView("u1", 2026, 1)
	if err != nil {
		t.Fatalf("MonthlyView failed: %v", err)
	}

	// 来源分组 + “全部”合成分组
	if view.TotalSheets != 1 || len(view.Sheets) != 2 {
		t.Fatalf("view = %+v", view)
	}

	g := view.Sheets[0]
	if g.Name != "汇总表" || g.RowCount != 3 {
		t.Fatalf("group = %+v", g)
	}
	// 支出取绝对值
	if g.ExpenseTotal != 6000 || g.IncomeTotal != 4300 {
		t.Fatalf("totals = 收 %v 支 %v", g.IncomeTotal, g.ExpenseTotal)
	}

	// 展示列还原导入时的列顺序，内部字段剔除
	wantSchema := []string{"日期", "摘要", "金额", "类型"}
	if len(g.ColumnSchema) != len(wantSchema) {
		t.Fatalf("schema = %v", g.ColumnSchema)
	}
	for i, w := range wantSchema {
		if g.ColumnSchema[i] != w {
			t.Fatalf("schema[%d] = %q, want %q", i, g.ColumnSchema[i], w)
		}
	}
	for _, row := range g.Rows {
		for k := range row {
			if k == model.ColumnOrderField {
				t.Fatal("行数据泄漏内部字段")
			}
		}
	}

	all := view.Sheets[1]
	if all.Name != AllSheetsGroupName || all.RowCount != 3 ||
		all.IncomeTotal != 4300 || all.ExpenseTotal != 6000 {
		t.Fatalf("全部 = %+v", all)
	}

	if view.Summary.TotalIncome != 4300 || view.Summary.TotalExpense != 6000 || view.Summary.TotalCount != 3 {
		t.Fatalf("summary = %+v", view.Summary)
	}
	if view.TotalRecords != 3 {
		t.Fatalf("TotalRecords = %d", view.TotalRecords)
	}
}

// 无数据周期返回全零正常结果，不算错误
func TestMonthlyView_EmptyPeriod(t *testing.T) {
	st := newTestStore(t)

	view, err := NewService(st).MonthlyView("u1", 2026, 7)
	if err != nil {
		t.Fatalf("MonthlyView failed: %v", err)
	}
	if len(view.Sheets) != 0 || view.TotalSheets != 0 || view.TotalRecords != 0 {
		t.Fatalf("view = %+v", view)
	}
	if view.Summary.TotalIncome != 0 || view.Summary.TotalExpense != 0 || view.Summary.TotalCount != 0 {
		t.Fatalf("summary = %+v", view.Summary)
	}
}

func TestMonthlyView_InvalidPeriod(t *testing.T) {
	s := NewService(newTestStore(t))
	for _, tc := range []struct{ y, m int }{{2026, 0}, {2026, 13}, {0, 5}} {
		if _, err := s.MonthlyView("u1", tc.y, tc.m); err == nil {
			t.Fatalf("%d-%d: 期望报错", tc.y, tc.m)
		}
	}
}

// 重导后视图只反映后发的那批数据
func TestMonthlyView_ReflectsLatestImport(t *testing.T) {
	st := newTestStore(t)
	importSheets(t, st, 2026, 1,
		newLedgerSheet("汇总表", []float64{-6000, 2500, 1800}, []string{"支出", "收入", "收入"}))
	importSheets(t, st, 2026, 1,
		newLedgerSheet("汇总表", []float64{500}, []string{"收入"}))

	view, err := NewService(st).MonthlyView("u1", 2026, 1)
	if err != nil {
		t.Fatalf("MonthlyView failed: %v", err)
	}
	if view.TotalRecords != 1 || view.Summary.TotalIncome != 500 || view.Summary.TotalExpense != 0 {
		t.Fatalf("view = %+v summary = %+v", view, view.Summary)
	}
}

func TestRangeView(t *testing.T) {
	st := newTestStore(t)
	importSheets(t, st, 2026, 1,
		newLedgerSheet("一月表", []float64{100}, []string{"收入"}))
	importSheets(t, st, 2026, 2,
		newLedgerSheet("二月表", []float64{-40}, []string{"支出"}))
	importSheets(t, st, 2026, 3,
		newLedgerSheet("三月表", []float64{999}, []string{"收入"}))

	view, err := NewService(st).RangeView("u1", 2026, 1, 2026, 2)
	if err != nil {
		t.Fatalf("RangeView failed: %v", err)
	}

	// 只含区间内两个月，加“全部”
	if view.TotalSheets != 2 || len(view.Sheets) != 3 {
		t.Fatalf("view = %+v", view)
	}
	if view.Sheets[0].Name != "一月表" || view.Sheets[1].Name != "二月表" {
		t.Fatalf("分组顺序 = %q %q", view.Sheets[0].Name, view.Sheets[1].Name)
	}
	if view.Summary.TotalIncome != 100 || view.Summary.TotalExpense != 40 {
		t.Fatalf("summary = %+v", view.Summary)
	}
}

func TestRangeView_Invalid(t *testing.T) {
	s := NewService(newTestStore(t))
	if _, err := s.RangeView("u1", 2026, 3, 2026, 1); err == nil {
		t.Fatal("起点晚于终点: 期望报错")
	}
	if _, err := s.RangeView("u1", 2026, 0, 2026, 1); err == nil {
		t.Fatal("非法月份: 期望报错")
	}
}

// 快照缺少列顺序字段时按字典序兜底
func TestDisplaySchema_Fallback(t *testing.T) {
	snapshot := map[string]model.CellValue{
		"b列":  model.TextCell("x"),
		"a列":  model.NumberCell(1),
		"__x": model.TextCell("内部"),
	}
	got := displaySchema(snapshot)
	if len(got) != 2 || got[0] != "a列" || got[1] != "b列" {
		t.Fatalf("schema = %v", got)
	}
}
