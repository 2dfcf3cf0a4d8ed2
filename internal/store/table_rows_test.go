package store

import (
	"path/filepath"
	"testing"

	"sheetdesk/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeRows(owner, sheet string, year, month, n int) []*model.PersistedRow {
	rows := make([]*model.PersistedRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, &model.PersistedRow{
			OwnerID:   owner,
			SheetName: sheet,
			RowNo:     i,
			Snapshot: map[string]model.CellValue{
				"序号": model.NumberCell(float64(i)),
				"备注": model.TextCell("行数据"),
			},
			DataYear:  year,
			DataMonth: month,
		})
	}
	return rows
}

func TestReplacePeriodRows_InsertAndRead(t *testing.T) {
	s := newTestStore(t)

	amount := -6000.0
	row := &model.PersistedRow{
		OwnerID:   "u1",
		SheetName: "汇总表",
		RowNo:     0,
		Snapshot: map[string]model.CellValue{
			"金额": model.NumberCell(-6000),
			"类型": model.TextCell("支出"),
			"空列": model.EmptyCell(),
		},
		DataYear:   2026,
		DataMonth:  1,
		Amount:     &amount,
		FlowType:   model.FlowExpense,
		OccurredOn: "2026-01-05",
	}

	sheetErrs, err := s.ReplacePeriodRows("u1", 2026, 1, []SheetBatch{
		{SheetName: "汇总表", Rows: []*model.PersistedRow{row}},
	})
	if err != nil {
		t.Fatalf("ReplacePeriodRows failed: %v", err)
	}
	if len(sheetErrs) != 0 {
		t.Fatalf("sheetErrs = %v", sheetErrs)
	}

	got, err := s.GetRowsByPeriod("u1", 2026, 1)
	if err != nil {
		t.Fatalf("GetRowsByPeriod failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("row count = %d, want 1", len(got))
	}

	r := got[0]
	if r.SheetName != "汇总表" || r.DataYear != 2026 || r.DataMonth != 1 {
		t.Fatalf("row = %+v", r)
	}
	// 快照 JSON 往返后单元格类型保持
	if r.Snapshot["金额"] != model.NumberCell(-6000) {
		t.Fatalf("金额 = %+v", r.Snapshot["金额"])
	}
	if r.Snapshot["类型"] != model.TextCell("支出") {
		t.Fatalf("类型 = %+v", r.Snapshot["类型"])
	}
	if !r.Snapshot["空列"].IsEmpty() {
		t.Fatalf("空列 = %+v", r.Snapshot["空列"])
	}
	if r.Amount == nil || *r.Amount != -6000 {
		t.Fatalf("Amount = %v", r.Amount)
	}
	if r.FlowType != model.FlowExpense || r.OccurredOn != "2026-01-05" {
		t.Fatalf("tags = %q %q", r.FlowType, r.OccurredOn)
	}
}

// 同一周期重复导入整体覆盖，行数不翻倍
func TestReplacePeriodRows_FullReplace(t *testing.T) {
	s := newTestStore(t)

	first := []SheetBatch{{SheetName: "表一", Rows: makeRows("u1", "表一", 2026, 3, 5)}}
	if _, err := s.ReplacePeriodRows("u1", 2026, 3, first); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	// 原样重导，行数不变
	if _, err := s.ReplacePeriodRows("u1", 2026, 3, first); err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if n, _ := s.CountRowsByPeriod("u1", 2026, 3); n != 5 {
		t.Fatalf("count = %d, want 5", n)
	}

	// 换成 2 行，以后发为准
	second := []SheetBatch{{SheetName: "表二", Rows: makeRows("u1", "表二", 2026, 3, 2)}}
	if _, err := s.ReplacePeriodRows("u1", 2026, 3, second); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	got, _ := s.GetRowsByPeriod("u1", 2026, 3)
	if len(got) != 2 {
		t.Fatalf("count = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.SheetName != "表二" {
			t.Fatalf("残留旧 sheet 行: %+v", r)
		}
	}
}

// 替换只作用于自己的 (owner, 年, 月)，其他槽不受影响
func TestReplacePeriodRows_SlotIsolation(t *testing.T) {
	s := newTestStore(t)

	put := func(owner string, year, month, n int) {
		t.Helper()
		batches := []SheetBatch{{SheetName: "表", Rows: makeRows(owner, "表", year, month, n)}}
		if _, err := s.ReplacePeriodRows(owner, year, month, batches); err != nil {
			t.Fatalf("import %s %d-%d failed: %v", owner, year, month, err)
		}
	}

	put("u1", 2026, 1, 3)
	put("u1", 2026, 2, 4)
	put("u2", 2026, 1, 5)

	// 覆盖 u1 的 1 月
	put("u1", 2026, 1, 1)

	checks := []struct {
		owner string
		year  int
		month int
		want  int
	}{
		{"u1", 2026, 1, 1},
		{"u1", 2026, 2, 4},
		{"u2", 2026, 1, 5},
	}
	for _, c := range checks {
		if n, _ := s.CountRowsByPeriod(c.owner, c.year, c.month); n != c.want {
			t.Fatalf("%s %d-%d count = %d, want %d", c.owner, c.year, c.month, n, c.want)
		}
	}
}

func TestGetRowsByMonthRange(t *testing.T) {
	s := newTestStore(t)

	for month := 1; month <= 4; month++ {
		batches := []SheetBatch{{SheetName: "表", Rows: makeRows("u1", "表", 2026, month, month)}}
		if _, err := s.ReplacePeriodRows("u1", 2026, month, batches); err != nil {
			t.Fatalf("import %d failed: %v", month, err)
		}
	}
	// 跨年数据用于验证 year*100+month 的边界
	batches := []SheetBatch{{SheetName: "表", Rows: makeRows("u1", "表", 2025, 12, 7)}}
	if _, err := s.ReplacePeriodRows("u1", 2025, 12, batches); err != nil {
		t.Fatalf("import 2025-12 failed: %v", err)
	}

	got, err := s.GetRowsByMonthRange("u1", 2025, 12, 2026, 2)
	if err != nil {
		t.Fatalf("GetRowsByMonthRange failed: %v", err)
	}
	// 2025-12(7) + 2026-01(1) + 2026-02(2)
	if len(got) != 10 {
		t.Fatalf("count = %d, want 10", len(got))
	}
	// 按年月升序
	if got[0].DataYear != 2025 || got[len(got)-1].DataMonth != 2 {
		t.Fatalf("排序不对: 首 %d-%d 末 %d-%d",
			got[0].DataYear, got[0].DataMonth,
			got[len(got)-1].DataYear, got[len(got)-1].DataMonth)
	}
}

func TestDeletePeriodRows(t *testing.T) {
	s := newTestStore(t)
	batches := []SheetBatch{{SheetName: "表", Rows: makeRows("u1", "表", 2026, 5, 3)}}
	if _, err := s.ReplacePeriodRows("u1", 2026, 5, batches); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if err := s.DeletePeriodRows("u1", 2026, 5); err != nil {
		t.Fatalf("DeletePeriodRows failed: %v", err)
	}
	if n, _ := s.CountRowsByPeriod("u1", 2026, 5); n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}

func TestListAvailablePeriods(t *testing.T) {
	s := newTestStore(t)

	put := func(year, month, n int) {
		t.Helper()
		batches := []SheetBatch{
			{SheetName: "表A", Rows: makeRows("u1", "表A", year, month, n)},
			{SheetName: "表B", Rows: makeRows("u1", "表B", year, month, 1)},
		}
		if _, err := s.ReplacePeriodRows("u1", year, month, batches); err != nil {
			t.Fatalf("import %d-%d failed: %v", year, month, err)
		}
	}
	put(2025, 12, 2)
	put(2026, 2, 3)
	put(2026, 1, 1)

	periods, err := s.ListAvailablePeriods("u1")
	if err != nil {
		t.Fatalf("ListAvailablePeriods failed: %v", err)
	}
	if len(periods) != 3 {
		t.Fatalf("period count = %d, want 3", len(periods))
	}

	// 年/月倒序
	want := []PeriodStat{
		{Year: 2026, Month: 2, SheetCount: 2, RowCount: 4},
		{Year: 2026, Month: 1, SheetCount: 2, RowCount: 2},
		{Year: 2025, Month: 12, SheetCount: 2, RowCount: 3},
	}
	for i, w := range want {
		if periods[i] != w {
			t.Fatalf("periods[%d] = %+v, want %+v", i, periods[i], w)
		}
	}

	// 其他 owner 看不到
	other, _ := s.ListAvailablePeriods("u2")
	if len(other) != 0 {
		t.Fatalf("u2 period count = %d, want 0", len(other))
	}
}

func TestImportLog(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateImportLog("u1", "账目.xlsx", 2026, 1)
	if err != nil {
		t.Fatalf("CreateImportLog failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("id = %d", id)
	}

	if err := s.UpdateImportLog(id, 3, 2, 1, 42, "partial", "表三插入失败"); err != nil {
		t.Fatalf("UpdateImportLog failed: %v", err)
	}

	var status string
	var importedRows int
	err = s.db.QueryRow("SELECT status, imported_rows FROM import_logs WHERE id = ?", id).
		Scan(&status, &importedRows)
	if err != nil {
		t.Fatalf("query log failed: %v", err)
	}
	if status != "partial" || importedRows != 42 {
		t.Fatalf("status = %q rows = %d", status, importedRows)
	}
}
