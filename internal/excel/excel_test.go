package excel

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"sheetdesk/internal/model"
)

// buildWorkbook 在内存里构造一个工作簿
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName failed: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet failed: %v", err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName failed: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow failed: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf
}

func TestDecoder_ParseAll(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"商品表": {
			{"品名", "单价", "数量"},
			{"苹果", 5.5, 3},
			{"香蕉", 3, 10},
		},
	})

	d, err := OpenWorkbook(buf)
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer d.Close()

	if d.FileID() == "" {
		t.Fatal("FileID 为空")
	}

	sheets, skipped, err := d.ParseAll()
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v", skipped)
	}
	if len(sheets) != 1 {
		t.Fatalf("sheet count = %d", len(sheets))
	}

	sheet := sheets[0]
	if sheet.Name != "商品表" || len(sheet.Columns) != 3 || len(sheet.Rows) != 2 {
		t.Fatalf("sheet = %+v", sheet)
	}
	if sheet.Rows[0].Values["单价"] != model.NumberCell(5.5) {
		t.Fatalf("单价 = %+v", sheet.Rows[0].Values["单价"])
	}
}

// 没有表头的工作表跳过不报错，一张都解析不出来才失败
func TestDecoder_SkipsHeaderlessSheets(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"好表": {
			{"日期", "金额"},
			{"2026-01-05", 100},
		},
		"空表": {},
	})

	d, err := OpenWorkbook(buf)
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer d.Close()

	sheets, skipped, err := d.ParseAll()
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "好表" {
		t.Fatalf("sheets = %+v", sheets)
	}
	if len(skipped) != 1 || skipped[0] != "空表" {
		t.Fatalf("skipped = %v", skipped)
	}
}

func TestDecoder_AllSheetsHeaderless(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"空表": {},
	})

	d, err := OpenWorkbook(buf)
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer d.Close()

	if _, _, err := d.ParseAll(); err == nil {
		t.Fatal("期望报错")
	}
}

func TestBuildMonthlyReport(t *testing.T) {
	view := &model.MonthlyView{
		Sheets: []model.SheetGroup{
			{
				Name:         "汇总表",
				ColumnSchema: []string{"摘要", "金额"},
				Rows: []map[string]model.CellValue{
					{"摘要": model.TextCell("房租"), "金额": model.NumberCell(-6000)},
					{"摘要": model.TextCell("工资"), "金额": model.NumberCell(2500)},
				},
				RowCount:     2,
				IncomeTotal:  2500,
				ExpenseTotal: 6000,
			},
			{
				Name:         "全部",
				RowCount:     2,
				IncomeTotal:  2500,
				ExpenseTotal: 6000,
			},
		},
		TotalSheets:  1,
		TotalRecords: 2,
		Summary:      model.MonthlySummary{TotalIncome: 2500, TotalExpense: 6000, TotalCount: 2},
	}

	f, err := BuildMonthlyReport(view, 2026, 1)
	if err != nil {
		t.Fatalf("BuildMonthlyReport failed: %v", err)
	}
	defer f.Close()

	// 汇总表 + 数据表；“全部”没有行数据，不单独出表
	list := f.GetSheetList()
	if len(list) != 2 || list[0] != "汇总" {
		t.Fatalf("sheet list = %v", list)
	}

	name, err := f.GetCellValue("汇总", "A2")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if name != "汇总表" {
		t.Fatalf("A2 = %q", name)
	}

	header, _ := f.GetCellValue("汇总表", "B1")
	if header != "金额" {
		t.Fatalf("B1 = %q", header)
	}
	amount, _ := f.GetCellValue("汇总表", "B2")
	if amount != "-6000" {
		t.Fatalf("B2 = %q", amount)
	}
}
