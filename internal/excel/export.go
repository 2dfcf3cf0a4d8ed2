package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"sheetdesk/internal/model"
)

// BuildMonthlyReport 把月度聚合视图导出为工作簿：
// 每个来源 sheet 一个工作表，另加一张汇总表
func BuildMonthlyReport(view *model.MonthlyView, year, month int) (*excelize.File, error) {
	f := excelize.NewFile()

	summaryName := "汇总"
	if err := f.SetSheetName("Sheet1", summaryName); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	summaryHeader := []interface{}{"来源表", "行数", "收入合计", "支出合计"}
	if err := f.SetSheetRow(summaryName, "A1", &summaryHeader); err != nil {
		return nil, fmt.Errorf("failed to write summary header: %w", err)
	}

	summaryRow := 2
	for _, group := range view.Sheets {
		row := []interface{}{group.Name, group.RowCount, group.IncomeTotal, group.ExpenseTotal}
		cell, err := excelize.CoordinatesToCellName(1, summaryRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summaryName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
		summaryRow++

		// “全部”合成分组只有汇总，没有行数据，不单独出表
		if len(group.Rows) == 0 {
			continue
		}
		if err := writeGroupSheet(f, group); err != nil {
			return nil, err
		}
	}

	titleCell, err := excelize.CoordinatesToCellName(1, summaryRow+1)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%d年%d月 共 %d 表 %d 行", year, month, view.TotalSheets, view.TotalRecords)
	if err := f.SetCellValue(summaryName, titleCell, title); err != nil {
		return nil, fmt.Errorf("failed to write summary footer: %w", err)
	}

	return f, nil
}

// writeGroupSheet 写出单个分组的数据工作表
func writeGroupSheet(f *excelize.File, group model.SheetGroup) error {
	if _, err := f.NewSheet(group.Name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", group.Name, err)
	}

	header := make([]interface{}, 0, len(group.ColumnSchema))
	for _, title := range group.ColumnSchema {
		header = append(header, title)
	}
	if err := f.SetSheetRow(group.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", group.Name, err)
	}

	for i, rowValues := range group.Rows {
		row := make([]interface{}, 0, len(group.ColumnSchema))
		for _, title := range group.ColumnSchema {
			row = append(row, cellToExcel(rowValues[title]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(group.Name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i, group.Name, err)
		}
	}

	return nil
}

func cellToExcel(v model.CellValue) interface{} {
	switch v.Kind {
	case model.CellNumber:
		return v.Number
	case model.CellText:
		return v.Text
	default:
		return nil
	}
}
