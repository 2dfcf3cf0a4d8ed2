package parser

import (
	"fmt"
	"strings"

	"sheetdesk/internal/model"
)

// 表头只在前若干行里找；再往下基本都是数据区了
const headerScanLimit = 5

// ParseSheet 将原始行矩阵解析为带类型的 Sheet。
// 工作簿二进制解码由上游完成，这里只接收纯文本矩阵。
func ParseSheet(name string, matrix [][]string) (*model.Sheet, error) {
	headerIdx := detectHeaderRow(matrix)

	if headerIdx >= len(matrix) {
		return nil, fmt.Errorf("sheet %q: %w", name, model.ErrNoHeader)
	}

	columns := buildColumns(matrix[headerIdx])
	if len(columns) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", name, model.ErrNoHeader)
	}

	sheet := &model.Sheet{
		Name:    name,
		Columns: make([]model.Column, 0, len(columns)),
	}
	for _, c := range columns {
		sheet.Columns = append(sheet.Columns, model.Column{Title: c.title, Kind: model.ColumnSource})
	}

	key := 0
	for _, raw := range matrix[headerIdx+1:] {
		if isEmptyRow(raw) {
			continue
		}
		values := make(map[string]model.CellValue, len(columns))
		for _, c := range columns {
			values[c.title] = coerceCell(getCell(raw, c.index))
		}
		sheet.Rows = append(sheet.Rows, &model.Row{Key: key, Values: values})
		key++
	}

	return sheet, nil
}

// detectHeaderRow 在前 headerScanLimit 行内找第一个含 >=2 个
// 非空文本单元格的行；找不到则回退到第 0 行。
// 纯数字单元格不算文本：数据区的行不应被误认成表头。
func detectHeaderRow(matrix [][]string) int {
	limit := headerScanLimit
	if limit > len(matrix) {
		limit = len(matrix)
	}
	for i := 0; i < limit; i++ {
		textCells := 0
		for _, cell := range matrix[i] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if _, ok := tryParseNumber(cell); ok {
				continue
			}
			textCells++
		}
		if textCells >= 2 {
			return i
		}
	}
	return 0
}

type headerColumn struct {
	title string
	index int
}

// buildColumns 由表头行构建列清单：去首尾空白、丢弃空白表头、
// 保留原始顺序；重复标题按出现次序加序号后缀，保证同表内唯一。
func buildColumns(header []string) []headerColumn {
	seen := make(map[string]int)
	out := make([]headerColumn, 0, len(header))
	for i, h := range header {
		title := strings.TrimSpace(h)
		if title == "" {
			continue
		}
		seen[title]++
		if n := seen[title]; n > 1 {
			title = fmt.Sprintf("%s_%d", title, n)
			seen[title]++
		}
		out = append(out, headerColumn{title: title, index: i})
	}
	return out
}

// isEmptyRow 整行是否都是空白
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// coerceCell 单元格类型归一：数值 -> Number，日期 -> 规范化日期文本，
// 其余 -> 去空白文本，空白 -> Empty
func coerceCell(raw string) model.CellValue {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.EmptyCell()
	}
	if f, ok := tryParseNumber(s); ok {
		return model.NumberCell(f)
	}
	if d, ok := tryParseDate(s); ok {
		return model.TextCell(d)
	}
	return model.TextCell(s)
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
