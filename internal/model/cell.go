package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CellKind 单元格值类型
type CellKind int

const (
	CellEmpty  CellKind = iota // 空值
	CellText                   // 文本
	CellNumber                 // 数值
)

// CellValue 单元格值（带类型标签，避免无类型字典）
type CellValue struct {
	Kind   CellKind
	Text   string
	Number float64
}

// EmptyCell 空单元格
func EmptyCell() CellValue {
	return CellValue{Kind: CellEmpty}
}

// TextCell 文本单元格
func TextCell(s string) CellValue {
	return CellValue{Kind: CellText, Text: s}
}

// NumberCell 数值单元格
func NumberCell(f float64) CellValue {
	return CellValue{Kind: CellNumber, Number: f}
}

// IsEmpty 是否为空值
func (v CellValue) IsEmpty() bool {
	return v.Kind == CellEmpty
}

// String 文本表示（数值按最短形式输出）
func (v CellValue) String() string {
	switch v.Kind {
	case CellNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case CellText:
		return v.Text
	default:
		return ""
	}
}

// Float 按公式口径取数值：空值/非数值文本一律按 0 计算
func (v CellValue) Float() float64 {
	switch v.Kind {
	case CellNumber:
		return v.Number
	case CellText:
		s := strings.ReplaceAll(strings.TrimSpace(v.Text), ",", "")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// MarshalJSON 空值输出 null，数值输出数字，文本输出字符串
func (v CellValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case CellNumber:
		return json.Marshal(v.Number)
	case CellText:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON 从 JSON 还原单元格值
func (v *CellValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = EmptyCell()
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = TextCell(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = NumberCell(f)
	return nil
}
