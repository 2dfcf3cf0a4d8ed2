package parser

import (
	"strconv"
	"strings"
	"time"
)

// tryParseNumber 尝试按数值解析（容忍千分位分隔符）
func tryParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// excelize 输出的日期格式随单元格样式变化，这里只认常见的几种
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006年1月2日",
	"01-02-06", // excelize 默认 m-d-yy 样式
	"1/2/06",
}

// tryParseDate 尝试按日期解析，成功则规范化为 2006-01-02
func tryParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
