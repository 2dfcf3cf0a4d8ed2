package model

// ColumnKind 列类型
type ColumnKind string

const (
	ColumnSource     ColumnKind = "source"     // 用户录入列
	ColumnCalculated ColumnKind = "calculated" // 公式计算列
)

// Column 列描述（标题在同一 sheet 内唯一）
type Column struct {
	Title string     `json:"title"`
	Kind  ColumnKind `json:"kind"`
}

// Operator 公式运算符
type Operator string

const (
	OpAdd      Operator = "add"
	OpSubtract Operator = "subtract"
	OpMultiply Operator = "multiply"
	OpDivide   Operator = "divide"
)

// Valid 运算符是否合法
func (op Operator) Valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// Formula 双操作数计算列公式（按列名绑定，列重排不影响）
type Formula struct {
	Result   string   `json:"result"`
	OperandA string   `json:"operandA"`
	OperandB string   `json:"operandB"`
	Operator Operator `json:"operator"`
}

// Row 数据行。Key 在解析时分配，删除后不复用。
type Row struct {
	Key    int                  `json:"key"`
	Values map[string]CellValue `json:"values"`
}

// Clone 深拷贝行
func (r *Row) Clone() *Row {
	values := make(map[string]CellValue, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return &Row{Key: r.Key, Values: values}
}

// Sheet 一张逻辑表：解析自上传工作簿的一个工作表
type Sheet struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    []*Row   `json:"rows"`
}

// Clone 深拷贝 sheet（用于编辑缓冲与基线互拷）
func (s *Sheet) Clone() *Sheet {
	columns := make([]Column, len(s.Columns))
	copy(columns, s.Columns)
	rows := make([]*Row, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = r.Clone()
	}
	return &Sheet{Name: s.Name, Columns: columns, Rows: rows}
}

// HasColumn 是否存在指定标题的列
func (s *Sheet) HasColumn(title string) bool {
	for _, c := range s.Columns {
		if c.Title == title {
			return true
		}
	}
	return false
}

// RowByKey 按 key 查行，不存在返回 nil
func (s *Sheet) RowByKey(key int) *Row {
	for _, r := range s.Rows {
		if r.Key == key {
			return r
		}
	}
	return nil
}
