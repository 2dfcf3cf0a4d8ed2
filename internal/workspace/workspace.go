package workspace

import (
	"fmt"
	"sync"

	"sheetdesk/internal/model"
)

// sheetState 单张 sheet 的工作区状态：编辑缓冲 + 已保存基线
type sheetState struct {
	buffer   *model.Sheet
	baseline *model.Sheet
	dirty    bool
	formulas *formulaSet
	session  *EditSession // 同一 sheet 最多一个未结束的编辑会话
	nextKey  int
}

// Workspace 一次上传对应的内存工作区。编辑只发生在缓冲上，
// 保存/重置在缓冲与基线之间整体拷贝。所有修改经 mu 串行化。
type Workspace struct {
	ID       string
	FileName string

	mu     sync.Mutex
	sheets map[string]*sheetState
	order  []string
}

// NewWorkspace 由解析结果构建工作区，基线即初始解析数据
func NewWorkspace(id, fileName string, sheets []*model.Sheet) *Workspace {
	ws := &Workspace{
		ID:       id,
		FileName: fileName,
		sheets:   make(map[string]*sheetState, len(sheets)),
	}
	for _, s := range sheets {
		ws.sheets[s.Name] = &sheetState{
			buffer:   s,
			baseline: s.Clone(),
			formulas: newFormulaSet(),
			nextKey:  len(s.Rows),
		}
		ws.order = append(ws.order, s.Name)
	}
	return ws
}

// SheetNames 按原始顺序返回 sheet 名
func (w *Workspace) SheetNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Sheet 返回指定 sheet 当前缓冲的拷贝（调用方可安全读取）
func (w *Workspace) Sheet(name string) (*model.Sheet, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return nil, false, err
	}
	return st.buffer.Clone(), st.dirty, nil
}

// Formulas 返回指定 sheet 已注册的公式（注册顺序）
func (w *Workspace) Formulas(name string) ([]model.Formula, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return nil, err
	}
	return st.formulas.list(), nil
}

// AddRow 追加一行：所有用户列置空，随后立即套用全部公式
func (w *Workspace) AddRow(name string) (*model.Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return nil, err
	}

	values := make(map[string]model.CellValue, len(st.buffer.Columns))
	for _, c := range st.buffer.Columns {
		if c.Kind == model.ColumnSource {
			values[c.Title] = model.EmptyCell()
		}
	}
	row := &model.Row{Key: st.nextKey, Values: values}
	st.nextKey++

	st.formulas.applyRow(row)
	st.buffer.Rows = append(st.buffer.Rows, row)
	st.dirty = true
	return row.Clone(), nil
}

// EditRow 把 patch 合并进指定行的用户列。
// 计算列的值只认公式引擎，patch 里出现的计算列一律忽略。
// 只重算该行，与 sheet 行数无关。
func (w *Workspace) EditRow(name string, key int, patch map[string]model.CellValue) (*model.Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return nil, err
	}

	row := st.buffer.RowByKey(key)
	if row == nil {
		return nil, fmt.Errorf("sheet %q row %d: %w", name, key, model.ErrRowNotFound)
	}

	sourceCols := make(map[string]bool, len(st.buffer.Columns))
	for _, c := range st.buffer.Columns {
		if c.Kind == model.ColumnSource {
			sourceCols[c.Title] = true
		}
	}
	for title, v := range patch {
		if sourceCols[title] {
			row.Values[title] = v
		}
	}

	st.formulas.applyRow(row)
	st.dirty = true
	return row.Clone(), nil
}

// DeleteRow 删除一行；没有跨行公式，其他行不受影响
func (w *Workspace) DeleteRow(name string, key int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}

	for i, r := range st.buffer.Rows {
		if r.Key == key {
			st.buffer.Rows = append(st.buffer.Rows[:i], st.buffer.Rows[i+1:]...)
			st.dirty = true
			return nil
		}
	}
	return fmt.Errorf("sheet %q row %d: %w", name, key, model.ErrRowNotFound)
}

// AddColumn 新增用户列，已有行补空值。标题重复整体拒绝。
func (w *Workspace) AddColumn(name, title string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}

	if st.buffer.HasColumn(title) {
		return fmt.Errorf("column %q: %w", title, model.ErrDuplicateColumn)
	}
	st.buffer.Columns = append(st.buffer.Columns, model.Column{Title: title, Kind: model.ColumnSource})
	for _, r := range st.buffer.Rows {
		r.Values[title] = model.EmptyCell()
	}
	st.dirty = true
	return nil
}

// AddCalculatedColumn 注册计算列公式并为已有行算出初值。
// 操作数必须是已存在的列（用户列或计算列）；依赖成环直接拒绝，
// sheet 保持原样。
func (w *Workspace) AddCalculatedColumn(name, title, operandA, operandB string, op model.Operator) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}

	if st.buffer.HasColumn(title) {
		return fmt.Errorf("column %q: %w", title, model.ErrDuplicateColumn)
	}
	if !op.Valid() {
		return fmt.Errorf("operator %q: %w", op, model.ErrUnknownOperator)
	}
	if !st.buffer.HasColumn(operandA) {
		return fmt.Errorf("operand %q: %w", operandA, model.ErrUnknownColumn)
	}
	if !st.buffer.HasColumn(operandB) {
		return fmt.Errorf("operand %q: %w", operandB, model.ErrUnknownColumn)
	}

	f := model.Formula{Result: title, OperandA: operandA, OperandB: operandB, Operator: op}
	if err := st.formulas.register(f); err != nil {
		return err
	}

	st.buffer.Columns = append(st.buffer.Columns, model.Column{Title: title, Kind: model.ColumnCalculated})
	for _, r := range st.buffer.Rows {
		st.formulas.applyRow(r)
	}
	st.dirty = true
	return nil
}

// ReorderRows 行位置重排（纯置换，不触发公式）
func (w *Workspace) ReorderRows(name string, from, to int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}

	n := len(st.buffer.Rows)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("rows %d -> %d of %d: %w", from, to, n, model.ErrBadReorder)
	}
	if from == to {
		return nil
	}
	row := st.buffer.Rows[from]
	rest := append(st.buffer.Rows[:from:from], st.buffer.Rows[from+1:]...)
	rows := make([]*model.Row, 0, n)
	rows = append(rows, rest[:to]...)
	rows = append(rows, row)
	rows = append(rows, rest[to:]...)
	st.buffer.Rows = rows
	st.dirty = true
	return nil
}

// ReorderColumns 列位置重排。公式按列名绑定，重排不影响公式；
// 目标位置越界直接拒绝，绝不静默丢列。
func (w *Workspace) ReorderColumns(name string, from, to int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}

	n := len(st.buffer.Columns)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("columns %d -> %d of %d: %w", from, to, n, model.ErrBadReorder)
	}
	if from == to {
		return nil
	}
	col := st.buffer.Columns[from]
	rest := append(st.buffer.Columns[:from:from], st.buffer.Columns[from+1:]...)
	cols := make([]model.Column, 0, n)
	cols = append(cols, rest[:to]...)
	cols = append(cols, col)
	cols = append(cols, rest[to:]...)
	st.buffer.Columns = cols
	st.dirty = true
	return nil
}

// Save 基线 := 缓冲，清除脏标记
func (w *Workspace) Save(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}
	st.baseline = st.buffer.Clone()
	st.dirty = false
	return nil
}

// Reset 缓冲 := 基线，清除脏标记，并丢弃未结束的编辑会话。
// 基线里已不存在的计算列，其公式一并注销。
func (w *Workspace) Reset(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}
	st.buffer = st.baseline.Clone()
	st.dirty = false
	st.session = nil
	st.formulas.pruneMissing(st.buffer)
	return nil
}

func (w *Workspace) state(name string) (*sheetState, error) {
	st, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q: %w", name, model.ErrSheetNotFound)
	}
	return st, nil
}
