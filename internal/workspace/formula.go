package workspace

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sheetdesk/internal/model"
)

// formulaSet 一张 sheet 的公式集合。
// 公式间按结果列建依赖图，重算按拓扑序执行，保证链式计算列
// （B 的操作数是 A 的结果列）永远读到新值；成环在注册时拒绝。
type formulaSet struct {
	formulas []model.Formula          // 注册顺序
	byResult map[string]model.Formula // 结果列 -> 公式
	ordered  []model.Formula          // 拓扑序缓存，注册/注销时重建
}

func newFormulaSet() *formulaSet {
	return &formulaSet{
		byResult: make(map[string]model.Formula),
	}
}

// register 登记公式；会形成依赖环时返回 ErrCyclicFormula，集合不变
func (fs *formulaSet) register(f model.Formula) error {
	if _, exists := fs.byResult[f.Result]; exists {
		return fmt.Errorf("formula for column %q: %w", f.Result, model.ErrDuplicateColumn)
	}

	fs.byResult[f.Result] = f
	fs.formulas = append(fs.formulas, f)

	ordered, ok := fs.topoOrder()
	if !ok {
		// 回滚
		delete(fs.byResult, f.Result)
		fs.formulas = fs.formulas[:len(fs.formulas)-1]
		return fmt.Errorf("formula for column %q: %w", f.Result, model.ErrCyclicFormula)
	}
	fs.ordered = ordered
	return nil
}

// list 按注册顺序返回公式拷贝
func (fs *formulaSet) list() []model.Formula {
	out := make([]model.Formula, len(fs.formulas))
	copy(out, fs.formulas)
	return out
}

// pruneMissing 注销结果列已不存在于 sheet 的公式（重置后使用）
func (fs *formulaSet) pruneMissing(sheet *model.Sheet) {
	kept := fs.formulas[:0]
	for _, f := range fs.formulas {
		if sheet.HasColumn(f.Result) {
			kept = append(kept, f)
		} else {
			delete(fs.byResult, f.Result)
		}
	}
	fs.formulas = kept
	fs.ordered, _ = fs.topoOrder()
}

// applyRow 按拓扑序对单行套用全部公式
func (fs *formulaSet) applyRow(row *model.Row) {
	for _, f := range fs.ordered {
		row.Values[f.Result] = evalFormula(f, row)
	}
}

// topoOrder 对公式做拓扑排序（Kahn 算法）。
// 就绪节点按注册顺序出队，保证无依赖关系时行为与注册顺序一致。
// 有环时返回 ok=false。
func (fs *formulaSet) topoOrder() ([]model.Formula, bool) {
	// f 依赖 g：f 的某个操作数是 g 的结果列
	indegree := make(map[string]int, len(fs.formulas))
	dependents := make(map[string][]string) // g.Result -> 依赖它的结果列

	for _, f := range fs.formulas {
		indegree[f.Result] += 0
		for _, operand := range []string{f.OperandA, f.OperandB} {
			if _, isResult := fs.byResult[operand]; isResult {
				indegree[f.Result]++
				dependents[operand] = append(dependents[operand], f.Result)
			}
		}
	}

	ordered := make([]model.Formula, 0, len(fs.formulas))
	for {
		progressed := false
		for _, f := range fs.formulas {
			deg, pending := indegree[f.Result]
			if !pending || deg != 0 {
				continue
			}
			ordered = append(ordered, f)
			delete(indegree, f.Result)
			for _, dep := range dependents[f.Result] {
				indegree[dep]--
			}
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if len(ordered) != len(fs.formulas) {
		return nil, false
	}
	return ordered, true
}

// evalFormula 对单行求值：操作数按数值解析，空/非数值按 0；
// 除零得 0，不产生 NaN/Inf；结果四舍五入（远离零）保留 2 位。
func evalFormula(f model.Formula, row *model.Row) model.CellValue {
	a := row.Values[f.OperandA].Float()
	b := row.Values[f.OperandB].Float()

	var result float64
	switch f.Operator {
	case model.OpAdd:
		result = a + b
	case model.OpSubtract:
		result = a - b
	case model.OpMultiply:
		result = a * b
	case model.OpDivide:
		if b == 0 {
			result = 0
		} else {
			result = a / b
		}
	default:
		result = 0
	}

	rounded, _ := decimal.NewFromFloat(result).Round(2).Float64()
	return model.NumberCell(rounded)
}
