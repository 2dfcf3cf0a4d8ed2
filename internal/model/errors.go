package model

import "errors"

var (
	// ErrNoHeader 前 5 行内找不到可用表头
	ErrNoHeader = errors.New("no usable header row")

	// ErrDuplicateColumn 列标题重复
	ErrDuplicateColumn = errors.New("duplicate column title")

	// ErrUnknownColumn 操作数或目标列不存在
	ErrUnknownColumn = errors.New("unknown column")

	// ErrCyclicFormula 计算列依赖成环
	ErrCyclicFormula = errors.New("cyclic formula dependency")

	// ErrUnknownOperator 不支持的运算符
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrRowNotFound 行不存在
	ErrRowNotFound = errors.New("row not found")

	// ErrBadReorder 重排位置越界
	ErrBadReorder = errors.New("reorder position out of range")

	// ErrSessionOpen 当前 sheet 已有未结束的编辑会话
	ErrSessionOpen = errors.New("edit session already open")

	// ErrSessionNotFound 编辑会话不存在或已结束
	ErrSessionNotFound = errors.New("edit session not found")

	// ErrSheetNotFound 工作区内不存在该 sheet
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrWorkspaceNotFound 工作区不存在或已过期
	ErrWorkspaceNotFound = errors.New("workspace not found")
)
