package workspace

import (
	"fmt"

	"github.com/google/uuid"

	"sheetdesk/internal/model"
)

// EditSession 显式的行编辑会话。
// 取代“当前正在编辑哪一行”这类游离状态：会话由 BeginEdit 发起，
// 必须以 Commit 或 Cancel 结束；约束由工作区保证而不是靠 UI 自觉。
type EditSession struct {
	ID     string `json:"id"`
	Sheet  string `json:"sheet"`
	RowKey int    `json:"rowKey"`

	snapshot *model.Row // 开启会话时的行快照，Cancel 时还原
}

// BeginEdit 对指定行开启编辑会话；同一 sheet 同时只允许一个
func (w *Workspace) BeginEdit(name string, key int) (*EditSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return nil, err
	}

	if st.session != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, model.ErrSessionOpen)
	}
	row := st.buffer.RowByKey(key)
	if row == nil {
		return nil, fmt.Errorf("sheet %q row %d: %w", name, key, model.ErrRowNotFound)
	}

	st.session = &EditSession{
		ID:       uuid.New().String(),
		Sheet:    name,
		RowKey:   key,
		snapshot: row.Clone(),
	}
	return st.session, nil
}

// CommitEdit 提交会话：保留编辑结果，仅结束会话
func (w *Workspace) CommitEdit(name, sessionID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}

	if st.session == nil || st.session.ID != sessionID {
		return fmt.Errorf("sheet %q session %q: %w", name, sessionID, model.ErrSessionNotFound)
	}
	st.session = nil
	return nil
}

// CancelEdit 取消会话：把行恢复到会话开启时的快照
func (w *Workspace) CancelEdit(name, sessionID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, err := w.state(name)
	if err != nil {
		return err
	}

	if st.session == nil || st.session.ID != sessionID {
		return fmt.Errorf("sheet %q session %q: %w", name, sessionID, model.ErrSessionNotFound)
	}

	// 行可能在会话期间被删除；还在才还原
	if row := st.buffer.RowByKey(st.session.RowKey); row != nil {
		row.Values = st.session.snapshot.Clone().Values
	}
	st.session = nil
	return nil
}
