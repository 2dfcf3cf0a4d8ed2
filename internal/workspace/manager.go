package workspace

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"sheetdesk/internal/model"
)

// Manager 工作区注册表。工作区只存在于内存，随服务重启而消失；
// 落库走导入链路，工作区本身从不回读存储。
type Manager struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewManager 创建注册表
func NewManager() *Manager {
	return &Manager{
		workspaces: make(map[string]*Workspace),
	}
}

// Create 登记一个新工作区并分配 ID
func (m *Manager) Create(fileName string, sheets []*model.Sheet) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws := NewWorkspace(uuid.New().String(), fileName, sheets)
	m.workspaces[ws.ID] = ws
	return ws
}

// Get 按 ID 取工作区
func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ws, ok := m.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("workspace %q: %w", id, model.ErrWorkspaceNotFound)
	}
	return ws, nil
}

// Delete 释放工作区
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workspaces, id)
}

// Count 当前工作区数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}
