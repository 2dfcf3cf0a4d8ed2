package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"sheetdesk/internal/model"
)

// SheetBatch 一张 sheet 在一次导入中的整批行
type SheetBatch struct {
	SheetName string
	Rows      []*model.PersistedRow
}

// ReplacePeriodRows 周期全量替换：同一事务内先删掉
// (owner_id, data_year, data_month) 下的全部旧行再插入新行，
// 读方看不到删完未插的中间态；后发起的导入整体覆盖先到的。
// 单张 sheet 插入失败只记入返回的 map，其余 sheet 照常提交。
func (s *Store) ReplacePeriodRows(ownerID string, year, month int, batches []SheetBatch) (map[string]error, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM table_rows WHERE owner_id = ? AND data_year = ? AND data_month = ?",
		ownerID, year, month,
	); err != nil {
		return nil, fmt.Errorf("failed to clear period: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO table_rows (
			owner_id, sheet_name, row_no, snapshot,
			data_year, data_month,
			amount, flow_type, occurred_on
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	sheetErrs := make(map[string]error)

	// 每张 sheet 一个 SAVEPOINT：该 sheet 插入失败时整张回滚，
	// 不留半截数据，但不影响其他 sheet
	for i, batch := range batches {
		sp := fmt.Sprintf("sheet_%d", i)
		if _, err := tx.Exec("SAVEPOINT " + sp); err != nil {
			return nil, fmt.Errorf("failed to create savepoint: %w", err)
		}
		if err := insertBatch(stmt, batch); err != nil {
			sheetErrs[batch.SheetName] = err
			if _, rbErr := tx.Exec("ROLLBACK TO " + sp); rbErr != nil {
				return nil, fmt.Errorf("failed to rollback savepoint: %w", rbErr)
			}
		}
		if _, err := tx.Exec("RELEASE " + sp); err != nil {
			return nil, fmt.Errorf("failed to release savepoint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return sheetErrs, nil
}

func insertBatch(stmt *sql.Stmt, batch SheetBatch) error {
	for _, r := range batch.Rows {
		snapshot, err := json.Marshal(r.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		var amount interface{}
		if r.Amount != nil {
			amount = *r.Amount
		}
		if _, err := stmt.Exec(
			r.OwnerID, r.SheetName, r.RowNo, string(snapshot),
			r.DataYear, r.DataMonth,
			amount, r.FlowType, r.OccurredOn,
		); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r.RowNo, err)
		}
	}
	return nil
}

// GetRowsByPeriod 读取某一周期槽下的全部行（按 sheet、原始序号排序）
func (s *Store) GetRowsByPeriod(ownerID string, year, month int) ([]*model.PersistedRow, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, sheet_name, row_no, snapshot,
		       data_year, data_month,
		       amount, flow_type, occurred_on, created_at
		FROM table_rows
		WHERE owner_id = ? AND data_year = ? AND data_month = ?
		ORDER BY id
	`, ownerID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query period rows: %w", err)
	}
	defer rows.Close()

	return scanPersistedRows(rows)
}

// GetRowsByMonthRange 读取闭区间 [startYear-startMonth, endYear-endMonth]
// 覆盖的所有周期槽的行
func (s *Store) GetRowsByMonthRange(ownerID string, startYear, startMonth, endYear, endMonth int) ([]*model.PersistedRow, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, sheet_name, row_no, snapshot,
		       data_year, data_month,
		       amount, flow_type, occurred_on, created_at
		FROM table_rows
		WHERE owner_id = ?
		  AND (data_year * 100 + data_month) BETWEEN ? AND ?
		ORDER BY data_year, data_month, id
	`, ownerID, startYear*100+startMonth, endYear*100+endMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to query range rows: %w", err)
	}
	defer rows.Close()

	return scanPersistedRows(rows)
}

// CountRowsByPeriod 统计某一周期槽下的行数
func (s *Store) CountRowsByPeriod(ownerID string, year, month int) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM table_rows WHERE owner_id = ? AND data_year = ? AND data_month = ?",
		ownerID, year, month,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count period rows: %w", err)
	}
	return count, nil
}

// DeletePeriodRows 显式删除某一周期槽的全部行
func (s *Store) DeletePeriodRows(ownerID string, year, month int) error {
	_, err := s.db.Exec(
		"DELETE FROM table_rows WHERE owner_id = ? AND data_year = ? AND data_month = ?",
		ownerID, year, month,
	)
	if err != nil {
		return fmt.Errorf("failed to delete period rows: %w", err)
	}
	return nil
}

// scanPersistedRows 扫描多行表格数据
func scanPersistedRows(rows *sql.Rows) ([]*model.PersistedRow, error) {
	var results []*model.PersistedRow

	for rows.Next() {
		r := &model.PersistedRow{}
		var snapshot string
		var amount sql.NullFloat64
		err := rows.Scan(
			&r.ID, &r.OwnerID, &r.SheetName, &r.RowNo, &snapshot,
			&r.DataYear, &r.DataMonth,
			&amount, &r.FlowType, &r.OccurredOn, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if amount.Valid {
			v := amount.Float64
			r.Amount = &v
		}
		if err := json.Unmarshal([]byte(snapshot), &r.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}
