package store

import "fmt"

// PeriodStat 存在数据的周期槽统计
type PeriodStat struct {
	Year       int `json:"year"`
	Month      int `json:"month"`
	SheetCount int `json:"sheetCount"`
	RowCount   int `json:"rowCount"`
}

// ListAvailablePeriods 列出某 owner 名下存在数据的年月（按年/月倒序）
func (s *Store) ListAvailablePeriods(ownerID string) ([]PeriodStat, error) {
	rows, err := s.db.Query(`
		SELECT data_year, data_month,
		       COUNT(DISTINCT sheet_name) AS sheet_count,
		       COUNT(1) AS row_count
		FROM table_rows
		WHERE owner_id = ?
		GROUP BY data_year, data_month
		ORDER BY data_year DESC, data_month DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query available periods failed: %w", err)
	}
	defer rows.Close()

	var out []PeriodStat
	for rows.Next() {
		var it PeriodStat
		if err := rows.Scan(&it.Year, &it.Month, &it.SheetCount, &it.RowCount); err != nil {
			return nil, fmt.Errorf("scan available periods failed: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate available periods failed: %w", err)
	}
	return out, nil
}
