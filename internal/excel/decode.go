package excel

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"sheetdesk/internal/model"
	"sheetdesk/internal/parser"
)

// Decoder 工作簿解码器：工作簿二进制解析交给 excelize，
// 这里只负责把每个工作表变成纯文本矩阵再交给 SheetParser
type Decoder struct {
	file   *excelize.File
	fileID string
}

// OpenWorkbook 从上传流打开工作簿
func OpenWorkbook(reader io.Reader) (*Decoder, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Decoder{
		file:   file,
		fileID: uuid.New().String(),
	}, nil
}

// FileID 获取文件 ID
func (d *Decoder) FileID() string {
	return d.fileID
}

// ParseAll 解析全部工作表。找不到可用表头的工作表跳过，
// 名字记入第二个返回值；一张都解析不出来才算失败。
func (d *Decoder) ParseAll() ([]*model.Sheet, []string, error) {
	sheetList := d.file.GetSheetList()

	var sheets []*model.Sheet
	var skipped []string

	for _, name := range sheetList {
		matrix, err := d.file.GetRows(name)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		sheet, err := parser.ParseSheet(name, matrix)
		if err != nil {
			if errors.Is(err, model.ErrNoHeader) {
				skipped = append(skipped, name)
				continue
			}
			return nil, nil, err
		}
		sheets = append(sheets, sheet)
	}

	if len(sheets) == 0 {
		return nil, skipped, fmt.Errorf("workbook has no parsable sheet: %w", model.ErrNoHeader)
	}
	return sheets, skipped, nil
}

// Close 关闭文件
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
