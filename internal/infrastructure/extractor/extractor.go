package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/core/ports"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Extractor turns stored inventory files into newline separated rows.
type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, upload *domain.Upload) (string, error) {
	reader, err := e.storage.Open(ctx, upload.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source file: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}

	if isSpreadsheet(upload) {
		return sheetText(raw)
	}
	return decodeText(raw)
}

func isSpreadsheet(upload *domain.Upload) bool {
	return upload.MimeType == xlsxMime || strings.EqualFold(filepath.Ext(upload.Filename), ".xlsx")
}

// decodeText accepts UTF-8 and falls back to Windows-1252, the encoding
// spreadsheet CSV exports use on Windows.
func decodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "decode inventory text", fmt.Errorf("binary content is not supported"))
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "decode inventory text", err)
	}
	return string(decoded), nil
}

// sheetText renders the first worksheet as tab separated lines, one per row.
func sheetText(raw []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "read spreadsheet rows", err)
	}

	cellCleaner := strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellCleaner.Replace(cell)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n"), nil
}
