package extractor

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vasii/catalog/internal/core/domain"
)

type storageFake struct {
	files map[string][]byte
}

func (s *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.files[key] = raw
	return nil
}

func (s *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := s.files[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "open", io.EOF)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func TestExtractPlainText(t *testing.T) {
	storage := &storageFake{files: map[string][]byte{"k": []byte("401,WOMEN,Blusas\n402,MEN,Camisas")}}
	text, err := New(storage).Extract(context.Background(), &domain.Upload{StoragePath: "k", Filename: "inv.csv", MimeType: "text/csv"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "401,WOMEN,Blusas\n402,MEN,Camisas" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDecodesWindows1252(t *testing.T) {
	// "Única" and "Niña" as exported by a Windows spreadsheet.
	raw := []byte("401,KIDS,Ni\xf1a,\xdanica")
	storage := &storageFake{files: map[string][]byte{"k": raw}}
	text, err := New(storage).Extract(context.Background(), &domain.Upload{StoragePath: "k", Filename: "inv.csv"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "401,KIDS,Niña,Única" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	storage := &storageFake{files: map[string][]byte{"k": {0x00, 0xff, 0x10}}}
	_, err := New(storage).Extract(context.Background(), &domain.Upload{StoragePath: "k", Filename: "inv.txt"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestExtractSpreadsheetFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"ID", "Categoría", "Subcategoría", "Talla"},
		{401, "WOMEN", "Vestidos", "M", "Algodón", "", "https://cdn.example.com/401.jpg", "$ 85.000"},
		{402, "MEN", "Camisas\nmanga larga", "L"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetCellValue("Other", "A1", "ignored")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	storage := &storageFake{files: map[string][]byte{"k": buf.Bytes()}}
	text, err := New(storage).Extract(context.Background(), &domain.Upload{StoragePath: "k", Filename: "inventario.xlsx"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), text)
	}
	if lines[1] != "401\tWOMEN\tVestidos\tM\tAlgodón\t\thttps://cdn.example.com/401.jpg\t$ 85.000" {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if lines[2] != "402\tMEN\tCamisas manga larga\tL" {
		t.Fatalf("embedded newline not flattened: %q", lines[2])
	}
	if strings.Contains(text, "ignored") {
		t.Fatalf("only the first sheet should be read")
	}
}

func TestExtractCorruptSpreadsheet(t *testing.T) {
	storage := &storageFake{files: map[string][]byte{"k": []byte("not a zip")}}
	_, err := New(storage).Extract(context.Background(), &domain.Upload{StoragePath: "k", Filename: "x.xlsx"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
