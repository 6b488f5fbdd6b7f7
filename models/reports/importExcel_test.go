package reports

import (
	"bytes"
	"io"
	"testing"

	"github.com/xuri/excelize/v2"
)

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

func sheetBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenRowsSkipsHeader(t *testing.T) {
	data := sheetBytes(t, [][]interface{}{
		{"Code", "Name"},
		{"C-1", "Jane Roe"},
		{"C-2", "John Poe"},
	})

	rows, err := openRows(bytesReader(data))
	if err != nil {
		t.Fatalf("openRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if cell(rows[0], 0) != "C-1" || cell(rows[1], 1) != "John Poe" {
		t.Errorf("rows = %v", rows)
	}
}

func TestOpenRowsHeaderOnly(t *testing.T) {
	data := sheetBytes(t, [][]interface{}{{"Code", "Name"}})
	rows, err := openRows(bytesReader(data))
	if err != nil {
		t.Fatalf("openRows: %v", err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestCellHelpers(t *testing.T) {
	row := []string{"  a  ", ""}
	if cell(row, 0) != "a" {
		t.Errorf("cell trims: %q", cell(row, 0))
	}
	if cell(row, 5) != "" {
		t.Error("cell out of range must be empty")
	}
	if optCell(row, 1) != nil {
		t.Error("optCell of empty must be nil")
	}
	if v := optCell(row, 0); v == nil || *v != "a" {
		t.Errorf("optCell = %v", v)
	}
	if !isBlankRow([]string{"", "  ", ""}) {
		t.Error("isBlankRow false negative")
	}
	if isBlankRow(row) {
		t.Error("isBlankRow false positive")
	}
}
