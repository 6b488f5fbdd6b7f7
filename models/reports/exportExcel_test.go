package reports

import (
	"strconv"
	"testing"
	"time"

	"github.com/assetflow/assetflow_backend/models"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestBuildInventoryWorkbook(t *testing.T) {
	detail := []*InventoryRow{
		{SerialNumber: "SN-1", ModelName: "A1", BrandName: "Acme", StatusName: "In use",
			CollaboratorName: strPtr("Jane Roe"), Value: decimal.NewFromInt(1200)},
		{SerialNumber: "SN-2", ModelName: "B2", BrandName: "Bolt", StatusName: "In stock",
			Value: decimal.NewFromInt(800)},
	}
	statusCounts := []*StatusCountRow{
		{StatusName: "In stock", Total: 1},
		{StatusName: "In use", Total: 1},
	}
	sectorCounts := []*SectorCountRow{{SectorName: "Sales", Total: 1}}

	f, err := BuildInventoryWorkbook(detail, statusCounts, sectorCounts)
	if err != nil {
		t.Fatalf("BuildInventoryWorkbook: %v", err)
	}

	got, err := f.GetCellValue("Sheet1", "A2")
	if err != nil || got != "SN-1" {
		t.Errorf("A2 = %q, %v; want SN-1", got, err)
	}
	got, _ = f.GetCellValue("Sheet1", "E2")
	if got != "Jane Roe" {
		t.Errorf("E2 = %q, want Jane Roe", got)
	}

	// status counts start three rows below the detail table
	statusHeaderRow := len(detail) + 4
	got, _ = f.GetCellValue("Sheet1", "A"+strconv.Itoa(statusHeaderRow))
	if got != "Status" {
		t.Errorf("status header = %q", got)
	}
	got, _ = f.GetCellValue("Sheet1", "A"+strconv.Itoa(statusHeaderRow+1))
	if got != "In stock" {
		t.Errorf("first status row = %q", got)
	}
}

func TestBuildMovementsWorkbook(t *testing.T) {
	entryTime := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	entries := []*models.CustodyLedgerEntry{
		{
			Device:           &models.Device{SerialNumber: "SN-1"},
			Status:           &models.Status{Name: "In use"},
			CollaboratorName: strPtr("Jane Roe"),
			Location:         "HQ",
			Observation:      "Assigned",
			EntryTime:        entryTime,
		},
	}

	f, err := BuildMovementsWorkbook(entries)
	if err != nil {
		t.Fatalf("BuildMovementsWorkbook: %v", err)
	}

	got, _ := f.GetCellValue("Sheet1", "A2")
	if got != "2025-04-01 09:30:00" {
		t.Errorf("A2 = %q", got)
	}
	got, _ = f.GetCellValue("Sheet1", "B2")
	if got != "SN-1" {
		t.Errorf("B2 = %q", got)
	}
	got, _ = f.GetCellValue("Sheet1", "D2")
	if got != "Jane Roe" {
		t.Errorf("D2 = %q", got)
	}
}

func TestBuildInventoryWorkbookEmpty(t *testing.T) {
	f, err := BuildInventoryWorkbook(nil, nil, nil)
	if err != nil {
		t.Fatalf("BuildInventoryWorkbook: %v", err)
	}
	got, _ := f.GetCellValue("Sheet1", "A1")
	if got != "Serial" {
		t.Errorf("A1 = %q, want Serial", got)
	}
}

