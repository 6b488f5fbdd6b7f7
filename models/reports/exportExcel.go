package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// BuildInventoryWorkbook fills one sheet with three areas: the per-device
// detail table, the per-status totals and the per-sector totals for devices
// In use. Separated from the DB fetch so it can be tested on fixed slices.
func BuildInventoryWorkbook(detail []*InventoryRow, statusCounts []*StatusCountRow, sectorCounts []*SectorCountRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	headings := []string{"Serial", "Model", "Brand", "Status", "Collaborator", "Location", "IMEI 1", "IMEI 2", "Value"}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}
	for i, d := range detail {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, d.SerialNumber)
		f.SetCellValue(sheetName, "B"+row, d.ModelName)
		f.SetCellValue(sheetName, "C"+row, d.BrandName)
		f.SetCellValue(sheetName, "D"+row, d.StatusName)
		f.SetCellValue(sheetName, "E"+row, utils.DereferencePtr(d.CollaboratorName, ""))
		f.SetCellValue(sheetName, "F"+row, utils.DereferencePtr(d.Location, ""))
		f.SetCellValue(sheetName, "G"+row, utils.DereferencePtr(d.Imei1, ""))
		f.SetCellValue(sheetName, "H"+row, utils.DereferencePtr(d.Imei2, ""))
		f.SetCellValue(sheetName, "I"+row, d.Value.InexactFloat64())
	}

	rowNo := len(detail) + 4
	f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), "Status")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), "Devices")
	for _, c := range statusCounts {
		rowNo++
		f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), c.StatusName)
		f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), c.Total)
	}

	rowNo += 3
	f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), "Sector (In use)")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), "Devices")
	for _, c := range sectorCounts {
		rowNo++
		f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), c.SectorName)
		f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), c.Total)
	}

	return f, nil
}

// BuildMovementsWorkbook writes the filtered custody scan, newest first, the
// same order the movements screen shows.
func BuildMovementsWorkbook(entries []*models.CustodyLedgerEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	headings := []string{"Date", "Serial", "Status", "Collaborator", "Location", "Observation"}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}
	for i, e := range entries {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, e.EntryTime.Format("2006-01-02 15:04:05"))
		if e.Device != nil {
			f.SetCellValue(sheetName, "B"+row, e.Device.SerialNumber)
		}
		if e.Status != nil {
			f.SetCellValue(sheetName, "C"+row, e.Status.Name)
		}
		f.SetCellValue(sheetName, "D"+row, utils.DereferencePtr(e.CollaboratorName, ""))
		f.SetCellValue(sheetName, "E"+row, e.Location)
		f.SetCellValue(sheetName, "F"+row, e.Observation)
	}

	return f, nil
}

// ExportInventoryExcel streams the full inventory workbook.
func ExportInventoryExcel(ctx context.Context, w io.Writer) error {
	detail, err := GetInventoryReport(ctx)
	if err != nil {
		return err
	}
	statusCounts, err := GetStatusCounts(ctx)
	if err != nil {
		return err
	}
	sectorCounts, err := GetSectorInUseCounts(ctx)
	if err != nil {
		return err
	}

	f, err := BuildInventoryWorkbook(detail, statusCounts, sectorCounts)
	if err != nil {
		return err
	}
	return f.Write(w)
}

func ExportMovementsExcel(ctx context.Context, filter models.MovementFilter, w io.Writer) error {
	entries, err := models.ListMovements(ctx, filter)
	if err != nil {
		return err
	}
	f, err := BuildMovementsWorkbook(entries)
	if err != nil {
		return err
	}
	return f.Write(w)
}
