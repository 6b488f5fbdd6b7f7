package reports

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportResult reports a bulk load row by row. Each failed row carries its
// spreadsheet line number; one bad row never aborts the rest.
type ImportResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

func (r *ImportResult) fail(line int, err error) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("line %d: %v", line, err))
}

// openRows reads the first sheet and returns data rows, skipping the header.
func openRows(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func optCell(row []string, i int) *string {
	v := cell(row, i)
	if v == "" {
		return nil
	}
	return &v
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ImportCollaborators loads rows of (code, full name, tax id, email, sector).
// The sector is resolved by name and created when missing.
func ImportCollaborators(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	rows, err := openRows(reader)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows {
		line := i + 2
		if isBlankRow(row) {
			continue
		}

		sectorName := cell(row, 4)
		if sectorName == "" {
			result.fail(line, fmt.Errorf("sector is required"))
			continue
		}
		sector, err := models.GetOrCreateSectorByName(ctx, sectorName)
		if err != nil {
			result.fail(line, err)
			continue
		}

		_, err = models.CreateCollaborator(ctx, &models.NewCollaborator{
			Code:     cell(row, 0),
			FullName: cell(row, 1),
			TaxId:    optCell(row, 2),
			Email:    optCell(row, 3),
			SectorId: sector.ID,
		})
		if err != nil {
			result.fail(line, err)
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// ImportDevices loads rows of (serial, brand, model, imei1, imei2, value,
// initial status, location). Brand and model are resolved by name and created
// when missing; the initial status defaults to In stock.
func ImportDevices(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	rows, err := openRows(reader)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows {
		line := i + 2
		if isBlankRow(row) {
			continue
		}

		brandName := cell(row, 1)
		modelName := cell(row, 2)
		if brandName == "" || modelName == "" {
			result.fail(line, fmt.Errorf("brand and model are required"))
			continue
		}
		model, err := models.GetOrCreateDeviceModelByName(ctx, modelName, brandName)
		if err != nil {
			result.fail(line, err)
			continue
		}

		value := decimal.Zero
		if v := cell(row, 5); v != "" {
			value, err = decimal.NewFromString(v)
			if err != nil {
				result.fail(line, fmt.Errorf("invalid value %q", v))
				continue
			}
		}

		_, err = models.RegisterDevice(ctx, &models.NewDevice{
			SerialNumber:  cell(row, 0),
			DeviceModelId: model.ID,
			Imei1:         optCell(row, 3),
			Imei2:         optCell(row, 4),
			Value:         value,
			InitialStatus: cell(row, 6),
			Location:      cell(row, 7),
		})
		if err != nil {
			result.fail(line, err)
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// ImportBrands loads rows of a single name column.
func ImportBrands(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	rows, err := openRows(reader)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows {
		line := i + 2
		if isBlankRow(row) {
			continue
		}
		if _, err := models.CreateBrand(ctx, &models.NewBrand{Name: cell(row, 0)}); err != nil {
			result.fail(line, err)
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// ImportGmailAccounts loads rows of (address, password, collaborator code).
func ImportGmailAccounts(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	rows, err := openRows(reader)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows {
		line := i + 2
		if isBlankRow(row) {
			continue
		}

		var collaboratorId *int
		if code := cell(row, 2); code != "" {
			collaborator, err := models.GetCollaboratorByCode(ctx, code)
			if err != nil {
				result.fail(line, err)
				continue
			}
			collaboratorId = &collaborator.ID
		}

		_, err := models.CreateGmailAccount(ctx, &models.NewGmailAccount{
			Address:        cell(row, 0),
			Password:       cell(row, 1),
			CollaboratorId: collaboratorId,
		})
		if err != nil {
			result.fail(line, err)
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// ImportMovements loads rows of (serial, collaborator code, location,
// observation) and assigns each device through the regular workflow, one
// transaction per row. A row that fails lifecycle validation is reported and
// skipped; earlier rows stay committed.
func ImportMovements(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	rows, err := openRows(reader)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows {
		line := i + 2
		if isBlankRow(row) {
			continue
		}

		device, err := models.GetDeviceBySerial(ctx, cell(row, 0))
		if err != nil {
			result.fail(line, err)
			continue
		}
		collaborator, err := models.GetCollaboratorByCode(ctx, cell(row, 1))
		if err != nil {
			result.fail(line, err)
			continue
		}

		_, err = workflow.Transition(ctx, workflow.TransitionInput{
			DeviceId:       device.ID,
			TargetStatus:   models.StatusInUse,
			CollaboratorId: &collaborator.ID,
			Location:       cell(row, 2),
			Observation:    cell(row, 3),
		})
		if err != nil {
			result.fail(line, err)
			continue
		}
		result.Succeeded++
	}
	return result, nil
}
