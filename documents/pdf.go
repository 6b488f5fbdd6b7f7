package documents

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/go-pdf/fpdf"
)

// TermData is everything the responsibility term renders. Split from the DB
// fetch so rendering can be tested without a database.
type TermData struct {
	CollaboratorName string
	SerialNumber     string
	ModelName        string
	BrandName        string
	Imei1            string
	Imei2            string
	Value            string
	Date             time.Time
	Checklist        *models.ReturnChecklist
}

type LabelData struct {
	SerialNumber string
	ModelName    string
	Holder       string
}

// BuildResponsibilityTerm renders the signed-custody document for a device
// assignment.
func BuildResponsibilityTerm(data TermData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Responsibility Term", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "Device Responsibility Term", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	body := fmt.Sprintf(
		"I, %s, declare that I have received the corporate mobile device described below, "+
			"and that I am responsible for its conservation and proper use while it remains in my custody.",
		data.CollaboratorName)
	pdf.MultiCell(0, 6, body, "", "J", false)
	pdf.Ln(6)

	rows := [][2]string{
		{"Serial number", data.SerialNumber},
		{"Brand", data.BrandName},
		{"Model", data.ModelName},
		{"IMEI 1", data.Imei1},
		{"IMEI 2", data.Imei2},
		{"Declared value", data.Value},
		{"Assignment date", data.Date.Format("2006-01-02")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Delivery checklist", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Delivered", "1", 0, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Condition", "1", 1, "C", false, 0, "")

	// One grid row per fixed item; items absent from the entry's checklist
	// print blank so the fields can be filled in by hand.
	states := make(map[string]models.ChecklistItemState)
	if data.Checklist != nil {
		for _, it := range data.Checklist.Items {
			states[it.Item] = it
		}
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range models.ChecklistItems {
		delivered, condition := "", ""
		if state, ok := states[item]; ok {
			delivered = "No"
			if state.Delivered {
				delivered = "Yes"
			}
			condition = string(state.Condition)
		}
		pdf.CellFormat(70, 7, item, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, delivered, "1", 0, "C", false, 0, "")
		pdf.CellFormat(0, 7, condition, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(16)
	pdf.CellFormat(0, 6, "_________________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, data.CollaboratorName, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDeviceLabel renders the small identification label printed for a
// device.
func BuildDeviceLabel(data LabelData) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A7", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, data.SerialNumber, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, data.ModelName, "", 1, "C", false, 0, "")
	if data.Holder != "" {
		pdf.CellFormat(0, 6, data.Holder, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResponsibilityTermForEntry builds the term for one custody entry. The entry
// must be an In use assignment with a holder; any other entry has no one to
// sign the document.
func ResponsibilityTermForEntry(ctx context.Context, entryId int) ([]byte, error) {
	entry, err := utils.FetchModel[models.CustodyLedgerEntry](ctx, entryId, "Status", "Device", "Device.DeviceModel", "Device.DeviceModel.Brand")
	if err != nil {
		return nil, fmt.Errorf("%w: ledger entry %d", utils.ErrorUnknownEntity, entryId)
	}
	if entry.Status == nil || models.StatusName(entry.Status.Name) != models.StatusInUse {
		return nil, fmt.Errorf("%w: responsibility terms exist only for In use entries", utils.ErrorConstraintViolation)
	}
	if entry.CollaboratorName == nil || *entry.CollaboratorName == "" {
		return nil, fmt.Errorf("%w: entry %d has no holder", utils.ErrorConstraintViolation, entryId)
	}

	checklist, err := entry.DecodeChecklist()
	if err != nil {
		return nil, err
	}

	data := TermData{
		CollaboratorName: *entry.CollaboratorName,
		Date:             entry.EntryTime,
		Checklist:        checklist,
	}
	if entry.Device != nil {
		data.SerialNumber = entry.Device.SerialNumber
		data.Imei1 = utils.DereferencePtr(entry.Device.Imei1, "")
		data.Imei2 = utils.DereferencePtr(entry.Device.Imei2, "")
		data.Value = entry.Device.Value.StringFixed(2)
		if entry.Device.DeviceModel != nil {
			data.ModelName = entry.Device.DeviceModel.Name
			if entry.Device.DeviceModel.Brand != nil {
				data.BrandName = entry.Device.DeviceModel.Brand.Name
			}
		}
	}
	return BuildResponsibilityTerm(data)
}

// DeviceLabel builds the label for one device.
func DeviceLabel(ctx context.Context, deviceId int) ([]byte, error) {
	device, err := utils.FetchModel[models.Device](ctx, deviceId, "DeviceModel")
	if err != nil {
		return nil, fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, deviceId)
	}

	data := LabelData{SerialNumber: device.SerialNumber}
	if device.DeviceModel != nil {
		data.ModelName = device.DeviceModel.Name
	}
	if state, err := models.GetDeviceState(ctx, deviceId); err == nil && state.HolderSnapshot != nil {
		data.Holder = *state.HolderSnapshot
	}
	return BuildDeviceLabel(data)
}
