package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// stubbed in tests
var timeNow = time.Now

type OpenMaintenanceInput struct {
	DeviceId       int
	SupplierId     *int
	ReportedDefect string
	Location       string
	ExpectedStatus *models.StatusName
}

// OpenMaintenance sends a device to repair. It is a thin wrapper over
// Transition targeting In maintenance; the order row is created inside the
// same transaction as the ledger entry.
func OpenMaintenance(ctx context.Context, input OpenMaintenanceInput) (*TransitionResult, error) {
	return Transition(ctx, TransitionInput{
		DeviceId:       input.DeviceId,
		TargetStatus:   models.StatusInMaintenance,
		Location:       input.Location,
		Observation:    input.ReportedDefect,
		SupplierId:     input.SupplierId,
		ReportedDefect: input.ReportedDefect,
		ExpectedStatus: input.ExpectedStatus,
	})
}

type CloseMaintenanceInput struct {
	OrderId            int
	FinalStatus        models.StatusName
	AppliedSolution    string
	RepairCost         *decimal.Decimal
	CostResponsibility *models.CostResponsibility
	Location           string
}

// CloseMaintenance settles an In progress order. The final status decides the
// order outcome: Available concludes it, Written off writes both the order and
// the device off. Closing an already settled order fails; there is no reopen.
func CloseMaintenance(ctx context.Context, input CloseMaintenanceInput) (*TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.CloseMaintenance")
	defer span.End()

	if input.FinalStatus != models.StatusAvailable && input.FinalStatus != models.StatusWrittenOff {
		return nil, fmt.Errorf("%w: maintenance closes to Available or Written off, not %s",
			utils.ErrorInvalidTransition, input.FinalStatus)
	}
	if input.CostResponsibility != nil {
		if _, err := models.ParseCostResponsibility(string(*input.CostResponsibility)); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()
	result := &TransitionResult{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.MaintenanceOrder
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, input.OrderId).Error
		if err != nil {
			return fmt.Errorf("%w: maintenance order %d", utils.ErrorUnknownEntity, input.OrderId)
		}
		if order.Status != models.MaintenanceInProgress {
			return fmt.Errorf("%w: order %d is already %s",
				utils.ErrorDoubleClose, order.ID, order.Status)
		}

		var device models.Device
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&device, order.DeviceId).Error
		if err != nil {
			return fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, order.DeviceId)
		}

		currentRow, err := models.GetStatusByIDTx(tx, device.StatusId)
		if err != nil {
			return err
		}
		current := models.StatusName(currentRow.Name)
		if !CanTransition(current, input.FinalStatus) {
			return fmt.Errorf("%w: %s -> %s",
				utils.ErrorInvalidTransition, current, input.FinalStatus)
		}

		targetRow, err := models.GetStatusByNameTx(tx, input.FinalStatus)
		if err != nil {
			return err
		}

		observation := input.AppliedSolution
		if observation == "" {
			observation = "Maintenance closed"
		}
		entry := models.CustodyLedgerEntry{
			DeviceId:    device.ID,
			StatusId:    targetRow.ID,
			Location:    input.Location,
			Observation: observation,
		}
		if err := models.CreateLedgerEntry(tx, &entry); err != nil {
			return err
		}

		res := tx.Model(&models.Device{}).
			Where("id = ? AND status_id = ?", device.ID, device.StatusId).
			Update("StatusId", targetRow.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: device %d changed underneath",
				utils.ErrorConcurrentModification, device.ID)
		}

		outcome := models.MaintenanceConcluded
		if input.FinalStatus == models.StatusWrittenOff {
			outcome = models.MaintenanceWrittenOff
		}
		returnDate := timeNow()
		err = tx.Model(&order).Updates(map[string]interface{}{
			"ReturnDate":         &returnDate,
			"AppliedSolution":    &input.AppliedSolution,
			"RepairCost":         input.RepairCost,
			"CostResponsibility": input.CostResponsibility,
			"Status":             outcome,
		}).Error
		if err != nil {
			return err
		}

		device.StatusId = targetRow.ID
		result.Device = &device
		result.Entry = &entry
		result.Maintenance = &order
		return nil
	})
	if err != nil {
		config.LogError(config.GetLogger(), "workflow", "CloseMaintenance", "close failed", input, err)
		return nil, err
	}

	notifyMaintenanceClosed(ctx, result.Maintenance)
	return result, nil
}

// notifyMaintenanceClosed emails the collaborator the device came back for.
// Best effort after commit: a mail failure never rolls back the close.
func notifyMaintenanceClosed(ctx context.Context, order *models.MaintenanceOrder) {
	if order == nil || order.CollaboratorId == nil {
		return
	}
	collaborator, err := models.GetCollaborator(ctx, *order.CollaboratorId)
	if err != nil || collaborator.Email == nil || *collaborator.Email == "" {
		return
	}

	device, err := models.GetDevice(ctx, order.DeviceId)
	if err != nil {
		return
	}
	subject := fmt.Sprintf("Device %s back from maintenance", device.SerialNumber)
	body := fmt.Sprintf("Hello %s,<br><br>The device with serial number <b>%s</b> has returned from maintenance (order #%d).",
		collaborator.FullName, device.SerialNumber, order.ID)
	if err := utils.SendMail(*collaborator.Email, subject, body); err != nil {
		config.LogError(config.GetLogger(), "workflow", "notifyMaintenanceClosed", "mail failed", order.ID, err)
	}
}
