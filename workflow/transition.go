package workflow

import (
	"context"
	"fmt"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer trace.Tracer = otel.Tracer("assetflow-workflow")

// allowedTransitions is the full legality table. Written off is terminal and
// self-transitions are absent on purpose: re-asserting the current status is
// rejected, not treated as a silent no-op.
var allowedTransitions = map[models.StatusName]map[models.StatusName]bool{
	models.StatusInStock: {
		models.StatusAvailable:     true,
		models.StatusInUse:         true,
		models.StatusInMaintenance: true,
		models.StatusWrittenOff:    true,
	},
	models.StatusAvailable: {
		models.StatusInStock:       true,
		models.StatusInUse:         true,
		models.StatusInMaintenance: true,
		models.StatusWrittenOff:    true,
	},
	models.StatusInUse: {
		models.StatusAvailable:     true,
		models.StatusInMaintenance: true,
		models.StatusWrittenOff:    true,
	},
	models.StatusInMaintenance: {
		models.StatusInStock:    true,
		models.StatusAvailable:  true,
		models.StatusWrittenOff: true,
	},
	models.StatusWrittenOff: {},
}

// CanTransition reports whether the lifecycle table allows from -> to.
func CanTransition(from, to models.StatusName) bool {
	return allowedTransitions[from][to]
}

type TransitionInput struct {
	DeviceId       int
	TargetStatus   models.StatusName
	CollaboratorId *int
	Location       string
	Observation    string
	Checklist      *models.ReturnChecklist

	// SupplierId and ReportedDefect are honored only when the target is
	// In maintenance; they seed the maintenance order opened alongside.
	SupplierId     *int
	ReportedDefect string

	// ExpectedStatus, when set, must match the locked row's current status
	// or the call fails with a concurrent-modification error. Callers that
	// rendered a stale screen use this to detect the race.
	ExpectedStatus *models.StatusName
}

type TransitionResult struct {
	Device      *models.Device
	Entry       *models.CustodyLedgerEntry
	Maintenance *models.MaintenanceOrder
}

// Transition is the single write path for device status. It locks the device
// row, checks legality against the current status, appends the custody ledger
// entry and updates the device pointer in one transaction. Targeting
// In maintenance additionally opens the maintenance order inside the same
// transaction, so a ledger entry saying "In maintenance" without an order (or
// the reverse) cannot be observed.
func Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.Transition")
	defer span.End()

	if _, err := models.ParseStatusName(string(input.TargetStatus)); err != nil {
		return nil, err
	}
	if input.Checklist != nil {
		if err := input.Checklist.Validate(); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()
	result := &TransitionResult{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var device models.Device
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&device, input.DeviceId).Error
		if err != nil {
			return fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, input.DeviceId)
		}

		currentRow, err := models.GetStatusByIDTx(tx, device.StatusId)
		if err != nil {
			return err
		}
		current := models.StatusName(currentRow.Name)

		if input.ExpectedStatus != nil && *input.ExpectedStatus != current {
			return fmt.Errorf("%w: device %d is %s, expected %s",
				utils.ErrorConcurrentModification, device.ID, current, *input.ExpectedStatus)
		}
		if current == input.TargetStatus {
			return fmt.Errorf("%w: device %d is already %s",
				utils.ErrorInvalidTransition, device.ID, current)
		}
		if !CanTransition(current, input.TargetStatus) {
			return fmt.Errorf("%w: %s -> %s",
				utils.ErrorInvalidTransition, current, input.TargetStatus)
		}

		targetRow, err := models.GetStatusByNameTx(tx, input.TargetStatus)
		if err != nil {
			return err
		}

		collaboratorId, collaboratorName, err := resolveCustody(tx, &device, input)
		if err != nil {
			return err
		}

		entry := models.CustodyLedgerEntry{
			DeviceId:         device.ID,
			StatusId:         targetRow.ID,
			CollaboratorId:   collaboratorId,
			CollaboratorName: collaboratorName,
			Location:         input.Location,
			Observation:      input.Observation,
		}
		if input.Checklist != nil {
			encoded, err := input.Checklist.Encode()
			if err != nil {
				return err
			}
			entry.Checklist = &encoded
		}
		if err := models.CreateLedgerEntry(tx, &entry); err != nil {
			return err
		}

		// Second fence behind the row lock: the UPDATE carries the status
		// we read, so a writer that slipped past leaves zero rows affected.
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

		if input.TargetStatus == models.StatusInMaintenance {
			order, err := openMaintenanceOrder(tx, &device, input, collaboratorId, collaboratorName)
			if err != nil {
				return err
			}
			result.Maintenance = order
		}

		device.StatusId = targetRow.ID
		result.Device = &device
		result.Entry = &entry
		return nil
	})
	if err != nil {
		config.LogError(config.GetLogger(), "workflow", "Transition", "transition failed", input, err)
		return nil, err
	}
	return result, nil
}

// resolveCustody decides the entry's collaborator attribution.
//
// In maintenance without an explicit collaborator inherits the last known
// holder snapshot, so the order records whose device went out for repair.
// In use requires an Active collaborator; other targets take the reference as
// given, which is usually nil.
func resolveCustody(tx *gorm.DB, device *models.Device, input TransitionInput) (*int, *string, error) {
	if input.CollaboratorId != nil {
		var collaborator models.Collaborator
		if err := tx.First(&collaborator, *input.CollaboratorId).Error; err != nil {
			return nil, nil, fmt.Errorf("%w: collaborator %d", utils.ErrorUnknownEntity, *input.CollaboratorId)
		}
		if input.TargetStatus == models.StatusInUse && collaborator.Status != models.CollaboratorActive {
			return nil, nil, fmt.Errorf("%w: collaborator %q is inactive",
				utils.ErrorConstraintViolation, collaborator.FullName)
		}
		name := collaborator.FullName
		return &collaborator.ID, &name, nil
	}

	if input.TargetStatus == models.StatusInUse {
		return nil, nil, fmt.Errorf("%w: assigning a device requires a collaborator",
			utils.ErrorConstraintViolation)
	}

	if input.TargetStatus == models.StatusInMaintenance {
		holder, err := models.LatestHolderEntryTx(tx, device.ID)
		if err != nil {
			if err == utils.ErrorRecordNotFound {
				return nil, nil, nil
			}
			return nil, nil, err
		}
		return holder.CollaboratorId, holder.CollaboratorName, nil
	}

	return nil, nil, nil
}

func openMaintenanceOrder(tx *gorm.DB, device *models.Device, input TransitionInput, collaboratorId *int, collaboratorName *string) (*models.MaintenanceOrder, error) {
	var open int64
	err := tx.Model(&models.MaintenanceOrder{}).
		Where("device_id = ? AND status = ?", device.ID, models.MaintenanceInProgress).
		Count(&open).Error
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, fmt.Errorf("%w: device %d already has an open maintenance order",
			utils.ErrorConstraintViolation, device.ID)
	}

	if input.SupplierId != nil {
		var supplier models.Supplier
		if err := tx.First(&supplier, *input.SupplierId).Error; err != nil {
			return nil, fmt.Errorf("%w: supplier %d", utils.ErrorUnknownEntity, *input.SupplierId)
		}
	}

	defect := input.ReportedDefect
	if defect == "" {
		defect = input.Observation
	}
	order := models.MaintenanceOrder{
		DeviceId:         device.ID,
		CollaboratorId:   collaboratorId,
		CollaboratorName: collaboratorName,
		SupplierId:       input.SupplierId,
		SendDate:         timeNow(),
		ReportedDefect:   defect,
		Status:           models.MaintenanceInProgress,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
