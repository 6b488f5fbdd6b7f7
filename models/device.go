package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Device invariant: StatusId always equals the status of the most recent
// custody ledger entry for this device. All status mutations go through the
// workflow package; nothing here writes StatusId after registration.
type Device struct {
	ID            int             `gorm:"primary_key" json:"id"`
	SerialNumber  string          `gorm:"size:100;not null;unique" json:"serial_number" binding:"required"`
	DeviceModelId int             `gorm:"index;not null" json:"device_model_id" binding:"required"`
	DeviceModel   *DeviceModel    `json:"device_model,omitempty"`
	Imei1         *string         `gorm:"size:20" json:"imei1"`
	Imei2         *string         `gorm:"size:20" json:"imei2"`
	Value         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"value"`
	StatusId      int             `gorm:"index;not null" json:"status_id"`
	Status        *Status         `json:"status,omitempty"`
	RegisteredAt  time.Time       `gorm:"autoCreateTime" json:"registered_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDevice struct {
	SerialNumber  string          `json:"serial_number" binding:"required"`
	DeviceModelId int             `json:"device_model_id" binding:"required"`
	Imei1         *string         `json:"imei1"`
	Imei2         *string         `json:"imei2"`
	Value         decimal.Decimal `json:"value"`
	InitialStatus string          `json:"initial_status"`
	Location      string          `json:"location"`
}

func (input *NewDevice) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Device](ctx, "serial_number", strings.TrimSpace(input.SerialNumber), id); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[DeviceModel](ctx, input.DeviceModelId); err != nil {
		return fmt.Errorf("%w: model %d", utils.ErrorUnknownEntity, input.DeviceModelId)
	}
	return nil
}

// RegisterDevice creates the device row and its initial ledger entry in one
// transaction. The initial status defaults to "In stock".
func RegisterDevice(ctx context.Context, input *NewDevice) (*Device, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	initial := StatusInStock
	if strings.TrimSpace(input.InitialStatus) != "" {
		parsed, err := ParseStatusName(input.InitialStatus)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrorUnknownEntity, err)
		}
		initial = parsed
	}

	device := Device{
		SerialNumber:  strings.TrimSpace(input.SerialNumber),
		DeviceModelId: input.DeviceModelId,
		Imei1:         input.Imei1,
		Imei2:         input.Imei2,
		Value:         input.Value,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status, err := GetStatusByNameTx(tx, initial)
		if err != nil {
			return err
		}
		device.StatusId = status.ID

		if err := tx.Create(&device).Error; err != nil {
			if utils.IsDuplicateKeyErr(err) {
				return fmt.Errorf("%w: serial number %q", utils.ErrorConstraintViolation, device.SerialNumber)
			}
			return err
		}

		entry := CustodyLedgerEntry{
			DeviceId:    device.ID,
			StatusId:    status.ID,
			Location:    input.Location,
			Observation: "Device registered",
		}
		return CreateLedgerEntry(tx, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &device, nil
}

type DeviceFieldsUpdate struct {
	SerialNumber  string          `json:"serial_number" binding:"required"`
	DeviceModelId int             `json:"device_model_id" binding:"required"`
	Imei1         *string         `json:"imei1"`
	Imei2         *string         `json:"imei2"`
	Value         decimal.Decimal `json:"value"`
}

// UpdateDeviceFields edits descriptive fields only; it never touches status.
func UpdateDeviceFields(ctx context.Context, id int, input *DeviceFieldsUpdate) (*Device, error) {
	device, err := utils.FetchModel[Device](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, id)
	}

	if err := utils.ValidateUnique[Device](ctx, "serial_number", strings.TrimSpace(input.SerialNumber), id); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[DeviceModel](ctx, input.DeviceModelId); err != nil {
		return nil, fmt.Errorf("%w: model %d", utils.ErrorUnknownEntity, input.DeviceModelId)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&device).Updates(map[string]interface{}{
		"SerialNumber":  strings.TrimSpace(input.SerialNumber),
		"DeviceModelId": input.DeviceModelId,
		"Imei1":         input.Imei1,
		"Imei2":         input.Imei2,
		"Value":         input.Value,
	}).Error
	if err != nil {
		return nil, err
	}
	return device, nil
}

// DeleteDevice refuses with has-history when anything beyond the registration
// entry references the device; otherwise the device and its registration
// entry go together.
func DeleteDevice(ctx context.Context, id int) (*Device, error) {
	var device Device

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row first so a concurrent transition cannot append an
		// entry between the history check and the delete.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&device, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, id)
		}
		if err != nil {
			return err
		}

		var ledgerCount int64
		if err := tx.Model(&CustodyLedgerEntry{}).
			Where("device_id = ?", id).Count(&ledgerCount).Error; err != nil {
			return err
		}
		var maintenanceCount int64
		if err := tx.Model(&MaintenanceOrder{}).
			Where("device_id = ?", id).Count(&maintenanceCount).Error; err != nil {
			return err
		}
		if ledgerCount > 1 || maintenanceCount > 0 {
			return fmt.Errorf("%w: device has custody or maintenance history", utils.ErrorHasHistory)
		}

		if err := tx.Where("device_id = ?", id).Delete(&CustodyLedgerEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&device).Error
	})
	if err != nil {
		return nil, err
	}
	return &device, nil
}

type DeviceState struct {
	Status         StatusName `json:"status"`
	HolderSnapshot *string    `json:"holder_snapshot"`
}

// GetDeviceState reads the current status plus the last holder snapshot.
// The snapshot is null when the device has never had a holder.
func GetDeviceState(ctx context.Context, id int) (*DeviceState, error) {
	db := config.GetDB().WithContext(ctx)

	device, err := utils.FetchModel[Device](ctx, id, "Status")
	if err != nil {
		return nil, fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, id)
	}

	state := DeviceState{Status: StatusName(device.Status.Name)}
	holder, err := LatestHolderEntryTx(db, id)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}
	if holder != nil {
		state.HolderSnapshot = holder.CollaboratorName
	}
	return &state, nil
}

func GetDevice(ctx context.Context, id int) (*Device, error) {
	device, err := utils.FetchModel[Device](ctx, id, "DeviceModel", "DeviceModel.Brand", "Status")
	if err != nil {
		return nil, fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, id)
	}
	return device, nil
}

func GetDeviceBySerial(ctx context.Context, serial string) (*Device, error) {
	db := config.GetDB()
	var device Device
	err := db.WithContext(ctx).
		Preload("DeviceModel").
		Preload("Status").
		Where("serial_number = ?", strings.TrimSpace(serial)).
		First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: serial %q", utils.ErrorUnknownEntity, serial)
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

type DeviceFilter struct {
	Serial     *string
	StatusName *string
	ModelId    *int
}

func ListDevices(ctx context.Context, filter DeviceFilter) ([]*Device, error) {
	db := config.GetDB()
	var results []*Device

	dbCtx := db.WithContext(ctx).
		Preload("DeviceModel").
		Preload("DeviceModel.Brand").
		Preload("Status")
	if filter.Serial != nil && *filter.Serial != "" {
		dbCtx = dbCtx.Where("serial_number LIKE ?", "%"+*filter.Serial+"%")
	}
	if filter.StatusName != nil && *filter.StatusName != "" {
		dbCtx = dbCtx.Joins("JOIN statuses ON statuses.id = devices.status_id").
			Where("statuses.name = ?", *filter.StatusName)
	}
	if filter.ModelId != nil && *filter.ModelId > 0 {
		dbCtx = dbCtx.Where("device_model_id = ?", *filter.ModelId)
	}
	if err := dbCtx.Order("serial_number").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
