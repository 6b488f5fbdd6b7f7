package models

import (
	"context"
	"fmt"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/shopspring/decimal"
)

// MaintenanceOrder tracks one trip to an external repair supplier.
// Invariant: at most one In progress order per device; the workflow package
// is the only writer of Status.
type MaintenanceOrder struct {
	ID                 int                 `gorm:"primary_key" json:"id"`
	DeviceId           int                 `gorm:"index;not null" json:"device_id"`
	Device             *Device             `json:"device,omitempty"`
	CollaboratorId     *int                `gorm:"index" json:"collaborator_id"`
	Collaborator       *Collaborator       `json:"collaborator,omitempty"`
	CollaboratorName   *string             `gorm:"size:150" json:"collaborator_name"`
	SupplierId         *int                `gorm:"index" json:"supplier_id"`
	Supplier           *Supplier           `json:"supplier,omitempty"`
	SendDate           time.Time           `gorm:"not null" json:"send_date"`
	ReportedDefect     string              `gorm:"type:text" json:"reported_defect"`
	ReturnDate         *time.Time          `json:"return_date"`
	AppliedSolution    *string             `gorm:"type:text" json:"applied_solution"`
	RepairCost         *decimal.Decimal    `gorm:"type:decimal(12,2)" json:"repair_cost"`
	CostResponsibility *CostResponsibility `gorm:"type:enum('Company','Employee','Company/Employee')" json:"cost_responsibility"`
	Status             MaintenanceStatus   `gorm:"type:enum('In progress','Concluded','Written off');default:'In progress'" json:"status"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type MaintenanceUpdate struct {
	SupplierId     *int   `json:"supplier_id"`
	ReportedDefect string `json:"reported_defect"`
}

// UpdateOpenMaintenance edits supplier and defect; allowed only while the
// order is In progress.
func UpdateOpenMaintenance(ctx context.Context, id int, input *MaintenanceUpdate) (*MaintenanceOrder, error) {
	order, err := utils.FetchModel[MaintenanceOrder](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: maintenance order %d", utils.ErrorUnknownEntity, id)
	}
	if order.Status != MaintenanceInProgress {
		return nil, fmt.Errorf("%w: order %d is %s", utils.ErrorDoubleClose, id, order.Status)
	}

	if input.SupplierId != nil {
		if err := utils.ValidateResourceId[Supplier](ctx, *input.SupplierId); err != nil {
			return nil, fmt.Errorf("%w: supplier %d", utils.ErrorUnknownEntity, *input.SupplierId)
		}
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&order).Updates(map[string]interface{}{
		"SupplierId":     input.SupplierId,
		"ReportedDefect": input.ReportedDefect,
	}).Error
	if err != nil {
		return nil, err
	}
	return order, nil
}

func GetMaintenanceOrder(ctx context.Context, id int) (*MaintenanceOrder, error) {
	order, err := utils.FetchModel[MaintenanceOrder](ctx, id, "Device", "Supplier")
	if err != nil {
		return nil, fmt.Errorf("%w: maintenance order %d", utils.ErrorUnknownEntity, id)
	}
	return order, nil
}

type MaintenanceFilter struct {
	Status             *string
	CollaboratorName   *string
	CostResponsibility *string
	SendFrom           *time.Time
	SendTo             *time.Time
	ReturnFrom         *time.Time
	ReturnTo           *time.Time
}

func ListMaintenanceOrders(ctx context.Context, filter MaintenanceFilter) ([]*MaintenanceOrder, error) {
	db := config.GetDB()
	var results []*MaintenanceOrder

	dbCtx := db.WithContext(ctx).Preload("Device").Preload("Supplier")
	if filter.Status != nil && *filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if filter.CollaboratorName != nil && *filter.CollaboratorName != "" {
		dbCtx = dbCtx.Where("collaborator_name LIKE ?", "%"+*filter.CollaboratorName+"%")
	}
	if filter.CostResponsibility != nil && *filter.CostResponsibility != "" {
		dbCtx = dbCtx.Where("cost_responsibility = ?", *filter.CostResponsibility)
	}
	if filter.SendFrom != nil {
		dbCtx = dbCtx.Where("send_date >= ?", *filter.SendFrom)
	}
	if filter.SendTo != nil {
		dbCtx = dbCtx.Where("send_date <= ?", *filter.SendTo)
	}
	if filter.ReturnFrom != nil {
		dbCtx = dbCtx.Where("return_date >= ?", *filter.ReturnFrom)
	}
	if filter.ReturnTo != nil {
		dbCtx = dbCtx.Where("return_date <= ?", *filter.ReturnTo)
	}
	if err := dbCtx.Order("send_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
