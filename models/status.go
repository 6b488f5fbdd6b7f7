package models

import (
	"context"
	"fmt"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
	"gorm.io/gorm"
)

// Status is seeded reference data; the set is closed (see StatusName), so
// there are no create/update/delete operations.
type Status struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:50;not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func SeedStatuses(db *gorm.DB) error {
	for _, name := range AllStatusNames() {
		status := Status{Name: string(name)}
		if err := db.Where("name = ?", string(name)).FirstOrCreate(&status).Error; err != nil {
			return err
		}
	}
	return nil
}

func ListStatuses(ctx context.Context) ([]*Status, error) {
	return utils.FetchAllModels[Status](ctx)
}

// GetStatusByNameTx resolves a lifecycle status row inside the caller's
// transaction.
func GetStatusByNameTx(tx *gorm.DB, name StatusName) (*Status, error) {
	var status Status
	if err := tx.Where("name = ?", string(name)).First(&status).Error; err != nil {
		return nil, fmt.Errorf("%w: status %q", utils.ErrorUnknownEntity, name)
	}
	return &status, nil
}

func GetStatusByIDTx(tx *gorm.DB, id int) (*Status, error) {
	var status Status
	if err := tx.First(&status, id).Error; err != nil {
		return nil, fmt.Errorf("%w: status id %d", utils.ErrorUnknownEntity, id)
	}
	return &status, nil
}

func GetStatusByName(ctx context.Context, name StatusName) (*Status, error) {
	return GetStatusByNameTx(config.GetDB().WithContext(ctx), name)
}
