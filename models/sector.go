package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
)

type Sector struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSector struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewSector) validate(ctx context.Context, id int) error {
	return utils.ValidateUniqueName[Sector](ctx, "name", input.Name, id)
}

func CreateSector(ctx context.Context, input *NewSector) (*Sector, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	sector := Sector{Name: strings.TrimSpace(input.Name)}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&sector).Error; err != nil {
		return nil, err
	}
	return &sector, nil
}

func UpdateSector(ctx context.Context, id int, input *NewSector) (*Sector, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	sector, err := utils.FetchModel[Sector](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&sector).Updates(map[string]interface{}{
		"Name": strings.TrimSpace(input.Name),
	}).Error
	if err != nil {
		return nil, err
	}
	return sector, nil
}

func DeleteSector(ctx context.Context, id int) (*Sector, error) {
	sector, err := utils.FetchModel[Sector](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Collaborator](ctx, "sector_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: sector has %d collaborator(s)", utils.ErrorCatalogInUse, count)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&sector).Error; err != nil {
		return nil, err
	}
	return sector, nil
}

// GetOrCreateSectorByName resolves a sector case-insensitively; bulk imports
// use it so a new sector name in a sheet does not fail the row.
func GetOrCreateSectorByName(ctx context.Context, name string) (*Sector, error) {
	trimmed := strings.TrimSpace(name)
	db := config.GetDB()

	var sector Sector
	err := db.WithContext(ctx).
		Where("LOWER(TRIM(name)) = ?", strings.ToLower(trimmed)).
		First(&sector).Error
	if err == nil {
		return &sector, nil
	}
	return CreateSector(ctx, &NewSector{Name: trimmed})
}

func GetSector(ctx context.Context, id int) (*Sector, error) {
	return utils.FetchModel[Sector](ctx, id)
}

func ListSectors(ctx context.Context, name *string) ([]*Sector, error) {
	db := config.GetDB()
	var results []*Sector

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
