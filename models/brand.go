package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
)

type Brand struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBrand struct {
	Name string `json:"name" binding:"required"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewBrand) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUniqueName[Brand](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateBrand(ctx context.Context, input *NewBrand) (*Brand, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	brand := Brand{
		Name: strings.TrimSpace(input.Name),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func UpdateBrand(ctx context.Context, id int, input *NewBrand) (*Brand, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	brand, err := utils.FetchModel[Brand](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&brand).Updates(map[string]interface{}{
		"Name": strings.TrimSpace(input.Name),
	}).Error
	if err != nil {
		return nil, err
	}
	return brand, nil
}

func DeleteBrand(ctx context.Context, id int) (*Brand, error) {
	brand, err := utils.FetchModel[Brand](ctx, id)
	if err != nil {
		return nil, err
	}

	// referenced catalog rows may not be deleted
	count, err := utils.ResourceCountWhere[DeviceModel](ctx, "brand_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: brand is referenced by %d model(s)", utils.ErrorCatalogInUse, count)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

func GetBrand(ctx context.Context, id int) (*Brand, error) {
	return utils.FetchModel[Brand](ctx, id)
}

func ListBrands(ctx context.Context, name *string) ([]*Brand, error) {
	db := config.GetDB()
	var results []*Brand

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
