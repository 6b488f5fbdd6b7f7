package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
)

// DeviceModel is a catalog row; name is unique per brand (case-insensitive,
// trimmed).
type DeviceModel struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_model_brand" json:"name" binding:"required"`
	BrandId   int       `gorm:"not null;uniqueIndex:idx_model_brand;index" json:"brand_id" binding:"required"`
	Brand     *Brand    `json:"brand,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDeviceModel struct {
	Name    string `json:"name" binding:"required"`
	BrandId int    `json:"brand_id" binding:"required"`
}

func (input *NewDeviceModel) validate(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[Brand](ctx, input.BrandId); err != nil {
		return fmt.Errorf("%w: brand %d", utils.ErrorUnknownEntity, input.BrandId)
	}

	normalized := utils.NormalizeName(input.Name)
	cond := "LOWER(TRIM(name)) = ? AND brand_id = ?"
	var count int64
	var err error
	if id == 0 {
		count, err = utils.ResourceCountWhere[DeviceModel](ctx, cond, normalized, input.BrandId)
	} else {
		count, err = utils.ResourceCountWhere[DeviceModel](ctx, cond+" AND NOT id = ?", normalized, input.BrandId, id)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: model %q already exists for this brand", utils.ErrorDuplicate, input.Name)
	}
	return nil
}

func CreateDeviceModel(ctx context.Context, input *NewDeviceModel) (*DeviceModel, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	model := DeviceModel{
		Name:    strings.TrimSpace(input.Name),
		BrandId: input.BrandId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func UpdateDeviceModel(ctx context.Context, id int, input *NewDeviceModel) (*DeviceModel, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	model, err := utils.FetchModel[DeviceModel](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&model).Updates(map[string]interface{}{
		"Name":    strings.TrimSpace(input.Name),
		"BrandId": input.BrandId,
	}).Error
	if err != nil {
		return nil, err
	}
	return model, nil
}

func DeleteDeviceModel(ctx context.Context, id int) (*DeviceModel, error) {
	model, err := utils.FetchModel[DeviceModel](ctx, id)
	if err != nil {
		return nil, err
	}

	deviceCount, err := utils.ResourceCountWhere[Device](ctx, "device_model_id = ?", id)
	if err != nil {
		return nil, err
	}
	purchaseCount, err := utils.ResourceCountWhere[Purchase](ctx, "device_model_id = ?", id)
	if err != nil {
		return nil, err
	}
	if deviceCount+purchaseCount > 0 {
		return nil, fmt.Errorf("%w: model is referenced by devices or purchases", utils.ErrorCatalogInUse)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&model).Error; err != nil {
		return nil, err
	}
	return model, nil
}

// GetOrCreateDeviceModelByName resolves brand and model by name, creating
// either when missing. Used by the device import so catalog entries do not
// have to exist before the sheet is loaded.
func GetOrCreateDeviceModelByName(ctx context.Context, modelName, brandName string) (*DeviceModel, error) {
	db := config.GetDB()

	var brand Brand
	err := db.WithContext(ctx).
		Where("LOWER(TRIM(name)) = ?", utils.NormalizeName(brandName)).
		First(&brand).Error
	if err != nil {
		created, err := CreateBrand(ctx, &NewBrand{Name: brandName})
		if err != nil {
			return nil, err
		}
		brand = *created
	}

	var model DeviceModel
	err = db.WithContext(ctx).
		Where("LOWER(TRIM(name)) = ? AND brand_id = ?", utils.NormalizeName(modelName), brand.ID).
		First(&model).Error
	if err == nil {
		return &model, nil
	}
	return CreateDeviceModel(ctx, &NewDeviceModel{Name: modelName, BrandId: brand.ID})
}

func GetDeviceModel(ctx context.Context, id int) (*DeviceModel, error) {
	return utils.FetchModel[DeviceModel](ctx, id, "Brand")
}

func ListDeviceModels(ctx context.Context, name *string, brandId *int) ([]*DeviceModel, error) {
	db := config.GetDB()
	var results []*DeviceModel

	dbCtx := db.WithContext(ctx).Preload("Brand")
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if brandId != nil && *brandId > 0 {
		dbCtx = dbCtx.Where("brand_id = ?", *brandId)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
