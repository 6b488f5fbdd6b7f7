package models

import (
	"context"
	"fmt"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/shopspring/decimal"
)

// Purchase records one bulk device purchase. The invoice file lives in
// object storage; only its key is stored here, set after the upload
// completes (never inside a DB transaction).
type Purchase struct {
	ID               int             `gorm:"primary_key" json:"id"`
	PurchaseDate     time.Time       `gorm:"not null" json:"purchase_date"`
	DeviceModelId    int             `gorm:"index;not null" json:"device_model_id"`
	DeviceModel      *DeviceModel    `json:"device_model,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	ImeiList         string          `gorm:"type:text" json:"imei_list"`
	BuyerName        string          `gorm:"size:150" json:"buyer_name"`
	BuyerTaxId       string          `gorm:"size:20" json:"buyer_tax_id"`
	StoreLogin       string          `gorm:"size:100" json:"store_login"`
	StorePassword    string          `gorm:"size:255" json:"store_password"`
	InvoiceObjectKey *string         `gorm:"size:255" json:"invoice_object_key"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPurchase struct {
	PurchaseDate  time.Time       `json:"purchase_date" binding:"required"`
	DeviceModelId int             `json:"device_model_id" binding:"required"`
	Quantity      int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ImeiList      string          `json:"imei_list"`
	BuyerName     string          `json:"buyer_name"`
	BuyerTaxId    string          `json:"buyer_tax_id"`
	StoreLogin    string          `json:"store_login"`
	StorePassword string          `json:"store_password"`
}

func (input *NewPurchase) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[DeviceModel](ctx, input.DeviceModelId); err != nil {
		return fmt.Errorf("%w: model %d", utils.ErrorUnknownEntity, input.DeviceModelId)
	}
	return nil
}

func CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	purchase := Purchase{
		PurchaseDate:  input.PurchaseDate,
		DeviceModelId: input.DeviceModelId,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		ImeiList:      input.ImeiList,
		BuyerName:     input.BuyerName,
		BuyerTaxId:    input.BuyerTaxId,
		StoreLogin:    input.StoreLogin,
		StorePassword: input.StorePassword,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func UpdatePurchase(ctx context.Context, id int, input *NewPurchase) (*Purchase, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	purchase, err := utils.FetchModel[Purchase](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&purchase).Updates(map[string]interface{}{
		"PurchaseDate":  input.PurchaseDate,
		"DeviceModelId": input.DeviceModelId,
		"Quantity":      input.Quantity,
		"UnitPrice":     input.UnitPrice,
		"ImeiList":      input.ImeiList,
		"BuyerName":     input.BuyerName,
		"BuyerTaxId":    input.BuyerTaxId,
		"StoreLogin":    input.StoreLogin,
		"StorePassword": input.StorePassword,
	}).Error
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// AttachPurchaseInvoice records the object key after a completed upload.
func AttachPurchaseInvoice(ctx context.Context, id int, objectKey string) (*Purchase, error) {
	purchase, err := utils.FetchModel[Purchase](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&purchase).
		Update("InvoiceObjectKey", objectKey).Error
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func DeletePurchase(ctx context.Context, id int) (*Purchase, error) {
	purchase, err := utils.FetchModel[Purchase](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	purchase, err := utils.FetchModel[Purchase](ctx, id, "DeviceModel", "DeviceModel.Brand")
	if err != nil {
		return nil, fmt.Errorf("%w: purchase %d", utils.ErrorUnknownEntity, id)
	}
	return purchase, nil
}

func ListPurchases(ctx context.Context, from, to *time.Time) ([]*Purchase, error) {
	db := config.GetDB()
	var results []*Purchase

	dbCtx := db.WithContext(ctx).Preload("DeviceModel")
	if from != nil {
		dbCtx = dbCtx.Where("purchase_date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("purchase_date <= ?", *to)
	}
	if err := dbCtx.Order("purchase_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
