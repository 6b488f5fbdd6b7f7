package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
)

// GmailAccount maps a corporate address to the collaborator currently using
// it. The FK is nulled on permanent collaborator deletion.
type GmailAccount struct {
	ID             int           `gorm:"primary_key" json:"id"`
	Address        string        `gorm:"size:100;not null;unique" json:"address" binding:"required"`
	Password       string        `gorm:"size:255" json:"password"`
	CollaboratorId *int          `gorm:"index" json:"collaborator_id"`
	Collaborator   *Collaborator `json:"collaborator,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGmailAccount struct {
	Address        string `json:"address" binding:"required,email"`
	Password       string `json:"password"`
	CollaboratorId *int   `json:"collaborator_id"`
}

func (input *NewGmailAccount) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[GmailAccount](ctx, "address", strings.TrimSpace(input.Address), id); err != nil {
		return err
	}
	if input.CollaboratorId != nil {
		if err := utils.ValidateResourceId[Collaborator](ctx, *input.CollaboratorId); err != nil {
			return fmt.Errorf("%w: collaborator %d", utils.ErrorUnknownEntity, *input.CollaboratorId)
		}
	}
	return nil
}

func CreateGmailAccount(ctx context.Context, input *NewGmailAccount) (*GmailAccount, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	account := GmailAccount{
		Address:        strings.TrimSpace(input.Address),
		Password:       input.Password,
		CollaboratorId: input.CollaboratorId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func UpdateGmailAccount(ctx context.Context, id int, input *NewGmailAccount) (*GmailAccount, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	account, err := utils.FetchModel[GmailAccount](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: gmail account %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&account).Updates(map[string]interface{}{
		"Address":        strings.TrimSpace(input.Address),
		"Password":       input.Password,
		"CollaboratorId": input.CollaboratorId,
	}).Error
	if err != nil {
		return nil, err
	}
	return account, nil
}

func DeleteGmailAccount(ctx context.Context, id int) (*GmailAccount, error) {
	account, err := utils.FetchModel[GmailAccount](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: gmail account %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func ListGmailAccounts(ctx context.Context, address *string) ([]*GmailAccount, error) {
	db := config.GetDB()
	var results []*GmailAccount

	dbCtx := db.WithContext(ctx).Preload("Collaborator")
	if address != nil && *address != "" {
		dbCtx = dbCtx.Where("address LIKE ?", "%"+*address+"%")
	}
	if err := dbCtx.Order("address").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
