package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
	"gorm.io/gorm"
)

type Collaborator struct {
	ID           int                `gorm:"primary_key" json:"id"`
	Code         string             `gorm:"size:30;not null;uniqueIndex:idx_code_sector" json:"code" binding:"required"`
	FullName     string             `gorm:"size:150;not null" json:"full_name" binding:"required"`
	TaxId        *string            `gorm:"size:20;unique" json:"tax_id"`
	Email        *string            `gorm:"size:100" json:"email"`
	Phone        *string            `gorm:"size:20" json:"phone"`
	SectorId     int                `gorm:"not null;uniqueIndex:idx_code_sector;index" json:"sector_id" binding:"required"`
	Sector       *Sector            `json:"sector,omitempty"`
	Status       CollaboratorStatus `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	RegisteredAt time.Time          `gorm:"autoCreateTime" json:"registered_at"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// TerminatedCollaboratorLog is the write-only tombstone archive. Rows are
// inserted on permanent deletion and never read back by the system.
type TerminatedCollaboratorLog struct {
	ID           int       `gorm:"primary_key" json:"id"`
	OriginalId   int       `gorm:"index;not null" json:"original_id"`
	Code         string    `gorm:"size:30" json:"code"`
	FullName     string    `gorm:"size:150" json:"full_name"`
	TaxId        *string   `gorm:"size:20" json:"tax_id"`
	Email        *string   `gorm:"size:100" json:"email"`
	Phone        *string   `gorm:"size:20" json:"phone"`
	SectorId     int       `json:"sector_id"`
	SectorName   string    `gorm:"size:100" json:"sector_name"`
	RegisteredAt time.Time `json:"registered_at"`
	DeletedAt    time.Time `gorm:"autoCreateTime" json:"deleted_at"`
	DeletedBy    string    `gorm:"size:100" json:"deleted_by"`
}

func (TerminatedCollaboratorLog) TableName() string { return "collaborators_terminated_log" }

type NewCollaborator struct {
	Code     string  `json:"code" binding:"required"`
	FullName string  `json:"full_name" binding:"required"`
	TaxId    *string `json:"tax_id"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	SectorId int     `json:"sector_id" binding:"required"`
}

func (input *NewCollaborator) validate(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[Sector](ctx, input.SectorId); err != nil {
		return fmt.Errorf("%w: sector %d", utils.ErrorUnknownEntity, input.SectorId)
	}

	// code unique within sector
	cond := "code = ? AND sector_id = ?"
	var count int64
	var err error
	if id == 0 {
		count, err = utils.ResourceCountWhere[Collaborator](ctx, cond, input.Code, input.SectorId)
	} else {
		count, err = utils.ResourceCountWhere[Collaborator](ctx, cond+" AND NOT id = ?", input.Code, input.SectorId, id)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: code %q already used in this sector", utils.ErrorConstraintViolation, input.Code)
	}

	// tax id globally unique when present
	if input.TaxId != nil && strings.TrimSpace(*input.TaxId) != "" {
		if err := utils.ValidateUnique[Collaborator](ctx, "tax_id", strings.TrimSpace(*input.TaxId), id); err != nil {
			return err
		}
	}

	// phone stored in E.164 when present
	if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
		normalized, err := utils.NormalizePhoneNumber(strings.TrimSpace(*input.Phone), "")
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrorConstraintViolation, err)
		}
		input.Phone = &normalized
	} else {
		input.Phone = nil
	}
	return nil
}

func CreateCollaborator(ctx context.Context, input *NewCollaborator) (*Collaborator, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	collaborator := Collaborator{
		Code:     strings.TrimSpace(input.Code),
		FullName: strings.TrimSpace(input.FullName),
		TaxId:    input.TaxId,
		Email:    input.Email,
		Phone:    input.Phone,
		SectorId: input.SectorId,
		Status:   CollaboratorActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&collaborator).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("%w: code %q in sector %d", utils.ErrorConstraintViolation, collaborator.Code, collaborator.SectorId)
		}
		return nil, err
	}
	return &collaborator, nil
}

// UpdateCollaborator edits identity fields. Renames never touch ledger or
// maintenance snapshots.
func UpdateCollaborator(ctx context.Context, id int, input *NewCollaborator) (*Collaborator, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	collaborator, err := utils.FetchModel[Collaborator](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: collaborator %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&collaborator).Updates(map[string]interface{}{
		"Code":     strings.TrimSpace(input.Code),
		"FullName": strings.TrimSpace(input.FullName),
		"TaxId":    input.TaxId,
		"Email":    input.Email,
		"Phone":    input.Phone,
		"SectorId": input.SectorId,
	}).Error
	if err != nil {
		return nil, err
	}
	return collaborator, nil
}

// countDevicesHeldInUse counts devices currently In use whose latest ledger
// entry references this collaborator.
func countDevicesHeldInUse(tx *gorm.DB, collaboratorId int) (int64, error) {
	var count int64
	err := tx.Raw(`
		SELECT COUNT(*)
		FROM devices d
		JOIN statuses s ON s.id = d.status_id
		JOIN custody_ledger_entries e ON e.id = (
			SELECT e2.id FROM custody_ledger_entries e2
			WHERE e2.device_id = d.id
			ORDER BY e2.entry_time DESC, e2.id DESC
			LIMIT 1
		)
		WHERE s.name = ? AND e.collaborator_id = ?`,
		string(StatusInUse), collaboratorId).Scan(&count).Error
	return count, err
}

// SetCollaboratorInactive fails while the collaborator still holds any
// device In use.
func SetCollaboratorInactive(ctx context.Context, id int) (*Collaborator, error) {
	collaborator, err := utils.FetchModel[Collaborator](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: collaborator %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	held, err := countDevicesHeldInUse(db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if held > 0 {
		return nil, fmt.Errorf("%w: collaborator holds %d device(s)", utils.ErrorInUseBlocksInactivation, held)
	}

	err = db.WithContext(ctx).Model(&collaborator).
		Update("Status", CollaboratorInactive).Error
	if err != nil {
		return nil, err
	}
	return collaborator, nil
}

func SetCollaboratorActive(ctx context.Context, id int) (*Collaborator, error) {
	collaborator, err := utils.FetchModel[Collaborator](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: collaborator %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&collaborator).
		Update("Status", CollaboratorActive).Error
	if err != nil {
		return nil, err
	}
	return collaborator, nil
}

// DeleteCollaboratorPermanently requires Inactive status. One transaction
// copies the row into the terminated log, nulls every foreign key pointing at
// the collaborator (custody ledger, maintenance orders, gmail accounts) and
// removes the row. Name snapshots in those tables are untouched, so the
// custody history stays readable.
func DeleteCollaboratorPermanently(ctx context.Context, id int) (*TerminatedCollaboratorLog, error) {
	collaborator, err := utils.FetchModel[Collaborator](ctx, id, "Sector")
	if err != nil {
		return nil, fmt.Errorf("%w: collaborator %d", utils.ErrorUnknownEntity, id)
	}
	if collaborator.Status != CollaboratorInactive {
		return nil, fmt.Errorf("%w: collaborator must be inactive before permanent deletion", utils.ErrorInUseBlocksInactivation)
	}

	deletedBy, _ := utils.GetUserNameFromContext(ctx)

	db := config.GetDB()
	held, err := countDevicesHeldInUse(db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if held > 0 {
		return nil, fmt.Errorf("%w: collaborator holds %d device(s)", utils.ErrorInUseBlocksInactivation, held)
	}

	sectorName := ""
	if collaborator.Sector != nil {
		sectorName = collaborator.Sector.Name
	}

	logRow := TerminatedCollaboratorLog{
		OriginalId:   collaborator.ID,
		Code:         collaborator.Code,
		FullName:     collaborator.FullName,
		TaxId:        collaborator.TaxId,
		Email:        collaborator.Email,
		Phone:        collaborator.Phone,
		SectorId:     collaborator.SectorId,
		SectorName:   sectorName,
		RegisteredAt: collaborator.RegisteredAt,
		DeletedBy:    deletedBy,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}
		if err := tx.Model(&CustodyLedgerEntry{}).
			Where("collaborator_id = ?", id).
			Update("collaborator_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&MaintenanceOrder{}).
			Where("collaborator_id = ?", id).
			Update("collaborator_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&GmailAccount{}).
			Where("collaborator_id = ?", id).
			Update("collaborator_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&Collaborator{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &logRow, nil
}

func GetCollaborator(ctx context.Context, id int) (*Collaborator, error) {
	collaborator, err := utils.FetchModel[Collaborator](ctx, id, "Sector")
	if err != nil {
		return nil, fmt.Errorf("%w: collaborator %d", utils.ErrorUnknownEntity, id)
	}
	return collaborator, nil
}

// GetCollaboratorByExactName matches the full name exactly; used by MDM
// reconciliation.
func GetCollaboratorByExactName(ctx context.Context, fullName string) (*Collaborator, error) {
	db := config.GetDB()
	var collaborator Collaborator
	err := db.WithContext(ctx).
		Where("full_name = ?", fullName).
		First(&collaborator).Error
	if err != nil {
		return nil, fmt.Errorf("%w: collaborator %q", utils.ErrorUnknownEntity, fullName)
	}
	return &collaborator, nil
}

func GetCollaboratorByCode(ctx context.Context, code string) (*Collaborator, error) {
	db := config.GetDB()
	var collaborator Collaborator
	err := db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		First(&collaborator).Error
	if err != nil {
		return nil, fmt.Errorf("%w: collaborator code %q", utils.ErrorUnknownEntity, code)
	}
	return &collaborator, nil
}

type CollaboratorFilter struct {
	Name     *string
	SectorId *int
	Status   *string
}

func ListCollaborators(ctx context.Context, filter CollaboratorFilter) ([]*Collaborator, error) {
	db := config.GetDB()
	var results []*Collaborator

	dbCtx := db.WithContext(ctx).Preload("Sector")
	if filter.Name != nil && *filter.Name != "" {
		dbCtx = dbCtx.Where("full_name LIKE ?", "%"+*filter.Name+"%")
	}
	if filter.SectorId != nil && *filter.SectorId > 0 {
		dbCtx = dbCtx.Where("sector_id = ?", *filter.SectorId)
	}
	if filter.Status != nil && *filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if err := dbCtx.Order("full_name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
