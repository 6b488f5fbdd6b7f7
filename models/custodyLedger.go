package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
	"gorm.io/gorm"
)

// CustodyLedgerEntry is append-only: no update or delete function exists in
// this package, and none may be added. CollaboratorName is a snapshot taken
// at write time; it stays intact when the referenced collaborator is renamed
// or deleted (the FK is nulled, the snapshot is not).
type CustodyLedgerEntry struct {
	ID               int           `gorm:"primary_key" json:"id"`
	DeviceId         int           `gorm:"index;not null" json:"device_id"`
	Device           *Device       `json:"device,omitempty"`
	StatusId         int           `gorm:"not null" json:"status_id"`
	Status           *Status       `json:"status,omitempty"`
	CollaboratorId   *int          `gorm:"index" json:"collaborator_id"`
	Collaborator     *Collaborator `json:"collaborator,omitempty"`
	CollaboratorName *string       `gorm:"size:150" json:"collaborator_name"`
	Location         string        `gorm:"size:150" json:"location"`
	Observation      string        `gorm:"type:text" json:"observation"`
	Checklist        *string       `gorm:"type:text" json:"checklist"`
	EntryTime        time.Time     `gorm:"index;not null" json:"entry_time"`
}

func (CustodyLedgerEntry) TableName() string { return "custody_ledger_entries" }

// ReturnChecklist is the optional blob attached to a custody entry.
type ReturnChecklist struct {
	Items []ChecklistItemState `json:"items"`
}

type ChecklistItemState struct {
	Item      string             `json:"item"`
	Delivered bool               `json:"delivered"`
	Condition ChecklistCondition `json:"condition"`
}

func (c *ReturnChecklist) Validate() error {
	for _, item := range c.Items {
		if _, err := ParseChecklistCondition(string(item.Condition)); err != nil {
			return err
		}
	}
	return nil
}

func (c *ReturnChecklist) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (e *CustodyLedgerEntry) DecodeChecklist() (*ReturnChecklist, error) {
	if e.Checklist == nil || *e.Checklist == "" {
		return nil, nil
	}
	var c ReturnChecklist
	if err := json.Unmarshal([]byte(*e.Checklist), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateLedgerEntry appends inside the caller's transaction. Timestamps are
// server-side and strictly monotonic per device: a same-instant append is
// bumped by one microsecond past the previous entry.
func CreateLedgerEntry(tx *gorm.DB, entry *CustodyLedgerEntry) error {
	now := time.Now().UTC()
	last, err := LatestLedgerEntryTx(tx, entry.DeviceId)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return err
	}
	if last != nil && !now.After(last.EntryTime) {
		now = last.EntryTime.Add(time.Microsecond)
	}
	entry.EntryTime = now

	return tx.Create(entry).Error
}

// LatestLedgerEntryTx returns the most recent entry, breaking timestamp
// ties by id.
func LatestLedgerEntryTx(tx *gorm.DB, deviceId int) (*CustodyLedgerEntry, error) {
	var entry CustodyLedgerEntry
	err := tx.Where("device_id = ?", deviceId).
		Order("entry_time DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LatestHolderEntryTx finds the most recent entry that still carries
// custody information: a live collaborator reference or a name snapshot.
func LatestHolderEntryTx(tx *gorm.DB, deviceId int) (*CustodyLedgerEntry, error) {
	var entry CustodyLedgerEntry
	err := tx.Where("device_id = ? AND (collaborator_id IS NOT NULL OR (collaborator_name IS NOT NULL AND collaborator_name <> ''))", deviceId).
		Order("entry_time DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func LatestLedgerEntry(ctx context.Context, deviceId int) (*CustodyLedgerEntry, error) {
	return LatestLedgerEntryTx(config.GetDB().WithContext(ctx), deviceId)
}

func LatestHolderEntry(ctx context.Context, deviceId int) (*CustodyLedgerEntry, error) {
	return LatestHolderEntryTx(config.GetDB().WithContext(ctx), deviceId)
}

// DeviceHistory returns the chronological custody scan for one device.
func DeviceHistory(ctx context.Context, deviceId int) ([]*CustodyLedgerEntry, error) {
	if err := utils.ValidateResourceId[Device](ctx, deviceId); err != nil {
		return nil, fmt.Errorf("%w: device %d", utils.ErrorUnknownEntity, deviceId)
	}

	db := config.GetDB()
	var entries []*CustodyLedgerEntry
	err := db.WithContext(ctx).
		Preload("Status").
		Where("device_id = ?", deviceId).
		Order("entry_time ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

type MovementFilter struct {
	DeviceSerial     *string
	StatusName       *string
	CollaboratorName *string
	From             *time.Time
	To               *time.Time
}

// ListMovements is the filtered global scan used by the movements screen and
// the movements export.
func ListMovements(ctx context.Context, filter MovementFilter) ([]*CustodyLedgerEntry, error) {
	db := config.GetDB()
	var entries []*CustodyLedgerEntry

	dbCtx := db.WithContext(ctx).
		Preload("Device").
		Preload("Status").
		Joins("JOIN devices ON devices.id = custody_ledger_entries.device_id").
		Joins("JOIN statuses ON statuses.id = custody_ledger_entries.status_id")

	if filter.DeviceSerial != nil && *filter.DeviceSerial != "" {
		dbCtx = dbCtx.Where("devices.serial_number LIKE ?", "%"+*filter.DeviceSerial+"%")
	}
	if filter.StatusName != nil && *filter.StatusName != "" {
		dbCtx = dbCtx.Where("statuses.name = ?", *filter.StatusName)
	}
	if filter.CollaboratorName != nil && *filter.CollaboratorName != "" {
		dbCtx = dbCtx.Where("custody_ledger_entries.collaborator_name LIKE ?", "%"+*filter.CollaboratorName+"%")
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("custody_ledger_entries.entry_time >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("custody_ledger_entries.entry_time <= ?", *filter.To)
	}

	err := dbCtx.Order("custody_ledger_entries.entry_time DESC, custody_ledger_entries.id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
