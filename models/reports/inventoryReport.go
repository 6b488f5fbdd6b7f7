package reports

import (
	"context"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/shopspring/decimal"
)

type InventoryRow struct {
	SerialNumber     string          `json:"serial_number"`
	ModelName        string          `json:"model_name"`
	BrandName        string          `json:"brand_name"`
	StatusName       string          `json:"status_name"`
	CollaboratorName *string         `json:"collaborator_name"`
	Location         *string         `json:"location"`
	Imei1            *string         `json:"imei1"`
	Imei2            *string         `json:"imei2"`
	Value            decimal.Decimal `json:"value"`
}

type StatusCountRow struct {
	StatusName string `json:"status_name"`
	Total      int    `json:"total"`
}

type SectorCountRow struct {
	SectorName string `json:"sector_name"`
	Total      int    `json:"total"`
}

// GetInventoryReport returns one row per device with the current status and
// the latest custody snapshot. The correlated subquery picks the newest
// ledger entry per device, breaking timestamp ties by id.
func GetInventoryReport(ctx context.Context) ([]*InventoryRow, error) {
	sql := `
SELECT
    d.serial_number,
    dm.name AS model_name,
    b.name AS brand_name,
    s.name AS status_name,
    e.collaborator_name,
    e.location,
    d.imei1,
    d.imei2,
    d.value
FROM devices d
JOIN device_models dm ON dm.id = d.device_model_id
JOIN brands b ON b.id = dm.brand_id
JOIN statuses s ON s.id = d.status_id
LEFT JOIN custody_ledger_entries e ON e.id = (
    SELECT e2.id FROM custody_ledger_entries e2
    WHERE e2.device_id = d.id
    ORDER BY e2.entry_time DESC, e2.id DESC
    LIMIT 1
)
ORDER BY d.serial_number;
`
	var rows []*InventoryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func GetStatusCounts(ctx context.Context) ([]*StatusCountRow, error) {
	sql := `
SELECT s.name AS status_name, COUNT(d.id) AS total
FROM statuses s
LEFT JOIN devices d ON d.status_id = s.id
GROUP BY s.id, s.name
ORDER BY s.id;
`
	var rows []*StatusCountRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetSectorInUseCounts counts devices currently In use per sector of the
// holding collaborator.
func GetSectorInUseCounts(ctx context.Context) ([]*SectorCountRow, error) {
	sql := `
SELECT sec.name AS sector_name, COUNT(d.id) AS total
FROM devices d
JOIN statuses s ON s.id = d.status_id
JOIN custody_ledger_entries e ON e.id = (
    SELECT e2.id FROM custody_ledger_entries e2
    WHERE e2.device_id = d.id
    ORDER BY e2.entry_time DESC, e2.id DESC
    LIMIT 1
)
JOIN collaborators c ON c.id = e.collaborator_id
JOIN sectors sec ON sec.id = c.sector_id
WHERE s.name = 'In use'
GROUP BY sec.id, sec.name
ORDER BY sec.name;
`
	var rows []*SectorCountRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
