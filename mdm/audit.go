package mdm

import (
	"context"
	"fmt"
	"strings"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/assetflow/assetflow_backend/workflow"
)

// Audit classification buckets.
const (
	Synchronized        = "synchronized"
	DivergentHolder     = "divergent-holder"
	OnlyInAssetRegistry = "only-in-asset-registry"
	OnlyInMdm           = "only-in-mdm"
)

// RegistryDevice is the registry-side view joined into the audit: every
// device currently In use with its holder snapshot.
type RegistryDevice struct {
	DeviceId         int
	SerialNumber     string
	CollaboratorName string
}

type AuditEntry struct {
	Classification string  `json:"classification"`
	SerialNumber   string  `json:"serial_number"`
	RegistryHolder *string `json:"registry_holder"`
	MdmHolder      *string `json:"mdm_holder"`
	DeviceId       *int    `json:"device_id"`
}

type AuditReport struct {
	Synchronized        []AuditEntry `json:"synchronized"`
	DivergentHolder     []AuditEntry `json:"divergent_holder"`
	OnlyInAssetRegistry []AuditEntry `json:"only_in_asset_registry"`
	OnlyInMdm           []AuditEntry `json:"only_in_mdm"`
}

// Classify compares both inventories by serial number. Holder names are
// compared case-insensitively after trimming; the MDM side has no stable
// collaborator id to join on.
func Classify(registry []RegistryDevice, managed []Device) *AuditReport {
	report := &AuditReport{}

	mdmBySerial := make(map[string]Device, len(managed))
	for _, m := range managed {
		mdmBySerial[strings.TrimSpace(m.SerialNumber)] = m
	}

	seen := make(map[string]bool, len(registry))
	for _, r := range registry {
		serial := strings.TrimSpace(r.SerialNumber)
		seen[serial] = true

		m, ok := mdmBySerial[serial]
		if !ok {
			holder := r.CollaboratorName
			deviceId := r.DeviceId
			report.OnlyInAssetRegistry = append(report.OnlyInAssetRegistry, AuditEntry{
				Classification: OnlyInAssetRegistry,
				SerialNumber:   serial,
				RegistryHolder: &holder,
				DeviceId:       &deviceId,
			})
			continue
		}

		registryHolder := r.CollaboratorName
		mdmHolder := m.UserName
		deviceId := r.DeviceId
		entry := AuditEntry{
			SerialNumber:   serial,
			RegistryHolder: &registryHolder,
			MdmHolder:      &mdmHolder,
			DeviceId:       &deviceId,
		}
		if sameHolder(registryHolder, mdmHolder) {
			entry.Classification = Synchronized
			report.Synchronized = append(report.Synchronized, entry)
		} else {
			entry.Classification = DivergentHolder
			report.DivergentHolder = append(report.DivergentHolder, entry)
		}
	}

	for _, m := range managed {
		serial := strings.TrimSpace(m.SerialNumber)
		if seen[serial] {
			continue
		}
		mdmHolder := m.UserName
		report.OnlyInMdm = append(report.OnlyInMdm, AuditEntry{
			Classification: OnlyInMdm,
			SerialNumber:   serial,
			MdmHolder:      &mdmHolder,
		})
	}

	return report
}

func sameHolder(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// listInUseDevices is the registry side of the audit.
func listInUseDevices(ctx context.Context) ([]RegistryDevice, error) {
	sql := `
SELECT
    d.id AS device_id,
    d.serial_number,
    COALESCE(e.collaborator_name, '') AS collaborator_name
FROM devices d
JOIN statuses s ON s.id = d.status_id
LEFT JOIN custody_ledger_entries e ON e.id = (
    SELECT e2.id FROM custody_ledger_entries e2
    WHERE e2.device_id = d.id
    ORDER BY e2.entry_time DESC, e2.id DESC
    LIMIT 1
)
WHERE s.name = 'In use'
ORDER BY d.serial_number;
`
	var rows []RegistryDevice
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RunAudit pulls the MDM inventory and classifies it against the devices the
// registry believes are In use.
func RunAudit(ctx context.Context, client *Client) (*AuditReport, error) {
	managed, err := client.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	registry, err := listInUseDevices(ctx)
	if err != nil {
		return nil, err
	}
	return Classify(registry, managed), nil
}

type ReconcileResult struct {
	SerialNumber string `json:"serial_number"`
	AssignedTo   string `json:"assigned_to"`
}

// FindDivergent looks up one divergent-holder row by serial number. Only rows
// the audit classified as divergent are eligible for reconciliation.
func FindDivergent(report *AuditReport, serial string) (*AuditEntry, error) {
	serial = strings.TrimSpace(serial)
	for i := range report.DivergentHolder {
		if report.DivergentHolder[i].SerialNumber == serial {
			return &report.DivergentHolder[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no divergent device with serial %q", utils.ErrorUnknownEntity, serial)
}

// ReconcileDivergent reassigns a single divergent device to the collaborator
// the MDM reports, matched by exact full name. Each reconciliation is a
// deliberate operator action on one row; an MDM user that does not resolve to
// a registered collaborator is rejected, never guessed.
func ReconcileDivergent(ctx context.Context, entry *AuditEntry) (*ReconcileResult, error) {
	if entry.DeviceId == nil || entry.MdmHolder == nil {
		return nil, fmt.Errorf("%w: audit row for %q carries no device or MDM holder",
			utils.ErrorConstraintViolation, entry.SerialNumber)
	}

	collaborator, err := models.GetCollaboratorByExactName(ctx, *entry.MdmHolder)
	if err != nil {
		return nil, fmt.Errorf("%w: no collaborator named %q", utils.ErrorUnknownEntity, *entry.MdmHolder)
	}

	expected := models.StatusInUse
	if _, err := workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:       *entry.DeviceId,
		TargetStatus:   models.StatusAvailable,
		Observation:    "MDM reconciliation: holder mismatch",
		ExpectedStatus: &expected,
	}); err != nil {
		return nil, err
	}
	if _, err := workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:       *entry.DeviceId,
		TargetStatus:   models.StatusInUse,
		CollaboratorId: &collaborator.ID,
		Observation:    "MDM reconciliation: assigned to " + collaborator.FullName,
	}); err != nil {
		return nil, err
	}

	return &ReconcileResult{
		SerialNumber: entry.SerialNumber,
		AssignedTo:   collaborator.FullName,
	}, nil
}
