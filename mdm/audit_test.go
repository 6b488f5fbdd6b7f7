package mdm

import (
	"errors"
	"testing"

	"github.com/assetflow/assetflow_backend/utils"
)

func TestClassify(t *testing.T) {
	registry := []RegistryDevice{
		{DeviceId: 1, SerialNumber: "SN-1", CollaboratorName: "Jane Roe"},
		{DeviceId: 2, SerialNumber: "SN-2", CollaboratorName: "John Poe"},
		{DeviceId: 3, SerialNumber: "SN-3", CollaboratorName: "Ada Moe"},
	}
	managed := []Device{
		{SerialNumber: "SN-1", UserName: "jane roe"},
		{SerialNumber: "SN-2", UserName: "Someone Else"},
		{SerialNumber: "SN-9", UserName: "Ghost User"},
	}

	report := Classify(registry, managed)

	if len(report.Synchronized) != 1 || report.Synchronized[0].SerialNumber != "SN-1" {
		t.Errorf("synchronized = %+v", report.Synchronized)
	}
	if len(report.DivergentHolder) != 1 || report.DivergentHolder[0].SerialNumber != "SN-2" {
		t.Errorf("divergent = %+v", report.DivergentHolder)
	}
	if len(report.OnlyInAssetRegistry) != 1 || report.OnlyInAssetRegistry[0].SerialNumber != "SN-3" {
		t.Errorf("only-in-registry = %+v", report.OnlyInAssetRegistry)
	}
	if len(report.OnlyInMdm) != 1 || report.OnlyInMdm[0].SerialNumber != "SN-9" {
		t.Errorf("only-in-mdm = %+v", report.OnlyInMdm)
	}
}

func TestClassifyHolderComparisonIgnoresCaseAndSpace(t *testing.T) {
	registry := []RegistryDevice{{DeviceId: 1, SerialNumber: "SN-1", CollaboratorName: "  Jane Roe "}}
	managed := []Device{{SerialNumber: " SN-1", UserName: "JANE ROE"}}

	report := Classify(registry, managed)
	if len(report.Synchronized) != 1 {
		t.Fatalf("expected synchronized, got %+v", report)
	}
}

func TestFindDivergentSelectsOneRow(t *testing.T) {
	registry := []RegistryDevice{
		{DeviceId: 1, SerialNumber: "SN-1", CollaboratorName: "Jane Roe"},
		{DeviceId: 2, SerialNumber: "SN-2", CollaboratorName: "John Poe"},
	}
	managed := []Device{
		{SerialNumber: "SN-1", UserName: "Someone Else"},
		{SerialNumber: "SN-2", UserName: "Another One"},
	}
	report := Classify(registry, managed)

	entry, err := FindDivergent(report, " SN-2 ")
	if err != nil {
		t.Fatalf("FindDivergent: %v", err)
	}
	if entry.DeviceId == nil || *entry.DeviceId != 2 {
		t.Errorf("selected entry = %+v", entry)
	}

	// A synchronized or unlisted serial is not eligible for reconciliation.
	if _, err := FindDivergent(report, "SN-9"); !errors.Is(err, utils.ErrorUnknownEntity) {
		t.Errorf("expected unknown-entity for absent serial, got %v", err)
	}
}

func TestClassifyEmptyInventories(t *testing.T) {
	report := Classify(nil, nil)
	if len(report.Synchronized)+len(report.DivergentHolder)+len(report.OnlyInAssetRegistry)+len(report.OnlyInMdm) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}
