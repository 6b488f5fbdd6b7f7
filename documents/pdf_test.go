package documents

import (
	"bytes"
	"compress/zlib"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/assetflow/assetflow_backend/models"
)

// pdfText inflates every zlib content stream so assertions can look at the
// rendered text.
func pdfText(t *testing.T, pdf []byte) string {
	t.Helper()
	var out strings.Builder
	rest := pdf
	for {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			break
		}
		rest = rest[start+len("stream\n"):]
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		r, err := zlib.NewReader(bytes.NewReader(rest[:end]))
		if err == nil {
			inflated, _ := io.ReadAll(r)
			r.Close()
			out.Write(inflated)
		}
		rest = rest[end:]
	}
	return out.String()
}

func TestBuildResponsibilityTerm(t *testing.T) {
	data := TermData{
		CollaboratorName: "Jane Roe",
		SerialNumber:     "SN-42",
		ModelName:        "A1",
		BrandName:        "Acme",
		Imei1:            "350000000000001",
		Value:            "1200.00",
		Date:             time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	pdf, err := BuildResponsibilityTerm(data)
	if err != nil {
		t.Fatalf("BuildResponsibilityTerm: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output is not a PDF, starts with %q", pdf[:8])
	}
	if len(pdf) < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", len(pdf))
	}
}

func TestResponsibilityTermRendersChecklistGrid(t *testing.T) {
	data := TermData{
		CollaboratorName: "Jane Roe",
		SerialNumber:     "SN-42",
		ModelName:        "A1",
		BrandName:        "Acme",
		Date:             time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Checklist: &models.ReturnChecklist{Items: []models.ChecklistItemState{
			{Item: "Screen", Delivered: true, Condition: models.ConditionNew},
			{Item: "Charger", Delivered: false, Condition: models.ConditionDamaged},
		}},
	}

	pdf, err := BuildResponsibilityTerm(data)
	if err != nil {
		t.Fatalf("BuildResponsibilityTerm: %v", err)
	}
	text := pdfText(t, pdf)

	for _, want := range []string{"Delivered", "Condition"} {
		if !strings.Contains(text, want) {
			t.Errorf("checklist header %q missing from rendered text", want)
		}
	}
	for _, item := range models.ChecklistItems {
		if !strings.Contains(text, item) {
			t.Errorf("checklist item %q missing from rendered text", item)
		}
	}
	if !strings.Contains(text, "Yes") || !strings.Contains(text, string(models.ConditionNew)) {
		t.Errorf("filled checklist state missing from rendered text")
	}
}

func TestResponsibilityTermWithoutChecklistStillPrintsGrid(t *testing.T) {
	pdf, err := BuildResponsibilityTerm(TermData{CollaboratorName: "Jane Roe", SerialNumber: "SN-42"})
	if err != nil {
		t.Fatalf("BuildResponsibilityTerm: %v", err)
	}
	text := pdfText(t, pdf)
	for _, item := range []string{"Screen", "Battery", "Film"} {
		if !strings.Contains(text, item) {
			t.Errorf("blank grid row %q missing", item)
		}
	}
}

func TestBuildDeviceLabel(t *testing.T) {
	pdf, err := BuildDeviceLabel(LabelData{SerialNumber: "SN-42", ModelName: "A1", Holder: "Jane Roe"})
	if err != nil {
		t.Fatalf("BuildDeviceLabel: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output is not a PDF")
	}
}

func TestBuildDeviceLabelWithoutHolder(t *testing.T) {
	pdf, err := BuildDeviceLabel(LabelData{SerialNumber: "SN-42", ModelName: "A1"})
	if err != nil {
		t.Fatalf("BuildDeviceLabel: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("empty PDF")
	}
}
