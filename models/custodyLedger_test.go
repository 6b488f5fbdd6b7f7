package models

import "testing"

func TestChecklistRoundTrip(t *testing.T) {
	checklist := &ReturnChecklist{Items: []ChecklistItemState{
		{Item: "Screen", Delivered: true, Condition: ConditionGood},
		{Item: "Charger", Delivered: false, Condition: ConditionDamaged},
	}}
	if err := checklist.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	encoded, err := checklist.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	entry := CustodyLedgerEntry{Checklist: &encoded}
	decoded, err := entry.DecodeChecklist()
	if err != nil {
		t.Fatalf("DecodeChecklist: %v", err)
	}
	if len(decoded.Items) != 2 || decoded.Items[0].Item != "Screen" || decoded.Items[1].Condition != ConditionDamaged {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestChecklistValidateRejectsBadCondition(t *testing.T) {
	checklist := &ReturnChecklist{Items: []ChecklistItemState{
		{Item: "Screen", Delivered: true, Condition: ChecklistCondition("Broken")},
	}}
	if err := checklist.Validate(); err == nil {
		t.Error("expected validation failure for unknown condition")
	}
}

func TestDecodeChecklistNil(t *testing.T) {
	entry := CustodyLedgerEntry{}
	decoded, err := entry.DecodeChecklist()
	if err != nil || decoded != nil {
		t.Errorf("got %+v, %v; want nil, nil", decoded, err)
	}
}
