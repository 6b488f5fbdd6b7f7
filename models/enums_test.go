package models

import "testing"

func TestParseStatusName(t *testing.T) {
	for _, name := range AllStatusNames() {
		got, err := ParseStatusName(string(name))
		if err != nil || got != name {
			t.Errorf("ParseStatusName(%q) = %q, %v", name, got, err)
		}
	}

	for _, bad := range []string{"", "in stock", "Retired", "AVAILABLE"} {
		if _, err := ParseStatusName(bad); err == nil {
			t.Errorf("ParseStatusName(%q) should fail", bad)
		}
	}
}

func TestParseCostResponsibility(t *testing.T) {
	for _, s := range []string{"Company", "Employee", "Company/Employee"} {
		if _, err := ParseCostResponsibility(s); err != nil {
			t.Errorf("ParseCostResponsibility(%q): %v", s, err)
		}
	}
	if _, err := ParseCostResponsibility("Shared"); err == nil {
		t.Error("ParseCostResponsibility(\"Shared\") should fail")
	}
}

func TestParseUserRole(t *testing.T) {
	for _, s := range []string{"Administrator", "Editor", "Reader"} {
		if _, err := ParseUserRole(s); err != nil {
			t.Errorf("ParseUserRole(%q): %v", s, err)
		}
	}
	if _, err := ParseUserRole("admin"); err == nil {
		t.Error("ParseUserRole(\"admin\") should fail")
	}
}

func TestParseChecklistCondition(t *testing.T) {
	for _, s := range []string{"New", "Good", "Regular", "Damaged", "Already owned"} {
		if _, err := ParseChecklistCondition(s); err != nil {
			t.Errorf("ParseChecklistCondition(%q): %v", s, err)
		}
	}
	if _, err := ParseChecklistCondition("Broken"); err == nil {
		t.Error("ParseChecklistCondition(\"Broken\") should fail")
	}
}
