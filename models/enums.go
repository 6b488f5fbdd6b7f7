package models

import "fmt"

// StatusName is the closed set of device lifecycle statuses. The literal
// names are also the seeded rows of the statuses table.
type StatusName string

const (
	StatusInStock       StatusName = "In stock"
	StatusInUse         StatusName = "In use"
	StatusAvailable     StatusName = "Available"
	StatusInMaintenance StatusName = "In maintenance"
	StatusWrittenOff    StatusName = "Written off"
)

func AllStatusNames() []StatusName {
	return []StatusName{StatusInStock, StatusInUse, StatusAvailable, StatusInMaintenance, StatusWrittenOff}
}

func ParseStatusName(s string) (StatusName, error) {
	switch StatusName(s) {
	case StatusInStock, StatusInUse, StatusAvailable, StatusInMaintenance, StatusWrittenOff:
		return StatusName(s), nil
	}
	return "", fmt.Errorf("invalid status name %q", s)
}

type CollaboratorStatus string

const (
	CollaboratorActive   CollaboratorStatus = "Active"
	CollaboratorInactive CollaboratorStatus = "Inactive"
)

type MaintenanceStatus string

const (
	MaintenanceInProgress MaintenanceStatus = "In progress"
	MaintenanceConcluded  MaintenanceStatus = "Concluded"
	MaintenanceWrittenOff MaintenanceStatus = "Written off"
)

type CostResponsibility string

const (
	CostCompany         CostResponsibility = "Company"
	CostEmployee        CostResponsibility = "Employee"
	CostCompanyEmployee CostResponsibility = "Company/Employee"
)

func ParseCostResponsibility(s string) (CostResponsibility, error) {
	switch CostResponsibility(s) {
	case CostCompany, CostEmployee, CostCompanyEmployee:
		return CostResponsibility(s), nil
	}
	return "", fmt.Errorf("invalid cost responsibility %q", s)
}

type UserRole string

const (
	RoleAdministrator UserRole = "Administrator"
	RoleEditor        UserRole = "Editor"
	RoleReader        UserRole = "Reader"
)

func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleAdministrator, RoleEditor, RoleReader:
		return UserRole(s), nil
	}
	return "", fmt.Errorf("invalid user role %q", s)
}

// ChecklistCondition grades one checklist item on a responsibility term.
type ChecklistCondition string

const (
	ConditionNew          ChecklistCondition = "New"
	ConditionGood         ChecklistCondition = "Good"
	ConditionRegular      ChecklistCondition = "Regular"
	ConditionDamaged      ChecklistCondition = "Damaged"
	ConditionAlreadyOwned ChecklistCondition = "Already owned"
)

func ParseChecklistCondition(s string) (ChecklistCondition, error) {
	switch ChecklistCondition(s) {
	case ConditionNew, ConditionGood, ConditionRegular, ConditionDamaged, ConditionAlreadyOwned:
		return ChecklistCondition(s), nil
	}
	return "", fmt.Errorf("invalid checklist condition %q", s)
}

// ChecklistItems are the fixed items of the responsibility-term checklist,
// in print order.
var ChecklistItems = []string{
	"Screen", "Case", "Battery", "Buttons", "USB", "SIM", "Charger", "USB cable", "Case", "Film",
}
