package models

import (
	"log"

	"github.com/assetflow/assetflow_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Status{}, &Brand{}, &DeviceModel{}, &Sector{}, &Supplier{},
		&Device{}, &CustodyLedgerEntry{},
		&Collaborator{}, &TerminatedCollaboratorLog{},
		&MaintenanceOrder{},
		&Purchase{}, &GmailAccount{},
		&User{}, &PasswordReset{},
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := SeedStatuses(db); err != nil {
		log.Fatal(err)
	}
}
