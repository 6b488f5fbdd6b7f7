package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/assetflow/assetflow_backend/workflow"
	"github.com/shopspring/decimal"
)

func TestDeviceLifecycleLedgerAndMaintenance(t *testing.T) {
	ctx := setupIntegration(t)

	fx := seedCatalog(t, ctx)

	// 1) Register a device; it starts In stock with one ledger entry.
	device, err := models.RegisterDevice(ctx, &models.NewDevice{
		SerialNumber:  "SN-LIFE-001",
		DeviceModelId: fx.model.ID,
		Value:         decimal.NewFromInt(3500),
		Location:      "IT storage",
	})
	if err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	state, err := models.GetDeviceState(ctx, device.ID)
	if err != nil {
		t.Fatalf("GetDeviceState: %v", err)
	}
	if state.Status != models.StatusInStock {
		t.Fatalf("expected In stock after registration; got %s", state.Status)
	}
	if state.HolderSnapshot != nil {
		t.Fatalf("expected no holder snapshot; got %q", *state.HolderSnapshot)
	}

	// 2) Assign to a collaborator.
	res, err := workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:       device.ID,
		TargetStatus:   models.StatusInUse,
		CollaboratorId: &fx.collaborator.ID,
		Location:       "Sales floor",
		Observation:    "new hire kit",
	})
	if err != nil {
		t.Fatalf("Transition to In use: %v", err)
	}
	if res.Entry.CollaboratorName == nil || *res.Entry.CollaboratorName != fx.collaborator.FullName {
		t.Fatalf("expected holder snapshot %q on ledger entry; got %+v", fx.collaborator.FullName, res.Entry.CollaboratorName)
	}

	// 3) Send to maintenance without naming a collaborator; the order must
	// inherit the current holder snapshot.
	res, err = workflow.OpenMaintenance(ctx, workflow.OpenMaintenanceInput{
		DeviceId:       device.ID,
		SupplierId:     &fx.supplier.ID,
		ReportedDefect: "cracked screen",
		Location:       "Repair bench",
	})
	if err != nil {
		t.Fatalf("OpenMaintenance: %v", err)
	}
	order := res.Maintenance
	if order == nil {
		t.Fatalf("expected a maintenance order alongside the transition")
	}
	if order.Status != models.MaintenanceInProgress {
		t.Fatalf("expected order In progress; got %s", order.Status)
	}
	if order.CollaboratorName == nil || *order.CollaboratorName != fx.collaborator.FullName {
		t.Fatalf("expected order to inherit holder %q; got %+v", fx.collaborator.FullName, order.CollaboratorName)
	}

	// A second open on the same device must be rejected while one is In progress.
	_, err = workflow.OpenMaintenance(ctx, workflow.OpenMaintenanceInput{
		DeviceId:       device.ID,
		ReportedDefect: "duplicate",
		Location:       "Repair bench",
	})
	if err == nil {
		t.Fatalf("expected second open maintenance to fail")
	}

	// 4) Close the order back to Available.
	cost := decimal.NewFromInt(250)
	responsibility := models.CostCompany
	res, err = workflow.CloseMaintenance(ctx, workflow.CloseMaintenanceInput{
		OrderId:            order.ID,
		FinalStatus:        models.StatusAvailable,
		AppliedSolution:    "screen replaced",
		RepairCost:         &cost,
		CostResponsibility: &responsibility,
		Location:           "IT storage",
	})
	if err != nil {
		t.Fatalf("CloseMaintenance: %v", err)
	}
	closed := res.Maintenance
	if closed.Status != models.MaintenanceConcluded {
		t.Fatalf("expected Concluded; got %s", closed.Status)
	}
	if closed.ReturnDate == nil {
		t.Fatalf("expected return date to be set on close")
	}
	if closed.RepairCost == nil || closed.RepairCost.Cmp(cost) != 0 {
		t.Fatalf("expected repair cost %s; got %+v", cost, closed.RepairCost)
	}

	// Closing twice must fail.
	_, err = workflow.CloseMaintenance(ctx, workflow.CloseMaintenanceInput{
		OrderId:         order.ID,
		FinalStatus:     models.StatusAvailable,
		AppliedSolution: "again",
	})
	if !errors.Is(err, utils.ErrorDoubleClose) {
		t.Fatalf("expected double-close error; got %v", err)
	}

	// 5) The ledger recorded every step in order.
	history, err := models.DeviceHistory(ctx, device.ID)
	if err != nil {
		t.Fatalf("DeviceHistory: %v", err)
	}
	wantStatuses := []models.StatusName{
		models.StatusInStock, models.StatusInUse,
		models.StatusInMaintenance, models.StatusAvailable,
	}
	if len(history) != len(wantStatuses) {
		t.Fatalf("expected %d ledger entries; got %d", len(wantStatuses), len(history))
	}
	for i, entry := range history {
		if entry.Status == nil || models.StatusName(entry.Status.Name) != wantStatuses[i] {
			t.Fatalf("entry %d: expected status %s; got %+v", i, wantStatuses[i], entry.Status)
		}
		if i > 0 && entry.EntryTime.Before(history[i-1].EntryTime) {
			t.Fatalf("entry %d: entry_time went backwards", i)
		}
	}

	// 6) A device with history cannot be deleted.
	_, err = models.DeleteDevice(ctx, device.ID)
	if !errors.Is(err, utils.ErrorHasHistory) {
		t.Fatalf("expected has-history error on delete; got %v", err)
	}
}

func TestTransitionExpectedStatusDetectsStaleWrites(t *testing.T) {
	ctx := setupIntegration(t)

	fx := seedCatalog(t, ctx)

	device, err := models.RegisterDevice(ctx, &models.NewDevice{
		SerialNumber:  "SN-STALE-001",
		DeviceModelId: fx.model.ID,
		Location:      "IT storage",
	})
	if err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	// Someone else moves the device first.
	if _, err := workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:     device.ID,
		TargetStatus: models.StatusAvailable,
		Location:     "Shelf A",
	}); err != nil {
		t.Fatalf("Transition to Available: %v", err)
	}

	// A caller still holding the In stock screen must be told about the race.
	stale := models.StatusInStock
	_, err = workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:       device.ID,
		TargetStatus:   models.StatusInUse,
		CollaboratorId: &fx.collaborator.ID,
		Location:       "Sales floor",
		ExpectedStatus: &stale,
	})
	if !errors.Is(err, utils.ErrorConcurrentModification) {
		t.Fatalf("expected concurrent-modification error; got %v", err)
	}

	// Written off is terminal.
	if _, err := workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:     device.ID,
		TargetStatus: models.StatusWrittenOff,
		Location:     "Disposal",
	}); err != nil {
		t.Fatalf("Transition to Written off: %v", err)
	}
	_, err = workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:     device.ID,
		TargetStatus: models.StatusAvailable,
		Location:     "Shelf A",
	})
	if !errors.Is(err, utils.ErrorInvalidTransition) {
		t.Fatalf("expected invalid-transition error out of Written off; got %v", err)
	}
}

func TestCollaboratorInactivationAndPermanentDelete(t *testing.T) {
	ctx := setupIntegration(t)

	fx := seedCatalog(t, ctx)

	device, err := models.RegisterDevice(ctx, &models.NewDevice{
		SerialNumber:  "SN-COLLAB-001",
		DeviceModelId: fx.model.ID,
		Location:      "IT storage",
	})
	if err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	if _, err := workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:       device.ID,
		TargetStatus:   models.StatusInUse,
		CollaboratorId: &fx.collaborator.ID,
		Location:       "Sales floor",
	}); err != nil {
		t.Fatalf("Transition to In use: %v", err)
	}

	// Cannot inactivate while holding a device.
	_, err = models.SetCollaboratorInactive(ctx, fx.collaborator.ID)
	if !errors.Is(err, utils.ErrorInUseBlocksInactivation) {
		t.Fatalf("expected in-use-blocks-inactivation; got %v", err)
	}

	// Return the device, then inactivation succeeds.
	if _, err := workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:     device.ID,
		TargetStatus: models.StatusAvailable,
		Location:     "Shelf A",
	}); err != nil {
		t.Fatalf("Transition to Available: %v", err)
	}
	if _, err := models.SetCollaboratorInactive(ctx, fx.collaborator.ID); err != nil {
		t.Fatalf("SetCollaboratorInactive: %v", err)
	}

	// An inactive collaborator cannot receive a device.
	_, err = workflow.Transition(ctx, workflow.TransitionInput{
		DeviceId:       device.ID,
		TargetStatus:   models.StatusInUse,
		CollaboratorId: &fx.collaborator.ID,
		Location:       "Sales floor",
	})
	if !errors.Is(err, utils.ErrorConstraintViolation) {
		t.Fatalf("expected constraint violation assigning to inactive collaborator; got %v", err)
	}

	// Permanent delete archives the row, nulls the ledger FK and keeps the
	// name snapshot readable.
	logRow, err := models.DeleteCollaboratorPermanently(ctx, fx.collaborator.ID)
	if err != nil {
		t.Fatalf("DeleteCollaboratorPermanently: %v", err)
	}
	if logRow.OriginalId != fx.collaborator.ID || logRow.FullName != fx.collaborator.FullName {
		t.Fatalf("terminated log mismatch: %+v", logRow)
	}

	if _, err := models.GetCollaborator(ctx, fx.collaborator.ID); err == nil {
		t.Fatalf("expected collaborator to be gone after permanent delete")
	}

	history, err := models.DeviceHistory(ctx, device.ID)
	if err != nil {
		t.Fatalf("DeviceHistory: %v", err)
	}
	var sawSnapshot bool
	for _, entry := range history {
		if entry.CollaboratorId != nil {
			t.Fatalf("expected collaborator FK to be nulled; entry %d still points at %d", entry.ID, *entry.CollaboratorId)
		}
		if entry.CollaboratorName != nil && *entry.CollaboratorName == fx.collaborator.FullName {
			sawSnapshot = true
		}
	}
	if !sawSnapshot {
		t.Fatalf("expected at least one ledger entry to keep the holder name snapshot")
	}
}

func TestRegisterDeviceDuplicateSerialAndFreshDelete(t *testing.T) {
	ctx := setupIntegration(t)
	fx := seedCatalog(t, ctx)

	if _, err := models.RegisterDevice(ctx, &models.NewDevice{
		SerialNumber:  "SN-DUP-001",
		DeviceModelId: fx.model.ID,
		Location:      "IT storage",
	}); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}

	// Both the pre-check and the unique-index fallback report a duplicate
	// serial as a constraint violation.
	_, err := models.RegisterDevice(ctx, &models.NewDevice{
		SerialNumber:  "SN-DUP-001",
		DeviceModelId: fx.model.ID,
		Location:      "IT storage",
	})
	if !errors.Is(err, utils.ErrorConstraintViolation) {
		t.Fatalf("expected constraint violation for duplicate serial; got %v", err)
	}

	// A device with only its registration entry deletes cleanly; the history
	// check runs against the locked row inside the delete transaction.
	fresh, err := models.RegisterDevice(ctx, &models.NewDevice{
		SerialNumber:  "SN-DUP-002",
		DeviceModelId: fx.model.ID,
		Location:      "IT storage",
	})
	if err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	if _, err := models.DeleteDevice(ctx, fresh.ID); err != nil {
		t.Fatalf("DeleteDevice on a fresh device: %v", err)
	}
	if _, err := models.GetDevice(ctx, fresh.ID); err == nil {
		t.Fatalf("expected device to be gone after delete")
	}
}

func TestCollaboratorPhoneStoredInE164(t *testing.T) {
	ctx := setupIntegration(t)
	fx := seedCatalog(t, ctx)

	phone := "(11) 91234-5678"
	created, err := models.CreateCollaborator(ctx, &models.NewCollaborator{
		Code:     "C-200",
		FullName: "John Poe",
		Phone:    &phone,
		SectorId: fx.sector.ID,
	})
	if err != nil {
		t.Fatalf("CreateCollaborator: %v", err)
	}
	if created.Phone == nil || *created.Phone != "+5511912345678" {
		t.Fatalf("expected phone stored in E.164; got %+v", created.Phone)
	}

	bad := "12"
	_, err = models.CreateCollaborator(ctx, &models.NewCollaborator{
		Code:     "C-201",
		FullName: "Bad Phone",
		Phone:    &bad,
		SectorId: fx.sector.ID,
	})
	if !errors.Is(err, utils.ErrorConstraintViolation) {
		t.Fatalf("expected constraint violation for invalid phone; got %v", err)
	}
}

type catalogFixture struct {
	brand        *models.Brand
	model        *models.DeviceModel
	sector       *models.Sector
	supplier     *models.Supplier
	collaborator *models.Collaborator
}

func seedCatalog(t *testing.T, ctx context.Context) *catalogFixture {
	t.Helper()

	brand, err := models.CreateBrand(ctx, &models.NewBrand{Name: "Samsung"})
	if err != nil {
		t.Fatalf("CreateBrand: %v", err)
	}
	model, err := models.CreateDeviceModel(ctx, &models.NewDeviceModel{Name: "Galaxy S24", BrandId: brand.ID})
	if err != nil {
		t.Fatalf("CreateDeviceModel: %v", err)
	}
	sector, err := models.CreateSector(ctx, &models.NewSector{Name: "Sales"})
	if err != nil {
		t.Fatalf("CreateSector: %v", err)
	}
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "FixIt Ltda"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	collaborator, err := models.CreateCollaborator(ctx, &models.NewCollaborator{
		Code:     "C-100",
		FullName: "Jane Roe",
		SectorId: sector.ID,
	})
	if err != nil {
		t.Fatalf("CreateCollaborator: %v", err)
	}
	return &catalogFixture{brand: brand, model: model, sector: sector, supplier: supplier, collaborator: collaborator}
}

// setupIntegration spins up a throwaway MySQL container, wires env for the
// config.Connect* helpers, migrates the schema and returns a context carrying
// a test user identity.
func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "assetflow_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetUserRoleInContext(ctx, string(models.RoleAdministrator))
	return ctx
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("assetflow-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=assetflow_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
