package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
)

func roleCtx(role models.UserRole) context.Context {
	return utils.SetUserRoleInContext(context.Background(), string(role))
}

func TestStartCreateRejectsReaders(t *testing.T) {
	a := &Assistant{sessions: newSessionStore()}
	sess := a.sessions.get(1)

	reply := a.startCreate(roleCtx(models.RoleReader), sess, &Action{
		Name:   ActionStartCreate,
		Entity: "device",
		Fields: map[string]string{"serial_number": "SN-1"},
	})

	if reply.Action != ActionUnknown || !strings.Contains(reply.Text, "not allowed") {
		t.Errorf("reader create reply = %+v", reply)
	}
	if sess.Draft != nil {
		t.Error("refused create must not open a draft")
	}
}

func TestStartCreateRoleMirrorsRestGates(t *testing.T) {
	a := &Assistant{sessions: newSessionStore()}

	// Editors may register devices but catalog entities stay with admins.
	sess := a.sessions.get(1)
	reply := a.startCreate(roleCtx(models.RoleEditor), sess, &Action{Name: ActionStartCreate, Entity: "device"})
	if reply.Action != ActionStartCreate || sess.Draft == nil {
		t.Errorf("editor device create reply = %+v", reply)
	}

	sess = a.sessions.get(2)
	reply = a.startCreate(roleCtx(models.RoleEditor), sess, &Action{Name: ActionStartCreate, Entity: "brand"})
	if reply.Action != ActionUnknown || sess.Draft != nil {
		t.Errorf("editor brand create reply = %+v", reply)
	}

	sess = a.sessions.get(3)
	reply = a.startCreate(roleCtx(models.RoleAdministrator), sess, &Action{Name: ActionStartCreate, Entity: "brand"})
	if reply.Action != ActionStartCreate || sess.Draft == nil {
		t.Errorf("admin brand create reply = %+v", reply)
	}
}

func TestFinishDraftRechecksRole(t *testing.T) {
	a := &Assistant{sessions: newSessionStore()}
	sess := a.sessions.get(1)
	sess.Draft = &draft{Entity: "sector", Fields: map[string]string{"name": "Sales"}}

	reply := a.finishDraft(roleCtx(models.RoleEditor), sess)
	if reply.Action != ActionUnknown || !strings.Contains(reply.Text, "not allowed") {
		t.Errorf("editor sector finish reply = %+v", reply)
	}
}

func TestStartCreateWithoutRoleInContext(t *testing.T) {
	a := &Assistant{sessions: newSessionStore()}
	sess := a.sessions.get(1)

	reply := a.startCreate(context.Background(), sess, &Action{Name: ActionStartCreate, Entity: "device"})
	if reply.Action != ActionUnknown {
		t.Errorf("anonymous create reply = %+v", reply)
	}
}
