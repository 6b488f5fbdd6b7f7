package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/shopspring/decimal"
)

// Reply is what the chat endpoint returns for one user message.
type Reply struct {
	Text   string      `json:"text"`
	Action string      `json:"action"`
	Data   interface{} `json:"data,omitempty"`
}

// requiredFields per creatable entity, in the order the assistant asks for
// them.
var requiredFields = map[string][]string{
	"device":       {"serial_number", "brand", "model"},
	"collaborator": {"code", "full_name", "sector"},
	"brand":        {"name"},
	"sector":       {"name"},
}

// createMinRole mirrors the REST gates: brands and sectors are catalog
// entities reserved to administrators, devices and collaborators need an
// editor.
var createMinRole = map[string]models.UserRole{
	"device":       models.RoleEditor,
	"collaborator": models.RoleEditor,
	"brand":        models.RoleAdministrator,
	"sector":       models.RoleAdministrator,
}

func allowedToCreate(ctx context.Context, entity string) bool {
	role, ok := utils.GetUserRoleFromContext(ctx)
	if !ok {
		return false
	}
	switch models.UserRole(role) {
	case models.RoleAdministrator:
		return true
	case models.RoleEditor:
		return createMinRole[entity] == models.RoleEditor
	}
	return false
}

// Assistant wires the LLM interpreter to the inventory operations.
type Assistant struct {
	llm      *LLMClient
	sessions *sessionStore
}

func New(llm *LLMClient) *Assistant {
	return &Assistant{llm: llm, sessions: newSessionStore()}
}

// HandleMessage interprets one message in the user's conversation and
// executes the resulting action. LLM failures degrade to an apology reply;
// the inventory itself is never touched on an uninterpreted message.
func (a *Assistant) HandleMessage(ctx context.Context, userId int, message string) (*Reply, error) {
	sess := a.sessions.get(userId)

	action, err := a.llm.Interpret(ctx, sess.History, message)
	if err != nil {
		config.LogError(config.GetLogger(), "assistant", "HandleMessage", "interpret failed", userId, err)
		return &Reply{
			Text:   "Sorry, the assistant is unavailable right now. Please try again in a moment.",
			Action: ActionUnknown,
		}, nil
	}

	reply := a.execute(ctx, userId, sess, action)
	if action.Name == ActionClearChat {
		return reply, nil
	}
	sess.appendExchange(message, reply.Text)
	return reply, nil
}

func (a *Assistant) execute(ctx context.Context, userId int, sess *session, action *Action) *Reply {
	switch action.Name {
	case ActionGreeting:
		text := action.Reply
		if text == "" {
			text = "Hello! I can register devices and collaborators, or look up a device or its movement history."
		}
		return &Reply{Text: text, Action: ActionGreeting}

	case ActionStartCreate:
		return a.startCreate(ctx, sess, action)

	case ActionProvideField:
		return a.provideField(ctx, sess, action)

	case ActionSearchDevice:
		return a.searchDevice(ctx, action)

	case ActionSearchMovements:
		return a.searchMovements(ctx, action)

	case ActionClearChat:
		a.sessions.clear(userId)
		return &Reply{Text: "Conversation cleared.", Action: ActionClearChat}

	case ActionLogout:
		return &Reply{Text: "Signing you out.", Action: ActionLogout}
	}

	text := action.Reply
	if text == "" {
		text = "I did not understand that. You can ask me to register a device, find a device by serial, or show recent movements."
	}
	return &Reply{Text: text, Action: ActionUnknown}
}

func (a *Assistant) startCreate(ctx context.Context, sess *session, action *Action) *Reply {
	entity := strings.ToLower(action.Entity)
	fields, ok := requiredFields[entity]
	if !ok {
		return &Reply{Text: fmt.Sprintf("I cannot create %q. I can create: device, collaborator, brand, sector.", action.Entity), Action: ActionUnknown}
	}
	if !allowedToCreate(ctx, entity) {
		return &Reply{Text: fmt.Sprintf("Your account is not allowed to create a %s.", entity), Action: ActionUnknown}
	}

	sess.Draft = &draft{Entity: entity, Fields: map[string]string{}}
	for k, v := range action.Fields {
		if v != "" {
			sess.Draft.Fields[strings.ToLower(k)] = v
		}
	}

	if missing := firstMissing(sess.Draft, fields); missing != "" {
		return &Reply{Text: fmt.Sprintf("Creating a %s. What is the %s?", entity, fieldLabel(missing)), Action: ActionStartCreate}
	}
	return a.finishDraft(ctx, sess)
}

func (a *Assistant) provideField(ctx context.Context, sess *session, action *Action) *Reply {
	if sess.Draft == nil {
		return &Reply{Text: "There is nothing in progress. Ask me to create a device or a collaborator first.", Action: ActionUnknown}
	}

	for k, v := range action.Fields {
		if v != "" {
			sess.Draft.Fields[strings.ToLower(k)] = v
		}
	}

	if missing := firstMissing(sess.Draft, requiredFields[sess.Draft.Entity]); missing != "" {
		return &Reply{Text: fmt.Sprintf("Got it. What is the %s?", fieldLabel(missing)), Action: ActionProvideField}
	}
	return a.finishDraft(ctx, sess)
}

func (a *Assistant) finishDraft(ctx context.Context, sess *session) *Reply {
	d := sess.Draft
	sess.Draft = nil

	// The draft may have been opened under another token; re-check before
	// writing.
	if !allowedToCreate(ctx, d.Entity) {
		return &Reply{Text: fmt.Sprintf("Your account is not allowed to create a %s.", d.Entity), Action: ActionUnknown}
	}

	var data interface{}
	var err error
	switch d.Entity {
	case "device":
		data, err = a.createDevice(ctx, d)
	case "collaborator":
		data, err = a.createCollaborator(ctx, d)
	case "brand":
		data, err = models.CreateBrand(ctx, &models.NewBrand{Name: d.Fields["name"]})
	case "sector":
		data, err = models.CreateSector(ctx, &models.NewSector{Name: d.Fields["name"]})
	default:
		err = fmt.Errorf("unsupported entity %q", d.Entity)
	}
	if err != nil {
		return &Reply{Text: fmt.Sprintf("Could not create the %s: %v", d.Entity, err), Action: ActionUnknown}
	}
	return &Reply{Text: fmt.Sprintf("Done, the %s was created.", d.Entity), Action: ActionProvideField, Data: data}
}

func (a *Assistant) createDevice(ctx context.Context, d *draft) (*models.Device, error) {
	model, err := models.GetOrCreateDeviceModelByName(ctx, d.Fields["model"], d.Fields["brand"])
	if err != nil {
		return nil, err
	}

	value := decimal.Zero
	if v := d.Fields["value"]; v != "" {
		value, err = decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", v)
		}
	}

	input := &models.NewDevice{
		SerialNumber:  d.Fields["serial_number"],
		DeviceModelId: model.ID,
		Value:         value,
		Location:      d.Fields["location"],
	}
	if imei := d.Fields["imei1"]; imei != "" {
		input.Imei1 = &imei
	}
	return models.RegisterDevice(ctx, input)
}

func (a *Assistant) createCollaborator(ctx context.Context, d *draft) (*models.Collaborator, error) {
	sector, err := models.GetOrCreateSectorByName(ctx, d.Fields["sector"])
	if err != nil {
		return nil, err
	}

	input := &models.NewCollaborator{
		Code:     d.Fields["code"],
		FullName: d.Fields["full_name"],
		SectorId: sector.ID,
	}
	if email := d.Fields["email"]; email != "" {
		input.Email = &email
	}
	if taxId := d.Fields["tax_id"]; taxId != "" {
		input.TaxId = &taxId
	}
	return models.CreateCollaborator(ctx, input)
}

func (a *Assistant) searchDevice(ctx context.Context, action *Action) *Reply {
	query := strings.TrimSpace(action.Query)
	if query == "" {
		return &Reply{Text: "Which serial number should I look up?", Action: ActionSearchDevice}
	}

	device, err := models.GetDeviceBySerial(ctx, query)
	if err == nil {
		state, stateErr := models.GetDeviceState(ctx, device.ID)
		if stateErr == nil {
			holder := "nobody"
			if state.HolderSnapshot != nil && *state.HolderSnapshot != "" {
				holder = *state.HolderSnapshot
			}
			return &Reply{
				Text:   fmt.Sprintf("Device %s is %s, held by %s.", device.SerialNumber, state.Status, holder),
				Action: ActionSearchDevice,
				Data:   device,
			}
		}
		return &Reply{Text: fmt.Sprintf("Found device %s.", device.SerialNumber), Action: ActionSearchDevice, Data: device}
	}

	devices, err := models.ListDevices(ctx, models.DeviceFilter{Serial: &query})
	if err != nil || len(devices) == 0 {
		return &Reply{Text: fmt.Sprintf("No device matches %q.", query), Action: ActionSearchDevice}
	}
	return &Reply{Text: fmt.Sprintf("Found %d device(s) matching %q.", len(devices), query), Action: ActionSearchDevice, Data: devices}
}

func (a *Assistant) searchMovements(ctx context.Context, action *Action) *Reply {
	filter := models.MovementFilter{}
	if q := strings.TrimSpace(action.Query); q != "" {
		filter.DeviceSerial = &q
	}

	entries, err := models.ListMovements(ctx, filter)
	if err != nil {
		return &Reply{Text: "Could not load the movement history.", Action: ActionUnknown}
	}
	if len(entries) == 0 {
		return &Reply{Text: "No movements found.", Action: ActionSearchMovements}
	}
	if len(entries) > 10 {
		entries = entries[:10]
	}
	return &Reply{Text: fmt.Sprintf("Here are the last %d movement(s).", len(entries)), Action: ActionSearchMovements, Data: entries}
}

func firstMissing(d *draft, fields []string) string {
	for _, f := range fields {
		if strings.TrimSpace(d.Fields[f]) == "" {
			return f
		}
	}
	return ""
}

func fieldLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
