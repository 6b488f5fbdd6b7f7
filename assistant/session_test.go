package assistant

import "testing"

func TestSessionStoreIsolatesUsers(t *testing.T) {
	store := newSessionStore()

	a := store.get(1)
	a.Draft = &draft{Entity: "device", Fields: map[string]string{"serial_number": "SN-1"}}

	b := store.get(2)
	if b.Draft != nil {
		t.Fatal("user 2 must not see user 1's draft")
	}

	if store.get(1).Draft == nil {
		t.Fatal("user 1's draft lost")
	}

	store.clear(1)
	if store.get(1).Draft != nil {
		t.Fatal("clear must drop the draft")
	}
}

func TestAppendExchangeCapsHistory(t *testing.T) {
	sess := &session{}
	for i := 0; i < 30; i++ {
		sess.appendExchange("question", "answer")
	}
	if len(sess.History) != maxHistory {
		t.Errorf("history length = %d, want %d", len(sess.History), maxHistory)
	}
}

func TestFirstMissing(t *testing.T) {
	d := &draft{Entity: "device", Fields: map[string]string{"serial_number": "SN-1"}}
	if got := firstMissing(d, requiredFields["device"]); got != "brand" {
		t.Errorf("firstMissing = %q, want brand", got)
	}
	d.Fields["brand"] = "Acme"
	d.Fields["model"] = "A1"
	if got := firstMissing(d, requiredFields["device"]); got != "" {
		t.Errorf("firstMissing = %q, want empty", got)
	}
}
