package assistant

import (
	"sync"
	"time"
)

// draft is an entity being built field by field over the conversation.
type draft struct {
	Entity string
	Fields map[string]string
}

type session struct {
	History  []chatMessage
	Draft    *draft
	LastSeen time.Time
}

const maxHistory = 20

// sessionStore keeps per-user conversation state in memory. State is scoped
// to one process; a restart simply starts conversations fresh.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int]*session)}
}

func (s *sessionStore) get(userId int) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userId]
	if !ok {
		sess = &session{}
		s.sessions[userId] = sess
	}
	sess.LastSeen = time.Now()
	return sess
}

func (s *sessionStore) clear(userId int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userId)
}

func (s *session) appendExchange(userMessage, reply string) {
	s.History = append(s.History,
		chatMessage{Role: "user", Content: userMessage},
		chatMessage{Role: "assistant", Content: reply},
	)
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
}
