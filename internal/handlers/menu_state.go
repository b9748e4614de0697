package handlers

import (
	"sync"
	"time"
)

type menuName string

const (
	menuMain     menuName = "main"
	menuCategory menuName = "category"
	menuOptions  menuName = "options"
	menuChoices  menuName = "choices"
	menuRatio    menuName = "ratio"
	menuFiles    menuName = "files"
)

type awaiting int

const (
	awaitNone awaiting = iota
	awaitKey
	awaitPrompt
)

// menuState is the Telegram-only part of a conversation: which screen the
// inline menu shows and what the next text message means.
type menuState struct {
	MessageID int
	Menu      menuName
	// Option is the key whose choices are listed on menuChoices.
	Option   string
	Awaiting awaiting

	UpdatedAt time.Time
}

type stateKey struct {
	ChatID int64
	UserID int64
}

type menuStore struct {
	mu sync.Mutex
	m  map[stateKey]*menuState
}

func newMenuStore() *menuStore {
	return &menuStore{m: make(map[stateKey]*menuState)}
}

func (s *menuStore) Get(chatID, userID int64) menuState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreateLocked(chatID, userID)
}

func (s *menuStore) Update(chatID, userID int64, fn func(*menuState)) menuState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	if fn != nil {
		fn(st)
	}
	st.UpdatedAt = time.Now()
	return *st
}

// Prune drops menus untouched since before cutoff.
func (s *menuStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, st := range s.m {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.m, key)
			n++
		}
	}
	return n
}

func (s *menuStore) getOrCreateLocked(chatID, userID int64) *menuState {
	key := stateKey{ChatID: chatID, UserID: userID}
	if st, ok := s.m[key]; ok {
		return st
	}
	st := &menuState{Menu: menuMain, UpdatedAt: time.Now()}
	s.m[key] = st
	return st
}
