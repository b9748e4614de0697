package mediagroup

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	Caption      string
	File         FileRef
}

// FileRef points at one Telegram upload that still needs downloading.
type FileRef struct {
	ID       string
	Name     string
	MIMEType string
}

type Group struct {
	ChatID   int64
	UserID   int64
	Username string
	Caption  string
	Files    []FileRef
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Group)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Group)
	groups   map[string]*pendingGroup
}

type pendingGroup struct {
	group Group
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		groups:   make(map[string]*pendingGroup),
	}
}

func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.File.ID == "" {
		return
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	pg, ok := a.groups[key]
	if !ok {
		pg = &pendingGroup{
			group: Group{
				ChatID:   item.ChatID,
				UserID:   item.UserID,
				Username: item.Username,
				Caption:  strings.TrimSpace(item.Caption),
				Files:    []FileRef{item.File},
			},
		}
		a.groups[key] = pg
	} else {
		pg.group.Files = append(pg.group.Files, item.File)
		pg.group.Caption = mergeCaption(pg.group.Caption, item.Caption)
	}

	if pg.timer != nil {
		pg.timer.Stop()
	}
	pg.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

// Flush delivers every pending group without waiting for its debounce.
func (a *Aggregator) Flush() {
	a.mu.Lock()
	keys := make([]string, 0, len(a.groups))
	for key, pg := range a.groups {
		if pg.timer != nil {
			pg.timer.Stop()
		}
		keys = append(keys, key)
	}
	a.mu.Unlock()

	for _, key := range keys {
		a.flush(key)
	}
}

// Pending reports how many groups are waiting for their debounce.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pg, ok := a.groups[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	group := pg.group
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(group)
	}
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}

// Only one album item usually carries a caption; keep every distinct one.
func mergeCaption(current, next string) string {
	next = strings.TrimSpace(next)
	switch {
	case next == "" || next == current || strings.Contains(current, next):
		return current
	case current == "":
		return next
	default:
		return current + "\n" + next
	}
}
