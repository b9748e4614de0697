package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type StoreOptions struct {
	// TTL is how long an untouched session is kept.
	TTL time.Duration
	// NewController builds the controller for a first-time owner.
	NewController func(owner int64) *Controller
}

// Store maps an owner id to its Controller and forgets idle ones.
type Store struct {
	mu      sync.Mutex
	cache   *cache.Cache
	newCtrl func(owner int64) *Controller
}

func NewStore(opts StoreOptions) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	newCtrl := opts.NewController
	if newCtrl == nil {
		newCtrl = func(int64) *Controller { return New(Options{}) }
	}

	return &Store{
		cache:   cache.New(ttl, ttl/2),
		newCtrl: newCtrl,
	}
}

// Get returns the owner's controller, creating it on first use, and extends its lifetime.
func (s *Store) Get(owner int64) *Controller {
	key := strconv.FormatInt(owner, 10)

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(key); ok {
		ctrl := v.(*Controller)
		s.cache.SetDefault(key, ctrl)
		return ctrl
	}

	ctrl := s.newCtrl(owner)
	s.cache.SetDefault(key, ctrl)
	return ctrl
}

// Peek returns the controller without creating or touching it.
func (s *Store) Peek(owner int64) (*Controller, bool) {
	v, ok := s.cache.Get(strconv.FormatInt(owner, 10))
	if !ok {
		return nil, false
	}
	return v.(*Controller), true
}

func (s *Store) Delete(owner int64) {
	s.cache.Delete(strconv.FormatInt(owner, 10))
}

// Each calls fn for every live controller.
func (s *Store) Each(fn func(owner int64, c *Controller)) {
	for key, item := range s.cache.Items() {
		owner, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		fn(owner, item.Object.(*Controller))
	}
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
