// Package uistate persists small console layout preferences under fixed
// keys. Reads never fail: unavailable storage or corrupt values fall back
// to defaults.
package uistate

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
)

const (
	KeySidebarOpen    = "app_sidebar_open"
	KeyScrollPosition = "app_scroll_position"
	KeyExpandedMenu   = "app_expanded_menu"
	KeyActivePage     = "app_active_page"
	KeySidebarScroll  = "app_sidebar_scroll"
)

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Snapshot is everything the console restores on load.
type Snapshot struct {
	SidebarOpen     bool           `json:"sidebar_open"`
	ScrollPositions map[string]int `json:"scroll_positions"`
	ExpandedMenu    string         `json:"expanded_menu"`
	ActivePage      string         `json:"active_page"`
	SidebarScroll   int            `json:"sidebar_scroll"`
}

type Manager struct {
	store Store
	log   *logger.Logger
	// guards read-modify-write of the scroll map; shared by every Manager
	// over the same owner when built through Locks
	mu *sync.Mutex
}

type Option func(*Manager)

// WithLock makes the Manager serialize scroll map writes on mu.
func WithLock(mu *sync.Mutex) Option {
	return func(m *Manager) { m.mu = mu }
}

func NewManager(store Store, log *logger.Logger, opts ...Option) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	m := &Manager{store: store, log: log}
	for _, o := range opts {
		o(m)
	}
	if m.mu == nil {
		m.mu = &sync.Mutex{}
	}
	return m
}

// Locks hands out one mutex per owner, so Managers built per request still
// serialize writes for the same operator.
type Locks struct {
	m sync.Map
}

func (l *Locks) For(owner string) *sync.Mutex {
	mu, _ := l.m.LoadOrStore(owner, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (m *Manager) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Debugf("ui state read %s: %v", key, err)
		return "", false
	}
	return v, ok
}

func (m *Manager) set(ctx context.Context, key, value string) error {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.log.Warnf("ui state write %s: %v", key, err)
		return err
	}
	return nil
}

// SidebarOpen defaults to true.
func (m *Manager) SidebarOpen(ctx context.Context) bool {
	v, ok := m.get(ctx, KeySidebarOpen)
	if !ok {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

func (m *Manager) SetSidebarOpen(ctx context.Context, open bool) error {
	return m.set(ctx, KeySidebarOpen, strconv.FormatBool(open))
}

func (m *Manager) ScrollPositions(ctx context.Context) map[string]int {
	out := map[string]int{}
	v, ok := m.get(ctx, KeyScrollPosition)
	if !ok || v == "" {
		return out
	}
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		m.log.Debugf("ui state %s is corrupt, resetting: %v", KeyScrollPosition, err)
		return map[string]int{}
	}
	// a stored "null" decodes cleanly into a nil map
	if out == nil {
		return map[string]int{}
	}
	return out
}

func (m *Manager) ScrollPosition(ctx context.Context, id string) int {
	return m.ScrollPositions(ctx)[id]
}

// SetScrollPosition updates one entry of the scroll map, keeping the rest.
func (m *Manager) SetScrollPosition(ctx context.Context, id string, pos int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.ScrollPositions(ctx)
	all[id] = pos
	b, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return m.set(ctx, KeyScrollPosition, string(b))
}

func (m *Manager) ExpandedMenu(ctx context.Context) string {
	v, _ := m.get(ctx, KeyExpandedMenu)
	return v
}

func (m *Manager) SetExpandedMenu(ctx context.Context, menu string) error {
	return m.set(ctx, KeyExpandedMenu, menu)
}

func (m *Manager) ActivePage(ctx context.Context) string {
	v, _ := m.get(ctx, KeyActivePage)
	return v
}

func (m *Manager) SetActivePage(ctx context.Context, page string) error {
	return m.set(ctx, KeyActivePage, page)
}

func (m *Manager) SidebarScroll(ctx context.Context) int {
	v, ok := m.get(ctx, KeySidebarScroll)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (m *Manager) SetSidebarScroll(ctx context.Context, pos int) error {
	return m.set(ctx, KeySidebarScroll, strconv.Itoa(pos))
}

func (m *Manager) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{
		SidebarOpen:     m.SidebarOpen(ctx),
		ScrollPositions: m.ScrollPositions(ctx),
		ExpandedMenu:    m.ExpandedMenu(ctx),
		ActivePage:      m.ActivePage(ctx),
		SidebarScroll:   m.SidebarScroll(ctx),
	}
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}
