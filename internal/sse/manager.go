package sse

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/simmerapp/simmer-server/internal/id"
)

const (
	queueSize       = 1000
	clientQueueSize = 100
	heartbeatEvery  = 30 * time.Second
)

// Client is one open event stream.
type Client struct {
	ID          string
	UserID      string // Empty for anonymous viewers
	RecipeID    string // Empty receives every recipe's events
	ConnectedAt time.Time

	Events chan Event
	Done   chan struct{}
}

// Manager fans events out to connected clients.
//
// Clients watching one recipe are indexed under that recipe, so a like on a
// busy recipe only touches its own watchers and the unfiltered clients.
// Events for a client whose queue is full are dropped and counted.
type Manager struct {
	logger    *slog.Logger
	heartbeat time.Duration
	queue     chan Event
	running   sync.WaitGroup
	dropped   atomic.Uint64

	mu       sync.RWMutex
	clients  map[string]*Client
	watchers map[string]map[string]*Client // recipe ID -> client ID -> client
	unscoped map[string]*Client

	closeMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager. A nil logger discards output.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		logger:    logger,
		heartbeat: heartbeatEvery,
		queue:     make(chan Event, queueSize),
		clients:   make(map[string]*Client),
		watchers:  make(map[string]map[string]*Client),
		unscoped:  make(map[string]*Client),
	}
}

// Start runs the delivery loop until ctx is canceled or the queue is closed.
func (m *Manager) Start(ctx context.Context) {
	m.running.Add(1)
	defer m.running.Done()

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.broadcast(event)
		case <-ticker.C:
			m.broadcast(NewHeartbeatEvent())
		case <-ctx.Done():
			m.disconnectAll()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is already queued and closes every client.
// It is safe to call more than once.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.closeMu.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range m.queue {
			m.broadcast(event)
		}
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("event queue not drained before shutdown deadline")
	}

	m.running.Wait()
	m.disconnectAll()
	return nil
}

// recipients returns the clients an event is for. Caller holds m.mu.
func (m *Manager) recipients(event Event) []*Client {
	if event.RecipeID == "" {
		return slices.Collect(maps.Values(m.clients))
	}
	out := slices.Collect(maps.Values(m.unscoped))
	return slices.AppendSeq(out, maps.Values(m.watchers[event.RecipeID]))
}

func (m *Manager) broadcast(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets := m.recipients(event)
	delivered := 0
	for _, c := range targets {
		select {
		case c.Events <- event:
			delivered++
		default:
			m.dropped.Add(1)
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event broadcast",
			slog.String("event_type", string(event.Type)),
			slog.String("recipe_id", event.RecipeID),
			slog.Int("delivered", delivered),
			slog.Int("skipped", len(m.clients)-len(targets)))
	}
}

// Connect registers a client. recipeID narrows recipe-scoped events to that recipe.
func (m *Manager) Connect(userID, recipeID string) (*Client, error) {
	clientID, err := id.Generate(id.Client)
	if err != nil {
		return nil, err
	}
	c := &Client{
		ID:          clientID,
		UserID:      userID,
		RecipeID:    recipeID,
		ConnectedAt: time.Now(),
		Events:      make(chan Event, clientQueueSize),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.clients[c.ID] = c
	if recipeID == "" {
		m.unscoped[c.ID] = c
	} else {
		if m.watchers[recipeID] == nil {
			m.watchers[recipeID] = make(map[string]*Client)
		}
		m.watchers[recipeID][c.ID] = c
	}
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("event stream opened",
		slog.String("client_id", c.ID),
		slog.String("user_id", userID),
		slog.String("recipe_id", recipeID),
		slog.Int("total_clients", total))
	return c, nil
}

// Disconnect removes a client and closes its channels. Unknown IDs are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		m.forget(c)
	}
	total := len(m.clients)
	m.mu.Unlock()

	if ok {
		m.logger.Info("event stream closed",
			slog.String("client_id", clientID),
			slog.Duration("duration", time.Since(c.ConnectedAt)),
			slog.Int("total_clients", total))
	}
}

// forget unindexes c and closes its channels. Caller holds m.mu for writing.
func (m *Manager) forget(c *Client) {
	delete(m.clients, c.ID)
	delete(m.unscoped, c.ID)
	if w := m.watchers[c.RecipeID]; w != nil {
		delete(w, c.ID)
		if len(w) == 0 {
			delete(m.watchers, c.RecipeID)
		}
	}
	close(c.Done)
	close(c.Events)
}

func (m *Manager) disconnectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		m.forget(c)
	}
}

// Emit queues an event for delivery. Values that are not an Event are logged and ignored,
// as are events emitted after Shutdown.
func (m *Manager) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		m.logger.Error("ignored emit of non-event value")
		return
	}

	m.closeMu.RLock()
	defer m.closeMu.RUnlock()
	if m.closed {
		return
	}

	select {
	case m.queue <- evt:
	default:
		m.dropped.Add(1)
		m.logger.Error("event queue full, dropping event", slog.String("event_type", string(evt.Type)))
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// WatcherCount returns the number of clients watching recipeID specifically.
func (m *Manager) WatcherCount(recipeID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.watchers[recipeID])
}

// Dropped returns how many events were discarded because a queue was full.
func (m *Manager) Dropped() uint64 {
	return m.dropped.Load()
}
