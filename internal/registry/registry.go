package registry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SlickRick2121/Ten-K-sub000/internal/room"
	"github.com/SlickRick2121/Ten-K-sub000/internal/stats"
	"github.com/SlickRick2121/Ten-K-sub000/internal/types"
)

// DefaultRoomNames is the fixed table set. Rooms are created once at
// startup and never added or removed.
var DefaultRoomNames = []string{"Table 1", "Table 2", "Table 3", "Table 4"}

type Config struct {
	RoomNames []string
	BustDelay time.Duration
	Recorder  stats.Recorder
	Logger    *zap.Logger
}

// Registry owns the fixed set of rooms and pushes room-list updates to
// every subscribed connection whenever occupancy or status changes. The
// room map is immutable after construction, so lookups need no lock; only
// the subscriber set does.
type Registry struct {
	names []string
	rooms map[string]*room.Room

	mu      sync.Mutex
	subs    map[string]chan types.ServerMessage
	refresh chan struct{}

	log *zap.Logger
	ctx context.Context
}

func New(parent context.Context, cfg Config) *Registry {
	if len(cfg.RoomNames) == 0 {
		cfg.RoomNames = DefaultRoomNames
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	g := &Registry{
		names:   cfg.RoomNames,
		rooms:   make(map[string]*room.Room, len(cfg.RoomNames)),
		subs:    make(map[string]chan types.ServerMessage),
		refresh: make(chan struct{}, 1),
		log:     cfg.Logger,
		ctx:     parent,
	}
	for _, name := range cfg.RoomNames {
		g.rooms[name] = room.New(parent, room.Config{
			Name:      name,
			BustDelay: cfg.BustDelay,
			Recorder:  cfg.Recorder,
			Notify:    g.scheduleRefresh,
			Logger:    cfg.Logger,
		})
	}
	go g.loop()
	return g
}

// Lookup resolves a room by name. The set is fixed, so a miss means the
// client asked for a table that does not exist.
func (g *Registry) Lookup(name string) (*room.Room, bool) {
	r, ok := g.rooms[name]
	return r, ok
}

// Summaries gathers the ordered room list by asking each room actor.
func (g *Registry) Summaries() []types.RoomInfo {
	out := make([]types.RoomInfo, 0, len(g.names))
	for _, name := range g.names {
		reply := make(chan types.RoomInfo, 1)
		g.rooms[name].Inbox() <- room.GetSummary{Reply: reply}
		out = append(out, <-reply)
	}
	return out
}

// Subscribe registers a connection for room-list pushes and seeds it with
// the current list.
func (g *Registry) Subscribe(id string) <-chan types.ServerMessage {
	ch := make(chan types.ServerMessage, 8)
	g.mu.Lock()
	g.subs[id] = ch
	g.mu.Unlock()

	ch <- types.ServerMessage{Type: "RoomList", Rooms: g.Summaries()}
	return ch
}

func (g *Registry) Unsubscribe(id string) {
	g.mu.Lock()
	if ch, ok := g.subs[id]; ok {
		close(ch)
		delete(g.subs, id)
	}
	g.mu.Unlock()
}

// scheduleRefresh coalesces bursts of room changes into one list push. It
// is called from room loops and must never block.
func (g *Registry) scheduleRefresh() {
	select {
	case g.refresh <- struct{}{}:
	default:
	}
}

func (g *Registry) loop() {
	for {
		select {
		case <-g.ctx.Done():
			g.mu.Lock()
			for id, ch := range g.subs {
				close(ch)
				delete(g.subs, id)
			}
			g.mu.Unlock()
			return

		case <-g.refresh:
			msg := types.ServerMessage{Type: "RoomList", Rooms: g.Summaries()}
			g.publish(msg)
		}
	}
}

func (g *Registry) publish(msg types.ServerMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, ch := range g.subs {
		select {
		case ch <- msg:
		default:
			close(ch)
			delete(g.subs, id)
		}
	}
}
