package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SlickRick2121/Ten-K-sub000/internal/game"
	"github.com/SlickRick2121/Ten-K-sub000/internal/stats"
	"github.com/SlickRick2121/Ten-K-sub000/internal/types"
)

type Msg interface{ isRoomMsg() }

// Join seats (or reattaches) a connection. Reply carries the rejection, if
// any; on success the outbox immediately receives a Joined message.
type Join struct {
	ClientID string
	Name     string
	Outbox   chan types.ServerMessage
	Reply    chan error
}

func (Join) isRoomMsg() {}

// Leave is an explicit departure; Detach is a transport-level drop. Both
// release the seat the same way, the split exists so the gateway can log
// them apart.
type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Detach struct{ ClientID string }

func (Detach) isRoomMsg() {}

type FromClient struct {
	ClientID string
	Cmd      game.Command
}

func (FromClient) isRoomMsg() {}

type GetSummary struct {
	Reply chan types.RoomInfo
}

func (GetSummary) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// resolveBust arrives from the deferred bust timer. Gen pins the round it
// was armed against; the session moves on, the message is dropped.
type resolveBust struct{ gen uint64 }

func (resolveBust) isRoomMsg() {}

type Config struct {
	Name      string
	BustDelay time.Duration
	Recorder  stats.Recorder
	// Notify is called whenever occupancy or status changes, so the
	// registry can push a fresh room list. Must not block.
	Notify func()
	Logger *zap.Logger
	// Roller overrides the dice source. Tests only.
	Roller func() int
}

// Room owns one game session. All mutations funnel through the inbox and
// are applied by the single loop goroutine.
type Room struct {
	name      string
	inbox     chan Msg
	session   *game.Session
	clients   map[string]chan types.ServerMessage
	bustDelay time.Duration
	recorder  stats.Recorder
	notify    func()
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(parent context.Context, cfg Config) *Room {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Notify == nil {
		cfg.Notify = func() {}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = stats.Noop{}
	}
	sess := game.NewSession(cfg.Name)
	if cfg.Roller != nil {
		sess = game.NewSessionWithRoller(cfg.Name, cfg.Roller)
	}
	r := &Room{
		name:      cfg.Name,
		inbox:     make(chan Msg, 64),
		session:   sess,
		clients:   make(map[string]chan types.ServerMessage),
		bustDelay: cfg.BustDelay,
		recorder:  cfg.Recorder,
		notify:    cfg.Notify,
		log:       cfg.Logger.With(zap.String("room", cfg.Name)),
		ctx:       ctx,
		cancel:    cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Name() string { return r.name }

// Inbox exposes the message channel to the gateway and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave, Detach:
				var id string
				if lv, ok := msg.(Leave); ok {
					id = lv.ClientID
				} else {
					id = msg.(Detach).ClientID
				}
				r.handleDetach(id)

			case FromClient:
				r.handleCommand(msg.ClientID, msg.Cmd)

			case resolveBust:
				if msg.gen != r.session.Generation() {
					break
				}
				r.session.ResolveBust()
				r.broadcast(r.stateMsg())
				r.afterTurn()

			case GetSummary:
				msg.Reply <- types.RoomInfo{
					Name:     r.name,
					Players:  r.session.ConnectedCount(),
					Capacity: game.MaxSeats,
					Status:   r.session.Status(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	seated := r.session.ReattachByName(msg.Name, msg.ClientID)
	if !seated {
		seated = r.session.AddSeat(msg.ClientID, msg.Name)
	}
	if !seated {
		msg.Reply <- game.ErrRoomFull
		return
	}

	r.clients[msg.ClientID] = msg.Outbox
	msg.Reply <- nil

	snap := r.session.Snapshot()
	r.sendTo(msg.ClientID, types.ServerMessage{Type: "Joined", PlayerID: msg.ClientID, State: &snap})
	r.broadcastExcept(msg.ClientID, r.stateMsg())
	r.notify()
	r.log.Info("player joined", zap.String("player", msg.Name))
}

func (r *Room) handleDetach(clientID string) {
	delete(r.clients, clientID)
	if r.session.Detach(clientID) {
		r.broadcast(r.stateMsg())
		r.notify()
	}
}

func (r *Room) handleCommand(clientID string, cmd game.Command) {
	switch cmd.Type {
	case game.CmdStart:
		if err := r.session.Start(clientID); err != nil {
			r.sendError(clientID, err)
			return
		}
		r.broadcast(r.msgOf("GameStarted"))
		r.notify()
		r.log.Info("game started", zap.Int("seats", r.session.SeatCount()))

	case game.CmdRoll:
		res, err := r.session.Roll(clientID)
		if err != nil {
			r.sendError(clientID, err)
			return
		}
		snap := r.session.Snapshot()
		r.broadcast(types.ServerMessage{
			Type:  "RollResult",
			State: &snap,
			Roll:  &types.RollOutcome{Dice: res.Dice, Busted: res.Busted, HotDice: res.HotDice},
		})
		if res.Busted {
			r.armBustTimer()
		}

	case game.CmdToggle:
		if err := r.session.ToggleSelection(clientID, cmd.DieID); err != nil {
			r.sendError(clientID, err)
			return
		}
		r.broadcast(r.stateMsg())

	case game.CmdBank:
		if err := r.session.Bank(clientID); err != nil {
			r.sendError(clientID, err)
			return
		}
		r.broadcast(r.stateMsg())
		r.afterTurn()

	case game.CmdRestart:
		if err := r.session.Restart(clientID); err != nil {
			r.sendError(clientID, err)
			return
		}
		r.broadcast(r.msgOf("GameStarted"))
		r.notify()

	default:
		r.sendError(clientID, game.ErrUnsupportedCommand)
	}
}

// armBustTimer defers the round reset so the busted roll stays visible.
// The generation pin makes a fire against a restarted or otherwise
// advanced session a no-op.
func (r *Room) armBustTimer() {
	gen := r.session.Generation()
	time.AfterFunc(r.bustDelay, func() {
		select {
		case r.inbox <- resolveBust{gen: gen}:
		case <-r.ctx.Done():
		}
	})
}

// afterTurn runs once after any turn boundary to catch the transition to
// finished: notify the registry and hand results to the recorder off-loop.
func (r *Room) afterTurn() {
	if r.session.Status() != game.StatusFinished {
		return
	}
	r.notify()
	results := r.session.Results()
	rec := r.recorder
	name := r.name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, res := range results {
			_ = rec.RecordGameEnd(ctx, name, res)
		}
	}()
	r.log.Info("game finished")
}

func (r *Room) stateMsg() types.ServerMessage {
	return r.msgOf("StateUpdated")
}

func (r *Room) msgOf(msgType string) types.ServerMessage {
	snap := r.session.Snapshot()
	return types.ServerMessage{Type: msgType, State: &snap}
}

func (r *Room) sendError(clientID string, err error) {
	r.sendTo(clientID, types.ServerMessage{Type: "Error", Error: err.Error()})
}

func (r *Room) sendTo(clientID string, msg types.ServerMessage) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.clients, clientID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	r.broadcastExcept("", msg)
}

func (r *Room) broadcastExcept(skip string, msg types.ServerMessage) {
	for id, ch := range r.clients {
		if id == skip {
			continue
		}
		select {
		case ch <- msg:
		default:
			// Slow or gone - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}
