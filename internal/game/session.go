package game

import (
	"github.com/SlickRick2121/Ten-K-sub000/internal/scoring"
)

const (
	MaxSeats      = 5
	MinSeats      = 2
	WinningScore  = 10000
	FullDiceCount = 6
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Seat is a player's persistent slot at the table. ConnID is the transient
// transport identity and is reassigned on reconnect; Name is the stable
// key used for reattachment.
type Seat struct {
	ConnID    string
	Name      string
	Score     int
	Connected bool
	BestRound int
	Busts     int
}

// RollResult reports what a roll produced.
type RollResult struct {
	Dice    []DieView
	Busted  bool
	HotDice bool
}

// Session is the authoritative state of one table. It is not safe for
// concurrent use; the owning room serializes all access.
type Session struct {
	room string

	seats   []*Seat
	current int

	roundScore int
	diceToRoll int
	dice       []*Die
	busted     bool

	status       Status
	finalLap     bool
	finalLapSeat int

	winner *Seat
	tie    bool

	// gen increments on every round reset. Deferred work armed against an
	// older generation must not apply.
	gen uint64

	roll func() int
}

func NewSession(room string) *Session {
	return newSession(room, defaultRoller)
}

// NewSessionWithRoller swaps the face source, for deterministic dice in
// tests. The roller must return values in 1..6.
func NewSessionWithRoller(room string, roll func() int) *Session {
	return newSession(room, roll)
}

func newSession(room string, roller func() int) *Session {
	return &Session{
		room:       room,
		status:     StatusWaiting,
		diceToRoll: FullDiceCount,
		roll:       roller,
	}
}

func (s *Session) Room() string       { return s.room }
func (s *Session) Status() Status     { return s.status }
func (s *Session) Generation() uint64 { return s.gen }
func (s *Session) Busted() bool       { return s.busted }
func (s *Session) SeatCount() int     { return len(s.seats) }

func (s *Session) ConnectedCount() int {
	n := 0
	for _, seat := range s.seats {
		if seat.Connected {
			n++
		}
	}
	return n
}

func (s *Session) seatFor(connID string) (*Seat, int) {
	for i, seat := range s.seats {
		if seat.ConnID == connID {
			return seat, i
		}
	}
	return nil, -1
}

// AddSeat appends a new seat in turn order. Returns false when the table
// already holds MaxSeats.
func (s *Session) AddSeat(connID, name string) bool {
	if len(s.seats) >= MaxSeats {
		return false
	}
	s.seats = append(s.seats, &Seat{ConnID: connID, Name: name, Connected: true})
	return true
}

// ReattachByName rebinds a disconnected seat with the given display name
// to a new connection. When several disconnected seats share a name the
// first in seat order wins.
func (s *Session) ReattachByName(name, connID string) bool {
	for _, seat := range s.seats {
		if !seat.Connected && seat.Name == name {
			seat.ConnID = connID
			seat.Connected = true
			return true
		}
	}
	return false
}

// Detach handles both explicit leave and transport disconnect. While the
// table is still waiting the seat is removed outright so the room list
// stays accurate; once a game has started the seat persists for
// reattachment. Returns true if anything changed.
func (s *Session) Detach(connID string) bool {
	seat, idx := s.seatFor(connID)
	if seat == nil {
		return false
	}
	if s.status == StatusWaiting {
		s.seats = append(s.seats[:idx], s.seats[idx+1:]...)
		return true
	}
	seat.Connected = false
	return true
}

func (s *Session) Start(connID string) error {
	if _, idx := s.seatFor(connID); idx < 0 {
		return ErrNotSeated
	}
	if s.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(s.seats) < MinSeats {
		return ErrNotEnoughPlayers
	}
	s.status = StatusPlaying
	s.current = 0
	s.resetRound()
	return nil
}

func (s *Session) resetRound() {
	s.roundScore = 0
	s.dice = nil
	s.diceToRoll = FullDiceCount
	s.busted = false
	s.gen++
}

func (s *Session) requireTurn(connID string) error {
	if s.status != StatusPlaying {
		return ErrNotPlaying
	}
	_, idx := s.seatFor(connID)
	if idx < 0 || idx != s.current {
		return ErrWrongTurn
	}
	if s.busted {
		return ErrBustPending
	}
	return nil
}

func (s *Session) selectedFaces() []int {
	var faces []int
	for _, d := range s.dice {
		if d.Selected {
			faces = append(faces, d.Face)
		}
	}
	return faces
}

// Roll scores the current selection (when dice are already on the table)
// and rolls the remainder. Selecting every die earns a fresh full roll of
// six ("hot dice").
func (s *Session) Roll(connID string) (RollResult, error) {
	if err := s.requireTurn(connID); err != nil {
		return RollResult{}, err
	}

	hot := false
	if len(s.dice) > 0 {
		sel := s.selectedFaces()
		if len(sel) == 0 {
			return RollResult{}, ErrMustSelect
		}
		if !scoring.IsLegalSelection(sel) {
			return RollResult{}, ErrIllegalSelection
		}
		s.roundScore += scoring.Score(sel)
		remaining := len(s.dice) - len(sel)
		if remaining == 0 {
			remaining = FullDiceCount
			hot = true
		}
		s.diceToRoll = remaining
	}

	s.dice = make([]*Die, 0, s.diceToRoll)
	faces := make([]int, 0, s.diceToRoll)
	for i := 0; i < s.diceToRoll; i++ {
		d := newDie(s.roll())
		s.dice = append(s.dice, d)
		faces = append(faces, d.Face)
	}
	s.busted = !scoring.HasAnyScoringMove(faces)

	return RollResult{Dice: diceViews(s.dice), Busted: s.busted, HotDice: hot}, nil
}

// ToggleSelection flips the selected flag on one of the current dice.
// An unknown die id is a no-op.
func (s *Session) ToggleSelection(connID, dieID string) error {
	if err := s.requireTurn(connID); err != nil {
		return err
	}
	for _, d := range s.dice {
		if d.ID == dieID {
			d.Selected = !d.Selected
			break
		}
	}
	return nil
}

// Bank commits the round score to the current seat and passes the turn.
func (s *Session) Bank(connID string) error {
	if err := s.requireTurn(connID); err != nil {
		return err
	}

	sel := s.selectedFaces()
	if len(sel) > 0 {
		if !scoring.IsLegalSelection(sel) {
			return ErrIllegalSelection
		}
		s.roundScore += scoring.Score(sel)
	} else if len(s.dice) > 0 && s.roundScore == 0 {
		return ErrBankZero
	}

	seat := s.seats[s.current]
	seat.Score += s.roundScore
	if s.roundScore > seat.BestRound {
		seat.BestRound = s.roundScore
	}

	if seat.Score >= WinningScore && !s.finalLap {
		s.finalLap = true
		s.finalLapSeat = s.current
	}

	s.advanceTurn()
	return nil
}

// ResolveBust clears the lost round and passes the turn. The room invokes
// it from the deferred bust timer after checking the generation guard.
func (s *Session) ResolveBust() {
	if s.status != StatusPlaying || !s.busted {
		return
	}
	s.seats[s.current].Busts++
	s.roundScore = 0
	s.advanceTurn()
}

func (s *Session) advanceTurn() {
	s.resetRound()
	s.current = (s.current + 1) % len(s.seats)
	if s.finalLap && s.current == s.finalLapSeat {
		s.finish()
	}
}

func (s *Session) finish() {
	s.status = StatusFinished

	best := -1
	for _, seat := range s.seats {
		if seat.Score > best {
			best = seat.Score
		}
	}
	var top []*Seat
	for _, seat := range s.seats {
		if seat.Score == best {
			top = append(top, seat)
		}
	}
	if len(top) == 1 {
		s.winner = top[0]
		s.tie = false
	} else {
		s.winner = nil
		s.tie = true
	}
}

// Restart clears a finished game back to a fresh one with the same seats.
func (s *Session) Restart(connID string) error {
	if _, idx := s.seatFor(connID); idx < 0 {
		return ErrNotSeated
	}
	if s.status != StatusFinished {
		return ErrNotFinished
	}
	for _, seat := range s.seats {
		seat.Score = 0
		seat.BestRound = 0
		seat.Busts = 0
	}
	s.winner = nil
	s.tie = false
	s.finalLap = false
	s.finalLapSeat = 0
	s.current = 0
	s.status = StatusPlaying
	s.resetRound()
	return nil
}

// SeatResult is one seat's outcome of a finished game, consumed by the
// stats recorder.
type SeatResult struct {
	Name      string
	Score     int
	BestRound int
	Busts     int
	Won       bool
}

// Results is only meaningful once the session is finished.
func (s *Session) Results() []SeatResult {
	out := make([]SeatResult, 0, len(s.seats))
	for _, seat := range s.seats {
		out = append(out, SeatResult{
			Name:      seat.Name,
			Score:     seat.Score,
			BestRound: seat.BestRound,
			Busts:     seat.Busts,
			Won:       s.winner == seat,
		})
	}
	return out
}
