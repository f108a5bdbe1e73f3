package game

// Wire-facing views of session state. The gateway serializes these as-is.

type SeatView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

type DieView struct {
	ID       string `json:"id"`
	Face     int    `json:"face"`
	Selected bool   `json:"selected"`
}

type Snapshot struct {
	Room       string     `json:"room"`
	Seats      []SeatView `json:"seats"`
	Current    int        `json:"current_seat"`
	RoundScore int        `json:"round_score"`
	DiceToRoll int        `json:"dice_to_roll"`
	Dice       []DieView  `json:"dice"`
	Status     Status     `json:"status"`
	Busted     bool       `json:"busted"`
	FinalLap   bool       `json:"final_lap"`
	Winner     *SeatView  `json:"winner,omitempty"`
	Tie        bool       `json:"tie"`
}

func seatView(seat *Seat) SeatView {
	return SeatView{ID: seat.ConnID, Name: seat.Name, Score: seat.Score, Connected: seat.Connected}
}

func diceViews(dice []*Die) []DieView {
	out := make([]DieView, 0, len(dice))
	for _, d := range dice {
		out = append(out, DieView{ID: d.ID, Face: d.Face, Selected: d.Selected})
	}
	return out
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Room:       s.room,
		Seats:      make([]SeatView, 0, len(s.seats)),
		Current:    s.current,
		RoundScore: s.roundScore,
		DiceToRoll: s.diceToRoll,
		Dice:       diceViews(s.dice),
		Status:     s.status,
		Busted:     s.busted,
		FinalLap:   s.finalLap,
		Tie:        s.tie,
	}
	for _, seat := range s.seats {
		snap.Seats = append(snap.Seats, seatView(seat))
	}
	if s.winner != nil {
		w := seatView(s.winner)
		snap.Winner = &w
	}
	return snap
}
