package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptRoller returns faces in order, cycling when exhausted.
func scriptRoller(faces ...int) func() int {
	i := 0
	return func() int {
		f := faces[i%len(faces)]
		i++
		return f
	}
}

func newPlayingSession(t *testing.T, roller func() int, names ...string) *Session {
	t.Helper()
	s := newSession("Table 1", roller)
	for i, name := range names {
		require.True(t, s.AddSeat(connID(i), name))
	}
	require.NoError(t, s.Start(connID(0)))
	return s
}

func connID(i int) string {
	return string(rune('a' + i))
}

// selectFaces toggles one unselected die per requested face value.
func selectFaces(t *testing.T, s *Session, player string, faces ...int) {
	t.Helper()
	for _, want := range faces {
		found := false
		for _, d := range s.dice {
			if d.Face == want && !d.Selected {
				require.NoError(t, s.ToggleSelection(player, d.ID))
				found = true
				break
			}
		}
		require.True(t, found, "no unselected die with face %d", want)
	}
}

func TestAddSeat_CapacityFive(t *testing.T) {
	s := NewSession("Table 1")
	for i := 0; i < MaxSeats; i++ {
		assert.True(t, s.AddSeat(connID(i), "p"))
	}
	assert.False(t, s.AddSeat("z", "late"))
	assert.Equal(t, MaxSeats, s.SeatCount())
}

func TestStart_RequiresTwoSeats(t *testing.T) {
	s := NewSession("Table 1")
	s.AddSeat("a", "Alice")
	require.ErrorIs(t, s.Start("a"), ErrNotEnoughPlayers)
	assert.Equal(t, StatusWaiting, s.Status())

	s.AddSeat("b", "Bob")
	require.NoError(t, s.Start("a"))
	assert.Equal(t, StatusPlaying, s.Status())

	require.ErrorIs(t, s.Start("a"), ErrAlreadyStarted)
}

func TestStart_RequiresSeat(t *testing.T) {
	s := NewSession("Table 1")
	s.AddSeat("a", "Alice")
	s.AddSeat("b", "Bob")
	require.ErrorIs(t, s.Start("stranger"), ErrNotSeated)
}

func TestRoll_TurnOwnership(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")

	_, err := s.Roll(connID(1))
	require.ErrorIs(t, err, ErrWrongTurn)

	_, err = s.Roll("stranger")
	require.ErrorIs(t, err, ErrWrongTurn)

	res, err := s.Roll(connID(0))
	require.NoError(t, err)
	assert.Len(t, res.Dice, FullDiceCount)
	assert.False(t, res.Busted)
}

func TestRoll_RerollRequiresSelection(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)

	_, err = s.Roll(connID(0))
	require.ErrorIs(t, err, ErrMustSelect)
}

func TestRoll_RejectsDeadDiceSelection(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)

	selectFaces(t, s, connID(0), 1, 2)
	_, err = s.Roll(connID(0))
	require.ErrorIs(t, err, ErrIllegalSelection)
	assert.Equal(t, 0, s.roundScore, "rejected roll must not change state")
}

func TestRoll_ScoresSelectionAndShrinksPool(t *testing.T) {
	// First roll: three fives plus filler. Second roll: three dice.
	s := newPlayingSession(t, scriptRoller(5, 5, 5, 2, 3, 6, 1, 2, 3), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)

	selectFaces(t, s, connID(0), 5, 5, 5)
	res, err := s.Roll(connID(0))
	require.NoError(t, err)

	assert.Equal(t, 500, s.roundScore)
	assert.Len(t, res.Dice, 3)
	assert.False(t, res.HotDice)
}

func TestRoll_HotDice(t *testing.T) {
	// Whole roll scores: straight. Selecting all six grants a fresh six.
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 5, 6), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)

	selectFaces(t, s, connID(0), 1, 2, 3, 4, 5, 6)
	res, err := s.Roll(connID(0))
	require.NoError(t, err)

	assert.True(t, res.HotDice)
	assert.Len(t, res.Dice, FullDiceCount)
	assert.Equal(t, 1500, s.roundScore)
}

func TestRoll_BustFlagged(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(2, 3, 4, 2, 4, 6), "Alice", "Bob")

	res, err := s.Roll(connID(0))
	require.NoError(t, err)
	require.True(t, res.Busted)

	// Round state is intact until the bust resolves.
	assert.Equal(t, 0, s.current)
	assert.True(t, s.Busted())

	_, err = s.Roll(connID(0))
	require.ErrorIs(t, err, ErrBustPending)
	require.ErrorIs(t, s.Bank(connID(0)), ErrBustPending)
}

func TestResolveBust_ClearsRoundAndAdvances(t *testing.T) {
	// Score something first, then bust with the remaining dice.
	s := newPlayingSession(t, scriptRoller(1, 1, 2, 3, 4, 6, 2, 3, 4, 6), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)
	selectFaces(t, s, connID(0), 1, 1)

	res, err := s.Roll(connID(0))
	require.NoError(t, err)
	require.True(t, res.Busted)
	require.Equal(t, 200, s.roundScore)

	s.ResolveBust()

	assert.Equal(t, 0, s.roundScore)
	assert.Equal(t, 1, s.current)
	assert.Equal(t, 0, s.seats[0].Score, "busted round must not bank")
	assert.Equal(t, 1, s.seats[0].Busts)
	assert.Equal(t, FullDiceCount, s.diceToRoll)
	assert.False(t, s.Busted())
}

func TestResolveBust_NoopWithoutBust(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)

	s.ResolveBust()
	assert.Equal(t, 0, s.current, "resolve must not fire on a live roll")
}

func TestBank_ZeroRejected(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)

	require.ErrorIs(t, s.Bank(connID(0)), ErrBankZero)
}

func TestBank_CommitsRoundScore(t *testing.T) {
	// Roll three fives, keep them, re-roll three, keep the one and five,
	// bank 650 total.
	s := newPlayingSession(t, scriptRoller(5, 5, 5, 2, 3, 6, 1, 5, 2), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)
	selectFaces(t, s, connID(0), 5, 5, 5)

	_, err = s.Roll(connID(0))
	require.NoError(t, err)
	selectFaces(t, s, connID(0), 1, 5)

	require.NoError(t, s.Bank(connID(0)))

	assert.Equal(t, 650, s.seats[0].Score)
	assert.Equal(t, 650, s.seats[0].BestRound)
	assert.Equal(t, 1, s.current)
	assert.Equal(t, 0, s.roundScore)
	assert.Equal(t, FullDiceCount, s.diceToRoll)
}

func TestBank_TurnWrapsAround(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob", "Cleo")

	for i := 0; i < 3; i++ {
		require.Equal(t, i, s.current)
		require.NoError(t, s.Bank(connID(i)))
	}
	assert.Equal(t, 0, s.current)
}

func TestFinalLap_FinishesWhenControlReturns(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob", "Cleo")
	s.seats[0].Score = 9900

	_, err := s.Roll(connID(0))
	require.NoError(t, err)
	selectFaces(t, s, connID(0), 1)
	require.NoError(t, s.Bank(connID(0)))

	require.True(t, s.finalLap)
	require.Equal(t, 0, s.finalLapSeat)
	require.Equal(t, StatusPlaying, s.Status())

	// Bob and Cleo each get exactly one more turn.
	require.NoError(t, s.Bank(connID(1)))
	require.Equal(t, StatusPlaying, s.Status())

	require.NoError(t, s.Bank(connID(2)))
	require.Equal(t, StatusFinished, s.Status())

	require.NotNil(t, s.winner)
	assert.Equal(t, "Alice", s.winner.Name)
	assert.False(t, s.tie)

	_, err = s.Roll(connID(0))
	require.ErrorIs(t, err, ErrNotPlaying)
	require.ErrorIs(t, s.Bank(connID(0)), ErrNotPlaying)
}

func TestFinalLap_TopScoreSharedIsTie(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")
	s.seats[0].Score = 9900
	s.seats[1].Score = 9900

	_, err := s.Roll(connID(0))
	require.NoError(t, err)
	selectFaces(t, s, connID(0), 1)
	require.NoError(t, s.Bank(connID(0)))

	_, err = s.Roll(connID(1))
	require.NoError(t, err)
	selectFaces(t, s, connID(1), 1)
	require.NoError(t, s.Bank(connID(1)))

	require.Equal(t, StatusFinished, s.Status())
	assert.True(t, s.tie)
	assert.Nil(t, s.winner)

	results := s.Results()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Won, "nobody wins a tie")
		assert.Equal(t, 10000, r.Score)
	}
}

func TestFinalLap_BustStillCountsAsTheLastTurn(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6, 2, 3, 4, 2, 4, 6), "Alice", "Bob")
	s.seats[0].Score = 9900

	_, err := s.Roll(connID(0))
	require.NoError(t, err)
	selectFaces(t, s, connID(0), 1)
	require.NoError(t, s.Bank(connID(0)))

	res, err := s.Roll(connID(1))
	require.NoError(t, err)
	require.True(t, res.Busted)

	s.ResolveBust()
	assert.Equal(t, StatusFinished, s.Status())
	require.NotNil(t, s.winner)
	assert.Equal(t, "Alice", s.winner.Name)
}

func TestRestart_OnlyWhenFinished(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")
	require.ErrorIs(t, s.Restart(connID(0)), ErrNotFinished)

	s.seats[0].Score = 10200
	s.seats[0].BestRound = 1200
	s.seats[0].Busts = 3
	s.finalLap = true
	s.finalLapSeat = 0
	s.current = 1
	require.NoError(t, s.Bank(connID(1)))
	require.Equal(t, StatusFinished, s.Status())

	require.NoError(t, s.Restart(connID(1)))

	assert.Equal(t, StatusPlaying, s.Status())
	assert.Equal(t, 0, s.current)
	assert.False(t, s.finalLap)
	assert.Nil(t, s.winner)
	for _, seat := range s.seats {
		assert.Equal(t, 0, seat.Score)
		assert.Equal(t, 0, seat.BestRound)
		assert.Equal(t, 0, seat.Busts)
	}
}

func TestDetach_WaitingRemovesSeat(t *testing.T) {
	s := NewSession("Table 1")
	s.AddSeat("a", "Alice")
	s.AddSeat("b", "Bob")

	require.True(t, s.Detach("a"))
	assert.Equal(t, 1, s.SeatCount())
	assert.Equal(t, "Bob", s.seats[0].Name)
}

func TestDetach_PlayingKeepsSeat(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")

	require.True(t, s.Detach(connID(0)))
	assert.Equal(t, 2, s.SeatCount())
	assert.False(t, s.seats[0].Connected)
	assert.Equal(t, 1, s.ConnectedCount())
}

func TestReattachByName_FirstMatchInSeatOrder(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Alice", "Bob")
	s.Detach(connID(0))
	s.Detach(connID(1))

	require.True(t, s.ReattachByName("Alice", "fresh"))
	assert.Equal(t, "fresh", s.seats[0].ConnID)
	assert.True(t, s.seats[0].Connected)
	assert.False(t, s.seats[1].Connected, "second namesake stays detached")

	require.False(t, s.ReattachByName("Dana", "nobody"))
}

func TestGeneration_BumpsOnRoundReset(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(1, 2, 3, 4, 6, 6), "Alice", "Bob")
	gen := s.Generation()

	require.NoError(t, s.Bank(connID(0)))
	assert.Greater(t, s.Generation(), gen)
}

func TestSnapshot_ReflectsState(t *testing.T) {
	s := newPlayingSession(t, scriptRoller(5, 5, 5, 2, 3, 6), "Alice", "Bob")

	_, err := s.Roll(connID(0))
	require.NoError(t, err)
	selectFaces(t, s, connID(0), 5)

	snap := s.Snapshot()
	assert.Equal(t, "Table 1", snap.Room)
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Len(t, snap.Seats, 2)
	assert.Len(t, snap.Dice, FullDiceCount)
	assert.Equal(t, 0, snap.Current)
	assert.Nil(t, snap.Winner)

	selected := 0
	for _, d := range snap.Dice {
		if d.Selected {
			selected++
		}
	}
	assert.Equal(t, 1, selected)
}
