package game

import "errors"

var ErrWrongTurn = errors.New("not your turn")
var ErrMustSelect = errors.New("select at least one die before rolling again")
var ErrIllegalSelection = errors.New("invalid selection")
var ErrBankZero = errors.New("cannot bank zero")
var ErrRoomFull = errors.New("room is full")
var ErrNotEnoughPlayers = errors.New("need at least two players to start")
var ErrNotPlaying = errors.New("game is not in progress")
var ErrNotFinished = errors.New("game is not finished")
var ErrAlreadyStarted = errors.New("game already started")
var ErrNotSeated = errors.New("you are not seated at this table")
var ErrBustPending = errors.New("farkle, turn is over")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdStart   CommandType = "StartGame"
	CmdRoll    CommandType = "RollDice"
	CmdToggle  CommandType = "ToggleDie"
	CmdBank    CommandType = "BankScore"
	CmdRestart CommandType = "RestartGame"
)

// Command is the closed set of player actions a session accepts. The
// gateway validates the wire payload into one of these before it ever
// reaches the state machine.
type Command struct {
	Type  CommandType
	DieID string
}
